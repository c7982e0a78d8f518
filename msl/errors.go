package msl

import (
	"fmt"
)

const (
	MaxMeshesPerUnit = 4096
	MaxProperties    = 1 << 16
	MaxMaterials     = 1 << 16
)

// UnsupportedFormatError means the stream does not look like a scene file this
// decoder understands. Another provider may still accept it.
type UnsupportedFormatError struct {
	Offset int64
	Reason string
}

func (e *UnsupportedFormatError) Error() string {
	if e.Offset < 0 {
		return "unsupported format: " + e.Reason
	}
	return fmt.Sprintf("unsupported format at 0x%x: %s", e.Offset, e.Reason)
}
