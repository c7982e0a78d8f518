// Package vertsoup reads mesh memblocks: an FVF header followed by an unindexed
// vertex array. Only positions and normals are interpreted.
package vertsoup

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/mogaika/msl_browser/msl/cursor"
	"github.com/mogaika/msl_browser/utils"
)

const (
	FVFNormal    = 0x001
	FVFD3DNormal = 0x010 // D3DFVF_NORMAL

	positionSize = 12
	normalSize   = 12

	MaxVertices = 1 << 22
)

// HeaderError reports a mesh header that cannot describe a vertex array.
type HeaderError struct {
	Offset int64
	Reason string
}

func (e *HeaderError) Error() string {
	return fmt.Sprintf("bad mesh header at 0x%x: %s", e.Offset, e.Reason)
}

type Header struct {
	Block       cursor.Block
	FVF         uint32
	Stride      uint32
	VertexCount uint32
}

func (h Header) HasNormal() bool {
	return h.FVF&(FVFNormal|FVFD3DNormal) != 0
}

// Skipped returns how many trailing bytes of each vertex are not interpreted.
func (h Header) Skipped() int64 {
	used := uint32(positionSize)
	if h.HasNormal() {
		used += normalSize
	}
	if h.Stride <= used {
		return 0
	}
	return int64(h.Stride - used)
}

func (h Header) String() string {
	return fmt.Sprintf("%v fvf:0x%x stride:%d verts:%d", h.Block, h.FVF, h.Stride, h.VertexCount)
}

type Sample struct {
	Position mgl32.Vec3
	Normal   mgl32.Vec3
}

type Soup struct {
	Header  Header
	Samples []Sample
}

func (s *Soup) Positions() []mgl32.Vec3 {
	r := make([]mgl32.Vec3, len(s.Samples))
	for i := range s.Samples {
		r[i] = s.Samples[i].Position
	}
	return r
}

func ReadHeader(c *cursor.Cursor) (Header, error) {
	var h Header
	var err error
	if h.Block, err = c.OpenBlock(); err != nil {
		return h, err
	}
	if h.FVF, err = c.ReadLU32(); err != nil {
		return h, err
	}
	if h.Stride, err = c.ReadLU32(); err != nil {
		return h, err
	}
	if h.VertexCount, err = c.ReadLU32(); err != nil {
		return h, err
	}
	if h.Stride < positionSize {
		return h, &HeaderError{Offset: h.Block.Start, Reason: fmt.Sprintf("vertex stride %d is less than a position", h.Stride)}
	}
	if h.VertexCount > MaxVertices {
		return h, &HeaderError{Offset: h.Block.Start, Reason: fmt.Sprintf("vertex count %d", h.VertexCount)}
	}
	return h, nil
}

func readVec3(c *cursor.Cursor) (mgl32.Vec3, error) {
	v, err := c.ReadVec3Swapped()
	return mgl32.Vec3(v), err
}

// Read decodes the mesh memblock at the cursor and leaves the cursor right after it.
// Samples keep file order.
func Read(c *cursor.Cursor, log *utils.Logger) (*Soup, error) {
	h, err := ReadHeader(c)
	if err != nil {
		return nil, err
	}
	log.Printf("mesh %v", h)

	if need := int64(h.VertexCount) * int64(h.Stride); need > c.Remaining() {
		return nil, &cursor.TruncatedStreamError{Offset: c.Pos(), Need: need, Have: c.Remaining()}
	}

	s := &Soup{Header: h, Samples: make([]Sample, h.VertexCount)}
	hasNormal := h.HasNormal()
	skip := h.Skipped()
	for i := range s.Samples {
		sample := &s.Samples[i]
		if sample.Position, err = readVec3(c); err != nil {
			return nil, errors.Wrapf(err, "vertex %d position", i)
		}
		if hasNormal {
			n, err := readVec3(c)
			if err != nil {
				return nil, errors.Wrapf(err, "vertex %d normal", i)
			}
			sample.Normal = Normalize(n)
		}
		if skip != 0 {
			if err := c.Skip(skip); err != nil {
				return nil, errors.Wrapf(err, "vertex %d attributes", i)
			}
		}
	}

	if err := c.SkipRecord(h.Block); err != nil {
		return nil, err
	}
	return s, nil
}

// Normalize returns v scaled to unit length; a zero vector stays zero.
func Normalize(v mgl32.Vec3) mgl32.Vec3 {
	if l := v.Len(); l > 0 {
		return v.Mul(1 / l)
	}
	return v
}
