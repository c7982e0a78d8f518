package utils

import (
	"bytes"
	"path"
	"strings"

	"github.com/mogaika/msl_browser/config"

	"golang.org/x/text/transform"
)

// BytesToString decodes a string stored in the configured single-byte encoding.
// Decoding stops at the first NUL.
func BytesToString(bs []byte) string {
	n := bytes.IndexByte(bs, 0)
	if n < 0 {
		n = len(bs)
	}

	s, _, err := transform.Bytes(config.GetEncoding().NewDecoder(), bs[0:n])
	if err != nil {
		panic(err)
	}

	return string(s)
}

// BaseNameNoExt strips directories (either slash kind) and the extension.
func BaseNameNoExt(p string) string {
	p = path.Base(strings.ReplaceAll(p, "\\", "/"))
	if p == "." || p == "/" {
		return ""
	}
	return strings.TrimSuffix(p, path.Ext(p))
}
