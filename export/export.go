// Package export writes an imported map in interchange formats for inspection.
package export

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/mogaika/msl_browser/msl/props"
	"github.com/mogaika/msl_browser/scene"
	"github.com/mogaika/msl_browser/utils"
	"github.com/mogaika/msl_browser/utils/gltfutils"
)

type Format string

const (
	FormatGLTF Format = "gltf"
	FormatGLB  Format = "glb"
	FormatOBJ  Format = "obj"
	FormatFBX  Format = "fbx"
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

var ErrUnknownFormat = errors.New("unknown export format")

type writer func(w io.Writer, name string, m *scene.Map) error

var writers = map[Format]writer{
	FormatGLTF: func(w io.Writer, name string, m *scene.Map) error {
		return gltfutils.ExportEmbedded(w, GLTF(name, m))
	},
	FormatGLB: func(w io.Writer, name string, m *scene.Map) error {
		return gltfutils.ExportBinary(w, GLTF(name, m))
	},
	FormatOBJ: func(w io.Writer, name string, m *scene.Map) error {
		return OBJ(w, nil, name, m)
	},
	FormatFBX: func(w io.Writer, name string, m *scene.Map) error {
		return FBX(name, m).Write(w)
	},
	FormatYAML: func(w io.Writer, name string, m *scene.Map) error {
		return NewDocument(name, m).WriteYAML(w)
	},
	FormatJSON: func(w io.Writer, name string, m *scene.Map) error {
		return NewDocument(name, m).WriteJSON(w)
	},
}

func Formats() []Format {
	result := make([]Format, 0, len(writers))
	for f := range writers {
		result = append(result, f)
	}
	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	return result
}

func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimPrefix(s, ".")))
	if _, ok := writers[f]; !ok {
		return "", errors.Wrapf(ErrUnknownFormat, "%q", s)
	}
	return f, nil
}

func (f Format) Extension() string {
	return "." + string(f)
}

func (f Format) ContentType() string {
	switch f {
	case FormatGLTF:
		return "model/gltf+json"
	case FormatGLB:
		return "model/gltf-binary"
	case FormatYAML:
		return "application/yaml"
	case FormatJSON:
		return "application/json"
	case FormatOBJ:
		return "text/plain; charset=utf-8"
	default:
		return "application/octet-stream"
	}
}

// Write encodes m in format. name ends up in document headers and node names.
func Write(w io.Writer, format Format, name string, m *scene.Map) error {
	wr, ok := writers[format]
	if !ok {
		return errors.Wrapf(ErrUnknownFormat, "%q", format)
	}
	if err := wr(w, name, m); err != nil {
		return errors.Wrapf(err, "Failed to export %q as %s", name, format)
	}
	return nil
}

// fan splits a convex polygon of n vertices into triangles around vertex 0.
func fan(base uint32, n int) []uint32 {
	if n < 3 {
		return nil
	}
	result := make([]uint32, 0, (n-2)*3)
	for i := 1; i+1 < n; i++ {
		result = append(result, base, base+uint32(i), base+uint32(i+1))
	}
	return result
}

// textureGroups splits solid faces by texture name, keeping first-use order.
func textureGroups(s *scene.Solid) ([]string, map[string][]*scene.Face) {
	names := make([]string, 0, 2)
	groups := make(map[string][]*scene.Face)
	for _, f := range s.Faces {
		if _, ok := groups[f.Texture.Name]; !ok {
			names = append(names, f.Texture.Name)
		}
		groups[f.Texture.Name] = append(groups[f.Texture.Name], f)
	}
	return names, groups
}

// entityAngles reads the "angles" property: pitch, yaw and roll in degrees.
func entityAngles(e *scene.Entity) (mgl32.Vec3, bool) {
	v, ok := e.Get("angles")
	if !ok {
		return mgl32.Vec3{}, false
	}
	angles, err := props.ParseVector(v)
	if err != nil {
		return mgl32.Vec3{}, false
	}
	return mgl32.Vec3{float32(angles[0]), float32(angles[1]), float32(angles[2])}, true
}

func entityRotation(e *scene.Entity) (mgl32.Quat, bool) {
	angles, ok := entityAngles(e)
	if !ok {
		return mgl32.QuatIdent(), false
	}
	return utils.EulerToQuat(angles), true
}

func objectName(o *scene.Object) string {
	if o.Kind == scene.KindEntity {
		return fmt.Sprintf("%s_%d", o.Entity.ClassName, o.ID)
	}
	return fmt.Sprintf("%v_%d", o.Kind, o.ID)
}
