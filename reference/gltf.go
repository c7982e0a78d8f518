package reference

import (
	"path/filepath"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

func CanLoadGLTF(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gltf", ".glb":
		return true
	}
	return false
}

// LoadGLTF reads the first primitive of the first mesh. glTF is Y-up, the same
// frame the map stores vertices in, so positions get the same Y/Z swap.
func LoadGLTF(path string) (*Model, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to open gltf")
	}
	return ModelFromGLTF(path, doc)
}

func ModelFromGLTF(path string, doc *gltf.Document) (*Model, error) {
	if len(doc.Meshes) == 0 || len(doc.Meshes[0].Primitives) == 0 {
		return nil, errors.Errorf("Document has no meshes")
	}
	primitive := doc.Meshes[0].Primitives[0]
	posIndex, ok := primitive.Attributes["POSITION"]
	if !ok || int(posIndex) >= len(doc.Accessors) {
		return nil, errors.Errorf("Mesh %q has no positions", doc.Meshes[0].Name)
	}

	positions, err := modeler.ReadPosition(doc, doc.Accessors[posIndex], nil)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to read mesh vertices")
	}

	var indices []uint32
	if primitive.Indices != nil {
		if int(*primitive.Indices) >= len(doc.Accessors) {
			return nil, errors.Errorf("Indices accessor %d out of range", *primitive.Indices)
		}
		indices, err = modeler.ReadIndices(doc, doc.Accessors[*primitive.Indices], nil)
		if err != nil {
			return nil, errors.Wrapf(err, "Failed to read mesh indices")
		}
	} else {
		indices = make([]uint32, len(positions))
		for i := range indices {
			indices[i] = uint32(i)
		}
	}

	m := &Model{Path: path, Vertices: make([]Vertex, len(indices))}
	for i, index := range indices {
		if int(index) >= len(positions) {
			return nil, errors.Errorf("Index %d at %d out of %d positions", index, i, len(positions))
		}
		p := positions[index]
		m.Vertices[i] = Vertex{Location: mgl32.Vec3{p[0], p[2], p[1]}}
	}
	return m, nil
}
