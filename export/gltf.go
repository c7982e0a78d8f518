package export

import (
	"math"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/mogaika/msl_browser/scene"
	"github.com/mogaika/msl_browser/utils"
	"github.com/mogaika/msl_browser/utils/gltfutils"
)

// zUpToYUp rotates map space (z up) into gltf space (y up).
var zUpToYUp = [4]float32{-float32(math.Sqrt2 / 2), 0, 0, float32(math.Sqrt2 / 2)}

type gltfExporter struct {
	doc       *gltf.Document
	materials map[string]uint32
}

func (ge *gltfExporter) material(texture string) uint32 {
	if index, ok := ge.materials[texture]; ok {
		return index
	}
	index := uint32(len(ge.doc.Materials))
	ge.doc.Materials = append(ge.doc.Materials, &gltf.Material{
		Name: texture,
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
			BaseColorFactor: &[4]float32{1, 1, 1, 1},
		},
	})
	ge.materials[texture] = index
	return index
}

func (ge *gltfExporter) solidMesh(o *scene.Object) uint32 {
	doc := ge.doc
	names, groups := textureGroups(o.Solid)
	color := [4]uint8{o.Color.R, o.Color.G, o.Color.B, o.Color.A}

	mesh := &gltf.Mesh{Name: objectName(o)}
	for _, texture := range names {
		positions := make([][3]float32, 0, 16)
		normals := make([][3]float32, 0, 16)
		indices := make([]uint32, 0, 24)
		for _, f := range groups[texture] {
			indices = append(indices, fan(uint32(len(positions)), len(f.Vertices))...)
			for _, v := range f.Vertices {
				positions = append(positions, v)
				normals = append(normals, f.Plane.Normal)
			}
		}
		if len(indices) == 0 {
			continue
		}
		colors := make([][4]uint8, len(positions))
		for i := range colors {
			colors[i] = color
		}

		attributes := make(map[string]uint32)
		attributes["POSITION"] = modeler.WritePosition(doc, positions)
		attributes["NORMAL"] = modeler.WriteNormal(doc, normals)
		attributes["COLOR_0"] = modeler.WriteColor(doc, colors)
		indicesAccessor := modeler.WriteIndices(doc, indices)

		mesh.Primitives = append(mesh.Primitives, &gltf.Primitive{
			Indices:    gltf.Index(indicesAccessor),
			Attributes: attributes,
			Material:   gltf.Index(ge.material(texture)),
		})
	}
	doc.Meshes = append(doc.Meshes, mesh)
	return uint32(len(doc.Meshes) - 1)
}

func entityExtras(e *scene.Entity) map[string]string {
	extras := make(map[string]string, len(e.Properties)+1)
	extras["classname"] = e.ClassName
	for _, p := range e.Properties {
		extras[p.Key] = p.Value
	}
	return extras
}

// GLTF builds a document with one node per solid and entity under a root
// node named after the map.
func GLTF(name string, m *scene.Map) *gltf.Document {
	ge := &gltfExporter{
		doc:       gltfutils.NewDocument(),
		materials: make(map[string]uint32),
	}
	doc := ge.doc

	root := &gltf.Node{
		Name:     name,
		Rotation: zUpToYUp,
		Scale:    [3]float32{1, 1, 1},
	}
	gltfutils.AddRootNode(doc, root)

	for _, o := range m.Objects() {
		node := &gltf.Node{
			Name:     objectName(o),
			Rotation: [4]float32{0, 0, 0, 1},
			Scale:    [3]float32{1, 1, 1},
		}
		switch o.Kind {
		case scene.KindSolid:
			if len(o.Solid.Faces) == 0 {
				continue
			}
			node.Mesh = gltf.Index(ge.solidMesh(o))
			node.Extras = map[string]string{"color": utils.ColorHex(o.Color)}
		case scene.KindEntity:
			node.Translation = o.Entity.Origin
			if q, ok := entityRotation(o.Entity); ok {
				node.Rotation = [4]float32{q.V[0], q.V[1], q.V[2], q.W}
			}
			node.Extras = entityExtras(o.Entity)
		default:
			continue
		}
		root.Children = append(root.Children, uint32(len(doc.Nodes)))
		doc.Nodes = append(doc.Nodes, node)
	}
	return doc
}
