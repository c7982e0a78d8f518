package export

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/mogaika/fbx"
	"github.com/mogaika/fbx/builders/bfbx73"

	"github.com/mogaika/msl_browser/scene"
	"github.com/mogaika/msl_browser/utils"
	"github.com/mogaika/msl_browser/utils/fbxbuilder"
)

func fbxModel(id int64, name, class string, translation mgl32.Vec3, rotation mgl32.Vec3) *fbx.Node {
	return bfbx73.Model(id, name+"\x00\x01Model", class).AddNodes(
		bfbx73.Version(232),
		bfbx73.Properties70().AddNodes(
			bfbx73.P("InheritType", "enum", "", "", int32(1)),
			bfbx73.P("DefaultAttributeIndex", "int", "Integer", "", int32(0)),
			bfbx73.P("Lcl Translation", "Lcl Translation", "", "A",
				float64(translation[0]), float64(translation[1]), float64(translation[2])),
			bfbx73.P("Lcl Rotation", "Lcl Rotation", "", "A",
				float64(rotation[0]), float64(rotation[1]), float64(rotation[2])),
			bfbx73.P("Lcl Scaling", "Lcl Scaling", "", "A", float64(1), float64(1), float64(1)),
		),
		bfbx73.Shading(true),
		bfbx73.Culling("CullingOff"),
	)
}

func fbxMaterial(f *fbxbuilder.FBXBuilder, texture string) int64 {
	return f.CachedOr("material:"+texture, func() int64 {
		id := f.GenerateId()
		f.AddObjects(bfbx73.Material(id, texture+"\x00\x01Material", "").AddNodes(
			bfbx73.Version(102),
			bfbx73.ShadingModel("lambert"),
			bfbx73.MultiLayer(0),
			bfbx73.Properties70().AddNodes(
				bfbx73.P("AmbientColor", "Color", "", "A", float64(0), float64(0), float64(0)),
				bfbx73.P("DiffuseColor", "Color", "", "A", float64(1), float64(1), float64(1)),
				bfbx73.P("Opacity", "double", "Number", "", float64(1)),
			),
		))
		return id
	})
}

func fbxSolid(f *fbxbuilder.FBXBuilder, o *scene.Object, parent int64) {
	names, groups := textureGroups(o.Solid)
	color := utils.NewColorFloat(o.Color)

	vertices := make([]mgl32.Vec3, 0, 32)
	normals := make([]mgl32.Vec3, 0, 32)
	indexes := make([]int32, 0, 32)
	materials := make([]int32, 0, len(o.Solid.Faces))
	for iMaterial, texture := range names {
		for _, face := range groups[texture] {
			if len(face.Vertices) < 3 {
				continue
			}
			for i, v := range face.Vertices {
				index := int32(len(vertices))
				if i == len(face.Vertices)-1 {
					index = -index - 1
				}
				indexes = append(indexes, index)
				vertices = append(vertices, v)
				normals = append(normals, face.Plane.Normal)
			}
			materials = append(materials, int32(iMaterial))
		}
	}

	colors := make([]float64, 0, len(vertices)*4)
	for range vertices {
		colors = append(colors, float64(color[0]), float64(color[1]), float64(color[2]), float64(color[3]))
	}

	geometryId := f.GenerateId()
	geometry := bfbx73.Geometry(geometryId, "\x00\x01Geometry", "Mesh").AddNodes(
		bfbx73.Properties70().AddNodes(
			bfbx73.P("Color", "ColorRGB", "Color", "", float64(color[0]), float64(color[1]), float64(color[2])),
		),
		bfbx73.GeometryVersion(124),
		bfbx73.Vertices(utils.Vec3ArrayTo64(vertices)),
		bfbx73.PolygonVertexIndex(indexes),
		bfbx73.LayerElementNormal(0).AddNodes(
			bfbx73.Version(101),
			bfbx73.Name(""),
			bfbx73.MappingInformationType("ByVertice"),
			bfbx73.ReferenceInformationType("Direct"),
			bfbx73.Normals(utils.Vec3ArrayTo64(normals)),
		),
		bfbx73.LayerElementColor(0).AddNodes(
			bfbx73.Version(101),
			bfbx73.Name(""),
			bfbx73.MappingInformationType("ByVertice"),
			bfbx73.ReferenceInformationType("Direct"),
			bfbx73.Colors(colors),
		),
		bfbx73.LayerElementMaterial(0).AddNodes(
			bfbx73.Version(101),
			bfbx73.Name(""),
			bfbx73.MappingInformationType("ByPolygon"),
			bfbx73.ReferenceInformationType("IndexToDirect"),
			bfbx73.Materials(materials),
		),
		bfbx73.Layer(0).AddNodes(
			bfbx73.Version(100),
			bfbx73.LayerElement().AddNodes(bfbx73.Type("LayerElementNormal"), bfbx73.TypedIndex(0)),
			bfbx73.LayerElement().AddNodes(bfbx73.Type("LayerElementColor"), bfbx73.TypedIndex(0)),
			bfbx73.LayerElement().AddNodes(bfbx73.Type("LayerElementMaterial"), bfbx73.TypedIndex(0)),
		),
	)

	modelId := f.GenerateId()
	f.AddObjects(fbxModel(modelId, objectName(o), "Mesh", mgl32.Vec3{}, mgl32.Vec3{}), geometry)
	f.AddConnections(
		bfbx73.C("OO", geometryId, modelId),
		bfbx73.C("OO", modelId, parent),
	)
	// material index order follows connection order
	for _, texture := range names {
		f.AddConnections(bfbx73.C("OO", fbxMaterial(f, texture), modelId))
	}
}

func fbxEntity(f *fbxbuilder.FBXBuilder, o *scene.Object, parent int64) {
	rotation, _ := entityAngles(o.Entity)

	modelId := f.GenerateId()
	name := objectName(o)
	nodeAttribute := bfbx73.NodeAttribute(f.GenerateId(), name+"\x00\x01NodeAttribute", "Null").AddNodes(
		bfbx73.TypeFlags("Null"),
	)
	f.AddObjects(fbxModel(modelId, name, "Null", o.Entity.Origin, rotation), nodeAttribute)
	f.AddConnections(
		bfbx73.C("OO", nodeAttribute.Properties[0].(int64), modelId),
		bfbx73.C("OO", modelId, parent),
	)
}

// FBX builds a document with a map root node turning z up into y up.
func FBX(name string, m *scene.Map) *fbxbuilder.FBXBuilder {
	f := fbxbuilder.NewFBXBuilder(name + FormatFBX.Extension())

	rootId := f.GenerateId()
	f.AddObjects(fbxModel(rootId, name, "Null", mgl32.Vec3{}, mgl32.Vec3{-90, 0, 0}))
	f.AddConnections(bfbx73.C("OO", rootId, 0))

	for _, o := range m.Objects() {
		switch o.Kind {
		case scene.KindSolid:
			if len(o.Solid.Faces) != 0 {
				fbxSolid(f, o, rootId)
			}
		case scene.KindEntity:
			fbxEntity(f, o, rootId)
		}
	}
	return f
}
