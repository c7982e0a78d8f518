package export

import (
	"encoding/json"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/mogaika/msl_browser/scene"
	"github.com/mogaika/msl_browser/utils"
)

type DocumentBox struct {
	Min [3]float32 `yaml:"min,flow" json:"min"`
	Max [3]float32 `yaml:"max,flow" json:"max"`
}

type DocumentFace struct {
	ID       int64        `yaml:"id" json:"id"`
	Texture  string       `yaml:"texture" json:"texture"`
	Normal   [3]float32   `yaml:"normal,flow" json:"normal"`
	Dist     float32      `yaml:"dist" json:"dist"`
	Vertices [][3]float32 `yaml:"vertices,flow" json:"vertices"`
	UAxis    [3]float32   `yaml:"u_axis,flow" json:"u_axis"`
	VAxis    [3]float32   `yaml:"v_axis,flow" json:"v_axis"`
	Scale    [2]float32   `yaml:"scale,flow" json:"scale"`
	Shift    [2]float32   `yaml:"shift,flow" json:"shift"`
	Rotation float32      `yaml:"rotation" json:"rotation"`
}

type DocumentSolid struct {
	ID     int64          `yaml:"id" json:"id"`
	Color  string         `yaml:"color" json:"color"`
	Bounds DocumentBox    `yaml:"bounds" json:"bounds"`
	Faces  []DocumentFace `yaml:"faces" json:"faces"`
}

type DocumentProperty struct {
	Key   string `yaml:"key" json:"key"`
	Value string `yaml:"value" json:"value"`
}

type DocumentEntity struct {
	ID         int64              `yaml:"id" json:"id"`
	ClassName  string             `yaml:"classname" json:"classname"`
	Origin     [3]float32         `yaml:"origin,flow" json:"origin"`
	Properties []DocumentProperty `yaml:"properties" json:"properties"`
}

// Document is a flat, serializable view of a map.
type Document struct {
	Name         string           `yaml:"name" json:"name"`
	CordonBounds DocumentBox      `yaml:"cordon_bounds" json:"cordon_bounds"`
	Bounds       *DocumentBox     `yaml:"bounds,omitempty" json:"bounds,omitempty"`
	Solids       []DocumentSolid  `yaml:"solids" json:"solids"`
	Entities     []DocumentEntity `yaml:"entities" json:"entities"`
}

func documentBox(b scene.Box) DocumentBox {
	return DocumentBox{Min: b.Min, Max: b.Max}
}

func NewDocument(name string, m *scene.Map) *Document {
	d := &Document{
		Name:         name,
		CordonBounds: documentBox(m.CordonBounds),
		Solids:       make([]DocumentSolid, 0),
		Entities:     make([]DocumentEntity, 0),
	}
	if b := m.BoundingBox(); !b.Empty() {
		box := documentBox(b)
		d.Bounds = &box
	}

	for _, o := range m.Objects() {
		switch o.Kind {
		case scene.KindSolid:
			ds := DocumentSolid{
				ID:     int64(o.ID),
				Color:  utils.ColorHex(o.Color),
				Bounds: documentBox(o.Solid.BoundingBox()),
				Faces:  make([]DocumentFace, len(o.Solid.Faces)),
			}
			for i, f := range o.Solid.Faces {
				t := &f.Texture
				ds.Faces[i] = DocumentFace{
					ID:       int64(f.ID),
					Texture:  t.Name,
					Normal:   f.Plane.Normal,
					Dist:     f.Plane.Dist,
					Vertices: utils.Vec3ArrayToFloat(f.Vertices),
					UAxis:    t.UAxis,
					VAxis:    t.VAxis,
					Scale:    [2]float32{t.XScale, t.YScale},
					Shift:    [2]float32{t.XShift, t.YShift},
					Rotation: t.Rotation,
				}
			}
			d.Solids = append(d.Solids, ds)
		case scene.KindEntity:
			de := DocumentEntity{
				ID:         int64(o.ID),
				ClassName:  o.Entity.ClassName,
				Origin:     o.Entity.Origin,
				Properties: make([]DocumentProperty, len(o.Entity.Properties)),
			}
			for i, p := range o.Entity.Properties {
				de.Properties[i] = DocumentProperty{Key: p.Key, Value: p.Value}
			}
			d.Entities = append(d.Entities, de)
		}
	}
	return d
}

func (d *Document) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return err
	}
	return enc.Close()
}

func (d *Document) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(d)
}
