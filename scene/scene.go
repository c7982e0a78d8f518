// Package scene is the editable map produced by importers: a world root owning
// solids and entities, stored in an arena keyed by generated ids.
package scene

import (
	"fmt"
	"image/color"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

const CordonExtent = 16384

type ID int64

type IDGenerator struct {
	lastObject ID
	lastFace   ID
}

func (g *IDGenerator) NextObjectID() ID {
	g.lastObject++
	return g.lastObject
}

func (g *IDGenerator) NextFaceID() ID {
	g.lastFace++
	return g.lastFace
}

type Kind int

const (
	KindWorld Kind = iota
	KindSolid
	KindEntity
)

func (k Kind) String() string {
	switch k {
	case KindWorld:
		return "world"
	case KindSolid:
		return "solid"
	case KindEntity:
		return "entity"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

var DefaultEntityColor = color.RGBA{R: 255, G: 0, B: 255, A: 255}

type Object struct {
	ID       ID
	Kind     Kind
	Parent   ID
	Children []ID
	Color    color.RGBA
	Solid    *Solid
	Entity   *Entity
}

type Map struct {
	IDs          IDGenerator
	World        ID
	CordonBounds Box

	objects map[ID]*Object
	order   []ID
}

func NewMap() *Map {
	m := &Map{objects: make(map[ID]*Object)}
	m.CordonBounds = Box{
		Min: mgl32.Vec3{-CordonExtent, -CordonExtent, -CordonExtent},
		Max: mgl32.Vec3{CordonExtent, CordonExtent, CordonExtent},
	}
	world := &Object{
		ID:     m.IDs.NextObjectID(),
		Kind:   KindWorld,
		Entity: &Entity{ClassName: "worldspawn"},
	}
	m.World = world.ID
	m.objects[world.ID] = world
	m.order = append(m.order, world.ID)
	return m
}

func (m *Map) Object(id ID) *Object {
	return m.objects[id]
}

func (m *Map) Root() *Object {
	return m.objects[m.World]
}

// Len returns the number of objects including the world root.
func (m *Map) Len() int {
	return len(m.order)
}

func (m *Map) attach(parent ID, o *Object) (*Object, error) {
	p, ok := m.objects[parent]
	if !ok {
		return nil, errors.Errorf("Parent object %d does not exist", parent)
	}
	if p.Kind == KindSolid {
		return nil, errors.Errorf("Solid %d cannot own children", parent)
	}
	o.ID = m.IDs.NextObjectID()
	o.Parent = parent
	p.Children = append(p.Children, o.ID)
	m.objects[o.ID] = o
	m.order = append(m.order, o.ID)
	return o, nil
}

func (m *Map) AddSolid(parent ID, s *Solid, c color.RGBA) (*Object, error) {
	return m.attach(parent, &Object{Kind: KindSolid, Solid: s, Color: c})
}

func (m *Map) AddEntity(parent ID, e *Entity, c color.RGBA) (*Object, error) {
	return m.attach(parent, &Object{Kind: KindEntity, Entity: e, Color: c})
}

func (m *Map) Children(id ID) []*Object {
	o, ok := m.objects[id]
	if !ok {
		return nil
	}
	result := make([]*Object, len(o.Children))
	for i, child := range o.Children {
		result[i] = m.objects[child]
	}
	return result
}

// Objects returns every object in creation order, world first.
func (m *Map) Objects() []*Object {
	result := make([]*Object, len(m.order))
	for i, id := range m.order {
		result[i] = m.objects[id]
	}
	return result
}

func (m *Map) Solids() []*Object {
	return m.filter(KindSolid)
}

func (m *Map) Entities() []*Object {
	return m.filter(KindEntity)
}

func (m *Map) filter(kind Kind) []*Object {
	result := make([]*Object, 0)
	for _, id := range m.order {
		if o := m.objects[id]; o.Kind == kind {
			result = append(result, o)
		}
	}
	return result
}

// BoundingBox covers every solid face and entity origin.
func (m *Map) BoundingBox() Box {
	b := EmptyBox()
	for _, o := range m.Objects() {
		switch o.Kind {
		case KindSolid:
			b = b.Union(o.Solid.BoundingBox())
		case KindEntity:
			b.Extend(o.Entity.Origin)
		}
	}
	return b
}
