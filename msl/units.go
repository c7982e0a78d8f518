package msl

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/mogaika/msl_browser/msl/cursor"
	"github.com/mogaika/msl_browser/msl/vertsoup"
	"github.com/mogaika/msl_browser/scene"
)

type Kind int

const (
	KindBrush Kind = iota
	KindPoint
	KindModel
	KindUnknown
)

func (k Kind) String() string {
	switch k {
	case KindBrush:
		return "brush"
	case KindPoint:
		return "point"
	case KindModel:
		return "model"
	case KindUnknown:
		return "unknown"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

const (
	SubTypeModel = 2
	SubTypePoint = 3

	HiddenFaceTexture = "tooltextures/remove_face"
)

// Unit is one decoded top level record: *BrushUnit, *PointUnit, *ModelUnit or
// *UnknownUnit.
type Unit interface {
	Kind() Kind
	Common() *UnitHeader
}

type MeshRef struct {
	Unknown float32
	Offset  int64 // of the memblock size prefix
	Block   cursor.Block
}

type UnitHeader struct {
	Index  int
	Offset int64
	Meshes []MeshRef
}

func (h *UnitHeader) Common() *UnitHeader { return h }

// Transform is stored next to every unit, already in scene axis order.
type Transform struct {
	Translate mgl32.Vec3
	Scale     mgl32.Vec3
}

type TextureInfo struct {
	Name     string
	Hidden   bool
	Lit      bool
	ScaleU   float32
	ScaleV   float32
	ShiftU   float32
	ShiftV   float32
	Rotation float32
}

type BrushUnit struct {
	UnitHeader
	Transform
	Soups    []*vertsoup.Soup
	Textures []TextureInfo
}

func (*BrushUnit) Kind() Kind { return KindBrush }

type PointUnit struct {
	UnitHeader
	Transform
	Name       string
	Icon       string
	Properties []scene.Property // keys lower-cased, unique
}

func (*PointUnit) Kind() Kind { return KindPoint }

func (u *PointUnit) Property(key string) (string, bool) {
	for _, p := range u.Properties {
		if p.Key == key {
			return p.Value, true
		}
	}
	return "", false
}

type ModelUnit struct {
	UnitHeader
	Transform
	Soups     []*vertsoup.Soup
	Materials []string
}

func (*ModelUnit) Kind() Kind { return KindModel }

type UnknownUnit struct {
	UnitHeader
	Transform
	SubType float32
}

func (*UnknownUnit) Kind() Kind { return KindUnknown }
