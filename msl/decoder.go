package msl

import (
	"io"
	"math"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/mogaika/msl_browser/msl/cursor"
	"github.com/mogaika/msl_browser/msl/vertsoup"
	"github.com/mogaika/msl_browser/scene"
	"github.com/mogaika/msl_browser/utils"
)

// Float runs with no known meaning. They differ per branch and are kept exactly.
const (
	brushSkipBeforeTransform  = 2
	brushSkipAfterTransform   = 17
	entitySkipBeforeTransform = 1
	pointSkipAfterTransform   = 27
	modelSkipAfterMeshes      = 16
	materialSkip              = 10
	textureSkip               = 4

	entityCountBias = 2

	flagHidden = 1
	flagLit    = 800
)

type Header struct {
	HasLightmap    bool
	Lightmap       cursor.Block
	EntityCountRaw float32
	UnitCount      int
}

// Decoder walks the stream unit by unit. It is not safe for concurrent use and
// owns the reader until the last unit is decoded.
type Decoder struct {
	Header Header

	c    *cursor.Cursor
	log  *utils.Logger
	next int
}

func NewDecoder(r io.ReadSeeker, log *utils.Logger) (*Decoder, error) {
	c, err := cursor.New(r)
	if err != nil {
		return nil, err
	}
	d := &Decoder{c: c, log: log}
	if err := d.readHeader(); err != nil {
		return nil, err
	}
	return d, nil
}

// count converts a float encoded counter the way the engine does: truncation.
func count(raw float32, offset int64, what string, max int) (int, error) {
	f := float64(raw)
	if math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) > float64(math.MaxInt32) {
		return 0, &UnsupportedFormatError{Offset: offset, Reason: what + " is not a number"}
	}
	n := int(f)
	if max > 0 && n > max {
		return 0, &UnsupportedFormatError{Offset: offset, Reason: what + " is too large"}
	}
	return n, nil
}

func (d *Decoder) readHeader() error {
	h := &d.Header
	var err error
	if h.HasLightmap, err = d.c.ReadFlag(); err != nil {
		return errors.Wrapf(err, "lightmap flag")
	}
	d.log.Printf("hasLightmap: %v", h.HasLightmap)
	if h.HasLightmap {
		if h.Lightmap, err = d.c.SkipBlock(); err != nil {
			return errors.Wrapf(err, "lightmap")
		}
		d.log.Printf("skipped lightmap %v", h.Lightmap)
	}

	at := d.c.Pos()
	if h.EntityCountRaw, err = d.c.ReadLF(); err != nil {
		return errors.Wrapf(err, "entity count")
	}
	n, err := count(h.EntityCountRaw, at, "entity count", 0)
	if err != nil {
		return err
	}
	h.UnitCount = n - entityCountBias
	if h.UnitCount < 0 {
		h.UnitCount = 0
	}
	d.log.Printf("entityCount: %v (raw %v)", h.UnitCount, h.EntityCountRaw)
	return nil
}

func (d *Decoder) More() bool {
	return d.next < d.Header.UnitCount
}

func (d *Decoder) Pos() int64 {
	return d.c.Pos()
}

// Next decodes the next unit. Any error is fatal for the rest of the stream.
func (d *Decoder) Next() (Unit, error) {
	if !d.More() {
		return nil, io.EOF
	}
	index := d.next
	d.next++

	u, err := d.readUnit(index)
	if err != nil {
		return nil, errors.Wrapf(err, "unit %d", index)
	}
	return u, nil
}

func (d *Decoder) readUnit(index int) (Unit, error) {
	h := UnitHeader{Index: index, Offset: d.c.Pos()}

	meshCountRaw, err := d.c.ReadLF()
	if err != nil {
		return nil, errors.Wrapf(err, "mesh count")
	}
	meshCount, err := count(meshCountRaw, h.Offset, "mesh count", MaxMeshesPerUnit)
	if err != nil {
		return nil, err
	}
	if meshCount < 0 {
		return nil, &UnsupportedFormatError{Offset: h.Offset, Reason: "negative mesh count"}
	}
	d.log.Printf("**** unit %d meshCount: %d", index, meshCount)

	h.Meshes = make([]MeshRef, meshCount)
	for j := range h.Meshes {
		ref := &h.Meshes[j]
		if ref.Unknown, err = d.c.ReadLF(); err != nil {
			return nil, errors.Wrapf(err, "mesh %d", j)
		}
		ref.Offset = d.c.Pos()
		if ref.Block, err = d.c.SkipBlock(); err != nil {
			return nil, errors.Wrapf(err, "mesh %d", j)
		}
		d.log.Printf("mesh %d: unknown %v %v", j, ref.Unknown, ref.Block)
	}

	isBrush, err := d.c.ReadFlag()
	if err != nil {
		return nil, errors.Wrapf(err, "brush flag")
	}
	d.log.Printf("isBrush: %v at 0x%x", isBrush, d.c.Pos())

	if isBrush {
		return d.readBrush(h)
	}
	return d.readEntity(h)
}

// readSoups revisits the mesh records bookmarked in the unit header and returns to
// where the unit body continues.
func (d *Decoder) readSoups(h *UnitHeader) ([]*vertsoup.Soup, error) {
	returnPosition := d.c.Pos()
	soups := make([]*vertsoup.Soup, len(h.Meshes))
	for j, ref := range h.Meshes {
		if err := d.c.Seek(ref.Offset); err != nil {
			return nil, err
		}
		soup, err := vertsoup.Read(d.c, d.log)
		if err != nil {
			var he *vertsoup.HeaderError
			if errors.As(err, &he) {
				return nil, &UnsupportedFormatError{Offset: he.Offset, Reason: he.Reason}
			}
			return nil, errors.Wrapf(err, "mesh %d", j)
		}
		soups[j] = soup
	}
	return soups, d.c.Seek(returnPosition)
}

func (d *Decoder) skipFloats(n int, what string) error {
	if err := d.c.SkipFloats(n); err != nil {
		return errors.Wrapf(err, "%s", what)
	}
	d.log.Printf("skipped %d floats (%s)", n, what)
	return nil
}

func (d *Decoder) readVec3() (mgl32.Vec3, error) {
	v, err := d.c.ReadVec3Swapped()
	return mgl32.Vec3(v), err
}

func (d *Decoder) readTransform(t *Transform) error {
	var err error
	if t.Translate, err = d.readVec3(); err != nil {
		return errors.Wrapf(err, "translate")
	}
	if t.Scale, err = d.readVec3(); err != nil {
		return errors.Wrapf(err, "scale")
	}
	d.log.Printf("translate %v scale %v", t.Translate, t.Scale)
	return nil
}

func (d *Decoder) readBrush(h UnitHeader) (*BrushUnit, error) {
	u := &BrushUnit{UnitHeader: h}
	var err error
	if u.Soups, err = d.readSoups(&u.UnitHeader); err != nil {
		return nil, err
	}

	if b, err := d.c.SkipBlock(); err != nil {
		return nil, errors.Wrapf(err, "brush trailer")
	} else {
		d.log.Printf("skipped brush trailer %v", b)
	}
	if err := d.skipFloats(brushSkipBeforeTransform, "brush prefix"); err != nil {
		return nil, err
	}
	if err := d.readTransform(&u.Transform); err != nil {
		return nil, err
	}
	if err := d.skipFloats(brushSkipAfterTransform, "brush suffix"); err != nil {
		return nil, err
	}

	u.Textures = make([]TextureInfo, len(h.Meshes))
	for j := range u.Textures {
		if err := d.readTextureInfo(&u.Textures[j]); err != nil {
			return nil, errors.Wrapf(err, "texture %d", j)
		}
	}
	return u, nil
}

func (d *Decoder) readTextureInfo(t *TextureInfo) error {
	line, err := d.c.ReadLine()
	if err != nil {
		return err
	}
	t.Name = utils.BaseNameNoExt(line)

	flags, err := d.c.ReadLF()
	if err != nil {
		return err
	}
	t.Hidden = cursor.Near(flags, flagHidden)
	t.Lit = cursor.Near(flags, flagLit)
	if t.Lit {
		if err := d.skipFloats(1, "lit face"); err != nil {
			return err
		}
	}
	if err := d.skipFloats(textureSkip, "texture prefix"); err != nil {
		return err
	}

	for _, f := range []*float32{&t.ScaleU, &t.ScaleV, &t.ShiftU, &t.ShiftV, &t.Rotation} {
		if *f, err = d.c.ReadLF(); err != nil {
			return err
		}
	}
	if t.Hidden {
		t.Name = HiddenFaceTexture
	}
	d.log.Printf("texture %q flags %v scale %v,%v shift %v,%v rot %v",
		t.Name, flags, t.ScaleU, t.ScaleV, t.ShiftU, t.ShiftV, t.Rotation)
	return nil
}

func (d *Decoder) readEntity(h UnitHeader) (Unit, error) {
	subType, err := d.c.ReadLF()
	if err != nil {
		return nil, errors.Wrapf(err, "entity subtype")
	}
	d.log.Printf("entitySubType: %v", subType)
	if err := d.skipFloats(entitySkipBeforeTransform, "entity prefix"); err != nil {
		return nil, err
	}
	var t Transform
	if err := d.readTransform(&t); err != nil {
		return nil, err
	}

	switch {
	case cursor.Near(subType, SubTypePoint):
		return d.readPoint(h, t)
	case cursor.Near(subType, SubTypeModel):
		return d.readModel(h, t)
	}

	if err := d.skipFloats(pointSkipAfterTransform, "unknown entity"); err != nil {
		return nil, err
	}
	return &UnknownUnit{UnitHeader: h, Transform: t, SubType: subType}, nil
}

func (d *Decoder) readPoint(h UnitHeader, t Transform) (*PointUnit, error) {
	u := &PointUnit{UnitHeader: h, Transform: t}
	if err := d.skipFloats(pointSkipAfterTransform, "point entity"); err != nil {
		return nil, err
	}

	var err error
	if u.Name, err = d.c.ReadLine(); err != nil {
		return nil, errors.Wrapf(err, "entity name")
	}
	if u.Icon, err = d.c.ReadLine(); err != nil {
		return nil, errors.Wrapf(err, "entity icon")
	}

	at := d.c.Pos()
	raw, err := d.c.ReadLF()
	if err != nil {
		return nil, errors.Wrapf(err, "property count")
	}
	n, err := count(raw, at, "property count", MaxProperties)
	if err != nil {
		return nil, err
	}
	d.log.Printf("point entity %q icon %q properties %d", u.Name, u.Icon, n+1)

	for j := 0; j < n+1; j++ {
		key, err := d.c.ReadLine()
		if err != nil {
			return nil, errors.Wrapf(err, "property %d key", j)
		}
		value, err := d.c.ReadLine()
		if err != nil {
			return nil, errors.Wrapf(err, "property %d value", j)
		}
		key = strings.ToLower(key)
		d.log.Printf("%s: %s", key, value)
		u.Properties = setProperty(u.Properties, key, value)
	}
	return u, nil
}

func setProperty(props []scene.Property, key, value string) []scene.Property {
	for i := range props {
		if props[i].Key == key {
			props[i].Value = value
			return props
		}
	}
	return append(props, scene.Property{Key: key, Value: value})
}

func (d *Decoder) readModel(h UnitHeader, t Transform) (*ModelUnit, error) {
	u := &ModelUnit{UnitHeader: h, Transform: t}
	var err error
	if u.Soups, err = d.readSoups(&u.UnitHeader); err != nil {
		return nil, err
	}
	if err := d.skipFloats(modelSkipAfterMeshes, "model"); err != nil {
		return nil, err
	}

	at := d.c.Pos()
	raw, err := d.c.ReadLF()
	if err != nil {
		return nil, errors.Wrapf(err, "material count")
	}
	n, err := count(raw, at, "material count", MaxMaterials)
	if err != nil {
		return nil, err
	}
	for j := 0; j < n+1; j++ {
		name, err := d.c.ReadLine()
		if err != nil {
			return nil, errors.Wrapf(err, "material %d", j)
		}
		d.log.Printf("material %d: %s", j, name)
		u.Materials = append(u.Materials, name)
		if err := d.skipFloats(materialSkip, "material"); err != nil {
			return nil, err
		}
	}
	return u, nil
}
