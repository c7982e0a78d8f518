package msl

import (
	"fmt"
	"io"
	"log"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/mogaika/msl_browser/msl/align"
	"github.com/mogaika/msl_browser/msl/faces"
	"github.com/mogaika/msl_browser/reference"
	"github.com/mogaika/msl_browser/scene"
	"github.com/mogaika/msl_browser/utils"
)

const minExtent = 1e-6

type Options struct {
	// nil means no reference models: model entities keep translation only
	References  *reference.Source
	PreScale    float32 // uniform brush scale around its centre, 0 means 1
	BrushColors *utils.BrushColorGenerator
	Trace       *utils.Logger
}

type Warning struct {
	Unit    int
	Offset  int64
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("unit %d (0x%x): %s", w.Unit, w.Offset, w.Message)
}

// ModelMatch is the alignment attempt of one model mesh against one candidate.
type ModelMatch struct {
	Unit      int
	Mesh      int
	Reference string
	Alignment *align.Result
	Err       error
}

type Result struct {
	Map *scene.Map
	// faces of every brush mesh record, in stream order
	Faces      [][]*scene.Face
	Units      []Kind
	Warnings   []Warning
	References []reference.Outcome
	Models     []ModelMatch
}

type importer struct {
	opts    Options
	res     *Result
	library *reference.Library
	unit    *UnitHeader
}

// Import decodes a whole scene stream. Any decode error is fatal and no partial
// map is returned. Reference models are loaded on the first model entity and
// always released before returning.
func Import(r io.ReadSeeker, opts Options) (*Result, error) {
	if opts.PreScale == 0 {
		opts.PreScale = 1
	}
	if opts.BrushColors == nil {
		opts.BrushColors = utils.NewBrushColorGenerator(0)
	}

	imp := &importer{
		opts: opts,
		res:  &Result{Map: scene.NewMap()},
	}
	defer imp.release()

	d, err := NewDecoder(r, opts.Trace)
	if err != nil {
		return nil, err
	}

	for d.More() {
		u, err := d.Next()
		if err != nil {
			return nil, err
		}
		imp.unit = u.Common()
		imp.res.Units = append(imp.res.Units, u.Kind())

		switch u := u.(type) {
		case *BrushUnit:
			err = imp.brush(u)
		case *PointUnit:
			err = imp.point(u)
		case *ModelUnit:
			err = imp.model(u)
		case *UnknownUnit:
			imp.warn("unknown entity subtype %v ignored", u.SubType)
		}
		if err != nil {
			return nil, errors.Wrapf(err, "unit %d", u.Common().Index)
		}
	}
	return imp.res, nil
}

func (imp *importer) warn(format string, args ...interface{}) {
	w := Warning{Message: fmt.Sprintf(format, args...)}
	if imp.unit != nil {
		w.Unit = imp.unit.Index
		w.Offset = imp.unit.Offset
	}
	log.Printf("[msl] warning: %v", w)
	imp.opts.Trace.Printf("warning: %v", w)
	imp.res.Warnings = append(imp.res.Warnings, w)
}

func (imp *importer) references() *reference.Library {
	if imp.library == nil {
		if imp.opts.References != nil {
			imp.library = imp.opts.References.Load()
		} else {
			imp.library = (&reference.Source{}).Load()
		}
		imp.res.References = imp.library.Outcomes
		imp.opts.Trace.Printf("loaded %d reference models", imp.library.Len())
	}
	return imp.library
}

func (imp *importer) release() {
	if imp.library != nil {
		imp.library.Release()
	}
}

func (imp *importer) brush(u *BrushUnit) error {
	m := imp.res.Map
	perMesh := make([][]*scene.Face, len(u.Soups))
	total := 0
	for j, soup := range u.Soups {
		for _, poly := range faces.Reconstruct(soup.Samples) {
			if poly.Degenerate() {
				imp.warn("mesh %d: dropped degenerate face with %d vertices", j, len(poly.Vertices))
				continue
			}
			perMesh[j] = append(perMesh[j], &scene.Face{
				ID:       m.IDs.NextFaceID(),
				Vertices: poly.Vertices,
				Plane:    scene.Plane{Normal: poly.Normal, Dist: poly.Dist},
			})
		}
		total += len(perMesh[j])
	}
	imp.res.Faces = append(imp.res.Faces, perMesh...)

	if total == 0 {
		imp.warn("brush without faces skipped")
		return nil
	}

	solid := &scene.Solid{Faces: make([]*scene.Face, 0, total)}
	for _, list := range perMesh {
		solid.Faces = append(solid.Faces, list...)
	}
	if _, err := m.AddSolid(m.World, solid, imp.opts.BrushColors.Next()); err != nil {
		return err
	}
	imp.place(solid, u.Transform)

	for j, list := range perMesh {
		tex := u.Textures[j]
		for _, f := range list {
			f.Texture.Name = tex.Name
			f.AlignTextureToWorld()
			f.Texture.XScale = tex.ScaleU * 0.25
			f.Texture.YScale = tex.ScaleV * 0.25
			f.Texture.XShift = tex.ShiftU
			f.Texture.YShift = tex.ShiftV
			f.SetTextureRotation(tex.Rotation)
		}
	}
	return nil
}

// place applies the stored transform: uniform pre-scale around the centre, then
// scale about the origin so the solid size matches the stored one, then translate.
func (imp *importer) place(solid *scene.Solid, t Transform) {
	if pre := imp.opts.PreScale; pre != 1 {
		solid.Transform(scene.ScaleAround(mgl32.Vec3{pre, pre, pre}, solid.BoundingBox().Center()))
	}

	size := solid.BoundingBox().Size()
	var factor mgl32.Vec3
	for i := 0; i < 3; i++ {
		factor[i] = 1
		if size[i] < minExtent {
			continue
		}
		f := t.Scale[i] / size[i]
		if f == 0 || math.IsNaN(float64(f)) || math.IsInf(float64(f), 0) {
			imp.warn("brush scale %v along axis %d ignored", t.Scale[i], i)
			continue
		}
		factor[i] = f
	}
	solid.Transform(scene.ScaleAround(factor, mgl32.Vec3{}))
	solid.Transform(scene.Translate(t.Translate))
}

func (imp *importer) point(u *PointUnit) error {
	e := applySchema(u, imp.warn)
	m := imp.res.Map
	_, err := m.AddEntity(m.World, e, scene.DefaultEntityColor)
	return err
}

func (imp *importer) model(u *ModelUnit) error {
	lib := imp.references()
	if len(u.Materials) != 0 {
		imp.opts.Trace.Printf("model materials: %v", u.Materials)
	}

	var matched, resolved *reference.Model
	var alignment *align.Result
	for j, soup := range u.Soups {
		positions := soup.Positions()
		for _, candidate := range lib.Candidates(len(positions)) {
			if matched == nil {
				matched = candidate
			}
			a, err := align.Align(candidate.Locations(), positions, u.Scale)
			imp.res.Models = append(imp.res.Models, ModelMatch{
				Unit:      u.Index,
				Mesh:      j,
				Reference: candidate.Path,
				Alignment: a,
				Err:       err,
			})
			if err != nil {
				imp.opts.Trace.Printf("mesh %d vs %q: %v", j, candidate.Path, err)
				continue
			}
			resolved, alignment = candidate, a
			break
		}
	}

	e := &scene.Entity{ClassName: "model", Origin: u.Translate}
	switch {
	case resolved != nil:
		e.Set("file", resolved.Name())
		e.Set("angles", FormatVector(float64(alignment.Angles[0]), float64(alignment.Angles[1]), float64(alignment.Angles[2])))
		e.Set("scale", FormatVector(float64(alignment.Scale[0]), float64(alignment.Scale[1]), float64(alignment.Scale[2])))
	case matched != nil:
		e.Set("file", matched.Name())
		imp.warn("model %q alignment unresolved, placed by translation only", matched.Name())
	default:
		imp.warn("no reference model matches the vertex counts of %d meshes", len(u.Soups))
	}

	m := imp.res.Map
	_, err := m.AddEntity(m.World, e, scene.DefaultEntityColor)
	return err
}
