package msl

import (
	"bytes"
	"encoding/binary"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/mogaika/msl_browser/msl/vertsoup"
)

// stream writes synthetic scene files. Vectors are given in scene order and
// stored as x, z, y.
type stream struct {
	bytes.Buffer
}

func (s *stream) f(values ...float32) *stream {
	for _, v := range values {
		binary.Write(&s.Buffer, binary.LittleEndian, v)
	}
	return s
}

func (s *stream) zeros(n int) *stream {
	for i := 0; i < n; i++ {
		s.f(0)
	}
	return s
}

func (s *stream) u32(v uint32) *stream {
	binary.Write(&s.Buffer, binary.LittleEndian, v)
	return s
}

func (s *stream) line(str string) *stream {
	s.WriteString(str)
	s.WriteByte('\n')
	return s
}

func (s *stream) vec(v mgl32.Vec3) *stream {
	return s.f(v[0], v[2], v[1])
}

func (s *stream) header(units int) *stream {
	return s.f(0, float32(units+2))
}

// mesh writes the per-mesh unknown float and a memblock with positions and normals.
func (s *stream) mesh(samples []vertsoup.Sample) *stream {
	const stride = 24
	s.f(0)
	s.u32(uint32(12 + len(samples)*stride))
	s.u32(vertsoup.FVFNormal)
	s.u32(stride)
	s.u32(uint32(len(samples)))
	for _, sample := range samples {
		s.vec(sample.Position)
		s.vec(sample.Normal)
	}
	return s
}

type textureRecord struct {
	name     string
	flags    float32
	scaleU   float32
	scaleV   float32
	rotation float32
}

func (s *stream) brush(meshes [][]vertsoup.Sample, translate, scale mgl32.Vec3, textures []textureRecord) *stream {
	s.f(float32(len(meshes)))
	for _, m := range meshes {
		s.mesh(m)
	}
	s.f(1)
	s.u32(8).f(0, 0)
	s.zeros(2)
	s.vec(translate).vec(scale)
	s.zeros(17)
	for _, t := range textures {
		s.line(t.name)
		s.f(t.flags)
		if t.flags == 800 {
			s.f(0)
		}
		s.zeros(4)
		s.f(t.scaleU, t.scaleV, 0, 0, t.rotation)
	}
	return s
}

func (s *stream) entityHeader(subType float32, translate, scale mgl32.Vec3) *stream {
	s.f(0) // no meshes
	s.f(0) // not a brush
	s.f(subType)
	s.zeros(1)
	return s.vec(translate).vec(scale)
}

func (s *stream) point(name string, translate mgl32.Vec3, props ...string) *stream {
	s.entityHeader(SubTypePoint, translate, mgl32.Vec3{1, 1, 1})
	s.zeros(27)
	s.line(name).line("icon_" + name)
	s.f(float32(len(props)/2 - 1))
	for _, p := range props {
		s.line(p)
	}
	return s
}

func (s *stream) model(meshes [][]vertsoup.Sample, translate, scale mgl32.Vec3, materials ...string) *stream {
	s.f(float32(len(meshes)))
	for _, m := range meshes {
		s.mesh(m)
	}
	s.f(0)
	s.f(SubTypeModel)
	s.zeros(1)
	s.vec(translate).vec(scale)
	s.zeros(16)
	s.f(float32(len(materials) - 1))
	for _, m := range materials {
		s.line(m)
		s.zeros(10)
	}
	return s
}

func (s *stream) reader() *bytes.Reader {
	return bytes.NewReader(s.Bytes())
}

func quad(n mgl32.Vec3, a, b, c, d mgl32.Vec3) []vertsoup.Sample {
	out := make([]vertsoup.Sample, 0, 6)
	for _, p := range []mgl32.Vec3{a, b, c, a, c, d} {
		out = append(out, vertsoup.Sample{Position: p, Normal: n})
	}
	return out
}

func cube(h float32) []vertsoup.Sample {
	s := make([]vertsoup.Sample, 0, 36)
	s = append(s, quad(mgl32.Vec3{0, 0, 1}, mgl32.Vec3{-h, -h, h}, mgl32.Vec3{h, -h, h}, mgl32.Vec3{h, h, h}, mgl32.Vec3{-h, h, h})...)
	s = append(s, quad(mgl32.Vec3{0, 0, -1}, mgl32.Vec3{-h, -h, -h}, mgl32.Vec3{-h, h, -h}, mgl32.Vec3{h, h, -h}, mgl32.Vec3{h, -h, -h})...)
	s = append(s, quad(mgl32.Vec3{1, 0, 0}, mgl32.Vec3{h, -h, -h}, mgl32.Vec3{h, h, -h}, mgl32.Vec3{h, h, h}, mgl32.Vec3{h, -h, h})...)
	s = append(s, quad(mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{-h, -h, -h}, mgl32.Vec3{-h, -h, h}, mgl32.Vec3{-h, h, h}, mgl32.Vec3{-h, h, -h})...)
	s = append(s, quad(mgl32.Vec3{0, 1, 0}, mgl32.Vec3{-h, h, -h}, mgl32.Vec3{-h, h, h}, mgl32.Vec3{h, h, h}, mgl32.Vec3{h, h, -h})...)
	s = append(s, quad(mgl32.Vec3{0, -1, 0}, mgl32.Vec3{-h, -h, -h}, mgl32.Vec3{h, -h, -h}, mgl32.Vec3{h, -h, h}, mgl32.Vec3{-h, -h, h})...)
	return s
}
