package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

type Box struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// EmptyBox is inverted so that the first Extend sets both corners.
func EmptyBox() Box {
	inf := float32(math.Inf(1))
	return Box{
		Min: mgl32.Vec3{inf, inf, inf},
		Max: mgl32.Vec3{-inf, -inf, -inf},
	}
}

func (b Box) Empty() bool {
	return b.Min[0] > b.Max[0] || b.Min[1] > b.Max[1] || b.Min[2] > b.Max[2]
}

func (b *Box) Extend(v mgl32.Vec3) {
	for i := 0; i < 3; i++ {
		if v[i] < b.Min[i] {
			b.Min[i] = v[i]
		}
		if v[i] > b.Max[i] {
			b.Max[i] = v[i]
		}
	}
}

func (b Box) Union(o Box) Box {
	if o.Empty() {
		return b
	}
	b.Extend(o.Min)
	b.Extend(o.Max)
	return b
}

func (b Box) Center() mgl32.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Size is (width, length, height) along X, Y, Z.
func (b Box) Size() mgl32.Vec3 {
	if b.Empty() {
		return mgl32.Vec3{}
	}
	return b.Max.Sub(b.Min)
}

type Plane struct {
	Normal mgl32.Vec3
	Dist   float32
}

func NewPlane(normal, point mgl32.Vec3) Plane {
	return Plane{Normal: normal, Dist: normal.Dot(point)}
}

func (p Plane) Distance(v mgl32.Vec3) float32 {
	return p.Normal.Dot(v) - p.Dist
}

// ClosestAxis returns the world axis most parallel to the normal.
func (p Plane) ClosestAxis() mgl32.Vec3 {
	x := math.Abs(float64(p.Normal[0]))
	y := math.Abs(float64(p.Normal[1]))
	z := math.Abs(float64(p.Normal[2]))
	switch {
	case x >= y && x >= z:
		return mgl32.Vec3{1, 0, 0}
	case y >= z:
		return mgl32.Vec3{0, 1, 0}
	default:
		return mgl32.Vec3{0, 0, 1}
	}
}

type Texture struct {
	Name     string
	UAxis    mgl32.Vec3
	VAxis    mgl32.Vec3
	XScale   float32
	YScale   float32
	XShift   float32
	YShift   float32
	Rotation float32 // degrees
}

type Face struct {
	ID       ID
	Vertices []mgl32.Vec3
	Plane    Plane
	Texture  Texture
}

func (f *Face) BoundingBox() Box {
	b := EmptyBox()
	for _, v := range f.Vertices {
		b.Extend(v)
	}
	return b
}

// AlignTextureToWorld projects the texture along the world axis closest to the
// face normal and resets the rotation.
func (f *Face) AlignTextureToWorld() {
	axis := f.Plane.ClosestAxis()
	if axis[0] == 1 {
		f.Texture.UAxis = mgl32.Vec3{0, 1, 0}
	} else {
		f.Texture.UAxis = mgl32.Vec3{1, 0, 0}
	}
	if axis[2] == 1 {
		f.Texture.VAxis = mgl32.Vec3{0, -1, 0}
	} else {
		f.Texture.VAxis = mgl32.Vec3{0, 0, -1}
	}
	f.Texture.Rotation = 0
}

// SetTextureRotation turns both texture axes around the texture normal so the
// face ends up rotated by degrees.
func (f *Face) SetTextureRotation(degrees float32) {
	normal := f.Texture.VAxis.Cross(f.Texture.UAxis)
	if normal.LenSqr() == 0 {
		f.Texture.Rotation = degrees
		return
	}
	q := mgl32.QuatRotate(mgl32.DegToRad(f.Texture.Rotation-degrees), normal.Normalize())
	f.Texture.UAxis = q.Rotate(f.Texture.UAxis)
	f.Texture.VAxis = q.Rotate(f.Texture.VAxis)
	f.Texture.Rotation = degrees
}

// Transform moves every vertex by m and rebuilds the plane. Mirroring transforms
// reverse the vertex order to keep the winding consistent with the normal.
func (f *Face) Transform(m mgl32.Mat4) {
	for i, v := range f.Vertices {
		f.Vertices[i] = mgl32.TransformCoordinate(v, m)
	}

	basis := m.Mat3()
	normal := basis.Inv().Transpose().Mul3x1(f.Plane.Normal)
	if l := normal.Len(); l > 0 {
		normal = normal.Mul(1 / l)
	}
	if basis.Det() < 0 {
		for i, j := 0, len(f.Vertices)-1; i < j; i, j = i+1, j-1 {
			f.Vertices[i], f.Vertices[j] = f.Vertices[j], f.Vertices[i]
		}
	}
	if len(f.Vertices) != 0 {
		f.Plane = NewPlane(normal, f.Vertices[0])
	} else {
		f.Plane.Normal = normal
	}
}

type Solid struct {
	Faces []*Face
}

func (s *Solid) BoundingBox() Box {
	b := EmptyBox()
	for _, f := range s.Faces {
		b = b.Union(f.BoundingBox())
	}
	return b
}

func (s *Solid) Transform(m mgl32.Mat4) {
	for _, f := range s.Faces {
		f.Transform(m)
	}
}

// ScaleAround scales by s keeping origin in place.
func ScaleAround(s, origin mgl32.Vec3) mgl32.Mat4 {
	return mgl32.Translate3D(origin[0], origin[1], origin[2]).
		Mul4(mgl32.Scale3D(s[0], s[1], s[2])).
		Mul4(mgl32.Translate3D(-origin[0], -origin[1], -origin[2]))
}

func Translate(v mgl32.Vec3) mgl32.Mat4 {
	return mgl32.Translate3D(v[0], v[1], v[2])
}
