package align

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cubeMesh is a centred 2x2x2 cube as 12 triangles.
func cubeMesh() []mgl32.Vec3 {
	quads := [][4]mgl32.Vec3{
		{{1, 1, 1}, {-1, 1, 1}, {-1, -1, 1}, {1, -1, 1}},
		{{1, 1, -1}, {1, -1, -1}, {-1, -1, -1}, {-1, 1, -1}},
		{{1, 1, 1}, {1, -1, 1}, {1, -1, -1}, {1, 1, -1}},
		{{-1, 1, 1}, {-1, 1, -1}, {-1, -1, -1}, {-1, -1, 1}},
		{{1, 1, 1}, {1, 1, -1}, {-1, 1, -1}, {-1, 1, 1}},
		{{1, -1, 1}, {-1, -1, 1}, {-1, -1, -1}, {1, -1, -1}},
	}
	mesh := make([]mgl32.Vec3, 0, 36)
	for _, q := range quads {
		mesh = append(mesh, q[0], q[1], q[2], q[0], q[2], q[3])
	}
	return mesh
}

// soupOf lays out transformed reference vertices in the order the stream stores them.
func soupOf(ref []mgl32.Vec3, transform func(mgl32.Vec3) mgl32.Vec3) []mgl32.Vec3 {
	soup := make([]mgl32.Vec3, len(ref))
	for l := range soup {
		soup[l] = transform(ref[NativeIndex(l)])
	}
	return soup
}

func extents(points []mgl32.Vec3) mgl32.Vec3 {
	min := mgl32.Vec3{math.MaxFloat32, math.MaxFloat32, math.MaxFloat32}
	max := min.Mul(-1)
	for _, p := range points {
		for i := 0; i < 3; i++ {
			if p[i] < min[i] {
				min[i] = p[i]
			}
			if p[i] > max[i] {
				max[i] = p[i]
			}
		}
	}
	return max.Sub(min)
}

func assertVec(t *testing.T, expected, actual mgl32.Vec3, msg string) {
	t.Helper()
	for i := 0; i < 3; i++ {
		assert.InDelta(t, expected[i], actual[i], 1e-3, "%s: %v; expected %v", msg, actual, expected)
	}
}

func TestNativeIndex(t *testing.T) {
	for l, expected := range []int{1, 2, 0, 4, 5, 3, 7} {
		if r := NativeIndex(l); r != expected {
			t.Errorf("NativeIndex(%d)=%d; expected %d", l, r, expected)
		}
	}
}

func TestIdentity(t *testing.T) {
	ref := cubeMesh()
	soup := soupOf(ref, func(v mgl32.Vec3) mgl32.Vec3 {
		return v.Mul(3).Add(mgl32.Vec3{10, -5, 7})
	})

	r, err := Align(ref, soup, extents(soup))
	require.NoError(t, err)
	assertVec(t, mgl32.Vec3{0, 0, 0}, r.Angles, "angles")
	assertVec(t, mgl32.Vec3{1, 1, 1}, r.Scale, "scale")
	assertVec(t, mgl32.Vec3{1, 0, 0}, r.Basis[0], "x axis")
	assertVec(t, mgl32.Vec3{0, 0, 1}, r.Basis[2], "z axis")
}

func TestAnisotropic(t *testing.T) {
	ref := cubeMesh()
	soup := soupOf(ref, func(v mgl32.Vec3) mgl32.Vec3 { return v })

	r, err := Align(ref, soup, mgl32.Vec3{4, 2, 2})
	require.NoError(t, err)
	assertVec(t, mgl32.Vec3{0, 0, 0}, r.Angles, "angles")
	assertVec(t, mgl32.Vec3{2, 1, 1}, r.Scale, "scale")
}

func TestScaleStoredAxisOrder(t *testing.T) {
	ref := cubeMesh()
	soup := soupOf(ref, func(v mgl32.Vec3) mgl32.Vec3 { return v })

	// stretched along scene Y, reported in stored (x, z, y) order
	r, err := Align(ref, soup, mgl32.Vec3{2, 4, 2})
	require.NoError(t, err)
	assertVec(t, mgl32.Vec3{1, 1, 2}, r.Scale, "scale")
}

func TestYaw(t *testing.T) {
	ref := cubeMesh()
	rot := mgl32.HomogRotate3DY(mgl32.DegToRad(30))
	soup := soupOf(ref, func(v mgl32.Vec3) mgl32.Vec3 {
		return mgl32.TransformCoordinate(v, rot).Add(mgl32.Vec3{0, 64, 0})
	})

	r, err := Align(ref, soup, extents(soup))
	require.NoError(t, err)
	assertVec(t, mgl32.Vec3{0, 30, 0}, r.Angles, "angles")
	assertVec(t, mgl32.Vec3{1, 1, 1}, r.Scale, "scale")
}

func TestParallelCandidatesUnresolved(t *testing.T) {
	ref := make([]mgl32.Vec3, 9)
	for i := range ref {
		ref[i] = mgl32.Vec3{float32(i + 1), 0, 0}
	}
	_, err := Align(ref, ref, mgl32.Vec3{1, 1, 1})
	assert.True(t, errors.Is(err, ErrUnresolved), "Align on colinear mesh returned %v", err)
}

func TestCountMismatch(t *testing.T) {
	ref := cubeMesh()
	_, err := Align(ref, ref[:33], mgl32.Vec3{1, 1, 1})
	assert.True(t, errors.Is(err, ErrCountMismatch), "Align with 33 of 36 vertices returned %v", err)
}

func TestToEulerPitch(t *testing.T) {
	r := ToEuler([3]float64{1, 0, 0}, [3]float64{0, 0, -1}, [3]float64{0, 1, 0})
	assert.InDelta(t, 90, r[0], 1e-9)
	assert.InDelta(t, 0, r[2], 1e-9)
}
