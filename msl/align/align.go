// Package align recovers the rotation and anisotropic scale that place a reference
// mesh onto a decoded point cloud with the same vertex count.
package align

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
)

const (
	// candidate directions closer than this (|cos|) to an accepted one carry no information
	ParallelCos = 0.95

	epsilon = 1e-9
)

var (
	ErrUnresolved    = errors.New("alignment unresolved: fewer than 3 independent directions")
	ErrCountMismatch = errors.New("vertex count mismatch")
)

type Result struct {
	// pitch, yaw, roll in degrees
	Angles mgl32.Vec3
	// per axis scale in stored axis order (x, z, y)
	Scale mgl32.Vec3
	// images of the world X, Y, Z axes
	Basis [3]mgl32.Vec3
}

type pair struct {
	known  mgl64.Vec3
	loaded mgl64.Vec3
}

// NativeIndex maps a stored vertex index to the reference vertex it is paired with.
// The stored order is rotated by one inside each triangle.
func NativeIndex(l int) int {
	return (l/3)*3 + ((l%3)+1)%3
}

func to64(v mgl32.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{float64(v[0]), float64(v[1]), float64(v[2])}
}

func to32(v mgl64.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{float32(v[0]), float32(v[1]), float32(v[2])}
}

func normalize(v mgl64.Vec3) (mgl64.Vec3, bool) {
	l := v.Len()
	if l < epsilon {
		return v, false
	}
	return v.Mul(1 / l), true
}

// Align correlates known (reference mesh vertices) with loaded (decoded positions,
// file order). storedScale is the scale stored next to the entity, in scene axes.
func Align(known, loaded []mgl32.Vec3, storedScale mgl32.Vec3) (*Result, error) {
	n := len(loaded)
	if len(known) != n {
		return nil, errors.Wrapf(ErrCountMismatch, "reference has %d vertices, stream has %d", len(known), n)
	}
	if n == 0 {
		return nil, ErrUnresolved
	}

	points := make([]pair, 0, 3)
	var loadedCenter, knownCenter mgl64.Vec3
	for l := 0; l < n; l++ {
		point := to64(loaded[l])
		loadedCenter = loadedCenter.Add(point)
		knownCenter = knownCenter.Add(to64(known[l]))

		if len(points) >= 3 {
			continue
		}
		nativeIndex := NativeIndex(l)
		if nativeIndex >= n {
			continue
		}
		vertexLoc := to64(known[nativeIndex])
		dir, ok := normalize(vertexLoc)
		if !ok {
			continue
		}
		informative := true
		for _, p := range points {
			pd, _ := normalize(p.known)
			if math.Abs(pd.Dot(dir)) > ParallelCos {
				informative = false
				break
			}
		}
		if informative {
			points = append(points, pair{known: vertexLoc, loaded: point})
		}
	}

	if len(points) < 3 {
		return nil, ErrUnresolved
	}

	loadedCenter = loadedCenter.Mul(1 / float64(n))
	knownCenter = knownCenter.Mul(1 / float64(n))

	var ok bool
	for i := range points {
		if points[i].known, ok = normalize(points[i].known.Sub(knownCenter)); !ok {
			return nil, ErrUnresolved
		}
		if points[i].loaded, ok = normalize(points[i].loaded.Sub(loadedCenter)); !ok {
			return nil, ErrUnresolved
		}
	}

	// orthonormalize both triples the same way
	for _, step := range [][3]int{{2, 0, 1}, {1, 0, 2}} {
		dst, a, b := step[0], step[1], step[2]
		if points[dst].known, ok = normalize(points[a].known.Cross(points[b].known)); !ok {
			return nil, ErrUnresolved
		}
		if points[dst].loaded, ok = normalize(points[a].loaded.Cross(points[b].loaded)); !ok {
			return nil, ErrUnresolved
		}
	}

	var basis [3]mgl64.Vec3
	for axis := 0; axis < 3; axis++ {
		for _, p := range points {
			basis[axis] = basis[axis].Add(p.loaded.Mul(p.known[axis]))
		}
	}

	scale := recoverScale(loaded, to64(storedScale), basis)

	r := &Result{
		Scale:  to32(mgl64.Vec3{scale[0], scale[2], scale[1]}),
		Angles: to32(ToEuler(basis[0], basis[1], basis[2])),
	}
	for i := range basis {
		r.Basis[i] = to32(basis[i])
	}
	return r, nil
}

func extent(values []float64) float64 {
	min, max := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		min = math.Min(min, v)
		max = math.Max(max, v)
	}
	return max - min
}

func ratio(a, b float64) float64 {
	if math.Abs(b) < epsilon {
		return 1
	}
	return a / b
}

// recoverScale compares extents along the rotated axes of the cloud stretched to
// the stored scale against the raw cloud. Result is in scene axis order.
func recoverScale(loaded []mgl32.Vec3, storedScale mgl64.Vec3, basis [3]mgl64.Vec3) mgl64.Vec3 {
	n := len(loaded)
	raw := make([]mgl64.Vec3, n)
	axis := make([][]float64, 3)
	for i := range axis {
		axis[i] = make([]float64, n)
	}
	for l, p := range loaded {
		raw[l] = to64(p)
		for i := 0; i < 3; i++ {
			axis[i][l] = raw[l][i]
		}
	}

	var factor mgl64.Vec3
	for i := 0; i < 3; i++ {
		factor[i] = ratio(storedScale[i], extent(axis[i]))
	}

	scaled := make([]float64, n)
	unscaled := make([]float64, n)
	var result mgl64.Vec3
	for i := 0; i < 3; i++ {
		for l, p := range raw {
			prop := mgl64.Vec3{p[0] * factor[0], p[1] * factor[1], p[2] * factor[2]}
			scaled[l] = prop.Dot(basis[i])
			unscaled[l] = p.Dot(basis[i])
		}
		result[i] = ratio(extent(scaled), extent(unscaled))
	}
	return result
}

// ToEuler converts rotated axes to pitch/yaw/roll degrees. Forward is the image of
// Z; roll is not stored by the format and is always 0.
func ToEuler(x, y, z mgl64.Vec3) mgl64.Vec3 {
	forward, ok := normalize(z)
	if !ok {
		return mgl64.Vec3{}
	}
	pitch := math.Asin(mgl64.Clamp(forward.Y(), -1, 1))
	yaw := math.Atan2(forward.X(), forward.Z())
	return mgl64.Vec3{mgl64.RadToDeg(pitch), mgl64.RadToDeg(yaw), 0}
}
