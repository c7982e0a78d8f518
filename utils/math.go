package utils

import (
	"github.com/go-gl/mathgl/mgl32"
)

// EulerToQuat builds a rotation from pitch, yaw and roll given in degrees.
// Yaw is applied first, roll last.
func EulerToQuat(v mgl32.Vec3) mgl32.Quat {
	return mgl32.AnglesToQuat(
		mgl32.DegToRad(v[1]), mgl32.DegToRad(v[0]), mgl32.DegToRad(v[2]), mgl32.YXZ).Normalize()
}

func Vec3ArrayTo64(in []mgl32.Vec3) []float64 {
	out := make([]float64, 0, len(in)*3)
	for _, v := range in {
		out = append(out, float64(v[0]), float64(v[1]), float64(v[2]))
	}
	return out
}

func Vec3ArrayToFloat(in []mgl32.Vec3) [][3]float32 {
	out := make([][3]float32, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}
