// Package faces rebuilds planar convex polygons from an unindexed triangle soup
// by grouping vertices that share a normal.
package faces

import (
	"sort"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/mogaika/msl_browser/msl/vertsoup"
)

const (
	NormalSimilarity   = 0.999
	DegenerateNormalSq = 0.01
	DedupDistanceSq    = 0.001
)

type Polygon struct {
	Normal   mgl32.Vec3
	Dist     float32 // plane: Normal·p == Dist
	Vertices []mgl32.Vec3
}

// Degenerate polygons come from clusters of colinear or coincident points.
func (p *Polygon) Degenerate() bool {
	return len(p.Vertices) < 3
}

func SameNormal(a, b mgl32.Vec3) bool {
	return a.Dot(b) >= NormalSimilarity
}

// ClusterNormals returns one representative per group of similar normals, in order
// of first appearance. Membership is tested against representatives only, so the
// grouping is not a transitive closure.
func ClusterNormals(samples []vertsoup.Sample) []mgl32.Vec3 {
	reps := make([]mgl32.Vec3, 0, 8)
next:
	for i := range samples {
		n := samples[i].Normal
		for _, r := range reps {
			if SameNormal(n, r) {
				continue next
			}
		}
		reps = append(reps, n)
	}
	return reps
}

// Reconstruct builds one polygon per usable normal cluster. Degenerate polygons are
// returned too; callers decide what to do with them.
func Reconstruct(samples []vertsoup.Sample) []*Polygon {
	result := make([]*Polygon, 0, 6)
	for _, normal := range ClusterNormals(samples) {
		if normal.LenSqr() < DegenerateNormalSq {
			continue
		}
		result = append(result, Build(normal, samples))
	}
	return result
}

// Build collects samples facing along normal, drops coincident positions and
// orders the rest around the first accepted vertex.
func Build(normal mgl32.Vec3, samples []vertsoup.Sample) *Polygon {
	verts := make([]mgl32.Vec3, 0, 4)
next:
	for i := range samples {
		if samples[i].Normal.Dot(normal) < NormalSimilarity {
			continue
		}
		pos := samples[i].Position
		for _, v := range verts {
			if v.Sub(pos).LenSqr() < DedupDistanceSq {
				continue next
			}
		}
		verts = append(verts, pos)
	}

	p := &Polygon{Normal: normal}
	if len(verts) == 0 {
		return p
	}
	p.Vertices = Wind(normal, verts)
	p.Dist = normal.Dot(p.Vertices[0])
	return p
}

// Wind keeps verts[0] as pivot and sorts the others by angle around it, giving
// counter-clockwise order about normal (right-hand rule).
func Wind(normal mgl32.Vec3, verts []mgl32.Vec3) []mgl32.Vec3 {
	pivot := verts[0]
	rest := append([]mgl32.Vec3(nil), verts[1:]...)

	sort.SliceStable(rest, func(i, j int) bool {
		return normal.Dot(rest[i].Sub(pivot).Cross(rest[j].Sub(pivot))) > 0
	})

	return append([]mgl32.Vec3{pivot}, rest...)
}

// PlaneDistance returns the signed distance of v from the polygon plane.
func (p *Polygon) PlaneDistance(v mgl32.Vec3) float32 {
	return p.Normal.Dot(v) - p.Dist
}
