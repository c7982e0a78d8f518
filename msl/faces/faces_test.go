package faces

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mogaika/msl_browser/msl/vertsoup"
)

// quadSoup triangulates a quad (a b c d) as (a b c) (a c d), all samples with normal n.
func quadSoup(n mgl32.Vec3, a, b, c, d mgl32.Vec3) []vertsoup.Sample {
	out := make([]vertsoup.Sample, 0, 6)
	for _, p := range []mgl32.Vec3{a, b, c, a, c, d} {
		out = append(out, vertsoup.Sample{Position: p, Normal: n})
	}
	return out
}

func cubeSoup(half float32) []vertsoup.Sample {
	h := half
	s := make([]vertsoup.Sample, 0, 36)
	s = append(s, quadSoup(mgl32.Vec3{0, 0, 1}, mgl32.Vec3{-h, -h, h}, mgl32.Vec3{h, -h, h}, mgl32.Vec3{h, h, h}, mgl32.Vec3{-h, h, h})...)
	s = append(s, quadSoup(mgl32.Vec3{0, 0, -1}, mgl32.Vec3{-h, -h, -h}, mgl32.Vec3{-h, h, -h}, mgl32.Vec3{h, h, -h}, mgl32.Vec3{h, -h, -h})...)
	s = append(s, quadSoup(mgl32.Vec3{1, 0, 0}, mgl32.Vec3{h, -h, -h}, mgl32.Vec3{h, h, -h}, mgl32.Vec3{h, h, h}, mgl32.Vec3{h, -h, h})...)
	s = append(s, quadSoup(mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{-h, -h, -h}, mgl32.Vec3{-h, -h, h}, mgl32.Vec3{-h, h, h}, mgl32.Vec3{-h, h, -h})...)
	s = append(s, quadSoup(mgl32.Vec3{0, 1, 0}, mgl32.Vec3{-h, h, -h}, mgl32.Vec3{-h, h, h}, mgl32.Vec3{h, h, h}, mgl32.Vec3{h, h, -h})...)
	s = append(s, quadSoup(mgl32.Vec3{0, -1, 0}, mgl32.Vec3{-h, -h, -h}, mgl32.Vec3{h, -h, -h}, mgl32.Vec3{h, -h, h}, mgl32.Vec3{-h, -h, h})...)
	return s
}

func assertPolygonInvariants(t *testing.T, p *Polygon) {
	t.Helper()
	for _, v := range p.Vertices {
		assert.InDelta(t, 0, p.PlaneDistance(v), 1e-4, "vertex %v off plane %v/%v", v, p.Normal, p.Dist)
	}
	n := len(p.Vertices)
	for i := 0; i < n; i++ {
		a, b, c := p.Vertices[i], p.Vertices[(i+1)%n], p.Vertices[(i+2)%n]
		turn := p.Normal.Dot(b.Sub(a).Cross(c.Sub(b)))
		assert.GreaterOrEqual(t, turn, float32(-1e-5), "winding flips at vertex %d of %v", i, p.Vertices)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			assert.GreaterOrEqual(t, p.Vertices[i].Sub(p.Vertices[j]).LenSqr(), float32(DedupDistanceSq))
		}
	}
}

func TestQuad(t *testing.T) {
	soup := quadSoup(mgl32.Vec3{0, 0, 1},
		mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 64, 0}, mgl32.Vec3{64, 64, 0}, mgl32.Vec3{64, 0, 0})

	polys := Reconstruct(soup)
	require.Len(t, polys, 1)
	require.Len(t, polys[0].Vertices, 4)
	assert.Equal(t, mgl32.Vec3{0, 0, 0}, polys[0].Vertices[0])
	assertPolygonInvariants(t, polys[0])
}

func TestCube(t *testing.T) {
	polys := Reconstruct(cubeSoup(16))
	require.Len(t, polys, 6)
	for _, p := range polys {
		require.Len(t, p.Vertices, 4)
		assert.InDelta(t, 16, p.Dist, 1e-5)
		assertPolygonInvariants(t, p)
	}
}

func TestNearDuplicatePositions(t *testing.T) {
	n := mgl32.Vec3{0, 0, 1}
	soup := quadSoup(n, mgl32.Vec3{0, 0, 0}, mgl32.Vec3{8, 0, 0}, mgl32.Vec3{8, 8, 0}, mgl32.Vec3{0, 8, 0})
	soup = append(soup, vertsoup.Sample{Position: mgl32.Vec3{8.01, 8.01, 0}, Normal: n})

	polys := Reconstruct(soup)
	require.Len(t, polys, 1)
	assert.Len(t, polys[0].Vertices, 4)
	assertPolygonInvariants(t, polys[0])
}

func TestClusterThreshold(t *testing.T) {
	base := mgl32.Vec3{0, 0, 1}
	near := vertsoup.Normalize(mgl32.Vec3{0.03, 0, 1}) // dot ~0.99955
	far := vertsoup.Normalize(mgl32.Vec3{0.05, 0, 1})   // dot ~0.99875

	require.GreaterOrEqual(t, base.Dot(near), float32(NormalSimilarity))
	require.Less(t, base.Dot(far), float32(NormalSimilarity))

	reps := ClusterNormals([]vertsoup.Sample{{Normal: base}, {Normal: near}})
	assert.Len(t, reps, 1)

	reps = ClusterNormals([]vertsoup.Sample{{Normal: base}, {Normal: far}})
	assert.Len(t, reps, 2)
}

func TestDegenerateNormalsSkipped(t *testing.T) {
	soup := []vertsoup.Sample{
		{Position: mgl32.Vec3{0, 0, 0}},
		{Position: mgl32.Vec3{1, 0, 0}},
		{Position: mgl32.Vec3{0, 1, 0}},
	}
	assert.Empty(t, Reconstruct(soup))
}

func TestColinearClusterIsDegenerate(t *testing.T) {
	n := mgl32.Vec3{0, 0, 1}
	soup := []vertsoup.Sample{
		{Position: mgl32.Vec3{0, 0, 0}, Normal: n},
		{Position: mgl32.Vec3{4, 0, 0}, Normal: n},
		{Position: mgl32.Vec3{4, 0, 0}, Normal: n},
	}
	polys := Reconstruct(soup)
	require.Len(t, polys, 1)
	assert.True(t, polys[0].Degenerate())
}

func TestWindOrder(t *testing.T) {
	n := mgl32.Vec3{0, 0, 1}
	shuffled := []mgl32.Vec3{{0, 0, 0}, {1, 1, 0}, {0, 1, 0}, {1, 0, 0}}
	wound := Wind(n, shuffled)
	assert.Equal(t, []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}}, wound)
}
