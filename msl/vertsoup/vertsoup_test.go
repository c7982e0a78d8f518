package vertsoup

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/mogaika/msl_browser/msl/cursor"
)

func meshBlock(fvf, stride uint32, verts [][6]float32, extra int) []byte {
	var body bytes.Buffer
	binary.Write(&body, binary.LittleEndian, fvf)
	binary.Write(&body, binary.LittleEndian, stride)
	binary.Write(&body, binary.LittleEndian, uint32(len(verts)))
	for _, v := range verts {
		// stored as x, z, y
		binary.Write(&body, binary.LittleEndian, [3]float32{v[0], v[2], v[1]})
		if fvf&(FVFNormal|FVFD3DNormal) != 0 {
			binary.Write(&body, binary.LittleEndian, [3]float32{v[3], v[5], v[4]})
		}
		body.Write(make([]byte, extra))
	}
	var out bytes.Buffer
	binary.Write(&out, binary.LittleEndian, uint32(body.Len()))
	out.Write(body.Bytes())
	return out.Bytes()
}

func TestReadWithNormals(t *testing.T) {
	verts := [][6]float32{
		{1, 2, 3, 0, 0, 2},
		{4, 5, 6, 0, 3, 0},
	}
	data := append(meshBlock(FVFNormal, 32, verts, 8), 0xAA, 0xBB, 0xCC, 0xDD)

	c, err := cursor.New(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	soup, err := Read(c, nil)
	if err != nil {
		t.Fatal(err)
	}

	if len(soup.Samples) != 2 {
		t.Fatalf("len(Samples)=%d; expected 2", len(soup.Samples))
	}
	expected := []Sample{
		{Position: mgl32.Vec3{1, 2, 3}, Normal: mgl32.Vec3{0, 0, 1}},
		{Position: mgl32.Vec3{4, 5, 6}, Normal: mgl32.Vec3{0, 1, 0}},
	}
	for i, s := range soup.Samples {
		if !s.Position.ApproxEqual(expected[i].Position) || !s.Normal.ApproxEqual(expected[i].Normal) {
			t.Errorf("Samples[%d]=%v; expected %v", i, s, expected[i])
		}
	}
	if c.Pos() != int64(len(data)-4) {
		t.Errorf("Pos() after mesh=%d; expected %d", c.Pos(), len(data)-4)
	}
}

func TestReadPositionsOnly(t *testing.T) {
	verts := [][6]float32{{1, 2, 3}, {7, 8, 9}, {0, 0, 0}}
	c, _ := cursor.New(bytes.NewReader(meshBlock(0x100, 20, verts, 8)))
	soup, err := Read(c, nil)
	if err != nil {
		t.Fatal(err)
	}
	if soup.Header.HasNormal() {
		t.Errorf("HasNormal() with fvf 0x100 = true")
	}
	if p := soup.Positions(); !p[1].ApproxEqual(mgl32.Vec3{7, 8, 9}) {
		t.Errorf("Positions()[1]=%v; expected [7 8 9]", p[1])
	}
	if n := soup.Samples[0].Normal; n.Len() != 0 {
		t.Errorf("Normal without fvf bit=%v; expected zero", n)
	}
}

func TestD3DNormalFlag(t *testing.T) {
	h := Header{FVF: 0x152, Stride: 32}
	if !h.HasNormal() {
		t.Errorf("HasNormal() with D3DFVF_NORMAL = false")
	}
	if h.Skipped() != 8 {
		t.Errorf("Skipped()=%d; expected 8", h.Skipped())
	}
}

func TestTruncatedVertexArray(t *testing.T) {
	data := meshBlock(FVFNormal, 24, [][6]float32{{1, 2, 3, 0, 1, 0}, {4, 5, 6, 0, 1, 0}}, 0)
	data = data[:len(data)-10]

	c, _ := cursor.New(bytes.NewReader(data))
	_, err := Read(c, nil)
	var te *cursor.TruncatedStreamError
	if !errors.As(err, &te) {
		t.Errorf("Read() on truncated mesh returned %v; expected TruncatedStreamError", err)
	}
}

func TestBadStride(t *testing.T) {
	c, _ := cursor.New(bytes.NewReader(meshBlock(0, 8, nil, 0)))
	_, err := Read(c, nil)
	if _, ok := err.(*HeaderError); !ok {
		t.Errorf("Read() with stride 8 returned %v; expected *HeaderError", err)
	}
}
