package cursor

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"

	"github.com/pkg/errors"
)

func le(values ...interface{}) []byte {
	var buf bytes.Buffer
	for _, v := range values {
		switch v := v.(type) {
		case string:
			buf.WriteString(v)
		default:
			if err := binary.Write(&buf, binary.LittleEndian, v); err != nil {
				panic(err)
			}
		}
	}
	return buf.Bytes()
}

func open(t *testing.T, b []byte) *Cursor {
	c, err := New(bytes.NewReader(b))
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestScalars(t *testing.T) {
	c := open(t, le(uint32(0xdeadbeef), float32(1.5), float32(0.005), float32(-2)))

	if v, err := c.ReadLU32(); err != nil || v != 0xdeadbeef {
		t.Errorf("ReadLU32()=%x,%v; expected deadbeef", v, err)
	}
	if v, err := c.ReadLF(); err != nil || v != 1.5 {
		t.Errorf("ReadLF()=%v,%v; expected 1.5", v, err)
	}
	if v, err := c.ReadFlag(); err != nil || v {
		t.Errorf("ReadFlag(0.005)=%v,%v; expected false", v, err)
	}
	if v, err := c.ReadFlag(); err != nil || !v {
		t.Errorf("ReadFlag(-2)=%v,%v; expected true", v, err)
	}
	if c.Pos() != 16 || c.Remaining() != 0 {
		t.Errorf("Pos()=%d Remaining()=%d; expected 16 0", c.Pos(), c.Remaining())
	}
}

func TestTruncatedScalar(t *testing.T) {
	c := open(t, []byte{1, 2, 3})

	_, err := c.ReadLF()
	var te *TruncatedStreamError
	if !errors.As(err, &te) {
		t.Fatalf("ReadLF() on 3 bytes returned %v; expected TruncatedStreamError", err)
	}
	if te.Need != 4 || te.Have != 3 || te.Offset != 0 {
		t.Errorf("TruncatedStreamError=%+v; expected need 4 have 3 at 0", te)
	}
	if c.Pos() != 0 {
		t.Errorf("Pos() after failed read=%d; expected 0", c.Pos())
	}
}

func TestSwappedVector(t *testing.T) {
	c := open(t, le(float32(1), float32(2), float32(3)))
	v, err := c.ReadVec3Swapped()
	if err != nil {
		t.Fatal(err)
	}
	if v != [3]float32{1, 3, 2} {
		t.Errorf("ReadVec3Swapped()=%v; expected [1 3 2]", v)
	}
}

func TestReadLine(t *testing.T) {
	c := open(t, le("brick.png\r\n", "second\n", "unterminated"))

	for _, expected := range []string{"brick.png", "second"} {
		if s, err := c.ReadLine(); err != nil || s != expected {
			t.Errorf("ReadLine()=%q,%v; expected %q", s, err, expected)
		}
	}
	if _, err := c.ReadLine(); err == nil {
		t.Errorf("ReadLine() without terminator succeeded")
	} else if _, ok := err.(*TruncatedStreamError); !ok {
		t.Errorf("ReadLine() error %T; expected *TruncatedStreamError", err)
	}
}

// A payload that is partially interpreted (or garbage) must not affect where the
// cursor lands after SkipRecord.
func TestSkipRecordIgnoresPayload(t *testing.T) {
	for _, payload := range [][]byte{
		le(uint32(1), uint32(12), uint32(2), float32(0), float32(0), float32(0)),
		{0xff, 0xff, 0xff, 0xff, 0x00, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09, 0x0a, 0x0b, 0x0c, 0x0d, 0x0e, 0x0f, 0x10, 0x11, 0x12, 0x13},
	} {
		stream := append(le(uint32(len(payload))), payload...)
		stream = append(stream, le(float32(42))...)

		for consumed := 0; consumed <= len(payload); consumed += 4 {
			c := open(t, stream)
			b, err := c.OpenBlock()
			if err != nil {
				t.Fatal(err)
			}
			if err := c.Skip(int64(consumed)); err != nil {
				t.Fatal(err)
			}
			if err := c.SkipRecord(b); err != nil {
				t.Fatal(err)
			}
			if c.Pos() != b.Start+int64(b.Size) {
				t.Errorf("SkipRecord after %d bytes: Pos()=%d; expected %d", consumed, c.Pos(), b.End())
			}
			if v, err := c.ReadLF(); err != nil || v != 42 {
				t.Errorf("value after record=%v,%v; expected 42", v, err)
			}
		}
	}
}

func TestSkipBlockPastEnd(t *testing.T) {
	c := open(t, le(uint32(100), float32(1)))
	if _, err := c.SkipBlock(); err == nil {
		t.Errorf("SkipBlock() over declared size 100 of 4 bytes succeeded")
	} else if _, ok := err.(*TruncatedStreamError); !ok {
		t.Errorf("SkipBlock() error %T; expected *TruncatedStreamError", err)
	}
}

func TestSeekBack(t *testing.T) {
	c := open(t, le(float32(1), float32(2), float32(3)))
	c.SkipFloats(2)
	if err := c.Seek(4); err != nil {
		t.Fatal(err)
	}
	if v, _ := c.ReadLF(); v != 2 {
		t.Errorf("ReadLF() after Seek(4)=%v; expected 2", v)
	}
}

func TestNear(t *testing.T) {
	for _, test := range []struct {
		v, want float32
		out     bool
	}{
		{3, 3, true},
		{3.005, 3, true},
		{2.98, 3, false},
		{800, 800, true},
		{float32(math.NaN()), 1, false},
	} {
		if r := Near(test.v, test.want); r != test.out {
			t.Errorf("Near(%v,%v)=%v; expected %v", test.v, test.want, r, test.out)
		}
	}
}
