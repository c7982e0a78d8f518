package cursor

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/pkg/errors"

	"github.com/mogaika/msl_browser/utils"
)

// TruncatedStreamError is returned when a read needs more bytes than the stream holds.
// The format has no resynchronization markers, so it always aborts the whole decode.
type TruncatedStreamError struct {
	Offset int64 // where the failed read started
	Need   int64
	Have   int64
}

func (e *TruncatedStreamError) Error() string {
	return fmt.Sprintf("truncated stream at 0x%x: need %d bytes, have %d", e.Offset, e.Need, e.Have)
}

// Block is a memblock bookmark: where the payload starts and its declared size.
type Block struct {
	Start int64
	Size  uint32
}

func (b Block) End() int64 { return b.Start + int64(b.Size) }

func (b Block) String() string {
	return fmt.Sprintf("memblock[o:0x%x,s:0x%x]", b.Start, b.Size)
}

type Cursor struct {
	r    io.ReadSeeker
	pos  int64
	size int64
	buf  [8]byte
}

func New(r io.ReadSeeker) (*Cursor, error) {
	size, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, errors.Wrapf(err, "Unable to get stream size")
	}
	pos, err := r.Seek(0, io.SeekStart)
	if err != nil {
		return nil, errors.Wrapf(err, "Unable to rewind stream")
	}
	return &Cursor{r: r, pos: pos, size: size}, nil
}

func (c *Cursor) Pos() int64       { return c.pos }
func (c *Cursor) Size() int64      { return c.size }
func (c *Cursor) Remaining() int64 { return c.size - c.pos }

func (c *Cursor) truncated(need int64) error {
	have := c.Remaining()
	if have < 0 {
		have = 0
	}
	return &TruncatedStreamError{Offset: c.pos, Need: need, Have: have}
}

// Seek moves to an absolute offset. Seeking past the end is a truncation.
func (c *Cursor) Seek(pos int64) error {
	if pos < 0 || pos > c.size {
		return &TruncatedStreamError{Offset: c.pos, Need: pos - c.pos, Have: c.Remaining()}
	}
	if _, err := c.r.Seek(pos, io.SeekStart); err != nil {
		return errors.Wrapf(err, "Unable to seek to 0x%x", pos)
	}
	c.pos = pos
	return nil
}

func (c *Cursor) read(p []byte) error {
	if int64(len(p)) > c.Remaining() {
		return c.truncated(int64(len(p)))
	}
	n, err := io.ReadFull(c.r, p)
	if err == io.ErrUnexpectedEOF || err == io.EOF {
		te := c.truncated(int64(len(p)))
		c.r.Seek(c.pos, io.SeekStart)
		return te
	} else if err != nil {
		return errors.Wrapf(err, "Read failed at 0x%x", c.pos)
	}
	c.pos += int64(n)
	return nil
}

func (c *Cursor) ReadBytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, errors.Errorf("Negative read size %d", n)
	}
	if int64(n) > c.Remaining() {
		return nil, c.truncated(int64(n))
	}
	b := make([]byte, n)
	return b, c.read(b)
}

func (c *Cursor) ReadLU32() (uint32, error) {
	if err := c.read(c.buf[:4]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(c.buf[:4]), nil
}

func (c *Cursor) ReadLF() (float32, error) {
	v, err := c.ReadLU32()
	return math.Float32frombits(v), err
}

// ReadFlag reads a float-encoded boolean: true when |v| > 0.01.
func (c *Cursor) ReadFlag() (bool, error) {
	v, err := c.ReadLF()
	return Abs(v) > 0.01, err
}

// ReadVec3Swapped reads x, z, y as stored and returns them in scene order.
func (c *Cursor) ReadVec3Swapped() ([3]float32, error) {
	var v [3]float32
	var err error
	if v[0], err = c.ReadLF(); err != nil {
		return v, err
	}
	if v[2], err = c.ReadLF(); err != nil {
		return v, err
	}
	if v[1], err = c.ReadLF(); err != nil {
		return v, err
	}
	return v, nil
}

// SkipFloats discards count 32-bit values.
func (c *Cursor) SkipFloats(count int) error {
	return c.Skip(int64(count) * 4)
}

func (c *Cursor) Skip(amount int64) error {
	if amount < 0 {
		return errors.Errorf("Negative skip %d", amount)
	}
	if amount > c.Remaining() {
		return c.truncated(amount)
	}
	return c.Seek(c.pos + amount)
}

// ReadLine reads bytes up to '\n', dropping a trailing '\r'.
// Hitting the end of the stream before the terminator is a truncation.
func (c *Cursor) ReadLine() (string, error) {
	start := c.pos
	line := make([]byte, 0, 32)
	for {
		if err := c.read(c.buf[:1]); err != nil {
			if te, ok := err.(*TruncatedStreamError); ok {
				te.Offset = start
				te.Need = int64(len(line)) + 1
				te.Have = int64(len(line))
			}
			return "", err
		}
		if c.buf[0] == '\n' {
			break
		}
		line = append(line, c.buf[0])
	}
	if l := len(line); l > 0 && line[l-1] == '\r' {
		line = line[:l-1]
	}
	return utils.BytesToString(line), nil
}

// OpenBlock reads a memblock size prefix and bookmarks the payload.
func (c *Cursor) OpenBlock() (Block, error) {
	size, err := c.ReadLU32()
	if err != nil {
		return Block{}, err
	}
	return Block{Start: c.pos, Size: size}, nil
}

// SkipRecord leaves the cursor at exactly b.Start + b.Size, no matter how much of
// the payload was consumed.
func (c *Cursor) SkipRecord(b Block) error {
	return c.Seek(b.End())
}

// SkipBlock reads a memblock size prefix and jumps over its payload.
func (c *Cursor) SkipBlock() (Block, error) {
	b, err := c.OpenBlock()
	if err != nil {
		return b, err
	}
	return b, c.SkipRecord(b)
}

func Abs(v float32) float32 {
	return float32(math.Abs(float64(v)))
}

// Near reports whether a float-encoded tag equals want within 0.01.
func Near(v float32, want float32) bool {
	return Abs(v-want) < 0.01
}
