// internal/cursor/cursor.go
package cursor

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

var (
	ErrShortBuffer = errors.New("cursor: short buffer")
	ErrInvalidBCD  = errors.New("cursor: invalid bcd digit")
)

// Cursor is a positional reader/writer over a table buffer.
//
// Every read and write starts at Position and advances it. Decoding the
// same buffer twice is only idempotent when the caller calls Reset first;
// the cursor never rewinds on its own.
type Cursor struct {
	buf   []byte
	pos   int
	order binary.ByteOrder
}

// New wraps buf. A nil order means little-endian, the C12.19 default.
func New(buf []byte, order binary.ByteOrder) *Cursor {
	if order == nil {
		order = binary.LittleEndian
	}
	return &Cursor{buf: buf, order: order}
}

func (c *Cursor) Bytes() []byte               { return c.buf }
func (c *Cursor) Len() int                    { return len(c.buf) }
func (c *Cursor) Position() int               { return c.pos }
func (c *Cursor) Remaining() int              { return len(c.buf) - c.pos }
func (c *Cursor) Order() binary.ByteOrder     { return c.order }
func (c *Cursor) SetOrder(o binary.ByteOrder) { c.order = o }

// Reset moves the position back to 0.
func (c *Cursor) Reset() { c.pos = 0 }

// SetBuffer replaces the backing buffer and resets the position.
func (c *Cursor) SetBuffer(buf []byte) {
	c.buf = buf
	c.pos = 0
}

func (c *Cursor) Seek(pos int) error {
	if pos < 0 || pos > len(c.buf) {
		return fmt.Errorf("%w: seek %d in %d bytes", ErrShortBuffer, pos, len(c.buf))
	}
	c.pos = pos
	return nil
}

func (c *Cursor) Skip(n int) error {
	_, err := c.next(n)
	return err
}

func (c *Cursor) next(n int) ([]byte, error) {
	if n < 0 || c.pos+n > len(c.buf) {
		return nil, fmt.Errorf("%w: need %d bytes at %d, have %d", ErrShortBuffer, n, c.pos, len(c.buf)-c.pos)
	}
	b := c.buf[c.pos : c.pos+n]
	c.pos += n
	return b, nil
}

// ---- reads ----

func (c *Cursor) ReadUint8() (uint8, error) {
	b, err := c.next(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (c *Cursor) ReadUint16() (uint16, error) {
	b, err := c.next(2)
	if err != nil {
		return 0, err
	}
	return c.order.Uint16(b), nil
}

// ReadUint24 reads a 3-byte unsigned value (C12.19 offsets and counters).
func (c *Cursor) ReadUint24() (uint32, error) {
	b, err := c.next(3)
	if err != nil {
		return 0, err
	}
	if c.order == binary.BigEndian {
		return uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2]), nil
	}
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16, nil
}

func (c *Cursor) ReadUint32() (uint32, error) {
	b, err := c.next(4)
	if err != nil {
		return 0, err
	}
	return c.order.Uint32(b), nil
}

func (c *Cursor) ReadInt8() (int8, error) {
	v, err := c.ReadUint8()
	return int8(v), err
}

func (c *Cursor) ReadInt16() (int16, error) {
	v, err := c.ReadUint16()
	return int16(v), err
}

func (c *Cursor) ReadInt32() (int32, error) {
	v, err := c.ReadUint32()
	return int32(v), err
}

func (c *Cursor) ReadFloat32() (float32, error) {
	v, err := c.ReadUint32()
	return math.Float32frombits(v), err
}

// ReadBytes returns a copy of the next n bytes.
func (c *Cursor) ReadBytes(n int) ([]byte, error) {
	b, err := c.next(n)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, b)
	return out, nil
}

// ReadString reads a fixed-width, null-padded string of n bytes.
// The result stops at the first NUL.
func (c *Cursor) ReadString(n int) (string, error) {
	b, err := c.next(n)
	if err != nil {
		return "", err
	}
	for i, ch := range b {
		if ch == 0 {
			return string(b[:i]), nil
		}
	}
	return string(b), nil
}

// ReadBCD reads n bytes of packed BCD, most significant digit first.
func (c *Cursor) ReadBCD(n int) (uint64, error) {
	b, err := c.next(n)
	if err != nil {
		return 0, err
	}
	var v uint64
	for _, x := range b {
		hi, lo := x>>4, x&0x0F
		if hi > 9 || lo > 9 {
			return 0, fmt.Errorf("%w: 0x%02X", ErrInvalidBCD, x)
		}
		v = v*100 + uint64(hi)*10 + uint64(lo)
	}
	return v, nil
}

// ---- writes ----

func (c *Cursor) WriteUint8(v uint8) error {
	b, err := c.next(1)
	if err != nil {
		return err
	}
	b[0] = v
	return nil
}

func (c *Cursor) WriteUint16(v uint16) error {
	b, err := c.next(2)
	if err != nil {
		return err
	}
	c.order.PutUint16(b, v)
	return nil
}

func (c *Cursor) WriteUint24(v uint32) error {
	if v > 0xFFFFFF {
		return fmt.Errorf("cursor: value %d does not fit 24 bits", v)
	}
	b, err := c.next(3)
	if err != nil {
		return err
	}
	if c.order == binary.BigEndian {
		b[0], b[1], b[2] = byte(v>>16), byte(v>>8), byte(v)
	} else {
		b[0], b[1], b[2] = byte(v), byte(v>>8), byte(v>>16)
	}
	return nil
}

func (c *Cursor) WriteUint32(v uint32) error {
	b, err := c.next(4)
	if err != nil {
		return err
	}
	c.order.PutUint32(b, v)
	return nil
}

func (c *Cursor) WriteInt8(v int8) error   { return c.WriteUint8(uint8(v)) }
func (c *Cursor) WriteInt16(v int16) error { return c.WriteUint16(uint16(v)) }
func (c *Cursor) WriteInt32(v int32) error { return c.WriteUint32(uint32(v)) }

func (c *Cursor) WriteFloat32(v float32) error {
	return c.WriteUint32(math.Float32bits(v))
}

// WriteBytes writes exactly n bytes: v truncated or zero padded.
func (c *Cursor) WriteBytes(v []byte, n int) error {
	b, err := c.next(n)
	if err != nil {
		return err
	}
	m := copy(b, v)
	clear(b[m:])
	return nil
}

// WriteString writes s as a fixed-width, null-padded field of n bytes.
func (c *Cursor) WriteString(s string, n int) error {
	return c.WriteBytes([]byte(s), n)
}

// WriteBCD writes v as n bytes of packed BCD.
func (c *Cursor) WriteBCD(v uint64, n int) error {
	b, err := c.next(n)
	if err != nil {
		return err
	}
	for i := n - 1; i >= 0; i-- {
		d := v % 100
		b[i] = byte(d/10)<<4 | byte(d%10)
		v /= 100
	}
	if v != 0 {
		return fmt.Errorf("cursor: value does not fit %d bcd bytes", n)
	}
	return nil
}
