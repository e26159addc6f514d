// internal/table/table.go
package table

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/tamzrod/c12tables/internal/cursor"
	"github.com/tamzrod/c12tables/internal/logging"
)

// State is the lifecycle state of a table buffer.
//
//	Unloaded --Read--> Loaded --setter--> Dirty --Write--> Loaded
//
// A failed Read leaves the table Unloaded; a failed Write leaves it Dirty.
type State uint8

const (
	Unloaded State = iota
	Loaded
	Dirty
)

func (s State) String() string {
	switch s {
	case Unloaded:
		return "unloaded"
	case Loaded:
		return "loaded"
	case Dirty:
		return "dirty"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// Capability flags what a table may do on the wire.
type Capability uint8

const (
	CapRead Capability = 1 << iota
	CapWrite
	CapOffsetRead
	CapOffsetWrite

	CapReadOnly  = CapRead | CapOffsetRead
	CapReadWrite = CapRead | CapWrite | CapOffsetRead | CapOffsetWrite
)

func (c Capability) Has(x Capability) bool { return c&x == x }

// Codec moves a table's fields between its buffer and memory.
// Both methods receive a cursor already reset to position 0.
type Codec interface {
	Decode(c *cursor.Cursor) error
	Encode(c *cursor.Cursor) error
}

// Resizer resolves a table's true size from its fixed prefix.
// The cursor covers exactly the prefix bytes, reset to position 0.
type Resizer interface {
	ResolveSize(c *cursor.Cursor) (int, error)
}

// Table is one C12.19 table, or one subtable addressed by offset inside a
// larger table. It owns its buffer and cursor and is not safe for
// concurrent use.
type Table struct {
	tr      Transport
	id      uint16
	offset  uint32
	sub     bool
	size    int
	prefix  int
	caps    Capability
	codec   Codec
	resizer Resizer
	varSize bool
	timeout time.Duration
	log     logging.Logger

	state   State
	lastErr error
	buf     []byte
	cur     *cursor.Cursor
}

// New creates an Unloaded table of the given declared size. For a resizing
// table the declared size is its fixed prefix. codec may be nil for raw tables.
func New(tr Transport, id uint16, size int, codec Codec, opts ...Option) *Table {
	t := &Table{
		tr:      tr,
		id:      id,
		size:    size,
		prefix:  size,
		caps:    CapReadWrite,
		codec:   codec,
		timeout: DefaultTimeout,
		log:     logging.Nop,
	}
	t.buf = make([]byte, size)
	t.cur = cursor.New(t.buf, binary.LittleEndian)
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Table) ID() uint16                 { return t.id }
func (t *Table) Offset() uint32             { return t.offset }
func (t *Table) Size() int                  { return t.size }
func (t *Table) State() State               { return t.state }
func (t *Table) LastErr() error             { return t.lastErr }
func (t *Table) Capabilities() Capability   { return t.caps }
func (t *Table) Order() binary.ByteOrder    { return t.cur.Order() }
func (t *Table) Timeout() time.Duration     { return t.timeout }
func (t *Table) IsSubtable() bool           { return t.sub }
func (t *Table) Transport() Transport       { return t.tr }
func (t *Table) Logger() logging.Logger     { return t.log }

// SetByteOrder switches the data order, as announced by table 0.
func (t *Table) SetByteOrder(o binary.ByteOrder) { t.cur.SetOrder(o) }

// TimeFormat is the session time format, or TimeNone without a transport.
func (t *Table) TimeFormat() cursor.TimeFormat {
	if t.tr == nil {
		return cursor.TimeNone
	}
	return t.tr.TimeFormat()
}

// Bytes returns a copy of the current buffer.
func (t *Table) Bytes() []byte {
	out := make([]byte, len(t.buf))
	copy(out, t.buf)
	return out
}

// EnsureLoaded reads the table if it is Unloaded. Every lazy accessor goes
// through here so a failed read always surfaces as an error, never as
// zeroed fields.
func (t *Table) EnsureLoaded(ctx context.Context) error {
	if t.state != Unloaded {
		return nil
	}
	return t.Read(ctx)
}

// MarkDirty records an in-memory edit.
func (t *Table) MarkDirty() { t.state = Dirty }

// Invalidate drops the loaded state so the next access reads again.
// In-memory edits of a Dirty table are discarded.
func (t *Table) Invalidate() { t.state = Unloaded }

// Clear zeroes the buffer, resets the decoded fields and marks the table
// Dirty without reading it first, for bulk reconfiguration.
func (t *Table) Clear() error {
	clear(t.buf)
	if t.codec != nil {
		t.cur.Reset()
		if err := t.codec.Decode(t.cur); err != nil {
			return t.fail("clear", decodeErr(err))
		}
	}
	t.state = Dirty
	return nil
}

// SetSize changes the buffer size of a variable-size table, keeping the
// leading bytes.
func (t *Table) SetSize(n int) error {
	if !t.varSize {
		return t.fail("resize", fmt.Errorf("%w: fixed-size table", ErrUnsupportedOperation))
	}
	t.grow(n)
	return nil
}

// Read fetches the whole table and decodes it.
func (t *Table) Read(ctx context.Context) error {
	if err := t.require(CapRead, "read"); err != nil {
		return err
	}
	ctx, cancel := t.withTimeout(ctx)
	defer cancel()

	var (
		data []byte
		err  error
	)
	if t.resizer != nil {
		data, err = t.readResized(ctx)
	} else {
		data, err = t.readWhole(ctx)
	}
	if err != nil {
		t.state = Unloaded
		return t.fail("read", err)
	}
	return t.adopt("read", data)
}

// OffsetRead refreshes count bytes at offset within the table. A Loaded
// table is re-decoded; an Unloaded one stays Unloaded.
func (t *Table) OffsetRead(ctx context.Context, offset uint32, count uint16) error {
	if err := t.require(CapOffsetRead, "offset read"); err != nil {
		return err
	}
	if err := t.checkRange(offset, int(count)); err != nil {
		return t.fail("offset read", err)
	}
	ctx, cancel := t.withTimeout(ctx)
	defer cancel()

	data, err := t.tr.OffsetRead(ctx, t.id, t.offset+offset, count)
	if err != nil {
		return t.fail("offset read", classify(ctx, err))
	}
	if len(data) < int(count) {
		return t.fail("offset read", fmt.Errorf("%w: got %d of %d bytes", ErrIncompleteResponse, len(data), count))
	}
	copy(t.buf[offset:], data[:count])

	if t.state == Loaded && t.codec != nil {
		t.cur.Reset()
		if err := t.codec.Decode(t.cur); err != nil {
			t.state = Unloaded
			return t.fail("offset read", decodeErr(err))
		}
	}
	return nil
}

// Write re-encodes every field and sends the whole table.
func (t *Table) Write(ctx context.Context) error {
	if err := t.require(CapWrite, "write"); err != nil {
		return err
	}
	if t.state == Unloaded {
		return t.fail("write", ErrNotLoaded)
	}
	if err := t.encode(); err != nil {
		return t.fail("write", err)
	}
	ctx, cancel := t.withTimeout(ctx)
	defer cancel()

	var err error
	if t.sub {
		err = t.tr.OffsetWrite(ctx, t.id, t.offset, t.Bytes())
	} else {
		err = t.tr.Write(ctx, t.id, t.Bytes())
	}
	if err != nil {
		t.state = Dirty
		return t.fail("write", classify(ctx, err))
	}
	t.state = Loaded
	t.lastErr = nil
	t.log.Debug("table written", "table", t.id, "offset", t.offset, "size", t.size)
	return nil
}

// OffsetWrite re-encodes every field and sends count bytes at offset.
// The table becomes Loaded only when the range covers the whole table.
func (t *Table) OffsetWrite(ctx context.Context, offset uint32, count uint16) error {
	if err := t.require(CapOffsetWrite, "offset write"); err != nil {
		return err
	}
	if t.state == Unloaded {
		return t.fail("offset write", ErrNotLoaded)
	}
	if err := t.checkRange(offset, int(count)); err != nil {
		return t.fail("offset write", err)
	}
	if err := t.encode(); err != nil {
		return t.fail("offset write", err)
	}
	ctx, cancel := t.withTimeout(ctx)
	defer cancel()

	chunk := make([]byte, count)
	copy(chunk, t.buf[offset:])
	if err := t.tr.OffsetWrite(ctx, t.id, t.offset+offset, chunk); err != nil {
		t.state = Dirty
		return t.fail("offset write", classify(ctx, err))
	}
	if offset == 0 && int(count) == t.size {
		t.state = Loaded
	}
	return nil
}

// Load populates the table from a recorded image instead of the transport.
func (t *Table) Load(data []byte) error {
	if t.resizer != nil {
		if len(data) < t.prefix {
			return t.fail("load", fmt.Errorf("%w: got %d bytes, prefix is %d", ErrIncompleteResponse, len(data), t.prefix))
		}
		size, err := t.resizer.ResolveSize(cursor.New(data[:t.prefix], t.cur.Order()))
		if err != nil {
			return t.fail("load", decodeErr(err))
		}
		if len(data) < size {
			return t.fail("load", fmt.Errorf("%w: got %d bytes, table is %d", ErrIncompleteResponse, len(data), size))
		}
		data = data[:size]
	} else if !t.varSize {
		if len(data) < t.size {
			return t.fail("load", fmt.Errorf("%w: got %d bytes, table is %d", ErrIncompleteResponse, len(data), t.size))
		}
		data = data[:t.size]
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	return t.adopt("load", buf)
}

// ---- internals ----

func (t *Table) readWhole(ctx context.Context) ([]byte, error) {
	if t.tr == nil {
		return nil, fmt.Errorf("%w: no transport", ErrUnsupportedOperation)
	}
	var (
		data []byte
		err  error
	)
	if t.sub {
		data, err = t.tr.OffsetRead(ctx, t.id, t.offset, uint16(t.size))
	} else {
		data, err = t.tr.FullRead(ctx, t.id)
	}
	if err != nil {
		return nil, classify(ctx, err)
	}
	if t.varSize {
		return data, nil
	}
	if len(data) < t.size {
		return nil, fmt.Errorf("%w: got %d of %d bytes", ErrIncompleteResponse, len(data), t.size)
	}
	if len(data) > t.size {
		t.log.Debug("table response longer than declared size", "table", t.id, "got", len(data), "size", t.size)
	}
	return data[:t.size], nil
}

// readResized implements the resize protocol: read the fixed prefix,
// resolve the true size from it, then read exactly the remainder.
func (t *Table) readResized(ctx context.Context) ([]byte, error) {
	if t.tr == nil {
		return nil, fmt.Errorf("%w: no transport", ErrUnsupportedOperation)
	}

	var (
		head []byte
		err  error
	)
	if t.caps.Has(CapOffsetRead) {
		head, err = t.tr.OffsetRead(ctx, t.id, t.offset, uint16(t.prefix))
	} else {
		head, err = t.tr.FullRead(ctx, t.id)
	}
	if err != nil {
		return nil, classify(ctx, err)
	}
	if len(head) < t.prefix {
		return nil, fmt.Errorf("%w: got %d bytes, prefix is %d", ErrIncompleteResponse, len(head), t.prefix)
	}

	size, err := t.resizer.ResolveSize(cursor.New(head[:t.prefix], t.cur.Order()))
	if err != nil {
		return nil, decodeErr(err)
	}
	if size < t.prefix {
		return nil, fmt.Errorf("%w: resolved size %d below prefix %d", ErrInvalidFieldValue, size, t.prefix)
	}

	buf := make([]byte, size)
	have := copy(buf, head)
	if have == size {
		return buf, nil
	}
	if !t.caps.Has(CapOffsetRead) {
		return nil, fmt.Errorf("%w: got %d bytes, table is %d", ErrIncompleteResponse, have, size)
	}

	t.log.Debug("table resized", "table", t.id, "prefix", t.prefix, "size", size)

	rest, err := t.tr.OffsetRead(ctx, t.id, t.offset+uint32(have), uint16(size-have))
	if err != nil {
		return nil, classify(ctx, err)
	}
	if len(rest) < size-have {
		return nil, fmt.Errorf("%w: remainder got %d of %d bytes", ErrIncompleteResponse, len(rest), size-have)
	}
	copy(buf[have:], rest)
	return buf, nil
}

func (t *Table) adopt(op string, data []byte) error {
	t.buf = data
	t.size = len(data)
	t.cur.SetBuffer(t.buf)
	if t.codec != nil {
		if err := t.codec.Decode(t.cur); err != nil {
			t.state = Unloaded
			return t.fail(op, decodeErr(err))
		}
	}
	t.state = Loaded
	t.lastErr = nil
	t.log.Debug("table loaded", "table", t.id, "offset", t.offset, "size", t.size)
	return nil
}

func (t *Table) encode() error {
	if t.codec == nil {
		return nil
	}
	t.cur.Reset()
	if err := t.codec.Encode(t.cur); err != nil {
		if errors.Is(err, ErrInvalidFieldValue) {
			return err
		}
		return fmt.Errorf("%w: encode: %v", ErrInvalidFieldValue, err)
	}
	return nil
}

func (t *Table) grow(n int) {
	buf := make([]byte, n)
	copy(buf, t.buf)
	t.buf = buf
	t.size = n
	t.cur.SetBuffer(t.buf)
}

func (t *Table) require(c Capability, op string) error {
	if !t.caps.Has(c) {
		return t.fail(op, ErrUnsupportedOperation)
	}
	if t.tr == nil {
		return t.fail(op, fmt.Errorf("%w: no transport", ErrUnsupportedOperation))
	}
	return nil
}

func (t *Table) checkRange(offset uint32, count int) error {
	if count <= 0 || int(offset)+count > t.size {
		return fmt.Errorf("%w: range %d+%d outside %d-byte table", ErrInvalidFieldValue, offset, count, t.size)
	}
	return nil
}

func (t *Table) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if t.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, t.timeout)
}

func (t *Table) fail(op string, err error) error {
	e := &Error{TableID: t.id, Offset: t.offset, Op: op, Err: err}
	t.lastErr = e
	t.log.Warn("table operation failed", "table", t.id, "offset", t.offset, "op", op, "err", err)
	return e
}

func decodeErr(err error) error {
	if errors.Is(err, cursor.ErrShortBuffer) {
		return fmt.Errorf("%w: decode: %v", ErrIncompleteResponse, err)
	}
	if errors.Is(err, ErrInvalidFieldValue) || errors.Is(err, ErrIncompleteResponse) {
		return err
	}
	return fmt.Errorf("%w: decode: %v", ErrInvalidFieldValue, err)
}
