// internal/table/table_test.go
package table_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tamzrod/c12tables/internal/cursor"
	"github.com/tamzrod/c12tables/internal/table"
	"github.com/tamzrod/c12tables/internal/table/tabletest"
)

// pair is a 4-byte record: two uint16 fields.
type pair struct {
	A, B uint16
}

func (p *pair) Decode(c *cursor.Cursor) error {
	var err error
	if p.A, err = c.ReadUint16(); err != nil {
		return err
	}
	p.B, err = c.ReadUint16()
	return err
}

func (p *pair) Encode(c *cursor.Cursor) error {
	if err := c.WriteUint16(p.A); err != nil {
		return err
	}
	return c.WriteUint16(p.B)
}

// counted is a table whose first byte says how many data bytes follow.
type counted struct {
	Data []byte
}

func (r *counted) ResolveSize(c *cursor.Cursor) (int, error) {
	n, err := c.ReadUint8()
	return 1 + int(n), err
}

func (r *counted) Decode(c *cursor.Cursor) error {
	n, err := c.ReadUint8()
	if err != nil {
		return err
	}
	r.Data, err = c.ReadBytes(int(n))
	return err
}

func (r *counted) Encode(c *cursor.Cursor) error {
	if err := c.WriteUint8(uint8(len(r.Data))); err != nil {
		return err
	}
	return c.WriteBytes(r.Data, len(r.Data))
}

func TestReadDecodesAndLoads(t *testing.T) {
	dev := tabletest.NewDevice()
	dev.Set(21, []byte{0x01, 0x00, 0x02, 0x00})

	p := &pair{}
	tbl := table.New(dev, 21, 4, p)
	assert.Equal(t, table.Unloaded, tbl.State())

	require.NoError(t, tbl.EnsureLoaded(context.Background()))
	assert.Equal(t, table.Loaded, tbl.State())
	assert.Equal(t, pair{A: 1, B: 2}, *p)

	// Loaded tables are not re-read.
	require.NoError(t, tbl.EnsureLoaded(context.Background()))
	assert.Equal(t, []string{"full-read"}, dev.Ops())
}

func TestReadFailureLeavesUnloaded(t *testing.T) {
	dev := tabletest.NewDevice()
	dev.Set(21, []byte{0x01, 0x00, 0x02, 0x00})
	dev.FailOn = 1

	tbl := table.New(dev, 21, 4, &pair{})
	err := tbl.EnsureLoaded(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, table.ErrCommunication)
	assert.Equal(t, table.Unloaded, tbl.State())
	assert.Equal(t, err, tbl.LastErr())

	var te *table.Error
	require.True(t, errors.As(err, &te))
	assert.Equal(t, uint16(21), te.TableID)
	assert.Equal(t, table.CodeComm, te.Code())

	// next access retries from scratch
	require.NoError(t, tbl.EnsureLoaded(context.Background()))
	assert.Equal(t, table.Loaded, tbl.State())
}

func TestReadShortResponseIsIncomplete(t *testing.T) {
	dev := tabletest.NewDevice()
	dev.Set(21, []byte{0x01, 0x00})

	tbl := table.New(dev, 21, 4, &pair{})
	err := tbl.Read(context.Background())
	assert.ErrorIs(t, err, table.ErrIncompleteResponse)
	assert.Equal(t, table.Unloaded, tbl.State())
}

func TestTimeoutIsClassified(t *testing.T) {
	dev := tabletest.NewDevice()
	dev.Set(21, make([]byte, 4))
	dev.FailOn = 1
	dev.Err = context.DeadlineExceeded

	tbl := table.New(dev, 21, 4, &pair{})
	err := tbl.Read(context.Background())
	assert.ErrorIs(t, err, table.ErrCommunicationTimeout)

	var te *table.Error
	require.True(t, errors.As(err, &te))
	assert.Equal(t, table.CodeTimeout, te.Code())
}

func TestResizeReadsExactRemainder(t *testing.T) {
	dev := tabletest.NewDevice()
	dev.Set(0, []byte{5, 'h', 'e', 'l', 'l', 'o'})

	r := &counted{}
	tbl := table.New(dev, 0, 1, r, table.WithResize(r))
	require.NoError(t, tbl.Read(context.Background()))

	assert.Equal(t, table.Loaded, tbl.State())
	assert.Equal(t, 6, tbl.Size())
	assert.Equal(t, []byte("hello"), r.Data)
	require.Len(t, dev.Calls, 2)
	assert.Equal(t, tabletest.Call{Op: "offset-read", ID: 0, Offset: 0, Count: 1}, dev.Calls[0])
	assert.Equal(t, tabletest.Call{Op: "offset-read", ID: 0, Offset: 1, Count: 5}, dev.Calls[1])
}

func TestResizeRemainderFailureLeavesUnloaded(t *testing.T) {
	dev := tabletest.NewDevice()
	dev.Set(0, []byte{5, 'h', 'e', 'l', 'l', 'o'})
	dev.FailOn = 2

	r := &counted{}
	tbl := table.New(dev, 0, 1, r, table.WithResize(r))
	err := tbl.Read(context.Background())
	assert.ErrorIs(t, err, table.ErrCommunication)
	assert.Equal(t, table.Unloaded, tbl.State())
	assert.Nil(t, r.Data, "fields must not be decoded from a partial read")
}

func TestResizeShortRemainderIsIncomplete(t *testing.T) {
	dev := tabletest.NewDevice()
	dev.Set(0, []byte{5, 'h', 'e'})

	r := &counted{}
	tbl := table.New(dev, 0, 1, r, table.WithResize(r))
	err := tbl.Read(context.Background())
	assert.ErrorIs(t, err, table.ErrIncompleteResponse)
	assert.Equal(t, table.Unloaded, tbl.State())
}

func TestUnsupportedOperationsFailFast(t *testing.T) {
	dev := tabletest.NewDevice()
	tbl := table.New(dev, 7, 4, &pair{}, table.WithCapabilities(table.CapWrite))

	assert.ErrorIs(t, tbl.Read(context.Background()), table.ErrUnsupportedOperation)
	assert.ErrorIs(t, tbl.OffsetRead(context.Background(), 0, 2), table.ErrUnsupportedOperation)
	tbl.MarkDirty()
	assert.ErrorIs(t, tbl.OffsetWrite(context.Background(), 0, 2), table.ErrUnsupportedOperation)
	assert.Empty(t, dev.Calls)

	require.NoError(t, tbl.Write(context.Background()))
	assert.Equal(t, []string{"write"}, dev.Ops())
}

func TestWriteReencodesAllFields(t *testing.T) {
	dev := tabletest.NewDevice()
	dev.Set(21, []byte{0x01, 0x00, 0x02, 0x00})

	p := &pair{}
	tbl := table.New(dev, 21, 4, p)
	require.NoError(t, tbl.Read(context.Background()))

	p.B = 0x0304
	tbl.MarkDirty()
	require.NoError(t, tbl.Write(context.Background()))

	assert.Equal(t, table.Loaded, tbl.State())
	assert.Equal(t, []byte{0x01, 0x00, 0x04, 0x03}, dev.Images[21])
}

func TestWriteFailureKeepsDirty(t *testing.T) {
	dev := tabletest.NewDevice()
	dev.Set(21, make([]byte, 4))

	p := &pair{}
	tbl := table.New(dev, 21, 4, p)
	require.NoError(t, tbl.Read(context.Background()))
	p.A = 9
	tbl.MarkDirty()

	dev.FailOn = 2
	err := tbl.Write(context.Background())
	assert.ErrorIs(t, err, table.ErrCommunication)
	assert.Equal(t, table.Dirty, tbl.State())
	assert.Equal(t, uint16(9), p.A)

	require.NoError(t, tbl.Write(context.Background()))
	assert.Equal(t, []byte{0x09, 0x00, 0x00, 0x00}, dev.Images[21])
}

func TestWriteUnloadedIsRefused(t *testing.T) {
	dev := tabletest.NewDevice()
	tbl := table.New(dev, 21, 4, &pair{})
	assert.ErrorIs(t, tbl.Write(context.Background()), table.ErrNotLoaded)
	assert.Empty(t, dev.Calls)
}

func TestSubtableMapsToContainerOffset(t *testing.T) {
	dev := tabletest.NewDevice()
	img := make([]byte, 32)
	img[10], img[12] = 0x07, 0x08
	dev.Set(2048, img)

	p := &pair{}
	tbl := table.New(dev, 2048, 4, p, table.WithSubtable(10))
	require.NoError(t, tbl.Read(context.Background()))
	assert.Equal(t, pair{A: 7, B: 8}, *p)
	assert.Equal(t, tabletest.Call{Op: "offset-read", ID: 2048, Offset: 10, Count: 4}, dev.Calls[0])

	p.A = 0x0101
	tbl.MarkDirty()
	require.NoError(t, tbl.Write(context.Background()))
	assert.Equal(t, tabletest.Call{Op: "offset-write", ID: 2048, Offset: 10, Count: 4}, dev.Calls[1])
	assert.Equal(t, byte(0x01), dev.Images[2048][11])
}

func TestClearSkipsRead(t *testing.T) {
	dev := tabletest.NewDevice()
	dev.Set(2048, []byte{1, 2, 3, 4, 5, 6, 7, 8})

	p := &pair{A: 5, B: 6}
	tbl := table.New(dev, 2048, 4, p, table.WithSubtable(4))
	require.NoError(t, tbl.Clear())
	assert.Equal(t, table.Dirty, tbl.State())
	assert.Equal(t, pair{}, *p)
	assert.Empty(t, dev.Calls)

	require.NoError(t, tbl.Write(context.Background()))
	assert.Equal(t, []byte{1, 2, 3, 4, 0, 0, 0, 0}, dev.Images[2048])
}

func TestOffsetReadRefreshesLoadedFields(t *testing.T) {
	dev := tabletest.NewDevice()
	dev.Set(21, []byte{0x01, 0x00, 0x02, 0x00})

	p := &pair{}
	tbl := table.New(dev, 21, 4, p)
	require.NoError(t, tbl.Read(context.Background()))

	dev.Images[21][2] = 0x09
	require.NoError(t, tbl.OffsetRead(context.Background(), 2, 2))
	assert.Equal(t, uint16(9), p.B)

	assert.ErrorIs(t, tbl.OffsetRead(context.Background(), 3, 2), table.ErrInvalidFieldValue)
}

func TestOffsetWritePartialKeepsDirty(t *testing.T) {
	dev := tabletest.NewDevice()
	dev.Set(21, make([]byte, 4))

	p := &pair{}
	tbl := table.New(dev, 21, 4, p)
	require.NoError(t, tbl.Read(context.Background()))
	p.A, p.B = 1, 2
	tbl.MarkDirty()

	require.NoError(t, tbl.OffsetWrite(context.Background(), 2, 2))
	assert.Equal(t, table.Dirty, tbl.State())
	assert.Equal(t, []byte{0, 0, 2, 0}, dev.Images[21])

	require.NoError(t, tbl.OffsetWrite(context.Background(), 0, 4))
	assert.Equal(t, table.Loaded, tbl.State())
}

func TestLoadFromRecordedImage(t *testing.T) {
	r := &counted{}
	tbl := table.New(nil, 0, 1, r, table.WithResize(r))
	require.NoError(t, tbl.Load([]byte{3, 'a', 'b', 'c', 'x'}))
	assert.Equal(t, table.Loaded, tbl.State())
	assert.Equal(t, []byte("abc"), r.Data)
	assert.Equal(t, 4, tbl.Size())

	err := tbl.Load([]byte{3, 'a'})
	assert.ErrorIs(t, err, table.ErrIncompleteResponse)

	// without a transport nothing can be read
	tbl.Invalidate()
	assert.ErrorIs(t, tbl.Read(context.Background()), table.ErrUnsupportedOperation)
}

func TestVariableSizeTakesTransportLength(t *testing.T) {
	dev := tabletest.NewDevice()
	dev.Set(8, []byte{1, 2, 3})

	tbl := table.New(dev, 8, 0, nil, table.WithVariableSize())
	require.NoError(t, tbl.Read(context.Background()))
	assert.Equal(t, 3, tbl.Size())
	assert.Equal(t, []byte{1, 2, 3}, tbl.Bytes())

	require.NoError(t, tbl.SetSize(5))
	assert.Equal(t, []byte{1, 2, 3, 0, 0}, tbl.Bytes())

	fixed := table.New(dev, 8, 3, nil)
	assert.ErrorIs(t, fixed.SetSize(5), table.ErrUnsupportedOperation)
}
