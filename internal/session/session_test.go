// internal/session/session_test.go
package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tamzrod/c12tables/internal/bitfield"
	"github.com/tamzrod/c12tables/internal/composite"
	"github.com/tamzrod/c12tables/internal/config"
	"github.com/tamzrod/c12tables/internal/cursor"
	"github.com/tamzrod/c12tables/internal/procedure"
	"github.com/tamzrod/c12tables/internal/status"
	"github.com/tamzrod/c12tables/internal/stdtable"
	"github.com/tamzrod/c12tables/internal/table"
	"github.com/tamzrod/c12tables/internal/table/tabletest"
)

var dims = stdtable.Dimensions{StdTables: 2, MfgTables: 1, StdProcs: 2, MfgProcs: 1, MfgStatus: 2, Pending: 1}

// newDevice returns a device whose table 0 announces f and lists procs.
func newDevice(t *testing.T, f stdtable.FormatControl, procs ...uint16) *tabletest.Device {
	t.Helper()
	h := stdtable.Header{
		Format:       f,
		Manufacturer: "ITRN",
		StdVersion:   2,
		Dims:         dims,
		Tables:       bitfield.NewSet(dims.StdTables, dims.MfgTables),
		Procedures:   bitfield.NewSet(dims.StdProcs, dims.MfgProcs),
		Writable:     bitfield.NewSet(dims.StdTables, dims.MfgTables),
	}
	for _, id := range []uint16{0, 3, 4, 7, 8, 2048} {
		h.Tables.SetBit(id)
	}
	for _, id := range procs {
		h.Procedures.SetBit(id)
	}
	buf := make([]byte, h.Size())
	require.NoError(t, h.Encode(cursor.New(buf, f.ByteOrder())))

	dev := tabletest.NewDevice()
	dev.Set(stdtable.GeneralConfigID, buf)
	return dev
}

func TestTableZeroReadBeforeDependents(t *testing.T) {
	dev := newDevice(t, stdtable.FormatControl{TimeFormat: cursor.TimeUint8})
	dev.Set(stdtable.ModeStatusID, make([]byte, dims.ModeStatusSize()))
	s := New(dev, Config{})

	ms, err := s.ModeStatus(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, dev.Calls)
	for _, c := range dev.Calls {
		assert.Equal(t, uint16(stdtable.GeneralConfigID), c.ID)
	}
	assert.Equal(t, dims.ModeStatusSize(), ms.Table().Size())

	_, err = ms.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint16(stdtable.ModeStatusID), dev.Calls[len(dev.Calls)-1].ID)

	again, err := s.ModeStatus(context.Background())
	require.NoError(t, err)
	assert.Same(t, ms, again)
}

func TestByteOrderReachesDependents(t *testing.T) {
	dev := newDevice(t, stdtable.FormatControl{BigEndian: true, TimeFormat: cursor.TimeUint8})
	dev.Set(stdtable.ModeStatusID, []byte{0x01, 0x01, 0x00, 0x00, 0x00, 0x00})
	s := New(dev, Config{})

	ms, err := s.ModeStatus(context.Background())
	require.NoError(t, err)
	ok, err := ms.Has(context.Background(), status.LowBattery, status.DefaultMfgLayout)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = ms.Has(context.Background(), status.Metering, status.DefaultMfgLayout)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestHeaderFailureReachesDependents(t *testing.T) {
	dev := tabletest.NewDevice()
	s := New(dev, Config{})

	_, err := s.ModeStatus(context.Background())
	require.ErrorIs(t, err, table.ErrCommunication)
	_, err = s.Composite(context.Background())
	require.ErrorIs(t, err, table.ErrCommunication)
	_, err = s.Invoker(context.Background())
	require.ErrorIs(t, err, table.ErrCommunication)
}

func TestTimeFormatResolution(t *testing.T) {
	dev := newDevice(t, stdtable.FormatControl{TimeFormat: cursor.TimeBCD})
	s := New(dev, Config{})

	// table 0 not read yet: the device transport's format
	assert.Equal(t, cursor.TimeUint8, s.TimeFormat())
	assert.Equal(t, cursor.TimeUint8, s.Transport().TimeFormat())

	_, err := s.GeneralConfig().Header(context.Background())
	require.NoError(t, err)
	assert.Equal(t, cursor.TimeBCD, s.TimeFormat())
	assert.Equal(t, cursor.TimeBCD, s.Transport().TimeFormat())

	override := cursor.TimeUint32Sec
	s = New(dev, Config{TimeFormat: &override})
	_, err = s.GeneralConfig().Header(context.Background())
	require.NoError(t, err)
	assert.Equal(t, cursor.TimeUint32Sec, s.TimeFormat())
}

func TestTableTimeouts(t *testing.T) {
	dev := newDevice(t, stdtable.FormatControl{})
	s := New(dev, Config{
		Timeout:       2 * time.Second,
		TableTimeouts: map[uint16]time.Duration{9: 30 * time.Second, 3: time.Second},
	})
	dev.Set(stdtable.ModeStatusID, make([]byte, dims.ModeStatusSize()))

	assert.Equal(t, 2*time.Second, s.GeneralConfig().Table().Timeout())
	assert.Equal(t, 30*time.Second, s.Raw(9).Timeout())
	assert.Equal(t, 2*time.Second, s.Raw(10).Timeout())

	ms, err := s.ModeStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, time.Second, ms.Table().Timeout())
}

func TestCallChecksProcedureList(t *testing.T) {
	dev := newDevice(t, stdtable.FormatControl{}, procedure.WarmStart)
	dev.Set(procedure.ResponseTableID, []byte{0x01, 0x00, 0x01, 0x00})
	s := New(dev, Config{})
	ctx := context.Background()

	_, err := s.Call(ctx, procedure.ColdStart, nil)
	require.ErrorIs(t, err, table.ErrUnsupportedOperation)
	assert.NotContains(t, dev.Ops(), "write")

	resp, err := s.Call(ctx, procedure.WarmStart, nil)
	require.NoError(t, err)
	assert.Equal(t, procedure.Completed, resp.Result)
	assert.Equal(t, []byte{0x01, 0x00, 0x01}, dev.Images[procedure.RequestTableID])
}

func TestSetDateTimeUsesSessionFormat(t *testing.T) {
	dev := newDevice(t, stdtable.FormatControl{TimeFormat: cursor.TimeBCD}, procedure.SetDateTime)
	dev.Set(procedure.ResponseTableID, []byte{0x0A, 0x00, 0x01, 0x00})
	s := New(dev, Config{})

	ts := time.Date(2026, 10, 19, 8, 5, 0, 0, time.UTC)
	_, err := s.SetDateTime(context.Background(), procedure.SetDateTimeParams{SetTime: true, SetDate: true, Time: ts})
	require.NoError(t, err)
	assert.Equal(t,
		[]byte{0x0A, 0x00, 0x01, 0x03, 0x26, 0x10, 0x19, 0x08, 0x05, 0x00, 0x01},
		dev.Images[procedure.RequestTableID])
}

func TestCompositeLayoutPinned(t *testing.T) {
	dev := newDevice(t, stdtable.FormatControl{})
	s := New(dev, Config{Layout: &composite.LayoutExtended})

	c, err := s.Composite(context.Background())
	require.NoError(t, err)
	dev.Reset()

	l, err := c.Layout(context.Background())
	require.NoError(t, err)
	assert.Equal(t, composite.LayoutExtended.Name, l.Name)
	assert.Empty(t, dev.Calls)
}

func TestReadTableAndInvalidate(t *testing.T) {
	dev := newDevice(t, stdtable.FormatControl{})
	dev.Set(20, []byte{1, 2, 3})
	s := New(dev, Config{})
	ctx := context.Background()

	img, err := s.ReadTable(ctx, 20)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, img)

	dev.Set(20, []byte{4, 5, 6, 7})
	img, err = s.ReadTable(ctx, 20)
	require.NoError(t, err)
	assert.Equal(t, []byte{4, 5, 6, 7}, img)

	img, err = s.ReadTable(ctx, stdtable.GeneralConfigID)
	require.NoError(t, err)
	assert.Equal(t, dims.GeneralConfigSize(), len(img))

	s.Invalidate()
	assert.Equal(t, table.Unloaded, s.GeneralConfig().Table().State())
	assert.Equal(t, table.Unloaded, s.Raw(20).State())
}

func TestResetRebuildsDependents(t *testing.T) {
	dev := newDevice(t, stdtable.FormatControl{})
	s := New(dev, Config{})
	ctx := context.Background()

	ms, err := s.ModeStatus(ctx)
	require.NoError(t, err)
	s.Reset()
	again, err := s.ModeStatus(ctx)
	require.NoError(t, err)
	assert.NotSame(t, ms, again)
}

func TestOpenReplayFromConfig(t *testing.T) {
	c := &config.Config{
		Session: config.SessionConfig{
			TimeFormat:      "uint32-seconds",
			Layout:          "legacy",
			TableTimeoutsMs: map[uint16]int{2048: 9000},
		},
		Transport: config.TransportConfig{
			Kind:   config.TransportReplay,
			Replay: config.ReplayConfig{InMemory: true, Capture: "cap"},
		},
	}
	require.NoError(t, config.Validate(c))
	config.Normalize(c)

	s, closeFn, err := Open(c, nil)
	require.NoError(t, err)
	defer closeFn()

	assert.Equal(t, cursor.TimeUint32Sec, s.TimeFormat())
	require.NotNil(t, s.cfg.Layout)
	assert.Equal(t, composite.LayoutLegacy.Name, s.cfg.Layout.Name)
	assert.Equal(t, 9*time.Second, s.cfg.TableTimeouts[2048])
	assert.Equal(t, time.Duration(config.DefaultTimeoutMs)*time.Millisecond, s.cfg.Timeout)

	// empty in-memory capture: table 0 is missing
	_, err = s.ReadTable(context.Background(), 0)
	require.ErrorIs(t, err, table.ErrCommunication)
}
