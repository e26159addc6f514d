// internal/stdtable/mode.go
package stdtable

import (
	"context"

	"github.com/tamzrod/c12tables/internal/cursor"
	"github.com/tamzrod/c12tables/internal/status"
	"github.com/tamzrod/c12tables/internal/table"
)

type modeRecord struct {
	snap   status.Snapshot
	mfgDim int
}

func (r *modeRecord) Decode(c *cursor.Cursor) error {
	var err error
	if r.snap.Mode, err = c.ReadUint8(); err != nil {
		return err
	}
	if r.snap.Std1, err = c.ReadUint16(); err != nil {
		return err
	}
	if r.snap.Std2, err = c.ReadUint8(); err != nil {
		return err
	}
	r.snap.Mfg, err = c.ReadBytes(r.mfgDim)
	return err
}

func (r *modeRecord) Encode(c *cursor.Cursor) error {
	if err := c.WriteUint8(r.snap.Mode); err != nil {
		return err
	}
	if err := c.WriteUint16(r.snap.Std1); err != nil {
		return err
	}
	if err := c.WriteUint8(r.snap.Std2); err != nil {
		return err
	}
	return c.WriteBytes(r.snap.Mfg, r.mfgDim)
}

// ModeStatus is standard table 3, sized 4 + DIM_MFG_STATUS_USED.
type ModeStatus struct {
	t   *table.Table
	rec modeRecord
}

func NewModeStatus(tr table.Transport, dims Dimensions, opts ...table.Option) *ModeStatus {
	m := &ModeStatus{rec: modeRecord{mfgDim: dims.MfgStatus}}
	opts = append([]table.Option{table.WithCapabilities(table.CapReadOnly)}, opts...)
	m.t = table.New(tr, ModeStatusID, dims.ModeStatusSize(), &m.rec, opts...)
	return m
}

func (m *ModeStatus) Table() *table.Table { return m.t }

// Snapshot returns the raw status fields.
func (m *ModeStatus) Snapshot(ctx context.Context) (status.Snapshot, error) {
	if err := m.t.EnsureLoaded(ctx); err != nil {
		return status.Snapshot{}, err
	}
	s := m.rec.snap
	s.Mfg = append([]byte(nil), s.Mfg...)
	return s, nil
}

// Flags decodes every set mode and status bit. layout places the
// manufacturer bits; nil skips them.
func (m *ModeStatus) Flags(ctx context.Context, layout status.MfgLayout) ([]status.Flag, error) {
	s, err := m.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return status.Decode(s, layout), nil
}

// Has reports whether flag f is currently set.
func (m *ModeStatus) Has(ctx context.Context, f status.Flag, layout status.MfgLayout) (bool, error) {
	flags, err := m.Flags(ctx, layout)
	if err != nil {
		return false, err
	}
	for _, x := range flags {
		if x == f {
			return true, nil
		}
	}
	return false, nil
}
