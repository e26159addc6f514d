// internal/stdtable/pending.go
package stdtable

import (
	"context"

	"github.com/tamzrod/c12tables/internal/bitfield"
	"github.com/tamzrod/c12tables/internal/cursor"
	"github.com/tamzrod/c12tables/internal/table"
)

// PendingEntry is one pending-activation record: the table it applies to
// and the 5-byte trigger that activates it.
type PendingEntry struct {
	Table   bitfield.TableIDB
	Trigger [5]byte
}

// EventCode is the trigger kind in the low nibble of the selector byte.
func (e PendingEntry) EventCode() uint8 { return e.Trigger[0] & 0x0F }
func (e PendingEntry) SelfRead() bool   { return e.Trigger[0]&0x10 != 0 }
func (e PendingEntry) DemandReset() bool {
	return e.Trigger[0]&0x20 != 0
}

// Storage is the trigger argument (time or count, by event code).
func (e PendingEntry) Storage() [4]byte {
	var s [4]byte
	copy(s[:], e.Trigger[1:])
	return s
}

type pendingRecord struct {
	dims      Dimensions
	activated bitfield.Set
	count     uint8
	entries   []PendingEntry
}

func (r *pendingRecord) Decode(c *cursor.Cursor) error {
	std, err := c.ReadBytes(r.dims.StdTables)
	if err != nil {
		return err
	}
	mfg, err := c.ReadBytes(r.dims.MfgTables)
	if err != nil {
		return err
	}
	r.activated = bitfield.Set{Std: std, StdDim: r.dims.StdTables, Mfg: mfg, MfgDim: r.dims.MfgTables}

	if r.count, err = c.ReadUint8(); err != nil {
		return err
	}
	r.entries = make([]PendingEntry, r.dims.Pending)
	for i := range r.entries {
		idb, err := c.ReadUint16()
		if err != nil {
			return err
		}
		trig, err := c.ReadBytes(5)
		if err != nil {
			return err
		}
		r.entries[i].Table = bitfield.TableIDB(idb)
		copy(r.entries[i].Trigger[:], trig)
	}
	return nil
}

func (r *pendingRecord) Encode(c *cursor.Cursor) error {
	if err := c.WriteBytes(r.activated.Std, r.dims.StdTables); err != nil {
		return err
	}
	if err := c.WriteBytes(r.activated.Mfg, r.dims.MfgTables); err != nil {
		return err
	}
	if err := c.WriteUint8(r.count); err != nil {
		return err
	}
	for i := 0; i < r.dims.Pending; i++ {
		var e PendingEntry
		if i < len(r.entries) {
			e = r.entries[i]
		}
		if err := c.WriteUint16(uint16(e.Table)); err != nil {
			return err
		}
		if err := c.WriteBytes(e.Trigger[:], 5); err != nil {
			return err
		}
	}
	return nil
}

// PendingStatus is standard table 4, sized a + b + 1 + 7p from table 0.
type PendingStatus struct {
	t   *table.Table
	rec pendingRecord
}

func NewPendingStatus(tr table.Transport, dims Dimensions, opts ...table.Option) *PendingStatus {
	p := &PendingStatus{rec: pendingRecord{dims: dims}}
	opts = append([]table.Option{table.WithCapabilities(table.CapReadOnly)}, opts...)
	p.t = table.New(tr, PendingStatusID, dims.PendingStatusSize(), &p.rec, opts...)
	return p
}

func (p *PendingStatus) Table() *table.Table { return p.t }

// IsActivated reports whether a pending version of table id has been
// activated.
func (p *PendingStatus) IsActivated(ctx context.Context, id uint16) (bool, error) {
	if err := p.t.EnsureLoaded(ctx); err != nil {
		return false, err
	}
	return p.rec.activated.Contains(id), nil
}

// Pending returns the entries awaiting activation, NBR_PENDING_ACTIVATION
// of them at most.
func (p *PendingStatus) Pending(ctx context.Context) ([]PendingEntry, error) {
	if err := p.t.EnsureLoaded(ctx); err != nil {
		return nil, err
	}
	n := min(int(p.rec.count), len(p.rec.entries))
	return append([]PendingEntry(nil), p.rec.entries[:n]...), nil
}
