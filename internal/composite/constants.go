// internal/composite/constants.go
package composite

import (
	"context"
	"fmt"

	"github.com/tamzrod/c12tables/internal/cursor"
	"github.com/tamzrod/c12tables/internal/table"
)

// ConstantsValues are the metering constants. Ratios and flags are 16 bits
// wide on legacy firmware and 32 bits wide after.
type ConstantsValues struct {
	CTRatio            uint32
	VTRatio            uint32
	RegisterMultiplier uint32
	DemandInterval     uint8 // minutes
	Subintervals       uint8
	TestModeTimeout    uint8 // minutes
	Flags              uint32
}

type constantsRecord struct {
	wide bool
	v    ConstantsValues
}

func (r *constantsRecord) read(c *cursor.Cursor) (uint32, error) {
	if r.wide {
		return c.ReadUint32()
	}
	v, err := c.ReadUint16()
	return uint32(v), err
}

func (r *constantsRecord) write(c *cursor.Cursor, v uint32) error {
	if r.wide {
		return c.WriteUint32(v)
	}
	return c.WriteUint16(uint16(v))
}

func (r *constantsRecord) Decode(c *cursor.Cursor) error {
	var err error
	for _, p := range []*uint32{&r.v.CTRatio, &r.v.VTRatio, &r.v.RegisterMultiplier} {
		if *p, err = r.read(c); err != nil {
			return err
		}
	}
	b, err := c.ReadBytes(3)
	if err != nil {
		return err
	}
	r.v.DemandInterval, r.v.Subintervals, r.v.TestModeTimeout = b[0], b[1], b[2]
	r.v.Flags, err = r.read(c)
	return err
}

func (r *constantsRecord) Encode(c *cursor.Cursor) error {
	if err := r.check(r.v); err != nil {
		return err
	}
	for _, v := range []uint32{r.v.CTRatio, r.v.VTRatio, r.v.RegisterMultiplier} {
		if err := r.write(c, v); err != nil {
			return err
		}
	}
	b := []byte{r.v.DemandInterval, r.v.Subintervals, r.v.TestModeTimeout}
	if err := c.WriteBytes(b, 3); err != nil {
		return err
	}
	return r.write(c, r.v.Flags)
}

func (r *constantsRecord) check(v ConstantsValues) error {
	if r.wide {
		return nil
	}
	for _, f := range []struct {
		name string
		v    uint32
	}{
		{"ct ratio", v.CTRatio},
		{"vt ratio", v.VTRatio},
		{"register multiplier", v.RegisterMultiplier},
		{"flags", v.Flags},
	} {
		if f.v > 0xFFFF {
			return fmt.Errorf("%w: %s %d does not fit 16 bits", table.ErrInvalidFieldValue, f.name, f.v)
		}
	}
	return nil
}

// ConstantsTable is the constants subsystem block.
type ConstantsTable struct {
	*table.Table
	rec constantsRecord
}

func newConstantsTable(tr table.Transport, l Layout, opts []table.Option) *ConstantsTable {
	k := &ConstantsTable{rec: constantsRecord{wide: l.WideConstants}}
	k.Table = table.New(tr, ConfigID, l.ConstantsSize(), &k.rec, opts...)
	return k
}

// Wide reports whether ratio fields are 32 bits.
func (k *ConstantsTable) Wide() bool { return k.rec.wide }

func (k *ConstantsTable) Values(ctx context.Context) (ConstantsValues, error) {
	if err := k.EnsureLoaded(ctx); err != nil {
		return ConstantsValues{}, err
	}
	return k.rec.v, nil
}

// SetValues replaces every constant. A value too wide for the block is
// rejected and nothing changes.
func (k *ConstantsTable) SetValues(ctx context.Context, v ConstantsValues) error {
	if err := k.EnsureLoaded(ctx); err != nil {
		return err
	}
	if err := k.rec.check(v); err != nil {
		return err
	}
	k.rec.v = v
	k.MarkDirty()
	return nil
}
