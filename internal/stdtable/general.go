// internal/stdtable/general.go
package stdtable

import (
	"context"
	"encoding/binary"

	"github.com/tamzrod/c12tables/internal/bitfield"
	"github.com/tamzrod/c12tables/internal/cursor"
	"github.com/tamzrod/c12tables/internal/table"
)

// Header is the decoded content of standard table 0.
type Header struct {
	Format        FormatControl
	Manufacturer  string
	NameplateType uint8
	DefaultSet    uint8
	MaxProcParams uint8
	MaxResponse   uint8
	StdVersion    uint8
	StdRevision   uint8
	Dims          Dimensions

	Tables     bitfield.Set // STD_TBLS_USED, MFG_TBLS_USED
	Procedures bitfield.Set // STD_PROC_USED, MFG_PROC_USED
	Writable   bitfield.Set // STD_TBLS_WRITE, MFG_TBLS_WRITE
}

// Size is the encoded size of h.
func (h *Header) Size() int { return h.Dims.GeneralConfigSize() }

// ResolveSize reads the dimension counts from the 19-byte prefix.
func (h *Header) ResolveSize(c *cursor.Cursor) (int, error) {
	if err := c.Seek(13); err != nil {
		return 0, err
	}
	d, err := readDims(c)
	if err != nil {
		return 0, err
	}
	return d.GeneralConfigSize(), nil
}

func (h *Header) Decode(c *cursor.Cursor) error {
	if err := h.Format.decode(c); err != nil {
		return err
	}
	var err error
	if h.Manufacturer, err = c.ReadString(4); err != nil {
		return err
	}
	b, err := c.ReadBytes(6)
	if err != nil {
		return err
	}
	h.NameplateType, h.DefaultSet = b[0], b[1]
	h.MaxProcParams, h.MaxResponse = b[2], b[3]
	h.StdVersion, h.StdRevision = b[4], b[5]

	if h.Dims, err = readDims(c); err != nil {
		return err
	}
	d := h.Dims

	var bm [6][]byte
	for i, n := range []int{d.StdTables, d.MfgTables, d.StdProcs, d.MfgProcs, d.StdTables, d.MfgTables} {
		if bm[i], err = c.ReadBytes(n); err != nil {
			return err
		}
	}
	h.Tables = bitfield.Set{Std: bm[0], StdDim: d.StdTables, Mfg: bm[1], MfgDim: d.MfgTables}
	h.Procedures = bitfield.Set{Std: bm[2], StdDim: d.StdProcs, Mfg: bm[3], MfgDim: d.MfgProcs}
	h.Writable = bitfield.Set{Std: bm[4], StdDim: d.StdTables, Mfg: bm[5], MfgDim: d.MfgTables}
	return nil
}

func (h *Header) Encode(c *cursor.Cursor) error {
	if err := h.Format.encode(c); err != nil {
		return err
	}
	if err := c.WriteString(h.Manufacturer, 4); err != nil {
		return err
	}
	d := h.Dims
	b := []byte{
		h.NameplateType, h.DefaultSet, h.MaxProcParams, h.MaxResponse, h.StdVersion, h.StdRevision,
		uint8(d.StdTables), uint8(d.MfgTables), uint8(d.StdProcs), uint8(d.MfgProcs),
		uint8(d.MfgStatus), uint8(d.Pending),
	}
	if err := c.WriteBytes(b, len(b)); err != nil {
		return err
	}
	for _, f := range []struct {
		v []byte
		n int
	}{
		{h.Tables.Std, d.StdTables},
		{h.Tables.Mfg, d.MfgTables},
		{h.Procedures.Std, d.StdProcs},
		{h.Procedures.Mfg, d.MfgProcs},
		{h.Writable.Std, d.StdTables},
		{h.Writable.Mfg, d.MfgTables},
	} {
		if err := c.WriteBytes(f.v, f.n); err != nil {
			return err
		}
	}
	return nil
}

func readDims(c *cursor.Cursor) (Dimensions, error) {
	b, err := c.ReadBytes(6)
	if err != nil {
		return Dimensions{}, err
	}
	return Dimensions{
		StdTables: int(b[0]),
		MfgTables: int(b[1]),
		StdProcs:  int(b[2]),
		MfgProcs:  int(b[3]),
		MfgStatus: int(b[4]),
		Pending:   int(b[5]),
	}, nil
}

// GeneralConfig is standard table 0. It is declared at its 19-byte prefix
// and grows to its true size on first read.
type GeneralConfig struct {
	t *table.Table
	h Header
}

func NewGeneralConfig(tr table.Transport, opts ...table.Option) *GeneralConfig {
	g := &GeneralConfig{}
	opts = append([]table.Option{
		table.WithCapabilities(table.CapReadOnly),
		table.WithResize(&g.h),
	}, opts...)
	g.t = table.New(tr, GeneralConfigID, GeneralConfigPrefix, &g.h, opts...)
	return g
}

func (g *GeneralConfig) Table() *table.Table { return g.t }

func (g *GeneralConfig) load(ctx context.Context) (*Header, error) {
	if err := g.t.EnsureLoaded(ctx); err != nil {
		return nil, err
	}
	return &g.h, nil
}

// Header returns the decoded table. Its bitmaps are shared with the table
// and must be treated as read-only.
func (g *GeneralConfig) Header(ctx context.Context) (Header, error) {
	h, err := g.load(ctx)
	if err != nil {
		return Header{}, err
	}
	return *h, nil
}

func (g *GeneralConfig) Dimensions(ctx context.Context) (Dimensions, error) {
	h, err := g.load(ctx)
	if err != nil {
		return Dimensions{}, err
	}
	return h.Dims, nil
}

func (g *GeneralConfig) Format(ctx context.Context) (FormatControl, error) {
	h, err := g.load(ctx)
	if err != nil {
		return FormatControl{}, err
	}
	return h.Format, nil
}

func (g *GeneralConfig) TimeFormat(ctx context.Context) (cursor.TimeFormat, error) {
	f, err := g.Format(ctx)
	return f.TimeFormat, err
}

func (g *GeneralConfig) ByteOrder(ctx context.Context) (binary.ByteOrder, error) {
	f, err := g.Format(ctx)
	if err != nil {
		return nil, err
	}
	return f.ByteOrder(), nil
}

// IsTableUsed reports whether the device implements table id
// (manufacturer ids carry the 2048 bias).
func (g *GeneralConfig) IsTableUsed(ctx context.Context, id uint16) (bool, error) {
	h, err := g.load(ctx)
	if err != nil {
		return false, err
	}
	return h.Tables.Contains(id), nil
}

func (g *GeneralConfig) IsTableWritable(ctx context.Context, id uint16) (bool, error) {
	h, err := g.load(ctx)
	if err != nil {
		return false, err
	}
	return h.Writable.Contains(id), nil
}

func (g *GeneralConfig) IsProcedureUsed(ctx context.Context, id uint16) (bool, error) {
	h, err := g.load(ctx)
	if err != nil {
		return false, err
	}
	return h.Procedures.Contains(id), nil
}
