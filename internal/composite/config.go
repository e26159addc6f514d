// internal/composite/config.go
package composite

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/tamzrod/c12tables/internal/table"
)

// ErrSubtableAbsent is returned for a subsystem whose header offset is 0.
var ErrSubtableAbsent = errors.New("composite: subtable absent")

type Option func(*Config)

// WithLayout pins the subsystem layout instead of deriving it from the
// header's firmware version and revision.
func WithLayout(l Layout) Option {
	return func(c *Config) { c.layout = &l }
}

// WithTableOptions are applied to the header and every subtable.
func WithTableOptions(opts ...table.Option) Option {
	return func(c *Config) { c.opts = append(c.opts, opts...) }
}

// Config is table 2048. Only the offset header is read up front; each
// subsystem block is a subtable built on first use at the offset the header
// gave at that moment. A later header re-read does not move existing
// subtables; call Reset to rebuild them.
type Config struct {
	tr     table.Transport
	hdr    OffsetHeader
	t      *table.Table
	layout *Layout
	opts   []table.Option

	constants *ConstantsTable
	billing   *BillingTable
	calendar  *CalendarTable
	tou       *TOUTable
	raw       map[Subsystem]*table.Table
}

func New(tr table.Transport, opts ...Option) *Config {
	c := &Config{tr: tr}
	for _, opt := range opts {
		opt(c)
	}
	c.t = table.New(tr, ConfigID, HeaderSize, &c.hdr, c.tableOptions(0, table.CapReadOnly)...)
	return c
}

// HeaderTable is the table holding the offset header.
func (c *Config) HeaderTable() *table.Table { return c.t }

func (c *Config) Header(ctx context.Context) (OffsetHeader, error) {
	if err := c.t.EnsureLoaded(ctx); err != nil {
		return OffsetHeader{}, err
	}
	return c.hdr, nil
}

// Layout is the pinned layout, or the one the header's firmware implies.
func (c *Config) Layout(ctx context.Context) (Layout, error) {
	if c.layout != nil {
		return *c.layout, nil
	}
	h, err := c.Header(ctx)
	if err != nil {
		return Layout{}, err
	}
	return LayoutFor(h.FWVersion, h.Revision), nil
}

func (c *Config) Present(ctx context.Context, s Subsystem) (bool, error) {
	h, err := c.Header(ctx)
	if err != nil {
		return false, err
	}
	return h.Present(s), nil
}

// Reset drops the header and every subtable built so far.
func (c *Config) Reset() {
	c.t.Invalidate()
	c.constants, c.billing, c.calendar, c.tou = nil, nil, nil, nil
	c.raw = nil
}

func (c *Config) Constants(ctx context.Context) (*ConstantsTable, error) {
	if c.constants != nil {
		return c.constants, nil
	}
	l, opts, err := c.bind(ctx, Constants, Layout.ConstantsSize)
	if err != nil {
		return nil, err
	}
	c.constants = newConstantsTable(c.tr, l, opts)
	return c.constants, nil
}

func (c *Config) BillingSchedule(ctx context.Context) (*BillingTable, error) {
	if c.billing != nil {
		return c.billing, nil
	}
	l, opts, err := c.bind(ctx, BillingSchedule, Layout.BillingScheduleSize)
	if err != nil {
		return nil, err
	}
	c.billing = newBillingTable(c.tr, l, opts)
	return c.billing, nil
}

func (c *Config) Calendar(ctx context.Context) (*CalendarTable, error) {
	if c.calendar != nil {
		return c.calendar, nil
	}
	l, opts, err := c.bind(ctx, Calendar, Layout.CalendarSize)
	if err != nil {
		return nil, err
	}
	c.calendar = newCalendarTable(c.tr, l, opts)
	return c.calendar, nil
}

func (c *Config) TOU(ctx context.Context) (*TOUTable, error) {
	if c.tou != nil {
		return c.tou, nil
	}
	l, opts, err := c.bind(ctx, TOU, Layout.TOUSize)
	if err != nil {
		return nil, err
	}
	c.tou = newTOUTable(c.tr, l, opts)
	return c.tou, nil
}

// Raw binds an uninterpreted subtable of size bytes for any subsystem.
func (c *Config) Raw(ctx context.Context, s Subsystem, size int) (*table.Table, error) {
	if t, ok := c.raw[s]; ok {
		return t, nil
	}
	_, opts, err := c.bind(ctx, s, func(Layout) int { return size })
	if err != nil {
		return nil, err
	}
	t := table.New(c.tr, ConfigID, size, nil, opts...)
	if c.raw == nil {
		c.raw = map[Subsystem]*table.Table{}
	}
	c.raw[s] = t
	return t, nil
}

// bind validates the offset of s and returns the options binding a
// subtable of the layout's size there. The header is read first if needed.
func (c *Config) bind(ctx context.Context, s Subsystem, size func(Layout) int) (Layout, []table.Option, error) {
	h, err := c.Header(ctx)
	if err != nil {
		return Layout{}, nil, err
	}
	l, err := c.Layout(ctx)
	if err != nil {
		return Layout{}, nil, err
	}
	off := h.Offset(s)
	if off == 0 {
		return Layout{}, nil, fmt.Errorf("%w: %s", ErrSubtableAbsent, s)
	}
	if off < HeaderSize {
		return Layout{}, nil, fmt.Errorf("%w: %s offset %d overlaps the header", table.ErrInvalidFieldValue, s, off)
	}
	n := size(l)
	if h.Size != 0 && int(off)+n > int(h.Size) {
		return Layout{}, nil, fmt.Errorf("%w: %s at %d+%d exceeds table size %d", table.ErrInvalidFieldValue, s, off, n, h.Size)
	}
	return l, c.tableOptions(uint32(off), table.CapReadWrite), nil
}

func (c *Config) tableOptions(offset uint32, caps table.Capability) []table.Option {
	opts := []table.Option{table.WithCapabilities(caps), table.WithSubtable(offset)}
	return append(opts, slices.Clone(c.opts)...)
}
