// internal/composite/calendar.go
package composite

import (
	"context"
	"fmt"

	"github.com/tamzrod/c12tables/internal/bitfield"
	"github.com/tamzrod/c12tables/internal/cursor"
	"github.com/tamzrod/c12tables/internal/table"
)

// DSTRule is when the DST events switch and by how much.
type DSTRule struct {
	Hour          uint8
	Minute        uint8
	OffsetMinutes uint8
}

// CalendarYear is one year of calendar events. Year counts from 2000.
type CalendarYear struct {
	Year   uint8
	Events []bitfield.CalendarEvent
}

type calendarRecord struct {
	dst   DSTRule
	years []CalendarYear
}

func (r *calendarRecord) Decode(c *cursor.Cursor) error {
	b, err := c.ReadBytes(3)
	if err != nil {
		return err
	}
	r.dst = DSTRule{Hour: b[0], Minute: b[1], OffsetMinutes: b[2]}
	for i := range r.years {
		y := &r.years[i]
		if y.Year, err = c.ReadUint8(); err != nil {
			return err
		}
		for j := range y.Events {
			w, err := c.ReadUint16()
			if err != nil {
				return err
			}
			y.Events[j] = bitfield.CalendarEvent(w)
		}
	}
	return nil
}

func (r *calendarRecord) Encode(c *cursor.Cursor) error {
	if err := c.WriteBytes([]byte{r.dst.Hour, r.dst.Minute, r.dst.OffsetMinutes}, 3); err != nil {
		return err
	}
	for _, y := range r.years {
		if err := c.WriteUint8(y.Year); err != nil {
			return err
		}
		for _, e := range y.Events {
			if err := c.WriteUint16(uint16(e)); err != nil {
				return err
			}
		}
	}
	return nil
}

// CalendarTable is the calendar block: a DST rule and, per year, a fixed
// number of calendar event words. Words read from the device are kept as
// they came; setters validate strictly.
type CalendarTable struct {
	*table.Table
	rec calendarRecord
}

func newCalendarTable(tr table.Transport, l Layout, opts []table.Option) *CalendarTable {
	k := &CalendarTable{rec: calendarRecord{years: make([]CalendarYear, l.CalendarYears)}}
	for i := range k.rec.years {
		k.rec.years[i].Events = make([]bitfield.CalendarEvent, l.CalendarEvents)
	}
	k.Table = table.New(tr, ConfigID, l.CalendarSize(), &k.rec, opts...)
	return k
}

func (k *CalendarTable) DST(ctx context.Context) (DSTRule, error) {
	if err := k.EnsureLoaded(ctx); err != nil {
		return DSTRule{}, err
	}
	return k.rec.dst, nil
}

func (k *CalendarTable) SetDST(ctx context.Context, r DSTRule) error {
	if err := k.EnsureLoaded(ctx); err != nil {
		return err
	}
	if r.Hour >= 24 || r.Minute >= 60 {
		return fmt.Errorf("%w: dst switch %02d:%02d", table.ErrInvalidFieldValue, r.Hour, r.Minute)
	}
	k.rec.dst = r
	k.MarkDirty()
	return nil
}

// Years returns a copy of every year block.
func (k *CalendarTable) Years(ctx context.Context) ([]CalendarYear, error) {
	if err := k.EnsureLoaded(ctx); err != nil {
		return nil, err
	}
	out := make([]CalendarYear, len(k.rec.years))
	for i, y := range k.rec.years {
		out[i] = CalendarYear{Year: y.Year, Events: append([]bitfield.CalendarEvent(nil), y.Events...)}
	}
	return out, nil
}

// Events lists the defined events of type t in year block i.
func (k *CalendarTable) Events(ctx context.Context, i int, t bitfield.CalendarType) ([]bitfield.CalendarEvent, error) {
	y, err := k.year(ctx, i)
	if err != nil {
		return nil, err
	}
	var out []bitfield.CalendarEvent
	for _, e := range y.Events {
		if e.Defined() && e.Type() == t {
			out = append(out, e)
		}
	}
	return out, nil
}

func (k *CalendarTable) SetYear(ctx context.Context, i int, year uint8) error {
	y, err := k.year(ctx, i)
	if err != nil {
		return err
	}
	y.Year = year
	k.MarkDirty()
	return nil
}

// SetEvent writes event slot j of year block i. Out-of-domain input is an
// ErrInvalidFieldValue and the slot keeps its old word.
func (k *CalendarTable) SetEvent(ctx context.Context, i, j int, t bitfield.CalendarType, month, day uint8) error {
	y, err := k.year(ctx, i)
	if err != nil {
		return err
	}
	if j < 0 || j >= len(y.Events) {
		return fmt.Errorf("%w: event slot %d of %d", table.ErrInvalidFieldValue, j, len(y.Events))
	}
	var e bitfield.CalendarEvent
	if err := e.StrictSetType(t); err != nil {
		return err
	}
	if err := e.StrictSetMonth(month); err != nil {
		return err
	}
	if err := e.StrictSetDay(day); err != nil {
		return err
	}
	y.Events[j] = e
	k.MarkDirty()
	return nil
}

// ClearEvent marks event slot j of year block i as undefined.
func (k *CalendarTable) ClearEvent(ctx context.Context, i, j int) error {
	y, err := k.year(ctx, i)
	if err != nil {
		return err
	}
	if j < 0 || j >= len(y.Events) {
		return fmt.Errorf("%w: event slot %d of %d", table.ErrInvalidFieldValue, j, len(y.Events))
	}
	y.Events[j].Undefine()
	k.MarkDirty()
	return nil
}

func (k *CalendarTable) year(ctx context.Context, i int) (*CalendarYear, error) {
	if err := k.EnsureLoaded(ctx); err != nil {
		return nil, err
	}
	if i < 0 || i >= len(k.rec.years) {
		return nil, fmt.Errorf("%w: year block %d of %d", table.ErrInvalidFieldValue, i, len(k.rec.years))
	}
	return &k.rec.years[i], nil
}
