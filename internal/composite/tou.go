// internal/composite/tou.go
package composite

import (
	"context"
	"fmt"
	"slices"

	"github.com/tamzrod/c12tables/internal/bitfield"
	"github.com/tamzrod/c12tables/internal/cursor"
	"github.com/tamzrod/c12tables/internal/table"
)

// DayType selects which day schedule of a season applies.
type DayType uint8

const (
	Weekday DayType = iota
	Saturday
	Sunday
	Holiday
)

func (d DayType) String() string {
	switch d {
	case Weekday:
		return "weekday"
	case Saturday:
		return "saturday"
	case Sunday:
		return "sunday"
	case Holiday:
		return "holiday"
	}
	return fmt.Sprintf("DayType(%d)", uint8(d))
}

type touRecord struct {
	dayTypes int
	days     [][]bitfield.DayEvent // season*dayTypes + dayType
}

// Decode puts every day in time order as it reads it.
func (r *touRecord) Decode(c *cursor.Cursor) error {
	for _, day := range r.days {
		for j := range day {
			w, err := c.ReadUint16()
			if err != nil {
				return err
			}
			day[j] = bitfield.DayEvent(w)
		}
		bitfield.SortDayEvents(day)
	}
	return nil
}

func (r *touRecord) Encode(c *cursor.Cursor) error {
	for _, day := range r.days {
		for _, e := range day {
			if err := c.WriteUint16(uint16(e)); err != nil {
				return err
			}
		}
	}
	return nil
}

// TOUTable is the time-of-use block: seasons x day types x switchpoints.
type TOUTable struct {
	*table.Table
	rec touRecord
}

func newTOUTable(tr table.Transport, l Layout, opts []table.Option) *TOUTable {
	k := &TOUTable{rec: touRecord{dayTypes: l.TOUDayTypes}}
	k.rec.days = make([][]bitfield.DayEvent, l.TOUSeasons*l.TOUDayTypes)
	for i := range k.rec.days {
		k.rec.days[i] = make([]bitfield.DayEvent, l.TOUEvents)
	}
	k.Table = table.New(tr, ConfigID, l.TOUSize(), &k.rec, opts...)
	return k
}

// Clear empties every day schedule without reading the device. A zero
// word is a 00:00 rate-1 switchpoint, so each day is refilled with
// terminators.
func (k *TOUTable) Clear() error {
	if err := k.Table.Clear(); err != nil {
		return err
	}
	for _, day := range k.rec.days {
		for i := range day {
			day[i] = bitfield.Terminator
		}
	}
	return nil
}

// Schedule returns the switchpoints of one day, up to its terminator.
func (k *TOUTable) Schedule(ctx context.Context, season int, dt DayType) ([]bitfield.DayEvent, error) {
	day, err := k.day(ctx, season, dt)
	if err != nil {
		return nil, err
	}
	n := slices.IndexFunc(day, bitfield.DayEvent.IsTerminator)
	if n < 0 {
		n = len(day)
	}
	return append([]bitfield.DayEvent(nil), day[:n]...), nil
}

// SetSchedule replaces one day. Events are validated, sorted and padded
// with terminators.
func (k *TOUTable) SetSchedule(ctx context.Context, season int, dt DayType, events []bitfield.DayEvent) error {
	day, err := k.day(ctx, season, dt)
	if err != nil {
		return err
	}
	if len(events) > len(day) {
		return fmt.Errorf("%w: %d switchpoints, capacity %d", table.ErrInvalidFieldValue, len(events), len(day))
	}
	for _, e := range events {
		if !e.Valid() || e.IsTerminator() {
			return fmt.Errorf("%w: switchpoint 0x%04X", table.ErrInvalidFieldValue, uint16(e))
		}
	}
	n := copy(day, events)
	for i := n; i < len(day); i++ {
		day[i] = bitfield.Terminator
	}
	bitfield.SortDayEvents(day)
	k.MarkDirty()
	return nil
}

// AddSwitchpoint inserts one switchpoint into a day in time order.
func (k *TOUTable) AddSwitchpoint(ctx context.Context, season int, dt DayType, t bitfield.DayEventType, hour, minute uint8) error {
	day, err := k.day(ctx, season, dt)
	if err != nil {
		return err
	}
	var e bitfield.DayEvent
	if err := e.StrictSetType(t); err != nil {
		return err
	}
	if err := e.StrictSetHour(hour); err != nil {
		return err
	}
	if err := e.StrictSetMinute(minute); err != nil {
		return err
	}
	if e.IsTerminator() {
		return fmt.Errorf("%w: terminator is not a switchpoint", table.ErrInvalidFieldValue)
	}
	free := slices.IndexFunc(day, bitfield.DayEvent.IsTerminator)
	if free < 0 {
		return fmt.Errorf("%w: day schedule full", table.ErrInvalidFieldValue)
	}
	day[free] = e
	bitfield.SortDayEvents(day)
	k.MarkDirty()
	return nil
}

func (k *TOUTable) day(ctx context.Context, season int, dt DayType) ([]bitfield.DayEvent, error) {
	if err := k.EnsureLoaded(ctx); err != nil {
		return nil, err
	}
	seasons := len(k.rec.days) / max(k.rec.dayTypes, 1)
	if season < 0 || season >= seasons || int(dt) >= k.rec.dayTypes {
		return nil, fmt.Errorf("%w: season %d %s outside %dx%d schedule", table.ErrInvalidFieldValue, season, dt, seasons, k.rec.dayTypes)
	}
	return k.rec.days[season*k.rec.dayTypes+int(dt)], nil
}
