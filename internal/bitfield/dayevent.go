// internal/bitfield/dayevent.go
package bitfield

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/tamzrod/c12tables/internal/table"
)

// DayEvent word layout.
const (
	dayTypeMask    uint16 = 0x000F
	dayMinuteShift        = 4
	dayMinuteMask  uint16 = 0x03F0
	dayHourShift          = 10
	dayHourMask    uint16 = 0x7C00
)

// DayEventType selects the rate or output a switchpoint activates.
type DayEventType uint8

const (
	Rate1 DayEventType = iota
	Rate2
	Rate3
	Rate4
	Rate5
	Rate6
	Rate7
	Output1
	Output2
	Output3
	Output4

	MaxDayEventType = Output4

	// NoMoreChanges terminates a day's switchpoint list.
	NoMoreChanges DayEventType = 0xF
)

func (t DayEventType) String() string {
	switch {
	case t <= Rate7:
		return fmt.Sprintf("rate-%d", t-Rate1+1)
	case t <= Output4:
		return fmt.Sprintf("output-%d", t-Output1+1)
	case t == NoMoreChanges:
		return "end"
	default:
		return fmt.Sprintf("DayEventType(%d)", uint8(t))
	}
}

func validDayType(t DayEventType) bool { return t <= MaxDayEventType || t == NoMoreChanges }

// DayEvent is a packed switchpoint: type in bits 0-3, minute in bits 4-9,
// hour in bits 10-14.
type DayEvent uint16

// Terminator is the canonical end-of-day word.
const Terminator = DayEvent(uint16(NoMoreChanges))

// NewDayEvent packs a switchpoint, or reports false when a field is out of
// its domain.
func NewDayEvent(t DayEventType, hour, minute uint8) (DayEvent, bool) {
	if !validDayType(t) || hour >= 24 || minute >= 60 {
		return 0, false
	}
	var e DayEvent
	e.pack(t, hour, minute)
	return e, true
}

func (e DayEvent) Type() DayEventType { return DayEventType(uint16(e) & dayTypeMask) }
func (e DayEvent) Minute() uint8      { return uint8((uint16(e) & dayMinuteMask) >> dayMinuteShift) }
func (e DayEvent) Hour() uint8        { return uint8((uint16(e) & dayHourMask) >> dayHourShift) }
func (e DayEvent) IsTerminator() bool { return e.Type() == NoMoreChanges }

// MinuteOfDay is hour*60+minute.
func (e DayEvent) MinuteOfDay() int { return int(e.Hour())*60 + int(e.Minute()) }

// Valid reports whether every field of e is in its domain.
func (e DayEvent) Valid() bool {
	return validDayType(e.Type()) && e.Hour() < 24 && e.Minute() < 60
}

func (e DayEvent) String() string {
	if e.IsTerminator() {
		return "end"
	}
	return fmt.Sprintf("%02d:%02d %s", e.Hour(), e.Minute(), e.Type())
}

// Tolerant setters: an out-of-domain value leaves the word unchanged.
func (e *DayEvent) SetType(t DayEventType) bool {
	if !validDayType(t) {
		return false
	}
	e.pack(t, e.Hour(), e.Minute())
	return true
}

func (e *DayEvent) SetHour(hour uint8) bool {
	if hour >= 24 {
		return false
	}
	e.pack(e.Type(), hour, e.Minute())
	return true
}

func (e *DayEvent) SetMinute(minute uint8) bool {
	if minute >= 60 {
		return false
	}
	e.pack(e.Type(), e.Hour(), minute)
	return true
}

func (e *DayEvent) StrictSetType(t DayEventType) error {
	if !e.SetType(t) {
		return fmt.Errorf("%w: day event type %d", table.ErrInvalidFieldValue, t)
	}
	return nil
}

func (e *DayEvent) StrictSetHour(hour uint8) error {
	if !e.SetHour(hour) {
		return fmt.Errorf("%w: day event hour %d", table.ErrInvalidFieldValue, hour)
	}
	return nil
}

func (e *DayEvent) StrictSetMinute(minute uint8) error {
	if !e.SetMinute(minute) {
		return fmt.Errorf("%w: day event minute %d", table.ErrInvalidFieldValue, minute)
	}
	return nil
}

func (e *DayEvent) pack(t DayEventType, hour, minute uint8) {
	*e = DayEvent(uint16(t)&dayTypeMask |
		(uint16(minute)<<dayMinuteShift)&dayMinuteMask |
		(uint16(hour)<<dayHourShift)&dayHourMask)
}

// CompareDayEvents orders by time of day; a terminator is greater than any
// real event whatever its time bits hold.
func CompareDayEvents(a, b DayEvent) int {
	at, bt := a.IsTerminator(), b.IsTerminator()
	switch {
	case at && bt:
		return 0
	case at:
		return 1
	case bt:
		return -1
	}
	return cmp.Compare(a.MinuteOfDay(), b.MinuteOfDay())
}

// SortDayEvents puts a day's switchpoints in ascending time order, stable
// for equal times, with terminators kept at the end.
func SortDayEvents(events []DayEvent) {
	slices.SortStableFunc(events, CompareDayEvents)
}
