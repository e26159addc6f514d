// internal/bitfield/calendar.go
package bitfield

import (
	"fmt"

	"github.com/tamzrod/c12tables/internal/table"
)

// CalendarEvent word layout.
const (
	calTypeMask   uint16 = 0x000F
	calMonthShift        = 4
	calMonthMask  uint16 = 0x00F0
	calDayShift          = 8
	calDayMask    uint16 = 0x1F00
	calDefined    uint16 = 0xC000
)

// CalendarType is the action a calendar event takes.
type CalendarType uint8

const (
	Holiday CalendarType = iota
	DSTOn
	DSTOff
	Season1
	Season2
	Season3
	Season4
	Season5
	Season6
	Season7
	Season8

	MaxCalendarType = Season8
)

func (t CalendarType) String() string {
	switch {
	case t == Holiday:
		return "holiday"
	case t == DSTOn:
		return "dst-on"
	case t == DSTOff:
		return "dst-off"
	case t >= Season1 && t <= Season8:
		return fmt.Sprintf("season-%d", t-Season1+1)
	default:
		return fmt.Sprintf("CalendarType(%d)", uint8(t))
	}
}

// Season returns the 0-based season index of a season event.
func (t CalendarType) Season() (int, bool) {
	if t < Season1 || t > Season8 {
		return 0, false
	}
	return int(t - Season1), true
}

// CalendarEvent is a packed calendar word: type in bits 0-3, 0-based month
// in bits 4-7, 0-based day in bits 8-12, bits 14-15 set once defined.
type CalendarEvent uint16

// NewCalendarEvent packs a defined event, or reports false when any field
// is out of its domain.
func NewCalendarEvent(t CalendarType, month, day uint8) (CalendarEvent, bool) {
	var e CalendarEvent
	if !validCalendar(t, month, day) {
		return 0, false
	}
	e.pack(t, month, day)
	return e, true
}

func (e CalendarEvent) Type() CalendarType { return CalendarType(uint16(e) & calTypeMask) }
func (e CalendarEvent) Month() uint8       { return uint8((uint16(e) & calMonthMask) >> calMonthShift) }
func (e CalendarEvent) Day() uint8         { return uint8((uint16(e) & calDayMask) >> calDayShift) }
func (e CalendarEvent) Defined() bool      { return uint16(e)&calDefined == calDefined }

// Valid reports whether e is defined and every field is in its domain.
func (e CalendarEvent) Valid() bool {
	return e.Defined() && validCalendar(e.Type(), e.Month(), e.Day())
}

func (e CalendarEvent) String() string {
	if !e.Defined() {
		return "undefined"
	}
	return fmt.Sprintf("%s %02d-%02d", e.Type(), e.Month()+1, e.Day()+1)
}

// SetType, SetMonth and SetDay are the tolerant setters used when decoding
// device data: an out-of-domain value leaves the word unchanged and the
// setter returns false.
func (e *CalendarEvent) SetType(t CalendarType) bool {
	if t > MaxCalendarType {
		return false
	}
	e.pack(t, e.Month(), e.Day())
	return true
}

func (e *CalendarEvent) SetMonth(month uint8) bool {
	if month >= 12 {
		return false
	}
	e.pack(e.Type(), month, e.Day())
	return true
}

func (e *CalendarEvent) SetDay(day uint8) bool {
	if day >= 31 {
		return false
	}
	e.pack(e.Type(), e.Month(), day)
	return true
}

// StrictSetType and friends are the configuration-writer setters: same
// domain checks, but a rejected value is an ErrInvalidFieldValue.
func (e *CalendarEvent) StrictSetType(t CalendarType) error {
	if !e.SetType(t) {
		return fmt.Errorf("%w: calendar type %d", table.ErrInvalidFieldValue, t)
	}
	return nil
}

func (e *CalendarEvent) StrictSetMonth(month uint8) error {
	if !e.SetMonth(month) {
		return fmt.Errorf("%w: calendar month %d", table.ErrInvalidFieldValue, month)
	}
	return nil
}

func (e *CalendarEvent) StrictSetDay(day uint8) error {
	if !e.SetDay(day) {
		return fmt.Errorf("%w: calendar day %d", table.ErrInvalidFieldValue, day)
	}
	return nil
}

// Undefine clears the word to the unconfigured state.
func (e *CalendarEvent) Undefine() { *e = 0 }

func (e *CalendarEvent) pack(t CalendarType, month, day uint8) {
	*e = CalendarEvent(calDefined |
		uint16(t)&calTypeMask |
		(uint16(month)<<calMonthShift)&calMonthMask |
		(uint16(day)<<calDayShift)&calDayMask)
}

func validCalendar(t CalendarType, month, day uint8) bool {
	return t <= MaxCalendarType && month < 12 && day < 31
}
