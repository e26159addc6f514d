// internal/cursor/time.go
package cursor

import (
	"errors"
	"fmt"
	"time"
)

// TimeFormat is the C12.19 TM_FORMAT in force for a session.
type TimeFormat uint8

const (
	TimeNone        TimeFormat = 0 // no clock, time fields are absent
	TimeBCD         TimeFormat = 1 // one BCD byte per field
	TimeUint8       TimeFormat = 2 // one binary byte per field
	TimeUint32Min   TimeFormat = 3 // minutes since 1970-01-01 (+ a seconds byte where needed)
	TimeUint32Sec   TimeFormat = 4 // seconds since 1970-01-01
	maxTimeFormat              = TimeUint32Sec
	secondsPerDay              = 24 * 60 * 60
	centuryPivotYear           = 70
)

var ErrTimeFormat = errors.New("cursor: unsupported time format")

func (f TimeFormat) Valid() bool { return f <= maxTimeFormat }

func (f TimeFormat) String() string {
	switch f {
	case TimeNone:
		return "none"
	case TimeBCD:
		return "bcd"
	case TimeUint8:
		return "uint8"
	case TimeUint32Min:
		return "uint32-minutes"
	case TimeUint32Sec:
		return "uint32-seconds"
	default:
		return fmt.Sprintf("TimeFormat(%d)", uint8(f))
	}
}

// ParseTimeFormat accepts the names String returns.
func ParseTimeFormat(s string) (TimeFormat, error) {
	for f := TimeNone; f <= maxTimeFormat; f++ {
		if s == f.String() {
			return f, nil
		}
	}
	return TimeNone, fmt.Errorf("%w: %q", ErrTimeFormat, s)
}

// STimeSize is the width of an STIME_DATE (date, hour, minute).
func (f TimeFormat) STimeSize() int {
	switch f {
	case TimeBCD, TimeUint8:
		return 5
	case TimeUint32Min, TimeUint32Sec:
		return 4
	default:
		return 0
	}
}

// LTimeSize is the width of an LTIME_DATE (date, hour, minute, second).
func (f TimeFormat) LTimeSize() int {
	switch f {
	case TimeBCD, TimeUint8:
		return 6
	case TimeUint32Min:
		return 5
	case TimeUint32Sec:
		return 4
	default:
		return 0
	}
}

// TimeSize is the width of a time-of-day field.
func (f TimeFormat) TimeSize() int {
	switch f {
	case TimeBCD, TimeUint8:
		return 3
	case TimeUint32Min, TimeUint32Sec:
		return 4
	default:
		return 0
	}
}

// ReadSTime decodes an STIME_DATE. Seconds are always zero.
func (c *Cursor) ReadSTime(f TimeFormat) (time.Time, error) {
	switch f {
	case TimeNone:
		return time.Time{}, nil
	case TimeBCD, TimeUint8:
		v, err := c.readFields(f, 5)
		if err != nil {
			return time.Time{}, err
		}
		return fieldsToTime(v[0], v[1], v[2], v[3], v[4], 0), nil
	case TimeUint32Min:
		m, err := c.ReadUint32()
		if err != nil {
			return time.Time{}, err
		}
		return time.Unix(int64(m)*60, 0).UTC(), nil
	case TimeUint32Sec:
		s, err := c.ReadUint32()
		if err != nil {
			return time.Time{}, err
		}
		return time.Unix(int64(s), 0).UTC().Truncate(time.Minute), nil
	}
	return time.Time{}, fmt.Errorf("%w: %d", ErrTimeFormat, f)
}

// ReadLTime decodes an LTIME_DATE.
func (c *Cursor) ReadLTime(f TimeFormat) (time.Time, error) {
	switch f {
	case TimeNone:
		return time.Time{}, nil
	case TimeBCD, TimeUint8:
		v, err := c.readFields(f, 6)
		if err != nil {
			return time.Time{}, err
		}
		return fieldsToTime(v[0], v[1], v[2], v[3], v[4], v[5]), nil
	case TimeUint32Min:
		m, err := c.ReadUint32()
		if err != nil {
			return time.Time{}, err
		}
		s, err := c.ReadUint8()
		if err != nil {
			return time.Time{}, err
		}
		return time.Unix(int64(m)*60+int64(s), 0).UTC(), nil
	case TimeUint32Sec:
		s, err := c.ReadUint32()
		if err != nil {
			return time.Time{}, err
		}
		return time.Unix(int64(s), 0).UTC(), nil
	}
	return time.Time{}, fmt.Errorf("%w: %d", ErrTimeFormat, f)
}

// ReadTime decodes a time of day as an offset from midnight.
func (c *Cursor) ReadTime(f TimeFormat) (time.Duration, error) {
	switch f {
	case TimeNone:
		return 0, nil
	case TimeBCD, TimeUint8:
		v, err := c.readFields(f, 3)
		if err != nil {
			return 0, err
		}
		return time.Duration(v[0])*time.Hour + time.Duration(v[1])*time.Minute + time.Duration(v[2])*time.Second, nil
	case TimeUint32Min, TimeUint32Sec:
		s, err := c.ReadUint32()
		if err != nil {
			return 0, err
		}
		return time.Duration(s%secondsPerDay) * time.Second, nil
	}
	return 0, fmt.Errorf("%w: %d", ErrTimeFormat, f)
}

func (c *Cursor) WriteSTime(f TimeFormat, t time.Time) error {
	t = t.UTC()
	switch f {
	case TimeNone:
		return nil
	case TimeBCD, TimeUint8:
		return c.writeFields(f, yearByte(t), int(t.Month()), t.Day(), t.Hour(), t.Minute())
	case TimeUint32Min:
		return c.WriteUint32(uint32(t.Unix() / 60))
	case TimeUint32Sec:
		return c.WriteUint32(uint32(t.Truncate(time.Minute).Unix()))
	}
	return fmt.Errorf("%w: %d", ErrTimeFormat, f)
}

func (c *Cursor) WriteLTime(f TimeFormat, t time.Time) error {
	t = t.UTC()
	switch f {
	case TimeNone:
		return nil
	case TimeBCD, TimeUint8:
		return c.writeFields(f, yearByte(t), int(t.Month()), t.Day(), t.Hour(), t.Minute(), t.Second())
	case TimeUint32Min:
		if err := c.WriteUint32(uint32(t.Unix() / 60)); err != nil {
			return err
		}
		return c.WriteUint8(uint8(t.Second()))
	case TimeUint32Sec:
		return c.WriteUint32(uint32(t.Unix()))
	}
	return fmt.Errorf("%w: %d", ErrTimeFormat, f)
}

func (c *Cursor) WriteTime(f TimeFormat, d time.Duration) error {
	secs := int(d/time.Second) % secondsPerDay
	switch f {
	case TimeNone:
		return nil
	case TimeBCD, TimeUint8:
		return c.writeFields(f, secs/3600, secs/60%60, secs%60)
	case TimeUint32Min, TimeUint32Sec:
		return c.WriteUint32(uint32(secs))
	}
	return fmt.Errorf("%w: %d", ErrTimeFormat, f)
}

// readFields reads n one-byte fields, BCD or binary depending on f.
func (c *Cursor) readFields(f TimeFormat, n int) ([]int, error) {
	out := make([]int, n)
	for i := range out {
		if f == TimeBCD {
			v, err := c.ReadBCD(1)
			if err != nil {
				return nil, err
			}
			out[i] = int(v)
			continue
		}
		v, err := c.ReadUint8()
		if err != nil {
			return nil, err
		}
		out[i] = int(v)
	}
	return out, nil
}

func (c *Cursor) writeFields(f TimeFormat, fields ...int) error {
	for _, v := range fields {
		var err error
		if f == TimeBCD {
			err = c.WriteBCD(uint64(v), 1)
		} else {
			err = c.WriteUint8(uint8(v))
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func yearByte(t time.Time) int { return t.Year() % 100 }

func fieldsToTime(yy, mo, dd, hh, mi, ss int) time.Time {
	year := 1900 + yy
	if yy < centuryPivotYear {
		year = 2000 + yy
	}
	return time.Date(year, time.Month(mo), dd, hh, mi, ss, 0, time.UTC)
}
