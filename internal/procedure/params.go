// internal/procedure/params.go
package procedure

import (
	"encoding/binary"
	"time"

	"github.com/tamzrod/c12tables/internal/cursor"
)

// SetDateTimeParams are the parameters of procedure 10.
type SetDateTimeParams struct {
	SetTime      bool
	SetDate      bool
	SetQualifier bool
	Time         time.Time

	DST        bool
	GMT        bool
	TZApplied  bool
	DSTApplied bool
}

// Encode lays out SET_MASK, DATE_TIME (an LTIME in format f) and
// TIME_DATE_QUAL.
func (p SetDateTimeParams) Encode(f cursor.TimeFormat, order binary.ByteOrder) ([]byte, error) {
	buf := make([]byte, 2+f.LTimeSize())
	c := cursor.New(buf, order)

	var mask uint8
	if p.SetTime {
		mask |= 0x01
	}
	if p.SetDate {
		mask |= 0x02
	}
	if p.SetQualifier {
		mask |= 0x04
	}
	if err := c.WriteUint8(mask); err != nil {
		return nil, err
	}
	if err := c.WriteLTime(f, p.Time); err != nil {
		return nil, err
	}

	qual := uint8(p.Time.UTC().Weekday()) & 0x07
	for _, b := range []struct {
		on  bool
		bit uint8
	}{{p.DST, 0x08}, {p.GMT, 0x10}, {p.TZApplied, 0x20}, {p.DSTApplied, 0x40}} {
		if b.on {
			qual |= b.bit
		}
	}
	if err := c.WriteUint8(qual); err != nil {
		return nil, err
	}
	return buf, nil
}

// RemoteResetParams are the parameters of procedure 9.
type RemoteResetParams struct {
	DemandReset  bool
	SelfRead     bool
	SeasonChange bool
	NewSeason    uint8 // 0-15, used with SeasonChange
}

func (p RemoteResetParams) Encode() []byte {
	var b uint8
	if p.DemandReset {
		b |= 0x01
	}
	if p.SelfRead {
		b |= 0x02
	}
	if p.SeasonChange {
		b |= 0x04 | (p.NewSeason&0x0F)<<3
	}
	return []byte{b}
}

// ChangeModeParams are the parameters of procedure 6: the ED_MODE bits
// to enter.
func ChangeModeParams(mode uint8) []byte { return []byte{mode} }

// ResetListParams are the parameters of procedure 4.
func ResetListParams(list uint8) []byte { return []byte{list} }

// UpdateLastReadParams are the parameters of procedure 5.
func UpdateLastReadParams(list uint8, entriesRead uint16, order binary.ByteOrder) []byte {
	buf := make([]byte, 3)
	buf[0] = list
	order.PutUint16(buf[1:], entriesRead)
	return buf
}
