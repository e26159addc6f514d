// internal/stdtable/format.go
package stdtable

import (
	"encoding/binary"
	"fmt"

	"github.com/tamzrod/c12tables/internal/cursor"
	"github.com/tamzrod/c12tables/internal/table"
)

// Character formats (CHAR_FORMAT).
const (
	CharISO7        = 1
	CharISO8859     = 2
	CharUTF8        = 3
	CharUTF16       = 4
	CharBigEndianU2 = 5
)

// Data access methods (DATA_ACCESS_METHOD).
const (
	AccessComplete  = 0
	AccessOffset    = 1
	AccessIndex     = 2
	AccessBothModes = 3
)

// FormatControl is the three format-control bytes that open table 0.
type FormatControl struct {
	BigEndian   bool  // DATA_ORDER
	CharFormat  uint8 // CHAR_FORMAT
	ModelSelect uint8 // MODEL_SELECT

	TimeFormat cursor.TimeFormat // TM_FORMAT
	DataAccess uint8             // DATA_ACCESS_METHOD
	BCDIDs     bool              // ID_FORM
	IntFormat  uint8             // INT_FORMAT

	NIFormat1 uint8
	NIFormat2 uint8
}

// ByteOrder is the order every multi-byte field of the device uses.
func (f FormatControl) ByteOrder() binary.ByteOrder {
	if f.BigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

func (f *FormatControl) decode(c *cursor.Cursor) error {
	b, err := c.ReadBytes(3)
	if err != nil {
		return err
	}
	f.BigEndian = b[0]&0x01 != 0
	f.CharFormat = (b[0] >> 1) & 0x07
	f.ModelSelect = b[0] >> 4

	f.TimeFormat = cursor.TimeFormat(b[1] & 0x07)
	if !f.TimeFormat.Valid() {
		return fmt.Errorf("%w: TM_FORMAT %d", table.ErrInvalidFieldValue, uint8(f.TimeFormat))
	}
	f.DataAccess = (b[1] >> 3) & 0x03
	f.BCDIDs = b[1]&0x20 != 0
	f.IntFormat = b[1] >> 6

	f.NIFormat1 = b[2] & 0x0F
	f.NIFormat2 = b[2] >> 4
	return nil
}

func (f FormatControl) encode(c *cursor.Cursor) error {
	var b [3]byte
	if f.BigEndian {
		b[0] |= 0x01
	}
	b[0] |= (f.CharFormat & 0x07) << 1
	b[0] |= f.ModelSelect << 4

	b[1] = uint8(f.TimeFormat) & 0x07
	b[1] |= (f.DataAccess & 0x03) << 3
	if f.BCDIDs {
		b[1] |= 0x20
	}
	b[1] |= f.IntFormat << 6

	b[2] = f.NIFormat1&0x0F | f.NIFormat2<<4
	return c.WriteBytes(b[:], 3)
}
