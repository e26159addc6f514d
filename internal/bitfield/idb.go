// internal/bitfield/idb.go
package bitfield

import "fmt"

// TableIDB is the 16-bit table/procedure identifier used in procedure
// envelopes and pending-table entries.
//
//	bits 0-10  number
//	bit  11    manufacturer flag
//	bits 12-15 selector (procedure response selector, or pending flags)
type TableIDB uint16

const (
	idbNumberMask   uint16 = 0x07FF
	idbMfgFlag      uint16 = 0x0800
	idbSelectorMask uint16 = 0xF000
	idbSelectorShft        = 12
)

// NewTableIDB builds an identifier from a biased id (mfg ids are
// Bias+number) and a 4-bit selector.
func NewTableIDB(id uint16, selector uint8) TableIDB {
	v := id & idbNumberMask
	if id >= Bias {
		v |= idbMfgFlag
	}
	return TableIDB(v | uint16(selector&0x0F)<<idbSelectorShft)
}

func (t TableIDB) Number() uint16  { return uint16(t) & idbNumberMask }
func (t TableIDB) Mfg() bool       { return uint16(t)&idbMfgFlag != 0 }
func (t TableIDB) Selector() uint8 { return uint8((uint16(t) & idbSelectorMask) >> idbSelectorShft) }

// ID is the biased id: Number for standard, Bias+Number for manufacturer.
func (t TableIDB) ID() uint16 {
	if t.Mfg() {
		return Bias + t.Number()
	}
	return t.Number()
}

func (t TableIDB) String() string {
	if t.Mfg() {
		return fmt.Sprintf("mfg %d (sel %d)", t.Number(), t.Selector())
	}
	return fmt.Sprintf("std %d (sel %d)", t.Number(), t.Selector())
}
