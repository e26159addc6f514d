// internal/status/encode.go
package status

import (
	"slices"

	"github.com/tamzrod/c12tables/internal/bitfield"
)

var modeBits = []struct {
	bit  int
	flag Flag
}{
	{BitMetering, Metering},
	{BitTestMode, TestMode},
	{BitMeterShop, MeterShopMode},
}

var std1Bits = []struct {
	bit  int
	flag Flag
}{
	{BitUnprogrammed, Unprogrammed},
	{BitConfigurationError, ConfigurationError},
	{BitSelfCheckError, SelfCheckError},
	{BitRAMFailure, RAMFailure},
	{BitROMFailure, ROMFailure},
	{BitNonvolMemFailure, NonvolatileMemoryFailure},
	{BitClockError, ClockError},
	{BitMeasurementError, MeasurementError},
	{BitLowBattery, LowBattery},
	{BitLowLossPotential, LowLossPotential},
	{BitDemandOverload, DemandOverload},
	{BitPowerFailure, PowerFailure},
	{BitTamperDetect, TamperDetect},
	{BitReverseRotation, ReverseRotation},
}

// Decode lists the flags set in s: mode flags first, then standard, then
// manufacturer flags in bit order. Mfg bits absent from layout are skipped.
// No IO. No side effects.
func Decode(s Snapshot, layout MfgLayout) []Flag {
	var out []Flag
	for _, b := range modeBits {
		if s.Mode&(1<<b.bit) != 0 {
			out = append(out, b.flag)
		}
	}
	for _, b := range std1Bits {
		if s.Std1&(1<<b.bit) != 0 {
			out = append(out, b.flag)
		}
	}

	bits := make([]int, 0, len(layout))
	for bit := range layout {
		bits = append(bits, bit)
	}
	slices.Sort(bits)
	for _, bit := range bits {
		if bit < 0 || bit > 0xFFFF {
			continue
		}
		if bitfield.Contains(uint16(bit), len(s.Mfg), s.Mfg) {
			out = append(out, layout[bit])
		}
	}
	return out
}

// Encode converts flags into a table 3 image body with an mfgDim-byte
// manufacturer field. Flags the layout cannot place are ignored.
// No IO. No side effects.
func Encode(flags []Flag, mfgDim int, layout MfgLayout) Snapshot {
	s := Snapshot{Mfg: make([]byte, mfgDim)}
	for _, f := range flags {
		for _, b := range modeBits {
			if b.flag == f {
				s.Mode |= 1 << b.bit
			}
		}
		for _, b := range std1Bits {
			if b.flag == f {
				s.Std1 |= 1 << b.bit
			}
		}
		for bit, lf := range layout {
			if lf == f && bit >= 0 && bit <= 0xFFFF {
				bitfield.SetBit(uint16(bit), mfgDim, s.Mfg)
			}
		}
	}
	return s
}

// Errors filters out mode flags.
func Errors(flags []Flag) []Flag {
	var out []Flag
	for _, f := range flags {
		if !f.IsMode() {
			out = append(out, f)
		}
	}
	return out
}
