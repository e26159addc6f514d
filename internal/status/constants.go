// internal/status/constants.go
package status

// Standard table 3 layout constants.
// Bit positions are fixed by the table definition and MUST NOT be configurable.

// ---- BLOCK GEOMETRY ----

// FixedBytes is ED_MODE(1) + ED_STD_STATUS1(2) + ED_STD_STATUS2(1).
// ED_MFG_STATUS follows with a width taken from table 0.
const FixedBytes = 4

// ---- ED_MODE BITS ----

const (
	BitMetering  = 0
	BitTestMode  = 1
	BitMeterShop = 2
)

// ---- ED_STD_STATUS1 BITS ----

const (
	BitUnprogrammed       = 0
	BitConfigurationError = 1
	BitSelfCheckError     = 2
	BitRAMFailure         = 3
	BitROMFailure         = 4
	BitNonvolMemFailure   = 5
	BitClockError         = 6
	BitMeasurementError   = 7
	BitLowBattery         = 8
	BitLowLossPotential   = 9
	BitDemandOverload     = 10
	BitPowerFailure       = 11
	BitTamperDetect       = 12
	BitReverseRotation    = 13
)

// Std1Mask covers the defined ED_STD_STATUS1 bits; 14-15 are filler.
const Std1Mask uint16 = 1<<14 - 1

// ED_STD_STATUS2 carries no standard-defined bits.
const Std2Mask uint8 = 0
