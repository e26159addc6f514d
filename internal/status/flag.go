// internal/status/flag.go
package status

import "fmt"

// Flag is one decoded end-device condition. Mode flags describe how the
// device is running; the rest are error or warning conditions.
type Flag uint8

const (
	FlagNone Flag = iota

	// ED_MODE
	Metering
	TestMode
	MeterShopMode

	// ED_STD_STATUS1
	Unprogrammed
	ConfigurationError
	SelfCheckError
	RAMFailure
	ROMFailure
	NonvolatileMemoryFailure
	ClockError
	MeasurementError
	LowBattery
	LowLossPotential
	DemandOverload
	PowerFailure
	TamperDetect
	ReverseRotation

	// ED_MFG_STATUS, placed by a MfgLayout
	LossOfPhaseA
	LossOfPhaseB
	LossOfPhaseC
	PhaseSequenceError
	ReversePowerFlow
	HighTemperature
	MagneticTamper
	CoverOpen
	DisconnectOpen
	LoadProfileError

	flagCount
)

var flagNames = [flagCount]string{
	FlagNone:                 "none",
	Metering:                 "metering",
	TestMode:                 "test-mode",
	MeterShopMode:            "meter-shop-mode",
	Unprogrammed:             "unprogrammed",
	ConfigurationError:       "configuration-error",
	SelfCheckError:           "self-check-error",
	RAMFailure:               "ram-failure",
	ROMFailure:               "rom-failure",
	NonvolatileMemoryFailure: "nonvol-memory-failure",
	ClockError:               "clock-error",
	MeasurementError:         "measurement-error",
	LowBattery:               "low-battery",
	LowLossPotential:         "low-loss-potential",
	DemandOverload:           "demand-overload",
	PowerFailure:             "power-failure",
	TamperDetect:             "tamper-detect",
	ReverseRotation:          "reverse-rotation",
	LossOfPhaseA:             "loss-of-phase-a",
	LossOfPhaseB:             "loss-of-phase-b",
	LossOfPhaseC:             "loss-of-phase-c",
	PhaseSequenceError:       "phase-sequence-error",
	ReversePowerFlow:         "reverse-power-flow",
	HighTemperature:          "high-temperature",
	MagneticTamper:           "magnetic-tamper",
	CoverOpen:                "cover-open",
	DisconnectOpen:           "disconnect-open",
	LoadProfileError:         "load-profile-error",
}

// String is the stable machine name of the flag.
func (f Flag) String() string {
	if f < flagCount {
		return flagNames[f]
	}
	return fmt.Sprintf("Flag(%d)", uint8(f))
}

// IsMode reports whether f is an ED_MODE flag rather than a condition.
func (f Flag) IsMode() bool { return f >= Metering && f <= MeterShopMode }

// Descriptions maps flags to human-readable text. Callers may swap in a
// localized table; Describe falls back to the machine name.
type Descriptions map[Flag]string

func (d Descriptions) Describe(f Flag) string {
	if s, ok := d[f]; ok {
		return s
	}
	return f.String()
}

// English is the default description table.
var English = Descriptions{
	Metering:                 "Device is metering",
	TestMode:                 "Device is in test mode",
	MeterShopMode:            "Device is in meter shop mode",
	Unprogrammed:             "Device is unprogrammed",
	ConfigurationError:       "Configuration error",
	SelfCheckError:           "Self check error",
	RAMFailure:               "RAM failure",
	ROMFailure:               "ROM failure",
	NonvolatileMemoryFailure: "Non-volatile memory failure",
	ClockError:               "Clock error",
	MeasurementError:         "Measurement error",
	LowBattery:               "Low battery",
	LowLossPotential:         "Low loss potential",
	DemandOverload:           "Demand overload",
	PowerFailure:             "Power failure",
	TamperDetect:             "Tamper detected",
	ReverseRotation:          "Reverse rotation",
	LossOfPhaseA:             "Loss of phase A",
	LossOfPhaseB:             "Loss of phase B",
	LossOfPhaseC:             "Loss of phase C",
	PhaseSequenceError:       "Phase sequence error",
	ReversePowerFlow:         "Reverse power flow",
	HighTemperature:          "High internal temperature",
	MagneticTamper:           "Magnetic tamper",
	CoverOpen:                "Cover open",
	DisconnectOpen:           "Service disconnect open",
	LoadProfileError:         "Load profile error",
}
