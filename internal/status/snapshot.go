// internal/status/snapshot.go
package status

// Snapshot is the raw content of standard table 3.
// It contains no logic; Decode turns it into flags.
type Snapshot struct {
	Mode uint8
	Std1 uint16
	Std2 uint8
	Mfg  []byte
}

// MfgLayout places manufacturer flags on ED_MFG_STATUS bit numbers.
// The layout is device specific and supplied by the caller.
type MfgLayout map[int]Flag

// DefaultMfgLayout is a common polyphase layout.
var DefaultMfgLayout = MfgLayout{
	0: LossOfPhaseA,
	1: LossOfPhaseB,
	2: LossOfPhaseC,
	3: PhaseSequenceError,
	4: ReversePowerFlow,
	5: HighTemperature,
	6: MagneticTamper,
	7: CoverOpen,
	8: DisconnectOpen,
	9: LoadProfileError,
}
