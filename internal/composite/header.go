// internal/composite/header.go
package composite

import (
	"fmt"

	"github.com/tamzrod/c12tables/internal/cursor"
)

// ConfigID is the manufacturer configuration table holding the subsystems.
const ConfigID = 2048

// HeaderSize is size(2) + version(2) + date(4) + fw version(1) +
// revision(1) + 34 offsets of 2 bytes.
const HeaderSize = 10 + 2*SubsystemCount

// Subsystem names one offset slot of the header, in wire order.
type Subsystem int

const (
	Constants Subsystem = iota
	BillingSchedule
	Calendar
	TOU
	Demand
	LoadProfile
	Display
	IOControl
	Security
	HistoryLog
	EventLog
	Modem
	Energy
	SelfRead
	PowerQuality
	SiteScan
	VoltageMonitor
	InstrumentationProfile
	Coefficients
	Transformer
	Quantities
	Registers
	Recording
	Options
	Communications
	Alarms
	Relay
	PulseWeights
	Disconnect
	Firmware
	Calibration
	Network
	Reserved1
	Reserved2

	SubsystemCount = iota
)

var subsystemNames = [SubsystemCount]string{
	"constants", "billing-schedule", "calendar", "tou", "demand",
	"load-profile", "display", "io-control", "security", "history-log",
	"event-log", "modem", "energy", "self-read", "power-quality",
	"site-scan", "voltage-monitor", "instrumentation-profile", "coefficients", "transformer",
	"quantities", "registers", "recording", "options", "communications",
	"alarms", "relay", "pulse-weights", "disconnect", "firmware",
	"calibration", "network", "reserved-1", "reserved-2",
}

func (s Subsystem) String() string {
	if s >= 0 && s < SubsystemCount {
		return subsystemNames[s]
	}
	return fmt.Sprintf("Subsystem(%d)", int(s))
}

// ParseSubsystem maps a name from String back to its Subsystem.
func ParseSubsystem(name string) (Subsystem, bool) {
	for i, n := range subsystemNames {
		if n == name {
			return Subsystem(i), true
		}
	}
	return 0, false
}

// OffsetHeader opens table 2048 and locates every subsystem block.
// An offset of 0 means the subsystem is not configured.
type OffsetHeader struct {
	Size      uint16
	Version   uint16
	Date      uint32
	FWVersion uint8
	Revision  uint8
	Offsets   [SubsystemCount]uint16
}

func (h *OffsetHeader) Offset(s Subsystem) uint16 {
	if s < 0 || s >= SubsystemCount {
		return 0
	}
	return h.Offsets[s]
}

func (h *OffsetHeader) Present(s Subsystem) bool { return h.Offset(s) != 0 }

func (h *OffsetHeader) Decode(c *cursor.Cursor) error {
	var err error
	if h.Size, err = c.ReadUint16(); err != nil {
		return err
	}
	if h.Version, err = c.ReadUint16(); err != nil {
		return err
	}
	if h.Date, err = c.ReadUint32(); err != nil {
		return err
	}
	if h.FWVersion, err = c.ReadUint8(); err != nil {
		return err
	}
	if h.Revision, err = c.ReadUint8(); err != nil {
		return err
	}
	for i := range h.Offsets {
		if h.Offsets[i], err = c.ReadUint16(); err != nil {
			return err
		}
	}
	return nil
}

func (h *OffsetHeader) Encode(c *cursor.Cursor) error {
	if err := c.WriteUint16(h.Size); err != nil {
		return err
	}
	if err := c.WriteUint16(h.Version); err != nil {
		return err
	}
	if err := c.WriteUint32(h.Date); err != nil {
		return err
	}
	if err := c.WriteUint8(h.FWVersion); err != nil {
		return err
	}
	if err := c.WriteUint8(h.Revision); err != nil {
		return err
	}
	for _, off := range h.Offsets {
		if err := c.WriteUint16(off); err != nil {
			return err
		}
	}
	return nil
}
