// internal/procedure/procedure.go
package procedure

import (
	"fmt"

	"github.com/tamzrod/c12tables/internal/bitfield"
)

// Tables carrying the procedure envelopes.
const (
	RequestTableID  = 7
	ResponseTableID = 8

	// MinResponseSize is TBL_PROC_NBR(2) + SEQ_NBR(1) + RESULT_CODE(1).
	MinResponseSize = 4
)

// Standard procedure numbers. Manufacturer procedures are biased by 2048.
const (
	ColdStart           uint16 = 0
	WarmStart           uint16 = 1
	SaveConfiguration   uint16 = 2
	ClearData           uint16 = 3
	ResetListPointers   uint16 = 4
	UpdateLastReadEntry uint16 = 5
	ChangeEndDeviceMode uint16 = 6
	ClearStdStatusFlags uint16 = 7
	ClearMfgStatusFlags uint16 = 8
	RemoteReset         uint16 = 9
	SetDateTime         uint16 = 10

	// Unknown stands in for a procedure id the response did not carry.
	Unknown uint16 = 0xFFFF
)

var standardNames = map[uint16]string{
	ColdStart:           "cold-start",
	WarmStart:           "warm-start",
	SaveConfiguration:   "save-configuration",
	ClearData:           "clear-data",
	ResetListPointers:   "reset-list-pointers",
	UpdateLastReadEntry: "update-last-read-entry",
	ChangeEndDeviceMode: "change-end-device-mode",
	ClearStdStatusFlags: "clear-std-status-flags",
	ClearMfgStatusFlags: "clear-mfg-status-flags",
	RemoteReset:         "remote-reset",
	SetDateTime:         "set-date-time",
}

// Name returns the standard name of procedure id, or a numeric label.
func Name(id uint16) string {
	if n, ok := standardNames[id]; ok {
		return n
	}
	if id == Unknown {
		return "unknown"
	}
	if id >= bitfield.Bias {
		return fmt.Sprintf("mfg-%d", id-bitfield.Bias)
	}
	return fmt.Sprintf("std-%d", id)
}

// Lookup maps a standard name back to its number.
func Lookup(name string) (uint16, bool) {
	for id, n := range standardNames {
		if n == name {
			return id, true
		}
	}
	return 0, false
}

// Selector is the response selector carried in bits 12-15 of TBL_PROC_NBR.
type Selector uint8

const (
	PostOnCompletion Selector = 0
	PostOnException  Selector = 1
	NoResponse       Selector = 2
	PostImmediately  Selector = 3
)

// Result is RESULT_CODE.
type Result uint8

const (
	Completed        Result = 0
	NotCompleted     Result = 1
	InvalidParameter Result = 2
	Conflict         Result = 3
	TimingConstraint Result = 4
	NoAuthorization  Result = 5
	Unrecognized     Result = 6

	// ResultUnknown stands in for a result the response did not carry.
	ResultUnknown Result = 0xFF
)

func (r Result) String() string {
	switch r {
	case Completed:
		return "completed"
	case NotCompleted:
		return "not-completed"
	case InvalidParameter:
		return "invalid-parameter"
	case Conflict:
		return "conflict"
	case TimingConstraint:
		return "timing-constraint"
	case NoAuthorization:
		return "no-authorization"
	case Unrecognized:
		return "unrecognized"
	case ResultUnknown:
		return "unknown"
	}
	return fmt.Sprintf("Result(%d)", uint8(r))
}
