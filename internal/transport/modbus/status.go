// internal/transport/modbus/status.go
package modbus

import (
	"fmt"

	"github.com/tamzrod/c12tables/internal/table"
)

// PSEM response codes relayed in the gateway status register.
const (
	StatusOK  uint8 = 0x00
	StatusERR uint8 = 0x01 // rejected, no reason given
	StatusSNS uint8 = 0x02 // service not supported
	StatusISC uint8 = 0x03 // insufficient security clearance
	StatusONP uint8 = 0x04 // operation not possible
	StatusIAR uint8 = 0x05 // inappropriate action requested
	StatusBSY uint8 = 0x06 // device busy
	StatusDNR uint8 = 0x07 // data not ready
	StatusDLK uint8 = 0x08 // data locked
	StatusRNO uint8 = 0x09 // renegotiate request
	StatusISS uint8 = 0x0A // invalid service sequence state
)

var statusNames = map[uint8]string{
	StatusOK:  "ok",
	StatusERR: "err",
	StatusSNS: "sns",
	StatusISC: "isc",
	StatusONP: "onp",
	StatusIAR: "iar",
	StatusBSY: "bsy",
	StatusDNR: "dnr",
	StatusDLK: "dlk",
	StatusRNO: "rno",
	StatusISS: "isss",
}

// StatusError is a non-zero gateway status. It unwraps to
// table.ErrCommunication.
type StatusError struct {
	Status uint8
	Table  uint16
}

func (e *StatusError) Error() string {
	name, ok := statusNames[e.Status]
	if !ok {
		name = "unknown"
	}
	return fmt.Sprintf("gateway status 0x%02x (%s) on table %d", e.Status, name, e.Table)
}

func (e *StatusError) Unwrap() error { return table.ErrCommunication }

// ModbusCode exposes the raw status for error-code probes.
func (e *StatusError) ModbusCode() uint16 { return uint16(e.Status) }
