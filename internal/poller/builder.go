// internal/poller/builder.go
package poller

import (
	"fmt"
	"time"

	cfg "github.com/tamzrod/c12tables/internal/config"
)

// Build constructs a Poller over r from a validated, normalized config.
// No retries, no loops, no semantics.
func Build(c *cfg.Config, r Reader) (*Poller, error) {
	return New(
		Config{
			DeviceID: DeviceID(c.Transport),
			Interval: time.Duration(c.Poll.IntervalMs) * time.Millisecond,
			Tables:   c.Poll.Tables,
		},
		r,
	)
}

// DeviceID names the polled device after its transport.
func DeviceID(t cfg.TransportConfig) string {
	switch t.Kind {
	case cfg.TransportModbus:
		return fmt.Sprintf("%s/%d", t.Modbus.Endpoint, t.Modbus.UnitID)
	case cfg.TransportReplay:
		return "replay/" + t.Replay.Capture
	}
	return t.Kind
}
