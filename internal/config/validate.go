// internal/config/validate.go
package config

import (
	"fmt"

	"github.com/tamzrod/c12tables/internal/composite"
	"github.com/tamzrod/c12tables/internal/cursor"
	"github.com/tamzrod/c12tables/internal/logging"
)

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	// ------------------------------------------------------------
	// SESSION
	// ------------------------------------------------------------

	if f := cfg.Session.TimeFormat; f != "" && f != "auto" {
		if _, err := cursor.ParseTimeFormat(f); err != nil {
			return fmt.Errorf("session: time_format: %v", err)
		}
	}
	if _, _, err := composite.LayoutByName(cfg.Session.Layout); err != nil {
		return fmt.Errorf("session: layout: %v", err)
	}
	if cfg.Session.TimeoutMs < 0 {
		return fmt.Errorf("session: timeout_ms must be >= 0")
	}
	for id, ms := range cfg.Session.TableTimeoutsMs {
		if ms < 0 {
			return fmt.Errorf("session: table %d: timeout must be >= 0", id)
		}
	}

	// ------------------------------------------------------------
	// TRANSPORT
	// ------------------------------------------------------------

	switch cfg.Transport.Kind {
	case TransportModbus:
		m := cfg.Transport.Modbus
		if m.Endpoint == "" {
			return fmt.Errorf("transport: modbus endpoint required")
		}
		if m.TimeoutMs < 0 {
			return fmt.Errorf("transport: modbus timeout_ms must be >= 0")
		}
		if m.RequestAddr != 0 || m.ResponseAddr != 0 {
			if m.RequestAddr == m.ResponseAddr {
				return fmt.Errorf("transport: modbus request_addr and response_addr overlap at %d", m.RequestAddr)
			}
		}
	case TransportReplay:
		r := cfg.Transport.Replay
		if r.Path == "" && !r.InMemory {
			return fmt.Errorf("transport: replay path required")
		}
		if r.Capture == "" {
			return fmt.Errorf("transport: replay capture required")
		}
	case "":
		return fmt.Errorf("transport: kind required")
	default:
		return fmt.Errorf("transport: unknown kind %q", cfg.Transport.Kind)
	}

	// ------------------------------------------------------------
	// POLL / RECORD
	// ------------------------------------------------------------

	if cfg.Poll.IntervalMs < 0 {
		return fmt.Errorf("poll: interval_ms must be >= 0")
	}
	seen := make(map[uint16]bool, len(cfg.Poll.Tables))
	for _, id := range cfg.Poll.Tables {
		if seen[id] {
			return fmt.Errorf("poll: table %d listed twice", id)
		}
		seen[id] = true
	}

	if cfg.Record.Enabled {
		if len(cfg.Poll.Tables) == 0 {
			return fmt.Errorf("record: enabled but poll lists no tables")
		}
		if cfg.Record.Path == "" {
			return fmt.Errorf("record: path required")
		}
		if cfg.Transport.Kind == TransportReplay && cfg.Record.Path == cfg.Transport.Replay.Path {
			return fmt.Errorf("record: path %q is the replay source", cfg.Record.Path)
		}
	}

	// ------------------------------------------------------------
	// LOG
	// ------------------------------------------------------------

	if _, err := logging.ParseLevel(cfg.Log.Level); err != nil {
		return fmt.Errorf("log: %v", err)
	}
	switch cfg.Log.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("log: unknown format %q", cfg.Log.Format)
	}

	return nil
}
