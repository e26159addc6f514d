// internal/config/normalize.go
package config

import (
	"github.com/tamzrod/c12tables/internal/transport/replay"
)

const (
	DefaultTimeoutMs      = 5000
	DefaultPollIntervalMs = 60000
)

// Normalize applies post-validation normalization.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	if cfg.Session.TimeFormat == "" {
		cfg.Session.TimeFormat = "auto"
	}
	if cfg.Session.Layout == "" {
		cfg.Session.Layout = "auto"
	}
	if cfg.Session.TimeoutMs == 0 {
		cfg.Session.TimeoutMs = DefaultTimeoutMs
	}

	// Modbus timeout follows the session default unless set.
	if cfg.Transport.Kind == TransportModbus && cfg.Transport.Modbus.TimeoutMs == 0 {
		cfg.Transport.Modbus.TimeoutMs = cfg.Session.TimeoutMs
	}

	if cfg.Poll.IntervalMs == 0 {
		cfg.Poll.IntervalMs = DefaultPollIntervalMs
	}

	if cfg.Record.Enabled && cfg.Record.Capture == "" {
		cfg.Record.Capture = replay.NewCaptureID()
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
