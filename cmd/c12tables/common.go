// cmd/c12tables/common.go
package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/tamzrod/c12tables/internal/config"
	"github.com/tamzrod/c12tables/internal/logging"
	"github.com/tamzrod/c12tables/internal/poller"
	"github.com/tamzrod/c12tables/internal/session"
)

type rootOptions struct {
	configPath string
}

// loadConfig runs the load, validate, normalize sequence.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("config load failed: %w", err)
	}
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	config.Normalize(cfg)
	return cfg, nil
}

func newLogger(c config.LogConfig, w io.Writer) (*logging.SlogLogger, error) {
	level, err := logging.ParseLevel(c.Level)
	if err != nil {
		return nil, err
	}
	if c.Format == "json" {
		return logging.NewJSON(w, level), nil
	}
	return logging.NewText(w, level), nil
}

// openSession loads the config and opens a session over its transport.
func openSession(opts *rootOptions) (*config.Config, *session.Session, func() error, error) {
	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return nil, nil, nil, err
	}
	log, err := newLogger(cfg.Log, os.Stderr)
	if err != nil {
		return nil, nil, nil, err
	}
	s, closeFn, err := session.Open(cfg, log.With("device", poller.DeviceID(cfg.Transport)))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("session open failed: %w", err)
	}
	return cfg, s, closeFn, nil
}

// parseTableID accepts decimal or 0x-prefixed hex.
func parseTableID(s string) (uint16, error) {
	n, err := strconv.ParseUint(s, 0, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid table id %q", s)
	}
	return uint16(n), nil
}

func defaultLogConfig() config.LogConfig {
	return config.LogConfig{Level: "warn", Format: "text"}
}
