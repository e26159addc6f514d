// internal/session/builder.go
package session

import (
	"fmt"
	"time"

	"github.com/tamzrod/c12tables/internal/composite"
	cfg "github.com/tamzrod/c12tables/internal/config"
	"github.com/tamzrod/c12tables/internal/cursor"
	"github.com/tamzrod/c12tables/internal/logging"
	"github.com/tamzrod/c12tables/internal/table"
	"github.com/tamzrod/c12tables/internal/transport/modbus"
	"github.com/tamzrod/c12tables/internal/transport/replay"
)

// Open builds the configured transport and a Session over it from a
// validated, normalized config. The returned closer releases the transport.
func Open(c *cfg.Config, log logging.Logger) (*Session, func() error, error) {
	log = logging.OrNop(log)

	sc, err := sessionConfig(c.Session, log)
	if err != nil {
		return nil, nil, err
	}

	tr, closeFn, err := openTransport(c.Transport, log)
	if err != nil {
		return nil, nil, err
	}
	log.Info("session opened", "transport", c.Transport.Kind)
	return New(tr, sc), closeFn, nil
}

func sessionConfig(c cfg.SessionConfig, log logging.Logger) (Config, error) {
	sc := Config{
		Logger:  log,
		Timeout: time.Duration(c.TimeoutMs) * time.Millisecond,
	}
	if len(c.TableTimeoutsMs) > 0 {
		sc.TableTimeouts = make(map[uint16]time.Duration, len(c.TableTimeoutsMs))
		for id, ms := range c.TableTimeoutsMs {
			sc.TableTimeouts[id] = time.Duration(ms) * time.Millisecond
		}
	}
	if c.TimeFormat != "" && c.TimeFormat != "auto" {
		f, err := cursor.ParseTimeFormat(c.TimeFormat)
		if err != nil {
			return Config{}, err
		}
		sc.TimeFormat = &f
	}
	l, pinned, err := composite.LayoutByName(c.Layout)
	if err != nil {
		return Config{}, err
	}
	if pinned {
		sc.Layout = &l
	}
	return sc, nil
}

func openTransport(c cfg.TransportConfig, log logging.Logger) (table.Transport, func() error, error) {
	switch c.Kind {
	case cfg.TransportModbus:
		g, err := modbus.Dial(modbus.Config{
			Endpoint:     c.Modbus.Endpoint,
			UnitID:       c.Modbus.UnitID,
			Timeout:      time.Duration(c.Modbus.TimeoutMs) * time.Millisecond,
			RequestAddr:  c.Modbus.RequestAddr,
			ResponseAddr: c.Modbus.ResponseAddr,
			Logger:       log,
		})
		if err != nil {
			return nil, nil, err
		}
		return g, g.Close, nil

	case cfg.TransportReplay:
		var (
			store *replay.Store
			err   error
		)
		if c.Replay.InMemory {
			store, err = replay.OpenInMemory(log)
		} else {
			store, err = replay.Open(c.Replay.Path, log)
		}
		if err != nil {
			return nil, nil, fmt.Errorf("replay store: %w", err)
		}
		return replay.NewTransport(store, c.Replay.Capture, cursor.TimeNone), store.Close, nil
	}
	return nil, nil, fmt.Errorf("session: unknown transport kind %q", c.Kind)
}
