// internal/poller/poller.go
package poller

import (
	"context"
	"errors"
	"time"
)

// Reader abstracts the table reads the poller needs.
// session.Session satisfies it.
type Reader interface {
	ReadTable(ctx context.Context, id uint16) ([]byte, error)
}

// Config is the minimal runtime config the poller needs.
type Config struct {
	DeviceID string
	Interval time.Duration
	Tables   []uint16
}

// Poller is a dumb, clock-driven table reader.
type Poller struct {
	cfg    Config
	reader Reader
	now    func() time.Time
}

// New creates a poller with immutable config.
func New(cfg Config, reader Reader) (*Poller, error) {
	if cfg.DeviceID == "" {
		return nil, errors.New("poller: device id required")
	}
	if cfg.Interval <= 0 {
		return nil, errors.New("poller: interval must be > 0")
	}
	if len(cfg.Tables) == 0 {
		return nil, errors.New("poller: at least one table required")
	}
	if reader == nil {
		return nil, errors.New("poller: reader required")
	}
	return &Poller{cfg: cfg, reader: reader, now: time.Now}, nil
}

// PollOnce performs exactly one poll cycle.
// All-or-nothing: any failure aborts the cycle.
func (p *Poller) PollOnce(ctx context.Context) PollResult {
	res := PollResult{
		DeviceID: p.cfg.DeviceID,
		At:       p.now(),
	}

	tables := make([]TableImage, 0, len(p.cfg.Tables))
	for _, id := range p.cfg.Tables {
		data, err := p.reader.ReadTable(ctx, id)
		if err != nil {
			res.Err = err
			res.RawErrorCode = ErrorCode(err)
			return res
		}
		tables = append(tables, TableImage{ID: id, Data: data})
	}

	// Commit only if all reads succeeded
	res.Tables = tables
	return res
}
