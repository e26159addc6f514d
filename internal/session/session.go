// internal/session/session.go
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/tamzrod/c12tables/internal/composite"
	"github.com/tamzrod/c12tables/internal/cursor"
	"github.com/tamzrod/c12tables/internal/logging"
	"github.com/tamzrod/c12tables/internal/procedure"
	"github.com/tamzrod/c12tables/internal/stdtable"
	"github.com/tamzrod/c12tables/internal/table"
)

type Config struct {
	Logger        logging.Logger
	Timeout       time.Duration
	TableTimeouts map[uint16]time.Duration

	// TimeFormat, when set, overrides table 0's TM_FORMAT.
	TimeFormat *cursor.TimeFormat

	// Layout, when set, pins the 2048 composite layout.
	Layout *composite.Layout
}

// Session owns every table bound to one device. Table 0 is built first;
// dependents are built on first use with the dimensions and data order
// it announces. A Session is not safe for concurrent use.
type Session struct {
	tr  *transport
	cfg Config
	log logging.Logger

	gc       *stdtable.GeneralConfig
	resolver *stdtable.Resolver

	mode    *stdtable.ModeStatus
	pending *stdtable.PendingStatus
	comp    *composite.Config
	invoker *procedure.Invoker
	raw     map[uint16]*table.Table
}

// transport presents the session's time format to every table while
// delegating I/O to the device transport.
type transport struct {
	table.Transport
	s *Session
}

func (t *transport) TimeFormat() cursor.TimeFormat { return t.s.TimeFormat() }

func New(tr table.Transport, cfg Config) *Session {
	if cfg.Timeout == 0 {
		cfg.Timeout = table.DefaultTimeout
	}
	s := &Session{cfg: cfg, log: logging.OrNop(cfg.Logger), raw: map[uint16]*table.Table{}}
	s.tr = &transport{Transport: tr, s: s}
	s.gc = stdtable.NewGeneralConfig(s.tr, s.options(stdtable.GeneralConfigID)...)
	s.resolver = stdtable.NewResolver(s.tr, s.gc, s.shared()...)
	return s
}

func (s *Session) Transport() table.Transport             { return s.tr }
func (s *Session) Logger() logging.Logger                 { return s.log }
func (s *Session) GeneralConfig() *stdtable.GeneralConfig { return s.gc }
func (s *Session) Resolver() *stdtable.Resolver           { return s.resolver }

// TimeFormat is the configured override, else table 0's TM_FORMAT once
// table 0 is loaded, else whatever the device transport reports.
func (s *Session) TimeFormat() cursor.TimeFormat {
	if s.cfg.TimeFormat != nil {
		return *s.cfg.TimeFormat
	}
	if s.gc.Table().State() != table.Unloaded {
		if f, err := s.gc.TimeFormat(context.Background()); err == nil {
			return f
		}
	}
	return s.tr.Transport.TimeFormat()
}

func (s *Session) ModeStatus(ctx context.Context) (*stdtable.ModeStatus, error) {
	if s.mode != nil {
		return s.mode, nil
	}
	dims, opts, err := s.resolver.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	s.mode = stdtable.NewModeStatus(s.tr, dims, append(opts, s.timeout(stdtable.ModeStatusID))...)
	return s.mode, nil
}

func (s *Session) PendingStatus(ctx context.Context) (*stdtable.PendingStatus, error) {
	if s.pending != nil {
		return s.pending, nil
	}
	dims, opts, err := s.resolver.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	s.pending = stdtable.NewPendingStatus(s.tr, dims, append(opts, s.timeout(stdtable.PendingStatusID))...)
	return s.pending, nil
}

// Composite is manufacturer table 2048.
func (s *Session) Composite(ctx context.Context) (*composite.Config, error) {
	if s.comp != nil {
		return s.comp, nil
	}
	_, opts, err := s.resolver.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	copts := []composite.Option{
		composite.WithTableOptions(append(opts, s.timeout(composite.ConfigID))...),
	}
	if s.cfg.Layout != nil {
		copts = append(copts, composite.WithLayout(*s.cfg.Layout))
	}
	s.comp = composite.New(s.tr, copts...)
	return s.comp, nil
}

func (s *Session) Invoker(ctx context.Context) (*procedure.Invoker, error) {
	if s.invoker != nil {
		return s.invoker, nil
	}
	_, opts, err := s.resolver.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	s.invoker = procedure.NewInvoker(s.tr, append(opts, s.timeout(procedure.ResponseTableID))...)
	return s.invoker, nil
}

// Call runs procedure id once, after checking table 0 lists it.
func (s *Session) Call(ctx context.Context, id uint16, params []byte) (procedure.Response, error) {
	used, err := s.gc.IsProcedureUsed(ctx, id)
	if err != nil {
		return procedure.Response{}, err
	}
	if !used {
		return procedure.Response{}, fmt.Errorf("%w: procedure %s not implemented by device", table.ErrUnsupportedOperation, procedure.Name(id))
	}
	iv, err := s.Invoker(ctx)
	if err != nil {
		return procedure.Response{}, err
	}
	resp, err := iv.Call(ctx, id, params)
	if err != nil {
		return resp, err
	}
	s.log.Info("procedure", "proc", procedure.Name(id), "result", resp.Result.String(), "degraded", resp.Degraded())
	return resp, nil
}

// SetDateTime runs procedure 10 in the session time format.
func (s *Session) SetDateTime(ctx context.Context, p procedure.SetDateTimeParams) (procedure.Response, error) {
	order, err := s.gc.ByteOrder(ctx)
	if err != nil {
		return procedure.Response{}, err
	}
	params, err := p.Encode(s.TimeFormat(), order)
	if err != nil {
		return procedure.Response{}, err
	}
	return s.Call(ctx, procedure.SetDateTime, params)
}

// Raw is a read-only, variable-size view of any table, for dumps and
// recording.
func (s *Session) Raw(id uint16) *table.Table {
	if t, ok := s.raw[id]; ok {
		return t
	}
	opts := append(s.options(id), table.WithVariableSize(), table.WithCapabilities(table.CapRead))
	t := table.New(s.tr, id, 0, nil, opts...)
	s.raw[id] = t
	return t
}

// ReadTable fetches a fresh image of table id. Reading table 0 refreshes
// the header every dependent was sized from.
func (s *Session) ReadTable(ctx context.Context, id uint16) ([]byte, error) {
	var t *table.Table
	if id == stdtable.GeneralConfigID {
		t = s.gc.Table()
	} else {
		t = s.Raw(id)
	}
	t.Invalidate()
	if err := t.Read(ctx); err != nil {
		return nil, err
	}
	return t.Bytes(), nil
}

// Invalidate makes every table built so far read again on next access.
// Dependents keep the dimensions they were built with; Reset rebuilds them.
func (s *Session) Invalidate() {
	s.gc.Table().Invalidate()
	if s.mode != nil {
		s.mode.Table().Invalidate()
	}
	if s.pending != nil {
		s.pending.Table().Invalidate()
	}
	if s.comp != nil {
		s.comp.Reset()
	}
	for _, t := range s.raw {
		t.Invalidate()
	}
}

// Reset drops every dependent so the next access rebuilds it from a fresh
// table 0.
func (s *Session) Reset() {
	s.gc.Table().Invalidate()
	s.mode, s.pending, s.comp, s.invoker = nil, nil, nil, nil
	s.raw = map[uint16]*table.Table{}
}

// ---- options ----

func (s *Session) shared() []table.Option {
	return []table.Option{table.WithLogger(s.log), table.WithTimeout(s.cfg.Timeout)}
}

func (s *Session) options(id uint16) []table.Option {
	return append(s.shared(), s.timeout(id))
}

func (s *Session) timeout(id uint16) table.Option {
	if d, ok := s.cfg.TableTimeouts[id]; ok {
		return table.WithTimeout(d)
	}
	return table.WithTimeout(s.cfg.Timeout)
}
