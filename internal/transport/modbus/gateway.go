// internal/transport/modbus/gateway.go
package modbus

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/goburrow/modbus"

	"github.com/tamzrod/c12tables/internal/cursor"
	"github.com/tamzrod/c12tables/internal/logging"
	"github.com/tamzrod/c12tables/internal/table"
)

// Gateway functions written to the request block.
const (
	FuncFullRead    uint16 = 1
	FuncOffsetRead  uint16 = 2
	FuncWrite       uint16 = 3
	FuncOffsetWrite uint16 = 4
)

// Register window geometry.
//
// Request block at RequestAddr:
//
//	+0 function  +1 table id  +2 offset hi  +3 offset lo  +4 count  +5.. data
//
// Response block at ResponseAddr:
//
//	+0 status  +1 length  +2.. data
//
// Data bytes are packed big-endian, two per register, odd tail zero padded.
const (
	requestHeaderRegs  = 5
	responseHeaderRegs = 2

	maxReadRegs  = 125
	maxWriteRegs = 123
)

const (
	DefaultRequestAddr  uint16 = 0
	DefaultResponseAddr uint16 = 256
)

// Registers is the part of a Modbus client the gateway uses.
// goburrow's modbus.Client satisfies it.
type Registers interface {
	ReadHoldingRegisters(address, quantity uint16) ([]byte, error)
	WriteMultipleRegisters(address, quantity uint16, value []byte) ([]byte, error)
}

type Config struct {
	Endpoint     string
	UnitID       uint8
	Timeout      time.Duration
	RequestAddr  uint16
	ResponseAddr uint16
	TimeFormat   cursor.TimeFormat
	Logger       logging.Logger
}

// Gateway is a table.Transport that tunnels PSEM table services through a
// Modbus TCP register window. It serializes requests.
type Gateway struct {
	mu      sync.Mutex
	handler *modbus.TCPClientHandler
	regs    Registers
	cfg     Config
	log     logging.Logger
}

// Dial connects to a gateway over Modbus TCP.
func Dial(cfg Config) (*Gateway, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("modbus gateway: endpoint required")
	}

	h := modbus.NewTCPClientHandler(cfg.Endpoint)
	h.Timeout = cfg.Timeout
	h.SlaveId = cfg.UnitID

	if err := h.Connect(); err != nil {
		return nil, fmt.Errorf("%w: modbus gateway: %v", table.ErrCommunication, err)
	}

	g := New(modbus.NewClient(h), cfg)
	g.handler = h
	return g, nil
}

// New wraps an existing register client.
func New(regs Registers, cfg Config) *Gateway {
	if cfg.RequestAddr == 0 && cfg.ResponseAddr == 0 {
		cfg.RequestAddr, cfg.ResponseAddr = DefaultRequestAddr, DefaultResponseAddr
	}
	return &Gateway{regs: regs, cfg: cfg, log: logging.OrNop(cfg.Logger)}
}

func (g *Gateway) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.handler == nil {
		return nil
	}
	return g.handler.Close()
}

func (g *Gateway) TimeFormat() cursor.TimeFormat {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.cfg.TimeFormat
}

// ---- table.Transport ----

func (g *Gateway) FullRead(ctx context.Context, id uint16) ([]byte, error) {
	return g.read(ctx, FuncFullRead, id, 0, 0)
}

func (g *Gateway) OffsetRead(ctx context.Context, id uint16, offset uint32, count uint16) ([]byte, error) {
	return g.read(ctx, FuncOffsetRead, id, offset, count)
}

func (g *Gateway) Write(ctx context.Context, id uint16, data []byte) error {
	return g.write(ctx, FuncWrite, id, 0, data)
}

func (g *Gateway) OffsetWrite(ctx context.Context, id uint16, offset uint32, data []byte) error {
	return g.write(ctx, FuncOffsetWrite, id, offset, data)
}

// ---- internal request/response helpers ----

func (g *Gateway) read(ctx context.Context, fn, id uint16, offset uint32, count uint16) ([]byte, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.request(ctx, fn, id, offset, count, nil); err != nil {
		return nil, err
	}
	return g.response(ctx, fn, id)
}

func (g *Gateway) write(ctx context.Context, fn, id uint16, offset uint32, data []byte) error {
	if len(data) > 0xFFFF {
		return fmt.Errorf("%w: %d bytes exceed one request", table.ErrInvalidFieldValue, len(data))
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.request(ctx, fn, id, offset, uint16(len(data)), data); err != nil {
		return err
	}
	_, err := g.response(ctx, fn, id)
	return err
}

// request writes the data registers first and the header last; the header
// write is what triggers the gateway.
func (g *Gateway) request(ctx context.Context, fn, id uint16, offset uint32, count uint16, data []byte) error {
	packed := packBytes(data)
	base := g.cfg.RequestAddr + requestHeaderRegs
	for start := 0; start < len(packed)/2; start += maxWriteRegs {
		n := min(maxWriteRegs, len(packed)/2-start)
		chunk := packed[2*start : 2*(start+n)]
		if err := g.call(ctx, func() error {
			_, err := g.regs.WriteMultipleRegisters(base+uint16(start), uint16(n), chunk)
			return err
		}); err != nil {
			return err
		}
	}

	hdr := packRegisters(fn, id, uint16(offset>>16), uint16(offset), count)
	return g.call(ctx, func() error {
		_, err := g.regs.WriteMultipleRegisters(g.cfg.RequestAddr, requestHeaderRegs, hdr)
		return err
	})
}

func (g *Gateway) response(ctx context.Context, fn, id uint16) ([]byte, error) {
	var hdr []byte
	if err := g.call(ctx, func() (err error) {
		hdr, err = g.regs.ReadHoldingRegisters(g.cfg.ResponseAddr, responseHeaderRegs)
		return err
	}); err != nil {
		return nil, err
	}
	if len(hdr) < 2*responseHeaderRegs {
		return nil, fmt.Errorf("%w: gateway header %d bytes", table.ErrIncompleteResponse, len(hdr))
	}
	status := hdr[1]
	length := int(hdr[2])<<8 | int(hdr[3])
	if status != 0 {
		g.log.Debug("gateway status", "table", id, "func", fn, "status", status)
		return nil, &StatusError{Status: status, Table: id}
	}

	nregs := (length + 1) / 2
	out := make([]byte, 0, 2*nregs)
	base := g.cfg.ResponseAddr + responseHeaderRegs
	for start := 0; start < nregs; start += maxReadRegs {
		n := min(maxReadRegs, nregs-start)
		var b []byte
		if err := g.call(ctx, func() (err error) {
			b, err = g.regs.ReadHoldingRegisters(base+uint16(start), uint16(n))
			return err
		}); err != nil {
			return nil, err
		}
		out = append(out, b...)
	}
	if len(out) > length {
		out = out[:length]
	}
	return out, nil
}

// call runs one Modbus exchange and maps its failure onto the table
// error taxonomy.
func (g *Gateway) call(ctx context.Context, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return timeoutOr(err)
	}
	if g.handler != nil {
		g.handler.Timeout = exchangeTimeout(ctx, g.cfg.Timeout)
	}

	err := fn()
	if err == nil {
		return nil
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return fmt.Errorf("%w: %v", table.ErrCommunicationTimeout, err)
	}
	if ctx.Err() != nil {
		return timeoutOr(ctx.Err())
	}
	return fmt.Errorf("%w: %v", table.ErrCommunication, err)
}

// exchangeTimeout is the configured timeout, shortened to what is left of
// the context deadline.
func exchangeTimeout(ctx context.Context, base time.Duration) time.Duration {
	dl, ok := ctx.Deadline()
	if !ok {
		return base
	}
	if left := time.Until(dl); base <= 0 || left < base {
		return left
	}
	return base
}

func timeoutOr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", table.ErrCommunicationTimeout, err)
	}
	return fmt.Errorf("%w: %v", table.ErrCommunication, err)
}

// ---- helpers (pure geometry) ----

func packBytes(data []byte) []byte {
	out := make([]byte, len(data)+len(data)%2)
	copy(out, data)
	return out
}

func packRegisters(regs ...uint16) []byte {
	out := make([]byte, len(regs)*2)
	for i, r := range regs {
		out[2*i] = byte(r >> 8)
		out[2*i+1] = byte(r)
	}
	return out
}
