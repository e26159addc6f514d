// internal/table/errors.go
package table

import (
	"context"
	"errors"
	"fmt"
)

// Error taxonomy. Every error returned by a Table wraps exactly one of these.
var (
	ErrCommunicationTimeout = errors.New("communication timeout")
	ErrCommunication        = errors.New("communication error")
	ErrUnsupportedOperation = errors.New("unsupported operation")
	ErrIncompleteResponse   = errors.New("incomplete response")
	ErrInvalidFieldValue    = errors.New("invalid field value")
	ErrNotLoaded            = errors.New("table not loaded")
)

// Error codes reported through Code(), for status reporting.
const (
	CodeOK          uint16 = 0
	CodeGeneric     uint16 = 1
	CodeTimeout     uint16 = 2
	CodeComm        uint16 = 3
	CodeUnsupported uint16 = 4
	CodeIncomplete  uint16 = 5
	CodeInvalid     uint16 = 6
	CodeNotLoaded   uint16 = 7
)

// Error is returned by every Table operation that fails.
type Error struct {
	TableID uint16
	Offset  uint32
	Op      string
	Err     error
}

func (e *Error) Error() string {
	if e.Offset != 0 {
		return fmt.Sprintf("table %d@%d: %s: %v", e.TableID, e.Offset, e.Op, e.Err)
	}
	return fmt.Sprintf("table %d: %s: %v", e.TableID, e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Code maps the wrapped cause onto a stable numeric code.
func (e *Error) Code() uint16 {
	switch {
	case errors.Is(e.Err, ErrCommunicationTimeout):
		return CodeTimeout
	case errors.Is(e.Err, ErrCommunication):
		return CodeComm
	case errors.Is(e.Err, ErrUnsupportedOperation):
		return CodeUnsupported
	case errors.Is(e.Err, ErrIncompleteResponse):
		return CodeIncomplete
	case errors.Is(e.Err, ErrInvalidFieldValue):
		return CodeInvalid
	case errors.Is(e.Err, ErrNotLoaded):
		return CodeNotLoaded
	}
	return CodeGeneric
}

// classify makes sure a transport failure lands in the taxonomy.
// Transports are expected to wrap ErrCommunication or ErrCommunicationTimeout
// themselves; anything else is treated by what the context says.
func classify(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, ErrCommunicationTimeout), errors.Is(err, ErrCommunication):
		return err
	case errors.Is(err, context.DeadlineExceeded), errors.Is(ctx.Err(), context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", ErrCommunicationTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrCommunication, err)
}
