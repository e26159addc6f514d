// internal/table/transport.go
package table

import (
	"context"

	"github.com/tamzrod/c12tables/internal/cursor"
)

// Transport is the PSEM session as seen by the table layer.
// Implementations serialize device access; tables add no locking of their own.
// Failures should wrap ErrCommunication or ErrCommunicationTimeout.
type Transport interface {
	FullRead(ctx context.Context, id uint16) ([]byte, error)
	OffsetRead(ctx context.Context, id uint16, offset uint32, count uint16) ([]byte, error)
	Write(ctx context.Context, id uint16, data []byte) error
	OffsetWrite(ctx context.Context, id uint16, offset uint32, data []byte) error

	// TimeFormat is the time encoding in use for the session.
	TimeFormat() cursor.TimeFormat
}
