// internal/table/options.go
package table

import (
	"encoding/binary"
	"time"

	"github.com/tamzrod/c12tables/internal/logging"
)

// DefaultTimeout bounds a single transport call when no table timeout is set.
const DefaultTimeout = 5 * time.Second

// Option configures a Table at construction.
type Option func(*Table)

// WithCapabilities restricts what the table may do on the wire.
func WithCapabilities(c Capability) Option {
	return func(t *Table) { t.caps = c }
}

// WithResize enables the resize protocol. The declared size passed to New
// is the fixed prefix r decodes.
func WithResize(r Resizer) Option {
	return func(t *Table) { t.resizer = r }
}

// WithVariableSize makes the table take whatever size the transport returns.
func WithVariableSize() Option {
	return func(t *Table) { t.varSize = true }
}

// WithSubtable binds the table to offset bytes into its containing table.
// Its byte 0 is container byte offset; whole-table reads and writes become
// offset reads and writes on the container id.
func WithSubtable(offset uint32) Option {
	return func(t *Table) {
		t.sub = true
		t.offset = offset
	}
}

// WithTimeout sets the per-call timeout. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(t *Table) { t.timeout = d }
}

func WithLogger(l logging.Logger) Option {
	return func(t *Table) { t.log = logging.OrNop(l) }
}

func WithByteOrder(o binary.ByteOrder) Option {
	return func(t *Table) {
		if o != nil {
			t.cur.SetOrder(o)
		}
	}
}
