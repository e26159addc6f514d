// internal/stdtable/resolver.go
package stdtable

import (
	"context"
	"slices"

	"github.com/tamzrod/c12tables/internal/table"
)

// Resolver builds tables whose layout depends on table 0. Dimensions and
// the data order are pulled from table 0 when a dependent is built, reading
// it first if needed. Table 0 never depends on its dependents.
type Resolver struct {
	tr   table.Transport
	gc   *GeneralConfig
	opts []table.Option
}

// NewResolver binds a resolver to an existing table 0. opts are applied to
// every dependent it builds.
func NewResolver(tr table.Transport, gc *GeneralConfig, opts ...table.Option) *Resolver {
	return &Resolver{tr: tr, gc: gc, opts: opts}
}

func (r *Resolver) GeneralConfig() *GeneralConfig { return r.gc }

// Resolve returns the dimensions and the table options (shared options plus
// the device data order) a dependent table needs.
func (r *Resolver) Resolve(ctx context.Context) (Dimensions, []table.Option, error) {
	h, err := r.gc.Header(ctx)
	if err != nil {
		return Dimensions{}, nil, err
	}
	opts := append(slices.Clone(r.opts), table.WithByteOrder(h.Format.ByteOrder()))
	return h.Dims, opts, nil
}

func (r *Resolver) ModeStatus(ctx context.Context) (*ModeStatus, error) {
	dims, opts, err := r.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	return NewModeStatus(r.tr, dims, opts...), nil
}

func (r *Resolver) PendingStatus(ctx context.Context) (*PendingStatus, error) {
	dims, opts, err := r.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	return NewPendingStatus(r.tr, dims, opts...), nil
}
