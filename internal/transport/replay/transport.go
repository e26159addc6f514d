// internal/transport/replay/transport.go
package replay

import (
	"context"
	"errors"
	"fmt"

	"github.com/tamzrod/c12tables/internal/cursor"
	"github.com/tamzrod/c12tables/internal/table"
)

// Transport serves table services from one capture in a Store. Writes
// update the stored images so procedures and reconfiguration can be
// replayed offline.
type Transport struct {
	store   *Store
	capture string
	format  cursor.TimeFormat
}

func NewTransport(s *Store, capture string, f cursor.TimeFormat) *Transport {
	return &Transport{store: s, capture: capture, format: f}
}

func (t *Transport) Capture() string               { return t.capture }
func (t *Transport) TimeFormat() cursor.TimeFormat { return t.format }

func (t *Transport) FullRead(ctx context.Context, id uint16) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	img, err := t.store.Get(t.capture, id)
	if err != nil {
		return nil, commErr(err)
	}
	return img, nil
}

// OffsetRead returns at most count bytes; a short image yields a short read.
func (t *Transport) OffsetRead(ctx context.Context, id uint16, offset uint32, count uint16) ([]byte, error) {
	img, err := t.FullRead(ctx, id)
	if err != nil {
		return nil, err
	}
	if int(offset) >= len(img) {
		return nil, nil
	}
	end := min(int(offset)+int(count), len(img))
	return img[offset:end], nil
}

func (t *Transport) Write(ctx context.Context, id uint16, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return commErr(t.store.Put(t.capture, id, data))
}

func (t *Transport) OffsetWrite(ctx context.Context, id uint16, offset uint32, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	img, err := t.store.Get(t.capture, id)
	if err != nil && !errors.Is(err, ErrNoImage) {
		return commErr(err)
	}
	if end := int(offset) + len(data); end > len(img) {
		grown := make([]byte, end)
		copy(grown, img)
		img = grown
	}
	copy(img[offset:], data)
	return commErr(t.store.Put(t.capture, id, img))
}

func commErr(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", table.ErrCommunication, err)
}
