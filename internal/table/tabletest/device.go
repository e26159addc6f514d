// internal/table/tabletest/device.go
package tabletest

import (
	"context"
	"fmt"

	"github.com/tamzrod/c12tables/internal/cursor"
	"github.com/tamzrod/c12tables/internal/table"
)

// Call records one transport call.
type Call struct {
	Op     string // "full-read", "offset-read", "write", "offset-write"
	ID     uint16
	Offset uint32
	Count  int
}

// Device is an in-memory table.Transport over a map of table images.
type Device struct {
	Images map[uint16][]byte
	Format cursor.TimeFormat
	Calls  []Call

	// FailOn makes the n-th call (1-based) fail with Err.
	FailOn int
	Err    error
}

func NewDevice() *Device {
	return &Device{Images: map[uint16][]byte{}, Format: cursor.TimeUint8}
}

// Set stores a copy of img as the device image of table id.
func (d *Device) Set(id uint16, img []byte) {
	d.Images[id] = append([]byte(nil), img...)
}

func (d *Device) record(c Call) error {
	d.Calls = append(d.Calls, c)
	if d.FailOn > 0 && len(d.Calls) == d.FailOn {
		if d.Err != nil {
			return d.Err
		}
		return fmt.Errorf("%w: injected failure", table.ErrCommunication)
	}
	return nil
}

func (d *Device) FullRead(ctx context.Context, id uint16) ([]byte, error) {
	if err := d.record(Call{Op: "full-read", ID: id}); err != nil {
		return nil, err
	}
	img, ok := d.Images[id]
	if !ok {
		return nil, fmt.Errorf("%w: table %d not present", table.ErrCommunication, id)
	}
	return append([]byte(nil), img...), nil
}

// OffsetRead returns at most count bytes; a short image yields a short read.
func (d *Device) OffsetRead(ctx context.Context, id uint16, offset uint32, count uint16) ([]byte, error) {
	if err := d.record(Call{Op: "offset-read", ID: id, Offset: offset, Count: int(count)}); err != nil {
		return nil, err
	}
	img, ok := d.Images[id]
	if !ok {
		return nil, fmt.Errorf("%w: table %d not present", table.ErrCommunication, id)
	}
	if int(offset) >= len(img) {
		return nil, nil
	}
	end := int(offset) + int(count)
	if end > len(img) {
		end = len(img)
	}
	return append([]byte(nil), img[offset:end]...), nil
}

func (d *Device) Write(ctx context.Context, id uint16, data []byte) error {
	if err := d.record(Call{Op: "write", ID: id, Count: len(data)}); err != nil {
		return err
	}
	d.Images[id] = append([]byte(nil), data...)
	return nil
}

func (d *Device) OffsetWrite(ctx context.Context, id uint16, offset uint32, data []byte) error {
	if err := d.record(Call{Op: "offset-write", ID: id, Offset: offset, Count: len(data)}); err != nil {
		return err
	}
	img := d.Images[id]
	if end := int(offset) + len(data); end > len(img) {
		grown := make([]byte, end)
		copy(grown, img)
		img = grown
	}
	copy(img[offset:], data)
	d.Images[id] = img
	return nil
}

func (d *Device) TimeFormat() cursor.TimeFormat { return d.Format }

// Ops lists the operations recorded so far.
func (d *Device) Ops() []string {
	out := make([]string, len(d.Calls))
	for i, c := range d.Calls {
		out[i] = c.Op
	}
	return out
}

func (d *Device) Reset() { d.Calls = nil }
