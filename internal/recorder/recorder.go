// internal/recorder/recorder.go
package recorder

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tamzrod/c12tables/internal/logging"
	"github.com/tamzrod/c12tables/internal/poller"
)

// ImageStore is the exact contract the recorder uses.
// replay.Store satisfies it.
type ImageStore interface {
	Put(capture string, id uint16, img []byte) error
}

// Recorder writes poll snapshots into a capture.
type Recorder struct {
	store   ImageStore
	capture string
	log     logging.Logger
	written int
}

func New(store ImageStore, capture string, log logging.Logger) (*Recorder, error) {
	if store == nil {
		return nil, errors.New("recorder: store required")
	}
	if capture == "" {
		return nil, errors.New("recorder: capture required")
	}
	return &Recorder{store: store, capture: capture, log: logging.OrNop(log)}, nil
}

func (r *Recorder) Capture() string { return r.capture }

// Written counts the images stored so far.
func (r *Recorder) Written() int { return r.written }

// Write stores every image of a successful cycle. A failed cycle is not
// recorded; the last good images stay in place.
func (r *Recorder) Write(res poller.PollResult) error {
	if res.Err != nil {
		return nil
	}

	var errs []string
	for _, tbl := range res.Tables {
		if err := r.store.Put(r.capture, tbl.ID, tbl.Data); err != nil {
			errs = append(errs, fmt.Sprintf(
				"recorder: capture=%s table=%d err=%v",
				r.capture, tbl.ID, err,
			))
			continue
		}
		r.written++
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, " | "))
	}
	r.log.Debug("cycle recorded", "capture", r.capture, "device", res.DeviceID, "tables", len(res.Tables))
	return nil
}
