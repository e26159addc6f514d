// internal/recorder/health.go
package recorder

import "github.com/tamzrod/c12tables/internal/poller"

// Health codes.
const (
	HealthUnknown uint16 = 0
	HealthOK      uint16 = 1
	HealthError   uint16 = 2
)

// Health is the device-level view of the poll stream.
type Health struct {
	State          uint16
	LastErrorCode  uint16
	SecondsInError uint16
}

// Observe folds one poll result into h and reports whether it changed.
func (h *Health) Observe(res poller.PollResult) bool {
	changed := false

	if res.Err == nil {
		// Recovery / OK
		if h.State != HealthOK {
			h.State = HealthOK
			changed = true
		}
		if h.LastErrorCode != 0 {
			h.LastErrorCode = 0
			changed = true
		}
		if h.SecondsInError != 0 {
			h.SecondsInError = 0
			changed = true
		}
		return changed
	}

	if h.State != HealthError {
		h.State = HealthError
		changed = true
	}
	code := res.RawErrorCode
	if code == 0 {
		code = poller.ErrorCode(res.Err)
	}
	if h.LastErrorCode != code {
		h.LastErrorCode = code
		changed = true
	}
	// seconds_in_error increments on Tick only
	return changed
}

// Tick advances SecondsInError while not OK. It never wraps.
func (h *Health) Tick() bool {
	if h.State == HealthOK || h.SecondsInError == 0xFFFF {
		return false
	}
	h.SecondsInError++
	return true
}

func (h *Health) String() string {
	switch h.State {
	case HealthOK:
		return "ok"
	case HealthError:
		return "error"
	}
	return "unknown"
}
