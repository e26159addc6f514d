// internal/poller/types.go
package poller

import "time"

// TableImage is the raw result of one table read.
type TableImage struct {
	ID   uint16
	Data []byte
}

// PollResult is a snapshot produced by one poll cycle.
type PollResult struct {
	DeviceID string
	At       time.Time

	// RawErrorCode is the table error code of the failure.
	// 0 means success.
	RawErrorCode uint16

	Tables []TableImage
	Err    error // non-nil means the poll cycle failed
}
