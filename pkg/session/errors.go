package session

import (
	"errors"
	"fmt"
)

var (
	ErrClosed           = errors.New("session: closed")
	ErrNotLastSection   = errors.New("session: submission is only allowed from the last section")
	ErrSubmitInProgress = errors.New("session: submission already in progress")
	ErrNotTimer         = errors.New("session: item is not a stopwatch or countdown")
	ErrTimerRunning     = errors.New("session: timer is running")
	ErrNoDevice         = errors.New("session: device not available")
	ErrWrongItemType    = errors.New("session: item type does not accept this capture")
)

// DeviceCaptureError is a local failure of one field. It never blocks the
// rest of the form.
type DeviceCaptureError struct {
	SectionID string
	ItemID    string
	Device    string
	Err       error
}

func (e *DeviceCaptureError) Error() string {
	return fmt.Sprintf("session: %s capture for %s/%s failed: %v", e.Device, e.SectionID, e.ItemID, e.Err)
}

func (e *DeviceCaptureError) Unwrap() error {
	return e.Err
}
