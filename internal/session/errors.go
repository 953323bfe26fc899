package session

import (
	"errors"
	"fmt"
)

var (
	// ErrNoImage is returned when an edit is requested before loading an image.
	ErrNoImage = errors.New("no image loaded")
	// ErrEmptyInstruction is returned when an edit needs text and none was given.
	ErrEmptyInstruction = errors.New("instruction is empty")
	// ErrNoHotspot is returned by a retouch request without a selected point.
	ErrNoHotspot = errors.New("no hotspot selected")
	// ErrNoCropRegion is returned by a crop request without a selection.
	ErrNoCropRegion = errors.New("no crop region selected")
	// ErrBusy is returned while another operation is in flight.
	ErrBusy = errors.New("another edit is in progress")
	// ErrTooLarge is returned when a loaded image exceeds the size limit.
	ErrTooLarge = errors.New("image exceeds the size limit")
)

// ValidationError is a request rejected before anything was sent to the edit
// service. History is never touched.
type ValidationError struct {
	Kind Kind
	Err  error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// EditError is a failed edit. Err is the service or decode error.
type EditError struct {
	Kind Kind
	Err  error
}

func (e *EditError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Kind, e.Err)
}

func (e *EditError) Unwrap() error { return e.Err }
