package domain

import (
	"errors"
	"fmt"
)

// Interaction errors. These are scoped to the request that raised them.
var (
	ErrAreaNotFound       = errors.New("area not found")
	ErrNoSelection        = errors.New("no area selected")
	ErrDateOutOfRange     = errors.New("date out of range")
	ErrInvalidMode        = errors.New("invalid mode")
	ErrInvalidCoordinates = errors.New("invalid coordinates")
	ErrNoChart            = errors.New("no chart available")
)

// LoadError reports a missing or corrupt static asset.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// FetchError reports a failed call to the discharge API. StatusCode is zero
// when no HTTP response was received.
type FetchError struct {
	Mode       Mode
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s data: status %d: %v", e.Mode, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s data: %v", e.Mode, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }
