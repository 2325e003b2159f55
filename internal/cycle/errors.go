package cycle

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInterval   = errors.New("cycle: interval must be > 0")
	ErrInvalidMultiplier = errors.New("cycle: interval multiplier must be >= 1")
	ErrInvalidPeriod     = errors.New("cycle: cycle period must be > 0")
	ErrInvalidCycles     = errors.New("cycle: number of cycles must be >= 0")
	ErrInvertedWindow    = errors.New("cycle: stop is before start")
	ErrMalformedTime     = errors.New("cycle: malformed time")

	ErrNilCallback        = errors.New("cycle: nil callback")
	ErrActive             = errors.New("cycle: timer is running, suspend it first")
	ErrNoTask             = errors.New("cycle: no task")
	ErrAlreadyInitialized = errors.New("cycle: task already initialized")
	ErrNoResources        = errors.New("cycle: task not created")
)

// ParseError reports a date/time or interval string that does not match the
// fixed layouts ("YYYY-MM-DD hh:mm" and "hh:mm").
type ParseError struct {
	Field string
	Input string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cycle: invalid %s %q: %v", e.Field, e.Input, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
