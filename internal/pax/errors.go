package pax

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyTime         = errors.New("time is required")
	ErrInvalidTimeFormat = errors.New("invalid time format")
	ErrNegativeTime      = errors.New("time cannot be negative")
	ErrNonPositiveTime   = errors.New("input time must be positive")
	ErrNonPositivePax    = errors.New("pax indices must be positive")
	ErrNonFiniteTime     = errors.New("time must be finite")
)

// FormatError is returned when a time string matches none of the accepted
// grammars. The caller should ask for the time again.
type FormatError struct {
	Input string
	Err   error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%v: %q", e.Err, e.Input)
}

func (e *FormatError) Unwrap() error { return e.Err }

// RangeError is returned when a value handed to a formatter is outside the
// range it accepts. It indicates a bug in the caller.
type RangeError struct {
	Value float64
	// Err is ErrNegativeTime or ErrNonFiniteTime. Nil reads as ErrNegativeTime.
	Err error
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%v: %g", e.Unwrap(), e.Value)
}

func (e *RangeError) Unwrap() error {
	if e.Err == nil {
		return ErrNegativeTime
	}
	return e.Err
}

// DomainError is returned by Convert when its inputs cannot be converted.
type DomainError struct {
	Err error
}

func (e *DomainError) Error() string { return e.Err.Error() }

func (e *DomainError) Unwrap() error { return e.Err }
