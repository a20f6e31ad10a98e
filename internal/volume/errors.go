package volume

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument is returned when a dimension, sample count or radius is
// outside its valid domain. Callers match it with errors.Is.
var ErrInvalidArgument = errors.New("invalid argument")

// ArgumentError describes which parameter was rejected and why.
// It unwraps to ErrInvalidArgument.
type ArgumentError struct {
	// Param is the name of the rejected parameter, e.g. "dimension".
	Param string
	// Value is the rejected value as supplied by the caller.
	Value any
	// Reason states the constraint that was violated, e.g. "must be >= 1".
	Reason string
}

// NewArgumentError returns an *ArgumentError for the given parameter.
func NewArgumentError(param string, value any, reason string) *ArgumentError {
	return &ArgumentError{Param: param, Value: value, Reason: reason}
}

// Error implements the error interface.
func (e *ArgumentError) Error() string {
	return fmt.Sprintf("%s: %s %s, got %v", ErrInvalidArgument, e.Param, e.Reason, e.Value)
}

// Unwrap returns ErrInvalidArgument.
func (e *ArgumentError) Unwrap() error {
	return ErrInvalidArgument
}
