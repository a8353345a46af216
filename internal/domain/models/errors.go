package models

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks bad input rejected before any side effect.
	ErrValidation = errors.New("validation failed")
	// ErrInvalidState marks an open/close that violates the shift state machine.
	ErrInvalidState = errors.New("invalid shift state")
	// ErrShiftNotFound is returned when a shift id does not resolve.
	ErrShiftNotFound = errors.New("shift not found")
	// ErrPermissionDenied is returned when an actor may not act for an operator.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrUpstreamUnavailable wraps transport failures and 5xx answers from the POS backend.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)

// ValidationError names the offending field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Is lets errors.Is(err, ErrValidation) match.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NewValidationError is a shorthand used by the services.
func NewValidationError(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
