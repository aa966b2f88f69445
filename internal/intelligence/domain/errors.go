package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is the root of every validation failure.
	ErrInvalidInput = errors.New("invalid input")
	// ErrPreferencesNotFound is returned when a user has no stored model yet.
	ErrPreferencesNotFound = errors.New("preferences not found")
	// ErrConcurrentUpdate means the stored version moved since it was read.
	ErrConcurrentUpdate = errors.New("preferences were modified concurrently")
)

// ValidationError describes one rejected field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Unwrap lets errors.Is(err, ErrInvalidInput) match.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// NewValidationError creates a ValidationError.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}
