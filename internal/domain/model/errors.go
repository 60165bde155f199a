package model

import (
	"errors"
	"fmt"
)

// Sentinel error kinds shared by the registries. These allow errors.Is from callers.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
)

// ValidationError describes malformed or missing input. Nothing is
// persisted when an operation returns one.
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError builds a ValidationError for field.
func NewValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// Is reports ErrValidation so callers can branch with errors.Is.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
