package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors used across all layers.
var (
	ErrNotFound         = errors.New("not found")
	ErrAlreadyExists    = errors.New("already exists")
	ErrValidation       = errors.New("validation error")
	ErrInvalidState     = errors.New("invalid state")
	ErrInsufficientData = errors.New("insufficient data")
	ErrConflict         = errors.New("conflict")
	ErrUnavailable      = errors.New("backing store unavailable")
)

// FieldError describes a validation error for a specific field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError contains a list of field-level validation errors.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation: %s: %s", e.Errors[0].Field, e.Errors[0].Message)
	}
	return fmt.Sprintf("validation: %d errors", len(e.Errors))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError creates a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Errors: []FieldError{{Field: field, Message: message}},
	}
}

// NewValidationErrors creates a ValidationError from multiple field errors.
func NewValidationErrors(errs []FieldError) *ValidationError {
	return &ValidationError{Errors: errs}
}

// StateError wraps ErrInvalidState with the reason the operation was rejected
// (completed session, empty skip budget, no pending question, ...).
type StateError struct {
	Reason string
}

func (e *StateError) Error() string { return fmt.Sprintf("invalid state: %s", e.Reason) }

func (e *StateError) Unwrap() error { return ErrInvalidState }

// NewStateError creates a StateError with the given reason.
func NewStateError(reason string) *StateError {
	return &StateError{Reason: reason}
}
