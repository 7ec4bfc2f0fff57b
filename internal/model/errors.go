package model

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by the registry and the ledger matches
// exactly one of these via errors.Is.
var (
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrValidation = errors.New("validation failed")
)

var (
	// Person errors
	ErrPersonNotFound = fmt.Errorf("person %w", ErrNotFound)
	ErrPersonExists   = fmt.Errorf("%w: person already exists", ErrConflict)

	// Duty errors
	ErrDutyRecordNotFound = fmt.Errorf("duty record %w", ErrNotFound)
	ErrDuplicateDuty      = fmt.Errorf("%w: duty already recorded", ErrConflict)
	ErrPersonRetired      = fmt.Errorf("%w: person is retired", ErrConflict)
	ErrDutyOutOfOrder     = fmt.Errorf("%w: duty must start after the current duty", ErrValidation)

	// Projection errors
	ErrProjectionNotFound = fmt.Errorf("projection %w", ErrNotFound)
)

// ValidationError reports a malformed input field
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError creates a ValidationError for the given field
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Is makes every ValidationError match ErrValidation
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
