package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors used across all layers.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrValidation    = errors.New("validation error")

	// ErrEmptyVocabulary is returned when vocabulary filtering removes every
	// candidate word. It is fatal at startup.
	ErrEmptyVocabulary = errors.New("vocabulary is empty after filtering")

	// ErrExclusionsExhausted is returned when a random-word request excludes
	// every word of the vocabulary.
	ErrExclusionsExhausted = errors.New("no words left after applying exclusions")

	// ErrMalformedGeneration is returned when the text generator produced a
	// word pair that is missing the target, missing forbidden words, or lists
	// the target among its forbidden words.
	ErrMalformedGeneration = errors.New("malformed word generation output")
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
