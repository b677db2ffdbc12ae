package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestValidationError_SingleField(t *testing.T) {
	t.Parallel()

	err := NewValidationError("word", "required")

	if got := err.Error(); got != "validation: word: required" {
		t.Fatalf("unexpected Error(): %q", got)
	}
	if !errors.Is(err, ErrValidation) {
		t.Fatal("errors.Is(err, ErrValidation) = false")
	}
}

func TestValidationError_MultipleFields(t *testing.T) {
	t.Parallel()

	err := NewValidationErrors([]FieldError{
		{Field: "word", Message: "required"},
		{Field: "description", Message: "too long"},
	})

	if got := err.Error(); got != "validation: 2 errors" {
		t.Fatalf("unexpected Error(): %q", got)
	}
	if !errors.Is(err, ErrValidation) {
		t.Fatal("errors.Is(err, ErrValidation) = false")
	}
	if len(err.Errors) != 2 {
		t.Fatalf("expected 2 field errors, got %d", len(err.Errors))
	}
}

func TestSentinelErrors_AreDistinct(t *testing.T) {
	t.Parallel()

	sentinels := []error{
		ErrNotFound, ErrValidation, ErrEmptyVocabulary,
		ErrExclusionsExhausted, ErrMalformedGeneration,
	}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j && errors.Is(a, b) {
				t.Errorf("sentinel errors %d and %d should not match", i, j)
			}
		}
	}
}

func TestSentinelErrors_SurviveWrapping(t *testing.T) {
	t.Parallel()

	wrapped := fmt.Errorf("sampler: %w", ErrExclusionsExhausted)
	if !errors.Is(wrapped, ErrExclusionsExhausted) {
		t.Fatal("wrapped error should match ErrExclusionsExhausted")
	}
}
