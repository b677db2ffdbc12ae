package game

import (
	"strings"
	"unicode/utf8"

	"github.com/heartmarshall/taboo-core/internal/domain"
	"github.com/heartmarshall/taboo-core/internal/validator"
)

const (
	maxWordLen        = 64
	maxDescriptionLen = 2000
	maxForbidden      = 64
	maxOutK           = 64
	maxExclude        = 10000
)

// ForbiddenInput holds the parameters for building a forbidden list.
type ForbiddenInput struct {
	Word string
	// OutK is the list size. A negative value selects the configured default.
	OutK int
}

// Validate checks all fields and collects all errors.
func (i *ForbiddenInput) Validate() error {
	var errs []domain.FieldError

	errs = validateWord(errs, "word", i.Word)
	if i.OutK > maxOutK {
		errs = append(errs, domain.FieldError{Field: "out_k", Message: "too large (max 64)"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// TargetInput holds the parameters for drawing a target word.
type TargetInput struct {
	Exclude []string
}

// Validate checks all fields and collects all errors.
func (i *TargetInput) Validate() error {
	if len(i.Exclude) > maxExclude {
		return domain.NewValidationError("exclude", "too many (max 10000)")
	}
	return nil
}

// CheckDescriptionInput holds the parameters for validating a description.
type CheckDescriptionInput struct {
	Word        string
	Description string
	// Forbidden is the round's list. Nil builds the list for Word.
	Forbidden []string
	Mode      string
}

// Validate checks all fields and collects all errors.
func (i *CheckDescriptionInput) Validate() error {
	var errs []domain.FieldError

	errs = validateWord(errs, "word", i.Word)
	if strings.TrimSpace(i.Description) == "" {
		errs = append(errs, domain.FieldError{Field: "description", Message: "required"})
	} else if utf8.RuneCountInString(i.Description) > maxDescriptionLen {
		errs = append(errs, domain.FieldError{Field: "description", Message: "too long (max 2000)"})
	}
	if len(i.Forbidden) > maxForbidden {
		errs = append(errs, domain.FieldError{Field: "forbidden", Message: "too many (max 64)"})
	}
	if _, err := validator.ParseMode(i.Mode); err != nil {
		errs = append(errs, domain.FieldError{Field: "mode", Message: "must be deterministic, semantic or hybrid"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// CheckGuessInput holds the parameters for checking a chat guess.
type CheckGuessInput struct {
	Word  string
	Guess string
}

// Validate checks all fields and collects all errors.
func (i *CheckGuessInput) Validate() error {
	var errs []domain.FieldError

	errs = validateWord(errs, "word", i.Word)
	if utf8.RuneCountInString(i.Guess) > maxDescriptionLen {
		errs = append(errs, domain.FieldError{Field: "guess", Message: "too long (max 2000)"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

func validateWord(errs []domain.FieldError, field, word string) []domain.FieldError {
	w := strings.TrimSpace(word)
	switch {
	case w == "":
		errs = append(errs, domain.FieldError{Field: field, Message: "required"})
	case utf8.RuneCountInString(w) > maxWordLen:
		errs = append(errs, domain.FieldError{Field: field, Message: "too long (max 64)"})
	}
	return errs
}
