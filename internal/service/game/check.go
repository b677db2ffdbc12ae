package game

import (
	"context"

	"github.com/heartmarshall/taboo-core/internal/domain"
	"github.com/heartmarshall/taboo-core/internal/validator"
)

// CheckDescription validates a description against the round's forbidden list.
func (s *Service) CheckDescription(ctx context.Context, in CheckDescriptionInput) (domain.Verdict, error) {
	if err := in.Validate(); err != nil {
		return domain.Verdict{}, err
	}
	mode, _ := validator.ParseMode(in.Mode)

	forbidden := in.Forbidden
	if forbidden == nil {
		forbidden, _ = s.GenerateForbiddenList(ctx, ForbiddenInput{Word: in.Word, OutK: -1})
	}

	return s.validator.Check(ctx, in.Word, in.Description, forbidden, mode), nil
}

// CheckGuess reports whether a chat guess names the target word.
func (s *Service) CheckGuess(_ context.Context, in CheckGuessInput) (bool, error) {
	if err := in.Validate(); err != nil {
		return false, err
	}
	return s.validator.CheckGuess(in.Word, in.Guess), nil
}
