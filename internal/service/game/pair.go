package game

import (
	"context"
	"errors"
	"log/slog"

	"github.com/heartmarshall/taboo-core/internal/domain"
)

// GenerateWordPair returns a target with its forbidden list. The text
// generator is asked first; a transport error or malformed output falls back
// to the local pipeline, and if that yields nothing usable, to FallbackPair.
func (s *Service) GenerateWordPair(ctx context.Context) domain.WordPair {
	if s.pairs != nil {
		pair, err := s.pairs.GeneratePair(ctx)
		switch {
		case err == nil:
			return pair
		case errors.Is(err, domain.ErrMalformedGeneration):
			s.log.WarnContext(ctx, "generated word pair rejected", slog.String("error", err.Error()))
		default:
			s.log.WarnContext(ctx, "word pair generation failed", slog.String("error", err.Error()))
		}
	}

	word, err := s.sampler.RandomWord(nil)
	if err != nil {
		s.log.WarnContext(ctx, "local target draw failed", slog.String("error", err.Error()))
		return FallbackPair()
	}
	list, _ := s.GenerateForbiddenList(ctx, ForbiddenInput{Word: word, OutK: -1})
	if len(list) == 0 {
		s.log.WarnContext(ctx, "local forbidden list empty", slog.String("word", word))
		return FallbackPair()
	}
	return domain.WordPair{Target: word, Forbidden: list, Source: SourceLocal}
}
