package game

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/heartmarshall/taboo-core/internal/domain"
)

// GenerateTargetWord draws a random vocabulary word not in the exclusions.
// It returns domain.ErrExclusionsExhausted when nothing is left.
func (s *Service) GenerateTargetWord(ctx context.Context, in TargetInput) (string, error) {
	if err := in.Validate(); err != nil {
		return "", err
	}

	word, err := s.sampler.RandomWord(in.Exclude)
	if err != nil {
		return "", fmt.Errorf("draw target word: %w", err)
	}

	s.log.DebugContext(ctx, "target word drawn", slog.String("word", word), slog.Int("excluded", len(in.Exclude)))
	return word, nil
}

// GenerateForbiddenList returns the forbidden list for a word. Generation
// failures are logged and yield an empty list so a round can always start.
func (s *Service) GenerateForbiddenList(ctx context.Context, in ForbiddenInput) ([]string, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	word := domain.NormalizeText(in.Word)

	key := word + ":" + strconv.Itoa(max(in.OutK, -1))
	if s.lists != nil {
		if list, ok := s.lists.Get(key); ok {
			return append([]string(nil), list...), nil
		}
	}

	list, err := s.generator.Generate(ctx, word, in.OutK)
	if err != nil {
		s.log.WarnContext(ctx, "forbidden list generation failed",
			slog.String("word", word),
			slog.String("error", err.Error()),
		)
		return []string{}, nil
	}
	if list == nil {
		list = []string{}
	}

	if s.lists != nil {
		s.lists.Add(key, append([]string(nil), list...))
	}
	return list, nil
}
