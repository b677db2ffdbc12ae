package game

import (
	"context"
	"log/slog"
	"time"

	"github.com/heartmarshall/taboo-core/internal/validator"
)

// WarmUp runs one full round through the engine so the first real request
// does not pay for cold caches. Failures are logged and otherwise ignored.
func (s *Service) WarmUp(ctx context.Context) {
	start := time.Now()

	word, err := s.sampler.RandomWord(nil)
	if err != nil {
		s.log.WarnContext(ctx, "warm-up skipped", slog.String("error", err.Error()))
		return
	}

	list, _ := s.GenerateForbiddenList(ctx, ForbiddenInput{Word: word, OutK: -1})
	verdict := s.validator.Check(ctx, word, "a short warm-up description of "+word, list, validator.ModeAuto)

	s.log.InfoContext(ctx, "warm-up done",
		slog.String("word", word),
		slog.Int("forbidden", len(list)),
		slog.Bool("valid", verdict.Valid),
		slog.Duration("took", time.Since(start)),
	)
}
