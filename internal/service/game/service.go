// Package game exposes the three calls a game server needs from the engine:
// pick a target word, build its forbidden list and check descriptions.
package game

import (
	"context"
	"fmt"
	"log/slog"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/heartmarshall/taboo-core/internal/domain"
	"github.com/heartmarshall/taboo-core/internal/validator"
)

type wordSampler interface {
	RandomWord(exclude []string) (string, error)
}

type forbiddenGenerator interface {
	Generate(ctx context.Context, word string, outK int) ([]string, error)
}

type descriptionValidator interface {
	Check(ctx context.Context, word, description string, forbidden []string, mode validator.Mode) domain.Verdict
	CheckGuess(word, guess string) bool
}

type pairGenerator interface {
	GeneratePair(ctx context.Context) (domain.WordPair, error)
}

// Pair sources.
const (
	SourceLLM      = "llm"
	SourceLocal    = "local"
	SourceFallback = "fallback"
)

// FallbackPair is returned when neither the text generator nor the local
// pipeline produced a usable pair.
func FallbackPair() domain.WordPair {
	return domain.WordPair{
		Target:    "banana",
		Forbidden: []string{"fruit", "yellow", "peel", "monkey"},
		Source:    SourceFallback,
	}
}

// Config tunes the service.
type Config struct {
	// ForbiddenCacheSize is the number of forbidden lists kept in memory.
	// Zero disables the cache.
	ForbiddenCacheSize int
}

// Service is the game-facing surface of the engine.
type Service struct {
	log       *slog.Logger
	sampler   wordSampler
	generator forbiddenGenerator
	validator descriptionValidator
	pairs     pairGenerator
	lists     *lru.Cache[string, []string]
}

// NewService creates a game service. pairs may be nil, in which case word
// pairs always come from the local pipeline.
func NewService(
	logger *slog.Logger,
	cfg Config,
	sampler wordSampler,
	generator forbiddenGenerator,
	validator descriptionValidator,
	pairs pairGenerator,
) (*Service, error) {
	s := &Service{
		log:       logger.With("service", "game"),
		sampler:   sampler,
		generator: generator,
		validator: validator,
		pairs:     pairs,
	}
	if cfg.ForbiddenCacheSize > 0 {
		cache, err := lru.New[string, []string](cfg.ForbiddenCacheSize)
		if err != nil {
			return nil, fmt.Errorf("create forbidden list cache: %w", err)
		}
		s.lists = cache
	}
	return s, nil
}
