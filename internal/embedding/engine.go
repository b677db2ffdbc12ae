// Package embedding turns text into fixed-dimension unit vectors.
// Backends: Ollama (local HTTP), Google GenAI (cloud) and a deterministic
// feature-hashing engine for tests and offline runs.
package embedding

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gonum.org/v1/gonum/blas/blas32"
)

// Providers accepted by NewEngine.
const (
	ProviderOllama = "ollama"
	ProviderGenAI  = "genai"
	ProviderHash   = "hash"
)

// Engine generates embeddings for text.
type Engine interface {
	// EmbedBatch returns one vector per text, in input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	// Dimensions returns the vector size, 0 while still unknown.
	Dimensions() int
	// Name identifies the backend and model.
	Name() string
}

// HealthChecker is implemented by engines that can verify reachability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Config holds embedding engine configuration.
type Config struct {
	Provider  string
	Endpoint  string
	Model     string
	APIKey    string
	Dimension int
	Timeout   time.Duration
}

// NewEngine creates an engine for cfg.Provider.
func NewEngine(ctx context.Context, cfg Config, logger *slog.Logger) (Engine, error) {
	switch cfg.Provider {
	case ProviderOllama:
		return NewOllamaEngine(cfg.Endpoint, cfg.Model, cfg.Dimension, cfg.Timeout, logger), nil
	case ProviderGenAI:
		return NewGenAIEngine(ctx, cfg.APIKey, cfg.Model, cfg.Dimension)
	case ProviderHash, "":
		return NewHashEngine(cfg.Dimension), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider %q", cfg.Provider)
	}
}

// Normalize scales v to unit L2 norm in place. A zero vector stays zero.
func Normalize(v []float32) []float32 {
	if len(v) == 0 {
		return v
	}
	bv := blas32.Vector{N: len(v), Inc: 1, Data: v}
	n := blas32.Nrm2(bv)
	if n == 0 {
		return v
	}
	blas32.Scal(1/n, bv)
	return v
}

// Dot returns the inner product of two equal-length vectors.
func Dot(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	return blas32.Dot(
		blas32.Vector{N: len(a), Inc: 1, Data: a},
		blas32.Vector{N: len(b), Inc: 1, Data: b},
	)
}
