// Package llm talks to text generators (Ollama, Anthropic) and turns their
// untrusted output into phrase lists, findings and word pairs.
package llm

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Providers accepted by NewClient.
const (
	ProviderNone      = "none"
	ProviderOllama    = "ollama"
	ProviderAnthropic = "anthropic"
)

// GenerateOptions tunes one generation call.
type GenerateOptions struct {
	Temperature float64
	// JSON asks the backend to constrain output to JSON where it can.
	JSON      bool
	MaxTokens int
}

// Client is a text generator: one prompt in, one text blob out.
type Client interface {
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)
	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error
	Name() string
}

// Config holds text generator configuration.
type Config struct {
	Provider          string
	Endpoint          string
	Model             string
	APIKey            string
	Timeout           time.Duration
	NumCtx            int
	RequestsPerSecond float64
	Burst             int
}

// NewClient creates the client for cfg.Provider. ProviderNone returns nil.
func NewClient(cfg Config, logger *slog.Logger) (Client, error) {
	switch cfg.Provider {
	case ProviderNone, "":
		return nil, nil
	case ProviderOllama:
		return NewOllamaClient(cfg, logger), nil
	case ProviderAnthropic:
		return NewAnthropicClient(cfg, logger)
	default:
		return nil, fmt.Errorf("unsupported llm provider %q", cfg.Provider)
	}
}
