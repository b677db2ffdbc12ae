package llm

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const defaultAnthropicMaxTokens = 1024

// AnthropicClient generates text with the Anthropic Messages API.
type AnthropicClient struct {
	client  anthropic.Client
	model   string
	timeout time.Duration
	log     *slog.Logger
}

// NewAnthropicClient creates a client. Endpoint, when set, overrides the API
// base URL.
func NewAnthropicClient(cfg Config, logger *slog.Logger) (*AnthropicClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic: API key is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("anthropic: model is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 45 * time.Second
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(1),
	}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithBaseURL(cfg.Endpoint))
	}

	return &AnthropicClient{
		client:  anthropic.NewClient(opts...),
		model:   cfg.Model,
		timeout: timeout,
		log:     logger.With("adapter", "anthropic"),
	}, nil
}

// Generate sends the prompt as a single user message and returns the first
// text block of the reply.
func (c *AnthropicClient) Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultAnthropicMaxTokens
	}
	if opts.JSON {
		prompt += "\n\nOutput ONLY the JSON, no markdown, no explanations."
	}

	msg, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(c.model),
		MaxTokens:   int64(maxTokens),
		Temperature: anthropic.Float(opts.Temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic: messages: %w", err)
	}
	if len(msg.Content) == 0 {
		return "", fmt.Errorf("anthropic: empty response")
	}
	return msg.Content[0].Text, nil
}

// Ping issues a one-token request.
func (c *AnthropicClient) Ping(ctx context.Context) error {
	_, err := c.Generate(ctx, "ping", GenerateOptions{MaxTokens: 1})
	return err
}

func (c *AnthropicClient) Name() string { return "anthropic:" + c.model }
