package llm

import (
	"context"
	"io"
	"log/slog"
)

type mockClient struct {
	GenerateFunc func(ctx context.Context, prompt string, opts GenerateOptions) (string, error)
	PingFunc     func(ctx context.Context) error
}

func (m *mockClient) Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	return m.GenerateFunc(ctx, prompt, opts)
}

func (m *mockClient) Ping(ctx context.Context) error {
	if m.PingFunc == nil {
		return nil
	}
	return m.PingFunc(ctx)
}

func (m *mockClient) Name() string { return "mock" }

func replying(text string) *mockClient {
	return &mockClient{GenerateFunc: func(context.Context, string, GenerateOptions) (string, error) {
		return text, nil
	}}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
