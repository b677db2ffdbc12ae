package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	t.Parallel()

	c, err := NewClient(Config{Provider: ProviderNone}, discardLogger())
	require.NoError(t, err)
	assert.Nil(t, c)

	c, err = NewClient(Config{Provider: ProviderOllama, Model: "llama3.2:3b-instruct"}, discardLogger())
	require.NoError(t, err)
	assert.Equal(t, "ollama:llama3.2:3b-instruct", c.Name())

	_, err = NewClient(Config{Provider: ProviderAnthropic, Model: "m"}, discardLogger())
	assert.Error(t, err, "api key required")

	_, err = NewClient(Config{Provider: "openai"}, discardLogger())
	assert.Error(t, err)
}

func TestOllamaClient_Generate(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)

		var req ollamaGenerateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "phi3:mini", req.Model)
		assert.Equal(t, "list clues", req.Prompt)
		assert.False(t, req.Stream)
		assert.Equal(t, "json", req.Format)
		assert.Equal(t, 2048, req.Options.NumCtx)
		assert.InDelta(t, 0.2, req.Options.Temperature, 1e-9)

		_ = json.NewEncoder(w).Encode(ollamaGenerateResponse{Response: `["lava"]`})
	}))
	defer srv.Close()

	c := NewOllamaClient(Config{Endpoint: srv.URL, Model: "phi3:mini"}, discardLogger())
	out, err := c.Generate(context.Background(), "list clues", GenerateOptions{Temperature: 0.2, JSON: true})
	require.NoError(t, err)
	assert.Equal(t, `["lava"]`, out)
}

func TestOllamaClient_NoFormatWithoutJSON(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var raw map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		_, has := raw["format"]
		assert.False(t, has)
		_, _ = w.Write([]byte(`{"response":"ok"}`))
	}))
	defer srv.Close()

	c := NewOllamaClient(Config{Endpoint: srv.URL, Model: "m"}, discardLogger())
	_, err := c.Generate(context.Background(), "p", GenerateOptions{})
	require.NoError(t, err)
}

func TestOllamaClient_RetryThenFail(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewOllamaClient(Config{Endpoint: srv.URL, Model: "m"}, discardLogger())
	_, err := c.Generate(context.Background(), "p", GenerateOptions{})
	assert.Error(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestOllamaClient_Timeout(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c := NewOllamaClient(Config{Endpoint: srv.URL, Model: "m", Timeout: 50 * time.Millisecond}, discardLogger())
	start := time.Now()
	_, err := c.Generate(context.Background(), "p", GenerateOptions{})
	assert.Error(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestOllamaClient_Ping(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{"models":[]}`))
	}))
	defer srv.Close()

	assert.NoError(t, NewOllamaClient(Config{Endpoint: srv.URL}, discardLogger()).Ping(context.Background()))
	assert.Error(t, NewOllamaClient(Config{Endpoint: srv.URL + "/missing"}, discardLogger()).Ping(context.Background()))
}

func TestAnthropicClient_Generate(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/v1/messages"), r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-Api-Key"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "claude-test", body["model"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "msg_01",
			"type": "message",
			"role": "assistant",
			"model": "claude-test",
			"content": [{"type": "text", "text": "[\"lava\", \"crater\"]"}],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 10, "output_tokens": 5}
		}`))
	}))
	defer srv.Close()

	c, err := NewAnthropicClient(Config{APIKey: "test-key", Model: "claude-test", Endpoint: srv.URL}, discardLogger())
	require.NoError(t, err)

	out, err := c.Generate(context.Background(), "clues for volcano", GenerateOptions{JSON: true})
	require.NoError(t, err)
	assert.Equal(t, `["lava", "crater"]`, out)
	assert.Equal(t, "anthropic:claude-test", c.Name())
}
