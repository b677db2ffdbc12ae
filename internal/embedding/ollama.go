package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"
	"time"
)

const (
	defaultOllamaEndpoint = "http://localhost:11434"
	defaultOllamaModel    = "all-minilm"
)

// OllamaEngine embeds text through a local Ollama server (POST /api/embed).
type OllamaEngine struct {
	endpoint   string
	model      string
	httpClient *http.Client
	log        *slog.Logger
	dims       atomic.Int64
}

// NewOllamaEngine creates an Ollama engine. A zero dims is learned from the
// first response.
func NewOllamaEngine(endpoint, model string, dims int, timeout time.Duration, logger *slog.Logger) *OllamaEngine {
	if endpoint == "" {
		endpoint = defaultOllamaEndpoint
	}
	if model == "" {
		model = defaultOllamaModel
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	e := &OllamaEngine{
		endpoint:   strings.TrimRight(endpoint, "/"),
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
		log:        logger.With("adapter", "ollama_embed"),
	}
	e.dims.Store(int64(dims))
	return e
}

type ollamaEmbedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type ollamaEmbedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

// EmbedBatch embeds texts in a single request and normalizes the result.
func (e *OllamaEngine) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	body, err := json.Marshal(ollamaEmbedRequest{Model: e.model, Input: texts})
	if err != nil {
		return nil, fmt.Errorf("ollama embed: marshal request: %w", err)
	}

	resp, err := e.doWithRetry(ctx, body, len(texts))
	if err != nil {
		return nil, fmt.Errorf("ollama embed: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("ollama embed: unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var result ollamaEmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("ollama embed: decode json: %w", err)
	}
	if len(result.Embeddings) != len(texts) {
		return nil, fmt.Errorf("ollama embed: got %d embeddings for %d texts", len(result.Embeddings), len(texts))
	}

	for i, v := range result.Embeddings {
		if err := e.checkDims(len(v)); err != nil {
			return nil, fmt.Errorf("ollama embed: text %d: %w", i, err)
		}
		Normalize(v)
	}
	return result.Embeddings, nil
}

func (e *OllamaEngine) checkDims(n int) error {
	if n == 0 {
		return fmt.Errorf("empty embedding")
	}
	if e.dims.CompareAndSwap(0, int64(n)) {
		return nil
	}
	if want := e.dims.Load(); want != int64(n) {
		return fmt.Errorf("dimension %d, want %d", n, want)
	}
	return nil
}

// doWithRetry executes the request with a single retry on 5xx or network errors.
func (e *OllamaEngine) doWithRetry(ctx context.Context, body []byte, n int) (*http.Response, error) {
	do := func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint+"/api/embed", bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return e.httpClient.Do(req)
	}

	resp, err := do()
	shouldRetry := err != nil || (resp != nil && resp.StatusCode >= 500)
	if !shouldRetry || ctx.Err() != nil {
		return resp, err
	}

	reason := "network error"
	if err == nil {
		reason = fmt.Sprintf("status %d", resp.StatusCode)
		resp.Body.Close()
	}
	e.log.WarnContext(ctx, "ollama embed retry", slog.Int("texts", n), slog.String("reason", reason))

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(500 * time.Millisecond):
	}
	return do()
}

// HealthCheck verifies the server answers GET /api/tags.
func (e *OllamaEngine) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.endpoint+"/api/tags", nil)
	if err != nil {
		return err
	}
	resp, err := e.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ollama: status %d", resp.StatusCode)
	}
	return nil
}

func (e *OllamaEngine) Dimensions() int { return int(e.dims.Load()) }

func (e *OllamaEngine) Name() string { return "ollama:" + e.model }
