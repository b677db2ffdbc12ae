package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const defaultOllamaEndpoint = "http://localhost:11434"

// OllamaClient calls POST /api/generate on an Ollama server.
type OllamaClient struct {
	endpoint   string
	model      string
	numCtx     int
	timeout    time.Duration
	httpClient *http.Client
	limiter    *rate.Limiter
	log        *slog.Logger
}

// NewOllamaClient creates an Ollama client. RequestsPerSecond <= 0 disables
// throttling.
func NewOllamaClient(cfg Config, logger *slog.Logger) *OllamaClient {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = defaultOllamaEndpoint
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 45 * time.Second
	}
	numCtx := cfg.NumCtx
	if numCtx <= 0 {
		numCtx = 2048
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	return &OllamaClient{
		endpoint:   strings.TrimRight(endpoint, "/"),
		model:      cfg.Model,
		numCtx:     numCtx,
		timeout:    timeout,
		httpClient: &http.Client{},
		limiter:    limiter,
		log:        logger.With("adapter", "ollama"),
	}
}

type ollamaGenerateRequest struct {
	Model   string        `json:"model"`
	Prompt  string        `json:"prompt"`
	Stream  bool          `json:"stream"`
	Format  string        `json:"format,omitempty"`
	Options ollamaOptions `json:"options"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
	NumCtx      int     `json:"num_ctx"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type ollamaGenerateResponse struct {
	Response string `json:"response"`
}

// Generate sends one non-streaming generation request.
func (c *OllamaClient) Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("ollama: throttle: %w", err)
	}

	req := ollamaGenerateRequest{
		Model:  c.model,
		Prompt: prompt,
		Options: ollamaOptions{
			Temperature: opts.Temperature,
			NumCtx:      c.numCtx,
			NumPredict:  opts.MaxTokens,
		},
	}
	if opts.JSON {
		req.Format = "json"
	}
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("ollama: marshal request: %w", err)
	}

	start := time.Now()
	resp, err := c.doWithRetry(ctx, body)
	if err != nil {
		return "", fmt.Errorf("ollama: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("ollama: unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var out ollamaGenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("ollama: decode json: %w", err)
	}

	c.log.DebugContext(ctx, "ollama generate",
		slog.Int("prompt_len", len(prompt)),
		slog.Int("response_len", len(out.Response)),
		slog.Duration("took", time.Since(start)),
	)
	return out.Response, nil
}

// doWithRetry executes the request with a single retry on 5xx or network errors.
func (c *OllamaClient) doWithRetry(ctx context.Context, body []byte) (*http.Response, error) {
	do := func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/api/generate", bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return c.httpClient.Do(req)
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
	c.log.WarnContext(ctx, "ollama retry", slog.String("reason", reason))

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(500 * time.Millisecond):
	}
	return do()
}

// Ping checks GET /api/tags.
func (c *OllamaClient) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"/api/tags", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ollama: status %d", resp.StatusCode)
	}
	return nil
}

func (c *OllamaClient) Name() string { return "ollama:" + c.model }
