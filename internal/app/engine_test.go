package app

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/taboo-core/internal/config"
	"github.com/heartmarshall/taboo-core/internal/domain"
	"github.com/heartmarshall/taboo-core/internal/service/game"
	"github.com/heartmarshall/taboo-core/internal/transport/middleware"
)

var testWords = []string{
	"volcano", "mountain", "river", "forest", "island",
	"desert", "ocean", "valley", "glacier", "canyon",
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	var b strings.Builder
	b.WriteString("word,zipf\n")
	for _, w := range testWords {
		b.WriteString(w + ",4.0\n")
	}
	path := filepath.Join(t.TempDir(), "freq.csv")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))

	return &config.Config{
		Server: config.ServerConfig{ShutdownTimeout: time.Second},
		Vocabulary: config.VocabularyConfig{
			Path: path, TopN: 100, MinLen: 3, MaxLen: 14, MinZipf: 2.5, MaxZipf: 6.0, Seed: 7,
		},
		TextNorm:  config.TextNormConfig{Stemmer: "snowball"},
		Embedding: config.EmbeddingConfig{Provider: "hash", Dimension: 64, BatchSize: 4},
		Generator: config.GeneratorConfig{
			NeighborTopK: 5, OutK: 4, TauFloor: 0.30, TauAssoc: 0.35,
			MaxPhrasesPerSense: 4, MaxPhraseWords: 3, MMRLambda: 0.7, MMRPrefix: 128,
			WCos: 1, WSyn: 0.6, WAnt: 0.5, WLLM: 0.2, EnrichmentConcurrency: 2,
		},
		LLM:       config.LLMConfig{Provider: "none"},
		Validator: config.ValidatorConfig{LocalObfuscate: true, FuzzyThreshold: 0.92, MaxFindings: 10},
		Cache:     config.CacheConfig{ForbiddenListSize: 16},
		CORS:      config.CORSConfig{AllowedOrigins: "*", AllowedMethods: "GET,POST,OPTIONS", AllowedHeaders: "Content-Type"},
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine(context.Background(), testConfig(t), discardLogger())
	require.NoError(t, err)
	t.Cleanup(e.Close)
	return e
}

func TestNewEngine_WiresOfflineStack(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)

	assert.Nil(t, e.LLM)
	assert.Nil(t, e.Store)
	assert.Equal(t, len(testWords), e.Vocabulary.Len())
	assert.True(t, e.Validator.HasAdjudicator(), "local obfuscation adjudicator expected")
	assert.False(t, e.Index.Ready())

	require.NoError(t, e.Build(context.Background()))
	assert.True(t, e.Index.Ready())
	assert.Equal(t, len(testWords), e.Index.Len())
}

func TestNewEngine_MissingVocabulary(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	cfg.Vocabulary.Path = filepath.Join(t.TempDir(), "missing.csv")

	_, err := NewEngine(context.Background(), cfg, discardLogger())
	assert.Error(t, err)
}

func TestNewEngine_EmptyVocabulary(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	cfg.Vocabulary.MinZipf = 5.0

	_, err := NewEngine(context.Background(), cfg, discardLogger())
	assert.ErrorIs(t, err, domain.ErrEmptyVocabulary)
}

func TestNewEngine_RoundTrip(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	ctx := context.Background()
	require.NoError(t, e.Build(ctx))

	word, err := e.Game.GenerateTargetWord(ctx, game.TargetInput{Exclude: []string{"river"}})
	require.NoError(t, err)
	assert.Contains(t, testWords, word)
	assert.NotEqual(t, "river", word)

	list, err := e.Game.GenerateForbiddenList(ctx, game.ForbiddenInput{Word: "volcano", OutK: -1})
	require.NoError(t, err)
	assert.LessOrEqual(t, len(list), 4)
	assert.NotContains(t, list, "volcano")

	verdict, err := e.Game.CheckDescription(ctx, game.CheckDescriptionInput{
		Word:        "volcano",
		Description: "it is a volcano that spits v-o-l-c-a-n-o",
		Forbidden:   []string{},
	})
	require.NoError(t, err)
	assert.False(t, verdict.Valid)
	assert.Contains(t, verdict.Violations, domain.Finding{Span: "volcano", Rule: domain.RuleTargetStemForbidden})
}

func TestNewRouter(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	e, err := NewEngine(context.Background(), cfg, discardLogger())
	require.NoError(t, err)
	t.Cleanup(e.Close)

	limiter := middleware.NewRateLimiter(time.Minute)
	t.Cleanup(limiter.Stop)
	srv := httptest.NewServer(NewRouter(cfg, e, limiter, discardLogger()))
	t.Cleanup(srv.Close)

	resp, err := http.Get(srv.URL + "/ready")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode, "index not built yet")

	require.NoError(t, e.Build(context.Background()))

	resp, err = http.Get(srv.URL + "/ready")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(middleware.RequestIDHeader))

	resp, err = http.Post(srv.URL+"/api/v1/descriptions/check", "application/json",
		strings.NewReader(`{"word":"volcano","description":"a tall hill","forbidden":["lava"],"mode":"deterministic"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var verdict domain.Verdict
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&verdict))
	assert.True(t, verdict.Valid)
	assert.Empty(t, verdict.Violations)

	pairResp, err := http.Post(srv.URL+"/api/v1/words/pair", "application/json", nil)
	require.NoError(t, err)
	defer pairResp.Body.Close()
	require.Equal(t, http.StatusOK, pairResp.StatusCode)

	var pair domain.WordPair
	require.NoError(t, json.NewDecoder(pairResp.Body).Decode(&pair))
	assert.Contains(t, []string{game.SourceLocal, game.SourceFallback}, pair.Source)
	assert.NotEmpty(t, pair.Forbidden)

	badResp, err := http.Post(srv.URL+"/api/v1/words/forbidden", "application/json", strings.NewReader(`{"word":""}`))
	require.NoError(t, err)
	badResp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, badResp.StatusCode)
}
