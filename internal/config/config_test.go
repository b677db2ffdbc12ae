package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// validEnv sets the minimum required env vars for a valid config.
func validEnv(t *testing.T) {
	t.Helper()
	t.Setenv("VOCAB_PATH", "/data/frequency.csv")
}

func writeYAML(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	return path
}

const validYAML = `
server:
  host: "127.0.0.1"
  port: 9090
  read_timeout: "5s"

log:
  level: "debug"
  format: "text"

vocabulary:
  path: "/data/frequency.csv"
  top_n: 50000
  min_len: 4
  max_len: 12
  seed: 42

lexicon:
  wordnet_path: "/data/english-wordnet.json"

textnorm:
  stemmer: "Porter2"

embedding:
  provider: "ollama"
  model: "nomic-embed-text"
  batch_size: 64

generator:
  faiss_topk: 100
  out_k: 12
  mmr_lambda: 0.5
  mmr_prefix: 64

llm:
  provider: "ollama"
  model: "llama3.1:8b"
  timeout: "20s"
  num_ctx: 4096

validator:
  semantic: false
  fuzzy_threshold: 0.9

database:
  dsn: "postgres://u:p@localhost:5432/taboo"
  max_conns: 4

cache:
  forbidden_list_size: 10
`

const zeroYAML = `
server:
  warm_up: false

vocabulary:
  path: "/data/frequency.csv"
  min_zipf: 0

generator:
  mmr_lambda: 0
  w_syn: 0

llm:
  word_pairs: false

validator:
  semantic: false
  local_obfuscate: false

database:
  migrate: false

cache:
  forbidden_list_size: 0

rate_limit:
  per_minute: 0
`

func TestLoad_ValidYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeYAML(t, dir, validYAML)
	t.Setenv("CONFIG_PATH", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Server
	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("server.host = %q, want %q", cfg.Server.Host, "127.0.0.1")
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("server.port = %d, want %d", cfg.Server.Port, 9090)
	}
	if cfg.Server.ReadTimeout != 5*time.Second {
		t.Errorf("server.read_timeout = %v, want %v", cfg.Server.ReadTimeout, 5*time.Second)
	}

	// Vocabulary
	if cfg.Vocabulary.TopN != 50000 {
		t.Errorf("vocabulary.top_n = %d, want 50000", cfg.Vocabulary.TopN)
	}
	if cfg.Vocabulary.MinLen != 4 || cfg.Vocabulary.MaxLen != 12 {
		t.Errorf("vocabulary length band = [%d, %d], want [4, 12]", cfg.Vocabulary.MinLen, cfg.Vocabulary.MaxLen)
	}
	if cfg.Vocabulary.MinZipf != 2.5 || cfg.Vocabulary.MaxZipf != 6.0 {
		t.Errorf("vocabulary zipf band = [%v, %v], want defaults [2.5, 6]", cfg.Vocabulary.MinZipf, cfg.Vocabulary.MaxZipf)
	}
	if cfg.Vocabulary.Seed != 42 {
		t.Errorf("vocabulary.seed = %d, want 42", cfg.Vocabulary.Seed)
	}

	// TextNorm is normalized by Validate.
	if cfg.TextNorm.Stemmer != "porter2" {
		t.Errorf("textnorm.stemmer = %q, want %q", cfg.TextNorm.Stemmer, "porter2")
	}

	// Embedding
	if cfg.Embedding.Provider != "ollama" || cfg.Embedding.Model != "nomic-embed-text" {
		t.Errorf("embedding = %s/%s", cfg.Embedding.Provider, cfg.Embedding.Model)
	}
	if cfg.Embedding.BatchSize != 64 {
		t.Errorf("embedding.batch_size = %d, want 64", cfg.Embedding.BatchSize)
	}

	// Generator
	if cfg.Generator.NeighborTopK != 100 {
		t.Errorf("generator.faiss_topk = %d, want 100", cfg.Generator.NeighborTopK)
	}
	if cfg.Generator.OutK != 12 {
		t.Errorf("generator.out_k = %d, want 12", cfg.Generator.OutK)
	}
	if cfg.Generator.MMRLambda != 0.5 || cfg.Generator.MMRPrefix != 64 {
		t.Errorf("generator mmr = %v/%d, want 0.5/64", cfg.Generator.MMRLambda, cfg.Generator.MMRPrefix)
	}
	if cfg.Generator.TauFloor != 0.30 || cfg.Generator.WSyn != 0.6 {
		t.Errorf("generator defaults not applied: tau_floor=%v w_syn=%v", cfg.Generator.TauFloor, cfg.Generator.WSyn)
	}

	// LLM
	if cfg.LLM.Timeout != 20*time.Second {
		t.Errorf("llm.timeout = %v, want 20s", cfg.LLM.Timeout)
	}
	if cfg.LLM.NumCtx != 4096 {
		t.Errorf("llm.num_ctx = %d, want 4096", cfg.LLM.NumCtx)
	}

	// Validator
	if cfg.Validator.Semantic {
		t.Error("validator.semantic should be false")
	}
	if !cfg.Validator.LocalObfuscate {
		t.Error("validator.local_obfuscate should default to true")
	}

	// Database
	if !cfg.Database.Enabled() {
		t.Error("database should be enabled")
	}
	if cfg.Database.MaxConns != 4 {
		t.Errorf("database.max_conns = %d, want 4", cfg.Database.MaxConns)
	}

	// Cache
	if cfg.Cache.ForbiddenListSize != 10 {
		t.Errorf("cache.forbidden_list_size = %d, want 10", cfg.Cache.ForbiddenListSize)
	}

	// Log
	if cfg.Log.Level != "debug" {
		t.Errorf("log.level = %q, want %q", cfg.Log.Level, "debug")
	}
	if cfg.Log.Format != "text" {
		t.Errorf("log.format = %q, want %q", cfg.Log.Format, "text")
	}
}

func TestLoad_YAMLZeroValuesKept(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CONFIG_PATH", writeYAML(t, dir, zeroYAML))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.WarmUp {
		t.Error("server.warm_up should be false")
	}
	if cfg.Vocabulary.MinZipf != 0 {
		t.Errorf("vocabulary.min_zipf = %v, want 0", cfg.Vocabulary.MinZipf)
	}
	if cfg.Generator.MMRLambda != 0 || cfg.Generator.WSyn != 0 {
		t.Errorf("generator mmr_lambda/w_syn = %v/%v, want 0/0", cfg.Generator.MMRLambda, cfg.Generator.WSyn)
	}
	if cfg.Generator.WAnt != 0.5 {
		t.Errorf("generator.w_ant = %v, want default 0.5", cfg.Generator.WAnt)
	}
	if cfg.LLM.WordPairs {
		t.Error("llm.word_pairs should be false")
	}
	if cfg.Validator.Semantic || cfg.Validator.LocalObfuscate {
		t.Error("validator passes should be disabled")
	}
	if cfg.Database.Migrate {
		t.Error("database.migrate should be false")
	}
	if cfg.Cache.ForbiddenListSize != 0 {
		t.Errorf("cache.forbidden_list_size = %d, want 0", cfg.Cache.ForbiddenListSize)
	}
	if cfg.RateLimit.PerMinute != 0 {
		t.Errorf("rate_limit.per_minute = %d, want 0", cfg.RateLimit.PerMinute)
	}
}

func TestLoad_ENVOverridesYAMLZero(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CONFIG_PATH", writeYAML(t, dir, zeroYAML))
	t.Setenv("VALIDATOR_SEMANTIC", "true")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "30")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.Validator.Semantic {
		t.Error("validator.semantic should be true (ENV override)")
	}
	if cfg.RateLimit.PerMinute != 30 {
		t.Errorf("rate_limit.per_minute = %d, want 30 (ENV override)", cfg.RateLimit.PerMinute)
	}
}

func TestLoad_ENVOverridesYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeYAML(t, dir, validYAML)
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("SERVER_PORT", "3000")
	t.Setenv("GEN_OUT_K", "8")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 3000 {
		t.Errorf("server.port = %d, want 3000 (ENV override)", cfg.Server.Port)
	}
	if cfg.Generator.OutK != 8 {
		t.Errorf("generator.out_k = %d, want 8 (ENV override)", cfg.Generator.OutK)
	}
}

func TestLoad_NoFile_ENVOnly(t *testing.T) {
	validEnv(t)

	t.Setenv("CONFIG_PATH", "")
	origDir, _ := os.Getwd()
	t.Cleanup(func() { _ = os.Chdir(origDir) })
	_ = os.Chdir(t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("server.port = %d, want 8080 (default)", cfg.Server.Port)
	}
	if cfg.Embedding.Provider != "hash" {
		t.Errorf("embedding.provider = %q, want hash (default)", cfg.Embedding.Provider)
	}
	if cfg.LLM.Provider != "none" {
		t.Errorf("llm.provider = %q, want none (default)", cfg.LLM.Provider)
	}
	if cfg.Database.Enabled() {
		t.Error("database should be disabled without a DSN")
	}
	if cfg.Generator.MMRPrefix != 128 {
		t.Errorf("generator.mmr_prefix = %d, want 128 (default)", cfg.Generator.MMRPrefix)
	}
	if !cfg.Server.WarmUp || !cfg.Validator.Semantic || !cfg.Database.Migrate {
		t.Error("boolean defaults not applied")
	}
	if cfg.RateLimit.PerMinute != 600 || cfg.Cache.ForbiddenListSize != 1024 {
		t.Errorf("rate_limit/cache = %d/%d, want 600/1024 (default)", cfg.RateLimit.PerMinute, cfg.Cache.ForbiddenListSize)
	}
	if cfg.Generator.OutK != 16 || cfg.Generator.MMRLambda != 0.7 {
		t.Errorf("generator out_k/mmr_lambda = %d/%v, want 16/0.7 (default)", cfg.Generator.OutK, cfg.Generator.MMRLambda)
	}
}

func TestLoad_MissingVocabularyPath(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("VOCAB_PATH", "")
	origDir, _ := os.Getwd()
	t.Cleanup(func() { _ = os.Chdir(origDir) })
	_ = os.Chdir(t.TempDir())

	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing vocabulary path")
	}
}

func TestLoad_ExplicitPathNotFound(t *testing.T) {
	t.Setenv("CONFIG_PATH", "/nonexistent/config.yaml")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeYAML(t, dir, "server: [unterminated")
	t.Setenv("CONFIG_PATH", path)

	if _, err := Load(); err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}

func TestValidate_Rejects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"min_len zero", func(c *Config) { c.Vocabulary.MinLen = 0 }, "min_len"},
		{"length band inverted", func(c *Config) { c.Vocabulary.MinLen, c.Vocabulary.MaxLen = 10, 5 }, "exceeds max_len"},
		{"zipf band inverted", func(c *Config) { c.Vocabulary.MinZipf, c.Vocabulary.MaxZipf = 7, 3 }, "exceeds max_zipf"},
		{"mmr_lambda above one", func(c *Config) { c.Generator.MMRLambda = 1.5 }, "mmr_lambda"},
		{"mmr_lambda negative", func(c *Config) { c.Generator.MMRLambda = -0.1 }, "mmr_lambda"},
		{"out_k negative", func(c *Config) { c.Generator.OutK = -1 }, "out_k"},
		{"mmr_prefix zero", func(c *Config) { c.Generator.MMRPrefix = 0 }, "mmr_prefix"},
		{"unknown stemmer", func(c *Config) { c.TextNorm.Stemmer = "lancaster" }, "textnorm.stemmer"},
		{"unknown embedding provider", func(c *Config) { c.Embedding.Provider = "openai" }, "embedding.provider"},
		{"unknown llm provider", func(c *Config) { c.LLM.Provider = "openai" }, "llm.provider"},
		{"genai without key", func(c *Config) { c.Embedding.Provider = "genai" }, "embedding.api_key"},
		{"anthropic without model", func(c *Config) { c.LLM.Provider, c.LLM.APIKey = "anthropic", "k" }, "llm.api_key"},
		{"fuzzy threshold zero", func(c *Config) { c.Validator.FuzzyThreshold = 0 }, "fuzzy_threshold"},
		{"negative cache", func(c *Config) { c.Cache.ForbiddenListSize = -1 }, "forbidden_list_size"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestValidate_ValidBoundaryValues(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Vocabulary.MinLen, cfg.Vocabulary.MaxLen = 1, 1
	cfg.Vocabulary.MinZipf, cfg.Vocabulary.MaxZipf = 3, 3
	cfg.Generator.MMRLambda = 1
	cfg.Generator.OutK = 0
	cfg.Generator.MMRPrefix = 1
	cfg.Validator.FuzzyThreshold = 1
	cfg.LLM.Provider = " Anthropic "
	cfg.LLM.APIKey, cfg.LLM.Model = "key", "claude"

	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.LLM.Provider != "anthropic" {
		t.Errorf("llm.provider = %q, want normalized %q", cfg.LLM.Provider, "anthropic")
	}
}

func validConfig() Config {
	return Config{
		Vocabulary: VocabularyConfig{Path: "words.csv", TopN: 200000, MinLen: 3, MaxLen: 14, MinZipf: 2.5, MaxZipf: 6},
		TextNorm:   TextNormConfig{Stemmer: "snowball"},
		Embedding:  EmbeddingConfig{Provider: "hash"},
		Generator: GeneratorConfig{
			NeighborTopK: 200, OutK: 16, TauFloor: 0.3, TauAssoc: 0.35,
			MaxPhrasesPerSense: 4, MaxPhraseWords: 3, MMRLambda: 0.7, MMRPrefix: 128,
			WCos: 1, WSyn: 0.6, WAnt: 0.5, WLLM: 0.2, EnrichmentConcurrency: 2,
		},
		LLM:       LLMConfig{Provider: "none"},
		Validator: ValidatorConfig{MaxFindings: 10, FuzzyThreshold: 0.92},
		Cache:     CacheConfig{ForbiddenListSize: 1024},
	}
}
