package config

import "time"

// Config is the root application configuration.
// Fields whose zero value is a meaningful setting carry no env-default tag;
// their defaults come from Defaults so that YAML can set them to zero.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Log        LogConfig        `yaml:"log"`
	Vocabulary VocabularyConfig `yaml:"vocabulary"`
	Lexicon    LexiconConfig    `yaml:"lexicon"`
	TextNorm   TextNormConfig   `yaml:"textnorm"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Generator  GeneratorConfig  `yaml:"generator"`
	LLM        LLMConfig        `yaml:"llm"`
	Validator  ValidatorConfig  `yaml:"validator"`
	Database   DatabaseConfig   `yaml:"database"`
	Cache      CacheConfig      `yaml:"cache"`
	RateLimit  RateLimitConfig  `yaml:"rate_limit"`
	CORS       CORSConfig       `yaml:"cors"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins   string `yaml:"allowed_origins"   env:"CORS_ALLOWED_ORIGINS"   env-default:"*"`
	AllowedMethods   string `yaml:"allowed_methods"   env:"CORS_ALLOWED_METHODS"   env-default:"GET,POST,OPTIONS"`
	AllowedHeaders   string `yaml:"allowed_headers"   env:"CORS_ALLOWED_HEADERS"   env-default:"Content-Type,X-Request-Id"`
	AllowCredentials bool   `yaml:"allow_credentials" env:"CORS_ALLOW_CREDENTIALS" env-default:"false"`
	MaxAge           int    `yaml:"max_age"           env:"CORS_MAX_AGE"           env-default:"86400"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"60s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
	WarmUp          bool          `yaml:"warm_up"          env:"SERVER_WARM_UP"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

// VocabularyConfig controls which corpus words become candidates.
type VocabularyConfig struct {
	Path    string  `yaml:"path"     env:"VOCAB_PATH"     env-required:"true"`
	TopN    int     `yaml:"top_n"    env:"VOCAB_TOP_N"    env-default:"200000"`
	MinLen  int     `yaml:"min_len"  env:"VOCAB_MIN_LEN"  env-default:"3"`
	MaxLen  int     `yaml:"max_len"  env:"VOCAB_MAX_LEN"  env-default:"14"`
	MinZipf float64 `yaml:"min_zipf" env:"VOCAB_MIN_ZIPF"`
	MaxZipf float64 `yaml:"max_zipf" env:"VOCAB_MAX_ZIPF" env-default:"6.0"`
	// Seed drives target word sampling. Zero seeds from the clock.
	Seed uint64 `yaml:"seed" env:"VOCAB_SEED" env-default:"0"`
}

// LexiconConfig points at the WordNet knowledge base. An empty path disables
// lexical expansion and lemmatization.
type LexiconConfig struct {
	WordNetPath string `yaml:"wordnet_path" env:"LEXICON_WORDNET_PATH"`
}

// TextNormConfig selects the stemming algorithm.
type TextNormConfig struct {
	Stemmer string `yaml:"stemmer" env:"TEXTNORM_STEMMER" env-default:"snowball"`
}

// EmbeddingConfig selects and configures the embedding model.
type EmbeddingConfig struct {
	Provider  string        `yaml:"provider"   env:"EMBEDDING_PROVIDER"   env-default:"hash"`
	Endpoint  string        `yaml:"endpoint"   env:"EMBEDDING_ENDPOINT"   env-default:"http://localhost:11434"`
	Model     string        `yaml:"model"      env:"EMBEDDING_MODEL"`
	APIKey    string        `yaml:"api_key"    env:"EMBEDDING_API_KEY"`
	Dimension int           `yaml:"dimension"  env:"EMBEDDING_DIMENSION"  env-default:"0"`
	Timeout   time.Duration `yaml:"timeout"    env:"EMBEDDING_TIMEOUT"    env-default:"30s"`
	BatchSize int           `yaml:"batch_size" env:"EMBEDDING_BATCH_SIZE" env-default:"256"`
}

// GeneratorConfig tunes forbidden list generation.
type GeneratorConfig struct {
	NeighborTopK          int     `yaml:"faiss_topk"               env:"GEN_NEIGHBOR_TOPK"           env-default:"200"`
	OutK                  int     `yaml:"out_k"                    env:"GEN_OUT_K"`
	TauFloor              float64 `yaml:"tau_floor"                env:"GEN_TAU_FLOOR"`
	TauAssoc              float64 `yaml:"tau_assoc"                env:"GEN_TAU_ASSOC"`
	MaxPhrasesPerSense    int     `yaml:"max_llm_terms_per_sense"  env:"GEN_MAX_LLM_TERMS_PER_SENSE" env-default:"4"`
	MaxPhraseWords        int     `yaml:"max_llm_phrase_words"     env:"GEN_MAX_LLM_PHRASE_WORDS"    env-default:"3"`
	MMRLambda             float64 `yaml:"mmr_lambda"               env:"GEN_MMR_LAMBDA"`
	MMRPrefix             int     `yaml:"mmr_prefix"               env:"GEN_MMR_PREFIX"              env-default:"128"`
	WCos                  float64 `yaml:"w_cos"                    env:"GEN_W_COS"`
	WSyn                  float64 `yaml:"w_syn"                    env:"GEN_W_SYN"`
	WAnt                  float64 `yaml:"w_ant"                    env:"GEN_W_ANT"`
	WLLM                  float64 `yaml:"w_llm"                    env:"GEN_W_LLM"`
	EnrichmentConcurrency int     `yaml:"enrichment_concurrency"   env:"GEN_ENRICHMENT_CONCURRENCY"  env-default:"2"`
}

// LLMConfig configures the optional text generator.
type LLMConfig struct {
	Provider          string        `yaml:"provider"            env:"LLM_PROVIDER"            env-default:"none"`
	Endpoint          string        `yaml:"endpoint"            env:"LLM_ENDPOINT"            env-default:"http://localhost:11434"`
	Model             string        `yaml:"model"               env:"LLM_MODEL"`
	APIKey            string        `yaml:"api_key"             env:"LLM_API_KEY"`
	Timeout           time.Duration `yaml:"timeout"             env:"LLM_TIMEOUT"             env-default:"45s"`
	Temperature       float64       `yaml:"temperature"         env:"LLM_TEMPERATURE"         env-default:"0.2"`
	NumCtx            int           `yaml:"num_ctx"             env:"LLM_NUM_CTX"             env-default:"2048"`
	RequestsPerSecond float64       `yaml:"requests_per_second" env:"LLM_REQUESTS_PER_SECOND" env-default:"0"`
	Burst             int           `yaml:"burst"               env:"LLM_BURST"               env-default:"1"`
	// WordPairs lets the text generator propose whole word pairs.
	WordPairs bool `yaml:"word_pairs" env:"LLM_WORD_PAIRS"`
}

// ValidatorConfig controls the semantic validation pass.
type ValidatorConfig struct {
	Semantic       bool    `yaml:"semantic"        env:"VALIDATOR_SEMANTIC"`
	LocalObfuscate bool    `yaml:"local_obfuscate" env:"VALIDATOR_LOCAL_OBFUSCATE"`
	MaxFindings    int     `yaml:"max_findings"    env:"VALIDATOR_MAX_FINDINGS"    env-default:"10"`
	FuzzyThreshold float64 `yaml:"fuzzy_threshold" env:"VALIDATOR_FUZZY_THRESHOLD" env-default:"0.92"`
}

// DatabaseConfig holds PostgreSQL connection settings. An empty DSN disables
// the persistent embedding cache.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"10"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"1"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
	Migrate         bool          `yaml:"migrate"            env:"DATABASE_MIGRATE"`
}

// Enabled reports whether a database is configured.
func (c DatabaseConfig) Enabled() bool { return c.DSN != "" }

// CacheConfig sizes in-memory caches.
type CacheConfig struct {
	ForbiddenListSize int `yaml:"forbidden_list_size" env:"CACHE_FORBIDDEN_LIST_SIZE"`
}

// RateLimitConfig holds per-IP request limits. Zero disables limiting.
type RateLimitConfig struct {
	PerMinute int `yaml:"per_minute" env:"RATE_LIMIT_PER_MINUTE"`
}
