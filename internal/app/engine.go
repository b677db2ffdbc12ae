package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartmarshall/taboo-core/internal/adapter/postgres"
	"github.com/heartmarshall/taboo-core/internal/adapter/postgres/embeddingcache"
	"github.com/heartmarshall/taboo-core/internal/config"
	"github.com/heartmarshall/taboo-core/internal/domain"
	"github.com/heartmarshall/taboo-core/internal/embedding"
	"github.com/heartmarshall/taboo-core/internal/forbidden"
	"github.com/heartmarshall/taboo-core/internal/lexicon"
	"github.com/heartmarshall/taboo-core/internal/llm"
	"github.com/heartmarshall/taboo-core/internal/semantic"
	"github.com/heartmarshall/taboo-core/internal/service/game"
	"github.com/heartmarshall/taboo-core/internal/textnorm"
	"github.com/heartmarshall/taboo-core/internal/validator"
	"github.com/heartmarshall/taboo-core/internal/vocabulary"
)

// Local views of optional collaborators. A nil value of these types converts
// to a nil interface in the consuming package.
type (
	phraseProposer interface {
		ProposePhrases(ctx context.Context, word, gloss string, maxCount, maxWords int) []string
	}
	pairGenerator interface {
		GeneratePair(ctx context.Context) (domain.WordPair, error)
	}
)

// Engine is the fully wired generation and validation stack.
type Engine struct {
	Vocabulary *vocabulary.Vocabulary
	Sampler    *vocabulary.Sampler
	Normalizer *textnorm.Normalizer
	Index      *semantic.Index
	Generator  *forbidden.Generator
	Validator  *validator.Validator
	Game       *game.Service

	// LLM is nil when no text generator is configured.
	LLM llm.Client
	// Store is nil when no database is configured.
	Store *embeddingcache.Repo

	log  *slog.Logger
	pool *pgxpool.Pool
}

// NewEngine wires every component from cfg. The semantic index is created
// empty; call Build before serving generation requests.
func NewEngine(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Engine, error) {
	e := &Engine{log: logger}

	freq, err := vocabulary.LoadCSV(cfg.Vocabulary.Path)
	if err != nil {
		return nil, fmt.Errorf("load frequency list: %w", err)
	}
	e.Vocabulary, err = vocabulary.Build(freq, vocabulary.Options{
		TopN:    cfg.Vocabulary.TopN,
		MinLen:  cfg.Vocabulary.MinLen,
		MaxLen:  cfg.Vocabulary.MaxLen,
		MinZipf: cfg.Vocabulary.MinZipf,
		MaxZipf: cfg.Vocabulary.MaxZipf,
	})
	if err != nil {
		return nil, err
	}
	seed := cfg.Vocabulary.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	e.Sampler = vocabulary.NewSampler(e.Vocabulary, seed)
	logger.Info("vocabulary loaded", slog.Int("words", e.Vocabulary.Len()))

	stemmer, err := textnorm.NewStemmer(cfg.TextNorm.Stemmer)
	if err != nil {
		return nil, err
	}

	expander := lexicon.NewExpander(logger, nil)
	var lemmatizer *textnorm.Lemmatizer
	if path := cfg.Lexicon.WordNetPath; path != "" {
		kb, err := lexicon.Load(path)
		if err != nil {
			return nil, fmt.Errorf("load wordnet %s: %w", path, err)
		}
		st := kb.Stats()
		logger.Info("wordnet loaded",
			slog.Int("entries", st.Entries),
			slog.Int("synsets", st.Synsets),
			slog.Int("lemmas", st.Lemmas),
		)
		expander = lexicon.NewExpander(logger, kb)
		lemmatizer = textnorm.NewLemmatizer(kb)
	} else {
		logger.Warn("no wordnet configured, lexical expansion and lemmatization disabled")
	}
	e.Normalizer = textnorm.New(stemmer, lemmatizer)

	engine, err := embedding.NewEngine(ctx, embedding.Config{
		Provider:  cfg.Embedding.Provider,
		Endpoint:  cfg.Embedding.Endpoint,
		Model:     cfg.Embedding.Model,
		APIKey:    cfg.Embedding.APIKey,
		Dimension: cfg.Embedding.Dimension,
		Timeout:   cfg.Embedding.Timeout,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("create embedding engine: %w", err)
	}

	opts := []semantic.Option{semantic.WithBatchSize(cfg.Embedding.BatchSize)}
	if cfg.Database.Enabled() {
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		e.pool = pool
		if cfg.Database.Migrate {
			if err := postgres.Migrate(ctx, pool, logger); err != nil {
				pool.Close()
				return nil, fmt.Errorf("migrate: %w", err)
			}
		}
		e.Store = embeddingcache.New(pool)
		opts = append(opts, semantic.WithStore(e.Store))
	}
	e.Index = semantic.NewIndex(logger, engine, opts...)

	e.LLM, err = llm.NewClient(llm.Config{
		Provider:          cfg.LLM.Provider,
		Endpoint:          cfg.LLM.Endpoint,
		Model:             cfg.LLM.Model,
		APIKey:            cfg.LLM.APIKey,
		Timeout:           cfg.LLM.Timeout,
		NumCtx:            cfg.LLM.NumCtx,
		RequestsPerSecond: cfg.LLM.RequestsPerSecond,
		Burst:             cfg.LLM.Burst,
	}, logger)
	if err != nil {
		e.Close()
		return nil, fmt.Errorf("create text generator: %w", err)
	}

	var (
		proposer phraseProposer
		pairs    pairGenerator
		adjs     validator.MultiAdjudicator
	)
	if cfg.Validator.LocalObfuscate {
		adjs = append(adjs, validator.NewLocalAdjudicator(e.Normalizer, cfg.Validator.FuzzyThreshold))
	}
	if e.LLM != nil {
		proposer = llm.NewPhraseProposer(logger, e.LLM, cfg.LLM.Temperature)
		if cfg.Validator.Semantic {
			adjs = append(adjs, llm.NewAdjudicator(logger, e.LLM, cfg.Validator.MaxFindings))
		}
		if cfg.LLM.WordPairs {
			pairs = llm.NewPairGenerator(e.LLM)
		}
	}

	var adj validator.Adjudicator
	switch len(adjs) {
	case 0:
	case 1:
		adj = adjs[0]
	default:
		adj = adjs
	}

	e.Generator = forbidden.NewGenerator(logger, generatorConfig(cfg.Generator), e.Normalizer, expander, e.Index, proposer)
	e.Validator = validator.New(logger, e.Normalizer, adj)

	e.Game, err = game.NewService(logger, game.Config{ForbiddenCacheSize: cfg.Cache.ForbiddenListSize},
		e.Sampler, e.Generator, e.Validator, pairs)
	if err != nil {
		e.Close()
		return nil, err
	}

	logger.Info("engine wired",
		slog.String("embedding", engine.Name()),
		slog.String("llm", llmName(e.LLM)),
		slog.Bool("adjudicator", adj != nil),
		slog.Bool("embedding_cache", e.Store != nil),
	)
	return e, nil
}

// Build embeds the vocabulary into the semantic index.
func (e *Engine) Build(ctx context.Context) error {
	return e.Index.Build(ctx, e.Vocabulary.Words())
}

// Close releases the database pool, if any.
func (e *Engine) Close() {
	if e.pool != nil {
		e.pool.Close()
		e.pool = nil
	}
}

func generatorConfig(c config.GeneratorConfig) forbidden.Config {
	return forbidden.Config{
		NeighborTopK:          c.NeighborTopK,
		OutK:                  c.OutK,
		TauFloor:              c.TauFloor,
		TauAssoc:              c.TauAssoc,
		MaxPhrasesPerSense:    c.MaxPhrasesPerSense,
		MaxPhraseWords:        c.MaxPhraseWords,
		MMRLambda:             c.MMRLambda,
		MMRPrefix:             c.MMRPrefix,
		WCos:                  c.WCos,
		WSyn:                  c.WSyn,
		WAnt:                  c.WAnt,
		WLLM:                  c.WLLM,
		EnrichmentConcurrency: c.EnrichmentConcurrency,
	}
}

func llmName(c llm.Client) string {
	if c == nil {
		return llm.ProviderNone
	}
	return c.Name()
}
