// Package semantic embeds the vocabulary and arbitrary terms into one vector
// space and answers nearest-neighbour queries over the vocabulary.
package semantic

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/heartmarshall/taboo-core/internal/embedding"
	"github.com/heartmarshall/taboo-core/internal/vectorindex"
)

// ErrNotBuilt is returned by Search before Build completes.
var ErrNotBuilt = errors.New("semantic index is not built")

// Store persists embeddings across restarts. Implementations may fail; the
// index logs and carries on.
type Store interface {
	GetEmbeddings(ctx context.Context, model string, terms []string) (map[string][]float32, error)
	PutEmbeddings(ctx context.Context, model string, vectors map[string][]float32) error
}

// Option configures an Index.
type Option func(*Index)

// WithStore attaches a persistent embedding store.
func WithStore(s Store) Option { return func(ix *Index) { ix.store = s } }

// WithBatchSize sets how many texts go into one engine call.
func WithBatchSize(n int) Option {
	return func(ix *Index) {
		if n > 0 {
			ix.batchSize = n
		}
	}
}

// Index is the semantic index service. Build it once at startup and share it.
type Index struct {
	log       *slog.Logger
	engine    embedding.Engine
	store     Store
	batchSize int

	cache  *cache
	flight singleflight.Group

	mu    sync.RWMutex
	items []string
	ann   *vectorindex.Flat

	ready atomic.Bool
}

// NewIndex creates an unbuilt index over engine.
func NewIndex(logger *slog.Logger, engine embedding.Engine, opts ...Option) *Index {
	ix := &Index{
		log:       logger.With("service", "semantic"),
		engine:    engine,
		batchSize: 256,
		cache:     newCache(),
	}
	for _, o := range opts {
		o(ix)
	}
	return ix
}

// Build embeds every vocabulary term and loads the vectors into the ANN store.
// Item ids follow the order of vocab.
func (ix *Index) Build(ctx context.Context, vocab []string) error {
	start := time.Now()

	vecs, err := ix.EncodeBatch(ctx, vocab)
	if err != nil {
		return fmt.Errorf("build semantic index: %w", err)
	}

	dim := ix.engine.Dimensions()
	if len(vecs) > 0 {
		dim = len(vecs[0])
	}
	ann := vectorindex.NewFlat(dim)
	if err := ann.Add(vecs); err != nil {
		return fmt.Errorf("build semantic index: %w", err)
	}

	ix.mu.Lock()
	ix.items = append([]string(nil), vocab...)
	ix.ann = ann
	ix.mu.Unlock()
	ix.ready.Store(true)

	ix.log.InfoContext(ctx, "semantic index built",
		slog.Int("items", len(vocab)),
		slog.Int("dim", dim),
		slog.String("engine", ix.engine.Name()),
		slog.Duration("took", time.Since(start)),
	)
	return nil
}

// Ready reports whether Build completed.
func (ix *Index) Ready() bool { return ix.ready.Load() }

// Len returns the number of indexed items.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.items)
}

// Item returns the vocabulary term with id i, "" for Missing or out of range.
func (ix *Index) Item(i int) string {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	if i < 0 || i >= len(ix.items) {
		return ""
	}
	return ix.items[i]
}

// CacheSize returns the number of memoized embeddings.
func (ix *Index) CacheSize() int { return ix.cache.len() }

// Search returns the top-k vocabulary items for every query string. Empty
// slots carry vectorindex.Missing.
func (ix *Index) Search(ctx context.Context, queries []string, k int) ([][]float32, [][]int, error) {
	ix.mu.RLock()
	ann := ix.ann
	ix.mu.RUnlock()
	if ann == nil {
		return nil, nil, ErrNotBuilt
	}

	qv, err := ix.EncodeBatch(ctx, queries)
	if err != nil {
		return nil, nil, fmt.Errorf("encode queries: %w", err)
	}
	return ann.Search(qv, k)
}

// Encode returns the memoized unit vector of term.
func (ix *Index) Encode(ctx context.Context, term string) ([]float32, error) {
	if v, ok := ix.cache.get(term); ok {
		return v, nil
	}
	v, err, _ := ix.flight.Do(term, func() (any, error) {
		vecs, err := ix.EncodeBatch(ctx, []string{term})
		if err != nil {
			return nil, err
		}
		return vecs[0], nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]float32), nil
}

// EncodeBatch returns one unit vector per term, consulting the memo, then the
// persistent store, then the engine.
func (ix *Index) EncodeBatch(ctx context.Context, terms []string) ([][]float32, error) {
	out := make([][]float32, len(terms))

	var misses []string
	seen := make(map[string]struct{})
	for i, t := range terms {
		if v, ok := ix.cache.get(t); ok {
			out[i] = v
			continue
		}
		if _, dup := seen[t]; !dup {
			seen[t] = struct{}{}
			misses = append(misses, t)
		}
	}

	if len(misses) > 0 {
		if err := ix.fill(ctx, misses); err != nil {
			return nil, err
		}
		for i, t := range terms {
			if out[i] == nil {
				v, _ := ix.cache.get(t)
				out[i] = v
			}
		}
	}
	return out, nil
}

// storeKey names the vector space in the persistent store. Changing the
// dimension of the same model gives a different key.
func (ix *Index) storeKey() string {
	if d := ix.engine.Dimensions(); d > 0 {
		return ix.engine.Name() + ":" + strconv.Itoa(d)
	}
	return ix.engine.Name()
}

func (ix *Index) fill(ctx context.Context, terms []string) error {
	model := ix.storeKey()
	dims := ix.engine.Dimensions()
	pending := terms

	if ix.store != nil {
		found, err := ix.store.GetEmbeddings(ctx, model, terms)
		if err != nil {
			ix.log.WarnContext(ctx, "embedding store read failed", slog.String("error", err.Error()))
		}
		if len(found) > 0 {
			pending = pending[:0:0]
			for _, t := range terms {
				if v, ok := found[t]; ok && (dims == 0 || len(v) == dims) {
					ix.cache.put(t, v)
				} else {
					pending = append(pending, t)
				}
			}
		}
	}

	for start := 0; start < len(pending); start += ix.batchSize {
		chunk := pending[start:min(start+ix.batchSize, len(pending))]
		vecs, err := ix.engine.EmbedBatch(ctx, chunk)
		if err != nil {
			return fmt.Errorf("embed %d terms: %w", len(chunk), err)
		}
		if len(vecs) != len(chunk) {
			return fmt.Errorf("embed %d terms: engine returned %d vectors", len(chunk), len(vecs))
		}

		fresh := make(map[string][]float32, len(chunk))
		for i, t := range chunk {
			ix.cache.put(t, vecs[i])
			fresh[t] = vecs[i]
		}
		if ix.store != nil {
			if err := ix.store.PutEmbeddings(ctx, model, fresh); err != nil {
				ix.log.WarnContext(ctx, "embedding store write failed", slog.String("error", err.Error()))
			}
		}
	}
	return nil
}

// Similarity returns the cosine similarity of two terms.
func (ix *Index) Similarity(ctx context.Context, a, b string) (float32, error) {
	vecs, err := ix.EncodeBatch(ctx, []string{a, b})
	if err != nil {
		return 0, err
	}
	return embedding.Dot(vecs[0], vecs[1]), nil
}
