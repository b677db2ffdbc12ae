// Package embeddingcache persists term embeddings per model so restarts do not
// re-embed the whole vocabulary.
package embeddingcache

import (
	"context"
	"fmt"
	"maps"
	"slices"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/heartmarshall/taboo-core/internal/adapter/postgres"
)

const (
	table = "embedding_cache"

	// readChunk bounds the terms sent in one ANY($n) lookup.
	readChunk = 5000
	// writeChunk bounds rows per INSERT; each row binds three parameters.
	writeChunk = 1000
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Repo provides embedding persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
	tx   *postgres.TxManager
}

// New creates a new embedding cache repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool, tx: postgres.NewTxManager(pool)}
}

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// GetEmbeddings returns the stored vectors of terms for model. Terms without a
// stored vector are absent from the result.
func (r *Repo) GetEmbeddings(ctx context.Context, model string, terms []string) (map[string][]float32, error) {
	out := make(map[string][]float32, len(terms))
	q := postgres.QuerierFromCtx(ctx, r.pool)

	for start := 0; start < len(terms); start += readChunk {
		chunk := terms[start:min(start+readChunk, len(terms))]

		query, args, err := psql.
			Select("term", "vector").
			From(table).
			Where(sq.Eq{"model": model}).
			Where(sq.Expr("term = ANY(?)", chunk)).
			ToSql()
		if err != nil {
			return nil, fmt.Errorf("build embedding select: %w", err)
		}

		rows, err := q.Query(ctx, query, args...)
		if err != nil {
			return nil, postgres.MapError(err, table, model)
		}
		for rows.Next() {
			var (
				term string
				vec  []float32
			)
			if err := rows.Scan(&term, &vec); err != nil {
				rows.Close()
				return nil, postgres.MapError(err, table, model)
			}
			out[term] = vec
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return nil, postgres.MapError(err, table, model)
		}
	}
	return out, nil
}

// Count returns the number of vectors stored for model.
func (r *Repo) Count(ctx context.Context, model string) (int, error) {
	query, args, err := psql.Select("count(*)").From(table).Where(sq.Eq{"model": model}).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build embedding count: %w", err)
	}

	var n int
	if err := postgres.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, postgres.MapError(err, table, model)
	}
	return n, nil
}

// Ping checks database connectivity.
func (r *Repo) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// PutEmbeddings stores vectors for model in one transaction. Vectors already
// stored for a term are kept as they are.
func (r *Repo) PutEmbeddings(ctx context.Context, model string, vectors map[string][]float32) error {
	if len(vectors) == 0 {
		return nil
	}
	terms := slices.Sorted(maps.Keys(vectors))
	return r.tx.RunInTx(ctx, func(ctx context.Context) error {
		return r.insert(ctx, model, terms, vectors)
	})
}

func (r *Repo) insert(ctx context.Context, model string, terms []string, vectors map[string][]float32) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	for start := 0; start < len(terms); start += writeChunk {
		insert := psql.Insert(table).Columns("model", "term", "vector")
		for _, t := range terms[start:min(start+writeChunk, len(terms))] {
			insert = insert.Values(model, t, vectors[t])
		}

		query, args, err := insert.Suffix("ON CONFLICT (model, term) DO NOTHING").ToSql()
		if err != nil {
			return fmt.Errorf("build embedding insert: %w", err)
		}
		if _, err := q.Exec(ctx, query, args...); err != nil {
			return postgres.MapError(err, table, model)
		}
	}
	return nil
}
