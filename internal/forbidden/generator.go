// Package forbidden builds the list of giveaway terms a describer may not use
// for a target word: candidates from nearest neighbours, lexical expansion and
// generated phrases are scored, then diversified with stem-aware MMR.
package forbidden

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/heartmarshall/taboo-core/internal/domain"
	"github.com/heartmarshall/taboo-core/internal/embedding"
	"github.com/heartmarshall/taboo-core/internal/lexicon"
	"github.com/heartmarshall/taboo-core/internal/textnorm"
	"github.com/heartmarshall/taboo-core/internal/vectorindex"
)

type lexicalExpander interface {
	Expand(word string) (synonyms, antonyms map[string]lexicon.TermSet)
	Senses(word string) []domain.Sense
}

type semanticIndex interface {
	Search(ctx context.Context, queries []string, k int) ([][]float32, [][]int, error)
	Item(i int) string
	EncodeBatch(ctx context.Context, terms []string) ([][]float32, error)
}

type phraseProposer interface {
	ProposePhrases(ctx context.Context, word, gloss string, maxCount, maxWords int) []string
}

// Generator produces forbidden lists. It is safe for concurrent use.
type Generator struct {
	log      *slog.Logger
	cfg      Config
	norm     *textnorm.Normalizer
	lex      lexicalExpander
	index    semanticIndex
	proposer phraseProposer
}

// NewGenerator creates a Generator. lex and proposer may be nil.
func NewGenerator(
	logger *slog.Logger,
	cfg Config,
	norm *textnorm.Normalizer,
	lex lexicalExpander,
	index semanticIndex,
	proposer phraseProposer,
) *Generator {
	return &Generator{
		log:      logger.With("service", "forbidden"),
		cfg:      cfg,
		norm:     norm,
		lex:      lex,
		index:    index,
		proposer: proposer,
	}
}

// Config returns the generator tuning.
func (g *Generator) Config() Config { return g.cfg }

// Generate returns at most outK lemma-form terms for word, pairwise
// stem-disjoint and sharing no stem with word. A negative outK selects the
// configured default. An empty pool yields an empty list.
func (g *Generator) Generate(ctx context.Context, word string, outK int) ([]string, error) {
	start := time.Now()
	w := strings.ToLower(strings.TrimSpace(word))
	if outK < 0 {
		outK = g.cfg.OutK
	}
	if w == "" || outK == 0 {
		return []string{}, nil
	}

	var (
		senses   []domain.Sense
		syn, ant map[string]lexicon.TermSet
	)
	if g.lex != nil {
		senses = g.lex.Senses(w)
		syn, ant = g.lex.Expand(w)
	}

	queries := make([]string, 0, len(senses)+1)
	queries = append(queries, w)
	for _, s := range senses {
		queries = append(queries, w+" — "+s.Gloss)
	}

	p := newPool()
	for _, t := range g.neighbors(ctx, w, queries) {
		p.add(g.norm.Lemmatize(t), domain.FromNeighbor)
	}
	for _, t := range slices.Sorted(maps.Keys(lexicon.Flatten(syn))) {
		p.add(g.norm.Lemmatize(t), domain.FromSynonym)
	}
	for _, t := range slices.Sorted(maps.Keys(lexicon.Flatten(ant))) {
		p.add(g.norm.Lemmatize(t), domain.FromAntonym)
	}
	for _, t := range g.enrich(ctx, w, senses) {
		p.add(g.norm.Lemmatize(t), domain.FromEnrichment)
	}

	cands := g.prune(w, p)
	if len(cands) == 0 {
		g.log.InfoContext(ctx, "empty candidate pool", slog.String("word", w))
		return []string{}, nil
	}

	terms := make([]string, 0, len(cands)+1)
	terms = append(terms, w)
	for _, c := range cands {
		terms = append(terms, c.term.Lemma)
	}
	vecs, err := g.index.EncodeBatch(ctx, terms)
	if err != nil {
		return nil, fmt.Errorf("encode candidates for %q: %w", w, err)
	}
	for i := range cands {
		cands[i].vec = vecs[i+1]
		cands[i].cos = embedding.Dot(vecs[0], vecs[i+1])
	}

	ranked := rank(g.cfg, cands)
	chosen := selectMMR(ranked, outK, g.cfg.MMRLambda, g.cfg.MMRPrefix)

	out := make([]string, len(chosen))
	for i, c := range chosen {
		out[i] = c.term.Lemma
	}

	g.log.DebugContext(ctx, "forbidden list generated",
		slog.String("word", w),
		slog.Int("senses", len(senses)),
		slog.Int("pool", p.len()),
		slog.Int("ranked", len(ranked)),
		slog.Int("selected", len(out)),
		slog.Duration("took", time.Since(start)),
	)
	return out, nil
}

// neighbors returns the vocabulary items nearest to any query. Search
// failures degrade to no neighbours.
func (g *Generator) neighbors(ctx context.Context, w string, queries []string) []string {
	_, ids, err := g.index.Search(ctx, queries, g.cfg.NeighborTopK)
	if err != nil {
		g.log.WarnContext(ctx, "neighbour search failed", slog.String("word", w), slog.String("error", err.Error()))
		return nil
	}
	var out []string
	for _, row := range ids {
		for _, id := range row {
			if id == vectorindex.Missing {
				continue
			}
			if t := g.index.Item(id); t != "" {
				out = append(out, t)
			}
		}
	}
	return out
}

// enrich collects generated phrases per sense, keeping only short phrases
// similar enough to the target.
func (g *Generator) enrich(ctx context.Context, w string, senses []domain.Sense) []string {
	if g.proposer == nil {
		return nil
	}

	glosses := make([]string, 0, len(senses))
	for _, s := range senses {
		glosses = append(glosses, s.Gloss)
	}
	if len(glosses) == 0 {
		glosses = append(glosses, "")
	}

	results := make([][]string, len(glosses))
	var eg errgroup.Group
	eg.SetLimit(max(g.cfg.EnrichmentConcurrency, 1))
	for i, gloss := range glosses {
		eg.Go(func() error {
			results[i] = g.proposer.ProposePhrases(ctx, w, gloss, g.cfg.MaxPhrasesPerSense, g.cfg.MaxPhraseWords)
			return nil
		})
	}
	_ = eg.Wait()

	var props []string
	for _, r := range results {
		for _, t := range r {
			if n := len(g.norm.Tokenize(t)); n > 0 && n <= g.cfg.MaxPhraseWords {
				props = append(props, t)
			}
		}
	}
	if len(props) == 0 {
		return nil
	}

	vecs, err := g.index.EncodeBatch(ctx, append([]string{w}, props...))
	if err != nil {
		g.log.WarnContext(ctx, "encode generated phrases failed", slog.String("word", w), slog.String("error", err.Error()))
		return nil
	}
	kept := props[:0]
	for i, t := range props {
		if float64(embedding.Dot(vecs[0], vecs[i+1])) >= g.cfg.TauAssoc {
			kept = append(kept, t)
		}
	}
	return kept
}

// prune drops the target and every term sharing a stem with it.
func (g *Generator) prune(w string, p *pool) []candidate {
	target := g.norm.Term(w)
	cands := make([]candidate, 0, p.len())
	for _, lemma := range p.order {
		if lemma == w || lemma == target.Lemma {
			continue
		}
		t := g.norm.Term(lemma)
		if len(t.StemBag) == 0 || t.SharesStem(target.StemBag) {
			continue
		}
		cands = append(cands, candidate{term: t, sources: p.prov[lemma]})
	}
	return cands
}
