package forbidden

import (
	"context"
	"io"
	"log/slog"
	"math"

	"github.com/heartmarshall/taboo-core/internal/domain"
	"github.com/heartmarshall/taboo-core/internal/lexicon"
	"github.com/heartmarshall/taboo-core/internal/textnorm"
)

type mockExpander struct {
	ExpandFunc func(word string) (map[string]lexicon.TermSet, map[string]lexicon.TermSet)
	SensesFunc func(word string) []domain.Sense
}

func (m *mockExpander) Expand(word string) (map[string]lexicon.TermSet, map[string]lexicon.TermSet) {
	return m.ExpandFunc(word)
}
func (m *mockExpander) Senses(word string) []domain.Sense { return m.SensesFunc(word) }

type mockIndex struct {
	SearchFunc      func(ctx context.Context, queries []string, k int) ([][]float32, [][]int, error)
	ItemFunc        func(i int) string
	EncodeBatchFunc func(ctx context.Context, terms []string) ([][]float32, error)
}

func (m *mockIndex) Search(ctx context.Context, queries []string, k int) ([][]float32, [][]int, error) {
	return m.SearchFunc(ctx, queries, k)
}
func (m *mockIndex) Item(i int) string { return m.ItemFunc(i) }
func (m *mockIndex) EncodeBatch(ctx context.Context, terms []string) ([][]float32, error) {
	return m.EncodeBatchFunc(ctx, terms)
}

type mockProposer struct {
	ProposePhrasesFunc func(ctx context.Context, word, gloss string, maxCount, maxWords int) []string
}

func (m *mockProposer) ProposePhrases(ctx context.Context, word, gloss string, maxCount, maxWords int) []string {
	return m.ProposePhrasesFunc(ctx, word, gloss, maxCount, maxWords)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testNormalizer() *textnorm.Normalizer {
	return textnorm.New(textnorm.SnowballStemmer{}, nil)
}

const testDims = 32

// space places every known term at a fixed cosine to the target, each term on
// its own orthogonal axis otherwise. Unknown terms are orthogonal to all.
type space struct {
	target string
	cos    map[string]float64
	axis   map[string]int
}

func newSpace(target string, cos map[string]float64) *space {
	s := &space{target: target, cos: cos, axis: make(map[string]int)}
	return s
}

func (s *space) vec(term string) []float32 {
	v := make([]float32, testDims)
	if term == s.target {
		v[0] = 1
		return v
	}
	ax, ok := s.axis[term]
	if !ok {
		ax = 1 + len(s.axis)%(testDims-1)
		s.axis[term] = ax
	}
	c := s.cos[term]
	v[0] = float32(c)
	v[ax] = float32(math.Sqrt(1 - c*c))
	return v
}

func (s *space) encode(_ context.Context, terms []string) ([][]float32, error) {
	out := make([][]float32, len(terms))
	for i, t := range terms {
		out[i] = s.vec(t)
	}
	return out, nil
}

// indexOver returns a mock index whose every query retrieves all items.
func indexOver(items []string, s *space) *mockIndex {
	return &mockIndex{
		SearchFunc: func(_ context.Context, queries []string, k int) ([][]float32, [][]int, error) {
			ids := make([][]int, len(queries))
			for q := range queries {
				row := make([]int, k)
				for i := range row {
					row[i] = -1
					if i < len(items) {
						row[i] = i
					}
				}
				ids[q] = row
			}
			return make([][]float32, len(queries)), ids, nil
		},
		ItemFunc: func(i int) string {
			if i < 0 || i >= len(items) {
				return ""
			}
			return items[i]
		},
		EncodeBatchFunc: s.encode,
	}
}
