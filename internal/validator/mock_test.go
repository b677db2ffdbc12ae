package validator

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"

	"github.com/heartmarshall/taboo-core/internal/domain"
	"github.com/heartmarshall/taboo-core/internal/textnorm"
)

type mockAdjudicator struct {
	AdjudicateFunc func(ctx context.Context, target string, forbidden []string, description string) []domain.Finding
	calls          atomic.Int32
}

func (m *mockAdjudicator) Adjudicate(ctx context.Context, target string, forbidden []string, description string) []domain.Finding {
	m.calls.Add(1)
	return m.AdjudicateFunc(ctx, target, forbidden, description)
}

func returning(findings ...domain.Finding) *mockAdjudicator {
	return &mockAdjudicator{AdjudicateFunc: func(context.Context, string, []string, string) []domain.Finding {
		return findings
	}}
}

type mapDict struct {
	lemmas     map[string]bool
	exceptions map[string][]string
}

func (d mapDict) IsLemma(form string) bool          { return d.lemmas[form] }
func (d mapDict) Exceptions(form string) []string { return d.exceptions[form] }

func testNormalizer() *textnorm.Normalizer {
	dict := mapDict{
		lemmas: map[string]bool{
			"volcano": true, "lava": true, "flow": true, "ring": true, "fire": true,
			"hill": true, "coast": true, "trail": true, "magma": true,
		},
		exceptions: map[string][]string{"volcanoes": {"volcano"}},
	}
	return textnorm.New(textnorm.SnowballStemmer{}, textnorm.NewLemmatizer(dict))
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func finding(span string, rule domain.RuleKind) domain.Finding {
	return domain.Finding{Span: span, Rule: rule}
}
