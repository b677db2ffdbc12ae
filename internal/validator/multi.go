package validator

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/heartmarshall/taboo-core/internal/domain"
)

// MultiAdjudicator runs several adjudicators concurrently and merges their
// findings in the order the adjudicators were given.
type MultiAdjudicator []Adjudicator

// Adjudicate implements Adjudicator.
func (m MultiAdjudicator) Adjudicate(ctx context.Context, target string, forbidden []string, description string) []domain.Finding {
	results := make([][]domain.Finding, len(m))
	var eg errgroup.Group
	for i, a := range m {
		if a == nil {
			continue
		}
		eg.Go(func() error {
			results[i] = a.Adjudicate(ctx, target, forbidden, description)
			return nil
		})
	}
	_ = eg.Wait()
	return Merge(results...)
}
