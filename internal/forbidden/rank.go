package forbidden

import (
	"sort"

	"github.com/heartmarshall/taboo-core/internal/domain"
)

// rank scores candidates against the target and sorts them, best first.
// Candidates below the similarity floor are dropped unless they are antonyms.
// Ties keep pool order.
func rank(cfg Config, cands []candidate) []candidate {
	kept := cands[:0]
	for _, c := range cands {
		if float64(c.cos) < cfg.TauFloor && !c.sources.Has(domain.FromAntonym) {
			continue
		}
		c.score = cfg.WCos*float64(c.cos) +
			cfg.WSyn*indicator(c.sources.Has(domain.FromSynonym)) +
			cfg.WAnt*indicator(c.sources.Has(domain.FromAntonym)) +
			cfg.WLLM*indicator(c.sources.Has(domain.FromEnrichment))
		kept = append(kept, c)
	}
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].score > kept[j].score })
	return kept
}

func indicator(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
