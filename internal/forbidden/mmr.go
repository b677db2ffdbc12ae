package forbidden

import (
	"math"

	"github.com/heartmarshall/taboo-core/internal/embedding"
)

// selectMMR greedily picks up to outK candidates from ranked, maximizing
// lambda*score - (1-lambda)*maxSimToSelected. A candidate sharing any stem
// with an already selected one is never picked. Each step scans only the first
// prefix remaining candidates; when none of them is eligible the block is
// dropped and the scan moves to the next one.
func selectMMR(ranked []candidate, outK int, lambda float64, prefix int) []candidate {
	if outK <= 0 || len(ranked) == 0 {
		return nil
	}
	if prefix < 1 {
		prefix = 1
	}

	remaining := make([]int, len(ranked))
	for i := range remaining {
		remaining[i] = i
	}
	usedStems := make(map[string]struct{})
	var selected []int

	for len(remaining) > 0 && len(selected) < outK {
		bestPos, bestVal := -1, math.Inf(-1)
		head := remaining[:min(prefix, len(remaining))]

		for pos, i := range head {
			c := ranked[i]
			if c.term.SharesStem(usedStems) {
				continue
			}
			div := 0.0
			if len(selected) > 0 {
				div = math.Inf(-1)
				for _, s := range selected {
					div = max(div, float64(embedding.Dot(c.vec, ranked[s].vec)))
				}
			}
			val := lambda*c.score - (1-lambda)*div
			if val > bestVal {
				bestPos, bestVal = pos, val
			}
		}

		if bestPos < 0 {
			if len(remaining) > prefix {
				remaining = remaining[prefix:]
				continue
			}
			break
		}

		best := remaining[bestPos]
		selected = append(selected, best)
		for s := range ranked[best].term.StemBag {
			usedStems[s] = struct{}{}
		}
		remaining = append(remaining[:bestPos], remaining[bestPos+1:]...)
	}

	out := make([]candidate, len(selected))
	for i, s := range selected {
		out[i] = ranked[s]
	}
	return out
}
