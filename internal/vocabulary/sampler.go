package vocabulary

import (
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/heartmarshall/taboo-core/internal/domain"
)

// Sampler draws random words from a Vocabulary. Two samplers with the same
// seed over the same vocabulary produce the same sequence of draws.
type Sampler struct {
	vocab *Vocabulary

	mu  sync.Mutex
	rng *rand.Rand
}

// NewSampler creates a seeded sampler.
func NewSampler(vocab *Vocabulary, seed uint64) *Sampler {
	return &Sampler{
		vocab: vocab,
		rng:   rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// RandomWord returns a uniformly chosen word that is not in exclude. Exclusions
// match case-insensitively and ignore surrounding whitespace. When
// exclude covers the whole vocabulary it returns domain.ErrExclusionsExhausted.
func (s *Sampler) RandomWord(exclude []string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(exclude) == 0 {
		return s.vocab.At(s.rng.IntN(s.vocab.Len())), nil
	}

	skip := make(map[string]struct{}, len(exclude))
	for _, w := range exclude {
		skip[domain.NormalizeText(w)] = struct{}{}
	}
	candidates := make([]string, 0, s.vocab.Len())
	for _, w := range s.vocab.words {
		if _, ok := skip[w]; !ok {
			candidates = append(candidates, w)
		}
	}
	if len(candidates) == 0 {
		return "", fmt.Errorf("exclude %d words: %w", len(exclude), domain.ErrExclusionsExhausted)
	}
	return candidates[s.rng.IntN(len(candidates))], nil
}

// Vocabulary returns the sampled vocabulary.
func (s *Sampler) Vocabulary() *Vocabulary { return s.vocab }
