package forbidden

import (
	"github.com/heartmarshall/taboo-core/internal/domain"
)

// pool is an insertion-ordered set of candidate lemmas with provenance.
type pool struct {
	order []string
	prov  map[string]domain.Provenance
}

func newPool() *pool {
	return &pool{prov: make(map[string]domain.Provenance)}
}

func (p *pool) add(lemma string, from domain.Provenance) {
	if lemma == "" {
		return
	}
	cur, ok := p.prov[lemma]
	if !ok {
		p.order = append(p.order, lemma)
	}
	p.prov[lemma] = cur | from
}

func (p *pool) len() int { return len(p.order) }

// candidate is a scored pool member.
type candidate struct {
	term    domain.Term
	cos     float32
	score   float64
	vec     []float32
	sources domain.Provenance
}
