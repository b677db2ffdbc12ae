package textnorm

import (
	"fmt"

	"github.com/kljensen/snowball"
	"github.com/surgebase/porter2"
)

// Stemming algorithms accepted by NewStemmer.
const (
	AlgorithmSnowball = "snowball"
	AlgorithmPorter2  = "porter2"
)

// Stemmer reduces a single lowercase token to its stem. A miss returns the
// token unchanged.
type Stemmer interface {
	Stem(token string) string
}

// NewStemmer returns the stemmer for algorithm. An empty name selects snowball.
func NewStemmer(algorithm string) (Stemmer, error) {
	switch algorithm {
	case "", AlgorithmSnowball:
		return SnowballStemmer{}, nil
	case AlgorithmPorter2:
		return Porter2Stemmer{}, nil
	default:
		return nil, fmt.Errorf("unknown stemming algorithm %q", algorithm)
	}
}

// SnowballStemmer is the english snowball stemmer. Stop words are left as is.
type SnowballStemmer struct{}

func (SnowballStemmer) Stem(token string) string {
	stem, err := snowball.Stem(token, "english", false)
	if err != nil || stem == "" {
		return token
	}
	return stem
}

// Porter2Stemmer wraps the porter2 implementation.
type Porter2Stemmer struct{}

func (Porter2Stemmer) Stem(token string) string {
	if len(token) < 3 {
		return token
	}
	stem := porter2.Stem(token)
	if stem == "" {
		return token
	}
	return stem
}
