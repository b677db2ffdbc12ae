// Package textnorm tokenizes, lemmatizes and stems text. Every operation is
// deterministic and works token-wise, so phrases keep their word order.
package textnorm

import (
	"strings"
	"unicode"

	"github.com/heartmarshall/taboo-core/internal/domain"
)

// Normalizer bundles a stemmer and a lemmatizer.
type Normalizer struct {
	stemmer    Stemmer
	lemmatizer *Lemmatizer
}

// New creates a Normalizer. A nil stemmer selects snowball; a nil lemmatizer
// leaves tokens unchanged on lemmatization.
func New(stemmer Stemmer, lemmatizer *Lemmatizer) *Normalizer {
	if stemmer == nil {
		stemmer = SnowballStemmer{}
	}
	return &Normalizer{stemmer: stemmer, lemmatizer: lemmatizer}
}

// Tokenize splits text into lowercase runs of letters. Anything that is not a
// letter separates tokens.
func (n *Normalizer) Tokenize(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool { return !unicode.IsLetter(r) })
	for i, f := range fields {
		fields[i] = strings.ToLower(f)
	}
	return fields
}

// LemmatizeToken returns the dictionary form of a single token.
func (n *Normalizer) LemmatizeToken(token string) string {
	return n.lemmatizer.Lemmatize(token)
}

// StemToken returns the stem of a single token.
func (n *Normalizer) StemToken(token string) string {
	return n.stemmer.Stem(token)
}

// Lemmatize lemmatizes every token of term and joins them with single spaces.
func (n *Normalizer) Lemmatize(term string) string {
	toks := n.Tokenize(term)
	for i, t := range toks {
		toks[i] = n.LemmatizeToken(t)
	}
	return strings.Join(toks, " ")
}

// Stem stems every token of term and joins them with single spaces.
func (n *Normalizer) Stem(term string) string {
	toks := n.Tokenize(term)
	for i, t := range toks {
		toks[i] = n.StemToken(t)
	}
	return strings.Join(toks, " ")
}

// StemBag returns the set of per-token stems of term.
func (n *Normalizer) StemBag(term string) map[string]struct{} {
	toks := n.Tokenize(term)
	bag := make(map[string]struct{}, len(toks))
	for _, t := range toks {
		bag[n.StemToken(t)] = struct{}{}
	}
	return bag
}

// Term derives every form of surface at once. Lemma is the canonical form;
// Stem and StemBag are computed from it.
func (n *Normalizer) Term(surface string) domain.Term {
	lemma := n.Lemmatize(surface)
	return domain.Term{
		Surface: surface,
		Lemma:   lemma,
		Stem:    n.Stem(lemma),
		StemBag: n.StemBag(lemma),
	}
}
