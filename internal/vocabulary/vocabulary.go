package vocabulary

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/kljensen/snowball/english"

	"github.com/heartmarshall/taboo-core/internal/domain"
)

// Options controls vocabulary filtering.
type Options struct {
	TopN    int
	MinLen  int
	MaxLen  int
	MinZipf float64
	MaxZipf float64
}

// DefaultOptions returns the standard filter bands.
func DefaultOptions() Options {
	return Options{TopN: 200_000, MinLen: 3, MaxLen: 14, MinZipf: 2.5, MaxZipf: 6.0}
}

// Vocabulary is an immutable, deduplicated list of candidate words in corpus
// order.
type Vocabulary struct {
	words []string
	index map[string]int
}

// Build filters the top words of src. Every member is lowercase, alphabetic,
// not a stopword and inside both the length and the zipf band. An empty result
// returns domain.ErrEmptyVocabulary.
func Build(src Source, opts Options) (*Vocabulary, error) {
	raw := src.TopNWords(opts.TopN)

	v := &Vocabulary{index: make(map[string]int, len(raw))}
	for _, w := range raw {
		w = strings.ToLower(w)
		if !isAlpha(w) || english.IsStopWord(w) {
			continue
		}
		if n := utf8.RuneCountInString(w); n < opts.MinLen || n > opts.MaxLen {
			continue
		}
		if z := src.FrequencyScore(w); z < opts.MinZipf || z > opts.MaxZipf {
			continue
		}
		if _, dup := v.index[w]; dup {
			continue
		}
		v.index[w] = len(v.words)
		v.words = append(v.words, w)
	}

	if len(v.words) == 0 {
		return nil, fmt.Errorf("build vocabulary from %d words: %w", len(raw), domain.ErrEmptyVocabulary)
	}
	return v, nil
}

// New wraps an explicit word list, applying only deduplication. It is meant
// for tests and fixed word lists.
func New(words []string) (*Vocabulary, error) {
	v := &Vocabulary{index: make(map[string]int, len(words))}
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" {
			continue
		}
		if _, dup := v.index[w]; dup {
			continue
		}
		v.index[w] = len(v.words)
		v.words = append(v.words, w)
	}
	if len(v.words) == 0 {
		return nil, domain.ErrEmptyVocabulary
	}
	return v, nil
}

// Words returns a copy of the members.
func (v *Vocabulary) Words() []string { return append([]string(nil), v.words...) }

// Len returns the number of members.
func (v *Vocabulary) Len() int { return len(v.words) }

// At returns the i-th member.
func (v *Vocabulary) At(i int) string { return v.words[i] }

// Contains reports membership.
func (v *Vocabulary) Contains(word string) bool {
	_, ok := v.index[word]
	return ok
}

func isAlpha(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
