package validator

import (
	"context"
	"regexp"
	"strings"
	"unicode"

	"github.com/hbollon/go-edlib"

	"github.com/heartmarshall/taboo-core/internal/domain"
	"github.com/heartmarshall/taboo-core/internal/textnorm"
)

const (
	defaultFuzzyThreshold = 0.92
	minFuzzyLen           = 4
)

// spacedRe matches three or more single letters separated by spaces or
// punctuation, as in "l a v a" or "l-a-v-a".
var spacedRe = regexp.MustCompile(`(?i)(?:^|[^\p{L}\p{N}])(\p{L}(?:[\s.\-_*+]+\p{L}){2,})(?:$|[^\p{L}\p{N}])`)

var leet = map[rune]rune{
	'0': 'o', '1': 'i', '3': 'e', '4': 'a', '5': 's', '7': 't', '@': 'a', '$': 's',
}

// LocalAdjudicator detects spelling circumvention without any network call:
// spaced-out letters, leetspeak digits and near-miss spellings of the target
// or a forbidden lemma.
type LocalAdjudicator struct {
	norm      *textnorm.Normalizer
	threshold float32
}

// NewLocalAdjudicator creates a LocalAdjudicator flagging near misses with a
// Jaro-Winkler similarity of at least threshold. A threshold outside (0, 1]
// selects 0.92.
func NewLocalAdjudicator(norm *textnorm.Normalizer, threshold float64) *LocalAdjudicator {
	if threshold <= 0 || threshold > 1 {
		threshold = defaultFuzzyThreshold
	}
	return &LocalAdjudicator{norm: norm, threshold: float32(threshold)}
}

type bannedWord struct {
	compact string
	stem    string
}

// Adjudicate implements Adjudicator.
func (a *LocalAdjudicator) Adjudicate(_ context.Context, target string, forbidden []string, description string) []domain.Finding {
	banned := a.banned(target, forbidden)
	if len(banned) == 0 {
		return nil
	}

	var findings []domain.Finding
	flag := func(span string) {
		findings = append(findings, domain.Finding{Span: span, Rule: domain.RuleSpellingCircumvention})
	}

	for _, m := range spacedRe.FindAllStringSubmatch(description, -1) {
		if a.matches(letters(m[1]), banned) {
			flag(strings.ToLower(m[1]))
		}
	}

	for _, field := range strings.Fields(description) {
		raw := strings.ToLower(strings.TrimFunc(field, isEdgePunct))
		if !isLeet(raw) {
			continue
		}
		if a.matches(unleet(raw), banned) {
			flag(raw)
		}
	}

	for _, tok := range a.norm.Tokenize(description) {
		if a.nearMiss(tok, banned) {
			flag(tok)
		}
	}
	return Merge(findings)
}

func (a *LocalAdjudicator) banned(target string, forbidden []string) []bannedWord {
	var out []bannedWord
	add := func(term string) {
		toks := a.norm.Tokenize(term)
		if len(toks) == 0 {
			return
		}
		compact := strings.Join(toks, "")
		out = append(out, bannedWord{compact: compact, stem: a.norm.StemToken(compact)})
	}
	add(target)
	for _, f := range forbidden {
		add(a.norm.Lemmatize(f))
	}
	return out
}

// matches reports whether a de-obfuscated word is a banned word or shares its
// stem.
func (a *LocalAdjudicator) matches(word string, banned []bannedWord) bool {
	if word == "" {
		return false
	}
	stem := a.norm.StemToken(word)
	for _, b := range banned {
		if word == b.compact || stem == b.stem {
			return true
		}
	}
	return false
}

// nearMiss reports whether tok is a misspelling of a banned word. Exact and
// same-stem hits are left to the deterministic pass.
func (a *LocalAdjudicator) nearMiss(tok string, banned []bannedWord) bool {
	if len([]rune(tok)) < minFuzzyLen {
		return false
	}
	stem := a.norm.StemToken(tok)
	for _, b := range banned {
		if tok == b.compact || stem == b.stem {
			return false
		}
	}
	first, _ := firstRune(tok)
	for _, b := range banned {
		if len([]rune(b.compact)) < minFuzzyLen {
			continue
		}
		if r, _ := firstRune(b.compact); r != first {
			continue
		}
		score, err := edlib.StringsSimilarity(tok, b.compact, edlib.JaroWinkler)
		if err == nil && score >= a.threshold {
			return true
		}
	}
	return false
}

func letters(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) {
			sb.WriteRune(unicode.ToLower(r))
		}
	}
	return sb.String()
}

// isLeet reports whether s mixes letters with leetspeak substitutes.
func isLeet(s string) bool {
	var hasLetter, hasSub bool
	for _, r := range s {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case leet[r] != 0:
			hasSub = true
		}
	}
	return hasLetter && hasSub
}

func unleet(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if sub, ok := leet[r]; ok {
			r = sub
		}
		if unicode.IsLetter(r) {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

func isEdgePunct(r rune) bool {
	return !unicode.IsLetter(r) && leet[r] == 0
}

func firstRune(s string) (rune, bool) {
	for _, r := range s {
		return r, true
	}
	return 0, false
}
