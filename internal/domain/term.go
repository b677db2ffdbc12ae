package domain

import "strings"

// Provenance records which candidate source contributed a term to a pool.
type Provenance uint8

const (
	FromNeighbor Provenance = 1 << iota
	FromSynonym
	FromAntonym
	FromEnrichment
)

// Has reports whether p includes all bits of q.
func (p Provenance) Has(q Provenance) bool { return p&q == q }

// Term is a normalized, possibly multi-word, string with its derived forms.
// Terms are compared by Lemma and StemBag, never by Surface.
type Term struct {
	Surface string
	Lemma   string
	Stem    string
	StemBag map[string]struct{}
}

// SharesStem reports whether any stem of t appears in bag.
func (t Term) SharesStem(bag map[string]struct{}) bool {
	for s := range t.StemBag {
		if _, ok := bag[s]; ok {
			return true
		}
	}
	return false
}

// Sense is one meaning of a word.
type Sense struct {
	Key   string
	Gloss string
}

// RuleKind labels a violation finding.
type RuleKind string

const (
	RulePhraseForbidden     RuleKind = "phrase-forbidden"
	RuleTargetStemForbidden RuleKind = "target-stem-forbidden"
	RuleLemmaForbidden      RuleKind = "lemma-forbidden"
	RuleBannedStemForbidden RuleKind = "banned-stem-forbidden"

	RuleSpellingCircumvention    RuleKind = "spelling-circumvention"
	RuleTranslationCircumvention RuleKind = "translation-circumvention"
	RuleSoundsLikeHint           RuleKind = "sounds-like-hint"
	RuleNearParaphrase           RuleKind = "near-paraphrase"
)

var knownRules = map[RuleKind]bool{
	RulePhraseForbidden:          true,
	RuleTargetStemForbidden:      true,
	RuleLemmaForbidden:           true,
	RuleBannedStemForbidden:      true,
	RuleSpellingCircumvention:    true,
	RuleTranslationCircumvention: true,
	RuleSoundsLikeHint:           true,
	RuleNearParaphrase:           true,
}

// ParseRuleKind maps a free-form label onto a known rule kind.
func ParseRuleKind(s string) (RuleKind, bool) {
	r := RuleKind(strings.ToLower(strings.TrimSpace(s)))
	return r, knownRules[r]
}

// Finding is one rule violation found in a description or guess.
type Finding struct {
	Span string   `json:"span"`
	Rule RuleKind `json:"rule"`
}

// Verdict is the outcome of validating a description.
type Verdict struct {
	Valid      bool      `json:"valid"`
	Violations []Finding `json:"violations"`
}

// NewVerdict builds a Verdict from findings. A nil slice becomes empty so the
// JSON form is always an array.
func NewVerdict(findings []Finding) Verdict {
	if findings == nil {
		findings = []Finding{}
	}
	return Verdict{Valid: len(findings) == 0, Violations: findings}
}

// WordPair is a target word with its forbidden list.
type WordPair struct {
	Target    string   `json:"word"`
	Forbidden []string `json:"forbidden"`
	Source    string   `json:"source"`
}
