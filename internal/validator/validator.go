// Package validator judges whether a description or guess leaks the target
// word or one of its forbidden terms.
package validator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/heartmarshall/taboo-core/internal/domain"
	"github.com/heartmarshall/taboo-core/internal/textnorm"
)

// Mode selects which passes run.
type Mode string

const (
	// ModeAuto runs hybrid when an adjudicator is configured and
	// deterministic otherwise.
	ModeAuto          Mode = ""
	ModeDeterministic Mode = "deterministic"
	ModeSemantic      Mode = "semantic"
	ModeHybrid        Mode = "hybrid"
)

// ParseMode validates a mode name. The empty string is ModeAuto.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeAuto, ModeDeterministic, ModeSemantic, ModeHybrid:
		return m, nil
	default:
		return "", domain.NewValidationError("mode", fmt.Sprintf("unknown mode %q", s))
	}
}

// Adjudicator finds violations a lexical matcher cannot see. Implementations
// fail open: any internal failure yields no findings.
type Adjudicator interface {
	Adjudicate(ctx context.Context, target string, forbidden []string, description string) []domain.Finding
}

// Validator checks descriptions against a target and its forbidden list. It is
// safe for concurrent use.
type Validator struct {
	log  *slog.Logger
	norm *textnorm.Normalizer
	adj  Adjudicator
}

// New creates a Validator. adj may be nil, which disables the semantic pass.
func New(logger *slog.Logger, norm *textnorm.Normalizer, adj Adjudicator) *Validator {
	return &Validator{
		log:  logger.With("service", "validator"),
		norm: norm,
		adj:  adj,
	}
}

// HasAdjudicator reports whether the semantic pass is available.
func (v *Validator) HasAdjudicator() bool { return v.adj != nil }

// Check validates description in the given mode. Semantic mode without an
// adjudicator runs the deterministic pass instead.
func (v *Validator) Check(ctx context.Context, word, description string, forbidden []string, mode Mode) domain.Verdict {
	w := strings.ToLower(strings.TrimSpace(word))

	if mode == ModeAuto {
		mode = ModeDeterministic
		if v.adj != nil {
			mode = ModeHybrid
		}
	}
	if v.adj == nil && mode != ModeDeterministic {
		mode = ModeDeterministic
	}

	var findings []domain.Finding
	switch mode {
	case ModeSemantic:
		findings = Merge(v.adj.Adjudicate(ctx, w, v.lemmas(forbidden), description))
	case ModeHybrid:
		det := v.Deterministic(w, description, forbidden)
		findings = Merge(det, v.adj.Adjudicate(ctx, w, v.lemmas(forbidden), description))
	default:
		findings = v.Deterministic(w, description, forbidden)
	}

	v.log.DebugContext(ctx, "description checked",
		slog.String("word", w),
		slog.String("mode", string(mode)),
		slog.Int("violations", len(findings)),
	)
	return domain.NewVerdict(findings)
}

// Deterministic runs the lexical rules only. Every multi-word forbidden entry
// is matched as a whole phrase against the lemmatized description, then every
// token gets at most one finding: target stem first, then forbidden lemma,
// then forbidden stem.
func (v *Validator) Deterministic(word, description string, forbidden []string) []domain.Finding {
	w := strings.ToLower(strings.TrimSpace(word))
	targetStem := v.norm.Stem(w)

	lemmas := v.lemmas(forbidden)
	bannedLemmas := make(map[string]struct{}, len(lemmas))
	bannedStems := make(map[string]struct{}, len(lemmas))
	for _, l := range lemmas {
		bannedLemmas[l] = struct{}{}
		bannedStems[v.norm.Stem(l)] = struct{}{}
	}

	var findings []domain.Finding

	text := " " + v.norm.Lemmatize(description) + " "
	for _, l := range lemmas {
		if strings.Contains(l, " ") && strings.Contains(text, " "+l+" ") {
			findings = append(findings, domain.Finding{Span: l, Rule: domain.RulePhraseForbidden})
		}
	}

	for _, tok := range v.norm.Tokenize(description) {
		stem := v.norm.StemToken(tok)
		if targetStem != "" && stem == targetStem {
			findings = append(findings, domain.Finding{Span: tok, Rule: domain.RuleTargetStemForbidden})
			continue
		}
		if _, ok := bannedLemmas[v.norm.LemmatizeToken(tok)]; ok {
			findings = append(findings, domain.Finding{Span: tok, Rule: domain.RuleLemmaForbidden})
			continue
		}
		if _, ok := bannedStems[stem]; ok {
			findings = append(findings, domain.Finding{Span: tok, Rule: domain.RuleBannedStemForbidden})
		}
	}
	return findings
}

// lemmas returns the distinct non-empty lemma forms of forbidden in order.
func (v *Validator) lemmas(forbidden []string) []string {
	seen := make(map[string]struct{}, len(forbidden))
	out := make([]string, 0, len(forbidden))
	for _, f := range forbidden {
		l := v.norm.Lemmatize(f)
		if l == "" {
			continue
		}
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	return out
}

// Merge concatenates finding lists, keeping the first finding for every
// (lowercased span, rule) pair.
func Merge(lists ...[]domain.Finding) []domain.Finding {
	seen := make(map[domain.Finding]struct{})
	var out []domain.Finding
	for _, list := range lists {
		for _, f := range list {
			key := domain.Finding{Span: strings.ToLower(strings.TrimSpace(f.Span)), Rule: f.Rule}
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, f)
		}
	}
	return out
}
