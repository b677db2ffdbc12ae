package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/heartmarshall/taboo-core/internal/domain"
)

// Adjudicator asks a text generator to find rule violations a lexical matcher
// misses: misspellings, translations, sound-alikes, paraphrases.
type Adjudicator struct {
	client      Client
	log         *slog.Logger
	maxFindings int
}

// NewAdjudicator creates an adjudicator returning at most maxFindings findings.
func NewAdjudicator(logger *slog.Logger, client Client, maxFindings int) *Adjudicator {
	if maxFindings <= 0 {
		maxFindings = 10
	}
	return &Adjudicator{
		client:      client,
		log:         logger.With("service", "llm_adjudicator"),
		maxFindings: maxFindings,
	}
}

type rawFinding struct {
	Span string `json:"span"`
	Rule string `json:"rule"`
}

// Adjudicate returns the findings reported by the model. Transport errors,
// unparseable replies and unknown rule labels yield no findings.
func (a *Adjudicator) Adjudicate(ctx context.Context, target string, forbidden []string, description string) []domain.Finding {
	if a == nil || a.client == nil {
		return nil
	}

	prompt := buildAdjudicationPrompt(target, forbidden, description, a.maxFindings)
	text, err := a.client.Generate(ctx, prompt, GenerateOptions{Temperature: 0.2, JSON: true})
	if err != nil {
		a.log.WarnContext(ctx, "adjudication failed",
			slog.String("word", target),
			slog.String("error", err.Error()),
		)
		return nil
	}

	res := DecodeList(text)
	if !res.OK() {
		a.log.WarnContext(ctx, "adjudication unparseable", slog.String("word", target))
		return nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(res.Raw, &raw); err != nil {
		return nil
	}

	findings := make([]domain.Finding, 0, len(raw))
	for _, item := range raw {
		var f rawFinding
		if err := json.Unmarshal(item, &f); err != nil {
			continue
		}
		span := strings.TrimSpace(f.Span)
		rule, ok := domain.ParseRuleKind(f.Rule)
		if span == "" || !ok {
			continue
		}
		findings = append(findings, domain.Finding{Span: span, Rule: rule})
		if len(findings) == a.maxFindings {
			break
		}
	}
	return findings
}

func buildAdjudicationPrompt(target string, forbidden []string, description string, maxFindings int) string {
	list, _ := json.Marshal(forbidden)
	return fmt.Sprintf(`You check a game description for rule violations.

Target word: %q
Forbidden lemmas (exact words/phrases): %s

Game rules (return findings only, no prose):
- The target word itself and ANY same-stem variants are forbidden.
- Any term from the forbidden lemmas list is forbidden.
- Any same-stem variant of a forbidden lemma is also forbidden.
- Avoid spelling circumvention (e.g., "ph0ne" for "phone") or sounds-like hints (e.g., "fone" for "phone").
- Avoid translation circumvention (e.g., "telefono" for "phone").
Return ONLY a JSON array of objects, each:
{"span": "<exact offending substring from the description>",
 "rule": "<one of: phrase-forbidden | target-stem-forbidden | lemma-forbidden | banned-stem-forbidden | spelling-circumvention | translation-circumvention | sounds-like-hint | near-paraphrase>"}

Description:
"""%s"""

Limit to %d findings.`, target, list, description, maxFindings)
}
