package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/heartmarshall/taboo-core/internal/domain"
)

const pairPrompt = `Generate JSON for a guessing game with keys exactly: {"targetWord","forbiddenWords"}.
- targetWord: ONE common English noun, one word, lowercase.
- forbiddenWords: 3-5 lowercase words strongly related to the target.
- Do NOT include the target in forbiddenWords.
Return ONLY the compact JSON, no extra text.`

// PairGenerator asks a text generator for a complete word pair.
type PairGenerator struct {
	client Client
}

// NewPairGenerator creates a PairGenerator.
func NewPairGenerator(client Client) *PairGenerator {
	return &PairGenerator{client: client}
}

type pairResponse struct {
	TargetWord     string            `json:"targetWord"`
	ForbiddenWords []json.RawMessage `json:"forbiddenWords"`
}

// GeneratePair returns a generated pair. Output that is unparseable, lacks a
// target or forbidden words, or lists the target as forbidden returns
// domain.ErrMalformedGeneration.
func (g *PairGenerator) GeneratePair(ctx context.Context) (domain.WordPair, error) {
	if g == nil || g.client == nil {
		return domain.WordPair{}, fmt.Errorf("generate pair: no text generator configured")
	}

	text, err := g.client.Generate(ctx, pairPrompt, GenerateOptions{Temperature: 0.7, JSON: true})
	if err != nil {
		return domain.WordPair{}, fmt.Errorf("generate pair: %w", err)
	}
	return ParsePair(text)
}

// ParsePair validates generator output into a WordPair.
func ParsePair(text string) (domain.WordPair, error) {
	res := DecodeObject(text)
	if !res.OK() {
		return domain.WordPair{}, fmt.Errorf("no JSON object in output: %w", domain.ErrMalformedGeneration)
	}

	var resp pairResponse
	if err := json.Unmarshal(res.Raw, &resp); err != nil {
		return domain.WordPair{}, fmt.Errorf("decode pair: %v: %w", err, domain.ErrMalformedGeneration)
	}

	target := strings.ToLower(strings.TrimSpace(resp.TargetWord))
	if target == "" {
		return domain.WordPair{}, fmt.Errorf("missing target word: %w", domain.ErrMalformedGeneration)
	}

	forbidden := make([]string, 0, len(resp.ForbiddenWords))
	for _, raw := range resp.ForbiddenWords {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			s = strings.Trim(string(raw), `"`)
		}
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		if s == target {
			return domain.WordPair{}, fmt.Errorf("target %q listed as forbidden: %w", target, domain.ErrMalformedGeneration)
		}
		forbidden = append(forbidden, s)
	}
	if len(forbidden) == 0 {
		return domain.WordPair{}, fmt.Errorf("missing forbidden words: %w", domain.ErrMalformedGeneration)
	}

	return domain.WordPair{Target: target, Forbidden: forbidden, Source: "llm"}, nil
}
