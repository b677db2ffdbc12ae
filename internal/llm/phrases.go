package llm

import (
	"context"
	"fmt"
	"log/slog"
)

// PhraseProposer asks a text generator for short giveaway phrases. Every
// failure degrades to an empty list.
type PhraseProposer struct {
	client      Client
	log         *slog.Logger
	temperature float64
}

// NewPhraseProposer creates a proposer. A nil client makes every call return
// nothing.
func NewPhraseProposer(logger *slog.Logger, client Client, temperature float64) *PhraseProposer {
	return &PhraseProposer{
		client:      client,
		log:         logger.With("service", "phrase_proposer"),
		temperature: temperature,
	}
}

// ProposePhrases returns up to maxCount lowercase phrases for word, scoped to
// gloss when it is not empty.
func (p *PhraseProposer) ProposePhrases(ctx context.Context, word, gloss string, maxCount, maxWords int) []string {
	if p == nil || p.client == nil {
		return nil
	}

	text, err := p.client.Generate(ctx, buildPhrasePrompt(word, gloss, maxCount, maxWords), GenerateOptions{
		Temperature: p.temperature,
		JSON:        true,
	})
	if err != nil {
		p.log.WarnContext(ctx, "phrase proposal failed",
			slog.String("word", word),
			slog.String("error", err.Error()),
		)
		return nil
	}

	res := DecodeList(text)
	if !res.OK() {
		p.log.WarnContext(ctx, "phrase proposal unparseable",
			slog.String("word", word),
			slog.Int("response_len", len(text)),
		)
		return nil
	}

	phrases := Strings(res.Raw)
	if maxCount > 0 && len(phrases) > maxCount {
		phrases = phrases[:maxCount]
	}
	p.log.DebugContext(ctx, "phrases proposed",
		slog.String("word", word),
		slog.String("decode", res.Kind.String()),
		slog.Int("count", len(phrases)),
	)
	return phrases
}

func buildPhrasePrompt(word, gloss string, maxCount, maxWords int) string {
	senseHint := ""
	if gloss != "" {
		senseHint = fmt.Sprintf(" (sense: %q)", gloss)
	}
	return fmt.Sprintf(
		`Return ONLY a JSON array of 3-%d short "forbidden" clue terms for %q%s. `+
			`Each item is a string (max %d words). `+
			`Do NOT include the target word, stopwords, or explanations.`,
		max(maxCount, 3), word, senseHint, maxWords,
	)
}
