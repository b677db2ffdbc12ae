package lexicon

import (
	"log/slog"

	"github.com/heartmarshall/taboo-core/internal/domain"
)

// TermSet is a set of normalized terms.
type TermSet map[string]struct{}

// knowledgeBase is what the expander needs from a lexical database.
type knowledgeBase interface {
	SensesOf(word string) []SenseRecord
}

// Expander derives per-sense synonym and antonym sets.
type Expander struct {
	log *slog.Logger
	kb  knowledgeBase
}

// NewExpander creates an Expander. A nil kb yields no expansion for any word.
func NewExpander(logger *slog.Logger, kb knowledgeBase) *Expander {
	return &Expander{
		log: logger.With("service", "lexicon"),
		kb:  kb,
	}
}

// Expand returns synonyms and antonyms keyed by sense key. A word unknown to
// the knowledge base yields two empty maps.
func (e *Expander) Expand(word string) (synonyms, antonyms map[string]TermSet) {
	synonyms = make(map[string]TermSet)
	antonyms = make(map[string]TermSet)
	if e.kb == nil {
		return synonyms, antonyms
	}

	for _, s := range e.kb.SensesOf(word) {
		syn := make(TermSet, len(s.Synonyms))
		for _, l := range s.Synonyms {
			if t := domain.NormalizeLemma(l); t != "" {
				syn[t] = struct{}{}
			}
		}
		ant := make(TermSet, len(s.Antonyms))
		for _, l := range s.Antonyms {
			if t := domain.NormalizeLemma(l); t != "" {
				ant[t] = struct{}{}
			}
		}
		synonyms[s.Key] = syn
		antonyms[s.Key] = ant
	}

	if len(synonyms) == 0 {
		e.log.Debug("no lexical entry", slog.String("word", word))
	}
	return synonyms, antonyms
}

// Senses returns the (key, gloss) pairs of word in knowledge-base order.
func (e *Expander) Senses(word string) []domain.Sense {
	if e.kb == nil {
		return nil
	}
	recs := e.kb.SensesOf(word)
	out := make([]domain.Sense, 0, len(recs))
	for _, s := range recs {
		out = append(out, domain.Sense{Key: s.Key, Gloss: s.Gloss})
	}
	return out
}

// Flatten unions the sets of every sense.
func Flatten(bySense map[string]TermSet) TermSet {
	out := make(TermSet)
	for _, set := range bySense {
		for t := range set {
			out[t] = struct{}{}
		}
	}
	return out
}
