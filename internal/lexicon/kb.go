// Package lexicon loads a WordNet lexical knowledge base (GWN-LMF JSON) and
// expands words into per-sense synonym and antonym sets.
package lexicon

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/heartmarshall/taboo-core/internal/domain"
)

// SenseRecord is one meaning of a word as the knowledge base stores it.
type SenseRecord struct {
	Key      string
	Gloss    string
	Synonyms []string
	Antonyms []string
}

// Stats holds loader statistics for logging.
type Stats struct {
	Entries  int
	Synsets  int
	Senses   int
	Lemmas   int
	Variants int
}

// KB is an in-memory WordNet. It is immutable after Load and safe for
// concurrent use.
type KB struct {
	senses     map[string][]string // word -> ordered synset ids
	synsets    map[string]*synset
	nounLemmas map[string]bool
	exceptions map[string][]string
	stats      Stats
}

type synset struct {
	gloss    string
	members  []string
	antonyms map[string][]string // member word -> antonym words
}

// GWN-LMF JSON deserialization types.

type gwnDocument struct {
	Graph []gwnLexicon `json:"@graph"`
}

type gwnLexicon struct {
	Entries []gwnEntry  `json:"entry"`
	Synsets []gwnSynset `json:"synset"`
}

type gwnEntry struct {
	ID    string     `json:"@id"`
	Lemma gwnLemma   `json:"lemma"`
	Forms []gwnLemma `json:"form"`
	Sense []gwnSense `json:"sense"`
}

type gwnLemma struct {
	WrittenForm  string `json:"writtenForm"`
	PartOfSpeech string `json:"partOfSpeech"`
}

type gwnSense struct {
	ID        string        `json:"@id"`
	Synset    string        `json:"synset"`
	Relations []gwnRelation `json:"relations"`
}

type gwnSynset struct {
	ID         string         `json:"@id"`
	Definition gwnDefinitions `json:"definition"`
}

type gwnRelation struct {
	RelType string `json:"relType"`
	Target  string `json:"target"`
}

// gwnDefinitions accepts a bare string, a list of strings, or a list of
// {"gloss": ...} objects; exports in the wild use all three.
type gwnDefinitions []string

func (d *gwnDefinitions) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*d = gwnDefinitions{s}
		return nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	for _, item := range raw {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			*d = append(*d, s)
			continue
		}
		var obj struct {
			Gloss string `json:"gloss"`
		}
		if err := json.Unmarshal(item, &obj); err != nil {
			return fmt.Errorf("definition: %w", err)
		}
		*d = append(*d, obj.Gloss)
	}
	return nil
}

// Load reads a GWN-LMF JSON file.
func Load(path string) (*KB, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	return Parse(f)
}

// Parse decodes a GWN-LMF JSON document.
func Parse(r io.Reader) (*KB, error) {
	var doc gwnDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode JSON: %w", err)
	}

	kb := &KB{
		senses:     make(map[string][]string),
		synsets:    make(map[string]*synset),
		nounLemmas: make(map[string]bool),
		exceptions: make(map[string][]string),
	}

	for _, lex := range doc.Graph {
		kb.stats.Entries += len(lex.Entries)
		kb.stats.Synsets += len(lex.Synsets)

		for _, s := range lex.Synsets {
			ss := kb.synset(s.ID)
			if len(s.Definition) > 0 && ss.gloss == "" {
				ss.gloss = s.Definition[0]
			}
		}

		// senseID -> word, needed to resolve sense-level antonym targets.
		senseToWord := make(map[string]string)
		for _, e := range lex.Entries {
			word := domain.NormalizeLemma(e.Lemma.WrittenForm)
			for _, s := range e.Sense {
				senseToWord[s.ID] = word
			}
		}

		for _, e := range lex.Entries {
			word := domain.NormalizeLemma(e.Lemma.WrittenForm)
			if word == "" {
				continue
			}
			if e.Lemma.PartOfSpeech == "" || e.Lemma.PartOfSpeech == "n" {
				kb.nounLemmas[word] = true
			}
			for _, f := range e.Forms {
				variant := domain.NormalizeLemma(f.WrittenForm)
				if variant == "" || variant == word {
					continue
				}
				kb.exceptions[variant] = appendUnique(kb.exceptions[variant], word)
				kb.stats.Variants++
			}

			for _, s := range e.Sense {
				kb.stats.Senses++
				if s.Synset == "" {
					continue
				}
				kb.senses[word] = appendUnique(kb.senses[word], s.Synset)

				ss := kb.synset(s.Synset)
				ss.members = appendUnique(ss.members, word)
				for _, rel := range s.Relations {
					if rel.RelType != "antonym" {
						continue
					}
					if target, ok := senseToWord[rel.Target]; ok && target != word {
						ss.antonyms[word] = appendUnique(ss.antonyms[word], target)
					}
				}
			}
		}
	}

	kb.stats.Lemmas = len(kb.senses)
	return kb, nil
}

func (kb *KB) synset(id string) *synset {
	ss, ok := kb.synsets[id]
	if !ok {
		ss = &synset{antonyms: make(map[string][]string)}
		kb.synsets[id] = ss
	}
	return ss
}

// SensesOf returns every sense of word in knowledge-base order. An unknown
// word has no senses.
func (kb *KB) SensesOf(word string) []SenseRecord {
	word = domain.NormalizeLemma(word)
	ids := kb.senses[word]
	if len(ids) == 0 {
		return nil
	}

	out := make([]SenseRecord, 0, len(ids))
	for _, id := range ids {
		ss := kb.synsets[id]
		rec := SenseRecord{
			Key:      id,
			Gloss:    ss.gloss,
			Synonyms: append([]string(nil), ss.members...),
		}
		for _, m := range ss.members {
			for _, a := range ss.antonyms[m] {
				rec.Antonyms = appendUnique(rec.Antonyms, a)
			}
		}
		out = append(out, rec)
	}
	return out
}

// IsLemma reports whether form is a noun lemma.
func (kb *KB) IsLemma(form string) bool { return kb.nounLemmas[form] }

// Exceptions returns the lemmas an irregular form belongs to.
func (kb *KB) Exceptions(form string) []string { return kb.exceptions[form] }

// Stats returns loader statistics.
func (kb *KB) Stats() Stats { return kb.stats }

func appendUnique(list []string, s string) []string {
	for _, v := range list {
		if v == s {
			return list
		}
	}
	return append(list, s)
}
