package textnorm

import "strings"

// LemmaDictionary is the lexical knowledge a lemmatizer needs: which forms are
// dictionary lemmas and which irregular forms map to which lemmas.
type LemmaDictionary interface {
	IsLemma(form string) bool
	Exceptions(form string) []string
}

type suffixRule struct {
	suffix, replace string
}

// Noun detachment rules in WordNet morphy order.
var nounRules = []suffixRule{
	{"s", ""},
	{"ses", "s"},
	{"ves", "f"},
	{"xes", "x"},
	{"zes", "z"},
	{"ches", "ch"},
	{"shes", "sh"},
	{"men", "man"},
	{"ies", "y"},
}

// Lemmatizer reduces tokens to a noun dictionary form.
type Lemmatizer struct {
	dict LemmaDictionary
}

// NewLemmatizer creates a lemmatizer backed by dict. A nil dict makes
// Lemmatize the identity.
func NewLemmatizer(dict LemmaDictionary) *Lemmatizer {
	return &Lemmatizer{dict: dict}
}

// Lemmatize returns the shortest known lemma reachable from token through the
// exception list or a single suffix rule, or token itself when none is known.
func (l *Lemmatizer) Lemmatize(token string) string {
	if l == nil || l.dict == nil || token == "" {
		return token
	}

	var forms []string
	if exc := l.dict.Exceptions(token); len(exc) > 0 {
		forms = append([]string{token}, exc...)
	} else {
		forms = []string{token}
		for _, r := range nounRules {
			if strings.HasSuffix(token, r.suffix) && len(token) > len(r.suffix) {
				forms = append(forms, token[:len(token)-len(r.suffix)]+r.replace)
			}
		}
	}

	best := ""
	for _, f := range forms {
		if !l.dict.IsLemma(f) {
			continue
		}
		if best == "" || len(f) < len(best) {
			best = f
		}
	}
	if best == "" {
		return token
	}
	return best
}
