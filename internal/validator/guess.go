package validator

import "strings"

// CheckGuess reports whether guess names word: its lemma equals the target
// lemma, or one of its tokens shares the target stem.
func (v *Validator) CheckGuess(word, guess string) bool {
	w := strings.ToLower(strings.TrimSpace(word))
	if w == "" {
		return false
	}
	if g := v.norm.Lemmatize(guess); g != "" && g == v.norm.Lemmatize(w) {
		return true
	}

	targetStem := v.norm.Stem(w)
	for _, tok := range v.norm.Tokenize(guess) {
		if v.norm.StemToken(tok) == targetStem {
			return true
		}
	}
	return false
}
