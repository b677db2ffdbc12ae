package llm

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"
)

// Kind says how a Result was recovered from model output.
type Kind uint8

const (
	Unparseable Kind = iota
	Strict
	Fenced
	Bracketed
)

func (k Kind) String() string {
	switch k {
	case Strict:
		return "strict"
	case Fenced:
		return "fenced"
	case Bracketed:
		return "bracketed"
	default:
		return "unparseable"
	}
}

// Result is the outcome of decoding untrusted model output. Raw holds valid
// JSON unless Kind is Unparseable.
type Result struct {
	Kind Kind
	Raw  json.RawMessage
}

// OK reports whether decoding produced JSON.
func (r Result) OK() bool { return r.Kind != Unparseable }

var (
	fenceRe  = regexp.MustCompile("(?im)^```(?:json)?\\s*|\\s*```$")
	arrayRe  = regexp.MustCompile(`\[[\s\S]*?\]`)
	objectRe = regexp.MustCompile(`\{[\s\S]*\}`)
	listKeys = []string{"terms", "phrases", "findings", "violations", "items"}
)

// DecodeList extracts a JSON array. It tries strict JSON, then the text with
// code fences removed, then the first bracketed block. An object wrapping the
// array under a well-known key ("terms", "findings", ...) is unwrapped.
func DecodeList(text string) Result {
	text = strings.TrimSpace(text)

	if raw, ok := asList([]byte(text)); ok {
		return Result{Kind: Strict, Raw: raw}
	}

	stripped := strings.TrimSpace(fenceRe.ReplaceAllString(text, ""))
	if stripped != text {
		if raw, ok := asList([]byte(stripped)); ok {
			return Result{Kind: Fenced, Raw: raw}
		}
	}

	if m := arrayRe.FindString(stripped); m != "" && json.Valid([]byte(m)) {
		return Result{Kind: Bracketed, Raw: json.RawMessage(m)}
	}
	return Result{Kind: Unparseable}
}

// DecodeObject extracts a JSON object: strict, then fenced, then the span from
// the first '{' to the last '}'.
func DecodeObject(text string) Result {
	text = strings.TrimSpace(text)

	if isObject([]byte(text)) {
		return Result{Kind: Strict, Raw: json.RawMessage(text)}
	}
	stripped := strings.TrimSpace(fenceRe.ReplaceAllString(text, ""))
	if stripped != text && isObject([]byte(stripped)) {
		return Result{Kind: Fenced, Raw: json.RawMessage(stripped)}
	}
	if m := objectRe.FindString(stripped); m != "" && isObject([]byte(m)) {
		return Result{Kind: Bracketed, Raw: json.RawMessage(m)}
	}
	return Result{Kind: Unparseable}
}

func asList(b []byte) (json.RawMessage, bool) {
	if !json.Valid(b) {
		return nil, false
	}
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '[' {
		return json.RawMessage(b), true
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(b, &obj); err != nil {
		return nil, false
	}
	for _, k := range listKeys {
		v := bytes.TrimSpace(obj[k])
		if len(v) > 0 && v[0] == '[' {
			return json.RawMessage(v), true
		}
	}
	return nil, false
}

func isObject(b []byte) bool {
	b = bytes.TrimSpace(b)
	return len(b) > 0 && b[0] == '{' && json.Valid(b)
}

// Strings returns the non-empty string elements of a JSON array, trimmed and
// lowercased. Non-string elements are skipped.
func Strings(raw json.RawMessage) []string {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		var s string
		if err := json.Unmarshal(it, &s); err != nil {
			continue
		}
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}
