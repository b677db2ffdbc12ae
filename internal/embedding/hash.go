package embedding

import (
	"context"
	"strings"
	"unicode"

	"github.com/cespare/xxhash/v2"
)

const defaultHashDims = 256

// HashEngine maps text to vectors by signed feature hashing of word tokens and
// character trigrams. Texts sharing words or spelling land close together.
// It needs no model and is fully deterministic.
type HashEngine struct {
	dims int
}

// NewHashEngine creates a hashing engine with dims buckets.
func NewHashEngine(dims int) *HashEngine {
	if dims <= 0 {
		dims = defaultHashDims
	}
	return &HashEngine{dims: dims}
}

func (e *HashEngine) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[i] = e.embed(t)
	}
	return out, nil
}

func (e *HashEngine) embed(text string) []float32 {
	v := make([]float32, e.dims)
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool { return !unicode.IsLetter(r) })
	for _, w := range words {
		e.add(v, "w:"+w, 1)
		padded := []rune("^" + w + "$")
		for i := 0; i+3 <= len(padded); i++ {
			e.add(v, "g:"+string(padded[i:i+3]), 0.5)
		}
	}
	return Normalize(v)
}

func (e *HashEngine) add(v []float32, feature string, weight float32) {
	h := xxhash.Sum64String(feature)
	idx := h % uint64(e.dims)
	if h>>63 == 1 {
		weight = -weight
	}
	v[idx] += weight
}

func (e *HashEngine) Dimensions() int { return e.dims }

func (e *HashEngine) Name() string { return "hash" }
