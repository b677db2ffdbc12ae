package vocabulary

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/taboo-core/internal/domain"
)

func testVocab(t *testing.T) *Vocabulary {
	t.Helper()
	v, err := New([]string{"volcano", "ocean", "forest", "desert", "river", "glacier", "canyon", "island"})
	require.NoError(t, err)
	return v
}

func TestSampler_SameSeedSameSequence(t *testing.T) {
	t.Parallel()

	a := NewSampler(testVocab(t), 42)
	b := NewSampler(testVocab(t), 42)

	var seqA, seqB []string
	for range 5 {
		wa, err := a.RandomWord(nil)
		require.NoError(t, err)
		wb, err := b.RandomWord(nil)
		require.NoError(t, err)
		seqA = append(seqA, wa)
		seqB = append(seqB, wb)
	}
	assert.Equal(t, seqA, seqB)
}

func TestSampler_Exclusions(t *testing.T) {
	t.Parallel()

	v := testVocab(t)
	s := NewSampler(v, 7)

	exclude := v.Words()[1:]
	for range 20 {
		w, err := s.RandomWord(exclude)
		require.NoError(t, err)
		assert.Equal(t, "volcano", w)
	}
}

func TestSampler_ExclusionsIgnoreCase(t *testing.T) {
	t.Parallel()

	s := NewSampler(testVocab(t), 3)

	exclude := []string{"OCEAN", " Forest ", "Desert", "river", "GLACIER", "canyon ", "Island"}
	for range 20 {
		w, err := s.RandomWord(exclude)
		require.NoError(t, err)
		assert.Equal(t, "volcano", w)
	}

	_, err := s.RandomWord(append(exclude, "Volcano"))
	assert.ErrorIs(t, err, domain.ErrExclusionsExhausted)
}

func TestSampler_ExclusionsExhausted(t *testing.T) {
	t.Parallel()

	v := testVocab(t)
	s := NewSampler(v, 1)

	_, err := s.RandomWord(v.Words())
	assert.ErrorIs(t, err, domain.ErrExclusionsExhausted)
}

func TestSampler_Concurrent(t *testing.T) {
	t.Parallel()

	v := testVocab(t)
	s := NewSampler(v, 3)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				w, err := s.RandomWord([]string{"ocean"})
				assert.NoError(t, err)
				assert.True(t, v.Contains(w))
				assert.NotEqual(t, "ocean", w)
			}
		}()
	}
	wg.Wait()
}
