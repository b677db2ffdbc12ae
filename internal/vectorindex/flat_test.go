package vectorindex

import (
	"math"
	"math/rand/v2"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlat_Search(t *testing.T) {
	t.Parallel()

	f := NewFlat(2)
	require.NoError(t, f.Add([][]float32{{1, 0}, {0, 1}, {0.6, 0.8}}))
	assert.Equal(t, 3, f.Len())

	sims, ids, err := f.Search([][]float32{{1, 0}, {0, 1}}, 2)
	require.NoError(t, err)

	assert.Equal(t, []int{0, 2}, ids[0])
	assert.InDeltaSlice(t, []float32{1, 0.6}, sims[0], 1e-6)
	assert.Equal(t, []int{1, 2}, ids[1])
	assert.InDeltaSlice(t, []float32{1, 0.8}, sims[1], 1e-6)
}

func TestFlat_MissingSlots(t *testing.T) {
	t.Parallel()

	f := NewFlat(2)
	require.NoError(t, f.Add([][]float32{{1, 0}}))

	sims, ids, err := f.Search([][]float32{{1, 0}}, 3)
	require.NoError(t, err)
	assert.Equal(t, []int{0, Missing, Missing}, ids[0])
	assert.Len(t, sims[0], 3)

	empty := NewFlat(2)
	_, ids, err = empty.Search([][]float32{{1, 0}}, 2)
	require.NoError(t, err)
	assert.Equal(t, []int{Missing, Missing}, ids[0])
}

func TestFlat_DimensionMismatch(t *testing.T) {
	t.Parallel()

	f := NewFlat(3)
	assert.Error(t, f.Add([][]float32{{1, 0}}))
	assert.Zero(t, f.Len())

	_, _, err := f.Search([][]float32{{1, 0}}, 1)
	assert.Error(t, err)
}

func TestFlat_ZeroK(t *testing.T) {
	t.Parallel()

	f := NewFlat(1)
	require.NoError(t, f.Add([][]float32{{1}}))
	sims, ids, err := f.Search([][]float32{{1}}, 0)
	require.NoError(t, err)
	assert.Len(t, sims, 1)
	assert.Empty(t, ids[0])
}

// Results must match a brute-force sort across block boundaries.
func TestFlat_MatchesBruteForce(t *testing.T) {
	t.Parallel()

	const n, dim, k = blockRows + 37, 8, 10
	rng := rand.New(rand.NewPCG(1, 2))
	vecs := make([][]float32, n)
	for i := range vecs {
		v := make([]float32, dim)
		var norm float64
		for j := range v {
			v[j] = rng.Float32()*2 - 1
			norm += float64(v[j] * v[j])
		}
		inv := float32(1 / math.Sqrt(norm))
		for j := range v {
			v[j] *= inv
		}
		vecs[i] = v
	}

	f := NewFlat(dim)
	require.NoError(t, f.Add(vecs))

	query := vecs[n-1]
	_, ids, err := f.Search([][]float32{query}, k)
	require.NoError(t, err)

	type scored struct {
		id  int
		sim float32
	}
	all := make([]scored, n)
	for i, v := range vecs {
		var s float32
		for j := range v {
			s += v[j] * query[j]
		}
		all[i] = scored{i, s}
	}
	sort.SliceStable(all, func(a, b int) bool { return all[a].sim > all[b].sim })

	want := make([]int, k)
	for i := range want {
		want[i] = all[i].id
	}
	assert.Equal(t, want, ids[0])
	assert.Equal(t, n-1, ids[0][0])
}
