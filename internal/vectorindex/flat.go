// Package vectorindex stores unit vectors and answers top-k inner-product
// queries exactly.
package vectorindex

import (
	"container/heap"
	"fmt"
	"sync"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas32"
)

// Missing is the index reported for empty result slots.
const Missing = -1

// blockRows bounds the scratch matrix of a search to blockRows x queries.
const blockRows = 4096

// Flat is a brute-force inner-product index over a row-major float32 matrix.
// It is safe for concurrent use.
type Flat struct {
	dim int

	mu   sync.RWMutex
	data []float32
	n    int
}

// NewFlat creates an empty index for dim-dimensional vectors.
func NewFlat(dim int) *Flat {
	return &Flat{dim: dim}
}

// Add appends vectors. Item ids are assigned in insertion order from 0.
func (f *Flat) Add(vectors [][]float32) error {
	for i, v := range vectors {
		if len(v) != f.dim {
			return fmt.Errorf("vector %d: dimension %d, want %d", i, len(v), f.dim)
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for _, v := range vectors {
		f.data = append(f.data, v...)
	}
	f.n += len(vectors)
	return nil
}

// Len returns the number of stored vectors.
func (f *Flat) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.n
}

// Dim returns the vector dimension.
func (f *Flat) Dim() int { return f.dim }

// Search returns, for each query, the k highest inner products and their item
// ids, best first. Slots beyond the number of stored items hold Missing with
// similarity 0.
func (f *Flat) Search(queries [][]float32, k int) ([][]float32, [][]int, error) {
	sims := make([][]float32, len(queries))
	ids := make([][]int, len(queries))
	if len(queries) == 0 || k <= 0 {
		return sims, ids, nil
	}

	m := len(queries)
	q := make([]float32, 0, m*f.dim)
	for i, v := range queries {
		if len(v) != f.dim {
			return nil, nil, fmt.Errorf("query %d: dimension %d, want %d", i, len(v), f.dim)
		}
		q = append(q, v...)
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	tops := make([]topK, m)
	for i := range tops {
		tops[i] = topK{k: k}
	}

	qm := blas32.General{Rows: m, Cols: f.dim, Stride: f.dim, Data: q}
	scratch := make([]float32, m*min(blockRows, max(f.n, 1)))
	for start := 0; start < f.n; start += blockRows {
		rows := min(blockRows, f.n-start)
		xm := blas32.General{
			Rows:   rows,
			Cols:   f.dim,
			Stride: f.dim,
			Data:   f.data[start*f.dim : (start+rows)*f.dim],
		}
		cm := blas32.General{Rows: m, Cols: rows, Stride: rows, Data: scratch[:m*rows]}
		blas32.Gemm(blas.NoTrans, blas.Trans, 1, qm, xm, 0, cm)

		for qi := 0; qi < m; qi++ {
			row := cm.Data[qi*rows : (qi+1)*rows]
			for j, s := range row {
				tops[qi].offer(start+j, s)
			}
		}
	}

	for qi := range tops {
		sims[qi], ids[qi] = tops[qi].result()
	}
	return sims, ids, nil
}

type hit struct {
	id  int
	sim float32
}

// topK keeps the k best hits in a min-heap keyed by similarity.
type topK struct {
	k    int
	hits []hit
}

func (t *topK) Len() int { return len(t.hits) }
func (t *topK) Less(i, j int) bool {
	if t.hits[i].sim != t.hits[j].sim {
		return t.hits[i].sim < t.hits[j].sim
	}
	return t.hits[i].id > t.hits[j].id
}
func (t *topK) Swap(i, j int) { t.hits[i], t.hits[j] = t.hits[j], t.hits[i] }
func (t *topK) Push(x any)   { t.hits = append(t.hits, x.(hit)) }
func (t *topK) Pop() any {
	last := t.hits[len(t.hits)-1]
	t.hits = t.hits[:len(t.hits)-1]
	return last
}

func (t *topK) offer(id int, sim float32) {
	if len(t.hits) < t.k {
		heap.Push(t, hit{id: id, sim: sim})
		return
	}
	if sim > t.hits[0].sim {
		t.hits[0] = hit{id: id, sim: sim}
		heap.Fix(t, 0)
	}
}

func (t *topK) result() ([]float32, []int) {
	sims := make([]float32, t.k)
	ids := make([]int, t.k)
	for i := range ids {
		ids[i] = Missing
	}
	for i := len(t.hits) - 1; i >= 0; i-- {
		h := heap.Pop(t).(hit)
		sims[i] = h.sim
		ids[i] = h.id
	}
	return sims, ids
}
