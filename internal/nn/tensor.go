// Package nn is a small CPU neural-network toolkit sized for on-device text
// models: shape-tagged float64 tensors, an Adam optimiser and the two model
// families the pipeline trains (a pooled bag-of-embeddings classifier and a
// bidirectional recurrent sequence tagger).
package nn

import (
	"math"
	"math/rand/v2"
)

// Tensor is a named, shape-tagged block of float64 values in row-major order.
type Tensor struct {
	Name  string
	Shape []int
	Data  []float64
}

// NewTensor allocates a zeroed tensor.
func NewTensor(name string, shape ...int) *Tensor {
	size := 1
	for _, d := range shape {
		size *= d
	}
	s := make([]int, len(shape))
	copy(s, shape)
	return &Tensor{Name: name, Shape: s, Data: make([]float64, size)}
}

// Size returns the number of elements.
func (t *Tensor) Size() int {
	return len(t.Data)
}

// Clone returns a deep copy.
func (t *Tensor) Clone() *Tensor {
	c := NewTensor(t.Name, t.Shape...)
	copy(c.Data, t.Data)
	return c
}

// Zero resets every element.
func (t *Tensor) Zero() {
	clear(t.Data)
}

// Row returns a view of row i of a 2-D tensor.
func (t *Tensor) Row(i int) []float64 {
	cols := t.Shape[1]
	return t.Data[i*cols : (i+1)*cols]
}

// sameShape reports whether two shapes are identical.
func sameShape(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// newRand returns a deterministic generator for seed.
func newRand(seed int64) *rand.Rand {
	return rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15))
}

// xavier fills a [fanIn, fanOut] tensor with Glorot-uniform values.
func xavier(t *Tensor, rng *rand.Rand) {
	limit := math.Sqrt(6.0 / float64(t.Shape[0]+t.Shape[1]))
	for i := range t.Data {
		t.Data[i] = (rng.Float64()*2 - 1) * limit
	}
}

// uniform fills t with values in [-limit, limit].
func uniform(t *Tensor, rng *rand.Rand, limit float64) {
	for i := range t.Data {
		t.Data[i] = (rng.Float64()*2 - 1) * limit
	}
}

func cloneAll(ts []*Tensor) []*Tensor {
	out := make([]*Tensor, len(ts))
	for i, t := range ts {
		out[i] = t.Clone()
	}
	return out
}

func zerosLike(ts []*Tensor) []*Tensor {
	out := make([]*Tensor, len(ts))
	for i, t := range ts {
		out[i] = NewTensor(t.Name, t.Shape...)
	}
	return out
}
