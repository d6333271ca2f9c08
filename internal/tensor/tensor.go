// Package tensor is a small dense N-dimensional float64 array built on gonum.
//
// Every operation allocates its result; operands are never mutated. Rank-2 and
// rank-1 tensors can be viewed as gonum matrices and vectors without copying.
package tensor

import (
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Tensor is a dense row-major array of float64 values.
type Tensor struct {
	shape []int
	data  []float64
}

// New returns a zero-filled tensor with the given shape.
// A call without dimensions returns a rank-0 (scalar) tensor.
func New(shape ...int) (*Tensor, error) {
	n, err := volume(shape)
	if err != nil {
		return nil, err
	}
	return &Tensor{shape: cloneInts(shape), data: make([]float64, n)}, nil
}

// FromSlice wraps data in a tensor of the given shape. The slice is not copied.
func FromSlice(data []float64, shape ...int) (*Tensor, error) {
	n, err := volume(shape)
	if err != nil {
		return nil, err
	}
	if len(data) != n {
		return nil, fmt.Errorf("%w: %d values for shape %v", ErrDimensionMismatch, len(data), shape)
	}
	return &Tensor{shape: cloneInts(shape), data: data}, nil
}

// Scalar returns a rank-0 tensor holding v.
func Scalar(v float64) *Tensor {
	return &Tensor{shape: []int{}, data: []float64{v}}
}

// Rand returns a tensor filled with values drawn uniformly from [0, 1).
func Rand(src rand.Source, shape ...int) (*Tensor, error) {
	t, err := New(shape...)
	if err != nil {
		return nil, err
	}
	u := distuv.Uniform{Min: 0, Max: 1, Src: src}
	for i := range t.data {
		t.data[i] = u.Rand()
	}
	return t, nil
}

// Shape returns a copy of the tensor's dimensions.
func (t *Tensor) Shape() []int { return cloneInts(t.shape) }

// Rank returns the number of dimensions.
func (t *Tensor) Rank() int { return len(t.shape) }

// Len returns the number of elements.
func (t *Tensor) Len() int { return len(t.data) }

// Data returns the backing slice in row-major order.
func (t *Tensor) Data() []float64 { return t.data }

// At returns the element at the given index.
func (t *Tensor) At(idx ...int) (float64, error) {
	if len(idx) != len(t.shape) {
		return 0, fmt.Errorf("%w: %d indices for rank %d", ErrOutOfRange, len(idx), len(t.shape))
	}
	off := 0
	for k, i := range idx {
		if i < 0 || i >= t.shape[k] {
			return 0, fmt.Errorf("%w: index %d on axis %d of size %d", ErrOutOfRange, i, k, t.shape[k])
		}
		off = off*t.shape[k] + i
	}
	return t.data[off], nil
}

// Reshape returns a tensor sharing t's data with a new shape of equal volume.
func (t *Tensor) Reshape(shape ...int) (*Tensor, error) {
	return FromSlice(t.data, shape...)
}

// Transpose returns a copy of t with its axes permuted. Without arguments the
// axes are reversed.
func (t *Tensor) Transpose(perm ...int) (*Tensor, error) {
	rank := len(t.shape)
	if len(perm) == 0 {
		perm = make([]int, rank)
		for i := range perm {
			perm[i] = rank - 1 - i
		}
	}
	if err := checkPerm(perm, rank); err != nil {
		return nil, err
	}

	src := strides(t.shape)
	shape := make([]int, rank)
	step := make([]int, rank)
	for k, p := range perm {
		shape[k] = t.shape[p]
		step[k] = src[p]
	}
	out := &Tensor{shape: shape, data: make([]float64, len(t.data))}
	if len(t.data) == 0 {
		return out, nil
	}

	idx := make([]int, rank)
	off := 0
	for i := range out.data {
		out.data[i] = t.data[off]
		for k := rank - 1; k >= 0; k-- {
			idx[k]++
			off += step[k]
			if idx[k] < shape[k] {
				break
			}
			off -= step[k] * shape[k]
			idx[k] = 0
		}
	}
	return out, nil
}

// Matrix returns a *mat.Dense view of a rank-2 tensor. Writes through the view
// are visible in t.
func (t *Tensor) Matrix() (*mat.Dense, error) {
	if len(t.shape) != 2 {
		return nil, fmt.Errorf("%w: matrix view of rank %d", ErrRank, len(t.shape))
	}
	return mat.NewDense(t.shape[0], t.shape[1], t.data), nil
}

// Vector returns a *mat.VecDense view of a rank-1 tensor.
func (t *Tensor) Vector() (*mat.VecDense, error) {
	if len(t.shape) != 1 {
		return nil, fmt.Errorf("%w: vector view of rank %d", ErrRank, len(t.shape))
	}
	return mat.NewVecDense(t.shape[0], t.data), nil
}

// Dot is the method form of the package-level Dot.
func (t *Tensor) Dot(b *Tensor) (*Tensor, error) {
	return Dot(t, b)
}

func (t *Tensor) String() string {
	return fmt.Sprintf("Tensor%v", t.shape)
}

func volume(shape []int) (int, error) {
	n := 1
	for _, d := range shape {
		if d <= 0 {
			return 0, fmt.Errorf("%w: %v", ErrBadShape, shape)
		}
		n *= d
	}
	return n, nil
}

// strides returns row-major element strides for shape.
func strides(shape []int) []int {
	s := make([]int, len(shape))
	acc := 1
	for k := len(shape) - 1; k >= 0; k-- {
		s[k] = acc
		acc *= shape[k]
	}
	return s
}

func checkPerm(perm []int, rank int) error {
	if len(perm) != rank {
		return fmt.Errorf("%w: permutation %v for rank %d", ErrAxis, perm, rank)
	}
	seen := make([]bool, rank)
	for _, p := range perm {
		if p < 0 || p >= rank || seen[p] {
			return fmt.Errorf("%w: permutation %v for rank %d", ErrAxis, perm, rank)
		}
		seen[p] = true
	}
	return nil
}

func cloneInts(s []int) []int {
	out := make([]int, len(s))
	copy(out, s)
	return out
}
