package tensor

import (
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
)

// Pow raises every element of t to the power p.
func Pow(t *Tensor, p float64) *Tensor {
	out := &Tensor{shape: cloneInts(t.shape), data: make([]float64, len(t.data))}
	for i, v := range t.data {
		out.data[i] = math.Pow(v, p)
	}
	return out
}

// MulElem returns the elementwise product of a and b, which must share a shape.
func MulElem(a, b *Tensor) (*Tensor, error) {
	if !slices.Equal(a.shape, b.shape) {
		return nil, fmt.Errorf("%w: %v * %v", ErrDimensionMismatch, a.shape, b.shape)
	}
	out := &Tensor{shape: cloneInts(a.shape), data: make([]float64, len(a.data))}
	floats.MulTo(out.data, a.data, b.data)
	return out, nil
}

// Square returns the elementwise square of t.
func Square(t *Tensor) *Tensor {
	out := &Tensor{shape: cloneInts(t.shape), data: make([]float64, len(t.data))}
	for i, v := range t.data {
		out.data[i] = v * v
	}
	return out
}

// AllClose reports whether a and b have the same shape and every pair of
// elements satisfies |a-b| <= atol + rtol*|b|. NaNs never compare close.
func AllClose(a, b *Tensor, rtol, atol float64) (bool, error) {
	if !slices.Equal(a.shape, b.shape) {
		return false, fmt.Errorf("%w: %v vs %v", ErrDimensionMismatch, a.shape, b.shape)
	}
	for i, av := range a.data {
		bv := b.data[i]
		if math.IsNaN(av) || math.IsNaN(bv) {
			return false, nil
		}
		if math.Abs(av-bv) > atol+rtol*math.Abs(bv) {
			return false, nil
		}
	}
	return true, nil
}

// MaxAbsDiff returns the largest absolute elementwise difference between a and b.
func MaxAbsDiff(a, b *Tensor) (float64, error) {
	if !slices.Equal(a.shape, b.shape) {
		return 0, fmt.Errorf("%w: %v vs %v", ErrDimensionMismatch, a.shape, b.shape)
	}
	return floats.Distance(a.data, b.data, math.Inf(1)), nil
}
