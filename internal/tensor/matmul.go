package tensor

import (
	"fmt"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas64"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// MatMul multiplies two rank-2 tensors with gonum's mat.Dense.Mul.
func MatMul(a, b *Tensor) (*Tensor, error) {
	if a.Rank() != 2 || b.Rank() != 2 {
		return nil, fmt.Errorf("%w: matmul of rank %d and %d", ErrRank, a.Rank(), b.Rank())
	}
	m, k, n := a.shape[0], a.shape[1], b.shape[1]
	if b.shape[0] != k {
		return nil, fmt.Errorf("%w: %v @ %v", ErrDimensionMismatch, a.shape, b.shape)
	}
	out := &Tensor{shape: []int{m, n}, data: make([]float64, m*n)}
	dst := mat.NewDense(m, n, out.data)
	dst.Mul(mat.NewDense(m, k, a.data), mat.NewDense(k, n, b.data))
	return out, nil
}

// Dot is the general dot product:
//   - a rank-0 operand scales the other one;
//   - 1-d . 1-d is the inner product, returned as a rank-0 tensor;
//   - 2-d . 2-d is matrix multiplication (BLAS Gemm);
//   - 2-d . 1-d and 1-d . 2-d are matrix-vector products (BLAS Gemv);
//   - otherwise the last axis of a is contracted with the second-to-last
//     axis of b (or its only axis when b is 1-d).
func Dot(a, b *Tensor) (*Tensor, error) {
	switch {
	case a.Rank() == 0:
		return scale(b, a.data[0]), nil
	case b.Rank() == 0:
		return scale(a, b.data[0]), nil
	}

	ka := a.shape[a.Rank()-1]
	kb := b.shape[0]
	if b.Rank() >= 2 {
		kb = b.shape[b.Rank()-2]
	}
	if ka != kb {
		return nil, fmt.Errorf("%w: dot %v . %v", ErrDimensionMismatch, a.shape, b.shape)
	}

	switch {
	case a.Rank() == 1 && b.Rank() == 1:
		x := blas64.Vector{N: ka, Inc: 1, Data: a.data}
		y := blas64.Vector{N: ka, Inc: 1, Data: b.data}
		return Scalar(blas64.Dot(x, y)), nil
	case a.Rank() == 2 && b.Rank() == 2:
		m, n := a.shape[0], b.shape[1]
		return &Tensor{shape: []int{m, n}, data: gemm(a.data, m, ka, b.data, n)}, nil
	case a.Rank() == 2 && b.Rank() == 1:
		m := a.shape[0]
		out := make([]float64, m)
		blas64.Gemv(blas.NoTrans, 1, general(a.data, m, ka),
			blas64.Vector{N: ka, Inc: 1, Data: b.data}, 0, blas64.Vector{N: m, Inc: 1, Data: out})
		return &Tensor{shape: []int{m}, data: out}, nil
	case a.Rank() == 1 && b.Rank() == 2:
		n := b.shape[1]
		out := make([]float64, n)
		blas64.Gemv(blas.Trans, 1, general(b.data, ka, n),
			blas64.Vector{N: ka, Inc: 1, Data: a.data}, 0, blas64.Vector{N: n, Inc: 1, Data: out})
		return &Tensor{shape: []int{n}, data: out}, nil
	}

	axisB := 0
	if b.Rank() >= 2 {
		axisB = b.Rank() - 2
	}
	return TensordotAxes(a, b, []int{a.Rank() - 1}, []int{axisB})
}

// NativeDot computes the inner product of x and y with a plain loop.
func NativeDot(x, y []float64) float64 {
	var sum float64
	for i, v := range x {
		sum += v * y[i]
	}
	return sum
}

// Tensordot contracts the last n axes of a with the first n axes of b.
// n == 0 yields the outer product.
func Tensordot(a, b *Tensor, n int) (*Tensor, error) {
	if n < 0 || n > a.Rank() || n > b.Rank() {
		return nil, fmt.Errorf("%w: %d axes for ranks %d and %d", ErrAxis, n, a.Rank(), b.Rank())
	}
	axesA := make([]int, n)
	axesB := make([]int, n)
	for i := 0; i < n; i++ {
		axesA[i] = a.Rank() - n + i
		axesB[i] = i
	}
	return TensordotAxes(a, b, axesA, axesB)
}

// TensordotAxes sums the products of a and b over axesA[i] paired with axesB[i].
// Negative axes count from the end. The result's axes are the free axes of a
// followed by the free axes of b, each in their original order.
func TensordotAxes(a, b *Tensor, axesA, axesB []int) (*Tensor, error) {
	if len(axesA) != len(axesB) {
		return nil, fmt.Errorf("%w: %v and %v differ in length", ErrAxis, axesA, axesB)
	}
	axesA, err := normalizeAxes(axesA, a.Rank())
	if err != nil {
		return nil, err
	}
	axesB, err = normalizeAxes(axesB, b.Rank())
	if err != nil {
		return nil, err
	}

	k := 1
	for i := range axesA {
		if a.shape[axesA[i]] != b.shape[axesB[i]] {
			return nil, fmt.Errorf("%w: axis %d of %v vs axis %d of %v",
				ErrDimensionMismatch, axesA[i], a.shape, axesB[i], b.shape)
		}
		k *= a.shape[axesA[i]]
	}

	freeA := freeAxes(axesA, a.Rank())
	freeB := freeAxes(axesB, b.Rank())

	at, err := permute(a, append(cloneInts(freeA), axesA...))
	if err != nil {
		return nil, err
	}
	bt, err := permute(b, append(cloneInts(axesB), freeB...))
	if err != nil {
		return nil, err
	}

	shape := make([]int, 0, len(freeA)+len(freeB))
	m, n := 1, 1
	for _, ax := range freeA {
		shape = append(shape, a.shape[ax])
		m *= a.shape[ax]
	}
	for _, ax := range freeB {
		shape = append(shape, b.shape[ax])
		n *= b.shape[ax]
	}

	a2, err := at.Reshape(m, k)
	if err != nil {
		return nil, err
	}
	b2, err := bt.Reshape(k, n)
	if err != nil {
		return nil, err
	}
	return &Tensor{shape: shape, data: gemm(a2.data, m, k, b2.data, n)}, nil
}

// gemm returns the row-major m×n product of a (m×k) and b (k×n).
func gemm(a []float64, m, k int, b []float64, n int) []float64 {
	out := make([]float64, m*n)
	blas64.Gemm(blas.NoTrans, blas.NoTrans, 1, general(a, m, k), general(b, k, n), 0, general(out, m, n))
	return out
}

func general(data []float64, rows, cols int) blas64.General {
	return blas64.General{Rows: rows, Cols: cols, Stride: cols, Data: data}
}

func scale(t *Tensor, s float64) *Tensor {
	out := &Tensor{shape: cloneInts(t.shape), data: make([]float64, len(t.data))}
	floats.ScaleTo(out.data, s, t.data)
	return out
}

// permute transposes t unless perm is the identity, in which case t is returned as is.
func permute(t *Tensor, perm []int) (*Tensor, error) {
	identity := true
	for i, p := range perm {
		if p != i {
			identity = false
			break
		}
	}
	if identity && len(perm) == t.Rank() {
		return t, nil
	}
	return t.Transpose(perm...)
}

func normalizeAxes(axes []int, rank int) ([]int, error) {
	out := make([]int, len(axes))
	seen := make([]bool, rank)
	for i, ax := range axes {
		if ax < 0 {
			ax += rank
		}
		if ax < 0 || ax >= rank || seen[ax] {
			return nil, fmt.Errorf("%w: %v for rank %d", ErrAxis, axes, rank)
		}
		seen[ax] = true
		out[i] = ax
	}
	return out, nil
}

func freeAxes(contracted []int, rank int) []int {
	used := make([]bool, rank)
	for _, ax := range contracted {
		used[ax] = true
	}
	free := make([]int, 0, rank-len(contracted))
	for ax := 0; ax < rank; ax++ {
		if !used[ax] {
			free = append(free, ax)
		}
	}
	return free
}
