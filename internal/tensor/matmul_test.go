package tensor

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tol = 1e-9

func assertClose(t *testing.T, want, got *Tensor) {
	t.Helper()
	require.Equal(t, want.Shape(), got.Shape())
	ok, err := AllClose(got, want, tol, tol)
	require.NoError(t, err)
	assert.True(t, ok, "want %v, got %v", want.Data(), got.Data())
}

func TestMatMul_Literal(t *testing.T) {
	a := mustSlice(t, []float64{1, 2, 3, 4}, 2, 2)
	b := mustSlice(t, []float64{5, 6, 7, 8}, 2, 2)

	c, err := MatMul(a, b)
	require.NoError(t, err)
	assert.Equal(t, []float64{19, 22, 43, 50}, c.Data())
}

func TestMatMulVariantsAgree(t *testing.T) {
	src := rand.NewPCG(3, 4)
	a, err := Rand(src, 7, 5)
	require.NoError(t, err)
	b, err := Rand(src, 5, 3)
	require.NoError(t, err)

	want, err := MatMul(a, b)
	require.NoError(t, err)

	dot, err := Dot(a, b)
	require.NoError(t, err)
	assertClose(t, want, dot)

	method, err := a.Dot(b)
	require.NoError(t, err)
	assertClose(t, want, method)

	es, err := Einsum("ij,jk->ik", a, b)
	require.NoError(t, err)
	assertClose(t, want, es)

	td, err := Tensordot(a, b, 1)
	require.NoError(t, err)
	assertClose(t, want, td)
}

func TestMatMul_Errors(t *testing.T) {
	a := mustSlice(t, []float64{1, 2, 3, 4, 5, 6}, 2, 3)

	_, err := MatMul(a, a)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
	_, err = MatMul(a, mustSlice(t, []float64{1, 2, 3}, 3))
	assert.ErrorIs(t, err, ErrRank)
	_, err = Dot(a, a)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestDot_Ranks(t *testing.T) {
	v := mustSlice(t, []float64{1, 2, 3}, 3)
	w := mustSlice(t, []float64{4, 5, 6}, 3)
	m := mustSlice(t, []float64{1, 0, 2, 0, 1, 3}, 2, 3) // 2x3

	inner, err := Dot(v, w)
	require.NoError(t, err)
	assert.Equal(t, 0, inner.Rank())
	assert.Equal(t, 32.0, inner.Data()[0])

	mv, err := Dot(m, v)
	require.NoError(t, err)
	assert.Equal(t, []float64{7, 11}, mv.Data())

	u := mustSlice(t, []float64{1, 1}, 2)
	vm, err := Dot(u, m)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 1, 5}, vm.Data())

	scaled, err := Dot(Scalar(2), v)
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 4, 6}, scaled.Data())
}

func TestDot_HigherRank(t *testing.T) {
	src := rand.NewPCG(5, 6)
	a, err := Rand(src, 2, 3, 4)
	require.NoError(t, err)
	b, err := Rand(src, 5, 4, 2)
	require.NoError(t, err)

	got, err := Dot(a, b)
	require.NoError(t, err)
	want, err := Einsum("ijk,lkm->ijlm", a, b)
	require.NoError(t, err)
	assertClose(t, want, got)
}

func TestNativeDot(t *testing.T) {
	src := rand.NewPCG(8, 9)
	x, err := Rand(src, 1000)
	require.NoError(t, err)
	y, err := Rand(src, 1000)
	require.NoError(t, err)

	blas, err := Dot(x, y)
	require.NoError(t, err)
	assert.InDelta(t, blas.Data()[0], NativeDot(x.Data(), y.Data()), 1e-9)
	assert.Equal(t, 0.0, NativeDot(nil, nil))
}

func TestTensordot(t *testing.T) {
	v := mustSlice(t, []float64{1, 2}, 2)
	w := mustSlice(t, []float64{3, 4, 5}, 3)

	outer, err := Tensordot(v, w, 0)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, outer.Shape())
	assert.Equal(t, []float64{3, 4, 5, 6, 8, 10}, outer.Data())

	m := mustSlice(t, []float64{1, 2, 3, 4}, 2, 2)
	full, err := Tensordot(m, m, 2)
	require.NoError(t, err)
	assert.Equal(t, 0, full.Rank())
	assert.Equal(t, 30.0, full.Data()[0])

	_, err = Tensordot(v, w, 2)
	assert.ErrorIs(t, err, ErrAxis)
	_, err = Tensordot(v, w, 1)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestTensordotAxes(t *testing.T) {
	src := rand.NewPCG(10, 11)
	a, err := Rand(src, 3, 4, 5)
	require.NoError(t, err)
	b, err := Rand(src, 4, 3, 2)
	require.NoError(t, err)

	got, err := TensordotAxes(a, b, []int{1, 0}, []int{0, 1})
	require.NoError(t, err)
	want, err := Einsum("abc,bad->cd", a, b)
	require.NoError(t, err)
	assertClose(t, want, got)

	neg, err := TensordotAxes(a, b, []int{-2, -3}, []int{0, 1})
	require.NoError(t, err)
	assertClose(t, want, neg)

	_, err = TensordotAxes(a, b, []int{1, 1}, []int{0, 1})
	assert.ErrorIs(t, err, ErrAxis)
	_, err = TensordotAxes(a, b, []int{1}, []int{0, 1})
	assert.ErrorIs(t, err, ErrAxis)
}
