package suite

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"numbench/internal/tensor"
)

// Check is the outcome of comparing one variant against its reference.
type Check struct {
	Name       string
	Reference  string
	MaxAbsDiff float64
	OK         bool
}

// Verify runs every variant once and compares it with a reference result:
// Pow for the elementwise group, MatMul for the matrix group and floats.Dot
// for the native loop. tol is a relative and absolute tolerance.
func Verify(d *Data, tol float64) ([]Check, error) {
	var checks []Check

	pow := tensor.Pow(d.V, Exponent)
	mul, err := tensor.MulElem(d.V, d.V)
	if err != nil {
		return nil, err
	}
	for _, v := range []struct {
		name string
		got  *tensor.Tensor
	}{
		{LabelMulElem, mul},
		{LabelSquare, tensor.Square(d.V)},
	} {
		c, err := compare(v.name, LabelPow, pow, v.got, tol)
		if err != nil {
			return nil, err
		}
		checks = append(checks, c)
	}

	ref, err := tensor.MatMul(d.A, d.B)
	if err != nil {
		return nil, err
	}
	variants := []struct {
		name string
		fn   func() (*tensor.Tensor, error)
	}{
		{LabelDot, func() (*tensor.Tensor, error) { return tensor.Dot(d.A, d.B) }},
		{LabelMethod, func() (*tensor.Tensor, error) { return d.A.Dot(d.B) }},
		{LabelEinsum, func() (*tensor.Tensor, error) { return tensor.Einsum("ij,jk->ik", d.A, d.B) }},
		{LabelTensor, func() (*tensor.Tensor, error) { return tensor.Tensordot(d.A, d.B, 1) }},
	}
	for _, v := range variants {
		got, err := v.fn()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", v.name, err)
		}
		c, err := compare(v.name, LabelMatMul, ref, got, tol)
		if err != nil {
			return nil, err
		}
		checks = append(checks, c)
	}

	want := floats.Dot(d.V1.Data(), d.V2.Data())
	got := tensor.NativeDot(d.V1.Data(), d.V2.Data())
	diff := math.Abs(got - want)
	checks = append(checks, Check{
		Name:       LabelNative1D,
		Reference:  "floats.Dot",
		MaxAbsDiff: diff,
		OK:         diff <= tol+tol*math.Abs(want),
	})
	return checks, nil
}

func compare(name, reference string, want, got *tensor.Tensor, tol float64) (Check, error) {
	diff, err := tensor.MaxAbsDiff(got, want)
	if err != nil {
		return Check{}, fmt.Errorf("%s: %w", name, err)
	}
	ok, err := tensor.AllClose(got, want, tol, tol)
	if err != nil {
		return Check{}, fmt.Errorf("%s: %w", name, err)
	}
	return Check{Name: name, Reference: reference, MaxAbsDiff: diff, OK: ok}, nil
}

// Failed returns the checks that did not pass.
func Failed(checks []Check) []Check {
	var out []Check
	for _, c := range checks {
		if !c.OK {
			out = append(out, c)
		}
	}
	return out
}
