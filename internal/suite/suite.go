// Package suite defines the fixed menu of numeric operations that numbench times.
package suite

import (
	"fmt"
	"math/rand/v2"

	"numbench/internal/benchmark"
	"numbench/internal/tensor"
)

// Groups used to label cases.
const (
	GroupElementwise = "elementwise"
	GroupMatMul      = "matmul"
	GroupDot1D       = "dot1d"
)

// Case labels, in the order they run.
const (
	LabelPow      = "Exponentiation (Pow)"
	LabelMulElem  = "Multiplication (MulElem)"
	LabelSquare   = "Square"
	LabelMatMul   = "Matrix operator (MatMul)"
	LabelDot      = "Dot"
	LabelMethod   = "A.Dot(B)"
	LabelEinsum   = "Einsum"
	LabelTensor   = "Tensordot"
	LabelNative1D = "Native loop dot (1D)"
)

// Exponent is the constant the elementwise exponentiation raises to.
const Exponent = 2

// Params sizes the generated data.
type Params struct {
	VectorLen  int
	MatrixSize int
	Seed       uint64
}

// DefaultParams are a 10^6 element vector and 1000x1000 matrices.
func DefaultParams() Params {
	return Params{VectorLen: 1_000_000, MatrixSize: 1000, Seed: 42}
}

func (p Params) Validate() error {
	if p.VectorLen <= 0 {
		return fmt.Errorf("vector length must be positive, got: %d", p.VectorLen)
	}
	if p.MatrixSize <= 0 {
		return fmt.Errorf("matrix size must be positive, got: %d", p.MatrixSize)
	}
	return nil
}

// Data holds the random operands. Nothing here is modified after Generate.
type Data struct {
	V  *tensor.Tensor // elementwise operand
	A  *tensor.Tensor
	B  *tensor.Tensor
	V1 *tensor.Tensor // native dot operands
	V2 *tensor.Tensor
}

// Generate fills every operand from one PCG source seeded with p.Seed.
func Generate(p Params) (*Data, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	src := rand.NewPCG(p.Seed, p.Seed^0x9e3779b97f4a7c15)

	var d Data
	var err error
	if d.V, err = tensor.Rand(src, p.VectorLen); err != nil {
		return nil, fmt.Errorf("failed to generate vector: %w", err)
	}
	if d.A, err = tensor.Rand(src, p.MatrixSize, p.MatrixSize); err != nil {
		return nil, fmt.Errorf("failed to generate matrix A: %w", err)
	}
	if d.B, err = tensor.Rand(src, p.MatrixSize, p.MatrixSize); err != nil {
		return nil, fmt.Errorf("failed to generate matrix B: %w", err)
	}
	if d.V1, err = tensor.Rand(src, p.VectorLen); err != nil {
		return nil, fmt.Errorf("failed to generate vector v1: %w", err)
	}
	if d.V2, err = tensor.Rand(src, p.VectorLen); err != nil {
		return nil, fmt.Errorf("failed to generate vector v2: %w", err)
	}
	return &d, nil
}

// sink keeps results reachable so the timed calls are not optimised away.
var sink any

// Cases returns the nine timed operations in their fixed order.
func Cases(d *Data) []benchmark.Case {
	return []benchmark.Case{
		{Name: LabelPow, Group: GroupElementwise, Fn: func() error {
			sink = tensor.Pow(d.V, Exponent)
			return nil
		}},
		{Name: LabelMulElem, Group: GroupElementwise, Fn: func() error {
			return keep(tensor.MulElem(d.V, d.V))
		}},
		{Name: LabelSquare, Group: GroupElementwise, Fn: func() error {
			sink = tensor.Square(d.V)
			return nil
		}},
		{Name: LabelMatMul, Group: GroupMatMul, Fn: func() error {
			return keep(tensor.MatMul(d.A, d.B))
		}},
		{Name: LabelDot, Group: GroupMatMul, Fn: func() error {
			return keep(tensor.Dot(d.A, d.B))
		}},
		{Name: LabelMethod, Group: GroupMatMul, Fn: func() error {
			return keep(d.A.Dot(d.B))
		}},
		{Name: LabelEinsum, Group: GroupMatMul, Fn: func() error {
			return keep(tensor.Einsum("ij,jk->ik", d.A, d.B))
		}},
		{Name: LabelTensor, Group: GroupMatMul, Fn: func() error {
			return keep(tensor.Tensordot(d.A, d.B, 1))
		}},
		{Name: LabelNative1D, Group: GroupDot1D, Fn: func() error {
			sink = tensor.NativeDot(d.V1.Data(), d.V2.Data())
			return nil
		}},
	}
}

func keep(t *tensor.Tensor, err error) error {
	sink = t
	return err
}
