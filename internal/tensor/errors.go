package tensor

import "errors"

var (
	// ErrBadShape is returned when a shape has a non-positive dimension.
	ErrBadShape = errors.New("tensor: invalid shape")

	// ErrDimensionMismatch is returned when operand shapes are incompatible.
	ErrDimensionMismatch = errors.New("tensor: dimension mismatch")

	// ErrOutOfRange is returned by At for an index outside the shape.
	ErrOutOfRange = errors.New("tensor: index out of range")

	// ErrAxis is returned for invalid, duplicated or mismatched contraction axes.
	ErrAxis = errors.New("tensor: invalid axes")

	// ErrSubscripts is returned for malformed einsum subscripts.
	ErrSubscripts = errors.New("tensor: invalid einsum subscripts")

	// ErrRank is returned when an operation needs a different rank than it was given.
	ErrRank = errors.New("tensor: unsupported rank")
)
