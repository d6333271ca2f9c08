package tensor

import (
	"fmt"
	"slices"
	"strings"
)

// Einsum evaluates a summation-index expression such as "ij,jk->ik" over the
// operands. Without "->" the output holds, in sorted order, every index that
// appears exactly once. Indices repeated inside one operand select its
// diagonal; indices absent from the output are summed over.
//
// Two-operand contractions without batch or single-operand sums are handed to
// TensordotAxes; every other expression runs through a general index loop.
func Einsum(subscripts string, operands ...*Tensor) (*Tensor, error) {
	ex, err := parseEinsum(subscripts, operands)
	if err != nil {
		return nil, err
	}
	if len(operands) == 2 {
		if out, ok, err := ex.contract(operands[0], operands[1]); ok || err != nil {
			return out, err
		}
	}
	return ex.loop(operands), nil
}

type einsumExpr struct {
	inputs []string
	output string
	sizes  map[byte]int
}

func parseEinsum(subscripts string, operands []*Tensor) (*einsumExpr, error) {
	if len(operands) == 0 {
		return nil, fmt.Errorf("%w: no operands", ErrSubscripts)
	}
	expr := strings.ReplaceAll(subscripts, " ", "")
	lhs, rhs, explicit := strings.Cut(expr, "->")
	if strings.Contains(rhs, "->") {
		return nil, fmt.Errorf("%w: %q", ErrSubscripts, subscripts)
	}

	inputs := strings.Split(lhs, ",")
	if len(inputs) != len(operands) {
		return nil, fmt.Errorf("%w: %d terms for %d operands", ErrSubscripts, len(inputs), len(operands))
	}

	ex := &einsumExpr{inputs: inputs, sizes: make(map[byte]int)}
	counts := make(map[byte]int)
	for i, term := range inputs {
		if len(term) != operands[i].Rank() {
			return nil, fmt.Errorf("%w: term %q for operand of rank %d", ErrSubscripts, term, operands[i].Rank())
		}
		for ax := 0; ax < len(term); ax++ {
			c := term[ax]
			if !isLabel(c) {
				return nil, fmt.Errorf("%w: invalid index %q", ErrSubscripts, c)
			}
			d := operands[i].shape[ax]
			if prev, ok := ex.sizes[c]; ok && prev != d {
				return nil, fmt.Errorf("%w: index %q is %d and %d", ErrDimensionMismatch, c, prev, d)
			}
			ex.sizes[c] = d
			counts[c]++
		}
	}

	if explicit {
		seen := make(map[byte]bool)
		for i := 0; i < len(rhs); i++ {
			c := rhs[i]
			if _, ok := ex.sizes[c]; !ok || seen[c] {
				return nil, fmt.Errorf("%w: output index %q", ErrSubscripts, c)
			}
			seen[c] = true
		}
		ex.output = rhs
	} else {
		var once []byte
		for c, n := range counts {
			if n == 1 {
				once = append(once, c)
			}
		}
		slices.Sort(once)
		ex.output = string(once)
	}
	return ex, nil
}

func isLabel(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// contract handles plain pairwise contractions through TensordotAxes.
// ok is false when the expression needs the general loop.
func (ex *einsumExpr) contract(a, b *Tensor) (*Tensor, bool, error) {
	ta, tb := ex.inputs[0], ex.inputs[1]
	if hasRepeats(ta) || hasRepeats(tb) {
		return nil, false, nil
	}

	var axesA, axesB []int
	var free []byte
	for i := 0; i < len(ta); i++ {
		c := ta[i]
		j := strings.IndexByte(tb, c)
		inOut := strings.IndexByte(ex.output, c) >= 0
		switch {
		case j >= 0 && inOut:
			return nil, false, nil
		case j >= 0:
			axesA = append(axesA, i)
			axesB = append(axesB, j)
		case !inOut:
			return nil, false, nil
		default:
			free = append(free, c)
		}
	}
	for j := 0; j < len(tb); j++ {
		c := tb[j]
		if strings.IndexByte(ta, c) >= 0 {
			continue
		}
		if strings.IndexByte(ex.output, c) < 0 {
			return nil, false, nil
		}
		free = append(free, c)
	}

	out, err := TensordotAxes(a, b, axesA, axesB)
	if err != nil {
		return nil, true, err
	}
	perm := make([]int, len(ex.output))
	for k := 0; k < len(ex.output); k++ {
		perm[k] = slices.Index(free, ex.output[k])
	}
	out, err = permute(out, perm)
	return out, true, err
}

// loop evaluates the expression by iterating over every index combination,
// output indices outermost.
func (ex *einsumExpr) loop(operands []*Tensor) *Tensor {
	labels := []byte(ex.output)
	for _, term := range ex.inputs {
		for i := 0; i < len(term); i++ {
			if !slices.Contains(labels, term[i]) {
				labels = append(labels, term[i])
			}
		}
	}

	dims := make([]int, len(labels))
	total := 1
	for l, c := range labels {
		dims[l] = ex.sizes[c]
		total *= dims[l]
	}
	outShape := dims[:len(ex.output)]
	out := &Tensor{shape: cloneInts(outShape), data: make([]float64, volumeOf(outShape))}
	inner := total / len(out.data)

	// step[op][l] is how far operand op's offset moves when label l advances;
	// a label repeated inside one term contributes each of its strides.
	step := make([][]int, len(operands))
	for op, term := range ex.inputs {
		st := strides(operands[op].shape)
		step[op] = make([]int, len(labels))
		for ax := 0; ax < len(term); ax++ {
			step[op][slices.Index(labels, term[ax])] += st[ax]
		}
	}

	idx := make([]int, len(labels))
	offs := make([]int, len(operands))
	for i := 0; i < total; i++ {
		prod := 1.0
		for op, t := range operands {
			prod *= t.data[offs[op]]
		}
		out.data[i/inner] += prod

		for l := len(labels) - 1; l >= 0; l-- {
			idx[l]++
			for op := range offs {
				offs[op] += step[op][l]
			}
			if idx[l] < dims[l] {
				break
			}
			for op := range offs {
				offs[op] -= step[op][l] * dims[l]
			}
			idx[l] = 0
		}
	}
	return out
}

func hasRepeats(term string) bool {
	for i := 0; i < len(term); i++ {
		if strings.IndexByte(term[i+1:], term[i]) >= 0 {
			return true
		}
	}
	return false
}

func volumeOf(shape []int) int {
	n := 1
	for _, d := range shape {
		n *= d
	}
	return n
}
