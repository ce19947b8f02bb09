package funcs

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// ArrayFunc is the callable contract for leaf functions: one positional
// vector argument per input block, one output vector.
type ArrayFunc func(xs ...[]float64) ([]float64, error)

// JacArrayFunc produces one Jacobian per input block for the same call
// signature.
type JacArrayFunc func(xs ...[]float64) ([]*mat.Dense, error)

// LeafFunc wraps a plain numeric callable as a Func. It supplies no
// Jacobian; use NewDiffLeaf for callables that can.
type LeafFunc struct {
	fn     ArrayFunc
	dimsIn []int
	dimOut int
	xs     []Input
	val    []float64
}

var _ Func = &LeafFunc{}

func NewLeaf(fn ArrayFunc, dimsIn []int, dimOut int) *LeafFunc {
	return &LeafFunc{fn: fn, dimsIn: dimsIn, dimOut: dimOut}
}

func (lf *LeafFunc) DimsIn() []int { return lf.dimsIn }

func (lf *LeafFunc) DimOut() int { return lf.dimOut }

func (lf *LeafFunc) Inputs() []Input { return lf.xs }

func (lf *LeafFunc) SetInputs(xs ...Input) error {
	lf.xs = xs
	return nil
}

func (lf *LeafFunc) Compute(_ context.Context) error {
	if lf.xs == nil {
		return ErrNoInputs
	}
	val, err := lf.fn(rawArgs(lf.xs)...)
	if err != nil {
		return fmt.Errorf("leaf compute: %w", err)
	}
	if len(val) != lf.dimOut {
		return fmt.Errorf("%w: callable returned length %d, want %d",
			ErrDimensionMismatch, len(val), lf.dimOut)
	}
	lf.val = val
	return nil
}

func (lf *LeafFunc) Val() []float64 { return lf.val }

// DiffLeafFunc is a leaf whose callable comes paired with a Jacobian
// callable; Compute evaluates both against the same inputs, so Val and Jac
// are always mutually consistent.
type DiffLeafFunc struct {
	LeafFunc
	jacFn JacArrayFunc
	jac   []*mat.Dense
}

var _ Differentiable = &DiffLeafFunc{}

func NewDiffLeaf(fn ArrayFunc, jacFn JacArrayFunc, dimsIn []int, dimOut int) *DiffLeafFunc {
	return &DiffLeafFunc{
		LeafFunc: LeafFunc{fn: fn, dimsIn: dimsIn, dimOut: dimOut},
		jacFn:    jacFn,
	}
}

func (df *DiffLeafFunc) Compute(_ context.Context) error {
	if df.xs == nil {
		return ErrNoInputs
	}
	args := rawArgs(df.xs)

	val, err := df.fn(args...)
	if err != nil {
		return fmt.Errorf("leaf compute: %w", err)
	}
	if len(val) != df.dimOut {
		return fmt.Errorf("%w: callable returned length %d, want %d",
			ErrDimensionMismatch, len(val), df.dimOut)
	}

	jac, err := df.jacFn(args...)
	if err != nil {
		return fmt.Errorf("leaf jacobian: %w", err)
	}
	if len(jac) != len(df.dimsIn) {
		return fmt.Errorf("%w: callable returned %d jacobian blocks, want %d",
			ErrDimensionMismatch, len(jac), len(df.dimsIn))
	}
	for i, j := range jac {
		r, c := j.Dims()
		if r != df.dimOut || c != df.dimsIn[i] {
			return fmt.Errorf("%w: jacobian block %d is %dx%d, want %dx%d",
				ErrDimensionMismatch, i, r, c, df.dimOut, df.dimsIn[i])
		}
	}

	df.val, df.jac = val, jac
	return nil
}

func (df *DiffLeafFunc) Jac() ([]*mat.Dense, error) {
	if df.jac == nil {
		return nil, fmt.Errorf("jacobian: %w", ErrNoInputs)
	}
	return df.jac, nil
}

// rawArgs unwraps inputs into the positional vectors the callable expects.
// The vectors alias the inputs' data.
func rawArgs(xs []Input) [][]float64 {
	args := make([][]float64, len(xs))
	for i, x := range xs {
		args[i] = x.Data()
	}
	return args
}

// copyArgs deep-copies the inputs' data, for handing across the worker-pool
// boundary.
func copyArgs(xs []Input) [][]float64 {
	args := make([][]float64, len(xs))
	for i, x := range xs {
		args[i] = append([]float64(nil), x.Data()...)
	}
	return args
}
