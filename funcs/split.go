package funcs

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/on-the-ground/diff_ive_go/shared/span"
)

// SplitIn is the inverse adapter of MergeIn: it exposes several declared
// input blocks and concatenates them into the single flat input of the
// wrapped func. Construction fails unless the inner func has exactly one
// input block whose width equals the sum of the declared widths.
//
// SplitIn exclusively owns the inner func's input state.
type SplitIn struct {
	inner  Func
	dimsIn []int
	table  []span.Span
	xs     []Input
}

var _ Differentiable = &SplitIn{}

func NewSplitIn(inner Func, widths ...int) (*SplitIn, error) {
	innerDims := inner.DimsIn()
	if len(innerDims) != 1 {
		return nil, fmt.Errorf("%w: split requires a single-input func, got %d blocks",
			ErrDimensionMismatch, len(innerDims))
	}
	table, total, err := span.Partition(widths...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDimensionMismatch, err)
	}
	if total != innerDims[0] {
		return nil, fmt.Errorf("%w: widths sum to %d, inner input width is %d",
			ErrDimensionMismatch, total, innerDims[0])
	}
	return &SplitIn{inner: inner, dimsIn: widths, table: table}, nil
}

func (s *SplitIn) DimsIn() []int { return s.dimsIn }

func (s *SplitIn) DimOut() int { return s.inner.DimOut() }

func (s *SplitIn) Inputs() []Input { return s.xs }

// SetInputs accepts one input per declared block, concatenates them in
// order into a fresh flat vector, and assigns it as the inner func's sole
// input.
func (s *SplitIn) SetInputs(xs ...Input) error {
	if len(xs) != len(s.dimsIn) {
		return fmt.Errorf("%w: got %d inputs, want %d blocks",
			ErrDimensionMismatch, len(xs), len(s.dimsIn))
	}
	blocks := make([][]float64, len(xs))
	for i, x := range xs {
		if x.Len() != s.dimsIn[i] {
			return fmt.Errorf("%w: input %d has length %d, want %d",
				ErrDimensionMismatch, i, x.Len(), s.dimsIn[i])
		}
		blocks[i] = x.Data()
	}
	if err := s.inner.SetInputs(NewInput(span.Concat(blocks...))); err != nil {
		return err
	}
	s.xs = xs
	return nil
}

func (s *SplitIn) Compute(ctx context.Context) error {
	return s.inner.Compute(ctx)
}

func (s *SplitIn) Val() []float64 { return s.inner.Val() }

// Jac carves the columns of the inner func's single Jacobian back into one
// DimOut × width matrix per declared block. The blocks are copies, never
// views into the inner matrix.
func (s *SplitIn) Jac() ([]*mat.Dense, error) {
	inner, err := JacOf(s.inner)
	if err != nil {
		return nil, err
	}
	j := inner[0]
	rows, _ := j.Dims()

	out := make([]*mat.Dense, len(s.table))
	for i, sp := range s.table {
		out[i] = mat.DenseCopyOf(j.Slice(0, rows, sp.Start, sp.End))
	}
	return out, nil
}
