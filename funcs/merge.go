package funcs

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/on-the-ground/diff_ive_go/shared/span"
)

// MergeIn adapts a multi-input Func into a single-flat-vector-input Func.
// The flat input of width D = Σ inner.DimsIn() is sliced per a table fixed
// at construction and assigned, block by block, as the inner func's inputs.
//
// MergeIn exclusively owns the inner func's input state. It does not own the
// inner func's data otherwise; Val delegates unchanged.
type MergeIn struct {
	inner Func
	table []span.Span
	dimIn int
	xs    []Input
}

var _ Differentiable = &MergeIn{}

func NewMergeIn(inner Func) (*MergeIn, error) {
	table, total, err := span.Partition(inner.DimsIn()...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDimensionMismatch, err)
	}
	return &MergeIn{inner: inner, table: table, dimIn: total}, nil
}

func (m *MergeIn) DimsIn() []int { return []int{m.dimIn} }

func (m *MergeIn) DimOut() int { return m.inner.DimOut() }

func (m *MergeIn) Inputs() []Input { return m.xs }

// SetInputs accepts exactly one flat input of width D. The block slices
// handed to the inner func alias the flat vector; no copy is made.
func (m *MergeIn) SetInputs(xs ...Input) error {
	if len(xs) != 1 {
		return fmt.Errorf("%w: merged func takes 1 flat input, got %d",
			ErrDimensionMismatch, len(xs))
	}
	x := xs[0]
	if x.Len() != m.dimIn {
		return fmt.Errorf("%w: flat input has length %d, want %d",
			ErrDimensionMismatch, x.Len(), m.dimIn)
	}

	blocks := make([]Input, len(m.table))
	for i, s := range m.table {
		blocks[i] = NewInput(s.Of(x.Data()))
	}
	if err := m.inner.SetInputs(blocks...); err != nil {
		return err
	}
	m.xs = xs
	return nil
}

func (m *MergeIn) Compute(ctx context.Context) error {
	return m.inner.Compute(ctx)
}

func (m *MergeIn) Val() []float64 { return m.inner.Val() }

// Jac assembles the inner per-block Jacobians column-wise into a single
// DimOut × D matrix: column block i of the result is the inner Jacobian
// with respect to input block i.
func (m *MergeIn) Jac() ([]*mat.Dense, error) {
	blocks, err := JacOf(m.inner)
	if err != nil {
		return nil, err
	}
	rows := m.inner.DimOut()
	merged := mat.NewDense(rows, m.dimIn, nil)
	for i, s := range m.table {
		merged.Slice(0, rows, s.Start, s.End).(*mat.Dense).Copy(blocks[i])
	}
	return []*mat.Dense{merged}, nil
}
