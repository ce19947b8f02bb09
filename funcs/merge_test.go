package funcs_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/on-the-ground/diff_ive_go/funcs"
)

// spyInner records the block inputs it observes, dims (2, 3) -> 1, with
// per-block Jacobians J0 = [[1 2]] and J1 = [[3 4 5]].
type spyInner struct {
	*funcs.DiffLeafFunc
	observed [][]float64
}

func newSpyInner() *spyInner {
	s := &spyInner{}
	s.DiffLeafFunc = funcs.NewDiffLeaf(
		func(xs ...[]float64) ([]float64, error) {
			s.observed = xs
			return []float64{0}, nil
		},
		func(xs ...[]float64) ([]*mat.Dense, error) {
			return []*mat.Dense{
				mat.NewDense(1, 2, []float64{1, 2}),
				mat.NewDense(1, 3, []float64{3, 4, 5}),
			}, nil
		},
		[]int{2, 3}, 1,
	)
	return s
}

func TestMergeIn_Dims(t *testing.T) {
	m, err := funcs.NewMergeIn(sumDiffLeaf())
	require.NoError(t, err)

	assert.Equal(t, []int{5}, m.DimsIn())
	assert.Equal(t, 1, m.DimOut())
}

func TestMergeIn_SlicesFlatInput(t *testing.T) {
	inner := newSpyInner()
	m, err := funcs.NewMergeIn(inner)
	require.NoError(t, err)

	require.NoError(t, m.SetInputs(funcs.NewInput([]float64{1, 2, 3, 4, 5})))
	require.NoError(t, m.Compute(context.Background()))

	require.Len(t, inner.observed, 2)
	assert.Equal(t, []float64{1, 2}, inner.observed[0])
	assert.Equal(t, []float64{3, 4, 5}, inner.observed[1])
}

func TestMergeIn_RejectsWrongShape(t *testing.T) {
	m, err := funcs.NewMergeIn(sumDiffLeaf())
	require.NoError(t, err)

	err = m.SetInputs(funcs.NewInput([]float64{1, 2, 3}))
	require.ErrorIs(t, err, funcs.ErrDimensionMismatch)

	err = m.SetInputs(funcs.NewInput([]float64{1, 2}), funcs.NewInput([]float64{3, 4, 5}))
	require.ErrorIs(t, err, funcs.ErrDimensionMismatch)
}

func TestMergeIn_JacAssembly(t *testing.T) {
	inner := newSpyInner()
	m, err := funcs.NewMergeIn(inner)
	require.NoError(t, err)

	require.NoError(t, m.SetInputs(funcs.NewInput([]float64{1, 2, 3, 4, 5})))
	require.NoError(t, m.Compute(context.Background()))

	jac, err := m.Jac()
	require.NoError(t, err)
	require.Len(t, jac, 1)

	want := mat.NewDense(1, 5, []float64{1, 2, 3, 4, 5})
	assert.True(t, mat.Equal(want, jac[0]), "got %v", mat.Formatted(jac[0]))
}

func TestMergeIn_JacUnsupportedInner(t *testing.T) {
	m, err := funcs.NewMergeIn(sumLeaf())
	require.NoError(t, err)

	_, err = m.Jac()
	require.ErrorIs(t, err, funcs.ErrJacobianUnsupported)
}

func TestMergeIn_ValDelegates(t *testing.T) {
	m, err := funcs.NewMergeIn(sumDiffLeaf())
	require.NoError(t, err)

	got, err := funcs.Call(context.Background(), m, funcs.NewInput([]float64{1, 2, 3, 4, 5}))
	require.NoError(t, err)
	assert.Equal(t, []float64{15}, got)
}
