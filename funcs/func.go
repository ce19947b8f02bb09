package funcs

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/mat"
)

var (
	// ErrDimensionMismatch reports inconsistent dimensions, either at
	// wrapper construction or when inputs of the wrong shape are set.
	ErrDimensionMismatch = errors.New("inconsistent dimensions")

	// ErrJacobianUnsupported reports a Jacobian request against a func that
	// cannot supply one.
	ErrJacobianUnsupported = errors.New("jacobian not supported")

	// ErrNoInputs reports a compute or read before any inputs were set.
	ErrNoInputs = errors.New("no inputs set")
)

// Input is one input block: a float64 vector plus an opaque identity token.
// The token, not the data, is what LazySingle compares: two Inputs built
// from equal data are still distinct points unless they share a token.
type Input struct {
	id   uuid.UUID
	data []float64
}

// NewInput wraps data in an Input carrying a fresh identity token. The data
// is referenced, not copied.
func NewInput(data []float64) Input {
	return Input{id: uuid.New(), data: data}
}

func (in Input) Data() []float64 { return in.data }

func (in Input) Len() int { return len(in.data) }

// Same reports whether both inputs carry the same identity token.
func (in Input) Same(other Input) bool { return in.id == other.id }

// Func is the capability contract shared by every function in this package.
//
// DimsIn and DimOut are fixed for the object's lifetime and queryable before
// any input is set. SetInputs stores inputs without computing. Compute maps
// the current inputs to a fresh value; it is safe to call repeatedly and
// always reflects the inputs most recently set. On a compute failure the
// previously computed value (and Jacobian, where supported) stays intact.
type Func interface {
	DimsIn() []int
	DimOut() int
	Inputs() []Input
	SetInputs(xs ...Input) error
	Compute(ctx context.Context) error
	Val() []float64
}

// Differentiable is a Func that also produces one Jacobian per input block,
// each of shape DimOut × DimsIn[i], reflecting the most recent Compute.
type Differentiable interface {
	Func
	Jac() ([]*mat.Dense, error)
}

// JacOf is the dynamic capability accessor: it returns f's Jacobians, or
// ErrJacobianUnsupported when f is not Differentiable. Callers that can
// check at construction should type-assert to Differentiable instead.
func JacOf(f Func) ([]*mat.Dense, error) {
	d, ok := f.(Differentiable)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrJacobianUnsupported, f)
	}
	return d.Jac()
}

// Call is the one-shot convenience: set inputs, compute, return the fresh
// value.
func Call(ctx context.Context, f Func, xs ...Input) ([]float64, error) {
	if err := f.SetInputs(xs...); err != nil {
		return nil, err
	}
	if err := f.Compute(ctx); err != nil {
		return nil, err
	}
	return f.Val(), nil
}
