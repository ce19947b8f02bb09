// Package funcs provides a composable abstraction over multivariate
// vector-valued functions and their Jacobians, for use inside gradient-based
// optimizers and differentiable pipelines.
//
// # The Func contract
//
// A Func wraps a numeric mapping from one or more input blocks to a single
// output vector. Its lifecycle is always the same three steps:
//
//	f.SetInputs(xs...) // store inputs, never computes
//	f.Compute(ctx)     // map current inputs to a fresh value
//	f.Val()            // read the result
//
// Funcs that can also produce partial derivatives implement Differentiable,
// exposing one Jacobian matrix per input block. JacOf is the dynamic
// accessor for callers holding a plain Func; it reports
// ErrJacobianUnsupported when the capability is missing.
//
// # Composition
//
// Wrappers adapt the input shape of an inner Func without touching its
// semantics:
//   - MergeIn exposes one flat input vector and slices it into the inner
//     func's blocks; its Jacobian is the column-wise assembly of the inner
//     per-block Jacobians.
//   - SplitIn is the inverse: several declared blocks concatenated into the
//     inner func's single flat input, with the inner Jacobian's columns
//     carved back into per-block matrices.
//   - LazySingle memoizes a single-input func at its most recent input,
//     keyed by the input's identity token.
//
// Each wrapper exclusively owns its inner Func and is its sole input
// mutator. Sharing one inner Func between two wrappers corrupts its input
// state; don't.
//
// # Offloading
//
// NewProcLeaf builds a leaf whose compute runs on a worker pool shared
// across the process. SharedPool returns that pool, created on first use;
// CloseSharedPool tears it down at process exit. None of the Func types are
// safe for concurrent mutation of the same instance.
package funcs
