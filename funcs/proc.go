package funcs

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/google/uuid"

	"github.com/on-the-ground/diff_ive_go/funcs/internal/pool"
)

// ProcFunc is a leaf whose compute is submitted to a worker pool. All
// submissions from one ProcFunc carry the same routing key, so they land on
// the same worker in order. Compute blocks until the worker returns or the
// caller's context is done; there is no timeout and no retry.
type ProcFunc struct {
	LeafFunc
	pool *pool.Pool
	key  string
}

var _ Func = &ProcFunc{}

// NewProcLeaf wraps fn as a pool-offloaded leaf. The pool is injected so
// its lifetime stays explicit; pass SharedPool() for the process-wide one.
func NewProcLeaf(fn ArrayFunc, dimsIn []int, dimOut int, p *pool.Pool) *ProcFunc {
	return &ProcFunc{
		LeafFunc: LeafFunc{fn: fn, dimsIn: dimsIn, dimOut: dimOut},
		pool:     p,
		key:      uuid.New().String(),
	}
}

func (pf *ProcFunc) Compute(ctx context.Context) error {
	if pf.xs == nil {
		return ErrNoInputs
	}
	// copied, not aliased: the job must not share memory with the caller
	args := copyArgs(pf.xs)

	resCh := pf.pool.Submit(ctx, pf.key, func() ([]float64, error) {
		return pf.fn(args...)
	})

	select {
	case res := <-resCh:
		if res.Err != nil {
			return fmt.Errorf("proc compute: %w", res.Err)
		}
		if len(res.Value) != pf.dimOut {
			return fmt.Errorf("%w: callable returned length %d, want %d",
				ErrDimensionMismatch, len(res.Value), pf.dimOut)
		}
		pf.val = res.Value
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

var (
	sharedMu   sync.Mutex
	sharedPool *pool.Pool
)

// SharedPool returns the process-wide worker pool, creating it on first use
// with one worker per CPU. Every ProcFunc built against it shares the same
// workers.
func SharedPool() *pool.Pool {
	sharedMu.Lock()
	defer sharedMu.Unlock()
	if sharedPool == nil {
		sharedPool = pool.New(context.Background(), runtime.NumCPU(), 1)
	}
	return sharedPool
}

// CloseSharedPool tears the shared pool down. Call it at process exit; a
// later SharedPool call starts a fresh pool.
func CloseSharedPool() {
	sharedMu.Lock()
	defer sharedMu.Unlock()
	if sharedPool != nil {
		sharedPool.Close()
		sharedPool = nil
	}
}
