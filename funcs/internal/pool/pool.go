// Package pool implements the shared worker pool that backs pool-offloaded
// leaf functions. Each worker goroutine owns one buffered job channel; jobs
// are routed to workers by hashing the submission key, so all jobs carrying
// the same key are handled by the same worker, in submission order.
package pool

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"github.com/rickb777/date/v2/timespan"
	"go.uber.org/zap"
)

// Job is one unit of work executed on a pool worker.
type Job func() ([]float64, error)

// Result carries a worker's return value, its error, and the time span the
// job spent executing on the worker.
type Result struct {
	Value []float64
	Err   error
	Span  timespan.TimeSpan
}

// ErrClosed is reported by submissions made after Close.
var ErrClosed = errors.New("pool closed")

type job struct {
	fn       Job
	resumeCh chan Result
}

// Pool is a fixed set of worker goroutines sharing per-worker buffered job
// channels. It is process-wide state with an explicit lifecycle: create it
// once, share it across any number of funcs, and Close it at process exit.
type Pool struct {
	PoolId    string
	jobChs    []chan job
	done      chan struct{}
	cancelFn  context.CancelFunc
	closeOnce sync.Once
	logger    *zap.Logger
}

type Option func(*Pool)

// WithLogger replaces the pool's default production logger.
func WithLogger(logger *zap.Logger) Option {
	return func(p *Pool) { p.logger = logger }
}

// New starts numWorkers worker goroutines, each with a job channel of
// bufferSize capacity. Non-positive sizes are clamped to 1.
func New(ctx context.Context, numWorkers, bufferSize int, opts ...Option) *Pool {
	if numWorkers <= 0 {
		numWorkers = 1
	}
	if bufferSize <= 0 {
		bufferSize = 1
	}

	p := &Pool{
		PoolId: uuid.New().String(),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger, _ = zap.NewProduction()
	}

	ctx, p.cancelFn = context.WithCancel(ctx)

	p.jobChs = make([]chan job, numWorkers)
	ready := sync.WaitGroup{}
	for i := 0; i < numWorkers; i++ {
		ready.Add(1)
		ch := make(chan job, bufferSize)
		go func(ch chan job) {
			defer close(ch)
			ready.Done()
			for {
				select {
				case j := <-ch:
					start := time.Now()
					val, err := j.fn()
					j.resumeCh <- Result{
						Value: val,
						Err:   err,
						Span:  timespan.BetweenTimes(start, time.Now()),
					}
					close(j.resumeCh)
				case <-ctx.Done():
					return
				}
			}
		}(ch)
		p.jobChs[i] = ch
	}
	ready.Wait()

	p.logger.Sugar().Debugf("created func pool: poolId: %v, workers: %v", p.PoolId, numWorkers)
	return p
}

// Submit routes fn to the worker owning key and returns the channel the
// result will be delivered on. The channel is buffered, so the worker never
// blocks on a caller that walked away. Submissions after Close, or with an
// already-canceled context, resolve immediately with an error result.
func (p *Pool) Submit(ctx context.Context, key string, fn Job) (out <-chan Result) {
	resumeCh := make(chan Result, 1)
	out = resumeCh
	defer func() {
		// a worker closing its channel can race the enqueue below
		if r := recover(); r != nil {
			p.logger.Sugar().Debugf("submit raced pool close: poolId: %v", p.PoolId)
			resumeCh <- Result{Err: ErrClosed}
			close(resumeCh)
		}
	}()

	j := job{fn: fn, resumeCh: resumeCh}

	// checked first: once closed, the job channels have no consumers left,
	// so a racy enqueue would strand the waiter
	select {
	case <-p.done:
		resumeCh <- Result{Err: ErrClosed}
		close(resumeCh)
		return resumeCh
	default:
	}

	select {
	case <-p.done:
		resumeCh <- Result{Err: ErrClosed}
		close(resumeCh)
	case <-ctx.Done():
		resumeCh <- Result{Err: ctx.Err()}
		close(resumeCh)
	case p.channelOf(key) <- j:
	}
	return resumeCh
}

// Close stops the workers. Idempotent. Jobs still queued when Close is
// called are dropped; their result channels stay empty, which is why waiters
// must also select on their own context.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		close(p.done)
		p.cancelFn()
		p.logger.Sugar().Debugf("closed func pool: poolId: %v", p.PoolId)
	})
}

func (p *Pool) channelOf(key string) chan job {
	if len(p.jobChs) == 1 {
		return p.jobChs[0]
	}
	idx := xxhash.Sum64String(key) % uint64(len(p.jobChs))
	return p.jobChs[idx]
}
