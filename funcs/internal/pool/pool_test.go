package pool_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/on-the-ground/diff_ive_go/funcs/internal/pool"
)

func newTestPool(t *testing.T, workers, buffer int) *pool.Pool {
	t.Helper()
	p := pool.New(context.Background(), workers, buffer, pool.WithLogger(zap.NewNop()))
	t.Cleanup(p.Close)
	return p
}

func awaitResult(t *testing.T, ch <-chan pool.Result) pool.Result {
	t.Helper()
	select {
	case res := <-ch:
		return res
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for pool result")
		return pool.Result{}
	}
}

func TestPool_SubmitReturnsValue(t *testing.T) {
	p := newTestPool(t, 2, 1)

	ch := p.Submit(context.Background(), "k", func() ([]float64, error) {
		return []float64{3, 4}, nil
	})

	res := awaitResult(t, ch)
	require.NoError(t, res.Err)
	assert.Equal(t, []float64{3, 4}, res.Value)
}

func TestPool_ErrorPropagates(t *testing.T) {
	p := newTestPool(t, 1, 1)

	boom := errors.New("boom")
	ch := p.Submit(context.Background(), "k", func() ([]float64, error) {
		return nil, boom
	})

	res := awaitResult(t, ch)
	require.ErrorIs(t, res.Err, boom)
	assert.Nil(t, res.Value)
}

func TestPool_SpanCoversExecution(t *testing.T) {
	p := newTestPool(t, 1, 1)

	ch := p.Submit(context.Background(), "k", func() ([]float64, error) {
		time.Sleep(20 * time.Millisecond)
		return []float64{1}, nil
	})

	res := awaitResult(t, ch)
	require.NoError(t, res.Err)
	assert.GreaterOrEqual(t, res.Span.Duration(), 20*time.Millisecond)
}

func TestPool_SameKeyKeepsOrder(t *testing.T) {
	p := newTestPool(t, 4, 16)

	var got []float64
	chs := make([]<-chan pool.Result, 0, 8)
	for i := 0; i < 8; i++ {
		n := float64(i)
		chs = append(chs, p.Submit(context.Background(), "same-key", func() ([]float64, error) {
			got = append(got, n) // single worker per key, no race
			return []float64{n}, nil
		}))
	}
	for i, ch := range chs {
		res := awaitResult(t, ch)
		require.NoError(t, res.Err)
		assert.Equal(t, []float64{float64(i)}, res.Value)
	}
	assert.Equal(t, []float64{0, 1, 2, 3, 4, 5, 6, 7}, got)
}

func TestPool_SubmitAfterClose(t *testing.T) {
	p := pool.New(context.Background(), 1, 1, pool.WithLogger(zap.NewNop()))
	p.Close()
	p.Close() // idempotent

	ch := p.Submit(context.Background(), "k", func() ([]float64, error) {
		return []float64{1}, nil
	})

	res := awaitResult(t, ch)
	require.ErrorIs(t, res.Err, pool.ErrClosed)
}

func TestPool_CanceledContext(t *testing.T) {
	p := newTestPool(t, 1, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ch := p.Submit(ctx, "k", func() ([]float64, error) {
		return []float64{1}, nil
	})

	res := awaitResult(t, ch)
	require.ErrorIs(t, res.Err, context.Canceled)
}
