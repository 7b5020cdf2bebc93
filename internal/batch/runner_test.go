package batch

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingProgress struct {
	mu    sync.Mutex
	ticks int
}

func (p *countingProgress) Add(n int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ticks += n
	return nil
}

func TestRunKeepsInputOrder(t *testing.T) {
	inputs := []string{"devoto", "ute", "netflix", "farmashop", "antel"}
	progress := &countingProgress{}

	results, err := Run(context.Background(), inputs, Options{Workers: 3, Progress: progress},
		func(_ context.Context, in string) (string, error) {
			time.Sleep(time.Duration(len(in)) * time.Millisecond)
			return strings.ToUpper(in), nil
		})
	require.NoError(t, err)
	require.Len(t, results, len(inputs))

	for i, r := range results {
		assert.Equal(t, inputs[i], r.Input)
		assert.Equal(t, strings.ToUpper(inputs[i]), r.Value)
		assert.NoError(t, r.Err)
	}
	assert.Equal(t, len(inputs), progress.ticks)
}

func TestRunRecordsFailures(t *testing.T) {
	errBoom := errors.New("boom")

	results, err := Run(context.Background(), []int{1, 2, 3}, Options{Workers: 2},
		func(_ context.Context, n int) (int, error) {
			if n == 2 {
				return 0, errBoom
			}
			return n * 10, nil
		})
	require.NoError(t, err)

	assert.Equal(t, 10, results[0].Value)
	assert.ErrorIs(t, results[1].Err, errBoom)
	assert.Equal(t, 30, results[2].Value)
}

func TestRunRespectsWorkerLimit(t *testing.T) {
	var inFlight, peak atomic.Int32

	_, err := Run(context.Background(), make([]int, 20), Options{Workers: 2},
		func(_ context.Context, _ int) (struct{}, error) {
			n := inFlight.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(2 * time.Millisecond)
			inFlight.Add(-1)
			return struct{}{}, nil
		})
	require.NoError(t, err)
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestRunCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls atomic.Int32
	_, err := Run(ctx, []int{1, 2, 3}, Options{Workers: 1},
		func(_ context.Context, n int) (int, error) {
			calls.Add(1)
			return n, nil
		})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, calls.Load())
}

func TestRunEmpty(t *testing.T) {
	results, err := Run(context.Background(), nil, Options{},
		func(_ context.Context, n int) (int, error) { return n, nil })
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestWorkers(t *testing.T) {
	assert.Equal(t, 1, Options{Workers: 4}.workers(1))
	assert.Equal(t, 4, Options{Workers: 4}.workers(10))
	assert.GreaterOrEqual(t, Options{}.workers(10), 1)
}
