// Package batch runs one extraction job per input file on a bounded pool
// of workers.
package batch

import (
	"context"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Progress receives one tick per finished item.
type Progress interface {
	Add(n int) error
}

// Result pairs an input with the outcome of its job.
type Result[T, R any] struct {
	Err   error
	Input T
	Value R
}

// Options tunes a batch run.
type Options struct {
	Progress Progress
	Logger   *slog.Logger
	Workers  int
}

func (o Options) workers(n int) int {
	w := o.Workers
	if w <= 0 {
		w = runtime.NumCPU()
	}
	return max(1, min(w, n))
}

// Run applies fn to every input with at most Options.Workers jobs in
// flight. Results are returned in input order. A failing job is recorded
// in its Result and does not stop the others; only context cancellation
// aborts the run, in which case the context error is returned.
func Run[T, R any](ctx context.Context, inputs []T, opts Options, fn func(ctx context.Context, input T) (R, error)) ([]Result[T, R], error) {
	results := make([]Result[T, R], len(inputs))
	if len(inputs) == 0 {
		return results, nil
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.workers(len(inputs)))

	for i, input := range inputs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			value, err := fn(gctx, input)
			results[i] = Result[T, R]{Input: input, Value: value, Err: err}
			if err != nil {
				logger.Debug("batch job failed", "index", i, "error", err)
			}

			if opts.Progress != nil {
				if perr := opts.Progress.Add(1); perr != nil {
					logger.Warn("Failed to update progress", "error", perr)
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	if err := ctx.Err(); err != nil {
		return results, err
	}
	return results, nil
}
