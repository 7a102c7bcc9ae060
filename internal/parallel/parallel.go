// Package parallel runs N independent work items across a fixed-size pool
// of workers.
//
// The pool guarantees each index in [0, n) is delivered to exactly one
// worker call exactly once, with no ordering between items. Cancellation is
// cooperative and observed only between indices: an in-flight callback is
// never interrupted and whatever it produced remains consumed.
package parallel

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Func processes one work item. The worker argument identifies which pool
// worker is running the call, so callers can keep per-worker scratch
// buffers instead of shared mutable state.
type Func func(ctx context.Context, index int64, worker int) error

// Foreach dispatches indices [0, n) across a pool of the given size. A
// non-positive worker count uses one worker per CPU. The first callback
// error cancels the dispatch loop and is returned after in-flight calls
// drain.
func Foreach(ctx context.Context, n int64, workers int, fn Func) error {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	g, ctx := errgroup.WithContext(ctx)
	indices := make(chan int64)

	g.Go(func() error {
		defer close(indices)
		for i := int64(0); i < n; i++ {
			select {
			case indices <- i:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	for w := 0; w < workers; w++ {
		w := w
		g.Go(func() error {
			for i := range indices {
				if err := ctx.Err(); err != nil {
					return err
				}
				if err := fn(ctx, i, w); err != nil {
					return err
				}
			}
			return nil
		})
	}

	return g.Wait()
}
