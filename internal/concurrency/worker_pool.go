package concurrency

import (
	"context"

	"golang.org/x/sync/errgroup"
)

type WorkerFn func(ctx context.Context, index int) error

// ForEach runs fn for every index in [0, tasks) on at most workers goroutines.
// The first error cancels the context passed to the remaining calls and is
// returned.
func ForEach(ctx context.Context, workers, tasks int, fn WorkerFn) error {
	if workers < 1 {
		workers = 1
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := 0; i < tasks; i++ {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return fn(ctx, i)
		})
	}
	return g.Wait()
}
