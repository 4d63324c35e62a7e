package workers

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Pool runs work over items with at most n calls in flight. Every result is
// handed to write on the calling goroutine, one at a time, in completion
// order, so write can touch the database without further locking.
//
// If write returns an error the pass stops: no new items are started,
// results still in flight are dropped, and Pool returns that error. If ctx
// is canceled the pass stops the same way; results already written stay
// written.
func Pool[T, R any](
	ctx context.Context,
	n int,
	items []T,
	work func(context.Context, T) (R, error),
	write func(T, R, error) error,
) error {
	if n < 1 {
		n = 1
	}

	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	type result struct {
		item T
		r    R
		err  error
	}
	results := make(chan result)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(n)
	go func() {
		defer close(results)
		for _, item := range items {
			if gctx.Err() != nil {
				break
			}
			g.Go(func() error {
				r, err := work(gctx, item)
				select {
				case results <- result{item, r, err}:
				case <-gctx.Done():
				}
				return nil
			})
		}
		g.Wait()
	}()

	var writeErr error
	for res := range results {
		if writeErr != nil {
			continue
		}
		if err := write(res.item, res.r, res.err); err != nil {
			writeErr = err
			cancel(err)
		}
	}

	if writeErr != nil {
		return writeErr
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("canceled: %w", context.Cause(ctx))
	}
	return nil
}
