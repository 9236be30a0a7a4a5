package batch

import (
	"context"
	"sync"
)

// Run calls fn for every item using at most workers goroutines and returns
// the results in input order. Items not yet started when ctx is cancelled
// are skipped and Run returns ctx.Err() alongside the partial results.
func Run[T, R any](ctx context.Context, items []T, workers int, fn func(ctx context.Context, i int, item T) R) ([]R, error) {
	results := make([]R, len(items))
	if len(items) == 0 {
		return results, ctx.Err()
	}
	if workers <= 0 {
		workers = 1
	}
	if workers > len(items) {
		workers = len(items)
	}

	next := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range next {
				results[i] = fn(ctx, i, items[i])
			}
		}()
	}

	var err error
dispatch:
	for i := range items {
		if err = ctx.Err(); err != nil {
			break
		}
		select {
		case <-ctx.Done():
			err = ctx.Err()
			break dispatch
		case next <- i:
		}
	}
	close(next)
	wg.Wait()
	return results, err
}
