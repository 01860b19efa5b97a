package concurrency

import (
	"context"
	"sync"
)

// ForEach runs fn once per item with at most maxWorkers goroutines and
// returns every error produced. It always waits for in-flight calls to
// finish; a cancelled ctx only stops new items from starting.
func ForEach[T any](
	ctx context.Context,
	items []T,
	maxWorkers int,
	fn func(ctx context.Context, item T) error,
) []error {
	if len(items) == 0 {
		return nil
	}

	if maxWorkers <= 0 {
		maxWorkers = 4
	}
	if maxWorkers > len(items) {
		maxWorkers = len(items)
	}

	jobs := make(chan T, len(items))
	errs := make(chan error, len(items))

	var wg sync.WaitGroup
	for w := 0; w < maxWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range jobs {
				select {
				case <-ctx.Done():
					errs <- ctx.Err()
					return
				default:
					if err := fn(ctx, item); err != nil {
						errs <- err
					}
				}
			}
		}()
	}

	for _, item := range items {
		jobs <- item
	}
	close(jobs)

	wg.Wait()
	close(errs)

	var errorList []error
	for err := range errs {
		errorList = append(errorList, err)
	}
	return errorList
}
