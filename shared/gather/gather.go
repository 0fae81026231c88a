// Package gather runs a batch of independent operations concurrently and
// collects every per-item outcome instead of failing the batch on the first
// error.
package gather

import (
	"context"
	"sync"
)

// Result couples one input with the outcome of its operation.
type Result[T, R any] struct {
	Input T
	Value R
	Err   error
}

// Settle runs fn for every input concurrently and waits for all of them.
// Results are returned in input order; one input's failure never affects
// its siblings.
func Settle[T, R any](ctx context.Context, inputs []T, fn func(context.Context, T) (R, error)) []Result[T, R] {
	results := make([]Result[T, R], len(inputs))

	var wg sync.WaitGroup
	for i, input := range inputs {
		wg.Add(1)
		go func(i int, input T) {
			defer wg.Done()
			value, err := fn(ctx, input)
			results[i] = Result[T, R]{Input: input, Value: value, Err: err}
		}(i, input)
	}
	wg.Wait()

	return results
}

// Successes filters settled results down to the values that completed
// without error, preserving input order.
func Successes[T, R any](results []Result[T, R]) []R {
	values := make([]R, 0, len(results))
	for _, result := range results {
		if result.Err == nil {
			values = append(values, result.Value)
		}
	}
	return values
}
