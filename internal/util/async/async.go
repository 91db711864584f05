// Package async provides a bounded parallel batch runner.
//
// Batches of independent reconciliation items run concurrently up to a
// configurable limit. Every started item runs to completion and records a
// result; cancellation only prevents not-yet-started items from launching,
// so no control-plane write is left in an unrecorded state.
package async

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// Task is a named unit of batch work producing a value of type T.
type Task[T any] struct {
	Name string
	Func func(context.Context) T
}

// Result pairs a task name with the value it produced.
type Result[T any] struct {
	Name  string
	Value T

	// Skipped is true when the task was never started because the run
	// was cancelled before a slot became available.
	Skipped bool
}

// RunBounded executes tasks with at most limit running concurrently and
// returns one result per task, in input order. Tasks that have started
// when the context is cancelled run to completion on a detached context;
// tasks that have not started are marked Skipped.
func RunBounded[T any](ctx context.Context, limit int64, tasks []Task[T]) []Result[T] {
	if limit < 1 {
		limit = 1
	}

	sem := semaphore.NewWeighted(limit)
	results := make([]Result[T], len(tasks))

	var wg sync.WaitGroup
	for i, task := range tasks {
		results[i].Name = task.Name

		if err := sem.Acquire(ctx, 1); err != nil {
			results[i].Skipped = true
			continue
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer sem.Release(1)
			// Detached context: an in-flight call finishes and records
			// its outcome even if the operator cancels mid-batch.
			results[i].Value = task.Func(context.WithoutCancel(ctx))
		}()
	}

	wg.Wait()
	return results
}
