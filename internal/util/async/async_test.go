package async

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunBounded_Empty(t *testing.T) {
	results := RunBounded[int](context.Background(), 4, nil)
	assert.Empty(t, results)
}

func TestRunBounded_AllTasksProduceResults(t *testing.T) {
	tasks := []Task[int]{
		{Name: "a", Func: func(context.Context) int { return 1 }},
		{Name: "b", Func: func(context.Context) int { return 2 }},
		{Name: "c", Func: func(context.Context) int { return 3 }},
	}

	results := RunBounded(context.Background(), 2, tasks)
	require.Len(t, results, 3)
	assert.Equal(t, "a", results[0].Name)
	assert.Equal(t, 1, results[0].Value)
	assert.Equal(t, 2, results[1].Value)
	assert.Equal(t, 3, results[2].Value)
	for _, r := range results {
		assert.False(t, r.Skipped)
	}
}

func TestRunBounded_RespectsLimit(t *testing.T) {
	var running, peak atomic.Int32

	tasks := make([]Task[struct{}], 8)
	for i := range tasks {
		tasks[i] = Task[struct{}]{
			Name: "t",
			Func: func(context.Context) struct{} {
				cur := running.Add(1)
				for {
					old := peak.Load()
					if cur <= old || peak.CompareAndSwap(old, cur) {
						break
					}
				}
				time.Sleep(5 * time.Millisecond)
				running.Add(-1)
				return struct{}{}
			},
		}
	}

	RunBounded(context.Background(), 2, tasks)
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestRunBounded_CancelSkipsUnstartedTasks(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	started := make(chan struct{})
	tasks := []Task[string]{
		{Name: "first", Func: func(context.Context) string {
			close(started)
			time.Sleep(20 * time.Millisecond)
			return "done"
		}},
		{Name: "second", Func: func(context.Context) string { return "done" }},
	}

	go func() {
		<-started
		cancel()
	}()

	results := RunBounded(ctx, 1, tasks)
	require.Len(t, results, 2)
	assert.False(t, results[0].Skipped, "in-flight task must finish and record a result")
	assert.Equal(t, "done", results[0].Value)
	assert.True(t, results[1].Skipped, "unstarted task must not be launched after cancel")
}

func TestRunBounded_InFlightTaskSurvivesCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	tasks := []Task[bool]{
		{Name: "slow", Func: func(taskCtx context.Context) bool {
			cancel()
			time.Sleep(10 * time.Millisecond)
			return taskCtx.Err() == nil
		}},
	}

	results := RunBounded(ctx, 1, tasks)
	require.Len(t, results, 1)
	assert.True(t, results[0].Value, "task context must not inherit cancellation")
}
