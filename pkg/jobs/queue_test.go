package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type taskRecorder struct {
	mu    sync.Mutex
	seen  []Task
	fails int
	done  chan struct{}
}

func (r *taskRecorder) handle(_ context.Context, task Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, task)
	if r.fails > 0 {
		r.fails--
		return errors.New("transient")
	}
	select {
	case r.done <- struct{}{}:
	default:
	}
	return nil
}

func (r *taskRecorder) tasks() []Task {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Task, len(r.seen))
	copy(out, r.seen)
	return out
}

func TestQueueRejectsEnqueueBeforeStart(t *testing.T) {
	q := NewQueue("exports", func(context.Context, Task) error { return nil }, QueueConfig{})
	require.Error(t, q.Enqueue("job-1"))
}

func TestQueueDeliversTask(t *testing.T) {
	rec := &taskRecorder{done: make(chan struct{}, 1)}
	q := NewQueue("exports", rec.handle, QueueConfig{Workers: 2})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue("job-1"))
	select {
	case <-rec.done:
	case <-time.After(2 * time.Second):
		t.Fatal("task was not processed")
	}

	tasks := rec.tasks()
	require.Len(t, tasks, 1)
	assert.Equal(t, "job-1", tasks[0].JobID)
	assert.Equal(t, 0, tasks[0].Attempt)
	assert.False(t, tasks[0].EnqueuedAt.IsZero())
}

func TestQueueRetriesWithIncreasingAttempt(t *testing.T) {
	rec := &taskRecorder{fails: 2, done: make(chan struct{}, 1)}
	q := NewQueue("exports", rec.handle, QueueConfig{
		Workers:    1,
		MaxRetries: 3,
		RetryDelay: time.Millisecond,
	})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue("job-2"))
	select {
	case <-rec.done:
	case <-time.After(2 * time.Second):
		t.Fatal("task never succeeded")
	}

	tasks := rec.tasks()
	require.Len(t, tasks, 3)
	assert.Equal(t, 1, tasks[1].Attempt)
	assert.Equal(t, 2, tasks[2].Attempt)
}

func TestQueueBackoffCapped(t *testing.T) {
	q := NewQueue("exports", func(context.Context, Task) error { return nil }, QueueConfig{
		RetryDelay: 10 * time.Second,
	})
	assert.Equal(t, 10*time.Second, q.backoff(1))
	assert.Equal(t, 20*time.Second, q.backoff(2))
	assert.Equal(t, maxBackoff, q.backoff(5))
}
