package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Task points at one export job row. The queue only moves identifiers
// around; parameters, progress and results live in the export_jobs table,
// so a restart loses nothing that cannot be replayed from the database.
type Task struct {
	JobID      string
	Attempt    int
	EnqueuedAt time.Time
}

// Handler processes one export task. Returning an error schedules a retry
// with exponential backoff until MaxRetries is exhausted.
type Handler func(ctx context.Context, task Task) error

// QueueConfig tunes the worker pool.
type QueueConfig struct {
	Workers    int
	BufferSize int
	MaxRetries int
	// RetryDelay is the backoff base. Attempt n waits RetryDelay * 2^(n-1),
	// capped at one minute.
	RetryDelay time.Duration
	Logger     *zap.Logger
}

const maxBackoff = time.Minute

// Queue dispatches export tasks to a fixed pool of workers. It is in-memory
// on purpose: export jobs are recovered from their queued rows at startup,
// so a broker would only duplicate state the database already holds.
type Queue struct {
	name    string
	handler Handler

	workers    int
	maxRetries int
	retryDelay time.Duration
	logger     *zap.Logger

	tasks   chan Task
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.Mutex
	started bool
}

// NewQueue builds a queue that feeds tasks to handler.
func NewQueue(name string, handler Handler, cfg QueueConfig) *Queue {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = cfg.Workers * 4
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return &Queue{
		name:       name,
		handler:    handler,
		workers:    cfg.Workers,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		logger:     cfg.Logger,
		tasks:      make(chan Task, cfg.BufferSize),
	}
}

// Start launches the workers. Calling Start twice is a no-op.
func (q *Queue) Start(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.started {
		return
	}
	q.ctx, q.cancel = context.WithCancel(ctx)
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.work()
	}
	q.started = true
	q.logger.Sugar().Infow("export queue started", "queue", q.name, "workers", q.workers)
}

// Stop cancels the workers and waits for in-flight tasks to finish.
func (q *Queue) Stop() {
	q.mu.Lock()
	if !q.started {
		q.mu.Unlock()
		return
	}
	q.cancel()
	q.mu.Unlock()
	q.wg.Wait()
	q.logger.Sugar().Infow("export queue stopped", "queue", q.name)
}

// Enqueue schedules processing for an export job by its ID.
func (q *Queue) Enqueue(jobID string) error {
	return q.submit(Task{JobID: jobID, EnqueuedAt: time.Now().UTC()})
}

func (q *Queue) submit(task Task) error {
	q.mu.Lock()
	ctx := q.ctx
	started := q.started
	q.mu.Unlock()

	if !started {
		return fmt.Errorf("queue %s not started", q.name)
	}
	select {
	case <-ctx.Done():
		return fmt.Errorf("queue %s stopped: %w", q.name, ctx.Err())
	case q.tasks <- task:
		return nil
	}
}

func (q *Queue) work() {
	defer q.wg.Done()
	for {
		select {
		case <-q.ctx.Done():
			return
		case task := <-q.tasks:
			if err := q.handler(q.ctx, task); err != nil {
				q.retry(task, err)
			}
		}
	}
}

func (q *Queue) retry(task Task, err error) {
	task.Attempt++
	if task.Attempt > q.maxRetries {
		q.logger.Sugar().Errorw("export task exhausted retries",
			"queue", q.name, "job_id", task.JobID, "attempts", task.Attempt-1, "error", err)
		return
	}
	delay := q.backoff(task.Attempt)
	q.logger.Sugar().Warnw("export task failed, retrying",
		"queue", q.name, "job_id", task.JobID, "attempt", task.Attempt, "delay", delay, "error", err)

	go func(t Task) {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-q.ctx.Done():
		case <-timer.C:
			if err := q.submit(t); err != nil {
				q.logger.Sugar().Errorw("failed to requeue export task",
					"queue", q.name, "job_id", t.JobID, "error", err)
			}
		}
	}(task)
}

func (q *Queue) backoff(attempt int) time.Duration {
	delay := q.retryDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= maxBackoff {
			return maxBackoff
		}
	}
	return delay
}
