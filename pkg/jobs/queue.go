package jobs

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrQueueFull is returned when the buffer has no room for another task.
	ErrQueueFull = errors.New("jobs: queue full")
	// ErrQueueClosed is returned for tasks offered outside Start and Stop.
	ErrQueueClosed = errors.New("jobs: queue not running")
)

// Task is a unit of background work carrying a typed payload.
type Task[T any] struct {
	ID       string
	Payload  T
	Enqueued time.Time
}

// Handler runs one task. The context carries the per-task deadline.
type Handler[T any] func(context.Context, Task[T]) error

// Options tune a Queue. Zero values pick one worker, a buffer of sixteen
// tasks per worker and a thirty second task deadline.
type Options struct {
	Workers     int
	BufferSize  int
	TaskTimeout time.Duration
	Logger      *zap.Logger
}

// Queue fans typed tasks out to a fixed worker pool. Failed tasks are logged
// and dropped; Stop waits for the buffer to drain.
type Queue[T any] struct {
	name    string
	handler Handler[T]
	opts    Options
	logger  *zap.Logger

	mu      sync.RWMutex
	tasks   chan Task[T]
	base    context.Context
	running bool
	wg      sync.WaitGroup
}

// NewQueue prepares a queue; no goroutine runs until Start.
func NewQueue[T any](name string, handler Handler[T], opts Options) *Queue[T] {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.BufferSize <= 0 {
		opts.BufferSize = opts.Workers * 16
	}
	if opts.TaskTimeout <= 0 {
		opts.TaskTimeout = 30 * time.Second
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Queue[T]{
		name:    name,
		handler: handler,
		opts:    opts,
		logger:  logger.With(zap.String("queue", name)),
	}
}

// Start launches the workers. Tasks inherit values from ctx but not its
// cancellation, so Stop can finish buffered work.
func (q *Queue[T]) Start(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.running {
		return
	}
	q.base = context.WithoutCancel(ctx)
	q.tasks = make(chan Task[T], q.opts.BufferSize)
	q.running = true
	for i := 0; i < q.opts.Workers; i++ {
		q.wg.Add(1)
		go q.work(q.tasks)
	}
	q.logger.Info("queue started", zap.Int("workers", q.opts.Workers), zap.Int("buffer", q.opts.BufferSize))
}

// Stop refuses new tasks and blocks until every buffered task has run.
func (q *Queue[T]) Stop() {
	q.mu.Lock()
	if !q.running {
		q.mu.Unlock()
		return
	}
	q.running = false
	pending := len(q.tasks)
	close(q.tasks)
	q.mu.Unlock()

	q.wg.Wait()
	q.logger.Info("queue stopped", zap.Int("drained", pending))
}

// Enqueue offers a task without blocking.
func (q *Queue[T]) Enqueue(task Task[T]) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if !q.running {
		return ErrQueueClosed
	}
	if task.Enqueued.IsZero() {
		task.Enqueued = time.Now().UTC()
	}
	select {
	case q.tasks <- task:
		return nil
	default:
		return ErrQueueFull
	}
}

// Pending reports how many tasks wait in the buffer.
func (q *Queue[T]) Pending() int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.tasks == nil {
		return 0
	}
	return len(q.tasks)
}

func (q *Queue[T]) work(tasks <-chan Task[T]) {
	defer q.wg.Done()
	for task := range tasks {
		q.run(task)
	}
}

func (q *Queue[T]) run(task Task[T]) {
	ctx, cancel := context.WithTimeout(q.base, q.opts.TaskTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			q.logger.Error("task panicked", zap.String("task_id", task.ID), zap.Any("panic", r))
		}
	}()

	started := time.Now()
	if err := q.handler(ctx, task); err != nil {
		q.logger.Error("task failed",
			zap.String("task_id", task.ID),
			zap.Duration("waited", started.Sub(task.Enqueued)),
			zap.Error(err),
		)
	}
}
