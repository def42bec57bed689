package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrQueueClosed is returned when enqueueing onto a queue that is not running.
	ErrQueueClosed = errors.New("queue is not running")
	// ErrQueueFull is returned when the buffer has no room; Enqueue never waits.
	ErrQueueFull = errors.New("queue is full")
)

// Job wraps a typed payload with delivery bookkeeping.
type Job[T any] struct {
	ID       string
	Kind     string
	Payload  T
	Attempt  int
	Enqueued time.Time
}

// Handler processes one job; a non-nil error schedules a retry.
type Handler[T any] func(context.Context, Job[T]) error

// Options tunes a Queue.
type Options struct {
	Workers    int
	BufferSize int
	MaxRetries int
	RetryDelay time.Duration
	Logger     *zap.Logger
}

func (o Options) withDefaults() Options {
	if o.Workers <= 0 {
		o.Workers = 1
	}
	if o.BufferSize <= 0 {
		o.BufferSize = o.Workers * 16
	}
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	}
	if o.RetryDelay <= 0 {
		o.RetryDelay = time.Second
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

// Queue dispatches jobs to a fixed pool of goroutines and retries failures
// with a linear backoff until MaxRetries is exhausted.
type Queue[T any] struct {
	name    string
	handler Handler[T]
	opts    Options

	jobs   chan Job[T]
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.RWMutex
	running bool
}

// New builds a stopped queue.
func New[T any](name string, handler Handler[T], opts Options) *Queue[T] {
	opts = opts.withDefaults()
	return &Queue[T]{
		name:    name,
		handler: handler,
		opts:    opts,
		jobs:    make(chan Job[T], opts.BufferSize),
	}
}

// Start launches the workers. Calling it twice is a no-op.
func (q *Queue[T]) Start(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.running {
		return
	}
	q.ctx, q.cancel = context.WithCancel(ctx)
	for i := 0; i < q.opts.Workers; i++ {
		q.wg.Add(1)
		go q.work()
	}
	q.running = true
	q.opts.Logger.Info("queue started", zap.String("queue", q.name), zap.Int("workers", q.opts.Workers))
}

// Stop cancels the workers and waits for in-flight jobs to return.
func (q *Queue[T]) Stop() {
	q.mu.Lock()
	if !q.running {
		q.mu.Unlock()
		return
	}
	q.running = false
	q.cancel()
	q.mu.Unlock()

	q.wg.Wait()
	q.opts.Logger.Info("queue stopped", zap.String("queue", q.name), zap.Int("dropped", len(q.jobs)))
}

// Enqueue hands a job to the workers without waiting for it to be processed
// or for buffer space.
func (q *Queue[T]) Enqueue(job Job[T]) error {
	q.mu.RLock()
	running, ctx := q.running, q.ctx
	q.mu.RUnlock()
	if !running {
		return fmt.Errorf("%s: %w", q.name, ErrQueueClosed)
	}
	if job.Enqueued.IsZero() {
		job.Enqueued = time.Now().UTC()
	}

	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", q.name, ErrQueueClosed)
	default:
	}
	select {
	case q.jobs <- job:
		return nil
	default:
		return fmt.Errorf("%s: %w", q.name, ErrQueueFull)
	}
}

// Pending returns the number of buffered jobs.
func (q *Queue[T]) Pending() int {
	return len(q.jobs)
}

func (q *Queue[T]) work() {
	defer q.wg.Done()
	for {
		select {
		case <-q.ctx.Done():
			return
		case job := <-q.jobs:
			if err := q.handler(q.ctx, job); err != nil {
				q.retry(job, err)
			}
		}
	}
}

func (q *Queue[T]) retry(job Job[T], cause error) {
	job.Attempt++
	fields := []zap.Field{
		zap.String("queue", q.name),
		zap.String("job_id", job.ID),
		zap.String("kind", job.Kind),
		zap.Int("attempt", job.Attempt),
		zap.Error(cause),
	}
	if job.Attempt > q.opts.MaxRetries {
		q.opts.Logger.Error("job dropped after retries", fields...)
		return
	}
	q.opts.Logger.Warn("job failed, retrying", fields...)

	delay := q.opts.RetryDelay * time.Duration(job.Attempt)
	go func() {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-q.ctx.Done():
		case <-timer.C:
			if err := q.Enqueue(job); err != nil {
				q.opts.Logger.Error("requeue failed", append(fields, zap.NamedError("requeue_error", err))...)
			}
		}
	}()
}
