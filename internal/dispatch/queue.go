// Package dispatch provides the designated callback thread: a single
// goroutine that runs posted tasks one at a time in posting order.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/opencode-ai/appearances/internal/logging"
	"github.com/rs/zerolog"
	"go.uber.org/atomic"
)

// Queue errors.
var (
	ErrQueueRunning = errors.New("dispatch queue already running")
)

// Queue is an unbounded FIFO executor drained by one goroutine.
// Post never blocks; tasks never run concurrently with each other.
type Queue struct {
	logger zerolog.Logger

	mu      sync.Mutex
	tasks   []func()
	wake    chan struct{}
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	executed atomic.Int64
	panics   atomic.Int64
}

// Option configures a Queue.
type Option func(*Queue)

// WithLogger overrides the component logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(q *Queue) {
		q.logger = logger
	}
}

// New creates a stopped queue. Tasks posted before Start are kept and run
// once the queue starts.
func New(opts ...Option) *Queue {
	q := &Queue{
		logger: logging.Component("dispatch"),
		wake:   make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Start launches the callback goroutine.
func (q *Queue) Start(ctx context.Context) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.running {
		return ErrQueueRunning
	}

	ctx, q.cancel = context.WithCancel(ctx)
	q.running = true

	q.wg.Add(1)
	go q.run(ctx)

	// Pick up anything posted while stopped.
	q.signal()
	return nil
}

// Stop halts the callback goroutine after the task in progress finishes.
// Tasks still queued are kept.
func (q *Queue) Stop() {
	q.mu.Lock()
	if !q.running {
		q.mu.Unlock()
		return
	}
	q.running = false
	cancel := q.cancel
	q.mu.Unlock()

	cancel()
	q.wg.Wait()
}

// Post appends a task to the queue.
func (q *Queue) Post(task func()) {
	if task == nil {
		return
	}
	q.mu.Lock()
	q.tasks = append(q.tasks, task)
	q.signal()
	q.mu.Unlock()
}

// Pending returns the number of queued tasks.
func (q *Queue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tasks)
}

// Executed returns the number of tasks run so far.
func (q *Queue) Executed() int64 {
	return q.executed.Load()
}

// signal wakes the goroutine without blocking. Caller must hold q.mu.
func (q *Queue) signal() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

func (q *Queue) run(ctx context.Context) {
	defer q.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case <-q.wake:
		}

		for {
			if ctx.Err() != nil {
				return
			}
			task, ok := q.next()
			if !ok {
				break
			}
			q.execute(task)
		}
	}
}

func (q *Queue) next() (func(), bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.tasks) == 0 {
		return nil, false
	}
	task := q.tasks[0]
	q.tasks[0] = nil
	q.tasks = q.tasks[1:]
	return task, true
}

func (q *Queue) execute(task func()) {
	defer func() {
		if r := recover(); r != nil {
			q.panics.Inc()
			q.logger.Error().
				Err(fmt.Errorf("%v", r)).
				Msg("callback task panicked")
		}
		q.executed.Inc()
	}()
	task()
}
