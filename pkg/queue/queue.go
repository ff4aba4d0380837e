// Package queue bounds how many tasks run simultaneously while preserving
// submission order for tasks waiting on a free slot.
package queue

import (
	"context"
	"fmt"
	"sync"
)

// Queue admits at most a fixed number of tasks at a time. Pending tasks start
// in FIFO order as slots free up. The queue knows nothing about what the
// tasks do.
type Queue struct {
	mu      sync.Mutex
	pending []func()
	running int
	max     int
}

// New creates a queue with the given capacity. A non-positive capacity is a
// configuration error and is rejected here, at startup, rather than at
// submission time.
func New(maxConcurrency int) (*Queue, error) {
	if maxConcurrency <= 0 {
		return nil, fmt.Errorf("max concurrency must be positive, got %d", maxConcurrency)
	}
	return &Queue{max: maxConcurrency}, nil
}

// Future resolves once its task has run to completion.
type Future[T any] struct {
	done  chan struct{}
	value T
	err   error
}

// Wait blocks until the task has completed or ctx is done. A task failure is
// returned as-is; the queue does not distinguish it from its own errors.
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Submit enqueues task and returns a handle that resolves when it has run.
// Excess tasks are not an error, they simply wait for a slot.
func Submit[T any](q *Queue, task func() (T, error)) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}
	q.enqueue(func() {
		f.value, f.err = task()
		close(f.done)
	})
	return f
}

func (q *Queue) enqueue(run func()) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending = append(q.pending, run)
	q.dispatchLocked()
}

// dispatchLocked starts as many pending tasks as free slots allow. The slot
// is released only after the task has fully completed, so whatever resources
// the task holds are covered by the slot for their entire lifetime.
func (q *Queue) dispatchLocked() {
	for q.running < q.max && len(q.pending) > 0 {
		run := q.pending[0]
		q.pending = q.pending[1:]
		q.running++
		go func() {
			run()
			q.mu.Lock()
			defer q.mu.Unlock()
			q.running--
			q.dispatchLocked()
		}()
	}
}
