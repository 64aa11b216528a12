package walker

import (
	"errors"
	"sync"
)

// ErrQueueClosed is returned by Push once the consumer has closed the queue.
var ErrQueueClosed = errors.New("queue closed")

// Queue is an unbounded multi-producer, single-consumer queue. Push never
// blocks; the consumer polls with Drain on its own schedule.
type Queue[T any] struct {
	mu       sync.Mutex
	items    []T
	finished bool
	closed   bool
	done     chan struct{}
	// ready is signalled, without blocking, whenever items arrive
	ready chan struct{}
}

// NewQueue returns an empty open queue.
func NewQueue[T any]() *Queue[T] {
	return &Queue[T]{
		done:  make(chan struct{}),
		ready: make(chan struct{}, 1),
	}
}

// Push appends v. It fails only after Close.
func (q *Queue[T]) Push(v T) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrQueueClosed
	}
	q.items = append(q.items, v)
	select {
	case q.ready <- struct{}{}:
	default:
	}
	return nil
}

// Finish marks the end of production. Items already pushed remain drainable.
func (q *Queue[T]) Finish() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.finished || q.closed {
		q.finished = true
		return
	}
	q.finished = true
	close(q.done)
}

// Close is called by a consumer that no longer wants messages. Pending items
// are dropped and later pushes fail with ErrQueueClosed.
func (q *Queue[T]) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	q.items = nil
	if !q.finished {
		close(q.done)
	}
}

// Drain removes and returns everything currently buffered without blocking.
// finished reports that the producer called Finish and nothing is left.
func (q *Queue[T]) Drain() (items []T, finished bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	items = q.items
	q.items = nil
	return items, q.finished && !q.closed
}

// Len returns the number of buffered items.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Done is closed when the producer finishes or the consumer closes the queue.
func (q *Queue[T]) Done() <-chan struct{} {
	return q.done
}

// Ready receives a value after a push. Consumers that block instead of
// polling select on it together with Done.
func (q *Queue[T]) Ready() <-chan struct{} {
	return q.ready
}
