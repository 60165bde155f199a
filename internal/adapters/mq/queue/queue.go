// Package queue buffers lifecycle events between the request path and the
// publishing workers.
package queue

import (
	"context"
	"sync"

	"github.com/okian/meetglobe/internal/domain/model"
	"github.com/okian/meetglobe/pkg/metrics"
)

const defaultCapacity = 1024

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds an event without blocking. Returns ErrFull or ErrClosed
	// when the event was not accepted.
	Enqueue(ctx context.Context, e model.Event) error

	// Dequeue returns the channel consumers read from. It is closed by Close.
	Dequeue(ctx context.Context) <-chan model.Event

	// Len returns the number of buffered events.
	Len(ctx context.Context) int

	// Close stops accepting events. Buffered events stay readable.
	Close() error
}

// InMemoryQueue implements Queue with a bounded channel.
type InMemoryQueue struct {
	events   chan model.Event
	capacity int

	mu     sync.RWMutex
	closed bool
}

// NewInMemoryQueue creates a bounded queue.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{capacity: defaultCapacity}
	for _, opt := range opts {
		opt(q)
	}
	q.events = make(chan model.Event, q.capacity)
	metrics.UpdateEventQueueSize(0)
	return q
}

// Enqueue implements Queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, e model.Event) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordEventDropped("closed")
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		metrics.RecordEventDropped("canceled")
		return err
	}
	select {
	case q.events <- e:
		metrics.UpdateEventQueueSize(len(q.events))
		return nil
	default:
		metrics.RecordEventDropped("full")
		return ErrFull
	}
}

// Dequeue implements Queue.
func (q *InMemoryQueue) Dequeue(_ context.Context) <-chan model.Event {
	return q.events
}

// Len implements Queue.
func (q *InMemoryQueue) Len(_ context.Context) int {
	n := len(q.events)
	metrics.UpdateEventQueueSize(n)
	return n
}

// Close implements Queue. It is safe to call more than once.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return nil
	}
	close(q.events)
	q.closed = true
	return nil
}
