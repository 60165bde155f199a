package worker

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/okian/meetglobe/internal/domain/model"
	"github.com/okian/meetglobe/pkg/logger"
)

const publishTimeout = 5 * time.Second

// Queue defines how workers receive events.
type Queue interface {
	Dequeue(ctx context.Context) <-chan model.Event
}

// Publisher delivers one event.
type Publisher interface {
	Publish(ctx context.Context, e model.Event) error
}

// Worker publishes events read off the queue until the queue is closed or
// the worker is stopped.
type Worker struct {
	queue     Queue
	publisher Publisher
	name      string
	logger    logger.Logger

	shutdown chan struct{}
	done     chan struct{}
	once     sync.Once
}

// New creates a worker.
func New(q Queue, p Publisher, opts ...Option) *Worker {
	w := &Worker{
		queue:     q,
		publisher: p,
		name:      "worker",
		logger:    logger.NewNop(),
		shutdown:  make(chan struct{}),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.Named(w.name)
	return w
}

// Run processes events until ctx is canceled, Shutdown is called, or the
// queue channel is closed and drained.
func (w *Worker) Run(ctx context.Context) {
	defer close(w.done)

	events := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			w.process(ctx, e)
		}
	}
}

// Shutdown stops the worker without draining and waits for it to exit.
func (w *Worker) Shutdown(ctx context.Context) error {
	w.once.Do(func() { close(w.shutdown) })
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// Done is closed once Run has returned.
func (w *Worker) Done() <-chan struct{} { return w.done }

func (w *Worker) process(ctx context.Context, e model.Event) {
	pctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	if err := w.publisher.Publish(pctx, e); err != nil {
		w.logger.Error(ctx, "publish failed",
			logger.String("event", e.ID),
			logger.String("type", string(e.Type)),
			logger.String("meeting", e.MeetingID),
			logger.Error(err))
	}
}

// Pool runs several workers over one queue.
type Pool struct {
	workers []*Worker
	closer  interface{ Close() error }
	logger  logger.Logger
}

// NewPool creates count workers. A count below one means one worker.
func NewPool(count int, q Queue, p Publisher, log logger.Logger) *Pool {
	if count < 1 {
		count = 1
	}
	if log == nil {
		log = logger.NewNop()
	}
	pool := &Pool{workers: make([]*Worker, count), logger: log}
	if c, ok := q.(interface{ Close() error }); ok {
		pool.closer = c
	}
	for i := range pool.workers {
		pool.workers[i] = New(q, p, WithName("publisher-"+strconv.Itoa(i)), WithLogger(log))
	}
	return pool
}

// Start launches every worker.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Shutdown closes the queue and waits for the workers to drain it. Workers
// still busy when ctx expires are stopped without draining.
func (p *Pool) Shutdown(ctx context.Context) error {
	if p.closer != nil {
		if err := p.closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}
	for i, w := range p.workers {
		select {
		case <-w.Done():
		case <-ctx.Done():
			p.logger.Warn(ctx, "worker drain timed out", logger.Int("worker_id", i))
			stopCtx, cancel := context.WithTimeout(context.Background(), time.Second)
			_ = w.Shutdown(stopCtx)
			cancel()
		}
	}
	return nil
}
