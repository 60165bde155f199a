package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/okian/meetglobe/internal/adapters/mq/queue"
	"github.com/okian/meetglobe/internal/adapters/mq/worker"
	"github.com/okian/meetglobe/internal/domain/model"

	"github.com/smartystreets/goconvey/convey"
)

type recordingPublisher struct {
	mu   sync.Mutex
	seen []string
	fail map[string]bool
}

func (p *recordingPublisher) Publish(_ context.Context, e model.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail[e.ID] {
		return errors.New("broker unavailable")
	}
	p.seen = append(p.seen, e.ID)
	return nil
}

func (p *recordingPublisher) ids() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.seen...)
}

func TestWorker(t *testing.T) {
	convey.Convey("Given a queue and a worker", t, func() {
		ctx := context.Background()
		q := queue.NewInMemoryQueue(queue.WithCapacity(10))
		pub := &recordingPublisher{fail: map[string]bool{"bad": true}}
		w := worker.New(q, pub, worker.WithName("test"))

		convey.Convey("it publishes events in order and exits when the queue closes", func() {
			for _, id := range []string{"a", "bad", "b"} {
				convey.So(q.Enqueue(ctx, model.Event{ID: id, Type: model.EventMeetingCreated}), convey.ShouldBeNil)
			}
			convey.So(q.Close(), convey.ShouldBeNil)
			go w.Run(ctx)

			select {
			case <-w.Done():
			case <-time.After(2 * time.Second):
				convey.So("worker did not exit", convey.ShouldBeEmpty)
			}
			convey.So(pub.ids(), convey.ShouldResemble, []string{"a", "b"})
		})

		convey.Convey("Shutdown stops an idle worker", func() {
			go w.Run(ctx)
			sctx, cancel := context.WithTimeout(ctx, time.Second)
			defer cancel()
			convey.So(w.Shutdown(sctx), convey.ShouldBeNil)
			convey.So(w.Shutdown(sctx), convey.ShouldBeNil)
		})

		convey.Convey("a canceled context stops the worker", func() {
			cctx, cancel := context.WithCancel(ctx)
			go w.Run(cctx)
			cancel()
			select {
			case <-w.Done():
			case <-time.After(2 * time.Second):
				convey.So("worker did not exit", convey.ShouldBeEmpty)
			}
		})
	})
}

func TestPool(t *testing.T) {
	convey.Convey("Given a pool of workers", t, func() {
		ctx := context.Background()
		q := queue.NewInMemoryQueue(queue.WithCapacity(100))
		pub := &recordingPublisher{}
		pool := worker.NewPool(3, q, pub, nil)
		pool.Start(ctx)

		convey.Convey("Shutdown drains every queued event", func() {
			for i := 0; i < 50; i++ {
				convey.So(q.Enqueue(ctx, model.Event{ID: string(rune('A' + i%26)), Type: model.EventMeetingDeleted}), convey.ShouldBeNil)
			}
			sctx, cancel := context.WithTimeout(ctx, 2*time.Second)
			defer cancel()
			convey.So(pool.Shutdown(sctx), convey.ShouldBeNil)
			convey.So(len(pub.ids()), convey.ShouldEqual, 50)

			err := q.Enqueue(ctx, model.Event{ID: "late"})
			convey.So(errors.Is(err, queue.ErrClosed), convey.ShouldBeTrue)
		})
	})
}
