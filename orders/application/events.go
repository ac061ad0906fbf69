package application

import (
	"context"
	"sync"

	"github.com/mervel/storefront/orders/domain"
	"github.com/mervel/storefront/pkg/workerpool"
	"github.com/sirupsen/logrus"
)

// EventSink receives order changes, e.g. the realtime admin feed.
type EventSink interface {
	PublishOrderEvent(ctx context.Context, evt domain.Event) error
}

// Broadcaster fans order events out to sinks on the worker pool. Events of
// one order share a pool key so they are delivered in order.
type Broadcaster struct {
	pool *workerpool.Pool

	mu    sync.RWMutex
	sinks []EventSink
}

func NewBroadcaster(pool *workerpool.Pool) *Broadcaster {
	return &Broadcaster{pool: pool}
}

func (b *Broadcaster) Subscribe(sink EventSink) {
	b.mu.Lock()
	b.sinks = append(b.sinks, sink)
	b.mu.Unlock()
}

func (b *Broadcaster) Publish(evt domain.Event) {
	if b == nil {
		return
	}
	b.mu.RLock()
	sinks := append([]EventSink(nil), b.sinks...)
	b.mu.RUnlock()

	for _, sink := range sinks {
		deliver := func(ctx context.Context) error {
			if err := sink.PublishOrderEvent(ctx, evt); err != nil {
				logrus.WithError(err).Warnf("[ORDERS] Failed to deliver %s event for order %s", evt.Type, evt.Order.ID)
				return err
			}
			return nil
		}
		if b.pool == nil {
			_ = deliver(context.Background())
			continue
		}
		b.pool.Dispatch(workerpool.Job{Kind: "order_event", Key: evt.Order.ID, Handler: deliver})
	}
}
