// Package bus implements the in-process publish/subscribe channel that
// decouples business actions from notification fan-out. Delivery is
// synchronous on the publisher's goroutine: every subscriber registered at
// publish time sees the event exactly once, in no guaranteed order, with no
// durability. An event published with no subscribers attached is lost.
package bus

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"amdesk/internal/platform/metrics"
)

// Handler receives every published event. Handlers self-filter by type.
type Handler func(ctx context.Context, evt Envelope)

// Bus is an injectable pub/sub handle. Construct one at process start and
// thread it through constructors; tests swap in their own instance.
type Bus struct {
	mu      sync.RWMutex
	subs    map[int]Handler
	nextID  int
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func New(logger *slog.Logger, m *metrics.Metrics) *Bus {
	return &Bus{
		subs:    make(map[int]Handler),
		logger:  logger,
		metrics: m,
	}
}

// Subscribe registers a handler for all events and returns its unsubscribe
// func. Unsubscribing twice is harmless.
func (b *Bus) Subscribe(h Handler) (unsubscribe func()) {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = h
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}
}

// Publish delivers evt to every current subscriber before returning. Each
// subscriber runs inside its own recover boundary so one misbehaving consumer
// cannot crash siblings or the publishing call site.
func (b *Bus) Publish(ctx context.Context, evt Event) {
	envelope := Envelope{
		Type:      evt.EventType(),
		Timestamp: time.Now().UTC(),
		Event:     evt,
	}

	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.subs))
	for _, h := range b.subs {
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()

	b.metrics.EventsPublished.WithLabelValues(envelope.Type).Inc()

	for _, h := range handlers {
		b.dispatch(ctx, h, envelope)
	}
}

func (b *Bus) dispatch(ctx context.Context, h Handler, evt Envelope) {
	defer func() {
		if rec := recover(); rec != nil {
			b.logger.ErrorContext(ctx, "event subscriber panicked",
				"type", evt.Type,
				"panic", rec,
			)
		}
	}()
	h(ctx, evt)
}
