package event

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/erp/pos/internal/domain/shared"
	"go.uber.org/zap"
)

// ErrBusStopped is returned when publishing on a stopped bus
var ErrBusStopped = errors.New("event bus stopped")

// routes is an immutable snapshot of the subscriptions. Publish reads it
// without locking; Subscribe swaps in a new copy.
type routes struct {
	byType   map[string][]shared.EventHandler
	wildcard []shared.EventHandler
}

func (r *routes) with(handler shared.EventHandler) *routes {
	next := &routes{
		byType:   make(map[string][]shared.EventHandler, len(r.byType)),
		wildcard: append([]shared.EventHandler(nil), r.wildcard...),
	}
	for t, hs := range r.byType {
		next.byType[t] = append([]shared.EventHandler(nil), hs...)
	}
	types := handler.EventTypes()
	if len(types) == 0 {
		next.wildcard = append(next.wildcard, handler)
		return next
	}
	for _, t := range types {
		next.byType[t] = append(next.byType[t], handler)
	}
	return next
}

// handlersFor returns the typed handlers of eventType, then the wildcard ones
func (r *routes) handlersFor(eventType string) []shared.EventHandler {
	typed := r.byType[eventType]
	out := make([]shared.EventHandler, 0, len(typed)+len(r.wildcard))
	out = append(out, typed...)
	return append(out, r.wildcard...)
}

// InMemoryEventBus delivers events to in-process handlers. Handlers run
// synchronously on the publishing goroutine after the business transaction
// has committed; a failing handler never fails the publish.
type InMemoryEventBus struct {
	mu      sync.Mutex
	routes  atomic.Pointer[routes]
	logger  *zap.Logger
	stopped atomic.Bool
}

// NewInMemoryEventBus creates a new in-memory event bus
func NewInMemoryEventBus(logger *zap.Logger) *InMemoryEventBus {
	if logger == nil {
		logger = zap.NewNop()
	}
	b := &InMemoryEventBus{logger: logger}
	b.routes.Store(&routes{byType: map[string][]shared.EventHandler{}})
	return b
}

// Publish delivers events to every matching handler
func (b *InMemoryEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	if b.stopped.Load() {
		return ErrBusStopped
	}
	r := b.routes.Load()
	for _, event := range events {
		for _, handler := range r.handlersFor(event.EventType()) {
			if err := dispatch(ctx, handler, event); err != nil {
				b.logger.Error("handler failed to process event",
					zap.String("event_type", event.EventType()),
					zap.String("event_id", event.EventID().String()),
					zap.Int64("aggregate_id", event.AggregateID()),
					zap.Error(err),
				)
			}
		}
	}
	return nil
}

// Subscribe registers a handler for the types it reports
func (b *InMemoryEventBus) Subscribe(handler shared.EventHandler) {
	b.mu.Lock()
	b.routes.Store(b.routes.Load().with(handler))
	b.mu.Unlock()
	b.logger.Debug("handler subscribed", zap.Strings("event_types", handler.EventTypes()))
}

// Start accepts publishes again after Stop
func (b *InMemoryEventBus) Start(context.Context) error {
	b.stopped.Store(false)
	b.logger.Info("event bus started")
	return nil
}

// Stop rejects further publishes
func (b *InMemoryEventBus) Stop(context.Context) error {
	b.stopped.Store(true)
	b.logger.Info("event bus stopped")
	return nil
}

// dispatch turns a handler panic into an error
func dispatch(ctx context.Context, handler shared.EventHandler, event shared.DomainEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()
	return handler.Handle(ctx, event)
}

var _ shared.EventBus = (*InMemoryEventBus)(nil)
