package shared

import "context"

// EventHandler reacts to domain events once the transaction that raised
// them has committed.
type EventHandler interface {
	Handle(ctx context.Context, event DomainEvent) error
	// EventTypes lists the events the handler wants; nil means every event
	EventTypes() []string
}

// EventPublisher publishes domain events
type EventPublisher interface {
	Publish(ctx context.Context, events ...DomainEvent) error
}

// EventBus fans published events out to the subscribed handlers
type EventBus interface {
	EventPublisher
	Subscribe(handler EventHandler)
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}
