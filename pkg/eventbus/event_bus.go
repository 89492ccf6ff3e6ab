// Package eventbus provides event publishing infrastructure for execution
// lifecycle notifications.
package eventbus

import (
	"context"

	"github.com/decisionflow/decisionflow/pkg/events"
)

// Event is anything publishable on the bus.
type Event interface {
	GetType() events.EventType
}

// EventPublisher publishes execution events, keyed for partition affinity by
// execution id.
type EventPublisher interface {
	Publish(ctx context.Context, key string, event Event) error
}

// EventHandler consumes one deserialized event.
type EventHandler func(ctx context.Context, event any) error

// EventSubscriber registers handlers and consumes the event topic.
type EventSubscriber interface {
	Handle(eventType events.EventType, handler EventHandler) error
	Subscribe(ctx context.Context) error
}

// EventBus is the full publish/subscribe contract.
type EventBus interface {
	EventPublisher
	EventSubscriber
	Close() error
	GenerateID() string
}
