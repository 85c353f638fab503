// Package eventbus provides publish/subscribe messaging for run lifecycle
// events.
package eventbus

import (
	"context"

	"github.com/storeops/stocksync/pkg/events"
)

// Event is any payload carrying its own event type.
type Event interface {
	GetType() events.EventType
}

// EventHandler processes one received event.
type EventHandler func(ctx context.Context, event any) error

type EventBus interface {
	Publish(ctx context.Context, key string, event Event) error
	Handle(eventType events.EventType, handler EventHandler)
	Subscribe(ctx context.Context) error
	GenerateID() string
	Close(ctx context.Context) error
}
