package ports

import (
	"context"

	"github.com/ecanizales/plandag/pkg/domain"
)

// EventHandler processes a single event delivered by the bus
type EventHandler func(ctx context.Context, event domain.Event) error

// EventBus publishes and delivers run events by topic
type EventBus interface {
	Publish(ctx context.Context, topic string, event domain.Event) error
	Subscribe(ctx context.Context, topic string, handler EventHandler) error
	Unsubscribe(ctx context.Context, topic string) error
	Close() error
}
