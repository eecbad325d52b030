package memory

import (
	"context"
	"sync"

	"github.com/ecanizales/plandag/pkg/domain"
	"github.com/ecanizales/plandag/pkg/ports"
)

// subscription pairs a handler with the context that bounds its lifetime
type subscription struct {
	id      int
	handler ports.EventHandler
	ctx     context.Context
}

// Bus implements EventBus with in-process handler fan-out. Suited to tests
// and single-process deployments; delivery is asynchronous and best-effort.
type Bus struct {
	mu          sync.RWMutex
	nextID      int
	subscribers map[string][]subscription
}

// NewBus creates a new in-memory event bus
func NewBus() *Bus {
	return &Bus{
		subscribers: make(map[string][]subscription),
	}
}

// Publish delivers an event to every live subscriber of the topic
func (b *Bus) Publish(ctx context.Context, topic string, event domain.Event) error {
	b.mu.RLock()
	subs := make([]subscription, len(b.subscribers[topic]))
	copy(subs, b.subscribers[topic])
	b.mu.RUnlock()

	for _, sub := range subs {
		if sub.ctx.Err() != nil {
			continue
		}
		go func(s subscription) {
			_ = s.handler(s.ctx, event)
		}(sub)
	}

	return nil
}

// Subscribe registers a handler for a topic until ctx is cancelled
func (b *Bus) Subscribe(ctx context.Context, topic string, handler ports.EventHandler) error {
	b.mu.Lock()
	b.nextID++
	sub := subscription{id: b.nextID, handler: handler, ctx: ctx}
	b.subscribers[topic] = append(b.subscribers[topic], sub)
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.remove(topic, sub.id)
	}()

	return nil
}

// Unsubscribe removes all subscriptions from a topic
func (b *Bus) Unsubscribe(ctx context.Context, topic string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.subscribers, topic)
	return nil
}

// Close drops all subscriptions
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.subscribers = make(map[string][]subscription)
	return nil
}

func (b *Bus) remove(topic string, id int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.subscribers[topic]
	for i, s := range subs {
		if s.id == id {
			b.subscribers[topic] = append(subs[:i], subs[i+1:]...)
			return
		}
	}
}
