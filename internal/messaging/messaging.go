package messaging

import "context"

// Topics carrying order lifecycle events.
const (
	TopicOrdersPlaced    = "orders.placed"
	TopicOrdersConfirmed = "orders.confirmed"
)

// Publisher defines an interface for publishing events to a message broker.
type Publisher interface {
	PublishEvent(ctx context.Context, topic string, key string, event any) error
}

// Subscriber defines an interface for subscribing to a message topic.
// Consume blocks until the context is cancelled.
type Subscriber interface {
	Consume(ctx context.Context, topic string, groupID string, handler func(ctx context.Context, payload []byte) error)
}
