// Package subscriber provides the ingest message bus the service consumes
// event payloads from, with in-memory and NATS JetStream implementations.
package subscriber

import (
	"context"
)

// MessageHandler is a function that processes incoming messages
type MessageHandler func(ctx context.Context, subject string, data []byte) error

// Subscriber defines the interface for message subscription
type Subscriber interface {
	// Subscribe subscribes to a subject with the given handler
	Subscribe(ctx context.Context, subject string, handler MessageHandler) error

	// Unsubscribe unsubscribes from a subject
	Unsubscribe(subject string) error

	// Close closes the subscriber and releases resources
	Close() error
}
