package mqtt

import (
	"context"
)

// MessageHandler is the callback invoked for every message received on a
// subscribed topic.
type MessageHandler func(ctx context.Context, topic string, payload []byte)

// Client is a thin broker connection used by the module simulator to stand in
// for the firmware's cloud link. It hides the paho machinery behind the few
// operations the simulator needs.
type Client interface {
	// Start initiates the connection to the broker. It is non-blocking;
	// use AwaitConnection to wait for the session.
	Start(ctx context.Context) error

	// Disconnect cleanly closes the connection.
	Disconnect(ctx context.Context)

	// Publish sends a message to the specified topic.
	Publish(ctx context.Context, topic string, qos int, retain bool, payload []byte) error

	// Subscribe registers a handler for a topic filter. Subscriptions
	// survive reconnects; the client re-subscribes automatically.
	Subscribe(ctx context.Context, topic string, qos int, handler MessageHandler) error

	// Unsubscribe removes the handler and sends an UNSUBSCRIBE packet.
	Unsubscribe(ctx context.Context, topic string) error

	// AwaitConnection blocks until the client is connected to the broker.
	AwaitConnection(ctx context.Context) error
}
