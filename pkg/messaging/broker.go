package messaging

import (
	"context"
)

// Broker defines the interface for message brokers
type Broker interface {
	// Publish sends message to channel. []byte and json.RawMessage are sent
	// as-is, anything else is JSON encoded.
	Publish(ctx context.Context, channel string, message interface{}) error
	// Subscribe streams payloads until ctx is cancelled, then closes the channel.
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
	Close() error
}

// Message is the envelope published for every outbox event.
type Message struct {
	ID      string      `json:"id"`
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}
