package pubsub

import (
	"context"
	"fmt"
)

// Handler receives one published payload. Delivery is at-least-once and unordered.
type Handler func(ctx context.Context, payload []byte)

// Subscription is an active subscription.
type Subscription interface {
	Unsubscribe() error
}

// Transport publishes payloads to channels and delivers them to subscribers.
type Transport interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channel string, handler Handler) (Subscription, error)
	Close() error
}

// New builds the transport selected by cfg.Driver.
func New(cfg *Config, name string) (Transport, error) {
	switch cfg.Driver {
	case "", "memory":
		return NewMemory(), nil
	case "nats":
		return NewNATS(cfg, name)
	default:
		return nil, fmt.Errorf("unsupported pubsub driver: %s", cfg.Driver)
	}
}
