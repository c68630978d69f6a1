package pubsub

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

// NATS publishes over core NATS subjects. Core NATS is at-most-once, which the
// reconciliation drain compensates for.
type NATS struct {
	conn *nats.Conn
}

// NewNATS connects to cfg.URL. name identifies the connection on the server.
func NewNATS(cfg *Config, name string) (*NATS, error) {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	conn, err := nats.Connect(cfg.URL,
		nats.Name(name),
		nats.Timeout(timeout),
		nats.MaxReconnects(-1),
		nats.RetryOnFailedConnect(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats at %s: %w", cfg.URL, err)
	}
	return &NATS{conn: conn}, nil
}

func (n *NATS) Publish(_ context.Context, channel string, payload []byte) error {
	if err := n.conn.Publish(channel, payload); err != nil {
		return fmt.Errorf("publish %s: %w", channel, err)
	}
	return nil
}

func (n *NATS) Subscribe(ctx context.Context, channel string, handler Handler) (Subscription, error) {
	sub, err := n.conn.Subscribe(channel, func(msg *nats.Msg) {
		handler(ctx, msg.Data)
	})
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", channel, err)
	}
	return sub, nil
}

// Close drains subscriptions and closes the connection.
func (n *NATS) Close() error {
	return n.conn.Drain()
}
