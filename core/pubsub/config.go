package pubsub

// Config holds configuration for the invalidation transport.
type Config struct {
	// Driver selects the transport: "memory" (single replica) or "nats".
	Driver string `mapstructure:"driver" default:"memory"`
	// URL is the NATS server URL.
	URL string `mapstructure:"url" default:"nats://127.0.0.1:4222"`
	// Channel is the subject rebuild notices are published on.
	Channel string `mapstructure:"channel" default:"food-index.rebuild"`
	// TimeoutSeconds bounds the initial connection.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"5"`
}
