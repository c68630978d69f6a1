package cache

import "time"

// Config holds configuration for the batch cache.
type Config struct {
	// Driver selects the backing store: "memory" (per replica) or "database" (shared).
	Driver string `mapstructure:"driver" default:"memory"`
	// Size bounds the number of entries held by the memory store.
	Size int `mapstructure:"size" default:"10000"`
	// AttributesTTLSeconds is the lifetime of resolved food and category attributes.
	AttributesTTLSeconds int `mapstructure:"attributes_ttl_seconds" default:"600"`
	// ThumbnailsTTLSeconds is the lifetime of cached thumbnail URLs.
	ThumbnailsTTLSeconds int `mapstructure:"thumbnails_ttl_seconds" default:"1800"`
}

// AttributesTTL returns the attribute TTL as a duration.
func (c Config) AttributesTTL() time.Duration {
	return time.Duration(c.AttributesTTLSeconds) * time.Second
}

// ThumbnailsTTL returns the thumbnail TTL as a duration.
func (c Config) ThumbnailsTTL() time.Duration {
	return time.Duration(c.ThumbnailsTTLSeconds) * time.Second
}
