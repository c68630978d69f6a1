package server

import "github.com/google/uuid"

// Config holds configuration for the HTTP server.
type Config struct {
	// Port is the port where the server will listen.
	Port string `mapstructure:"port" default:"8080"`
	// ApiKey is the secret key required to access the admin API.
	ApiKey string `mapstructure:"api_key" default:""`
	// ReplicaID identifies this process among the API replicas. Generated when empty.
	ReplicaID string `mapstructure:"replica_id" default:""`
	// DefaultLimit is the search result limit used when a request does not set one.
	DefaultLimit int `mapstructure:"default_limit" default:"50"`
	// MaxLimit caps the limit a request may ask for.
	MaxLimit int `mapstructure:"max_limit" default:"200"`
	// MCPEnabled exposes the search_foods MCP tool on /mcp.
	MCPEnabled bool `mapstructure:"mcp_enabled" default:"true"`
}

// Replica returns the configured replica id, or a fresh random one.
func (c Config) Replica() string {
	if c.ReplicaID != "" {
		return c.ReplicaID
	}
	return uuid.NewString()
}

// ClampLimit applies the default and maximum to a requested limit.
func (c Config) ClampLimit(limit int) int {
	if limit <= 0 {
		limit = c.DefaultLimit
	}
	if limit <= 0 {
		limit = 50
	}
	if c.MaxLimit > 0 && limit > c.MaxLimit {
		limit = c.MaxLimit
	}
	return limit
}
