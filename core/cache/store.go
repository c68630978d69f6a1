package cache

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Store is a TTL-capable key/value store with unordered string sets.
// A zero TTL means the entry does not expire.
type Store interface {
	// Get returns the value under key and whether it was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores value under key.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// MGet returns one slot per key, nil for a miss.
	MGet(ctx context.Context, keys []string) ([][]byte, error)
	// MSet stores every entry with the same TTL.
	MSet(ctx context.Context, entries map[string][]byte, ttl time.Duration) error
	// Forget removes keys. Missing keys are ignored.
	Forget(ctx context.Context, keys ...string) error
	// SetAdd adds members to the set under key.
	SetAdd(ctx context.Context, key string, members ...string) error
	// SetMembers lists the members of the set under key.
	SetMembers(ctx context.Context, key string) ([]string, error)
	// SetDrain atomically returns and removes every member of the set under key.
	SetDrain(ctx context.Context, key string) ([]string, error)
}

// NewStore builds the store selected by cfg.Driver.
func NewStore(cfg *Config, db *gorm.DB) (Store, error) {
	switch cfg.Driver {
	case "", "memory":
		return NewMemoryStore(cfg.Size)
	case "database":
		if db == nil {
			return nil, fmt.Errorf("cache driver database requires a database connection")
		}
		return NewDBStore(db), nil
	default:
		return nil, fmt.Errorf("unsupported cache driver: %s", cfg.Driver)
	}
}

func expiry(ttl time.Duration) *time.Time {
	if ttl <= 0 {
		return nil
	}
	t := time.Now().Add(ttl)
	return &t
}
