package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"food-index/core/metrics"

	"golang.org/x/sync/singleflight"
)

// Cache layers JSON-encoded values and stampede protection over a Store.
type Cache struct {
	store Store
	sf    singleflight.Group
}

// New wraps store.
func New(store Store) *Cache {
	return &Cache{store: store}
}

// Store returns the backing store.
func (c *Cache) Store() Store {
	return c.store
}

// share runs fn once for all concurrent callers of key. fn does not inherit
// the first caller's cancellation; each caller stops waiting on its own ctx.
func (c *Cache) share(ctx context.Context, key string, fn func(ctx context.Context) (any, error)) (any, error) {
	flightCtx := context.WithoutCancel(ctx)
	ch := c.sf.DoChan(key, func() (any, error) { return fn(flightCtx) })
	select {
	case r := <-ch:
		return r.Val, r.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func namespaced(namespace, key string) string {
	return namespace + ":" + key
}

// Remember returns the value under key, computing and storing it with fn on a miss.
// Concurrent misses for the same key share one fn call.
func Remember[T any](ctx context.Context, c *Cache, key string, ttl time.Duration, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	raw, ok, err := c.store.Get(ctx, key)
	if err != nil {
		return zero, fmt.Errorf("cache remember %q: %w", key, err)
	}
	if ok {
		var v T
		if err := json.Unmarshal(raw, &v); err == nil {
			return v, nil
		}
	}

	res, err := c.share(ctx, key, func(ctx context.Context) (any, error) {
		v, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		encoded, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("cache encode %q: %w", key, err)
		}
		if err := c.store.Set(ctx, key, encoded, ttl); err != nil {
			return nil, fmt.Errorf("cache remember %q: %w", key, err)
		}
		return v, nil
	})
	if err != nil {
		return zero, err
	}
	return res.(T), nil
}

// RememberMany returns a map covering every key. Cached values are read with one
// MGet and the resolver is called once with the whole miss set. Resolved values are
// written back under namespace with ttl; keys the resolver omits map to nil and are
// not cached. Resolver errors are returned unmodified.
func RememberMany[T any](
	ctx context.Context,
	c *Cache,
	keys []string,
	namespace string,
	ttl time.Duration,
	resolve func(ctx context.Context, missing []string) (map[string]T, error),
) (map[string]*T, error) {
	out := make(map[string]*T, len(keys))
	if len(keys) == 0 {
		return out, nil
	}

	keys = unique(keys)
	storeKeys := make([]string, len(keys))
	for i, k := range keys {
		storeKeys[i] = namespaced(namespace, k)
	}

	raw, err := c.store.MGet(ctx, storeKeys)
	if err != nil {
		return nil, fmt.Errorf("cache %s mget: %w", namespace, err)
	}

	var missing []string
	for i, k := range keys {
		if raw[i] != nil {
			var v T
			if err := json.Unmarshal(raw[i], &v); err == nil {
				out[k] = &v
				continue
			}
		}
		missing = append(missing, k)
	}

	metrics.CacheLookups.WithLabelValues(namespace, "hit").Add(float64(len(keys) - len(missing)))
	metrics.CacheLookups.WithLabelValues(namespace, "miss").Add(float64(len(missing)))

	if len(missing) == 0 {
		return out, nil
	}

	res, err := c.share(ctx, flightKey(namespace, missing), func(ctx context.Context) (any, error) {
		metrics.CacheResolves.WithLabelValues(namespace).Inc()
		resolved, err := resolve(ctx, missing)
		if err != nil {
			return nil, err
		}
		if err := writeBack(ctx, c.store, namespace, ttl, resolved); err != nil {
			return nil, err
		}
		return resolved, nil
	})
	if err != nil {
		return nil, err
	}

	resolved := res.(map[string]T)
	for _, k := range missing {
		if v, ok := resolved[k]; ok {
			out[k] = &v
		} else {
			out[k] = nil
		}
	}
	return out, nil
}

func writeBack[T any](ctx context.Context, store Store, namespace string, ttl time.Duration, resolved map[string]T) error {
	if len(resolved) == 0 {
		return nil
	}
	entries := make(map[string][]byte, len(resolved))
	for k, v := range resolved {
		encoded, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("cache %s encode %q: %w", namespace, k, err)
		}
		entries[namespaced(namespace, k)] = encoded
	}
	if err := store.MSet(ctx, entries, ttl); err != nil {
		return fmt.Errorf("cache %s mset: %w", namespace, err)
	}
	return nil
}

func flightKey(namespace string, keys []string) string {
	sorted := slices.Clone(keys)
	slices.Sort(sorted)
	return namespace + "\x00" + strings.Join(sorted, "\x00")
}

func unique(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	out := keys[:0:0]
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}
