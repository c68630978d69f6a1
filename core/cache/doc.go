// Package cache provides the shared batch cache used by the attribute resolver
// and thumbnail enrichment.
//
// # Stores
//
// A Store is a TTL-capable key/value store with string sets:
//   - MemoryStore: bounded LRU, one per replica.
//   - DBStore: gorm tables cache_entries and cache_set_members, shared by every
//     replica pointing at the same database. SetDrain runs in a transaction and
//     locks the rows on MySQL.
//
// # Batch resolution
//
// RememberMany partitions keys into hits and misses with a single MGet, resolves
// all misses with one resolver call and writes them back with the TTL:
//
//	attrs, err := cache.RememberMany(ctx, c, ids, "food-attributes", ttl, resolveFoods)
//
// Callers in the same process asking for the same miss set share one resolver call.
// Replicas may duplicate work; resolution is deterministic so the writes converge.
package cache
