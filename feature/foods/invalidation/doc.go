// Package invalidation propagates "data changed" notices between replicas.
//
// A notice first lands in a shared pending set held by the cache store, then
// a pubsub message tells every replica to drain it. Draining is atomic, so
// each pending locale is rebuilt by exactly one replica. The reconciler drains
// the same set periodically, which covers lost messages and failed rebuilds.
package invalidation
