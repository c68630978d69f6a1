// Package pubsub carries rebuild notices between API replicas.
//
// Transport has two implementations: Memory, for a single process and tests, and
// NATS, publishing on a core NATS subject. Subscribers must tolerate duplicate
// and lost messages; the invalidation feature pairs every subscription with a
// periodic drain of the pending set.
package pubsub
