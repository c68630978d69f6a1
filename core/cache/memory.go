package cache

import (
	"context"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

type memoryEntry struct {
	value   []byte
	expires *time.Time
}

// MemoryStore keeps entries in a bounded LRU. Sets are unbounded.
type MemoryStore struct {
	entries *lru.Cache[string, memoryEntry]

	mu   sync.Mutex
	sets map[string]map[string]struct{}
}

// NewMemoryStore creates a store holding at most size entries.
func NewMemoryStore(size int) (*MemoryStore, error) {
	if size <= 0 {
		size = 10000
	}
	entries, err := lru.New[string, memoryEntry](size)
	if err != nil {
		return nil, err
	}
	return &MemoryStore{
		entries: entries,
		sets:    make(map[string]map[string]struct{}),
	}, nil
}

func (s *MemoryStore) lookup(key string) ([]byte, bool) {
	e, ok := s.entries.Get(key)
	if !ok {
		return nil, false
	}
	if e.expires != nil && time.Now().After(*e.expires) {
		s.entries.Remove(key)
		return nil, false
	}
	return e.value, true
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := s.lookup(key)
	return v, ok, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.entries.Add(key, memoryEntry{value: value, expires: expiry(ttl)})
	return nil
}

func (s *MemoryStore) MGet(_ context.Context, keys []string) ([][]byte, error) {
	out := make([][]byte, len(keys))
	for i, k := range keys {
		if v, ok := s.lookup(k); ok {
			out[i] = v
		}
	}
	return out, nil
}

func (s *MemoryStore) MSet(_ context.Context, entries map[string][]byte, ttl time.Duration) error {
	exp := expiry(ttl)
	for k, v := range entries {
		s.entries.Add(k, memoryEntry{value: v, expires: exp})
	}
	return nil
}

func (s *MemoryStore) Forget(_ context.Context, keys ...string) error {
	for _, k := range keys {
		s.entries.Remove(k)
	}
	return nil
}

func (s *MemoryStore) SetAdd(_ context.Context, key string, members ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	set, ok := s.sets[key]
	if !ok {
		set = make(map[string]struct{}, len(members))
		s.sets[key] = set
	}
	for _, m := range members {
		set[m] = struct{}{}
	}
	return nil
}

func (s *MemoryStore) SetMembers(_ context.Context, key string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.sets[key]))
	for m := range s.sets[key] {
		out = append(out, m)
	}
	return out, nil
}

func (s *MemoryStore) SetDrain(_ context.Context, key string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	set := s.sets[key]
	delete(s.sets, key)
	out := make([]string, 0, len(set))
	for m := range set {
		out = append(out, m)
	}
	return out, nil
}
