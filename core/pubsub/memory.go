package pubsub

import (
	"context"
	"errors"
	"sync"
)

// ErrClosed is returned by a closed transport.
var ErrClosed = errors.New("pubsub: transport closed")

// Memory delivers payloads to subscribers of the same process.
// Each delivery runs on its own goroutine.
type Memory struct {
	mu     sync.RWMutex
	subs   map[string]map[*memorySub]struct{}
	closed bool
	wg     sync.WaitGroup
}

type memorySub struct {
	m       *Memory
	channel string
	ctx     context.Context
	handler Handler
}

func (s *memorySub) Unsubscribe() error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	delete(s.m.subs[s.channel], s)
	return nil
}

// NewMemory creates an empty in-process transport.
func NewMemory() *Memory {
	return &Memory{subs: make(map[string]map[*memorySub]struct{})}
}

func (m *Memory) Publish(_ context.Context, channel string, payload []byte) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return ErrClosed
	}
	for sub := range m.subs[channel] {
		data := append([]byte(nil), payload...)
		m.wg.Add(1)
		go func(sub *memorySub) {
			defer m.wg.Done()
			sub.handler(sub.ctx, data)
		}(sub)
	}
	return nil
}

func (m *Memory) Subscribe(ctx context.Context, channel string, handler Handler) (Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrClosed
	}
	sub := &memorySub{m: m, channel: channel, ctx: ctx, handler: handler}
	if m.subs[channel] == nil {
		m.subs[channel] = make(map[*memorySub]struct{})
	}
	m.subs[channel][sub] = struct{}{}
	return sub, nil
}

// Close stops accepting publishes and waits for running deliveries.
func (m *Memory) Close() error {
	m.mu.Lock()
	m.closed = true
	m.subs = make(map[string]map[*memorySub]struct{})
	m.mu.Unlock()
	m.wg.Wait()
	return nil
}
