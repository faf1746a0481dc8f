package cache

import (
	"context"
	"sync"
	"time"
)

// MockStore is a hand-written, in-memory Store used in unit tests.
// Keys never expire on their own; tests call Expire to simulate a TTL lapse.
type MockStore struct {
	mu       sync.Mutex
	counters map[string]int64
	flags    map[string]struct{}
	ttls     map[string]time.Duration

	// Err, when set, is returned by every call.
	Err error
	// Block makes every call wait for ctx to be done and return ctx.Err(),
	// simulating an unresponsive server.
	Block bool
}

func NewMockStore() *MockStore {
	return &MockStore{
		counters: make(map[string]int64),
		flags:    make(map[string]struct{}),
		ttls:     make(map[string]time.Duration),
	}
}

func (m *MockStore) fail(ctx context.Context) error {
	if m.Block {
		<-ctx.Done()
		return ctx.Err()
	}
	return m.Err
}

func (m *MockStore) IncrWithExpiry(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	if err := m.fail(ctx); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[key]++
	n := m.counters[key]
	if _, armed := m.ttls[key]; !armed && ttl > 0 {
		m.ttls[key] = ttl
	}
	return n, nil
}

func (m *MockStore) SetIfAbsent(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if err := m.fail(ctx); err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.flags[key]; ok {
		return false, nil
	}
	m.flags[key] = struct{}{}
	m.ttls[key] = ttl
	return true, nil
}

// Expire deletes key as if its TTL had elapsed.
func (m *MockStore) Expire(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.counters, key)
	delete(m.flags, key)
	delete(m.ttls, key)
}

// TTL returns the expiry recorded for key, zero if none.
func (m *MockStore) TTL(key string) time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ttls[key]
}

// Counter returns the current value of a counter key.
func (m *MockStore) Counter(key string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counters[key]
}

var _ Store = (*MockStore)(nil)
