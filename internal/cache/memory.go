package cache

import (
	"context"
	"strings"
	"sync"
	"time"
)

// Memory is a concurrency-safe in-process Store backed by a TTL map.
// Expired entries are dropped lazily on read and swept opportunistically on
// write, so the store needs no background goroutine.
type Memory struct {
	mu    sync.RWMutex
	items map[string]memoryEntry
}

type memoryEntry struct {
	val []byte
	exp time.Time // zero means no expiry
}

// NewMemory returns an empty in-process store.
func NewMemory() *Memory {
	return &Memory{items: make(map[string]memoryEntry)}
}

// Get implements Store.
func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	e, ok := m.items[key]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrMiss
	}
	if !e.exp.IsZero() && time.Now().After(e.exp) {
		m.mu.Lock()
		// Re-check under the write lock; a Set may have raced the expiry.
		if cur, ok := m.items[key]; ok && !cur.exp.IsZero() && time.Now().After(cur.exp) {
			delete(m.items, key)
		}
		m.mu.Unlock()
		return nil, ErrMiss
	}
	out := make([]byte, len(e.val))
	copy(out, e.val)
	return out, nil
}

// Set implements Store.
func (m *Memory) Set(_ context.Context, key string, val []byte, ttl time.Duration) error {
	e := memoryEntry{val: append([]byte(nil), val...)}
	if ttl > 0 {
		e.exp = time.Now().Add(ttl)
	}
	m.mu.Lock()
	m.items[key] = e
	m.sweepLocked()
	m.mu.Unlock()
	return nil
}

// DeletePrefix implements Store.
func (m *Memory) DeletePrefix(_ context.Context, prefix string) error {
	m.mu.Lock()
	for k := range m.items {
		if strings.HasPrefix(k, prefix) {
			delete(m.items, k)
		}
	}
	m.mu.Unlock()
	return nil
}

// Len reports the number of live entries, mostly for tests.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

// sweepLocked drops a handful of expired entries per call. Bounded so a Set
// never pays for a full scan of a large map.
func (m *Memory) sweepLocked() {
	const maxSweep = 32
	now := time.Now()
	n := 0
	for k, e := range m.items {
		if !e.exp.IsZero() && now.After(e.exp) {
			delete(m.items, k)
		}
		n++
		if n >= maxSweep {
			return
		}
	}
}
