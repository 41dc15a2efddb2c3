package cache

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	data    []byte
	expires time.Time
}

// MemoryCache is an in-process Cache guarded by a RWMutex
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	gens    map[string]uint64
	ttl     time.Duration
	nowFunc func() time.Time
}

// NewMemoryCache creates a MemoryCache. A zero ttl keeps entries until invalidated.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		gens:    make(map[string]uint64),
		ttl:     ttl,
		nowFunc: time.Now,
	}
}

func (m *MemoryCache) Get(_ context.Context, key string, dest any) (bool, error) {
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok {
		return false, nil
	}
	if !entry.expires.IsZero() && !m.nowFunc().Before(entry.expires) {
		m.mu.Lock()
		delete(m.entries, key)
		m.mu.Unlock()
		return false, nil
	}
	if err := decode(entry.data, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (m *MemoryCache) Set(_ context.Context, key string, value any) error {
	entry, err := m.newEntry(value)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.entries[key] = entry
	m.mu.Unlock()
	return nil
}

func (m *MemoryCache) Generation(_ context.Context, key string) (uint64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.gens[key], nil
}

func (m *MemoryCache) SetIfGeneration(_ context.Context, key string, gen uint64, value any) (bool, error) {
	entry, err := m.newEntry(value)
	if err != nil {
		return false, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gens[key] != gen {
		return false, nil
	}
	m.entries[key] = entry
	return true, nil
}

func (m *MemoryCache) Invalidate(_ context.Context, keys ...string) error {
	m.mu.Lock()
	for _, key := range keys {
		delete(m.entries, key)
		m.gens[key]++
	}
	m.mu.Unlock()
	return nil
}

func (m *MemoryCache) newEntry(value any) (memoryEntry, error) {
	data, err := encode(value)
	if err != nil {
		return memoryEntry{}, err
	}
	entry := memoryEntry{data: data}
	if m.ttl > 0 {
		entry.expires = m.nowFunc().Add(m.ttl)
	}
	return entry, nil
}
