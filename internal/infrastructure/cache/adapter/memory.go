package adapter

import (
	"context"
	"sync"
	"time"

	"github.com/sparxmathsalternative/damnis/internal/infrastructure/cache/port"
)

// MemoryCache is an in-process port.Cache used in tests and when running
// without a Redis backend. Entries with a TTL are dropped lazily on read.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

type memoryEntry struct {
	value     string
	expiresAt time.Time // zero means no expiration
}

// NewMemoryAdapter constructs an empty MemoryCache.
func NewMemoryAdapter() *MemoryCache {
	return &MemoryCache{entries: make(map[string]memoryEntry)}
}

// Ensure interface compliance at compile time
var _ port.Cache = (*MemoryCache)(nil)

func (m *MemoryCache) Get(ctx context.Context, key string) (string, error) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return "", port.ErrMiss
	}
	if !e.expiresAt.IsZero() && time.Now().After(e.expiresAt) {
		m.mu.Lock()
		delete(m.entries, key)
		m.mu.Unlock()
		return "", port.ErrMiss
	}
	return e.value, nil
}

func (m *MemoryCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	e := memoryEntry{value: value}
	if ttl > 0 {
		e.expiresAt = time.Now().Add(ttl)
	}
	m.mu.Lock()
	m.entries[key] = e
	m.mu.Unlock()
	return nil
}

func (m *MemoryCache) Del(ctx context.Context, keys ...string) (int64, error) {
	var removed int64
	m.mu.Lock()
	for _, k := range keys {
		if _, ok := m.entries[k]; ok {
			delete(m.entries, k)
			removed++
		}
	}
	m.mu.Unlock()
	return removed, nil
}

func (m *MemoryCache) Ping(ctx context.Context) error { return nil }

func (m *MemoryCache) Close() error { return nil }
