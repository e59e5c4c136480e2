package query

import (
	"sync"
	"time"
)

// DefaultTTL bounds how long a cached payload survives in a store. Entry
// metadata (status, staleness) is never evicted; an expired payload is simply
// re-fetched on the next read.
const DefaultTTL = time.Hour

// Store holds the msgpack-encoded payloads of cache entries. The in-memory
// implementation is the default; a valkey-backed one (see valkey.go) can be
// shared across processes.
type Store interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, expiration time.Duration)
	Delete(key string)
	Close()
}

type memoryItem struct {
	data    []byte
	expires time.Time
}

type memoryStore struct {
	mu    sync.Mutex
	items map[string]memoryItem
}

func NewMemoryStore() Store {
	return &memoryStore{items: make(map[string]memoryItem)}
}

func (m *memoryStore) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, found := m.items[key]
	if !found {
		return nil, false
	}
	if !item.expires.IsZero() && time.Now().After(item.expires) {
		delete(m.items, key)
		return nil, false
	}
	return item.data, true
}

func (m *memoryStore) Set(key string, value []byte, expiration time.Duration) {
	item := memoryItem{data: value}
	if expiration > 0 {
		item.expires = time.Now().Add(expiration)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = item
}

func (m *memoryStore) Delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
}

func (m *memoryStore) Close() {}
