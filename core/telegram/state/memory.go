package state

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

type entryKey struct {
	userID int64
	key    string
}

// MemoryStore is a bounded, TTL-evicting Store kept in process memory.
type MemoryStore struct {
	cache *expirable.LRU[entryKey, string]
}

// NewMemoryStore constructs a MemoryStore holding at most capacity entries, each for at most ttl.
// Non-positive values fall back to package defaults.
func NewMemoryStore(capacity int, ttl time.Duration) *MemoryStore {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{cache: expirable.NewLRU[entryKey, string](capacity, nil, ttl)}
}

// Get returns the value stored for the user and key.
func (m *MemoryStore) Get(_ context.Context, userID int64, key string) (string, bool, error) {
	if key == "" {
		return "", false, ErrEmptyKey
	}
	v, ok := m.cache.Get(entryKey{userID: userID, key: key})
	return v, ok, nil
}

// Set replaces the value stored for the user and key and refreshes its TTL.
func (m *MemoryStore) Set(_ context.Context, userID int64, key, value string) error {
	if key == "" {
		return ErrEmptyKey
	}
	m.cache.Add(entryKey{userID: userID, key: key}, value)
	return nil
}

// Clear drops the value stored for the user and key, if any.
func (m *MemoryStore) Clear(_ context.Context, userID int64, key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	m.cache.Remove(entryKey{userID: userID, key: key})
	return nil
}

// Len reports how many entries are currently held.
func (m *MemoryStore) Len() int {
	return m.cache.Len()
}

// Close is a no-op for the memory backend.
func (m *MemoryStore) Close() error { return nil }
