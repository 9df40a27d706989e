package repository

import (
	"context"
	"sync"
	"time"
)

type cachedValue struct {
	value     string
	expiresAt time.Time
}

// MemoryResponseCache is an in-memory implementation of
// domain.IResponseCacheRepository. Used as fallback when Valkey is not
// enabled, and in tests.
type MemoryResponseCache struct {
	mu      sync.RWMutex
	entries map[string]cachedValue
}

func NewMemoryResponseCache() *MemoryResponseCache {
	return &MemoryResponseCache{entries: make(map[string]cachedValue)}
}

func (s *MemoryResponseCache) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[key]
	if !ok || time.Now().After(entry.expiresAt) {
		return "", false, nil
	}
	return entry.value, true, nil
}

func (s *MemoryResponseCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = cachedValue{value: value, expiresAt: time.Now().Add(ttl)}
	return nil
}
