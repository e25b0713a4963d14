package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// memoryCache keeps bodies in process. Entries are dropped by size and by age.
type memoryCache struct {
	lru *expirable.LRU[string, []byte]
}

func newMemoryCache(size int, ttl time.Duration, onEvict func(key string)) *memoryCache {
	var evicted expirable.EvictCallback[string, []byte]
	if onEvict != nil {
		evicted = func(key string, _ []byte) { onEvict(key) }
	}
	return &memoryCache{lru: expirable.NewLRU(size, evicted, ttl)}
}

func (m *memoryCache) Get(_ context.Context, key string) ([]byte, bool) {
	return m.lru.Get(key)
}

func (m *memoryCache) Set(_ context.Context, key string, body []byte) {
	m.lru.Add(key, body)
}

func (m *memoryCache) Len() int {
	return m.lru.Len()
}

func (m *memoryCache) Close() error {
	return nil
}
