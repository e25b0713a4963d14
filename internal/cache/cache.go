// Package cache stores catalog response bodies so repeated searches and episode lists
// are served without a round trip to the catalog.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Providers accepted by Open.
const (
	ProviderMemory = "memory"
	ProviderRedis  = "redis"
	ProviderNone   = "none"
)

// Cache stores response bodies by key. Backend failures are logged and behave as misses.
type Cache interface {
	// Get returns the stored body and true, or nil and false on a miss.
	Get(ctx context.Context, key string) ([]byte, bool)
	// Set stores body under key, replacing any previous entry.
	Set(ctx context.Context, key string, body []byte)
	// Len returns the number of live entries.
	Len() int
	Close() error
}

// RedisOptions locates the shared redis/valkey instance.
type RedisOptions struct {
	Address  string
	Password string
	DB       int
	// KeyPrefix namespaces every key. Defaults to "showfinder:".
	KeyPrefix string
}

// Options configures Open.
type Options struct {
	Provider string
	// Size bounds the number of entries; the least recently read entry goes first.
	Size int
	TTL  time.Duration

	Redis RedisOptions

	// Name labels the cache_* metrics. Empty leaves the cache unobserved.
	Name string

	Logger zerolog.Logger
}

// Open creates the cache named by opts.Provider. An empty provider or ProviderNone
// yields a cache that stores nothing.
func Open(opts Options) (Cache, error) {
	var onEvict func(key string)
	if opts.Name != "" {
		name := opts.Name
		onEvict = func(string) { EvictionsTotal.WithLabelValues(name).Inc() }
	}

	var (
		c   Cache
		err error
	)
	switch opts.Provider {
	case "", ProviderNone:
		return Noop(), nil
	case ProviderMemory:
		c = newMemoryCache(opts.Size, opts.TTL, onEvict)
	case ProviderRedis:
		c, err = newRedisCache(opts.Redis, opts.Size, opts.TTL, onEvict, opts.Logger)
	default:
		return nil, fmt.Errorf("cache: unknown provider %q (want %s, %s or %s)", opts.Provider, ProviderMemory, ProviderRedis, ProviderNone)
	}
	if err != nil {
		return nil, err
	}

	if opts.Name == "" {
		return c, nil
	}
	return observe(c, opts.Name), nil
}

type noopCache struct{}

// Noop returns a cache that never stores anything.
func Noop() Cache { return noopCache{} }

func (noopCache) Get(context.Context, string) ([]byte, bool) { return nil, false }
func (noopCache) Set(context.Context, string, []byte)        {}
func (noopCache) Len() int                                    { return 0 }
func (noopCache) Close() error                                { return nil }
