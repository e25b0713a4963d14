package cache

import "context"

// observedCache counts lookups of the wrapped cache under its name.
type observedCache struct {
	Cache
	name string
}

func observe(c Cache, name string) *observedCache {
	entries.track(name, c.Len)
	return &observedCache{Cache: c, name: name}
}

func (o *observedCache) Get(ctx context.Context, key string) ([]byte, bool) {
	body, ok := o.Cache.Get(ctx, key)
	result := "miss"
	if ok {
		result = "hit"
	}
	LookupsTotal.WithLabelValues(o.name, result).Inc()
	return body, ok
}

func (o *observedCache) Close() error {
	entries.untrack(o.name)
	return o.Cache.Close()
}
