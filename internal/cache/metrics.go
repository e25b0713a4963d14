package cache

import (
	"sort"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// LookupsTotal counts Get calls per cache and result ("hit" or "miss").
	LookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_lookups_total",
			Help: "Total number of cache lookups, by result.",
		},
		[]string{"cache", "result"},
	)

	EvictionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_evictions_total",
			Help: "Total number of entries evicted from the cache.",
		},
		[]string{"cache"},
	)

	entries = newEntriesCollector()
)

func init() {
	prometheus.MustRegister(LookupsTotal, EvictionsTotal, entries)
}

// entriesCollector reports cache_entries for every open observed cache. Sizes are read
// at scrape time so redis TTL expiry shows without extra bookkeeping.
type entriesCollector struct {
	desc *prometheus.Desc

	mu    sync.Mutex
	sizes map[string]func() int
}

func newEntriesCollector() *entriesCollector {
	return &entriesCollector{
		desc:  prometheus.NewDesc("cache_entries", "Current number of entries in the cache.", []string{"cache"}, nil),
		sizes: make(map[string]func() int),
	}
}

func (e *entriesCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- e.desc
}

func (e *entriesCollector) Collect(ch chan<- prometheus.Metric) {
	e.mu.Lock()
	names := make([]string, 0, len(e.sizes))
	for name := range e.sizes {
		names = append(names, name)
	}
	sort.Strings(names)
	sizes := make([]func() int, len(names))
	for i, name := range names {
		sizes[i] = e.sizes[name]
	}
	e.mu.Unlock()

	for i, name := range names {
		ch <- prometheus.MustNewConstMetric(e.desc, prometheus.GaugeValue, float64(sizes[i]()), name)
	}
}

// track replaces any size function left by an earlier cache of the same name.
func (e *entriesCollector) track(name string, size func() int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sizes[name] = size
}

func (e *entriesCollector) untrack(name string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.sizes, name)
}
