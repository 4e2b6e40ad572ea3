package cache

import "github.com/prometheus/client_golang/prometheus"

var (
	// HitsTotal counts cache hits per group.
	HitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "show_manager",
			Name:      "cache_hits_total",
			Help:      "Total number of response cache hits.",
		},
		[]string{"cache"},
	)

	// MissesTotal counts cache misses per group.
	MissesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "show_manager",
			Name:      "cache_misses_total",
			Help:      "Total number of response cache misses.",
		},
		[]string{"cache"},
	)

	// EvictionsTotal counts evicted entries per group.
	EvictionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "show_manager",
			Name:      "cache_evictions_total",
			Help:      "Total number of entries evicted from the response cache.",
		},
		[]string{"cache"},
	)
)

func init() {
	prometheus.MustRegister(HitsTotal, MissesTotal, EvictionsTotal)
}

// instrumentedCache counts hits and misses for a wrapped cache.
type instrumentedCache struct {
	inner Cache
	group string
}

func (c *instrumentedCache) Get(key string) ([]byte, bool) {
	value, ok := c.inner.Get(key)
	if ok {
		HitsTotal.WithLabelValues(c.group).Inc()
	} else {
		MissesTotal.WithLabelValues(c.group).Inc()
	}
	return value, ok
}

func (c *instrumentedCache) Set(key string, value []byte) { c.inner.Set(key, value) }
func (c *instrumentedCache) Contains(key string) bool     { return c.inner.Contains(key) }
func (c *instrumentedCache) Len() int                     { return c.inner.Len() }
func (c *instrumentedCache) Close() error                 { return c.inner.Close() }
