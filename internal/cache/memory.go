package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

func init() {
	Register("memory", newMemoryCache)
}

// memoryCache keeps entries in a go-cache map with a background janitor.
// Size is not enforced; entries leave only when they expire.
type memoryCache struct {
	inner *gocache.Cache
}

func newMemoryCache(cfg ProviderConfig) (Cache, error) {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}

	cleanup := 10 * time.Minute
	if cfg.TTL > 0 && cfg.TTL < cleanup {
		cleanup = cfg.TTL
	}

	c := gocache.New(ttl, cleanup)
	if cfg.OnEvict != nil {
		c.OnEvicted(func(key string, value interface{}) {
			data, _ := value.([]byte)
			cfg.OnEvict(key, data)
		})
	}
	return &memoryCache{inner: c}, nil
}

func (m *memoryCache) Get(key string) ([]byte, bool) {
	value, ok := m.inner.Get(key)
	if !ok {
		return nil, false
	}
	data, ok := value.([]byte)
	return data, ok
}

func (m *memoryCache) Set(key string, value []byte) {
	m.inner.Set(key, value, gocache.DefaultExpiration)
}

func (m *memoryCache) Contains(key string) bool {
	_, ok := m.inner.Get(key)
	return ok
}

// Len counts unexpired entries only.
func (m *memoryCache) Len() int {
	return len(m.inner.Items())
}

func (m *memoryCache) Close() error {
	m.inner.Flush()
	return nil
}
