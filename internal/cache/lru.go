package cache

import (
	lru "github.com/hashicorp/golang-lru/v2/expirable"
)

const defaultLRUSize = 512

func init() {
	Register("lru", newLRUCache)
}

// lruCache bounds memory by entry count and age.
type lruCache struct {
	inner *lru.LRU[string, []byte]
}

func newLRUCache(cfg ProviderConfig) (Cache, error) {
	size := cfg.Size
	if size <= 0 {
		size = defaultLRUSize
	}

	var onEvict lru.EvictCallback[string, []byte]
	if cfg.OnEvict != nil {
		onEvict = func(key string, value []byte) {
			cfg.OnEvict(key, value)
		}
	}
	return &lruCache{inner: lru.NewLRU[string, []byte](size, onEvict, cfg.TTL)}, nil
}

func (l *lruCache) Get(key string) ([]byte, bool) {
	return l.inner.Get(key)
}

func (l *lruCache) Set(key string, value []byte) {
	l.inner.Add(key, value)
}

func (l *lruCache) Contains(key string) bool {
	return l.inner.Contains(key)
}

func (l *lruCache) Len() int {
	return l.inner.Len()
}

func (l *lruCache) Close() error {
	l.inner.Purge()
	return nil
}
