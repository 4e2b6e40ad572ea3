// Package cache stores serialized catalog responses behind pluggable
// backends selected by name.
package cache

import "github.com/rs/zerolog"

// EvictCallback is called when an entry leaves the cache because of size or
// age. The redis backend never calls it.
type EvictCallback func(key string, value []byte)

// Cache is a byte-level key/value cache with per-entry expiry.
type Cache interface {
	// Get returns the value for key and whether it was present.
	Get(key string) ([]byte, bool)

	// Set stores value under key, replacing any previous value.
	Set(key string, value []byte)

	// Contains reports whether key is present without refreshing it.
	Contains(key string) bool

	// Len returns the number of live entries.
	Len() int

	// Close releases backend resources.
	Close() error
}

func logError(logger *zerolog.Logger, err error, op, key string) {
	if logger == nil {
		return
	}
	logger.Warn().Err(err).Str("op", op).Str("key", key).Msg("cache backend error")
}
