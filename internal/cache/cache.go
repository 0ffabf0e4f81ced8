package cache

import "time"

// Cache defines a bounded key-value cache API with a TTL per entry.
// Implementations are safe for concurrent use.
type Cache[K comparable, V any] interface {
	// Get returns the value and whether it was present and not expired.
	// An expired entry is removed as a side effect.
	Get(key K) (V, bool)

	// Set stores the value. If ttl <= 0, the cache's default TTL applies.
	Set(key K, value V, ttl time.Duration)

	// Delete removes a key if present.
	Delete(key K)

	// Has reports whether a key is present and not expired.
	Has(key K) bool

	// Len returns the number of non-expired items currently stored.
	Len() int

	// Clear removes all entries.
	Clear()

	// PurgeExpired scans and removes expired entries.
	PurgeExpired()
}
