package cache

import (
	"context"
	"time"
)

// Store is the key-value contract the rotation scheduler needs from the cache.
// Implementations must be safe for concurrent use. Callers bound every call
// with their own context deadline.
type Store interface {
	// IncrWithExpiry atomically increments key and returns the new value.
	// When ttl > 0 and the key carries no expiry (it was just created, or lost
	// its TTL), the key is set to expire after ttl in the same operation.
	IncrWithExpiry(ctx context.Context, key string, ttl time.Duration) (int64, error)

	// SetIfAbsent sets key with the given ttl only if it does not exist.
	// It reports whether the key was set.
	SetIfAbsent(ctx context.Context, key string, ttl time.Duration) (bool, error)
}
