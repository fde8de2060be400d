// Package cache provides the caching layer between definition resolution
// and its consumers. Resolved catalogs, rendered inheritance diagrams, and
// parsed suites are cheap to rebuild but not free; caching them keyed by
// document hash makes repeated CLI invocations and API requests fast while
// staying correct, since any source change changes the hash.
package cache

import (
	"context"
	"time"
)

// Default TTLs per artifact kind. Keys already change whenever inputs
// change, so expiry only bounds disk growth from orphaned entries.
const (
	// TTLCatalog is how long resolved catalogs stay cached.
	TTLCatalog = 7 * 24 * time.Hour

	// TTLDiagram is how long rendered inheritance diagrams stay cached.
	TTLDiagram = 7 * 24 * time.Hour

	// TTLSuite is how long parsed suites stay cached.
	TTLSuite = 24 * time.Hour
)

// Cache stores opaque byte payloads under string keys with optional
// expiration. Implementations must treat a missing key as a miss, not an
// error. All implementations are safe for concurrent use.
type Cache interface {
	// Get retrieves a value. The second return reports whether the key was
	// present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A ttl of 0 means the entry never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the backend.
	Close() error
}
