package port

import (
	"context"
	"time"
)

// Cache is the minimal contract for a key-value store used for ephemeral
// bridge state (sessions). Implementations must be safe for concurrent use
// and context-aware so callers control timeouts and cancellation.
//
// Values are plain strings to keep the port free of serialization concerns;
// callers encode richer records (JSON) before storing them.
type Cache interface {
	// Get fetches the value for key. A missing key is reported as ErrMiss;
	// any other non-nil error is a transport or server failure.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value at key with the provided TTL. Zero or negative TTL
	// means no expiration.
	Set(ctx context.Context, key string, value string, ttl time.Duration) error

	// Del removes one or more keys and returns the number of keys removed.
	Del(ctx context.Context, keys ...string) (int64, error)

	// Ping verifies connectivity with the cache backend.
	Ping(ctx context.Context) error

	// Close releases any resources held by the cache.
	Close() error
}

// ErrMiss signals a cache miss in a typed way so callers can tell misses
// apart from transport errors.
var ErrMiss = errMiss{}

type errMiss struct{}

func (e errMiss) Error() string { return "cache: miss" }
