package shared

import (
	"context"
	"time"
)

// IdempotencyStore tracks request keys that have already been processed so
// that retried requests do not repeat their side effects.
type IdempotencyStore interface {
	// MarkProcessed marks a key as processed with a TTL.
	// Returns true if the key was newly marked, false if it was already processed.
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// IsProcessed checks whether a key has already been processed.
	IsProcessed(ctx context.Context, key string) (bool, error)

	// Release forgets a key so the request can be retried. Releasing an
	// unknown key is a no-op.
	Release(ctx context.Context, key string) error

	// Close releases any resources held by the store.
	Close() error
}
