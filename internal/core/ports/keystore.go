package ports

import (
	"context"
	"time"
)

// IdempotencyStore remembers the outcome key of a request for a while.
type IdempotencyStore interface {
	// Lookup returns the value stored under key and whether it exists.
	Lookup(ctx context.Context, key string) (string, bool, error)
	// Remember stores value under key unless the key already exists.
	Remember(ctx context.Context, key, value string, ttl time.Duration) error
}

// TokenRevoker keeps the ids of logged-out tokens until they expire.
type TokenRevoker interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
