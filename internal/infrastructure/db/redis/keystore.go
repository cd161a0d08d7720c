package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/transporteur/marketplace/internal/core/ports"
)

const revokedPrefix = "revoked:"

// KeyStore keeps idempotency keys and revoked token ids in Redis with a TTL.
type KeyStore struct {
	client redis.UniversalClient
}

// NewKeyStore wraps the given Redis client.
func NewKeyStore(client redis.UniversalClient) *KeyStore {
	return &KeyStore{client: client}
}

var (
	_ ports.IdempotencyStore = (*KeyStore)(nil)
	_ ports.TokenRevoker     = (*KeyStore)(nil)
)

// Lookup returns the value stored under key.
func (s *KeyStore) Lookup(ctx context.Context, key string) (string, bool, error) {
	v, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("idempotency lookup: %w", err)
	}
	return v, true, nil
}

// Remember stores value under key unless it already exists (SET NX).
func (s *KeyStore) Remember(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := s.client.SetNX(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("idempotency remember: %w", err)
	}
	return nil
}

// Revoke denies tokenID for ttl.
func (s *KeyStore) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	return s.client.Set(ctx, revokedPrefix+tokenID, "1", ttl).Err()
}

// IsRevoked reports whether tokenID was revoked and has not expired yet.
func (s *KeyStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := s.client.Exists(ctx, revokedPrefix+tokenID).Result()
	if err != nil {
		return false, fmt.Errorf("revocation check: %w", err)
	}
	return n > 0, nil
}
