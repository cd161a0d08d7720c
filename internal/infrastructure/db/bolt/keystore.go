// Package bolt is an embedded alternative to the Redis key store for local
// development. Expired keys are dropped when read and by Purge.
package bolt

import (
	"context"
	"encoding/binary"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/transporteur/marketplace/internal/core/ports"
)

var (
	bucketIdempotency = []byte("idempotency")
	bucketRevoked     = []byte("revoked_tokens")
)

// KeyStore implements the idempotency and revocation ports on a BoltDB file.
// Each value is prefixed with its expiry as 8 bytes of unix nanoseconds.
type KeyStore struct {
	db  *bolt.DB
	now func() time.Time
}

// Open opens (or creates) the database file at path and ensures both buckets exist.
func Open(path string) (*KeyStore, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("bolt open: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{bucketIdempotency, bucketRevoked} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("bolt buckets: %w", err)
	}

	return &KeyStore{db: db, now: time.Now}, nil
}

var (
	_ ports.IdempotencyStore = (*KeyStore)(nil)
	_ ports.TokenRevoker     = (*KeyStore)(nil)
)

// Close releases the database file lock.
func (s *KeyStore) Close() error {
	return s.db.Close()
}

func (s *KeyStore) Lookup(_ context.Context, key string) (string, bool, error) {
	v, ok, err := s.get(bucketIdempotency, key)
	return string(v), ok, err
}

// Remember stores value under key unless a live entry already exists.
func (s *KeyStore) Remember(_ context.Context, key, value string, ttl time.Duration) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketIdempotency)
		if _, live := s.decode(b.Get([]byte(key))); live {
			return nil
		}
		return b.Put([]byte(key), s.encode([]byte(value), ttl))
	})
}

func (s *KeyStore) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketRevoked).Put([]byte(tokenID), s.encode(nil, ttl))
	})
}

func (s *KeyStore) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	_, ok, err := s.get(bucketRevoked, tokenID)
	return ok, err
}

// Purge deletes every expired entry and returns how many were removed.
func (s *KeyStore) Purge() (int, error) {
	removed := 0
	err := s.db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{bucketIdempotency, bucketRevoked} {
			b := tx.Bucket(name)
			var expired [][]byte
			err := b.ForEach(func(k, v []byte) error {
				if _, live := s.decode(v); !live {
					expired = append(expired, append([]byte(nil), k...))
				}
				return nil
			})
			if err != nil {
				return err
			}
			for _, k := range expired {
				if err := b.Delete(k); err != nil {
					return err
				}
			}
			removed += len(expired)
		}
		return nil
	})
	return removed, err
}

func (s *KeyStore) get(bucket []byte, key string) ([]byte, bool, error) {
	var (
		out  []byte
		live bool
	)
	err := s.db.View(func(tx *bolt.Tx) error {
		v, ok := s.decode(tx.Bucket(bucket).Get([]byte(key)))
		if ok {
			// bolt values are only valid inside the transaction
			out = append([]byte(nil), v...)
			live = true
		}
		return nil
	})
	return out, live, err
}

func (s *KeyStore) encode(value []byte, ttl time.Duration) []byte {
	buf := make([]byte, 8+len(value))
	binary.BigEndian.PutUint64(buf, uint64(s.now().Add(ttl).UnixNano()))
	copy(buf[8:], value)
	return buf
}

func (s *KeyStore) decode(raw []byte) ([]byte, bool) {
	if len(raw) < 8 {
		return nil, false
	}
	expires := time.Unix(0, int64(binary.BigEndian.Uint64(raw[:8])))
	if !s.now().Before(expires) {
		return nil, false
	}
	return raw[8:], true
}
