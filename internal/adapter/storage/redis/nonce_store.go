package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

// NonceStore implements ports.NonceStore using Redis keys that expire with
// the nonce. A nonce stays valid for repeated polls until it expires.
type NonceStore struct {
	client *goredis.Client
	prefix string
}

// NewNonceStore creates a new Redis-backed nonce store.
func NewNonceStore(client *goredis.Client) *NonceStore {
	return &NonceStore{
		client: client,
		prefix: "status_nonce:",
	}
}

func (s *NonceStore) key(orderID int64, nonce string) string {
	return s.prefix + strconv.FormatInt(orderID, 10) + ":" + nonce
}

// Issue creates a random nonce bound to orderID.
func (s *NonceStore) Issue(ctx context.Context, orderID int64, ttl time.Duration) (string, error) {
	nonce := uuid.NewString()
	if err := s.client.Set(ctx, s.key(orderID, nonce), 1, ttl).Err(); err != nil {
		return "", fmt.Errorf("redis nonce issue: %w", err)
	}
	return nonce, nil
}

// Verify reports whether nonce was issued for orderID and has not expired.
func (s *NonceStore) Verify(ctx context.Context, orderID int64, nonce string) (bool, error) {
	if nonce == "" {
		return false, nil
	}
	n, err := s.client.Exists(ctx, s.key(orderID, nonce)).Result()
	if err != nil {
		return false, fmt.Errorf("redis nonce verify: %w", err)
	}
	return n == 1, nil
}
