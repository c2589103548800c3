package sessioninfra

import (
	"context"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/blake2b"
)

const revokedPrefix = "session:revoked:"

// RedisRevoker shares token revocations between processes. Tokens are
// stored as blake2b digests, never in clear text.
type RedisRevoker struct {
	client redis.Cmdable
	now    func() time.Time
}

func NewRedisRevoker(client redis.Cmdable) *RedisRevoker {
	return &RedisRevoker{client: client, now: time.Now}
}

func KeyFor(token string) string {
	sum := blake2b.Sum256([]byte(token))
	return revokedPrefix + hex.EncodeToString(sum[:])
}

func (r *RedisRevoker) Revoke(ctx context.Context, token string, until time.Time) error {
	ttl := until.Sub(r.now())
	if ttl < time.Second {
		ttl = time.Second
	}
	if err := r.client.Set(ctx, KeyFor(token), "1", ttl).Err(); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

func (r *RedisRevoker) IsRevoked(ctx context.Context, token string) (bool, error) {
	n, err := r.client.Exists(ctx, KeyFor(token)).Result()
	if err != nil {
		return false, fmt.Errorf("check session revocation: %w", err)
	}
	return n > 0, nil
}
