package store

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

func revocationKey(tokenID string) string { return "revoked:" + tokenID }
func counterKey(key string) string        { return "ratelimit:" + key }

// RedisRevocationStore backs the revocation list with a shared redis
// instance so that a logout on one node is visible to every other node
// immediately.
type RedisRevocationStore struct {
	rdb *redis.Client
}

func NewRedisRevocationStore(rdb *redis.Client) *RedisRevocationStore {
	return &RedisRevocationStore{rdb: rdb}
}

func (s *RedisRevocationStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := s.rdb.Exists(ctx, revocationKey(tokenID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Revoke records the token id with a TTL matching the token's remaining
// lifetime; once the token would have expired anyway the entry is useless
// and redis drops it.
func (s *RedisRevocationStore) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	return s.rdb.Set(ctx, revocationKey(tokenID), time.Now().UTC().Format(time.RFC3339), ttl).Err()
}

// RedisRateLimitStore implements the windowed counter with INCR plus a
// NX expiry, pipelined so increment-and-read is a single round trip. The
// expiry is only set when the key is created, which pins the window start
// to the first request in it.
type RedisRateLimitStore struct {
	rdb *redis.Client
}

func NewRedisRateLimitStore(rdb *redis.Client) *RedisRateLimitStore {
	return &RedisRateLimitStore{rdb: rdb}
}

func (s *RedisRateLimitStore) Increment(ctx context.Context, key string, window time.Duration) (int64, error) {
	k := counterKey(key)
	pipe := s.rdb.TxPipeline()
	incr := pipe.Incr(ctx, k)
	pipe.ExpireNX(ctx, k, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}
