package store

import (
	"context"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// ProvideRedis dials redis from env. A missing REDIS_ADDR, or an instance
// that does not answer a ping, yields nil and the in-memory stores take
// over; cross-node revocation and rate limiting degrade to per-node until
// redis returns.
func ProvideRedis(log *zap.Logger) *redis.Client {
	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil
	}

	db := 0
	if v := strings.TrimSpace(os.Getenv("REDIS_DB")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			db = n
		}
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn("redis unavailable, falling back to in-memory stores",
			zap.String("addr", addr),
			zap.Error(err),
		)
		_ = rdb.Close()
		return nil
	}
	return rdb
}

func ProvideRevocationStore(rdb *redis.Client) RevocationStore {
	if rdb != nil {
		return NewRedisRevocationStore(rdb)
	}
	return NewMemoryRevocationStore()
}

func ProvideRateLimitStore(rdb *redis.Client) RateLimitStore {
	if rdb != nil {
		return NewRedisRateLimitStore(rdb)
	}
	return NewMemoryRateLimitStore()
}

var Module = fx.Options(
	fx.Provide(ProvideRedis),
	fx.Provide(ProvideRevocationStore),
	fx.Provide(ProvideRateLimitStore),
)
