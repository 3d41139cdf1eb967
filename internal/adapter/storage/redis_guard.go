package storage

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	messageKeyPrefix = "raktar:message:"
	defaultClaimTTL  = 24 * time.Hour
)

// RedisGuard remembers delivered message IDs so several bot replicas, or a
// gateway replay after reconnect, never apply a command twice.
type RedisGuard struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisGuard(client *redis.Client, ttl time.Duration) *RedisGuard {
	if ttl <= 0 {
		ttl = defaultClaimTTL
	}
	return &RedisGuard{client: client, ttl: ttl}
}

func (r *RedisGuard) Claim(ctx context.Context, key string) (bool, error) {
	ok, err := r.client.SetNX(ctx, messageKeyPrefix+key, 1, r.ttl).Result()
	if err != nil {
		return false, err
	}

	return ok, nil
}
