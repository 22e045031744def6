package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/matcha-app/matcha-core/internal/config"
)

// LikeCountTTL bounds how long a cached like counter lives without access.
const LikeCountTTL = time.Hour

type RedisCache struct {
	Client *redis.Client
}

// NewRedisCache initializes the Redis client from config.
// Only Addr is mandatory, Password/DB are optional.
func NewRedisCache(cfg *config.Config) *RedisCache {
	opts := &redis.Options{
		Addr: cfg.Redis.Addr,
	}
	if cfg.Redis.Password != "" {
		opts.Password = cfg.Redis.Password
	}
	if cfg.Redis.DB != 0 {
		opts.DB = cfg.Redis.DB
	}
	return &RedisCache{Client: redis.NewClient(opts)}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}

func (c *RedisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return c.Client.Set(ctx, key, value, ttl).Err()
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, error) {
	return c.Client.Get(ctx, key).Result()
}

func (c *RedisCache) Del(ctx context.Context, key string) error {
	return c.Client.Del(ctx, key).Err()
}

func (c *RedisCache) Incr(ctx context.Context, key string) (int64, error) {
	return c.Client.Incr(ctx, key).Result()
}

func (c *RedisCache) Decr(ctx context.Context, key string) (int64, error) {
	return c.Client.Decr(ctx, key).Result()
}

// Publish sends payload on a pub/sub channel. Used for notification events
// consumed by the external real-time layer.
func (c *RedisCache) Publish(ctx context.Context, channel string, payload []byte) error {
	return c.Client.Publish(ctx, channel, payload).Err()
}

// KeyForLikeCount generates the Redis key for a user's incoming-like count.
func (c *RedisCache) KeyForLikeCount(userID uint64) string {
	return fmt.Sprintf("likes:count:%d", userID)
}

// GetLikeCount reads a cached like counter. Cache miss returns (0, false, nil).
// TTL is refreshed on access.
func (c *RedisCache) GetLikeCount(ctx context.Context, userID uint64) (int64, bool, error) {
	key := c.KeyForLikeCount(userID)
	val, err := c.Client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	} else if err != nil {
		return 0, false, err
	}
	_ = c.Client.Expire(ctx, key, LikeCountTTL).Err()
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false, err
	}
	return n, true, nil
}

// SetLikeCount overwrites a user's cached like counter and refreshes its TTL.
func (c *RedisCache) SetLikeCount(ctx context.Context, userID uint64, count int64) error {
	return c.Client.Set(ctx, c.KeyForLikeCount(userID), count, LikeCountTTL).Err()
}
