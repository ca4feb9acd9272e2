package arduinocloud

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisTokenKey is the key used when NewRedisTokenCache gets an empty key.
const DefaultRedisTokenKey = "arduinocloud:access_token"

// RedisTokenCache shares the access token between processes through Redis.
// Entries expire together with the token.
type RedisTokenCache struct {
	rdb redis.Cmdable
	key string
	now func() time.Time
}

// NewRedisTokenCache creates a cache storing the token under key.
// Use a key per client ID when several credentials share one Redis.
func NewRedisTokenCache(rdb redis.Cmdable, key string) *RedisTokenCache {
	if key == "" {
		key = DefaultRedisTokenKey
	}
	return &RedisTokenCache{rdb: rdb, key: key, now: time.Now}
}

// NewRedisTokenCacheFromURL connects to Redis at a redis:// URL and checks the
// connection before returning the cache.
func NewRedisTokenCacheFromURL(ctx context.Context, redisURL, key string) (*RedisTokenCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return NewRedisTokenCache(rdb, key), nil
}

// Load reads the token from Redis.
func (r *RedisTokenCache) Load(ctx context.Context) (*Token, error) {
	data, err := r.rdb.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrTokenCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var token Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("failed to parse cached token: %w", err)
	}
	return &token, nil
}

// Save writes the token with a TTL equal to its remaining lifetime.
// Tokens that have already expired are not written.
func (r *RedisTokenCache) Save(ctx context.Context, token *Token) error {
	if token == nil {
		return fmt.Errorf("token cannot be nil")
	}

	ttl := token.ExpiresAt.Sub(r.now())
	if ttl <= 0 {
		return nil
	}

	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to marshal token: %w", err)
	}

	if err := r.rdb.Set(ctx, r.key, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// Delete removes the cached token.
func (r *RedisTokenCache) Delete(ctx context.Context) error {
	return r.rdb.Del(ctx, r.key).Err()
}
