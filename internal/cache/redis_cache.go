package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aaravmahajanofficial/storefront/internal/config"
	"github.com/aaravmahajanofficial/storefront/internal/metrics"
	"github.com/redis/go-redis/v9"
)

// redisCache stores JSON documents under the storefront key namespace. It is
// a read-through helper only: carts, locks and pending orders talk to Redis
// through their own repositories.
type redisCache struct {
	client     *redis.Client
	defaultTTL time.Duration
}

func NewRedisCache(client *redis.Client, cfg *config.CacheConfig) Cache {
	return &redisCache{client: client, defaultTTL: cfg.DefaultTTL}
}

// prefixOf drops the id segment so metrics stay low-cardinality.
func prefixOf(key string) string {
	if i := strings.LastIndexByte(key, ':'); i > 0 {
		return key[:i]
	}

	return key
}

// Get reports a miss for absent keys. An entry that no longer decodes into
// value (for example after a model change) is evicted and reported as a miss,
// so callers reload it from the source of truth.
func (r *redisCache) Get(ctx context.Context, key string, value any) (bool, error) {
	prefix := prefixOf(key)

	data, err := r.client.Get(ctx, key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		metrics.RecordCacheLookup(prefix, "miss")
		return false, nil
	case err != nil:
		metrics.RecordCacheLookup(prefix, "error")
		return false, fmt.Errorf("failed to get key %s from redis: %w", key, err)
	}

	if err := json.Unmarshal(data, value); err != nil {
		metrics.RecordCacheLookup(prefix, "corrupt")
		slog.Warn("Evicting undecodable cache entry", slog.String("key", key), slog.String("error", err.Error()))

		if delErr := r.client.Del(ctx, key).Err(); delErr != nil {
			return false, fmt.Errorf("failed to evict key %s: %w", key, errors.Join(err, delErr))
		}

		return false, nil
	}

	metrics.RecordCacheLookup(prefix, "hit")

	return true, nil
}

// Set falls back to the configured default when ttl is not positive.
func (r *redisCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value for key %s: %w", key, err)
	}

	if ttl <= 0 {
		ttl = r.defaultTTL
	}

	if err := r.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set key %s in redis: %w", key, err)
	}

	return nil
}

func (r *redisCache) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete key %s from redis: %w", key, err)
	}

	return nil
}

// Close is a no-op; the client is shared and closed by its owner.
func (r *redisCache) Close() error {
	return nil
}
