package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/feral-file/contract-ledger/internal/adapter"
)

// DefaultRedisKeyPrefix is the key prefix used when none is configured
const DefaultRedisKeyPrefix = "contract-ledger"

// redisCache shares entries between processes.
// Keys are "<prefix>:<contract>:<generation>:<namespace>"; the generation lives in "<prefix>:<contract>:gen".
type redisCache struct {
	client adapter.RedisClient
	prefix string
}

// NewRedisCache creates a cache backed by Redis
func NewRedisCache(client adapter.RedisClient, prefix string) Cache {
	if prefix == "" {
		prefix = DefaultRedisKeyPrefix
	}
	return &redisCache{client: client, prefix: prefix}
}

func (r *redisCache) generationKey(contractID uint64) string {
	return fmt.Sprintf("%s:%d:gen", r.prefix, contractID)
}

func (r *redisCache) entryKey(contractID uint64, generation int64, namespace string) string {
	return fmt.Sprintf("%s:%d:%d:%s", r.prefix, contractID, generation, namespace)
}

func (r *redisCache) Generation(ctx context.Context, contractID uint64) (int64, error) {
	value, err := r.client.Get(ctx, r.generationKey(contractID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get cache generation: %w", err)
	}

	generation, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse cache generation: %w", err)
	}

	return generation, nil
}

func (r *redisCache) Get(ctx context.Context, contractID uint64, generation int64, namespace string) ([]byte, bool, error) {
	data, err := r.client.Get(ctx, r.entryKey(contractID, generation, namespace)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get cache entry: %w", err)
	}

	return data, true, nil
}

// Set writes under the generation read before computing. A concurrent Invalidate
// moves readers to a newer generation, so a late write is never observed.
func (r *redisCache) Set(ctx context.Context, contractID uint64, generation int64, namespace string, data []byte, ttl time.Duration) error {
	if err := r.client.Set(ctx, r.entryKey(contractID, generation, namespace), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set cache entry: %w", err)
	}

	return nil
}

func (r *redisCache) Invalidate(ctx context.Context, contractID uint64) error {
	if err := r.client.Incr(ctx, r.generationKey(contractID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate cache: %w", err)
	}

	return nil
}
