// Package pathcache caches path results in Redis.
package pathcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/beka-birhanu/vinom-pathfinder/domain"
	"github.com/beka-birhanu/vinom-pathfinder/service/i"
	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
)

const (
	fillLockSuffix  = ":fill_lock"
	fillLockExpiry  = 5 * time.Second
	fillLockRetries = 16
)

// RedisPathCache stores path results as JSON strings with a TTL. Concurrent
// misses on the same key are serialised by a redsync mutex so only one caller
// runs the search.
type RedisPathCache struct {
	client *redis.Client
	locker *redsync.Redsync
	ttl    time.Duration
}

// NewRedisPathCache initializes a RedisPathCache with the provided Redis client and TTL.
func NewRedisPathCache(client *redis.Client, ttlSeconds int) (i.PathCache, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	if ttlSeconds <= 0 {
		return nil, fmt.Errorf("path cache ttl must be positive, got %d", ttlSeconds)
	}

	cache := &RedisPathCache{
		client: client,
		ttl:    time.Duration(ttlSeconds) * time.Second,
	}
	pool := goredis.NewPool(client)
	cache.locker = redsync.New(pool)
	return cache, nil
}

// GetOrFill implements i.PathCache.
func (c *RedisPathCache) GetOrFill(ctx context.Context, key string, fill func() (domain.PathResult, error)) (domain.PathResult, bool, error) {
	if result, ok, err := c.get(ctx, key); err != nil || ok {
		return result, ok, err
	}

	mutex := c.locker.NewMutex(key+fillLockSuffix, redsync.WithExpiry(fillLockExpiry), redsync.WithTries(fillLockRetries))
	if err := mutex.LockContext(ctx); err != nil {
		return domain.PathResult{}, false, err
	}
	defer func() {
		_, _ = mutex.UnlockContext(ctx)
	}()

	// Another caller may have filled the key while we waited for the lock.
	if result, ok, err := c.get(ctx, key); err != nil || ok {
		return result, ok, err
	}

	result, err := fill()
	if err != nil {
		return domain.PathResult{}, false, err
	}

	payload, err := json.Marshal(result)
	if err != nil {
		return domain.PathResult{}, false, err
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return result, false, fmt.Errorf("%w: %s: %w", i.ErrPathNotStored, key, err)
	}
	return result, false, nil
}

func (c *RedisPathCache) get(ctx context.Context, key string) (domain.PathResult, bool, error) {
	payload, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.PathResult{}, false, nil
	}
	if err != nil {
		return domain.PathResult{}, false, err
	}

	var result domain.PathResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return domain.PathResult{}, false, fmt.Errorf("decoding cached path %s: %w", key, err)
	}
	return result, true, nil
}
