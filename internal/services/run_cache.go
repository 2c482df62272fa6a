package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const runKeyPrefix = "run:"

var ErrRunNotFound = errors.New("run not found")

// RunCache keeps recent run results for retrieval by id.
type RunCache interface {
	Put(ctx context.Context, result *RunResult) error
	Get(ctx context.Context, runID string) (*RunResult, error)
}

type RedisRunCache struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewRedisRunCache(rdb *redis.Client, ttl time.Duration) *RedisRunCache {
	return &RedisRunCache{redis: rdb, ttl: ttl}
}

func runKey(runID string) string {
	return runKeyPrefix + runID
}

func (c *RedisRunCache) Put(ctx context.Context, result *RunResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("error encoding run %s: %w", result.RunID, err)
	}
	return c.redis.Set(ctx, runKey(result.RunID), data, c.ttl).Err()
}

func (c *RedisRunCache) Get(ctx context.Context, runID string) (*RunResult, error) {
	data, err := c.redis.Get(ctx, runKey(runID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, err
	}

	var result RunResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("error decoding run %s: %w", runID, err)
	}
	return &result, nil
}
