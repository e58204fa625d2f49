// Package cache provides a Redis-backed snapshot cache for the priority
// queue and aggregate statistics. Reads treat any Redis failure as a cache
// miss; the source of truth is always the ticket store.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	queueKey      = "prioritization:queue"
	statisticsKey = "prioritization:statistics"
)

// QueueCache caches derived read models between ticket mutations.
type QueueCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewQueueCache constructs the cache. A nil client disables caching.
func NewQueueCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *QueueCache {
	return &QueueCache{client: client, ttl: ttl, logger: logger}
}

// GetQueue loads the cached queue snapshot into dest. Returns false on miss.
func (c *QueueCache) GetQueue(ctx context.Context, dest any) bool {
	return c.get(ctx, queueKey, dest)
}

// SetQueue stores the queue snapshot.
func (c *QueueCache) SetQueue(ctx context.Context, value any) {
	c.set(ctx, queueKey, value)
}

// GetStatistics loads cached statistics into dest. Returns false on miss.
func (c *QueueCache) GetStatistics(ctx context.Context, dest any) bool {
	return c.get(ctx, statisticsKey, dest)
}

// SetStatistics stores the statistics snapshot.
func (c *QueueCache) SetStatistics(ctx context.Context, value any) {
	c.set(ctx, statisticsKey, value)
}

// Invalidate drops both snapshots. Called after every ticket mutation.
func (c *QueueCache) Invalidate(ctx context.Context) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Del(ctx, queueKey, statisticsKey).Err(); err != nil {
		c.logger.Debug("cache invalidation failed", zap.Error(err))
	}
}

func (c *QueueCache) get(ctx context.Context, key string, dest any) bool {
	if c == nil || c.client == nil {
		return false
	}
	payload, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Debug("cache read failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(payload, dest); err != nil {
		c.logger.Debug("cache payload corrupt", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (c *QueueCache) set(ctx context.Context, key string, value any) {
	if c == nil || c.client == nil {
		return
	}
	payload, err := json.Marshal(value)
	if err != nil {
		c.logger.Debug("cache encode failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		c.logger.Debug("cache write failed", zap.String("key", key), zap.Error(err))
	}
}
