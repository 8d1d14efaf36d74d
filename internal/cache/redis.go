// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache stores entries in Redis so every instance sees the same copy.
type RedisCache struct {
	client     *redis.Client
	namespace  string
	defaultTTL time.Duration
	counters
}

// NewRedisCache wraps an existing client. Keys are stored as prefix+"cache:"+key.
func NewRedisCache(client *redis.Client, prefix string, defaultTTL time.Duration) *RedisCache {
	return &RedisCache{client: client, namespace: prefix + "cache:", defaultTTL: defaultTTL}
}

// Get implements Cache.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := c.client.Get(ctx, c.namespace+key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		c.misses.Add(1)
		return nil, ErrCacheMiss
	case err != nil:
		return nil, err
	}
	c.hits.Add(1)
	return val, nil
}

// Set implements Cache.
func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	if err := c.client.Set(ctx, c.namespace+key, value, ttl).Err(); err != nil {
		return err
	}
	c.sets.Add(1)
	return nil
}

// Delete implements Cache.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, c.namespace+key).Err()
}

// scanBatch is the number of keys deleted per DEL.
const scanBatch = 100

// DeleteByPrefix implements Cache. Keys are walked with SCAN so a large
// keyspace never blocks the server.
func (c *RedisCache) DeleteByPrefix(ctx context.Context, prefix string) error {
	it := c.client.Scan(ctx, 0, c.namespace+prefix+"*", scanBatch).Iterator()
	batch := make([]string, 0, scanBatch)
	for it.Next(ctx) {
		batch = append(batch, it.Val())
		if len(batch) == scanBatch {
			if err := c.client.Del(ctx, batch...).Err(); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if err := it.Err(); err != nil {
		return err
	}
	if len(batch) > 0 {
		return c.client.Del(ctx, batch...).Err()
	}
	return nil
}

var _ Cache = (*RedisCache)(nil)
