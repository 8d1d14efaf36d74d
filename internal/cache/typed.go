// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"
)

// Typed stores values of T as JSON in a Cache.
type Typed[T any] struct {
	cache  Cache
	ttl    time.Duration
	flight singleflight.Group
}

// NewTyped wraps c. ttl zero uses the cache default.
func NewTyped[T any](c Cache, ttl time.Duration) *Typed[T] {
	return &Typed[T]{cache: c, ttl: ttl}
}

// Get returns the cached value and true, or false on a miss or a decode error.
func (t *Typed[T]) Get(ctx context.Context, key string) (T, bool) {
	var v T
	data, err := t.cache.Get(ctx, key)
	if err != nil {
		return v, false
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return v, false
	}
	return v, true
}

// Set stores v under key.
func (t *Typed[T]) Set(ctx context.Context, key string, v T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return t.cache.Set(ctx, key, data, t.ttl)
}

// GetOrLoad returns the cached value or calls load and stores its result.
// Concurrent misses on one key share a single load. Load errors are returned
// and never cached; a failing cache only costs the load.
func (t *Typed[T]) GetOrLoad(ctx context.Context, key string, load func(context.Context) (T, error)) (T, error) {
	if v, ok := t.Get(ctx, key); ok {
		return v, nil
	}
	res, err, _ := t.flight.Do(key, func() (any, error) {
		if v, ok := t.Get(ctx, key); ok {
			return v, nil
		}
		v, err := load(ctx)
		if err != nil {
			return v, err
		}
		if err := t.Set(ctx, key, v); err != nil {
			slog.Warn("cache write failed", "category", "system", "key", key, "error", err)
		}
		return v, nil
	})
	v, _ := res.(T)
	return v, err
}
