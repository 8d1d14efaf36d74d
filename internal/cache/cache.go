// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package cache keeps short-lived copies of backend lists shown on the
// public site, in process or in a shared Redis.
package cache

import (
	"context"
	"errors"
	"sync/atomic"
	"time"
)

// Cache defines the interface for cache implementations.
// All implementations must be thread-safe. Values are raw bytes so both
// in-memory and Redis stores can hold them.
type Cache interface {
	// Get returns ErrCacheMiss if key is absent or expired.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores value for ttl; zero uses the default TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	// DeleteByPrefix removes every key starting with prefix.
	DeleteByPrefix(ctx context.Context, prefix string) error
	Stats() Stats
}

// Stats counts cache traffic of this process since start.
type Stats struct {
	Hits   int64
	Misses int64
	Sets   int64
}

// HitRate returns hits as a percentage of lookups.
func (s Stats) HitRate() float64 {
	lookups := s.Hits + s.Misses
	if lookups == 0 {
		return 0
	}
	return float64(s.Hits) / float64(lookups) * 100
}

// counters implements Stats for the stores.
type counters struct {
	hits, misses, sets atomic.Int64
}

// Stats implements Cache.
func (c *counters) Stats() Stats {
	return Stats{Hits: c.hits.Load(), Misses: c.misses.Load(), Sets: c.sets.Load()}
}

// ErrCacheMiss indicates the key was not found in cache or has expired.
var ErrCacheMiss = errors.New("cache miss")
