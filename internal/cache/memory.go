// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"strings"
	"sync"
	"time"
)

// MemoryCache is a thread-safe in-process cache.
type MemoryCache struct {
	mu         sync.Mutex
	data       map[string]memoryEntry
	defaultTTL time.Duration
	maxSize    int // 0 = unlimited
	now        func() time.Time
	counters
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// NewMemoryCache creates a memory cache. maxSize 0 means unlimited.
func NewMemoryCache(defaultTTL time.Duration, maxSize int) *MemoryCache {
	return &MemoryCache{
		data:       make(map[string]memoryEntry),
		defaultTTL: defaultTTL,
		maxSize:    maxSize,
		now:        time.Now,
	}
}

// Get implements Cache.
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.data[key]
	if !ok || c.now().After(entry.expiresAt) {
		if ok {
			delete(c.data, key)
		}
		c.misses.Add(1)
		return nil, ErrCacheMiss
	}
	c.hits.Add(1)
	// Return a copy to prevent mutation
	return append([]byte(nil), entry.value...), nil
}

// Set implements Cache. At capacity, expired entries go first, then the
// entry closest to expiry.
func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.data[key]; !exists && c.maxSize > 0 && len(c.data) >= c.maxSize {
		c.evictLocked()
	}
	c.data[key] = memoryEntry{
		value:     append([]byte(nil), value...),
		expiresAt: c.now().Add(ttl),
	}
	c.sets.Add(1)
	return nil
}

func (c *MemoryCache) evictLocked() {
	now := c.now()
	var (
		oldestKey string
		oldest    time.Time
	)
	for k, e := range c.data {
		if now.After(e.expiresAt) {
			delete(c.data, k)
			continue
		}
		if oldestKey == "" || e.expiresAt.Before(oldest) {
			oldestKey, oldest = k, e.expiresAt
		}
	}
	if len(c.data) >= c.maxSize && oldestKey != "" {
		delete(c.data, oldestKey)
	}
}

// Delete implements Cache.
func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

// DeleteByPrefix implements Cache.
func (c *MemoryCache) DeleteByPrefix(_ context.Context, prefix string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.data {
		if strings.HasPrefix(k, prefix) {
			delete(c.data, k)
		}
	}
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.data)
}

var _ Cache = (*MemoryCache)(nil)
