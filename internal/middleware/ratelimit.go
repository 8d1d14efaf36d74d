// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/makerskills/makerskills-web/internal/util"
)

// limiterCache holds one token bucket per key.
type limiterCache[K comparable] struct {
	mu      sync.Mutex
	entries map[K]*limiterEntry
	rate    rate.Limit
	burst   int
	now     func() time.Time
}

type limiterEntry struct {
	lim  *rate.Limiter
	seen time.Time
}

func newLimiterCache[K comparable](rps float64, burst int) *limiterCache[K] {
	return &limiterCache[K]{
		entries: make(map[K]*limiterEntry),
		rate:    rate.Limit(rps),
		burst:   burst,
		now:     time.Now,
	}
}

// allow takes a token from the bucket of key.
func (lc *limiterCache[K]) allow(key K) bool {
	now := lc.now()
	lc.mu.Lock()
	e, ok := lc.entries[key]
	if !ok {
		e = &limiterEntry{lim: rate.NewLimiter(lc.rate, lc.burst)}
		lc.entries[key] = e
	}
	e.seen = now
	lc.mu.Unlock()
	return e.lim.AllowN(now, 1)
}

// refill is how long an untouched bucket takes to fill up again.
func (lc *limiterCache[K]) refill() time.Duration {
	if lc.rate <= 0 {
		return 0
	}
	return time.Duration(float64(lc.burst) / float64(lc.rate) * float64(time.Second))
}

// prune drops the buckets that are full again, which a fresh bucket would
// replace exactly, and returns how many it dropped.
func (lc *limiterCache[K]) prune() int {
	cutoff := lc.now().Add(-lc.refill())
	lc.mu.Lock()
	defer lc.mu.Unlock()
	n := 0
	for k, e := range lc.entries {
		if e.seen.Before(cutoff) {
			delete(lc.entries, k)
			n++
		}
	}
	return n
}

func (lc *limiterCache[K]) len() int {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	return len(lc.entries)
}

// Limiter decides whether one more request for key is allowed.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// MemoryLimiter allows limit requests per window and per key in this process.
type MemoryLimiter struct {
	cache *limiterCache[string]
}

// NewMemoryLimiter creates a limiter refilling limit tokens over window.
func NewMemoryLimiter(limit int, window time.Duration) *MemoryLimiter {
	if limit <= 0 {
		limit = 1
	}
	rps := float64(limit) / window.Seconds()
	return &MemoryLimiter{cache: newLimiterCache[string](rps, limit)}
}

// Allow implements Limiter.
func (m *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	return m.cache.allow(key), nil
}

// Prune forgets the keys whose budget is whole again and returns how many.
func (m *MemoryLimiter) Prune() int {
	return m.cache.prune()
}

// RedisLimiter is a fixed-window counter shared by every instance behind
// the same Redis server.
type RedisLimiter struct {
	client *redis.Client
	prefix string
	limit  int64
	window time.Duration
}

// NewRedisLimiter creates a Redis limiter on an existing client.
func NewRedisLimiter(client *redis.Client, prefix string, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{client: client, prefix: prefix, limit: int64(limit), window: window}
}

// ConnectRedis parses url, connects and pings the server.
func ConnectRedis(ctx context.Context, url string) (*redis.Client, error) {
	if url == "" {
		return nil, errors.New("redis URL is required")
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis URL: %w", err)
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, opts.DialTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}
	return client, nil
}

// Allow implements Limiter. The window starts with the first request for key.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	k := l.prefix + "ratelimit:" + key

	n, err := l.client.Incr(ctx, k).Result()
	if err != nil {
		return false, err
	}
	if n == 1 {
		if err := l.client.Expire(ctx, k, l.window).Err(); err != nil {
			return false, err
		}
	}
	return n <= l.limit, nil
}

// FallbackLimiter asks primary and falls back to secondary when primary fails.
type FallbackLimiter struct {
	primary   Limiter
	secondary Limiter
	logger    *slog.Logger
}

// NewFallbackLimiter chains two limiters.
func NewFallbackLimiter(primary, secondary Limiter, logger *slog.Logger) *FallbackLimiter {
	if logger == nil {
		logger = slog.Default()
	}
	return &FallbackLimiter{primary: primary, secondary: secondary, logger: logger}
}

// Allow implements Limiter.
func (f *FallbackLimiter) Allow(ctx context.Context, key string) (bool, error) {
	ok, err := f.primary.Allow(ctx, key)
	if err == nil {
		return ok, nil
	}
	f.logger.Warn("rate limit store unavailable, using local limiter", "category", "contact", "error", err)
	return f.secondary.Allow(ctx, key)
}

// RateLimit rejects POST requests over the limit with 429. The client IP is the key.
// onLimit renders the rejection; nil writes a plain 429.
func RateLimit(l Limiter, scope string, onLimit http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				next.ServeHTTP(w, r)
				return
			}

			ip := util.ClientIP(r)
			ok, err := l.Allow(r.Context(), scope+":"+ip)
			if err != nil {
				// Fail open
				slog.Error("rate limit check failed", "scope", scope, "error", err)
				next.ServeHTTP(w, r)
				return
			}
			if !ok {
				slog.Warn("rate limit exceeded", "category", "contact", "scope", scope, "ip", ip)
				if onLimit != nil {
					w.Header().Set("Retry-After", "3600")
					onLimit(w, r)
					return
				}
				http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
