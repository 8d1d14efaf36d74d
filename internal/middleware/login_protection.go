// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/makerskills/makerskills-web/internal/i18n"
	"github.com/makerskills/makerskills-web/internal/util"
)

// maxLockout caps the doubling lockout.
const maxLockout = 24 * time.Hour

// LoginProtection throttles sign-in attempts per client IP and locks an
// e-mail address after repeated rejections by the backend.
type LoginProtection struct {
	ips *limiterCache[string]

	mu       sync.Mutex
	accounts map[string]*lockout

	cfg LoginProtectionConfig
	now func() time.Time
}

// lockout is the failure history of one e-mail address.
type lockout struct {
	failures    int
	windowStart time.Time
	until       time.Time
	// times counts previous lockouts; each one doubles the next.
	times int
}

// LoginStatus is the state of an account after a check or a failure.
type LoginStatus struct {
	Locked bool
	// RetryIn is the time left before a locked account may try again.
	RetryIn time.Duration
	// Remaining is the number of failures left before the account locks.
	Remaining int
}

// LoginProtectionConfig holds the thresholds. Zero values take the defaults.
type LoginProtectionConfig struct {
	// IPRateLimit is the sustained number of sign-in POSTs per second and per IP.
	IPRateLimit float64
	IPBurst     int
	// MaxFailedAttempts rejected sign-ins lock the account.
	MaxFailedAttempts int
	// LockoutDuration is the first lockout; later ones double.
	LockoutDuration time.Duration
	// AttemptWindow bounds how long failures are counted together.
	AttemptWindow time.Duration
}

// DefaultLoginProtectionConfig returns the production thresholds.
func DefaultLoginProtectionConfig() LoginProtectionConfig {
	return LoginProtectionConfig{
		IPRateLimit:       0.5,
		IPBurst:           5,
		MaxFailedAttempts: 5,
		LockoutDuration:   15 * time.Minute,
		AttemptWindow:     15 * time.Minute,
	}
}

func (c LoginProtectionConfig) withDefaults() LoginProtectionConfig {
	d := DefaultLoginProtectionConfig()
	if c.IPRateLimit <= 0 {
		c.IPRateLimit = d.IPRateLimit
	}
	if c.IPBurst <= 0 {
		c.IPBurst = d.IPBurst
	}
	if c.MaxFailedAttempts <= 0 {
		c.MaxFailedAttempts = d.MaxFailedAttempts
	}
	if c.LockoutDuration <= 0 {
		c.LockoutDuration = d.LockoutDuration
	}
	if c.AttemptWindow <= 0 {
		c.AttemptWindow = d.AttemptWindow
	}
	return c
}

// NewLoginProtection creates the sign-in guard.
func NewLoginProtection(cfg LoginProtectionConfig) *LoginProtection {
	cfg = cfg.withDefaults()
	return &LoginProtection{
		ips:      newLimiterCache[string](cfg.IPRateLimit, cfg.IPBurst),
		accounts: make(map[string]*lockout),
		cfg:      cfg,
		now:      time.Now,
	}
}

// accountKey normalizes the e-mail used as the lockout key.
func accountKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// AllowIP reports whether ip may post the sign-in form now.
func (lp *LoginProtection) AllowIP(ip string) bool {
	return lp.ips.allow(ip)
}

// Status reports whether email is locked and how many failures it has left.
func (lp *LoginProtection) Status(email string) LoginStatus {
	lp.mu.Lock()
	defer lp.mu.Unlock()
	return lp.statusLocked(lp.accounts[accountKey(email)], lp.now())
}

func (lp *LoginProtection) statusLocked(a *lockout, now time.Time) LoginStatus {
	st := LoginStatus{Remaining: lp.cfg.MaxFailedAttempts}
	if a == nil {
		return st
	}
	if now.Before(a.until) {
		st.Locked = true
		st.RetryIn = a.until.Sub(now)
		st.Remaining = 0
		return st
	}
	if now.Sub(a.windowStart) <= lp.cfg.AttemptWindow {
		st.Remaining = max(lp.cfg.MaxFailedAttempts-a.failures, 0)
	}
	return st
}

// Fail counts a rejected sign-in for email and locks the account once the
// threshold is reached within the window.
func (lp *LoginProtection) Fail(email string) LoginStatus {
	key := accountKey(email)
	now := lp.now()

	lp.mu.Lock()
	defer lp.mu.Unlock()

	a, ok := lp.accounts[key]
	if !ok {
		a = &lockout{windowStart: now}
		lp.accounts[key] = a
	}
	if now.Sub(a.windowStart) > lp.cfg.AttemptWindow {
		a.failures = 0
		a.windowStart = now
	}
	a.failures++
	slog.Debug("failed sign-in counted", "category", "auth", "email", key, "failures", a.failures)

	if a.failures >= lp.cfg.MaxFailedAttempts {
		d := lockoutFor(lp.cfg.LockoutDuration, a.times)
		a.until = now.Add(d)
		a.times++
		a.failures = 0
		slog.Warn("account locked after failed sign-ins",
			"category", "auth", "email", key, "lockouts", a.times, "duration", d)
	}
	return lp.statusLocked(a, now)
}

// lockoutFor doubles base for every previous lockout, up to maxLockout.
func lockoutFor(base time.Duration, previous int) time.Duration {
	d := base
	for range previous {
		d *= 2
		if d >= maxLockout {
			return maxLockout
		}
	}
	return d
}

// Succeed forgets the failure history of email.
func (lp *LoginProtection) Succeed(email string) {
	lp.mu.Lock()
	delete(lp.accounts, accountKey(email))
	lp.mu.Unlock()
}

// Prune forgets accounts whose lockout and window are both over and returns
// how many were dropped. Idle IP buckets are dropped too. The scheduler runs
// it periodically.
func (lp *LoginProtection) Prune() int {
	lp.ips.prune()

	now := lp.now()
	removed := 0
	lp.mu.Lock()
	for key, a := range lp.accounts {
		if now.After(a.until) && now.Sub(a.windowStart) > lp.cfg.AttemptWindow {
			delete(lp.accounts, key)
			removed++
		}
	}
	lp.mu.Unlock()
	return removed
}

// Middleware answers 429 to sign-in POSTs from an IP over its rate.
func (lp *LoginProtection) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodPost {
				if ip := util.ClientIP(r); !lp.AllowIP(ip) {
					slog.Warn("sign-in rate limit exceeded", "category", "auth", "ip", ip)
					http.Error(w, i18n.T(GetLang(r), "msg.rate_limited"), http.StatusTooManyRequests)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
