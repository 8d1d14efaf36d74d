// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/makerskills/makerskills-web/internal/cache"
	"github.com/makerskills/makerskills-web/internal/middleware"
	"github.com/makerskills/makerskills-web/internal/scheduler"
	"github.com/makerskills/makerskills-web/internal/version"
	"github.com/makerskills/makerskills-web/internal/workspace"
)

// Health check states.
const (
	healthHealthy   = "healthy"
	healthDegraded  = "degraded"
	healthUnhealthy = "unhealthy"
	healthUnknown   = "unknown"
)

// HealthHandler serves the liveness, readiness and status endpoints.
type HealthHandler struct {
	db         *sql.DB
	probe      *scheduler.Probe
	workspaces *workspace.Manager
	cache      cache.Cache
	startTime  time.Time
}

// NewHealthHandler creates a new health handler. probe, workspaces and
// the public cache may be nil.
func NewHealthHandler(db *sql.DB, probe *scheduler.Probe, workspaces *workspace.Manager, publicCache cache.Cache) *HealthHandler {
	return &HealthHandler{
		db:         db,
		probe:      probe,
		workspaces: workspaces,
		cache:      publicCache,
		startTime:  time.Now(),
	}
}

// HealthStatusPublic is the minimal health response for anonymous callers.
type HealthStatusPublic struct {
	Status string `json:"status"`
}

// HealthStatus represents the overall health status (administrators only).
type HealthStatus struct {
	Status     string           `json:"status"`
	Timestamp  time.Time        `json:"timestamp"`
	Uptime     string           `json:"uptime"`
	Version    version.Info     `json:"version"`
	Workspaces int              `json:"workspaces"`
	Checks     map[string]Check `json:"checks"`
	Cache      *CacheInfo       `json:"cache,omitempty"`
	System     *SystemInfo      `json:"system,omitempty"`
}

// CacheInfo reports the traffic of the public page cache.
type CacheInfo struct {
	Hits    int64   `json:"hits"`
	Misses  int64   `json:"misses"`
	HitRate float64 `json:"hit_rate"`
}

// Check represents a single health check result.
type Check struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Latency string `json:"latency,omitempty"`
}

// SystemInfo contains system-level information.
type SystemInfo struct {
	GoVersion    string `json:"go_version"`
	NumGoroutine int    `json:"num_goroutines"`
	NumCPU       int    `json:"num_cpus"`
	MemAlloc     string `json:"mem_alloc"`
	MemSys       string `json:"mem_sys"`
}

// Health handles GET /health. The session database decides the status code;
// a failing API probe only degrades the report, public pages keep rendering
// from cache without it. Administrators get the detailed report.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	checks := map[string]Check{
		"database": h.checkDatabase(r.Context()),
		"backend":  h.checkBackend(),
	}
	overall := overallStatus(checks)

	code := http.StatusOK
	if overall == healthUnhealthy {
		code = http.StatusServiceUnavailable
	}

	if acct := middleware.GetAccount(r); acct == nil || acct.Role != middleware.RoleAdmin {
		writeHealth(w, code, HealthStatusPublic{Status: overall})
		return
	}

	report := HealthStatus{
		Status:    overall,
		Timestamp: time.Now().UTC(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Version:   version.Get(),
		Checks:    checks,
	}
	if h.workspaces != nil {
		report.Workspaces = h.workspaces.Len()
	}
	if h.cache != nil {
		st := h.cache.Stats()
		report.Cache = &CacheInfo{Hits: st.Hits, Misses: st.Misses, HitRate: st.HitRate()}
	}
	if r.URL.Query().Get("verbose") == "true" {
		report.System = systemInfo()
	}
	writeHealth(w, code, report)
}

// overallStatus folds the checks: a failing database is fatal, anything
// else failing degrades.
func overallStatus(checks map[string]Check) string {
	overall := healthHealthy
	for name, c := range checks {
		if c.Status != healthUnhealthy {
			continue
		}
		if name == "database" {
			return healthUnhealthy
		}
		overall = healthDegraded
	}
	return overall
}

// Liveness handles GET /health/live.
func (h *HealthHandler) Liveness(w http.ResponseWriter, _ *http.Request) {
	writeHealth(w, http.StatusOK, HealthStatusPublic{Status: "alive"})
}

// Readiness handles GET /health/ready: ready once the session database answers.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	if h.checkDatabase(r.Context()).Status != healthHealthy {
		writeHealth(w, http.StatusServiceUnavailable, HealthStatusPublic{Status: "not_ready"})
		return
	}
	writeHealth(w, http.StatusOK, HealthStatusPublic{Status: "ready"})
}

func writeHealth(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *HealthHandler) checkDatabase(ctx context.Context) Check {
	start := time.Now()
	err := h.db.PingContext(ctx)
	c := Check{Status: healthHealthy, Message: "Connected", Latency: time.Since(start).String()}
	if err != nil {
		c.Status, c.Message = healthUnhealthy, err.Error()
	}
	return c
}

// checkBackend reports the last result of the scheduled API probe.
func (h *HealthHandler) checkBackend() Check {
	if h.probe == nil {
		return Check{Status: healthUnknown, Message: "probe disabled"}
	}
	st := h.probe.Status()
	switch {
	case !st.Checked:
		return Check{Status: healthUnknown, Message: "not checked yet"}
	case !st.OK:
		return Check{Status: healthUnhealthy, Message: st.Error, Latency: st.Latency.String()}
	}
	return Check{
		Status:  healthHealthy,
		Message: "checked " + st.CheckedAt.UTC().Format(time.RFC3339),
		Latency: st.Latency.String(),
	}
}

func systemInfo() *SystemInfo {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return &SystemInfo{
		GoVersion:    runtime.Version(),
		NumGoroutine: runtime.NumGoroutine(),
		NumCPU:       runtime.NumCPU(),
		MemAlloc:     humanBytes(m.Alloc),
		MemSys:       humanBytes(m.Sys),
	}
}

// humanBytes renders n in B, KB, MB or GB with two decimals above bytes.
func humanBytes(n uint64) string {
	if n < 1024 {
		return fmt.Sprintf("%d B", n)
	}
	v := float64(n) / 1024
	for _, unit := range []string{"KB", "MB"} {
		if v < 1024 {
			return fmt.Sprintf("%.2f %s", v, unit)
		}
		v /= 1024
	}
	return fmt.Sprintf("%.2f GB", v)
}
