// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/makerskills/makerskills-web/internal/cache"
	"github.com/makerskills/makerskills-web/internal/middleware"
	"github.com/makerskills/makerskills-web/internal/scheduler"
	"github.com/makerskills/makerskills-web/internal/session"
	"github.com/makerskills/makerskills-web/internal/testutil"
	"github.com/makerskills/makerskills-web/internal/workspace"
)

func newTestHealthHandler(t *testing.T, probe *scheduler.Probe) *HealthHandler {
	t.Helper()
	mgr := workspace.NewManager(time.Hour, testutil.TestLoggerSilent())
	mgr.Create()
	return NewHealthHandler(testutil.TestDB(t), probe, mgr, nil)
}

// withRole returns req carrying a signed-in account of role.
func withRole(req *http.Request, role string) *http.Request {
	acct := session.Account{ID: "u-1", Name: "Ada", Email: "ada@example.com", Role: role}
	return req.WithContext(context.WithValue(req.Context(), middleware.ContextKeyAccount, acct))
}

// checkHealth serves GET target as role ("" for anonymous) and decodes the body into v.
func checkHealth(t *testing.T, h *HealthHandler, target, role string, v any) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if role != "" {
		req = withRole(req, role)
	}
	rec := httptest.NewRecorder()
	h.Health(rec, req)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
	return rec
}

func TestHealth_AnonymousGetsStatusOnly(t *testing.T) {
	for _, role := range []string{"", middleware.RoleEditor, middleware.RoleInstructor} {
		t.Run("role="+role, func(t *testing.T) {
			var resp map[string]any
			rec := checkHealth(t, newTestHealthHandler(t, nil), "/health?verbose=true", role, &resp)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
			assert.Equal(t, map[string]any{"status": healthHealthy}, resp)
		})
	}
}

func TestHealth_AdminReport(t *testing.T) {
	tests := []struct {
		target     string
		wantSystem bool
	}{
		{"/health", false},
		{"/health?verbose=true", true},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			var resp HealthStatus
			rec := checkHealth(t, newTestHealthHandler(t, nil), tt.target, middleware.RoleAdmin, &resp)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, healthHealthy, resp.Status)
			assert.False(t, resp.Timestamp.IsZero())
			assert.NotEmpty(t, resp.Uptime)
			assert.NotEmpty(t, resp.Version.Version)
			assert.Equal(t, 1, resp.Workspaces)
			assert.Equal(t, healthHealthy, resp.Checks["database"].Status)
			assert.Equal(t, healthUnknown, resp.Checks["backend"].Status, "no probe configured")
			assert.Nil(t, resp.Cache)
			assert.Equal(t, tt.wantSystem, resp.System != nil)
		})
	}
}

func TestHealth_Cache(t *testing.T) {
	ctx := context.Background()
	mem := cache.NewMemoryCache(time.Minute, 0)
	_ = mem.Set(ctx, "public:formations", []byte("[]"), 0)
	_, _ = mem.Get(ctx, "public:formations")
	_, _ = mem.Get(ctx, "public:formations")
	_, _ = mem.Get(ctx, "public:shop")
	_, _ = mem.Get(ctx, "public:partners")

	var resp HealthStatus
	checkHealth(t, NewHealthHandler(testutil.TestDB(t), nil, nil, mem), "/health", middleware.RoleAdmin, &resp)

	require.NotNil(t, resp.Cache)
	assert.Equal(t, CacheInfo{Hits: 2, Misses: 2, HitRate: 50}, *resp.Cache)
}

func TestHealth_Backend(t *testing.T) {
	tests := []struct {
		name        string
		run         bool
		checkErr    error
		wantOverall string
		wantBackend string
	}{
		{name: "not checked yet", wantOverall: healthHealthy, wantBackend: healthUnknown},
		{name: "backend answers", run: true, wantOverall: healthHealthy, wantBackend: healthHealthy},
		{name: "backend down", run: true, checkErr: errors.New("connection refused"), wantOverall: healthDegraded, wantBackend: healthUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			probe := scheduler.NewProbe(func(context.Context) error { return tt.checkErr })
			if tt.run {
				_ = probe.Run(context.Background())
			}

			var resp HealthStatus
			rec := checkHealth(t, newTestHealthHandler(t, probe), "/health", middleware.RoleAdmin, &resp)

			assert.Equal(t, http.StatusOK, rec.Code, "a failing backend only degrades")
			assert.Equal(t, tt.wantOverall, resp.Status)
			assert.Equal(t, tt.wantBackend, resp.Checks["backend"].Status)
			if tt.checkErr != nil {
				assert.Equal(t, tt.checkErr.Error(), resp.Checks["backend"].Message)
			}
		})
	}
}

func TestHealth_DatabaseDown(t *testing.T) {
	db := testutil.TestDB(t)
	h := NewHealthHandler(db, nil, nil, nil)
	_ = db.Close()

	var resp HealthStatus
	rec := checkHealth(t, h, "/health", middleware.RoleAdmin, &resp)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, healthUnhealthy, resp.Status)
	assert.NotEmpty(t, resp.Checks["database"].Message)
}

func TestOverallStatus(t *testing.T) {
	tests := []struct {
		name     string
		database string
		backend  string
		want     string
	}{
		{"all healthy", healthHealthy, healthHealthy, healthHealthy},
		{"backend unknown", healthHealthy, healthUnknown, healthHealthy},
		{"backend down", healthHealthy, healthUnhealthy, healthDegraded},
		{"database down", healthUnhealthy, healthUnhealthy, healthUnhealthy},
	}
	for _, tt := range tests {
		got := overallStatus(map[string]Check{"database": {Status: tt.database}, "backend": {Status: tt.backend}})
		assert.Equal(t, tt.want, got, tt.name)
	}
}

func TestProbeEndpoints(t *testing.T) {
	tests := []struct {
		name     string
		closeDB  bool
		serve    func(h *HealthHandler) http.HandlerFunc
		wantCode int
		want     string
	}{
		{"live", false, func(h *HealthHandler) http.HandlerFunc { return h.Liveness }, http.StatusOK, "alive"},
		{"ready", false, func(h *HealthHandler) http.HandlerFunc { return h.Readiness }, http.StatusOK, "ready"},
		{"not ready", true, func(h *HealthHandler) http.HandlerFunc { return h.Readiness }, http.StatusServiceUnavailable, "not_ready"},
		{"live without database", true, func(h *HealthHandler) http.HandlerFunc { return h.Liveness }, http.StatusOK, "alive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := testutil.TestDB(t)
			h := NewHealthHandler(db, nil, nil, nil)
			if tt.closeDB {
				_ = db.Close()
			}
			rec := httptest.NewRecorder()
			tt.serve(h)(rec, httptest.NewRequest(http.MethodGet, "/health/x", nil))

			assert.Equal(t, tt.wantCode, rec.Code)
			var resp HealthStatusPublic
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.want, resp.Status)
		})
	}
}

func TestHumanBytes(t *testing.T) {
	tests := []struct {
		n    uint64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1 << 10, "1.00 KB"},
		{3 << 9, "1.50 KB"},
		{25 << 20, "25.00 MB"},
		{1 << 30, "1.00 GB"},
		{5 << 40, "5120.00 GB"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, humanBytes(tt.n), "humanBytes(%d)", tt.n)
	}
}
