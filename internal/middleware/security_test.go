// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func serveSecured(cfg SecurityConfig, path string) http.Header {
	h := SecurityHeaders(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec.Header()
}

func TestSecurityHeaders(t *testing.T) {
	tests := []struct {
		name     string
		dev      bool
		wantHSTS string
	}{
		{"production", false, "max-age=31536000; includeSubDomains"},
		{"development", true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := serveSecured(SecurityConfig{Dev: tt.dev}, "/")

			assert.Equal(t, tt.wantHSTS, h.Get("Strict-Transport-Security"))
			assert.Equal(t, "DENY", h.Get("X-Frame-Options"))
			assert.Equal(t, "nosniff", h.Get("X-Content-Type-Options"))
			assert.Equal(t, "strict-origin-when-cross-origin", h.Get("Referrer-Policy"))
			assert.Contains(t, h.Get("Permissions-Policy"), "camera=()")
			assert.Contains(t, h.Get("Content-Security-Policy"), "frame-ancestors 'none'")
			assert.Empty(t, h.Get("Cache-Control"))
		})
	}
}

func TestSecurityHeaders_NoStore(t *testing.T) {
	cfg := SecurityConfig{NoStorePrefixes: []string{"/admin", LoginPath}}

	tests := []struct {
		path string
		want string
	}{
		{"/admin", "no-store"},
		{"/admin/formations/f-1/edit", "no-store"},
		{LoginPath, "no-store"},
		{"/administration", ""},
		{"/formations", ""},
	}
	for _, tt := range tests {
		if got := serveSecured(cfg, tt.path).Get("Cache-Control"); got != tt.want {
			t.Errorf("Cache-Control(%s) = %q; want %q", tt.path, got, tt.want)
		}
	}
}

func TestContentSecurityPolicy(t *testing.T) {
	tests := []struct {
		name    string
		cfg     SecurityConfig
		want    []string
		notWant []string
	}{
		{
			name:    "production without backend origin",
			cfg:     SecurityConfig{},
			want:    []string{"default-src 'self'", "script-src 'self';", "img-src 'self' data: blob: https:;"},
			notWant: []string{"script-src 'self' 'unsafe-inline'", "http:"},
		},
		{
			name:    "backend origin restricts images",
			cfg:     SecurityConfig{AssetOrigin: "https://api.makerskills.ci"},
			want:    []string{"img-src 'self' data: blob: https://api.makerskills.ci;"},
			notWant: []string{"blob: https:;"},
		},
		{
			name: "development allows inline scripts and http images",
			cfg:  SecurityConfig{Dev: true, AssetOrigin: "http://localhost:4000"},
			want: []string{"script-src 'self' 'unsafe-inline'", "img-src 'self' data: blob: http://localhost:4000 http:"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			csp := contentSecurityPolicy(tt.cfg)
			for _, s := range tt.want {
				assert.Contains(t, csp, s)
			}
			for _, s := range tt.notWant {
				assert.NotContains(t, csp, s)
			}
			assert.True(t, strings.HasPrefix(csp, "default-src"), csp)
		})
	}
}

func TestPermissionsPolicy(t *testing.T) {
	got := permissionsPolicy()

	assert.True(t, strings.HasPrefix(got, "accelerometer=(), browsing-topics=()"), got)
	assert.Equal(t, len(deniedFeatures), strings.Count(got, "=()"))
}

func TestAssetOrigin(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://api.makerskills.ci/api/v1", "https://api.makerskills.ci"},
		{"http://localhost:4000/api", "http://localhost:4000"},
		{"api.makerskills.ci", ""},
		{"", ""},
		{"://bad", ""},
	}

	for _, tt := range tests {
		if got := AssetOrigin(tt.in); got != tt.want {
			t.Errorf("AssetOrigin(%q) = %q; want %q", tt.in, got, tt.want)
		}
	}
}
