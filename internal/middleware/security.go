// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"net/url"
	"strings"
)

// SecurityConfig describes the headers added to every response.
type SecurityConfig struct {
	// Dev relaxes the CSP for local tooling and drops HSTS.
	Dev bool
	// AssetOrigin is the backend origin serving uploaded images.
	// Empty allows images from any https origin.
	AssetOrigin string
	// NoStorePrefixes are paths whose pages hold account data and must not be cached.
	NoStorePrefixes []string
}

// directive is one Content-Security-Policy entry.
type directive struct {
	name, value string
}

// deniedFeatures are switched off through Permissions-Policy.
var deniedFeatures = []string{
	"accelerometer", "browsing-topics", "camera", "geolocation", "gyroscope",
	"interest-cohort", "magnetometer", "microphone", "payment", "usb",
}

// AssetOrigin returns the scheme and host of the backend base URL, or "" if it
// cannot be parsed.
func AssetOrigin(baseURL string) string {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}

func contentSecurityPolicy(cfg SecurityConfig) string {
	img := "'self' data: blob: https:"
	if cfg.AssetOrigin != "" {
		img = "'self' data: blob: " + cfg.AssetOrigin
	}
	script := "'self'"
	if cfg.Dev {
		script += " 'unsafe-inline'"
		img += " http:"
	}

	policy := []directive{
		{"default-src", "'self'"},
		{"script-src", script},
		{"style-src", "'self' 'unsafe-inline'"},
		{"img-src", img},
		{"font-src", "'self' data:"},
		{"connect-src", "'self'"},
		{"frame-src", "'none'"},
		{"object-src", "'none'"},
		{"base-uri", "'self'"},
		{"form-action", "'self'"},
		{"frame-ancestors", "'none'"},
	}
	parts := make([]string, len(policy))
	for i, d := range policy {
		parts[i] = d.name + " " + d.value
	}
	return strings.Join(parts, "; ")
}

func permissionsPolicy() string {
	parts := make([]string, len(deniedFeatures))
	for i, f := range deniedFeatures {
		parts[i] = f + "=()"
	}
	return strings.Join(parts, ", ")
}

// securityHeaders computes the fixed header set once.
func securityHeaders(cfg SecurityConfig) http.Header {
	h := http.Header{}
	h.Set("Content-Security-Policy", contentSecurityPolicy(cfg))
	h.Set("X-Frame-Options", "DENY")
	h.Set("X-Content-Type-Options", "nosniff")
	h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
	h.Set("Permissions-Policy", permissionsPolicy())
	if !cfg.Dev {
		h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
	}
	return h
}

// SecurityHeaders adds the CSP, HSTS and related headers, and marks
// back-office pages as not cacheable.
func SecurityHeaders(cfg SecurityConfig) func(http.Handler) http.Handler {
	fixed := securityHeaders(cfg)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			for k, v := range fixed {
				h[k] = v
			}
			for _, p := range cfg.NoStorePrefixes {
				if r.URL.Path == p || strings.HasPrefix(r.URL.Path, p+"/") {
					h.Set("Cache-Control", "no-store")
					break
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
