// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import (
	"fmt"
	"net"
	"net/http"
	"net/mail"
	"net/url"
	"strings"
)

// MaxURLLength is the maximum allowed length for a stored link.
const MaxURLLength = 2048

// ValidateWebURL checks that rawURL is an absolute http(s) URL with a host.
func ValidateWebURL(rawURL string) error {
	if len(rawURL) > MaxURLLength {
		return fmt.Errorf("URL exceeds maximum length of %d characters", MaxURLLength)
	}

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL format: %w", err)
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("URL must use http or https scheme")
	}

	if parsedURL.Hostname() == "" {
		return fmt.Errorf("URL must have a hostname")
	}

	return nil
}

// IsValidEmail reports whether s is a bare e-mail address.
func IsValidEmail(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	addr, err := mail.ParseAddress(s)
	if err != nil {
		return false
	}
	return addr.Address == s && strings.Contains(addr.Address[strings.LastIndex(addr.Address, "@"):], ".")
}

// ClientIP extracts the client address from the request, preferring the
// headers set by a reverse proxy. The port is stripped.
func ClientIP(r *http.Request) string {
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}

	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		// X-Forwarded-For can contain multiple IPs; the first is the client
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}

	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
