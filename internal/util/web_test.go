// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import (
	"net/http/httptest"
	"strings"
	"testing"
)

func TestValidateWebURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"https", "https://fablab.example.org", false},
		{"http with path", "http://example.com/partners?x=1", false},
		{"no scheme", "example.com", true},
		{"javascript", "javascript:alert(1)", true},
		{"no host", "https://", true},
		{"too long", "https://example.com/" + strings.Repeat("a", MaxURLLength), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateWebURL(tt.url)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateWebURL(%q) error = %v, wantErr %v", tt.url, err, tt.wantErr)
			}
		})
	}
}

func TestIsValidEmail(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		{"awa@example.com", true},
		{"first.last+tag@sub.example.org", true},
		{"", false},
		{"not-an-email", false},
		{"Awa <awa@example.com>", false},
		{"awa@localhost", false},
	}
	for _, tt := range tests {
		if got := IsValidEmail(tt.email); got != tt.want {
			t.Errorf("IsValidEmail(%q) = %v, want %v", tt.email, got, tt.want)
		}
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name   string
		header map[string]string
		remote string
		want   string
	}{
		{"remote addr", nil, "10.1.2.3:5555", "10.1.2.3"},
		{"real ip", map[string]string{"X-Real-IP": "203.0.113.9"}, "10.0.0.1:1", "203.0.113.9"},
		{"forwarded chain", map[string]string{"X-Forwarded-For": "198.51.100.7, 10.0.0.2"}, "10.0.0.1:1", "198.51.100.7"},
		{"no port", nil, "192.0.2.1", "192.0.2.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/contact", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.header {
				r.Header.Set(k, v)
			}
			if got := ClientIP(r); got != tt.want {
				t.Errorf("ClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}
