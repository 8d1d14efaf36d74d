// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"affiche.jpg", "affiche.jpg", false},
		{"robot.jpg", "robot.jpg", false},
		{"../../etc/passwd", "passwd", false},
		{`C:\Users\awa\photo atelier.png`, "photo atelier.png", false},
		{"..", "", true},
		{"", "", true},
		{"/", "", true},
	}

	for _, tt := range tests {
		got, err := SanitizeFilename(tt.in)
		if tt.wantErr {
			assert.Error(t, err, "SanitizeFilename(%q)", tt.in)
			continue
		}
		require.NoError(t, err, "SanitizeFilename(%q)", tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestUploadName(t *testing.T) {
	tests := []struct {
		original string
		prefix   string
	}{
		{"Photo Atelier Été.JPG", "photo-atelier-ete-"},
		{"Bras Robotique.JPEG", "bras-robotique-"},
		{"###.png", "upload-"},
		{"???.png", "upload-"},
		{strings.Repeat("impression ", 10) + ".png", "impression-impression-impression-impres"},
	}

	suffix := regexp.MustCompile(`-[0-9a-f]{8}\.webp$`)
	for _, tt := range tests {
		got := UploadName(tt.original, ".webp")
		assert.True(t, strings.HasPrefix(got, tt.prefix), "UploadName(%q) = %q", tt.original, got)
		assert.Regexp(t, suffix, got)
	}

	assert.NotEqual(t, UploadName("a.png", ".webp"), UploadName("a.png", ".webp"))
}
