// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Initiation à l'impression 3D", "initiation-a-l-impression-3d"},
		{"Robotique & IA pour les jeunes", "robotique-ia-pour-les-jeunes"},
		{"  Découpe laser  ", "decoupe-laser"},
		{"Électronique -- niveau 2", "electronique-niveau-2"},
		{"Arduino_Uno / ESP32", "arduino-uno-esp32"},
		{"Été 2026 : Bootcamp", "ete-2026-bootcamp"},
		{"Привет мир", "privet-mir"},
		{"!!!", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := Slugify(tt.in)
			assert.Equal(t, tt.want, got)
			if got != "" {
				assert.True(t, IsValidSlug(got), "Slugify output %q is not a valid slug", got)
			}
		})
	}
}

func TestSlugify_Length(t *testing.T) {
	title := strings.Repeat("fabrication numérique ", 10)

	got := Slugify(title)

	assert.LessOrEqual(t, len(got), MaxSlugLength)
	assert.False(t, strings.HasSuffix(got, "-"), "trailing hyphen in %q", got)
	assert.True(t, strings.HasPrefix(got, "fabrication-numerique-fabrication"))
}

func TestUniqueSlug(t *testing.T) {
	existing := map[string]bool{
		"arduino":   true,
		"arduino-2": true,
		"robotique": true,
	}
	taken := func(s string) bool { return existing[s] }

	tests := []struct {
		base string
		want string
	}{
		{"impression-3d", "impression-3d"},
		{"robotique", "robotique-2"},
		{"arduino", "arduino-3"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, UniqueSlug(tt.base, taken), "base %q", tt.base)
	}
}

func TestIsValidSlug(t *testing.T) {
	tests := []struct {
		slug string
		want bool
	}{
		{"decoupe-laser", true},
		{"bootcamp-2026", true},
		{"esp32", true},
		{"", false},
		{"Decoupe-Laser", false},
		{"découpe", false},
		{"-laser", false},
		{"laser-", false},
		{"laser--cnc", false},
		{"laser cnc", false},
		{"laser_cnc", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, IsValidSlug(tt.slug), "IsValidSlug(%q)", tt.slug)
	}
}
