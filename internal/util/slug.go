// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package util provides small helpers shared by handlers: slugs for catalog
// URLs, URL and e-mail checks, client address extraction and upload names.
package util

import (
	"strconv"
	"strings"

	"github.com/mozillazg/go-unidecode"
)

// MaxSlugLength caps generated slugs.
const MaxSlugLength = 80

// Slugify turns a catalog title into the lowercase ASCII slug used in public
// URLs: "Initiation à l'impression 3D" gives "initiation-a-l-impression-3d".
// Accented and non-Latin letters are transliterated; every run of other
// characters becomes a single hyphen.
func Slugify(s string) string {
	var b strings.Builder
	pendingHyphen := false
	for _, r := range strings.ToLower(unidecode.Unidecode(s)) {
		if isSlugRune(r) && r != '-' {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}

	slug := b.String()
	if len(slug) > MaxSlugLength {
		slug = strings.TrimRight(slug[:MaxSlugLength], "-")
	}
	return slug
}

func isSlugRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-'
}

// UniqueSlug returns base, or base-2, base-3... for the first value not taken.
func UniqueSlug(base string, taken func(string) bool) string {
	if base == "" || !taken(base) {
		return base
	}
	for i := 2; ; i++ {
		candidate := base + "-" + strconv.Itoa(i)
		if !taken(candidate) {
			return candidate
		}
	}
}

// IsValidSlug checks if a string is a valid slug format.
func IsValidSlug(s string) bool {
	if s == "" {
		return false
	}

	for _, r := range s {
		if !isSlugRune(r) {
			return false
		}
	}

	if s[0] == '-' || s[len(s)-1] == '-' {
		return false
	}

	return !strings.Contains(s, "--")
}
