// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package content

import (
	"errors"
	"strings"
	"testing"
	"testing/fstest"
)

func TestEmbeddedPages(t *testing.T) {
	lib := New()
	for _, slug := range []string{"about", "bootcamp", "home"} {
		for _, lang := range []string{"fr", "en"} {
			html, err := lib.Page(slug, lang)
			if err != nil {
				t.Errorf("Page(%q, %q) error = %v", slug, lang, err)
				continue
			}
			if !strings.Contains(string(html), "<h") {
				t.Errorf("Page(%q, %q) has no heading", slug, lang)
			}
		}
	}
}

func TestFallbackAndMissing(t *testing.T) {
	lib := NewFromFS(fstest.MapFS{
		"pages/faq.fr.md": {Data: []byte("## Questions")},
	})

	html, err := lib.Page("faq", "en")
	if err != nil {
		t.Fatalf("Page(faq, en) error = %v", err)
	}
	if !strings.Contains(string(html), "Questions") {
		t.Errorf("fallback page = %q", html)
	}

	_, err = lib.Page("missing", "fr")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Page(missing) error = %v, want ErrNotFound", err)
	}
}
