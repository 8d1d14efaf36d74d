// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package i18n

import (
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func initCatalog(t *testing.T) {
	t.Helper()
	require.NoError(t, Init(nil))
}

func TestInit(t *testing.T) {
	initCatalog(t)

	fr, en := TranslationCount("fr"), TranslationCount("en")
	assert.Positive(t, fr)
	assert.Equal(t, fr, en)
	assert.Zero(t, TranslationCount("de"))
}

func TestT(t *testing.T) {
	initCatalog(t)

	tests := []struct {
		lang string
		key  string
		args []any
		want string
	}{
		{"en", "btn.save", nil, "Save"},
		{"fr", "btn.save", nil, "Enregistrer"},
		{"en", "nav.dashboard", nil, "Dashboard"},
		{"fr", "nav.dashboard", nil, "Tableau de bord"},
		{"en", "msg.deleted", []any{"Bootcamp"}, "Bootcamp deleted successfully"},
		{"en", "msg.attempts_remaining", []any{2}, "Invalid credentials, 2 attempts remaining"},
		{"fr", "paging.showing", []any{1, 10, 42}, "Affichage de 1 à 10 sur 42"},
		{"en", "paging.showing", []any{11, 20, 42}, "Showing 11 to 20 of 42"},
		{"de", "btn.save", nil, "Enregistrer"},
		{"", "nav.dashboard", nil, "Tableau de bord"},
		{"en", "nonexistent.key", nil, "nonexistent.key"},
		{"fr", "nonexistent.key", []any{1}, "nonexistent.key"},
	}

	for _, tt := range tests {
		t.Run(tt.lang+"/"+tt.key, func(t *testing.T) {
			if got := T(tt.lang, tt.key, tt.args...); got != tt.want {
				t.Errorf("T(%q, %q, %v) = %q; want %q", tt.lang, tt.key, tt.args, got, tt.want)
			}
		})
	}
}

func TestT_GroupsLargeNumbers(t *testing.T) {
	initCatalog(t)

	en := T("en", "paging.showing", 1001, 1010, 12500)
	assert.Equal(t, "Showing 1,001 to 1,010 of 12,500", en)

	// French groups digits with a space, never with a comma.
	fr := T("fr", "paging.showing", 1001, 1010, 12500)
	assert.NotContains(t, fr, "12,500")
	assert.NotContains(t, fr, "12500")
	assert.True(t, strings.HasPrefix(fr, "Affichage de 1"), fr)
}

func TestT_BeforeInit(t *testing.T) {
	saved := current.Load()
	current.Store(nil)
	t.Cleanup(func() { current.Store(saved) })

	assert.Equal(t, "btn.save", T("en", "btn.save"))
	assert.Equal(t, DefaultLanguage, MatchLanguage("en"))
	assert.Zero(t, TranslationCount("en"))
}

func TestTranslator(t *testing.T) {
	initCatalog(t)

	tr := Translator("en")
	assert.Equal(t, "Workshop created successfully", tr("msg.created", "Workshop"))
}

func TestMatchLanguage(t *testing.T) {
	initCatalog(t)

	tests := []struct {
		accept string
		want   string
	}{
		{"en", "en"},
		{"fr", "fr"},
		{"en-GB", "en"},
		{"fr-CI", "fr"},
		{"de", "fr"},
		{"", "fr"},
		{"not a language!", "fr"},
		{"en-US, fr;q=0.9, de;q=0.8", "en"},
		{"de-DE, en;q=0.5", "en"},
		{"fr-FR, en;q=0.9", "fr"},
	}

	for _, tt := range tests {
		if got := MatchLanguage(tt.accept); got != tt.want {
			t.Errorf("MatchLanguage(%q) = %q; want %q", tt.accept, got, tt.want)
		}
	}
}

func TestIsSupported(t *testing.T) {
	for lang, want := range map[string]bool{"en": true, "FR": true, "de": false, "": false} {
		if got := IsSupported(lang); got != want {
			t.Errorf("IsSupported(%q) = %v; want %v", lang, got, want)
		}
	}
}

func TestGetSupportedLanguages(t *testing.T) {
	langs := GetSupportedLanguages()
	assert.Equal(t, []string{"fr", "en"}, langs)

	// Callers get a copy.
	langs[0] = "xx"
	assert.Equal(t, "fr", SupportedLanguages[0])
}

func TestLocaleFiles(t *testing.T) {
	ids := make(map[string][]string, len(SupportedLanguages))
	for _, lang := range SupportedLanguages {
		file, err := readLocale(lang)
		require.NoError(t, err)
		assert.Equal(t, lang, file.Language)

		seen := make(map[string]bool, len(file.Messages))
		for _, m := range file.Messages {
			assert.False(t, seen[m.ID], "%s: duplicate id %q", lang, m.ID)
			assert.NotEmpty(t, m.Translation, "%s: empty translation for %q", lang, m.ID)
			seen[m.ID] = true
			ids[lang] = append(ids[lang], m.ID)
		}
		slices.Sort(ids[lang])
	}

	assert.Equal(t, ids["fr"], ids["en"], "both locales must define the same keys")
}

func TestLocaleFiles_SameVerbs(t *testing.T) {
	byID := func(lang string) map[string]string {
		file, err := readLocale(lang)
		require.NoError(t, err)
		m := make(map[string]string, len(file.Messages))
		for _, msg := range file.Messages {
			m[msg.ID] = msg.Translation
		}
		return m
	}
	fr, en := byID("fr"), byID("en")

	for id, frText := range fr {
		if got, want := verbs(en[id]), verbs(frText); !slices.Equal(got, want) {
			t.Errorf("%s: en verbs %v; fr verbs %v", id, got, want)
		}
	}
}

// verbs lists the fmt verbs of s in order.
func verbs(s string) []string {
	var out []string
	for i := 0; i < len(s)-1; i++ {
		if s[i] == '%' {
			out = append(out, s[i:i+2])
			i++
		}
	}
	return out
}
