// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alexedwards/scs/v2"

	"github.com/makerskills/makerskills-web/internal/i18n"
	"github.com/makerskills/makerskills-web/internal/session"
)

func TestMain(m *testing.M) {
	_ = i18n.Init(slog.Default())
	m.Run()
}

func TestPreferences(t *testing.T) {
	tests := []struct {
		name      string
		url       string
		accept    string
		saved     string
		wantLang  string
		wantSaved string
	}{
		{"default", "/", "", "", "fr", ""},
		{"accept language", "/", "en-US,en;q=0.9", "", "en", ""},
		{"unsupported accept", "/", "de-DE", "", "fr", ""},
		{"saved wins over header", "/", "en", "fr", "fr", "fr"},
		{"query switch is saved", "/?lang=en", "fr", "fr", "en", "en"},
		{"query is case insensitive", "/?lang=EN", "", "", "en", "en"},
		{"unsupported query ignored", "/?lang=ru", "", "en", "en", "en"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sm := scs.New()
			var gotLang, gotSaved string

			h := sm.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if tt.saved != "" {
					sm.Put(r.Context(), session.KeyLang, tt.saved)
				}
				Preferences(sm)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					gotLang = GetLang(r)
					gotSaved = sm.GetString(r.Context(), session.KeyLang)
				})).ServeHTTP(w, r)
			}))

			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			if tt.accept != "" {
				req.Header.Set("Accept-Language", tt.accept)
			}
			h.ServeHTTP(httptest.NewRecorder(), req)

			if gotLang != tt.wantLang {
				t.Errorf("GetLang() = %q, want %q", gotLang, tt.wantLang)
			}
			if gotSaved != tt.wantSaved {
				t.Errorf("saved lang = %q, want %q", gotSaved, tt.wantSaved)
			}
		})
	}
}

func TestPreferencesTheme(t *testing.T) {
	tests := []struct {
		saved string
		want  string
	}{
		{"", session.ThemeLight},
		{session.ThemeDark, session.ThemeDark},
		{"neon", session.ThemeLight},
	}

	for _, tt := range tests {
		t.Run("theme_"+tt.saved, func(t *testing.T) {
			sm := scs.New()
			var got string
			h := sm.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if tt.saved != "" {
					sm.Put(r.Context(), session.KeyTheme, tt.saved)
				}
				Preferences(sm)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					got = GetTheme(r)
				})).ServeHTTP(w, r)
			}))
			h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

			if got != tt.want {
				t.Errorf("GetTheme() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGetLangWithoutMiddleware(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := GetLang(req); got != i18n.DefaultLanguage {
		t.Errorf("GetLang() = %q, want %q", got, i18n.DefaultLanguage)
	}
	if got := GetTheme(req); got != session.ThemeLight {
		t.Errorf("GetTheme() = %q, want %q", got, session.ThemeLight)
	}
}
