// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/alexedwards/scs/v2"

	"github.com/makerskills/makerskills-web/internal/i18n"
	"github.com/makerskills/makerskills-web/internal/session"
)

// Context keys for presentation preferences.
const (
	ContextKeyLanguage ContextKey = "language"
	ContextKeyTheme    ContextKey = "theme"
)

// LangParam is the query parameter that switches the UI language.
const LangParam = "lang"

// Preferences creates middleware that resolves the UI language and theme.
// Language priority order:
// 1. Query parameter ?lang=XX (explicit switch, saved in the session)
// 2. Language saved in the session
// 3. Accept-Language header
// 4. Default language
func Preferences(sm *scs.SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			lang := resolveLanguage(r, sm)

			theme := sm.GetString(ctx, session.KeyTheme)
			if theme != session.ThemeDark {
				theme = session.ThemeLight
			}

			ctx = context.WithValue(ctx, ContextKeyLanguage, lang)
			ctx = context.WithValue(ctx, ContextKeyTheme, theme)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func resolveLanguage(r *http.Request, sm *scs.SessionManager) string {
	ctx := r.Context()

	if q := strings.ToLower(strings.TrimSpace(r.URL.Query().Get(LangParam))); q != "" && i18n.IsSupported(q) {
		if sm.GetString(ctx, session.KeyLang) != q {
			sm.Put(ctx, session.KeyLang, q)
		}
		return q
	}

	if saved := sm.GetString(ctx, session.KeyLang); saved != "" && i18n.IsSupported(saved) {
		return saved
	}

	if accept := r.Header.Get("Accept-Language"); accept != "" {
		return i18n.MatchLanguage(accept)
	}
	return i18n.DefaultLanguage
}

// GetLang returns the UI language of the request.
func GetLang(r *http.Request) string {
	if lang, ok := r.Context().Value(ContextKeyLanguage).(string); ok && lang != "" {
		return lang
	}
	return i18n.DefaultLanguage
}

// GetTheme returns the UI theme of the request.
func GetTheme(r *http.Request) string {
	if theme, ok := r.Context().Value(ContextKeyTheme).(string); ok && theme != "" {
		return theme
	}
	return session.ThemeLight
}
