// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for authentication,
// per-session state and request context handling.
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/alexedwards/scs/v2"

	"github.com/makerskills/makerskills-web/internal/i18n"
	"github.com/makerskills/makerskills-web/internal/session"
)

// ContextKey is the type of the context keys set by this package.
type ContextKey string

// ContextKeyAccount holds the signed-in session.Account.
const ContextKeyAccount ContextKey = "account"

// LoginPath is where unauthenticated admin requests are sent.
const LoginPath = "/login"

// RequireAuth redirects to the login page when the session holds no API token.
// The original path is passed as ?next= so the user lands back on it.
func RequireAuth(sm *scs.SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if sm.GetString(r.Context(), session.KeyToken) != "" {
				next.ServeHTTP(w, r)
				return
			}
			target := LoginPath
			if r.Method == http.MethodGet {
				target += "?next=" + url.QueryEscape(r.URL.RequestURI())
			}
			http.Redirect(w, r, target, http.StatusSeeOther)
		})
	}
}

// LoadAccount puts the signed-in account, if any, into the request context.
func LoadAccount(sm *scs.SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			acct, ok := session.CurrentAccount(r.Context(), sm)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}
			ctx := context.WithValue(r.Context(), ContextKeyAccount, acct)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetAccount returns a copy of the signed-in account, nil for anonymous requests.
func GetAccount(r *http.Request) *session.Account {
	if acct, ok := r.Context().Value(ContextKeyAccount).(session.Account); ok {
		return &acct
	}
	return nil
}

// GetAccountName returns the name of the signed-in account, its e-mail when
// the name is blank, or "" for anonymous requests.
func GetAccountName(r *http.Request) string {
	acct := GetAccount(r)
	switch {
	case acct == nil:
		return ""
	case acct.Name != "":
		return acct.Name
	default:
		return acct.Email
	}
}

// SafeNext returns next when it is a local admin path, else fallback.
func SafeNext(next, fallback string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return fallback
	}
	return next
}

// Back-office roles as issued by the backend.
const (
	RoleAdmin      = "admin"
	RoleEditor     = "editor"
	RoleInstructor = "instructor"
)

// roleRanks orders the roles; unknown roles rank 0 and reach nothing.
var roleRanks = map[string]int{
	RoleInstructor: 1,
	RoleEditor:     2,
	RoleAdmin:      3,
}

// HasRole reports whether role grants at least minRole. An empty minRole
// admits every back-office role.
func HasRole(role, minRole string) bool {
	rank := roleRanks[role]
	if minRole == "" {
		return rank > 0
	}
	return rank >= roleRanks[minRole]
}

// RequireRole answers 403 to accounts below minRole (admin > editor > instructor)
// and sends anonymous requests to the login page.
func RequireRole(minRole string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			acct := GetAccount(r)
			switch {
			case acct == nil:
				http.Redirect(w, r, LoginPath, http.StatusSeeOther)
			case !HasRole(acct.Role, minRole):
				slog.Warn("access denied",
					"category", "auth",
					"method", r.Method,
					"path", r.URL.Path,
					"user_id", acct.ID,
					"user_role", acct.Role,
					"required_role", minRole,
				)
				http.Error(w, i18n.T(GetLang(r), "msg.forbidden"), http.StatusForbidden)
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}

// RequireAdmin is shorthand for RequireRole(RoleAdmin).
func RequireAdmin() func(http.Handler) http.Handler {
	return RequireRole(RoleAdmin)
}
