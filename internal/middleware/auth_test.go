// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alexedwards/scs/v2"

	"github.com/makerskills/makerskills-web/internal/remote"
	"github.com/makerskills/makerskills-web/internal/session"
)

// signedIn wraps h so that the request carries a signed-in session.
func signedIn(sm *scs.SessionManager, role string, h http.Handler) http.Handler {
	return sm.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = session.SignIn(r.Context(), sm, remote.Login{
			Token: "tok",
			User:  remote.Account{ID: "u1", Name: "Awa", Email: "awa@example.com", Role: role},
		}, "ws-1")
		h.ServeHTTP(w, r)
	}))
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireAuth(t *testing.T) {
	sm := scs.New()

	t.Run("anonymous is redirected with next", func(t *testing.T) {
		h := sm.LoadAndSave(RequireAuth(sm)(okHandler()))
		req := httptest.NewRequest(http.MethodGet, "/admin/formations?page=2", nil)
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)

		if rr.Code != http.StatusSeeOther {
			t.Fatalf("status = %d, want %d", rr.Code, http.StatusSeeOther)
		}
		want := "/login?next=%2Fadmin%2Fformations%3Fpage%3D2"
		if loc := rr.Header().Get("Location"); loc != want {
			t.Errorf("Location = %q, want %q", loc, want)
		}
	})

	t.Run("anonymous POST has no next", func(t *testing.T) {
		h := sm.LoadAndSave(RequireAuth(sm)(okHandler()))
		req := httptest.NewRequest(http.MethodPost, "/admin/formations", nil)
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)

		if loc := rr.Header().Get("Location"); loc != LoginPath {
			t.Errorf("Location = %q, want %q", loc, LoginPath)
		}
	})

	t.Run("signed in passes", func(t *testing.T) {
		h := signedIn(sm, RoleAdmin, RequireAuth(sm)(okHandler()))
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/admin", nil))

		if rr.Code != http.StatusOK {
			t.Errorf("status = %d, want %d", rr.Code, http.StatusOK)
		}
	})
}

func TestLoadAccount(t *testing.T) {
	sm := scs.New()

	var got *session.Account
	capture := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = GetAccount(r)
	})

	h := signedIn(sm, RoleEditor, LoadAccount(sm)(capture))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/admin", nil))

	if got == nil {
		t.Fatal("GetAccount() = nil, want account")
	}
	if got.ID != "u1" || got.Role != RoleEditor {
		t.Errorf("GetAccount() = %+v", got)
	}

	got = nil
	anon := sm.LoadAndSave(LoadAccount(sm)(capture))
	anon.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if got != nil {
		t.Errorf("GetAccount() = %+v for anonymous request, want nil", got)
	}
}

func TestGetAccountName(t *testing.T) {
	tests := []struct {
		name string
		acct *session.Account
		want string
	}{
		{"no account", nil, ""},
		{"name", &session.Account{Name: "Awa", Email: "awa@example.com"}, "Awa"},
		{"email fallback", &session.Account{Email: "awa@example.com"}, "awa@example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.acct != nil {
				req = req.WithContext(context.WithValue(req.Context(), ContextKeyAccount, *tt.acct))
			}
			if got := GetAccountName(req); got != tt.want {
				t.Errorf("GetAccountName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSafeNext(t *testing.T) {
	tests := []struct {
		next string
		want string
	}{
		{"/admin/formations", "/admin/formations"},
		{"", "/admin"},
		{"https://evil.example", "/admin"},
		{"//evil.example", "/admin"},
		{"/\\evil.example", "/admin"},
	}
	for _, tt := range tests {
		if got := SafeNext(tt.next, "/admin"); got != tt.want {
			t.Errorf("SafeNext(%q) = %q, want %q", tt.next, got, tt.want)
		}
	}
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name     string
		role     string
		minRole  string
		wantCode int
	}{
		{"admin on admin route", RoleAdmin, RoleAdmin, http.StatusOK},
		{"editor on admin route", RoleEditor, RoleAdmin, http.StatusForbidden},
		{"admin on editor route", RoleAdmin, RoleEditor, http.StatusOK},
		{"instructor on editor route", RoleInstructor, RoleEditor, http.StatusForbidden},
		{"unknown role", "guest", RoleInstructor, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin/users", nil)
			req = req.WithContext(context.WithValue(req.Context(), ContextKeyAccount, session.Account{ID: "u1", Role: tt.role}))
			rr := httptest.NewRecorder()
			RequireRole(tt.minRole)(okHandler()).ServeHTTP(rr, req)

			if rr.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", rr.Code, tt.wantCode)
			}
		})
	}

	t.Run("no account redirects", func(t *testing.T) {
		rr := httptest.NewRecorder()
		RequireAdmin()(okHandler()).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/admin/users", nil))
		if rr.Code != http.StatusSeeOther {
			t.Errorf("status = %d, want %d", rr.Code, http.StatusSeeOther)
		}
	})
}
