// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/makerskills/makerskills-web/internal/remote"
	"github.com/makerskills/makerskills-web/internal/testutil"
)

// withSession runs fn inside a request that passed through LoadAndSave.
func withSession(t *testing.T, sm *scs.SessionManager, fn func(ctx context.Context)) {
	t.Helper()
	h := sm.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fn(r.Context())
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
}

func TestNew_Cookie(t *testing.T) {
	tests := []struct {
		name       string
		dev        bool
		wantSecure bool
		wantName   string
	}{
		{"development", true, false, "session"},
		{"production", false, true, "__Host-session"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sm := New(testutil.TestDB(t), tt.dev)

			assert.Equal(t, tt.wantSecure, sm.Cookie.Secure)
			assert.Equal(t, tt.wantName, sm.Cookie.Name)
			assert.Equal(t, "/", sm.Cookie.Path)
			assert.True(t, sm.Cookie.HttpOnly)
			assert.Equal(t, http.SameSiteLaxMode, sm.Cookie.SameSite)
			assert.Equal(t, 24*time.Hour, sm.Lifetime)
			assert.Equal(t, 2*time.Hour, sm.IdleTimeout)
			assert.NotNil(t, sm.Store)
		})
	}
}

func TestSignInSignOut(t *testing.T) {
	sm := New(testutil.TestDB(t), true)
	tokens := Tokens(sm)

	withSession(t, sm, func(ctx context.Context) {
		_, ok := CurrentAccount(ctx, sm)
		assert.False(t, ok, "fresh session is anonymous")

		sm.Put(ctx, KeyLang, "en")
		sm.Put(ctx, KeyTheme, ThemeDark)
		require.NoError(t, SignIn(ctx, sm, remote.Login{
			Token: "tok-123",
			User:  remote.Account{ID: "u1", Name: "Awa", Email: "awa@makerskills.test", Role: "admin"},
		}, "ws-1"))

		acct, ok := CurrentAccount(ctx, sm)
		require.True(t, ok)
		assert.Equal(t, Account{ID: "u1", Name: "Awa", Email: "awa@makerskills.test", Role: "admin"}, acct)
		assert.Equal(t, "tok-123", tokens.Token(ctx))
		assert.Equal(t, "ws-1", sm.GetString(ctx, KeyWorkspace))

		require.NoError(t, SignOut(ctx, sm))
		_, ok = CurrentAccount(ctx, sm)
		assert.False(t, ok, "account gone after SignOut")
		assert.Empty(t, tokens.Token(ctx))
		assert.Empty(t, sm.GetString(ctx, KeyWorkspace))

		assert.Equal(t, "en", sm.GetString(ctx, KeyLang), "preferences survive SignOut")
		assert.Equal(t, ThemeDark, sm.GetString(ctx, KeyTheme))
	})
}

func TestTokens_WithoutSession(t *testing.T) {
	sm := New(testutil.TestDB(t), true)
	assert.Empty(t, Tokens(sm).Token(context.Background()))
}
