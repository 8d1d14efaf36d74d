// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package session configures the cookie session shared by the public site
// and the back-office, and names the values kept in it.
package session

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"

	"github.com/makerskills/makerskills-web/internal/remote"
)

// Session keys.
const (
	KeyToken     = "api_token"
	KeyUserID    = "user_id"
	KeyUserName  = "user_name"
	KeyUserEmail = "user_email"
	KeyUserRole  = "user_role"
	KeyWorkspace = "workspace_id"
	KeyLang      = "lang"
	KeyTheme     = "theme"
	KeyFlash     = "flash"
	KeyFlashType = "flash_type"
)

// Themes.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// New creates a new session manager configured with SQLite store.
func New(db *sql.DB, isDev bool) *scs.SessionManager {
	sm := scs.New()

	// Use SQLite store
	sm.Store = sqlite3store.New(db)

	// Configure session
	sm.Lifetime = 24 * time.Hour
	sm.IdleTimeout = 2 * time.Hour
	sm.Cookie.HttpOnly = true
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Path = "/"
	sm.Cookie.Secure = !isDev // Secure cookies in production only
	if !isDev {
		sm.Cookie.Name = "__Host-session"
	}

	return sm
}

// Tokens exposes the bearer token stored at login to the API client.
// Requests without a loaded session yield no token.
func Tokens(sm *scs.SessionManager) remote.TokenSource {
	return remote.TokenFunc(func(ctx context.Context) string {
		return lookupString(ctx, sm, KeyToken)
	})
}

// lookupString reads key without panicking on contexts that did not pass
// through LoadAndSave, such as background jobs.
func lookupString(ctx context.Context, sm *scs.SessionManager, key string) (v string) {
	defer func() {
		if recover() != nil {
			v = ""
		}
	}()
	return sm.GetString(ctx, key)
}

// Account is the signed-in administrator as kept in the session.
type Account struct {
	ID    string
	Name  string
	Email string
	Role  string
}

// SignIn stores the login result and rotates the session token.
func SignIn(ctx context.Context, sm *scs.SessionManager, login remote.Login, workspaceID string) error {
	if err := sm.RenewToken(ctx); err != nil {
		return err
	}
	sm.Put(ctx, KeyToken, login.Token)
	sm.Put(ctx, KeyUserID, login.User.ID)
	sm.Put(ctx, KeyUserName, login.User.Name)
	sm.Put(ctx, KeyUserEmail, login.User.Email)
	sm.Put(ctx, KeyUserRole, login.User.Role)
	sm.Put(ctx, KeyWorkspace, workspaceID)
	return nil
}

// SignOut drops the credentials but keeps presentation preferences.
func SignOut(ctx context.Context, sm *scs.SessionManager) error {
	for _, key := range []string{KeyToken, KeyUserID, KeyUserName, KeyUserEmail, KeyUserRole, KeyWorkspace} {
		sm.Remove(ctx, key)
	}
	return sm.RenewToken(ctx)
}

// CurrentAccount returns the signed-in account, or false when anonymous.
func CurrentAccount(ctx context.Context, sm *scs.SessionManager) (Account, bool) {
	if sm.GetString(ctx, KeyToken) == "" {
		return Account{}, false
	}
	return Account{
		ID:    sm.GetString(ctx, KeyUserID),
		Name:  sm.GetString(ctx, KeyUserName),
		Email: sm.GetString(ctx, KeyUserEmail),
		Role:  sm.GetString(ctx, KeyUserRole),
	}, true
}
