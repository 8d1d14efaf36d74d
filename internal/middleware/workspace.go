// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"

	"github.com/alexedwards/scs/v2"

	"github.com/makerskills/makerskills-web/internal/session"
	"github.com/makerskills/makerskills-web/internal/workspace"
)

// Workspace attaches the admin session's workspace to the request context.
// A session whose workspace was evicted gets an empty one under the same id.
// This should be used after RequireAuth.
func Workspace(sm *scs.SessionManager, mgr *workspace.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			id := sm.GetString(ctx, session.KeyWorkspace)
			ws := mgr.Ensure(id)
			if ws.ID != id {
				sm.Put(ctx, session.KeyWorkspace, ws.ID)
			}
			next.ServeHTTP(w, r.WithContext(workspace.NewContext(ctx, ws)))
		})
	}
}
