// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"log/slog"
	"net/http"
	"net/url"

	"github.com/alexedwards/scs/v2"

	"github.com/makerskills/makerskills-web/internal/i18n"
	"github.com/makerskills/makerskills-web/internal/middleware"
	"github.com/makerskills/makerskills-web/internal/remote"
	"github.com/makerskills/makerskills-web/internal/render"
	"github.com/makerskills/makerskills-web/internal/session"
	"github.com/makerskills/makerskills-web/internal/workspace"
)

// tr translates key in lang.
func tr(lang, key string, args ...any) string {
	return i18n.T(lang, key, args...)
}

// flashAndRedirect sets a flash message and redirects to the given URL.
// Uses http.StatusSeeOther (303) for POST redirects.
func flashAndRedirect(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, url, message, messageType string) {
	renderer.SetFlash(r, message, messageType)
	http.Redirect(w, r, url, http.StatusSeeOther)
}

// flashError sets an error flash message and redirects to the given URL.
func flashError(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, url, message string) {
	flashAndRedirect(w, r, renderer, url, message, render.FlashError)
}

// flashSuccess sets a success flash message and redirects to the given URL.
func flashSuccess(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, url, message string) {
	flashAndRedirect(w, r, renderer, url, message, render.FlashSuccess)
}

// parseFormOrRedirect parses the request form and redirects with an error message on failure.
// Returns true if parsing succeeded, false if it failed (and redirect was performed).
func parseFormOrRedirect(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, redirectURL string) bool {
	if err := r.ParseForm(); err != nil {
		flashError(w, r, renderer, redirectURL, tr(middleware.GetLang(r), "form.invalid"))
		return false
	}
	return true
}

// logAndHTTPError logs an error and writes an HTTP error response.
func logAndHTTPError(w http.ResponseWriter, message string, statusCode int, logMsg string, args ...any) {
	slog.Error(logMsg, args...)
	http.Error(w, message, statusCode)
}

// logAndInternalError logs an error and writes a 500 Internal Server Error response.
func logAndInternalError(w http.ResponseWriter, logMsg string, args ...any) {
	logAndHTTPError(w, "Internal Server Error", http.StatusInternalServerError, logMsg, args...)
}

// endExpiredSession signs the user out and sends them to the login page when
// err says the backend no longer accepts the session token.
// Returns true if the response was written.
func endExpiredSession(w http.ResponseWriter, r *http.Request, sm *scs.SessionManager, renderer *render.Renderer, workspaces *workspace.Manager, err error) bool {
	if !remote.IsUnauthorized(err) {
		return false
	}
	ctx := r.Context()
	if ws, ok := workspace.FromContext(ctx); ok && workspaces != nil {
		workspaces.Drop(ws.ID)
	}
	if signOutErr := session.SignOut(ctx, sm); signOutErr != nil {
		slog.Error("failed to end expired session", "error", signOutErr)
	}
	slog.Warn("backend rejected session token", "category", "auth", "path", r.URL.Path)

	target := middleware.LoginPath
	if r.Method == http.MethodGet {
		target += "?next=" + url.QueryEscape(r.URL.RequestURI())
	}
	flashError(w, r, renderer, target, tr(middleware.GetLang(r), "msg.session_expired"))
	return true
}
