// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"

	"github.com/makerskills/makerskills-web/internal/middleware"
	"github.com/makerskills/makerskills-web/internal/remote"
	"github.com/makerskills/makerskills-web/internal/render"
	"github.com/makerskills/makerskills-web/internal/session"
	"github.com/makerskills/makerskills-web/internal/util"
	"github.com/makerskills/makerskills-web/internal/workspace"
)

// allowedRoles may open the back-office.
var allowedRoles = map[string]bool{
	middleware.RoleAdmin:      true,
	middleware.RoleEditor:     true,
	middleware.RoleInstructor: true,
}

// AuthHandler handles authentication routes.
type AuthHandler struct {
	client          *remote.Client
	renderer        *render.Renderer
	sessionManager  *scs.SessionManager
	workspaces      *workspace.Manager
	loginProtection *middleware.LoginProtection
	logger          *slog.Logger
}

// NewAuthHandler creates a new AuthHandler. lp may be nil.
func NewAuthHandler(client *remote.Client, renderer *render.Renderer, sm *scs.SessionManager, workspaces *workspace.Manager, lp *middleware.LoginProtection, logger *slog.Logger) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{
		client:          client,
		renderer:        renderer,
		sessionManager:  sm,
		workspaces:      workspaces,
		loginProtection: lp,
		logger:          logger.With("category", "auth"),
	}
}

type loginPage struct {
	Email string
	Next  string
}

// LoginForm renders the login page. Signed-in users go straight to the back-office.
func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	next := middleware.SafeNext(r.URL.Query().Get("next"), AdminPrefix)
	if _, ok := session.CurrentAccount(r.Context(), h.sessionManager); ok {
		http.Redirect(w, r, next, http.StatusSeeOther)
		return
	}
	h.renderLogin(w, r, http.StatusOK, loginPage{Next: next})
}

func (h *AuthHandler) renderLogin(w http.ResponseWriter, r *http.Request, status int, page loginPage) {
	lang := middleware.GetLang(r)
	err := h.renderer.RenderStatus(w, r, status, "auth/login", render.TemplateData{
		Title: tr(lang, "login.title"),
		Data:  page,
	})
	if err != nil {
		logAndInternalError(w, "failed to render login page", "error", err)
	}
}

// loginURL keeps the post-login target across the redirect.
func loginURL(next string) string {
	if next == "" || next == AdminPrefix {
		return middleware.LoginPath
	}
	return middleware.LoginPath + "?next=" + url.QueryEscape(next)
}

// Login handles the login form submission.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	lang := middleware.GetLang(r)
	if !parseFormOrRedirect(w, r, h.renderer, middleware.LoginPath) {
		return
	}

	email := strings.ToLower(strings.TrimSpace(r.PostForm.Get("email")))
	password := r.PostForm.Get("password")
	next := middleware.SafeNext(r.PostForm.Get("next"), AdminPrefix)
	back := loginURL(next)
	ip := util.ClientIP(r)

	if email == "" || password == "" {
		flashError(w, r, h.renderer, back, tr(lang, "msg.login_failed"))
		return
	}

	if h.loginProtection != nil {
		if st := h.loginProtection.Status(email); st.Locked {
			h.logger.Warn("login attempt on locked account", "email", email, "ip", ip)
			flashError(w, r, h.renderer, back, tr(lang, "msg.account_locked", formatDuration(st.RetryIn)))
			return
		}
	}

	login, err := h.client.Login(r.Context(), remote.Credentials{Email: email, Password: password})
	if err != nil {
		if remote.IsTransport(err) {
			h.logger.Error("login failed: backend unreachable", "error", err)
			flashError(w, r, h.renderer, back, tr(lang, "msg.load_failed", remote.Message(err)))
			return
		}
		h.logger.Warn("login failed", "email", email, "ip", ip, "error", err)
		h.failedAttempt(w, r, email, back)
		return
	}

	if !allowedRoles[login.User.Role] {
		h.logger.Warn("login refused for role", "email", email, "role", login.User.Role)
		flashError(w, r, h.renderer, back, tr(lang, "msg.login_forbidden"))
		return
	}

	if h.loginProtection != nil {
		h.loginProtection.Succeed(email)
	}

	ws := h.workspaces.Create()
	if err := session.SignIn(r.Context(), h.sessionManager, login, ws.ID); err != nil {
		h.workspaces.Drop(ws.ID)
		logAndInternalError(w, "session renewal error", "error", err)
		return
	}

	h.logger.Info("user logged in", "user_id", login.User.ID, "email", login.User.Email, "role", login.User.Role, "ip", ip)

	name := login.User.Name
	if name == "" {
		name = login.User.Email
	}
	flashSuccess(w, r, h.renderer, next, tr(lang, "msg.welcome", name))
}

// failedAttempt counts the failure and tells the user how many tries remain.
func (h *AuthHandler) failedAttempt(w http.ResponseWriter, r *http.Request, email, back string) {
	lang := middleware.GetLang(r)
	if h.loginProtection != nil {
		st := h.loginProtection.Fail(email)
		if st.Locked {
			flashError(w, r, h.renderer, back, tr(lang, "msg.account_locked", formatDuration(st.RetryIn)))
			return
		}
		if st.Remaining > 0 && st.Remaining <= 3 {
			flashError(w, r, h.renderer, back, tr(lang, "msg.attempts_remaining", st.Remaining))
			return
		}
	}
	flashError(w, r, h.renderer, back, tr(lang, "msg.login_failed"))
}

// Logout handles POST /logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	acct, _ := session.CurrentAccount(ctx, h.sessionManager)
	if id := h.sessionManager.GetString(ctx, session.KeyWorkspace); id != "" {
		h.workspaces.Drop(id)
	}
	if err := session.SignOut(ctx, h.sessionManager); err != nil {
		h.logger.Error("session sign-out error", "error", err)
	}
	h.logger.Info("user logged out", "user_id", acct.ID)

	flashAndRedirect(w, r, h.renderer, middleware.LoginPath, tr(middleware.GetLang(r), "msg.logged_out"), render.FlashInfo)
}

// formatDuration formats a duration into a human-readable string.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%d seconds", int(d.Seconds()))
	}
	if d < time.Hour {
		mins := int(d.Minutes())
		if mins == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", mins)
	}
	hours := int(d.Hours())
	if hours == 1 {
		return "1 hour"
	}
	return fmt.Sprintf("%d hours", hours)
}
