// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package render parses the HTML templates once at startup and renders
// pages for the public site, the login screen and the back-office.
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
	"slices"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"

	"github.com/makerskills/makerskills-web/internal/i18n"
	"github.com/makerskills/makerskills-web/internal/middleware"
	"github.com/makerskills/makerskills-web/internal/model"
	"github.com/makerskills/makerskills-web/internal/richtext"
	"github.com/makerskills/makerskills-web/internal/session"
	"github.com/makerskills/makerskills-web/internal/uikit"
)

// Flash types.
const (
	FlashSuccess = "success"
	FlashError   = "error"
	FlashInfo    = "info"
)

// Template groups and the layout each one is parsed with.
var groups = []struct {
	dir    string
	layout string
}{
	{"admin", "layouts/admin.html"},
	{"auth", "layouts/auth.html"},
	{"public", "layouts/public.html"},
}

const baseLayout = "layouts/base.html"

// Renderer executes the parsed page templates.
type Renderer struct {
	pages    map[string]*template.Template
	sessions *scs.SessionManager
	menu     []MenuItem
	logger   *slog.Logger
}

// MenuItem is one entry of the back-office navigation.
type MenuItem struct {
	Path    string
	Label   string // i18n key
	MinRole string
}

// Config holds renderer configuration.
type Config struct {
	TemplatesFS    fs.FS
	SessionManager *scs.SessionManager
	Logger         *slog.Logger
}

// New parses every page of TemplatesFS.
func New(cfg Config) (*Renderer, error) {
	r := &Renderer{
		pages:    make(map[string]*template.Template),
		sessions: cfg.SessionManager,
		logger:   cfg.Logger,
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}

	partials, err := fs.Glob(cfg.TemplatesFS, "partials/*.html")
	if err != nil {
		return nil, err
	}
	for _, g := range groups {
		pages, err := fs.Glob(cfg.TemplatesFS, g.dir+"/*.html")
		if err != nil {
			return nil, err
		}
		// A page is parsed with the base layout, its group layout and the partials.
		common := append([]string{baseLayout, g.layout}, partials...)
		for _, page := range pages {
			name := g.dir + "/" + strings.TrimSuffix(path.Base(page), ".html")
			files := append(slices.Clone(common), page)
			tmpl, err := template.New(name).Funcs(TemplateFuncs()).ParseFS(cfg.TemplatesFS, files...)
			if err != nil {
				return nil, fmt.Errorf("parsing template %s: %w", name, err)
			}
			r.pages[name] = tmpl
		}
	}
	return r, nil
}

// SetMenu installs the back-office navigation. Call it before serving.
func (r *Renderer) SetMenu(items []MenuItem) {
	r.menu = items
}

// Has reports whether a template with name was parsed.
func (r *Renderer) Has(name string) bool {
	_, ok := r.pages[name]
	return ok
}

// TemplateFuncs returns the shared helpers plus the site-specific ones.
func TemplateFuncs() template.FuncMap {
	funcs := uikit.TemplateFuncs()
	funcs["T"] = i18n.T
	funcs["loc"] = func(t model.LocalizedText, lang string) string {
		return t.Get(lang)
	}
	funcs["richtext"] = richtext.HTML
	funcs["excerpt"] = richtext.Excerpt
	funcs["languages"] = i18n.GetSupportedLanguages
	return funcs
}

// TemplateData holds data passed to templates.
type TemplateData struct {
	Title       string
	Data        any
	Flash       string
	FlashType   string
	CurrentYear int
	Lang        string
	Theme       string
	Account     *session.Account
	CSRFField   template.HTML
	CurrentPath string
	Query       string
	Menu        []MenuItem
	Breadcrumbs []uikit.Breadcrumb
}

// T translates a key in the page language.
func (d TemplateData) T(key string, args ...any) string {
	return i18n.T(d.Lang, key, args...)
}

// IsActive returns true if the given path matches the current path.
func (d TemplateData) IsActive(p string) bool {
	return d.CurrentPath == p
}

// HasPrefix returns true if the current path starts with the given prefix.
func (d TemplateData) HasPrefix(prefix string) bool {
	return strings.HasPrefix(d.CurrentPath, prefix)
}

// IsAdmin returns true if the signed-in account has the admin role.
func (d TemplateData) IsAdmin() bool {
	return d.Account != nil && d.Account.Role == middleware.RoleAdmin
}

// UserInitial returns the first character of the account name for the avatar.
func (d TemplateData) UserInitial() string {
	if d.Account == nil || d.Account.Name == "" {
		return "A"
	}
	return strings.ToUpper(string([]rune(d.Account.Name)[0]))
}

// LangURL returns the current page switched to lang.
func (d TemplateData) LangURL(lang string) string {
	q := d.Query
	if q != "" {
		q = "&" + q
	}
	return d.CurrentPath + "?" + middleware.LangParam + "=" + lang + q
}

// Render renders a template with status 200.
func (r *Renderer) Render(w http.ResponseWriter, req *http.Request, name string, data TemplateData) error {
	return r.RenderStatus(w, req, http.StatusOK, name, data)
}

// RenderStatus renders a template with the given status code. The page is
// executed into a buffer so a template error never leaves a half-written body.
func (r *Renderer) RenderStatus(w http.ResponseWriter, req *http.Request, status int, name string, data TemplateData) error {
	tmpl, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("template %s not found", name)
	}
	r.fill(req, &data)

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base", data); err != nil {
		return fmt.Errorf("executing template %s: %w", name, err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
	return nil
}

// fill adds the request-scoped defaults the handler left empty.
func (r *Renderer) fill(req *http.Request, data *TemplateData) {
	data.CurrentYear = time.Now().Year()
	data.CurrentPath = req.URL.Path
	q := req.URL.Query()
	q.Del(middleware.LangParam)
	data.Query = q.Encode()

	if data.Lang == "" {
		data.Lang = middleware.GetLang(req)
	}
	if data.Theme == "" {
		data.Theme = middleware.GetTheme(req)
	}
	if data.CSRFField == "" {
		data.CSRFField = middleware.CSRFField(req)
	}
	if data.Account == nil {
		data.Account = middleware.GetAccount(req)
	}
	if data.Account != nil && data.Menu == nil {
		data.Menu = r.menuFor(data.Account.Role)
	}
	if data.Flash == "" {
		data.Flash, data.FlashType = r.popFlash(req)
	}
}

// menuFor returns the navigation entries role may see.
func (r *Renderer) menuFor(role string) []MenuItem {
	var items []MenuItem
	for _, m := range r.menu {
		if middleware.HasRole(role, m.MinRole) {
			items = append(items, m)
		}
	}
	return items
}

// popFlash takes the pending flash out of the session. Requests served
// outside the session middleware have none.
func (r *Renderer) popFlash(req *http.Request) (msg, kind string) {
	if r.sessions == nil {
		return "", ""
	}
	defer func() {
		if recover() != nil {
			msg, kind = "", ""
		}
	}()
	ctx := req.Context()
	msg = r.sessions.PopString(ctx, session.KeyFlash)
	if msg == "" {
		return "", ""
	}
	kind = r.sessions.PopString(ctx, session.KeyFlashType)
	if kind == "" {
		kind = FlashInfo
	}
	return msg, kind
}

// SetFlash sets a flash message in the session.
func (r *Renderer) SetFlash(req *http.Request, message, flashType string) {
	if r.sessions != nil {
		r.sessions.Put(req.Context(), session.KeyFlash, message)
		r.sessions.Put(req.Context(), session.KeyFlashType, flashType)
	}
}

// Error renders the error page for status. Callers log the cause.
func (r *Renderer) Error(w http.ResponseWriter, req *http.Request, status int, message string) {
	name := "public/error"
	if strings.HasPrefix(req.URL.Path, "/admin") {
		name = "admin/error"
	}
	err := r.RenderStatus(w, req, status, name, TemplateData{
		Title: http.StatusText(status),
		Data:  map[string]any{"Status": status, "Message": message},
	})
	if err != nil {
		r.logger.Error("failed to render error page", "error", err)
		http.Error(w, message, status)
	}
}
