// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"log/slog"
	"net/http"

	"github.com/alexedwards/scs/v2"

	"github.com/makerskills/makerskills-web/internal/logging"
	"github.com/makerskills/makerskills-web/internal/middleware"
	"github.com/makerskills/makerskills-web/internal/model"
	"github.com/makerskills/makerskills-web/internal/paging"
	"github.com/makerskills/makerskills-web/internal/remote"
	"github.com/makerskills/makerskills-web/internal/render"
	"github.com/makerskills/makerskills-web/internal/scheduler"
	"github.com/makerskills/makerskills-web/internal/store"
	"github.com/makerskills/makerskills-web/internal/uikit"
	"github.com/makerskills/makerskills-web/internal/workspace"
)

// Dashboard limits.
const (
	summaryPath        = "/static/summary"
	dashboardActivity  = 10
	dashboardLogEvents = 8
	activityWindow     = 500
	activityPerPage    = 25
)

// DashboardHandler renders the back-office landing page.
type DashboardHandler struct {
	client         *remote.Client
	renderer       *render.Renderer
	sessionManager *scs.SessionManager
	workspaces     *workspace.Manager
	activity       *store.Queries
	ring           *logging.Ring
	probe          *scheduler.Probe
	logger         *slog.Logger
}

// NewDashboardHandler creates a new DashboardHandler. activity, ring and probe may be nil.
func NewDashboardHandler(client *remote.Client, renderer *render.Renderer, sm *scs.SessionManager, workspaces *workspace.Manager, activity *store.Queries, ring *logging.Ring, probe *scheduler.Probe, logger *slog.Logger) *DashboardHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &DashboardHandler{
		client:         client,
		renderer:       renderer,
		sessionManager: sm,
		workspaces:     workspaces,
		activity:       activity,
		ring:           ring,
		probe:          probe,
		logger:         logger.With("category", "screen"),
	}
}

// DashboardData holds the counters and recent events shown on the dashboard.
type DashboardData struct {
	Summary        model.Summary
	SummaryError   string
	Revenue        string
	Activity       []store.Activity
	Events         []logging.Entry
	Backend        scheduler.ProbeStatus
	ProbeEnabled   bool
	Workspaces     int
	ShowOperations bool
}

// Dashboard handles GET /admin.
func (h *DashboardHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	lang := middleware.GetLang(r)
	data := DashboardData{}

	summary, err := remote.Fetch[model.Summary](ctx, h.client, summaryPath)
	if err != nil {
		if endExpiredSession(w, r, h.sessionManager, h.renderer, h.workspaces, err) {
			return
		}
		h.logger.Warn("failed to load dashboard summary", "error", err)
		data.SummaryError = tr(lang, "dashboard.summary_failed", remote.Message(err))
	} else {
		data.Summary = summary
		data.Revenue = uikit.FormatPrice(summary.Revenue, lang)
	}

	if h.activity != nil {
		if rows, err := h.activity.ListRecentActivity(ctx, dashboardActivity); err != nil {
			h.logger.Error("failed to list recent activity", "error", err)
		} else {
			data.Activity = rows
		}
	}

	// Operational details are for administrators only.
	if acct := middleware.GetAccount(r); acct != nil && acct.Role == middleware.RoleAdmin {
		data.ShowOperations = true
		if h.ring != nil {
			data.Events = h.ring.Recent(dashboardLogEvents)
		}
		if h.probe != nil {
			data.ProbeEnabled = true
			data.Backend = h.probe.Status()
		}
		if h.workspaces != nil {
			data.Workspaces = h.workspaces.Len()
		}
	}

	if err := h.renderer.Render(w, r, "admin/dashboard", render.TemplateData{
		Title: tr(lang, "nav.dashboard"),
		Data:  data,
		Breadcrumbs: []uikit.Breadcrumb{
			{Label: tr(lang, "nav.dashboard"), URL: AdminPrefix, Active: true},
		},
	}); err != nil {
		logAndInternalError(w, "render error", "error", err)
	}
}

// ActivityData is the journal page.
type ActivityData struct {
	Items      []store.Activity
	Pagination uikit.Pager
}

// Activity handles GET /admin/activity: the newest journal rows, paginated.
func (h *DashboardHandler) Activity(w http.ResponseWriter, r *http.Request) {
	lang := middleware.GetLang(r)
	data := ActivityData{}

	if h.activity != nil {
		rows, err := h.activity.ListRecentActivity(r.Context(), activityWindow)
		if err != nil {
			h.logger.Error("failed to list activity", "error", err)
		}
		p := paging.Build(rows, uikit.PageParam(r), activityPerPage)
		data.Items = p.Items
		data.Pagination = uikit.NewPager(p, AdminPrefix+"/activity", nil)
	}

	if err := h.renderer.Render(w, r, "admin/activity", render.TemplateData{
		Title: tr(lang, "activity.title"),
		Data:  data,
		Breadcrumbs: []uikit.Breadcrumb{
			{Label: tr(lang, "nav.dashboard"), URL: AdminPrefix},
			{Label: tr(lang, "activity.title"), URL: AdminPrefix + "/activity", Active: true},
		},
	}); err != nil {
		logAndInternalError(w, "render error", "error", err)
	}
}
