// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/makerskills/makerskills-web/internal/middleware"
	"github.com/makerskills/makerskills-web/internal/render"
	"github.com/makerskills/makerskills-web/internal/scheduler"
	"github.com/makerskills/makerskills-web/internal/uikit"
)

const jobsPath = AdminPrefix + "/jobs"

// JobsHandler lists the background jobs and lets administrators run or
// reschedule them.
type JobsHandler struct {
	renderer *render.Renderer
	registry *scheduler.Registry
	logger   *slog.Logger
}

// NewJobsHandler creates a new JobsHandler.
func NewJobsHandler(renderer *render.Renderer, registry *scheduler.Registry, logger *slog.Logger) *JobsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &JobsHandler{
		renderer: renderer,
		registry: registry,
		logger:   logger.With("category", "system"),
	}
}

// Mount registers the jobs routes.
func (h *JobsHandler) Mount(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/{name}/run", h.TriggerNow)
	r.Post("/{name}/schedule", h.UpdateSchedule)
	r.Post("/{name}/reset", h.ResetSchedule)
}

// JobView represents a job for the template.
type JobView struct {
	Name            string
	Label           string
	Description     string
	DefaultSchedule string
	Schedule        string
	IsOverridden    bool
	LastRun         string
	LastDuration    string
	LastError       string
	Runs            int
	NextRun         string
	CanTrigger      bool
}

func formatRunTime(t time.Time, lang, never string) string {
	if t.IsZero() {
		return never
	}
	return uikit.FormatDateTimeForLocale(t, lang)
}

// List handles GET /admin/jobs.
func (h *JobsHandler) List(w http.ResponseWriter, r *http.Request) {
	lang := middleware.GetLang(r)
	never := tr(lang, "jobs.never")

	jobs := h.registry.List()
	views := make([]JobView, 0, len(jobs))
	for _, job := range jobs {
		v := JobView{
			Name:            job.Name,
			Label:           tr(lang, "jobs."+job.Name),
			Description:     job.Description,
			DefaultSchedule: job.DefaultSchedule,
			Schedule:        job.Schedule,
			IsOverridden:    job.IsOverridden,
			LastRun:         formatRunTime(job.LastRun, lang, never),
			LastError:       job.LastError,
			Runs:            job.Runs,
			NextRun:         formatRunTime(job.NextRun, lang, "-"),
			CanTrigger:      job.CanTrigger,
		}
		if job.Runs > 0 {
			v.LastDuration = job.LastDuration.Round(time.Millisecond).String()
		}
		views = append(views, v)
	}

	if err := h.renderer.Render(w, r, "admin/jobs", render.TemplateData{
		Title: tr(lang, "jobs.title"),
		Data:  views,
		Breadcrumbs: []uikit.Breadcrumb{
			{Label: tr(lang, "nav.dashboard"), URL: AdminPrefix},
			{Label: tr(lang, "jobs.title"), URL: jobsPath, Active: true},
		},
	}); err != nil {
		logAndInternalError(w, "render error", "error", err)
	}
}

// TriggerNow handles POST /admin/jobs/{name}/run. The job runs synchronously
// so the flash reports its outcome.
func (h *JobsHandler) TriggerNow(w http.ResponseWriter, r *http.Request) {
	lang := middleware.GetLang(r)
	name := chi.URLParam(r, "name")
	label := tr(lang, "jobs."+name)

	if err := h.registry.TriggerNow(name); err != nil {
		h.logger.Error("failed to trigger job", "error", err, "name", name)
		flashError(w, r, h.renderer, jobsPath, tr(lang, "jobs.failed", label, err.Error()))
		return
	}

	h.logger.Info("job triggered", "name", name, "triggered_by", middleware.GetAccountName(r))
	flashSuccess(w, r, h.renderer, jobsPath, tr(lang, "jobs.triggered", label))
}

// UpdateSchedule handles POST /admin/jobs/{name}/schedule.
func (h *JobsHandler) UpdateSchedule(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, jobsPath) {
		return
	}
	lang := middleware.GetLang(r)
	name := chi.URLParam(r, "name")
	schedule := strings.TrimSpace(r.PostForm.Get("schedule"))

	if err := scheduler.ValidateSchedule(schedule); err != nil {
		flashError(w, r, h.renderer, jobsPath, tr(lang, "jobs.invalid", schedule))
		return
	}

	if err := h.registry.UpdateSchedule(name, schedule); err != nil {
		h.logger.Error("failed to update schedule", "error", err, "name", name)
		flashError(w, r, h.renderer, jobsPath, tr(lang, "jobs.not_found"))
		return
	}

	h.logger.Info("job schedule updated", "name", name, "schedule", schedule, "updated_by", middleware.GetAccountName(r))
	flashSuccess(w, r, h.renderer, jobsPath, tr(lang, "jobs.updated", tr(lang, "jobs."+name)))
}

// ResetSchedule handles POST /admin/jobs/{name}/reset.
func (h *JobsHandler) ResetSchedule(w http.ResponseWriter, r *http.Request) {
	lang := middleware.GetLang(r)
	name := chi.URLParam(r, "name")

	if err := h.registry.ResetSchedule(name); err != nil {
		h.logger.Error("failed to reset schedule", "error", err, "name", name)
		flashError(w, r, h.renderer, jobsPath, tr(lang, "jobs.not_found"))
		return
	}

	h.logger.Info("job schedule reset", "name", name, "reset_by", middleware.GetAccountName(r))
	flashSuccess(w, r, h.renderer, jobsPath, tr(lang, "jobs.updated", tr(lang, "jobs."+name)))
}
