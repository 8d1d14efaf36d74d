// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/makerskills/makerskills-web/internal/store"
)

var (
	// ErrJobNotFound is returned for a name no job was added under.
	ErrJobNotFound = errors.New("job not found")
	// ErrNotManual is returned when triggering a job that only runs on schedule.
	ErrNotManual = errors.New("manual trigger not available")
)

// overrideTimeout bounds reads and writes of saved schedules.
const overrideTimeout = 5 * time.Second

// JobInfo is the back-office view of a job.
type JobInfo struct {
	Name            string
	Description     string
	DefaultSchedule string
	Schedule        string
	IsOverridden    bool
	LastRun         time.Time
	LastDuration    time.Duration
	LastError       string
	Runs            int
	NextRun         time.Time
	CanTrigger      bool
}

// entry is a job together with its cron entry and run history.
type entry struct {
	job      Job
	schedule string
	id       cron.EntryID

	lastRun  time.Time
	lastTook time.Duration
	lastErr  string
	runs     int
}

// Registry owns the cron entries of the jobs and their saved schedule
// overrides, and records the outcome of every run.
type Registry struct {
	cron      *cron.Cron
	overrides *store.Queries
	logger    *slog.Logger

	mu      sync.RWMutex
	entries map[string]*entry
}

// NewRegistry creates a registry adding jobs to c. A nil db keeps schedule
// changes in memory only.
func NewRegistry(db *sql.DB, c *cron.Cron, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Registry{
		cron:    c,
		logger:  logger,
		entries: make(map[string]*entry),
	}
	if db != nil {
		r.overrides = store.New(db)
	}
	return r
}

// GetEffectiveSchedule returns the saved override for name, or def when none
// is saved or it cannot be read.
func (r *Registry) GetEffectiveSchedule(name, def string) string {
	if r.overrides == nil {
		return def
	}
	ctx, cancel := context.WithTimeout(context.Background(), overrideTimeout)
	defer cancel()

	saved, err := r.overrides.GetSchedulerOverride(ctx, name)
	if err != nil {
		r.logger.Warn("failed to read schedule override", "job", name, "error", err)
		return def
	}
	if saved == "" {
		return def
	}
	return saved
}

// Add schedules job under its saved override, if a valid one exists.
func (r *Registry) Add(job Job) error {
	if job.Name == "" || job.Run == nil {
		return errors.New("job name and run function are required")
	}
	if err := ValidateSchedule(job.Schedule); err != nil {
		return err
	}

	schedule := r.GetEffectiveSchedule(job.Name, job.Schedule)
	if schedule != job.Schedule {
		if err := ValidateSchedule(schedule); err != nil {
			r.logger.Warn("ignoring invalid schedule override", "job", job.Name, "error", err)
			schedule = job.Schedule
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.entries[job.Name]; dup {
		return fmt.Errorf("job %s added twice", job.Name)
	}
	e := &entry{job: job}
	if err := r.schedule(e, schedule); err != nil {
		return err
	}
	r.entries[job.Name] = e
	r.logger.Debug("job scheduled", "job", job.Name, "schedule", schedule)
	return nil
}

// schedule replaces the cron entry of e. Callers hold mu.
func (r *Registry) schedule(e *entry, spec string) error {
	name := e.job.Name
	id, err := r.cron.AddFunc(spec, func() { _ = r.exec(name) })
	if err != nil {
		return fmt.Errorf("scheduling %s: %w", name, err)
	}
	if e.id != 0 {
		r.cron.Remove(e.id)
	}
	e.id, e.schedule = id, spec
	return nil
}

// exec runs the job called name once and records its outcome.
func (r *Registry) exec(name string) error {
	r.mu.RLock()
	e, ok := r.entries[name]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrJobNotFound, name)
	}
	job := e.job

	timeout := job.Timeout
	if timeout <= 0 {
		timeout = time.Minute
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	started := time.Now()
	err := job.Run(ctx)
	took := time.Since(started)

	r.mu.Lock()
	e.lastRun, e.lastTook = started, took
	e.runs++
	e.lastErr = ""
	if err != nil {
		e.lastErr = err.Error()
	}
	r.mu.Unlock()

	if err != nil {
		r.logger.Error("scheduled job failed", "category", "system", "job", name, "error", err)
		return err
	}
	r.logger.Debug("scheduled job finished", "job", name, "took", took)
	return nil
}

// List returns the jobs sorted by name.
func (r *Registry) List() []JobInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]JobInfo, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, JobInfo{
			Name:            e.job.Name,
			Description:     e.job.Description,
			DefaultSchedule: e.job.Schedule,
			Schedule:        e.schedule,
			IsOverridden:    e.schedule != e.job.Schedule,
			LastRun:         e.lastRun,
			LastDuration:    e.lastTook,
			LastError:       e.lastErr,
			Runs:            e.runs,
			NextRun:         r.cron.Entry(e.id).Next,
			CanTrigger:      e.job.Manual,
		})
	}
	slices.SortFunc(out, func(a, b JobInfo) int { return strings.Compare(a.Name, b.Name) })
	return out
}

// TriggerNow runs a manual job immediately and returns its error.
func (r *Registry) TriggerNow(name string) error {
	r.mu.RLock()
	e, ok := r.entries[name]
	r.mu.RUnlock()
	switch {
	case !ok:
		return fmt.Errorf("%w: %s", ErrJobNotFound, name)
	case !e.job.Manual:
		return fmt.Errorf("%w: %s", ErrNotManual, name)
	}

	r.logger.Info("manually triggering job", "category", "system", "job", name)
	return r.exec(name)
}

// UpdateSchedule moves a job to spec and saves it as an override.
func (r *Registry) UpdateSchedule(name, spec string) error {
	if err := ValidateSchedule(spec); err != nil {
		return err
	}
	if err := r.reschedule(name, spec); err != nil {
		return err
	}
	r.saveOverride(name, func(ctx context.Context, q *store.Queries) error {
		return q.UpsertSchedulerOverride(ctx, name, spec)
	})
	r.logger.Info("job schedule updated", "category", "system", "job", name, "schedule", spec)
	return nil
}

// ResetSchedule drops the override of a job and restores its default schedule.
func (r *Registry) ResetSchedule(name string) error {
	r.mu.RLock()
	e, ok := r.entries[name]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrJobNotFound, name)
	}
	if err := r.reschedule(name, e.job.Schedule); err != nil {
		return err
	}
	r.saveOverride(name, func(ctx context.Context, q *store.Queries) error {
		return q.DeleteSchedulerOverride(ctx, name)
	})
	r.logger.Info("job schedule reset", "category", "system", "job", name, "schedule", e.job.Schedule)
	return nil
}

func (r *Registry) reschedule(name, spec string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrJobNotFound, name)
	}
	if e.schedule == spec {
		return nil
	}
	return r.schedule(e, spec)
}

// saveOverride persists a schedule change; failures only cost the change
// surviving a restart.
func (r *Registry) saveOverride(name string, save func(context.Context, *store.Queries) error) {
	if r.overrides == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), overrideTimeout)
	defer cancel()
	if err := save(ctx, r.overrides); err != nil {
		r.logger.Error("failed to save schedule override", "job", name, "error", err)
	}
}

var scheduleParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// ValidateSchedule checks a five-field cron expression or an @descriptor.
func ValidateSchedule(schedule string) error {
	if _, err := scheduleParser.Parse(schedule); err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", schedule, err)
	}
	return nil
}
