// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs the periodic housekeeping jobs of the server:
// idle workspace eviction, the backend availability probe and pruning.
package scheduler

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Job is one periodic task.
type Job struct {
	Name        string
	Description string
	Schedule    string
	// Timeout bounds one run; zero means one minute.
	Timeout time.Duration
	Run     func(ctx context.Context) error
	// Manual allows running the job from the back-office.
	Manual bool
}

// Scheduler owns the cron instance and the job registry.
type Scheduler struct {
	cron     *cron.Cron
	registry *Registry
	logger   *slog.Logger
}

// New creates a scheduler. db stores schedule overrides and may be nil.
func New(db *sql.DB, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	cronLogger := cron.PrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelWarn))
	c := cron.New(cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)))
	return &Scheduler{
		cron:     c,
		registry: NewRegistry(db, c, logger),
		logger:   logger,
	}
}

// Registry returns the job registry.
func (s *Scheduler) Registry() *Registry {
	return s.registry
}

// Add schedules job with its saved override, if any.
func (s *Scheduler) Add(job Job) error {
	return s.registry.Add(job)
}

// Start begins running the registered jobs.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()))
}

// Stop gracefully stops the scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}
