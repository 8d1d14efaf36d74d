// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	logger := testLogger()

	s := New(nil, logger)
	if s == nil {
		t.Fatal("New() returned nil")
	}
	if s.cron == nil {
		t.Error("New() scheduler has nil cron")
	}
	if s.Registry() == nil {
		t.Error("New() scheduler has nil registry")
	}
}

func TestScheduler_StartStop(t *testing.T) {
	s := New(nil, testLogger())
	if err := s.Add(Job{Name: "noop", Schedule: "@every 1h", Run: func(context.Context) error { return nil }}); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	s.Start()
	s.Stop()
}

func TestSchedulerAddValidation(t *testing.T) {
	s := New(nil, testLogger())
	run := func(context.Context) error { return nil }

	tests := []struct {
		name string
		job  Job
	}{
		{"missing name", Job{Schedule: "@hourly", Run: run}},
		{"missing run", Job{Name: "x", Schedule: "@hourly"}},
		{"bad schedule", Job{Name: "x", Schedule: "sometimes", Run: run}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := s.Add(tt.job); err == nil {
				t.Error("Add() should fail")
			}
		})
	}
}

func TestSchedulerManualRunRecordsOutcome(t *testing.T) {
	s := New(nil, testLogger())

	fail := true
	err := s.Add(Job{
		Name:     "backend-probe",
		Schedule: "@every 1h",
		Manual:   true,
		Run: func(ctx context.Context) error {
			if _, ok := ctx.Deadline(); !ok {
				t.Error("run context should carry a deadline")
			}
			if fail {
				return errors.New("backend down")
			}
			return nil
		},
	})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	if err := s.Registry().TriggerNow("backend-probe"); err == nil {
		t.Error("TriggerNow() should return the job error")
	}
	job := s.Registry().List()[0]
	if job.Runs != 1 || job.LastError != "backend down" || job.LastRun.IsZero() {
		t.Errorf("after failed run: %+v", job)
	}

	fail = false
	if err := s.Registry().TriggerNow("backend-probe"); err != nil {
		t.Fatalf("TriggerNow() error = %v", err)
	}
	job = s.Registry().List()[0]
	if job.Runs != 2 || job.LastError != "" {
		t.Errorf("after successful run: runs = %d, last error = %q", job.Runs, job.LastError)
	}
}

func TestSchedulerUsesSavedOverride(t *testing.T) {
	db := testDB(t)
	if _, err := db.Exec("INSERT INTO scheduler_overrides (name, override_schedule) VALUES (?, ?)", "workspace-sweep", "@every 2m"); err != nil {
		t.Fatal(err)
	}

	s := New(db, testLogger())
	if err := s.Add(Job{Name: "workspace-sweep", Schedule: "@every 5m", Run: func(context.Context) error { return nil }}); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	job := s.Registry().List()[0]
	if job.Schedule != "@every 2m" || job.DefaultSchedule != "@every 5m" || !job.IsOverridden {
		t.Errorf("job = %+v, want override @every 2m over default @every 5m", job)
	}
}

func TestProbe(t *testing.T) {
	var fail error
	p := NewProbe(func(context.Context) error { return fail })

	if st := p.Status(); st.Checked {
		t.Error("Status() before the first run should not be checked")
	}

	clock := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	p.now = func() time.Time {
		clock = clock.Add(20 * time.Millisecond)
		return clock
	}

	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	st := p.Status()
	if !st.Checked || !st.OK || st.Error != "" || st.Latency != 20*time.Millisecond {
		t.Errorf("healthy status = %+v", st)
	}

	fail = errors.New("connection refused")
	if err := p.Run(context.Background()); err == nil {
		t.Error("Run() should return the check error")
	}
	st = p.Status()
	if st.OK || st.Error != "connection refused" {
		t.Errorf("failing status = %+v", st)
	}
}
