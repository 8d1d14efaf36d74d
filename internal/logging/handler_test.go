// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package logging

import (
	"context"
	"errors"
	"log/slog"
	"testing"
)

// discardHandler is a slog.Handler that discards all records.
type discardHandler struct{}

func (h discardHandler) Enabled(context.Context, slog.Level) bool  { return true }
func (h discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (h discardHandler) WithAttrs([]slog.Attr) slog.Handler        { return h }
func (h discardHandler) WithGroup(string) slog.Handler             { return h }

func newLogger(capacity int) (*slog.Logger, *Ring) {
	ring := NewRing(capacity)
	return slog.New(NewRecentHandler(discardHandler{}, ring)), ring
}

func TestRecentHandler_CapturesWarnAndError(t *testing.T) {
	logger, ring := newLogger(10)

	logger.Info("server started")
	logger.Debug("noise")
	logger.Warn("slow response", "path", "/formations")
	logger.Error("failed to load", "error", errors.New("boom"))

	entries := ring.Recent(0)
	if len(entries) != 2 {
		t.Fatalf("captured %d entries, want 2", len(entries))
	}
	if entries[0].Message != "failed to load" || entries[0].Level != slog.LevelError {
		t.Errorf("newest entry = %+v", entries[0])
	}
	if entries[0].Attrs["error"] != "boom" {
		t.Errorf("error attr = %q, want boom", entries[0].Attrs["error"])
	}
	if entries[1].Attrs["path"] != "/formations" {
		t.Errorf("path attr = %q", entries[1].Attrs["path"])
	}
}

func TestRecentHandler_CustomLevel(t *testing.T) {
	ring := NewRing(10)
	logger := slog.New(NewRecentHandlerWithLevel(discardHandler{}, ring, slog.LevelError))

	logger.Warn("ignored")
	logger.Error("kept")

	entries := ring.Recent(0)
	if len(entries) != 1 || entries[0].Message != "kept" {
		t.Errorf("entries = %+v, want only the error", entries)
	}
}

func TestRing_Wraps(t *testing.T) {
	logger, ring := newLogger(3)
	for _, msg := range []string{"a", "b", "c", "d", "e"} {
		logger.Warn(msg)
	}

	entries := ring.Recent(0)
	if len(entries) != 3 {
		t.Fatalf("len = %d, want 3", len(entries))
	}
	want := []string{"e", "d", "c"}
	for i, e := range entries {
		if e.Message != want[i] {
			t.Errorf("entries[%d] = %q, want %q", i, e.Message, want[i])
		}
	}

	if got := ring.Recent(2); len(got) != 2 || got[1].Message != "d" {
		t.Errorf("Recent(2) = %+v", got)
	}
}

func TestRecentHandler_CategoryInference(t *testing.T) {
	tests := []struct {
		name string
		log  func(*slog.Logger)
		want string
	}{
		{"explicit", func(l *slog.Logger) { l.Warn("anything", "category", "custom") }, "custom"},
		{"auth", func(l *slog.Logger) { l.Warn("login failed", "email", "x@y.z") }, CategoryAuth},
		{"screen attr", func(l *slog.Logger) { l.With("screen", "formations").Error("submit failed") }, CategoryScreen},
		{"remote status", func(l *slog.Logger) { l.Error("request failed", "status", 500) }, CategoryRemote},
		{"contact", func(l *slog.Logger) { l.Warn("contact message rejected") }, CategoryContact},
		{"export", func(l *slog.Logger) { l.Error("export failed") }, CategoryExport},
		{"system", func(l *slog.Logger) { l.Error("disk full") }, CategorySystem},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, ring := newLogger(5)
			tt.log(logger)
			entries := ring.Recent(1)
			if len(entries) != 1 {
				t.Fatal("no entry captured")
			}
			if entries[0].Category != tt.want {
				t.Errorf("Category = %q, want %q", entries[0].Category, tt.want)
			}
			if _, ok := entries[0].Attrs["category"]; ok {
				t.Error("category must not be repeated in attrs")
			}
		})
	}
}

func TestRecentHandler_WithAttrsAndGroup(t *testing.T) {
	logger, ring := newLogger(5)

	logger.With("screen", "orders").WithGroup("req").Warn("slow", "ms", 900)

	e := ring.Recent(1)[0]
	if e.Attrs["screen"] != "orders" {
		t.Errorf("screen attr = %q", e.Attrs["screen"])
	}
	if e.Attrs["req.ms"] != "900" {
		t.Errorf("grouped attr = %q, attrs = %v", e.Attrs["req.ms"], e.Attrs)
	}
}
