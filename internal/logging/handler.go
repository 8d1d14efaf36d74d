// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package logging provides a slog handler that keeps the most recent
// warnings and errors in memory so the admin dashboard can show them.
package logging

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// Entry categories.
const (
	CategoryAuth    = "auth"
	CategoryRemote  = "remote"
	CategoryScreen  = "screen"
	CategoryContact = "contact"
	CategoryExport  = "export"
	CategorySystem  = "system"
)

// DefaultCapacity is the number of entries kept by NewRecentHandler.
const DefaultCapacity = 50

// Entry is one captured log record.
type Entry struct {
	Time     time.Time
	Level    slog.Level
	Category string
	Message  string
	Attrs    map[string]string
}

// Ring is a bounded, concurrency-safe buffer of entries.
type Ring struct {
	mu      sync.Mutex
	entries []Entry
	next    int
	full    bool
}

// NewRing creates a ring holding up to capacity entries.
func NewRing(capacity int) *Ring {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Ring{entries: make([]Entry, capacity)}
}

func (r *Ring) add(e Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[r.next] = e
	r.next = (r.next + 1) % len(r.entries)
	if r.next == 0 {
		r.full = true
	}
}

// Recent returns up to n entries, newest first. n <= 0 returns all of them.
func (r *Ring) Recent(n int) []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	size := r.next
	if r.full {
		size = len(r.entries)
	}
	if n <= 0 || n > size {
		n = size
	}
	out := make([]Entry, 0, n)
	for i := 1; i <= n; i++ {
		idx := (r.next - i + len(r.entries)) % len(r.entries)
		out = append(out, r.entries[idx])
	}
	return out
}

// RecentHandler is a slog.Handler that wraps another handler and also keeps
// WARN and ERROR level records in a Ring.
type RecentHandler struct {
	inner slog.Handler
	ring  *Ring
	attrs []slog.Attr
	group string
	level slog.Level // Minimum level to capture (default: WARN)
}

// NewRecentHandler creates a RecentHandler that wraps the given handler.
// Logs at WARN level and above will be written to both the wrapped handler and ring.
func NewRecentHandler(inner slog.Handler, ring *Ring) *RecentHandler {
	return NewRecentHandlerWithLevel(inner, ring, slog.LevelWarn)
}

// NewRecentHandlerWithLevel creates a RecentHandler with a custom minimum level.
func NewRecentHandlerWithLevel(inner slog.Handler, ring *Ring, level slog.Level) *RecentHandler {
	return &RecentHandler{inner: inner, ring: ring, level: level}
}

// Enabled implements slog.Handler.
func (h *RecentHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (h *RecentHandler) Handle(ctx context.Context, r slog.Record) error {
	// Always forward to the inner handler first
	if err := h.inner.Handle(ctx, r); err != nil {
		return err
	}

	if r.Level >= h.level {
		h.ring.add(Entry{
			Time:     r.Time,
			Level:    r.Level,
			Category: h.extractCategory(r),
			Message:  r.Message,
			Attrs:    h.extractAttrs(r),
		})
	}

	return nil
}

// WithAttrs implements slog.Handler.
func (h *RecentHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.inner = h.inner.WithAttrs(attrs)
	clone.attrs = append(append([]slog.Attr{}, h.attrs...), h.qualify(attrs)...)
	return &clone
}

// WithGroup implements slog.Handler.
func (h *RecentHandler) WithGroup(name string) slog.Handler {
	clone := *h
	clone.inner = h.inner.WithGroup(name)
	if h.group != "" {
		clone.group = h.group + "." + name
	} else {
		clone.group = name
	}
	return &clone
}

func (h *RecentHandler) qualify(attrs []slog.Attr) []slog.Attr {
	if h.group == "" {
		return attrs
	}
	out := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		out[i] = slog.Attr{Key: h.group + "." + a.Key, Value: a.Value}
	}
	return out
}

// extractCategory looks for a "category" attribute, then infers one from
// well-known attributes and the message.
func (h *RecentHandler) extractCategory(r slog.Record) string {
	var category string
	keys := make(map[string]bool)

	visit := func(a slog.Attr) bool {
		if a.Key == "category" {
			category = a.Value.String()
			return false
		}
		keys[a.Key] = true
		return true
	}
	for _, a := range h.attrs {
		if !visit(a) {
			break
		}
	}
	if category == "" {
		r.Attrs(visit)
	}
	if category != "" {
		return category
	}

	msg := strings.ToLower(r.Message)
	switch {
	case strings.Contains(msg, "login") || strings.Contains(msg, "logout") || strings.Contains(msg, "auth"):
		return CategoryAuth
	case keys["screen"]:
		return CategoryScreen
	case keys["status"] || strings.Contains(msg, "api") || strings.Contains(msg, "backend"):
		return CategoryRemote
	case strings.Contains(msg, "contact"):
		return CategoryContact
	case strings.Contains(msg, "export"):
		return CategoryExport
	default:
		return CategorySystem
	}
}

// extractAttrs flattens handler and record attributes into strings.
func (h *RecentHandler) extractAttrs(r slog.Record) map[string]string {
	out := make(map[string]string, len(h.attrs)+r.NumAttrs())
	for _, a := range h.attrs {
		if a.Key != "category" {
			out[a.Key] = a.Value.String()
		}
	}
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == "category" {
			return true // Skip category, already extracted
		}
		key := a.Key
		if h.group != "" {
			key = h.group + "." + key
		}
		out[key] = a.Value.String()
		return true
	})
	return out
}
