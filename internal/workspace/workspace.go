// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package workspace holds the per-session list state of the back-office.
// Each signed-in administrator owns one Workspace; it carries one screen
// per managed resource and travels with the request context.
package workspace

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/makerskills/makerskills-web/internal/collection"
	"github.com/makerskills/makerskills-web/internal/screen"
)

// Workspace is the state of one admin session.
type Workspace struct {
	ID string

	mu       sync.Mutex
	screens  map[string]any
	lastSeen time.Time
}

func newWorkspace(id string, now time.Time) *Workspace {
	return &Workspace{ID: id, screens: make(map[string]any), lastSeen: now}
}

// ScreenFor returns the workspace screen called name, creating it with build
// on first use. A name is bound to one entity type for the life of the workspace.
func ScreenFor[T collection.Entity](ws *Workspace, name string, build func() *screen.Screen[T]) *screen.Screen[T] {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	if s, ok := ws.screens[name].(*screen.Screen[T]); ok {
		return s
	}
	s := build()
	ws.screens[name] = s
	return s
}

// Screens returns the names of the screens opened so far.
func (ws *Workspace) Screens() []string {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	names := make([]string, 0, len(ws.screens))
	for name := range ws.screens {
		names = append(names, name)
	}
	return names
}

// Reset drops every screen so they reload on next use.
func (ws *Workspace) Reset() {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	clear(ws.screens)
}

func (ws *Workspace) touch(now time.Time) {
	ws.mu.Lock()
	ws.lastSeen = now
	ws.mu.Unlock()
}

func (ws *Workspace) idleSince(now time.Time) time.Duration {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return now.Sub(ws.lastSeen)
}

// Manager owns the workspaces of all sessions.
type Manager struct {
	mu     sync.Mutex
	items  map[string]*Workspace
	idle   time.Duration
	now    func() time.Time
	logger *slog.Logger
}

// NewManager creates a manager that evicts workspaces unused for idle.
// A zero idle keeps workspaces until they are dropped.
func NewManager(idle time.Duration, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		items:  make(map[string]*Workspace),
		idle:   idle,
		now:    time.Now,
		logger: logger,
	}
}

// Create starts a workspace with a fresh id.
func (m *Manager) Create() *Workspace {
	m.mu.Lock()
	defer m.mu.Unlock()
	ws := newWorkspace(uuid.NewString(), m.now())
	m.items[ws.ID] = ws
	m.logger.Debug("workspace created", "workspace", ws.ID)
	return ws
}

// Get returns the workspace with id and marks it as used.
func (m *Manager) Get(id string) (*Workspace, bool) {
	m.mu.Lock()
	ws, ok := m.items[id]
	m.mu.Unlock()
	if ok {
		ws.touch(m.now())
	}
	return ws, ok
}

// Ensure returns the workspace with id, recreating an empty one when it was
// evicted or the process restarted while the session survived.
func (m *Manager) Ensure(id string) *Workspace {
	if id == "" {
		return m.Create()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if ws, ok := m.items[id]; ok {
		ws.touch(m.now())
		return ws
	}
	ws := newWorkspace(id, m.now())
	m.items[id] = ws
	m.logger.Debug("workspace restored", "workspace", id)
	return ws
}

// Drop discards the workspace with id.
func (m *Manager) Drop(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, id)
}

// Sweep evicts idle workspaces and returns how many were removed.
func (m *Manager) Sweep() int {
	if m.idle <= 0 {
		return 0
	}
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for id, ws := range m.items {
		if ws.idleSince(now) > m.idle {
			delete(m.items, id)
			removed++
		}
	}
	if removed > 0 {
		m.logger.Info("idle workspaces evicted", "count", removed, "remaining", len(m.items))
	}
	return removed
}

// Len returns the number of live workspaces.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

type ctxKey struct{}

// NewContext returns ctx carrying ws.
func NewContext(ctx context.Context, ws *Workspace) context.Context {
	return context.WithValue(ctx, ctxKey{}, ws)
}

// FromContext returns the workspace carried by ctx.
func FromContext(ctx context.Context) (*Workspace, bool) {
	ws, ok := ctx.Value(ctxKey{}).(*Workspace)
	return ws, ok
}
