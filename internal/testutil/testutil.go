// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package testutil provides shared test helpers for the Maker Skills site.
package testutil

import (
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/makerskills/makerskills-web/internal/store"
)

// TestLogger creates a silent test logger that only outputs warnings and errors.
func TestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
}

// TestLoggerSilent creates a completely silent test logger (error level only).
func TestLoggerSilent() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

// TestDB creates a temporary database with migrations applied.
// The database is closed when the test ends.
func TestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := store.NewDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := store.Migrate(context.Background(), db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return db
}

// Request is one call received by a Backend.
type Request struct {
	Method string
	Path   string
	Auth   string
	Body   string
}

// Backend is a fake API server. Routes answer "METHOD /path" with a status
// and a JSON payload wrapped in the {"data": ...} envelope.
type Backend struct {
	Server *httptest.Server

	mu       sync.Mutex
	routes   map[string]route
	requests []Request
}

type route struct {
	status int
	data   any
	raw    string
}

// NewBackend starts a fake API server closed at the end of the test.
func NewBackend(t *testing.T) *Backend {
	t.Helper()
	b := &Backend{routes: make(map[string]route)}
	b.Server = httptest.NewServer(http.HandlerFunc(b.serve))
	t.Cleanup(b.Server.Close)
	return b
}

// URL returns the base URL of the server.
func (b *Backend) URL() string { return b.Server.URL }

// Handle answers method and path with status and data in the envelope.
func (b *Backend) Handle(method, path string, status int, data any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.routes[method+" "+path] = route{status: status, data: data}
}

// HandleRaw answers method and path with status and a literal body.
func (b *Backend) HandleRaw(method, path string, status int, body string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.routes[method+" "+path] = route{status: status, raw: body}
}

// Requests returns the calls received so far.
func (b *Backend) Requests() []Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Request(nil), b.requests...)
}

// Count returns how many calls matched method and path.
func (b *Backend) Count(method, path string) int {
	n := 0
	for _, r := range b.Requests() {
		if r.Method == method && r.Path == path {
			n++
		}
	}
	return n
}

func (b *Backend) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	b.mu.Lock()
	b.requests = append(b.requests, Request{
		Method: r.Method,
		Path:   r.URL.Path,
		Auth:   r.Header.Get("Authorization"),
		Body:   string(body),
	})
	rt, ok := b.routes[r.Method+" "+r.URL.Path]
	b.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"success":false,"message":"not found"}`))
		return
	}
	w.WriteHeader(rt.status)
	if rt.raw != "" {
		_, _ = w.Write([]byte(rt.raw))
		return
	}
	if rt.status >= http.StatusBadRequest {
		msg, _ := rt.data.(string)
		_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "message": msg})
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "data": rt.data})
}
