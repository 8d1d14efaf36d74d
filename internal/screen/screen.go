// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package screen composes a data source, the collection store, the filter,
// the paginator, the entity form and the detail viewer into the state of one
// admin list screen.
package screen

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/makerskills/makerskills-web/internal/collection"
	"github.com/makerskills/makerskills-web/internal/filter"
	"github.com/makerskills/makerskills-web/internal/form"
	"github.com/makerskills/makerskills-web/internal/paging"
	"github.com/makerskills/makerskills-web/internal/remote"
	"github.com/makerskills/makerskills-web/internal/viewer"
)

// ErrNotFound is returned when an id is not in the collection.
var ErrNotFound = errors.New("entity not found in collection")

// Source is where a screen loads and persists its entities.
// remote.Resource and MemorySource both implement it.
type Source[T any] interface {
	List(ctx context.Context) ([]T, error)
	form.Source[T]
	Delete(ctx context.Context, id string) error
}

// Config describes one screen.
type Config[T collection.Entity] struct {
	Name    string
	Source  Source[T]
	Filter  filter.Spec[T]
	Form    form.Config[T]
	PerPage int
	Logger  *slog.Logger
}

// Screen is the list state of one resource for one admin session.
type Screen[T collection.Entity] struct {
	mu sync.Mutex

	name   string
	source Source[T]
	spec   filter.Spec[T]
	logger *slog.Logger

	store  *collection.Store[T]
	form   *form.Form[T]
	viewer *viewer.Viewer[T]

	filter   filter.State
	page     int
	perPage  int
	inflight int
	loaded   bool
	loadErr  error
	loadedAt time.Time
}

// New creates an empty, unloaded screen.
func New[T collection.Entity](cfg Config[T]) *Screen[T] {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	perPage := cfg.PerPage
	if perPage <= 0 {
		perPage = paging.DefaultPerPage
	}
	return &Screen[T]{
		name:    cfg.Name,
		source:  cfg.Source,
		spec:    cfg.Filter,
		logger:  logger.With("screen", cfg.Name),
		store:   collection.New[T](),
		form:    form.New(cfg.Form),
		viewer:  viewer.New[T](),
		filter:  filter.State{}.Normalized(),
		page:    1,
		perPage: perPage,
	}
}

// Name returns the resource name.
func (s *Screen[T]) Name() string { return s.name }

// Load fetches the full list and replaces the collection. On failure the
// collection keeps its previous contents and the error is kept for display.
// Overlapping loads are not de-duplicated; the last one to finish wins.
func (s *Screen[T]) Load(ctx context.Context) error {
	s.mu.Lock()
	s.inflight++
	s.mu.Unlock()

	items, err := s.source.List(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inflight--
	if err != nil {
		s.loadErr = err
		s.logger.Warn("failed to load list", "error", err)
		return err
	}
	s.store.SetAll(items)
	s.loaded = true
	s.loadErr = nil
	s.loadedAt = time.Now()
	s.clampLocked()
	return nil
}

// EnsureLoaded loads the list the first time the screen is opened.
func (s *Screen[T]) EnsureLoaded(ctx context.Context) error {
	s.mu.Lock()
	loaded := s.loaded
	s.mu.Unlock()
	if loaded {
		return nil
	}
	return s.Load(ctx)
}

// SetFilter changes the criteria and re-clamps the current page.
func (s *Screen[T]) SetFilter(st filter.State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter = st.Normalized()
	s.clampLocked()
}

// SetPage moves to page n, clamped to the available pages.
func (s *Screen[T]) SetPage(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.page = n
	s.clampLocked()
}

// SetPerPage changes the page size and re-clamps the current page.
func (s *Screen[T]) SetPerPage(n int) {
	if n <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.perPage = n
	s.clampLocked()
}

// Filtered returns every entity matching the current filter, in collection order.
func (s *Screen[T]) Filtered() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return filter.Apply(s.store.All(), s.filter, s.spec)
}

// Items returns the whole collection, ignoring the filter.
func (s *Screen[T]) Items() []T {
	return s.store.All()
}

// Get returns the entity with id from the collection.
func (s *Screen[T]) Get(id string) (T, bool) {
	return s.store.Get(id)
}

func (s *Screen[T]) clampLocked() {
	count := len(filter.Apply(s.store.All(), s.filter, s.spec))
	s.page = paging.ClampPage(s.page, paging.TotalPages(count, s.perPage))
}

// View is a consistent snapshot of everything a list page renders.
type View[T collection.Entity] struct {
	Name       string
	Page       paging.Page[T]
	Filter     filter.State
	Total      int
	Loading    bool
	Loaded     bool
	LoadErr    error
	LoadedAt   time.Time
	FormMode   form.Mode
	Draft      T
	EditingID  string
	Errors     form.Errors
	SubmitErr  error
	Viewing    T
	ViewerOpen bool
}

// View returns the current page of the filtered collection together with
// form and viewer state.
func (s *Screen[T]) View() View[T] {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := s.store.All()
	page := paging.Build(filter.Apply(all, s.filter, s.spec), s.page, s.perPage)
	s.page = page.Number

	viewing, open := s.viewer.Current()
	return View[T]{
		Name:       s.name,
		Page:       page,
		Filter:     s.filter,
		Total:      len(all),
		Loading:    s.inflight > 0,
		Loaded:     s.loaded,
		LoadErr:    s.loadErr,
		LoadedAt:   s.loadedAt,
		FormMode:   s.form.Mode(),
		Draft:      s.form.Draft(),
		EditingID:  s.form.EditingID(),
		Errors:     s.form.Errors(),
		SubmitErr:  s.form.SubmitError(),
		Viewing:    viewing,
		ViewerOpen: open,
	}
}

// Add opens the form on a blank draft.
func (s *Screen[T]) Add() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.form.Add()
}

// Edit opens the form on the entity with id.
func (s *Screen[T]) Edit(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.store.Get(id)
	if !ok {
		return ErrNotFound
	}
	s.form.Edit(e)
	return nil
}

// Cancel closes the form without touching the collection.
func (s *Screen[T]) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.form.Cancel()
}

// UpdateDraft applies fn to the form draft.
func (s *Screen[T]) UpdateDraft(fn func(*T)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.form.Update(fn)
}

// Attach sets the file sent with the next submit.
func (s *Screen[T]) Attach(file *remote.File) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.form.Attach(file)
}

// Validate checks the draft and returns the messages.
func (s *Screen[T]) Validate() form.Errors {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.form.Validate()
}

// Submit persists the draft. The lock is released for the backend round
// trip, during which the screen reports Loading.
func (s *Screen[T]) Submit(ctx context.Context) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	mode := s.form.Mode()
	saved, err := s.form.Submit(ctx, unlocked[T]{s}, s.store)
	if err != nil {
		if _, invalid := form.AsErrors(err); !invalid && !errors.Is(err, form.ErrClosed) {
			s.logger.Warn("failed to save entity", "mode", mode.String(), "error", err)
		}
		return saved, err
	}
	s.clampLocked()
	s.logger.Info("entity saved", "mode", mode.String(), "id", saved.EntityID())
	return saved, nil
}

// unlocked forwards form calls to the source with the screen lock released.
type unlocked[T collection.Entity] struct{ s *Screen[T] }

func (u unlocked[T]) call(fn func() (T, error)) (T, error) {
	u.s.inflight++
	u.s.mu.Unlock()
	defer func() {
		u.s.mu.Lock()
		u.s.inflight--
	}()
	return fn()
}

func (u unlocked[T]) Create(ctx context.Context, draft T) (T, error) {
	return u.call(func() (T, error) { return u.s.source.Create(ctx, draft) })
}

func (u unlocked[T]) Update(ctx context.Context, id string, patch T) (T, error) {
	return u.call(func() (T, error) { return u.s.source.Update(ctx, id, patch) })
}

func (u unlocked[T]) CreateWithFile(ctx context.Context, draft T, file *remote.File) (T, error) {
	fs, ok := u.s.source.(form.FileSource[T])
	if !ok {
		return u.Create(ctx, draft)
	}
	return u.call(func() (T, error) { return fs.CreateWithFile(ctx, draft, file) })
}

func (u unlocked[T]) UpdateWithFile(ctx context.Context, id string, patch T, file *remote.File) (T, error) {
	fs, ok := u.s.source.(form.FileSource[T])
	if !ok {
		return u.Update(ctx, id, patch)
	}
	return u.call(func() (T, error) { return fs.UpdateWithFile(ctx, id, patch, file) })
}

// Open shows the entity with id in the detail viewer.
func (s *Screen[T]) Open(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.store.Get(id)
	if !ok {
		return ErrNotFound
	}
	s.viewer.Open(e)
	return nil
}

// CloseViewer hides the detail viewer.
func (s *Screen[T]) CloseViewer() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.viewer.Close()
}

// Delete removes the entity remotely, then from the collection. A form
// editing it and a viewer showing it are closed. On failure nothing changes.
func (s *Screen[T]) Delete(ctx context.Context, id string) error {
	if err := s.source.Delete(ctx, id); err != nil {
		s.logger.Warn("failed to delete entity", "id", id, "error", err)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.store.RemoveOne(id)
	s.form.CloseIfEditing(id)
	s.viewer.Forget(id)
	s.clampLocked()
	s.logger.Info("entity deleted", "id", id)
	return nil
}
