// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package screen

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/makerskills/makerskills-web/internal/filter"
	"github.com/makerskills/makerskills-web/internal/form"
	"github.com/makerskills/makerskills-web/internal/remote"
)

type workshop struct {
	ID       string `json:"_id"`
	Title    string `json:"title"`
	Category string `json:"category"`
	Status   string `json:"status"`
}

func (w workshop) EntityID() string { return w.ID }

func withID(w workshop, id string) workshop {
	w.ID = id
	return w
}

// flakySource wraps a MemorySource and fails on demand.
type flakySource struct {
	*MemorySource[workshop]
	listErr   error
	deleteErr error
	saveErr   error
	// entered and release, when set, hold Update until release is closed.
	entered chan struct{}
	release chan struct{}
}

func (f *flakySource) List(ctx context.Context) ([]workshop, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.MemorySource.List(ctx)
}

func (f *flakySource) Create(ctx context.Context, d workshop) (workshop, error) {
	if f.saveErr != nil {
		return workshop{}, f.saveErr
	}
	return f.MemorySource.Create(ctx, d)
}

func (f *flakySource) Update(ctx context.Context, id string, d workshop) (workshop, error) {
	if f.release != nil {
		close(f.entered)
		<-f.release
	}
	if f.saveErr != nil {
		return workshop{}, f.saveErr
	}
	return f.MemorySource.Update(ctx, id, d)
}

func (f *flakySource) Delete(ctx context.Context, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	return f.MemorySource.Delete(ctx, id)
}

func seed(n int) []workshop {
	out := make([]workshop, n)
	for i := range out {
		cat := "electronics"
		if i%2 == 1 {
			cat = "woodwork"
		}
		out[i] = workshop{
			ID:       fmt.Sprintf("w%02d", i+1),
			Title:    fmt.Sprintf("Workshop %d", i+1),
			Category: cat,
			Status:   "published",
		}
	}
	return out
}

func newScreen(t *testing.T, n int) (*Screen[workshop], *flakySource) {
	t.Helper()
	src := &flakySource{MemorySource: NewMemorySource("workshops", seed(n), withID)}
	s := New(Config[workshop]{
		Name:   "workshops",
		Source: src,
		Filter: filter.Spec[workshop]{
			SearchFields: func(w workshop) []string { return []string{w.Title} },
			Categories:   func(w workshop) []string { return []string{w.Category} },
			Status:       func(w workshop) string { return w.Status },
		},
		Form: form.Config[workshop]{
			Blank: func() workshop { return workshop{Status: "draft"} },
			Validate: func(w workshop) form.Errors {
				errs := form.Errors{}
				if strings.TrimSpace(w.Title) == "" {
					errs.Add("title", "Title is required")
				}
				return errs
			},
		},
		PerPage: 10,
	})
	require.NoError(t, s.Load(context.Background()))
	return s, src
}

func TestLoad(t *testing.T) {
	s, _ := newScreen(t, 3)
	v := s.View()
	assert.True(t, v.Loaded)
	assert.False(t, v.Loading)
	assert.Equal(t, 3, v.Total)
	assert.Len(t, v.Page.Items, 3)
}

func TestLoadFailureKeepsCollection(t *testing.T) {
	s, src := newScreen(t, 3)
	src.listErr = &remote.TransportError{Method: "GET", URL: "/workshops", Err: errors.New("refused")}

	err := s.Load(context.Background())
	require.Error(t, err)

	v := s.View()
	assert.Equal(t, 3, v.Total, "previous contents are kept")
	assert.Error(t, v.LoadErr)

	src.listErr = nil
	require.NoError(t, s.Load(context.Background()))
	assert.NoError(t, s.View().LoadErr)
}

func TestEnsureLoadedOnlyOnce(t *testing.T) {
	s, src := newScreen(t, 2)
	src.listErr = errors.New("should not be called")
	assert.NoError(t, s.EnsureLoaded(context.Background()))
}

func TestFilterReclampsPage(t *testing.T) {
	s, _ := newScreen(t, 45)
	s.SetPage(5)
	assert.Equal(t, 5, s.View().Page.Number)

	s.SetFilter(filter.State{Category: "electronics"})
	v := s.View()
	assert.Equal(t, 23, v.Page.TotalItems)
	assert.Equal(t, 3, v.Page.Number)

	s.SetFilter(filter.State{Search: "no such workshop"})
	v = s.View()
	assert.Equal(t, 1, v.Page.Number)
	assert.Equal(t, 0, v.Page.TotalPages)
	assert.Empty(t, v.Page.Items)
}

func TestPerPageReclamps(t *testing.T) {
	s, _ := newScreen(t, 45)
	s.SetPage(5)
	s.SetPerPage(20)
	v := s.View()
	assert.Equal(t, 3, v.Page.Number)
	assert.Len(t, v.Page.Items, 5)

	s.SetPerPage(0)
	assert.Equal(t, 20, s.View().Page.PerPage, "invalid size ignored")
}

func TestCreateThroughScreen(t *testing.T) {
	s, _ := newScreen(t, 2)
	s.Add()
	s.UpdateDraft(func(w *workshop) { w.Title = "Laser cutting" })

	saved, err := s.Submit(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)
	assert.Equal(t, "draft", saved.Status)

	v := s.View()
	assert.Equal(t, 3, v.Total)
	assert.Equal(t, form.Closed, v.FormMode)
	got, ok := s.Get(saved.ID)
	require.True(t, ok)
	assert.Equal(t, "Laser cutting", got.Title)
}

func TestSubmitInvalid(t *testing.T) {
	s, _ := newScreen(t, 2)
	s.Add()
	_, err := s.Submit(context.Background())
	errs, ok := form.AsErrors(err)
	require.True(t, ok)
	assert.True(t, errs.Has("title"))
	assert.Equal(t, 2, s.View().Total)
	assert.Equal(t, form.Creating, s.View().FormMode)
}

func TestSubmitRemoteFailure(t *testing.T) {
	s, src := newScreen(t, 2)
	require.NoError(t, s.Edit("w01"))
	s.UpdateDraft(func(w *workshop) { w.Title = "Renamed" })
	src.saveErr = &remote.RemoteError{Status: 500, Message: "db down"}

	_, err := s.Submit(context.Background())
	require.Error(t, err)

	v := s.View()
	assert.Equal(t, form.Editing, v.FormMode)
	assert.Equal(t, "Renamed", v.Draft.Title)
	assert.Error(t, v.SubmitErr)
	got, _ := s.Get("w01")
	assert.Equal(t, "Workshop 1", got.Title)
}

func TestEditUnknown(t *testing.T) {
	s, _ := newScreen(t, 1)
	assert.ErrorIs(t, s.Edit("missing"), ErrNotFound)
	assert.ErrorIs(t, s.Open("missing"), ErrNotFound)
}

func TestDeleteWhileEditingAndViewing(t *testing.T) {
	s, _ := newScreen(t, 3)
	require.NoError(t, s.Edit("w02"))
	require.NoError(t, s.Open("w02"))

	require.NoError(t, s.Delete(context.Background(), "w02"))

	v := s.View()
	assert.Equal(t, 2, v.Total)
	assert.Equal(t, form.Closed, v.FormMode)
	assert.False(t, v.ViewerOpen)
	_, ok := s.Get("w02")
	assert.False(t, ok)
}

func TestDeleteOtherKeepsForm(t *testing.T) {
	s, _ := newScreen(t, 3)
	require.NoError(t, s.Edit("w01"))
	require.NoError(t, s.Open("w01"))

	require.NoError(t, s.Delete(context.Background(), "w03"))

	v := s.View()
	assert.Equal(t, form.Editing, v.FormMode)
	assert.True(t, v.ViewerOpen)
}

func TestDeleteFailureLeavesState(t *testing.T) {
	s, src := newScreen(t, 3)
	src.deleteErr = &remote.RemoteError{Status: 403, Message: "Forbidden"}

	err := s.Delete(context.Background(), "w01")
	require.Error(t, err)
	assert.True(t, remote.IsUnauthorized(err))
	assert.Equal(t, 3, s.View().Total)
}

func TestDeleteNotFoundLeavesStore(t *testing.T) {
	s, src := newScreen(t, 3)
	require.NoError(t, s.Open("w02"))
	before := s.Items()
	src.deleteErr = &remote.RemoteError{Method: "DELETE", Path: "/workshops/w02", Status: 404, Message: "Workshop not found"}

	err := s.Delete(context.Background(), "w02")
	require.Error(t, err)
	assert.True(t, remote.IsNotFound(err))
	assert.Equal(t, before, s.Items())
	assert.True(t, s.View().ViewerOpen)
}

func TestPageClampedToLastPage(t *testing.T) {
	s, _ := newScreen(t, 25)
	s.SetPerPage(6)
	s.SetPage(6)

	v := s.View()
	assert.Equal(t, 5, v.Page.TotalPages)
	assert.Equal(t, 5, v.Page.Number)
	require.Len(t, v.Page.Items, 1)
	assert.Equal(t, "w25", v.Page.Items[0].ID)
}

func TestSubmitReportsLoadingDuringCall(t *testing.T) {
	s, src := newScreen(t, 2)
	require.NoError(t, s.Edit("w01"))
	s.UpdateDraft(func(w *workshop) { w.Title = "Soldering" })
	src.entered = make(chan struct{})
	src.release = make(chan struct{})

	done := make(chan error, 1)
	go func() {
		_, err := s.Submit(context.Background())
		done <- err
	}()

	<-src.entered
	v := s.View()
	assert.True(t, v.Loading)
	assert.Equal(t, form.Editing, v.FormMode)

	close(src.release)
	require.NoError(t, <-done)
	v = s.View()
	assert.False(t, v.Loading)
	assert.Equal(t, form.Closed, v.FormMode)
	got, _ := s.Get("w01")
	assert.Equal(t, "Soldering", got.Title)
}

func TestDeleteLastItemOnPageMovesBack(t *testing.T) {
	s, _ := newScreen(t, 11)
	s.SetPage(2)
	require.NoError(t, s.Delete(context.Background(), "w11"))
	v := s.View()
	assert.Equal(t, 1, v.Page.Number)
	assert.Equal(t, 1, v.Page.TotalPages)
}

func TestViewerIsSnapshot(t *testing.T) {
	s, _ := newScreen(t, 2)
	require.NoError(t, s.Open("w01"))
	require.NoError(t, s.Edit("w01"))
	s.UpdateDraft(func(w *workshop) { w.Title = "Changed" })
	_, err := s.Submit(context.Background())
	require.NoError(t, err)

	v := s.View()
	assert.True(t, v.ViewerOpen)
	assert.Equal(t, "Workshop 1", v.Viewing.Title)
}

func TestFilteredForExport(t *testing.T) {
	s, _ := newScreen(t, 25)
	s.SetFilter(filter.State{Category: "woodwork"})
	s.SetPage(2)
	assert.Len(t, s.Filtered(), 12, "export covers every page")
}
