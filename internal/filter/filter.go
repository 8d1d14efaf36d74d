// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package filter derives the visible subset of a collection from a search
// term and category/status selectors.
package filter

import (
	"net/url"
	"strings"
)

// All is the selector value that matches every entity.
const All = "all"

// Query parameter names.
const (
	ParamSearch   = "q"
	ParamCategory = "category"
	ParamStatus   = "status"
)

// State is the user's current filter selection.
type State struct {
	Search   string
	Category string
	Status   string
}

// Normalized trims the search term and maps empty selectors to All.
func (s State) Normalized() State {
	s.Search = strings.TrimSpace(s.Search)
	if strings.TrimSpace(s.Category) == "" {
		s.Category = All
	}
	if strings.TrimSpace(s.Status) == "" {
		s.Status = All
	}
	return s
}

// Active reports whether any criterion narrows the list.
func (s State) Active() bool {
	n := s.Normalized()
	return n.Search != "" || n.Category != All || n.Status != All
}

// Values encodes the non-default criteria as query parameters.
func (s State) Values() url.Values {
	n := s.Normalized()
	v := url.Values{}
	if n.Search != "" {
		v.Set(ParamSearch, n.Search)
	}
	if n.Category != All {
		v.Set(ParamCategory, n.Category)
	}
	if n.Status != All {
		v.Set(ParamStatus, n.Status)
	}
	return v
}

// FromValues reads a State from query parameters.
func FromValues(v url.Values) State {
	return State{
		Search:   v.Get(ParamSearch),
		Category: v.Get(ParamCategory),
		Status:   v.Get(ParamStatus),
	}.Normalized()
}

// Spec designates which fields of T the criteria look at.
// A nil accessor means the entity has no such field; that criterion
// then only matches when it is All.
type Spec[T any] struct {
	// SearchFields returns the texts the search term is matched against.
	SearchFields func(T) []string
	// Categories returns the category values; the entity matches when any equals the selector.
	Categories func(T) []string
	// Status returns the status value.
	Status func(T) string
}

// Match reports whether e satisfies every criterion of st.
func (sp Spec[T]) Match(e T, st State) bool {
	st = st.Normalized()
	return sp.matchSearch(e, st.Search) &&
		sp.matchCategory(e, st.Category) &&
		sp.matchStatus(e, st.Status)
}

func (sp Spec[T]) matchSearch(e T, term string) bool {
	if term == "" {
		return true
	}
	if sp.SearchFields == nil {
		return false
	}
	needle := strings.ToLower(term)
	for _, field := range sp.SearchFields(e) {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

func (sp Spec[T]) matchCategory(e T, category string) bool {
	if category == All {
		return true
	}
	if sp.Categories == nil {
		return false
	}
	for _, c := range sp.Categories(e) {
		if c == category {
			return true
		}
	}
	return false
}

func (sp Spec[T]) matchStatus(e T, status string) bool {
	if status == All {
		return true
	}
	if sp.Status == nil {
		return false
	}
	return sp.Status(e) == status
}

// Apply returns the entities of items matching st, in their original order.
// The input slice is never modified.
func Apply[T any](items []T, st State, sp Spec[T]) []T {
	out := make([]T, 0, len(items))
	for _, e := range items {
		if sp.Match(e, st) {
			out = append(out, e)
		}
	}
	return out
}
