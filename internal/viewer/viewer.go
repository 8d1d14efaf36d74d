// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package viewer holds the read-only detail view opened from a list row.
package viewer

import "github.com/makerskills/makerskills-web/internal/collection"

// Viewer shows at most one entity. It keeps its own copy, so later
// collection changes do not alter what is displayed.
type Viewer[T collection.Entity] struct {
	open    bool
	current T
}

// New creates a closed viewer.
func New[T collection.Entity]() *Viewer[T] {
	return &Viewer[T]{}
}

// Open shows e, replacing anything shown before.
func (v *Viewer[T]) Open(e T) {
	v.open = true
	v.current = e
}

// Close hides the viewer.
func (v *Viewer[T]) Close() {
	var zero T
	v.open = false
	v.current = zero
}

// IsOpen reports whether an entity is shown.
func (v *Viewer[T]) IsOpen() bool {
	return v.open
}

// Current returns the entity shown.
func (v *Viewer[T]) Current() (T, bool) {
	return v.current, v.open
}

// Forget closes the viewer when it shows the entity with id.
func (v *Viewer[T]) Forget(id string) bool {
	if v.open && v.current.EntityID() == id {
		v.Close()
		return true
	}
	return false
}
