// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package collection holds the ordered in-memory list of entities a screen
// displays. It is the single source of truth for what the list shows.
package collection

import "sync"

// Entity is anything with a stable identifier.
type Entity interface {
	EntityID() string
}

// Store is an ordered list of entities. Mutations apply in call order.
// No uniqueness check is made on Add or Prepend.
type Store[T Entity] struct {
	mu    sync.RWMutex
	items []T
}

// New creates a store seeded with items.
func New[T Entity](items ...T) *Store[T] {
	s := &Store[T]{}
	s.SetAll(items)
	return s
}

// SetAll replaces the whole list.
func (s *Store[T]) SetAll(items []T) {
	cp := make([]T, len(items))
	copy(cp, items)

	s.mu.Lock()
	s.items = cp
	s.mu.Unlock()
}

// Add appends an entity.
func (s *Store[T]) Add(e T) {
	s.mu.Lock()
	s.items = append(s.items, e)
	s.mu.Unlock()
}

// Prepend inserts an entity at the head of the list.
func (s *Store[T]) Prepend(e T) {
	s.mu.Lock()
	s.items = append([]T{e}, s.items...)
	s.mu.Unlock()
}

// UpdateOne applies fn to the entity with the given id in place.
// Reports false and changes nothing when the id is absent.
func (s *Store[T]) UpdateOne(id string, fn func(*T)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].EntityID() == id {
			fn(&s.items[i])
			return true
		}
	}
	return false
}

// ReplaceOne swaps in e for the entity with the same id, keeping its position.
func (s *Store[T]) ReplaceOne(e T) bool {
	id := e.EntityID()
	return s.UpdateOne(id, func(cur *T) { *cur = e })
}

// RemoveOne deletes the entity with the given id, keeping the order of the rest.
func (s *Store[T]) RemoveOne(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].EntityID() == id {
			s.items = append(s.items[:i:i], s.items[i+1:]...)
			return true
		}
	}
	return false
}

// Get returns the entity with the given id.
func (s *Store[T]) Get(id string) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.items {
		if e.EntityID() == id {
			return e, true
		}
	}
	var zero T
	return zero, false
}

// All returns a snapshot of the list in order.
func (s *Store[T]) All() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cp := make([]T, len(s.items))
	copy(cp, s.items)
	return cp
}

// Len returns the number of entities.
func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}
