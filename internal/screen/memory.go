// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package screen

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/google/uuid"

	"github.com/makerskills/makerskills-web/internal/collection"
	"github.com/makerskills/makerskills-web/internal/remote"
)

// MemorySource serves a resource from an in-process list. It stands in for
// remote.Resource when a resource is configured to use mock data, and is
// shared by every session.
type MemorySource[T collection.Entity] struct {
	mu     sync.Mutex
	name   string
	items  []T
	withID func(T, string) T
}

// NewMemorySource creates a source seeded with items. withID returns a copy
// of an entity carrying the given id.
func NewMemorySource[T collection.Entity](name string, seed []T, withID func(T, string) T) *MemorySource[T] {
	items := make([]T, len(seed))
	copy(items, seed)
	return &MemorySource[T]{name: name, items: items, withID: withID}
}

// LoadMemorySource decodes a JSON array of entities as the seed.
func LoadMemorySource[T collection.Entity](name string, data []byte, withID func(T, string) T) (*MemorySource[T], error) {
	var seed []T
	if err := json.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("decoding %s mock data: %w", name, err)
	}
	return NewMemorySource(name, seed, withID), nil
}

func (m *MemorySource[T]) notFound(id string) error {
	return &remote.RemoteError{
		Method:  "MEMORY",
		Path:    "/" + m.name + "/" + id,
		Status:  http.StatusNotFound,
		Message: "Not found",
	}
}

// List returns a copy of the items.
func (m *MemorySource[T]) List(ctx context.Context) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]T, len(m.items))
	copy(out, m.items)
	return out, nil
}

// Get returns one item.
func (m *MemorySource[T]) Get(ctx context.Context, id string) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.items {
		if e.EntityID() == id {
			return e, nil
		}
	}
	return zero, m.notFound(id)
}

// Create stores the draft under a generated id.
func (m *MemorySource[T]) Create(ctx context.Context, draft T) (T, error) {
	if err := ctx.Err(); err != nil {
		var zero T
		return zero, err
	}
	e := m.withID(draft, uuid.NewString())
	m.mu.Lock()
	m.items = append(m.items, e)
	m.mu.Unlock()
	return e, nil
}

// Update replaces the stored item with patch.
func (m *MemorySource[T]) Update(ctx context.Context, id string, patch T) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	e := m.withID(patch, id)
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.items {
		if m.items[i].EntityID() == id {
			m.items[i] = e
			return e, nil
		}
	}
	return zero, m.notFound(id)
}

// Delete removes the item.
func (m *MemorySource[T]) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.items {
		if m.items[i].EntityID() == id {
			m.items = append(m.items[:i:i], m.items[i+1:]...)
			return nil
		}
	}
	return m.notFound(id)
}
