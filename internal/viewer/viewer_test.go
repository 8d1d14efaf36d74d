// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package viewer

import (
	"testing"

	"github.com/makerskills/makerskills-web/internal/collection"
)

type order struct {
	ID     string
	Status string
}

func (o order) EntityID() string { return o.ID }

func TestOpenClose(t *testing.T) {
	v := New[order]()
	if v.IsOpen() {
		t.Fatal("new viewer should be closed")
	}

	v.Open(order{ID: "o1"})
	got, ok := v.Current()
	if !ok || got.ID != "o1" {
		t.Errorf("Current() = %v, %v; want o1, true", got, ok)
	}

	v.Open(order{ID: "o2"})
	if got, _ := v.Current(); got.ID != "o2" {
		t.Errorf("second Open should replace, got %q", got.ID)
	}

	v.Close()
	if _, ok := v.Current(); ok {
		t.Error("viewer should be closed")
	}
}

func TestForget(t *testing.T) {
	tests := []struct {
		name     string
		open     bool
		id       string
		want     bool
		wantOpen bool
	}{
		{"shown entity deleted", true, "o1", true, false},
		{"other entity deleted", true, "o2", false, true},
		{"closed viewer", false, "o1", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := New[order]()
			if tt.open {
				v.Open(order{ID: "o1"})
			}
			if got := v.Forget(tt.id); got != tt.want {
				t.Errorf("Forget(%q) = %v, want %v", tt.id, got, tt.want)
			}
			if v.IsOpen() != tt.wantOpen {
				t.Errorf("IsOpen() = %v, want %v", v.IsOpen(), tt.wantOpen)
			}
		})
	}
}

func TestSnapshotIsolation(t *testing.T) {
	store := collection.New(order{ID: "o1", Status: "pending"})
	v := New[order]()
	e, _ := store.Get("o1")
	v.Open(e)

	store.UpdateOne("o1", func(o *order) { o.Status = "paid" })

	got, _ := v.Current()
	if got.Status != "pending" {
		t.Errorf("viewer changed with the collection: %q", got.Status)
	}
}
