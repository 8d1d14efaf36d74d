// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines the entities exchanged with the Maker Skills backend.
package model

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Supported content languages.
const (
	LangFR = "fr"
	LangEN = "en"
)

// Common status values.
const (
	StatusPublished = "published"
	StatusDraft     = "draft"
	StatusArchived  = "archived"
)

// PublicationStatuses are the statuses offered for catalog entities.
var PublicationStatuses = []string{StatusPublished, StatusDraft, StatusArchived}

// LocalizedText holds a French and an English variant of the same text.
type LocalizedText struct {
	FR string `json:"fr"`
	EN string `json:"en"`
}

// Get returns the variant for lang, falling back to the other one when empty.
func (t LocalizedText) Get(lang string) string {
	if lang == LangEN {
		if t.EN != "" {
			return t.EN
		}
		return t.FR
	}
	if t.FR != "" {
		return t.FR
	}
	return t.EN
}

// IsZero reports whether both variants are blank.
func (t LocalizedText) IsZero() bool {
	return strings.TrimSpace(t.FR) == "" && strings.TrimSpace(t.EN) == ""
}

// String returns the French variant, or the English one when French is empty.
func (t LocalizedText) String() string {
	return t.Get(LangFR)
}

// UnmarshalJSON accepts either {"fr": ..., "en": ...} or a plain string,
// which is used for both languages.
func (t *LocalizedText) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*t = LocalizedText{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = LocalizedText{FR: s, EN: s}
		return nil
	}
	type plain LocalizedText
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*t = LocalizedText(p)
	return nil
}

// Ref is a reference to another entity. The backend sends either the bare id
// or the populated document; both decode into a Ref.
type Ref struct {
	ID    string `json:"_id"`
	Label string `json:"-"`
	Email string `json:"-"`
}

// UnmarshalJSON decodes a bare id string or an object carrying _id and a
// name, title or email.
func (r *Ref) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*r = Ref{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return err
		}
		*r = Ref{ID: id}
		return nil
	}
	var doc struct {
		ID    string        `json:"_id"`
		Name  LocalizedText `json:"name"`
		Title LocalizedText `json:"title"`
		Email string        `json:"email"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	label := doc.Name.String()
	if label == "" {
		label = doc.Title.String()
	}
	*r = Ref{ID: doc.ID, Label: label, Email: doc.Email}
	return nil
}

// MarshalJSON sends only the id; the backend resolves references itself.
func (r Ref) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.ID)
}

// Display returns the label, or the id when no label was populated.
func (r Ref) Display() string {
	if r.Label != "" {
		return r.Label
	}
	return r.ID
}

// RefIDs returns the ids of refs in order.
func RefIDs(refs []Ref) []string {
	out := make([]string, 0, len(refs))
	for _, r := range refs {
		out = append(out, r.ID)
	}
	return out
}

// RefsFromIDs builds unpopulated references.
func RefsFromIDs(ids []string) []Ref {
	out := make([]Ref, 0, len(ids))
	for _, id := range ids {
		out = append(out, Ref{ID: id})
	}
	return out
}
