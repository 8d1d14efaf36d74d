// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// Formation is a training course of the public catalog.
type Formation struct {
	ID            string        `json:"_id,omitempty"`
	Title         LocalizedText `json:"title"`
	Slug          string        `json:"slug"`
	Summary       LocalizedText `json:"summary"`
	Description   LocalizedText `json:"description"`
	Category      string        `json:"category"`
	Level         string        `json:"level"`
	Duration      string        `json:"duration"`
	Price         float64       `json:"price"`
	Image         string        `json:"image,omitempty"`
	Prerequisites []string      `json:"prerequisites"`
	Curriculum    []string      `json:"curriculum"`
	Featured      bool          `json:"featured"`
	Status        string        `json:"status"`
}

func (f Formation) EntityID() string { return f.ID }

// WithID returns f carrying id.
func (f Formation) WithID(id string) Formation { f.ID = id; return f }

// Published reports whether the formation is visible on the public site.
func (f Formation) Published() bool { return f.Status == StatusPublished }

// Formation levels.
var FormationLevels = []string{"beginner", "intermediate", "advanced"}

// Workshop is a short hands-on session.
type Workshop struct {
	ID          string        `json:"_id,omitempty"`
	Title       LocalizedText `json:"title"`
	Description LocalizedText `json:"description"`
	Date        string        `json:"date"`
	Location    string        `json:"location"`
	Category    string        `json:"category"`
	Seats       int           `json:"seats"`
	Price       float64       `json:"price"`
	Status      string        `json:"status"`
}

func (w Workshop) EntityID() string { return w.ID }

// WithID returns w carrying id.
func (w Workshop) WithID(id string) Workshop { w.ID = id; return w }

// Bootcamp is an intensive multi-week program.
type Bootcamp struct {
	ID           string        `json:"_id,omitempty"`
	Title        LocalizedText `json:"title"`
	Description  LocalizedText `json:"description"`
	Level        string        `json:"level"`
	StartDate    string        `json:"startDate"`
	EndDate      string        `json:"endDate"`
	Location     string        `json:"location"`
	Technologies []string      `json:"technologies"`
	Price        float64       `json:"price"`
	Status       string        `json:"status"`
}

func (b Bootcamp) EntityID() string { return b.ID }

// WithID returns b carrying id.
func (b Bootcamp) WithID(id string) Bootcamp { b.ID = id; return b }

// Service is an offering listed on the services page.
type Service struct {
	ID          string        `json:"_id,omitempty"`
	Title       LocalizedText `json:"title"`
	Description LocalizedText `json:"description"`
	Icon        string        `json:"icon"`
	Category    string        `json:"category"`
	Status      string        `json:"status"`
}

func (s Service) EntityID() string { return s.ID }

// WithID returns s carrying id.
func (s Service) WithID(id string) Service { s.ID = id; return s }

// Category groups formations, products and projects.
type Category struct {
	ID   string        `json:"_id,omitempty"`
	Name LocalizedText `json:"name"`
	Slug string        `json:"slug"`
	Kind string        `json:"kind"`
}

func (c Category) EntityID() string { return c.ID }

// WithID returns c carrying id.
func (c Category) WithID(id string) Category { c.ID = id; return c }

// CategoryKinds are the collections a category can apply to.
var CategoryKinds = []string{"formation", "product", "project", "event"}
