// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package filter

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

type course struct {
	Title    string
	Slug     string
	Category string
	Status   string
	Tags     []string
}

var courseSpec = Spec[course]{
	SearchFields: func(c course) []string { return []string{c.Title, c.Slug} },
	Categories:   func(c course) []string { return []string{c.Category} },
	Status:       func(c course) string { return c.Status },
}

var courses = []course{
	{Title: "Arduino Basics", Slug: "arduino-basics", Category: "electronics", Status: "published"},
	{Title: "IoT with ESP32", Slug: "iot-esp32", Category: "electronics", Status: "draft"},
	{Title: "3D Printing", Slug: "impression-3d", Category: "fabrication", Status: "published"},
}

func titles(items []course) []string {
	out := make([]string, 0, len(items))
	for _, c := range items {
		out = append(out, c.Title)
	}
	return out
}

func TestApply(t *testing.T) {
	tests := []struct {
		name  string
		state State
		want  []string
	}{
		{"all pass", State{}, []string{"Arduino Basics", "IoT with ESP32", "3D Printing"}},
		{"explicit all", State{Category: All, Status: All}, []string{"Arduino Basics", "IoT with ESP32", "3D Printing"}},
		{"search case insensitive", State{Search: "ARDUINO"}, []string{"Arduino Basics"}},
		{"search secondary field", State{Search: "impression"}, []string{"3D Printing"}},
		{"search trimmed", State{Search: "  esp32 "}, []string{"IoT with ESP32"}},
		{"category", State{Category: "electronics"}, []string{"Arduino Basics", "IoT with ESP32"}},
		{"status", State{Status: "published"}, []string{"Arduino Basics", "3D Printing"}},
		{"criteria combine with and", State{Category: "electronics", Status: "published"}, []string{"Arduino Basics"}},
		{"no match", State{Search: "laser"}, []string{}},
		{"category exact equality", State{Category: "Electronics"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Apply(courses, tt.state, courseSpec)
			assert.Equal(t, tt.want, titles(got))
		})
	}
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	in := append([]course(nil), courses...)
	_ = Apply(in, State{Search: "iot"}, courseSpec)
	assert.Equal(t, courses, in)
}

func TestApplyMultiValuedCategory(t *testing.T) {
	spec := Spec[course]{Categories: func(c course) []string { return c.Tags }}
	items := []course{
		{Title: "Rover", Tags: []string{"robotics", "iot"}},
		{Title: "Lamp", Tags: []string{"design"}},
	}
	assert.Equal(t, []string{"Rover"}, titles(Apply(items, State{Category: "iot"}, spec)))
}

func TestMissingAccessors(t *testing.T) {
	spec := Spec[course]{}
	items := []course{{Title: "A"}}

	assert.Len(t, Apply(items, State{}, spec), 1)
	assert.Empty(t, Apply(items, State{Search: "a"}, spec))
	assert.Empty(t, Apply(items, State{Status: "draft"}, spec))
}

func TestStateValuesRoundTrip(t *testing.T) {
	st := State{Search: " arduino ", Category: "electronics"}
	v := st.Values()
	assert.Equal(t, "arduino", v.Get(ParamSearch))
	assert.Equal(t, "electronics", v.Get(ParamCategory))
	assert.False(t, v.Has(ParamStatus))

	back := FromValues(v)
	assert.Equal(t, State{Search: "arduino", Category: "electronics", Status: All}, back)
}

func TestActive(t *testing.T) {
	assert.False(t, State{}.Active())
	assert.False(t, FromValues(url.Values{"status": {"all"}}).Active())
	assert.True(t, State{Status: "draft"}.Active())
}
