// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package form

import (
	"slices"
	"strings"
)

// The list helpers never modify their input; the draft may share backing
// arrays with the entity it was copied from.

// Append returns s with v added at the end.
func Append[S ~[]E, E any](s S, v E) S {
	out := make(S, len(s), len(s)+1)
	copy(out, s)
	return append(out, v)
}

// InsertAt returns s with v inserted at index i. Out-of-range indexes append.
func InsertAt[S ~[]E, E any](s S, i int, v E) S {
	if i < 0 || i > len(s) {
		i = len(s)
	}
	return slices.Insert(slices.Clone(s), i, v)
}

// RemoveAt returns s without the element at index i. Out-of-range indexes are a no-op.
func RemoveAt[S ~[]E, E any](s S, i int) S {
	if i < 0 || i >= len(s) {
		return slices.Clone(s)
	}
	return slices.Delete(slices.Clone(s), i, i+1)
}

// SetAt returns s with element i replaced by v. Out-of-range indexes are a no-op.
func SetAt[S ~[]E, E any](s S, i int, v E) S {
	out := slices.Clone(s)
	if i >= 0 && i < len(out) {
		out[i] = v
	}
	return out
}

// Compact drops blank entries and trims the rest.
func Compact(s []string) []string {
	out := make([]string, 0, len(s))
	for _, v := range s {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// Lines splits a textarea value into non-blank trimmed lines.
func Lines(text string) []string {
	return Compact(strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n"))
}
