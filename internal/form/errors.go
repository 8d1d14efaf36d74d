// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package form

import (
	"errors"
	"sort"
	"strings"
)

// ErrClosed is returned when submitting a form that is not open.
var ErrClosed = errors.New("form is not open")

// ErrNoEntity is returned when a create succeeds without the backend
// sending back the stored entity.
var ErrNoEntity = errors.New("backend returned no entity")

// Errors maps field names to validation messages. A non-empty Errors is the
// validation error of a submit; it never reaches the backend.
type Errors map[string]string

// Add records a message for field, keeping the first one.
func (e Errors) Add(field, message string) {
	if _, exists := e[field]; !exists {
		e[field] = message
	}
}

// Get returns the message for field, or "".
func (e Errors) Get(field string) string {
	return e[field]
}

// Has reports whether field has a message.
func (e Errors) Has(field string) bool {
	_, ok := e[field]
	return ok
}

// Empty reports whether there are no messages.
func (e Errors) Empty() bool {
	return len(e) == 0
}

// Error implements error with fields in sorted order.
func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+e[f])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Merge copies messages from other without overwriting existing ones.
func (e Errors) Merge(other Errors) {
	for f, m := range other {
		e.Add(f, m)
	}
}

// AsErrors returns the validation errors carried by err, if any.
func AsErrors(err error) (Errors, bool) {
	var errs Errors
	if errors.As(err, &errs) {
		return errs, true
	}
	return nil, false
}
