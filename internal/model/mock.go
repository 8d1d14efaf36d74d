// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"embed"
	"fmt"
)

//go:embed mock/*.json
var mockFS embed.FS

// MockData returns the bundled sample documents for a resource, e.g. "partners".
func MockData(resource string) ([]byte, error) {
	data, err := mockFS.ReadFile("mock/" + resource + ".json")
	if err != nil {
		return nil, fmt.Errorf("no mock data for %q: %w", resource, err)
	}
	return data, nil
}

// HasMockData reports whether sample documents exist for resource.
func HasMockData(resource string) bool {
	_, err := mockFS.ReadFile("mock/" + resource + ".json")
	return err == nil
}
