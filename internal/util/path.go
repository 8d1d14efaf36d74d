// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// SanitizeFilename extracts only the base filename, removing any directory
// components. This prevents path traversal attacks via filenames like
// "../../../etc/passwd". Returns an error if the filename is invalid.
func SanitizeFilename(filename string) (string, error) {
	safe := filepath.Base(strings.ReplaceAll(filename, `\`, "/"))
	if safe == "." || safe == ".." || safe == "" || safe == "/" {
		return "", fmt.Errorf("invalid filename: %q", filename)
	}
	return safe, nil
}

// UploadName builds the name an uploaded file is sent under: the slug of
// the original base name, a short random suffix and the given extension.
func UploadName(original, ext string) string {
	base := strings.TrimSuffix(filepath.Base(original), filepath.Ext(original))
	slug := Slugify(base)
	if slug == "" {
		slug = "upload"
	}
	if len(slug) > 40 {
		slug = strings.TrimRight(slug[:40], "-")
	}
	return slug + "-" + uuid.NewString()[:8] + ext
}
