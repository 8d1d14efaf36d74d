// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package content serves the static Markdown copy of the public pages.
package content

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"sync"

	"github.com/makerskills/makerskills-web/internal/richtext"
)

//go:embed pages/*.md
var pagesFS embed.FS

// ErrNotFound is returned for an unknown page.
var ErrNotFound = errors.New("page not found")

// DefaultLang is used when a page has no variant for the requested language.
const DefaultLang = "fr"

// Library renders pages once and keeps the result.
type Library struct {
	fsys     fs.FS
	mu       sync.RWMutex
	rendered map[string]template.HTML
}

// New creates a library over the embedded pages.
func New() *Library {
	return NewFromFS(pagesFS)
}

// NewFromFS creates a library over fsys, which must contain pages/<slug>.<lang>.md.
func NewFromFS(fsys fs.FS) *Library {
	return &Library{fsys: fsys, rendered: make(map[string]template.HTML)}
}

// Page returns the rendered page for slug in lang, falling back to DefaultLang.
func (l *Library) Page(slug, lang string) (template.HTML, error) {
	key := slug + "." + lang
	l.mu.RLock()
	html, ok := l.rendered[key]
	l.mu.RUnlock()
	if ok {
		return html, nil
	}

	src, err := fs.ReadFile(l.fsys, "pages/"+key+".md")
	if errors.Is(err, fs.ErrNotExist) && lang != DefaultLang {
		src, err = fs.ReadFile(l.fsys, "pages/"+slug+"."+DefaultLang+".md")
	}
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%w: %s", ErrNotFound, slug)
	}
	if err != nil {
		return "", fmt.Errorf("reading page %s: %w", slug, err)
	}

	html, err = richtext.Markdown(src)
	if err != nil {
		return "", err
	}

	l.mu.Lock()
	l.rendered[key] = html
	l.mu.Unlock()
	return html, nil
}
