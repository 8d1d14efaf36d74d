// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package richtext handles the formatted descriptions edited in the admin
// forms and the Markdown copy of static pages.
package richtext

import (
	"bytes"
	"fmt"
	"html/template"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// htmlSanitizer uses bluemonday's UGCPolicy, which keeps formatting tags and
// links while stripping scripts, styles and event handlers.
var htmlSanitizer = bluemonday.UGCPolicy()

// textPolicy strips every tag.
var textPolicy = bluemonday.StrictPolicy()

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM, extension.Typographer),
	goldmark.WithRendererOptions(html.WithHardWraps()),
)

var whitespace = regexp.MustCompile(`\s+`)

// Sanitize returns s with unsafe markup removed.
func Sanitize(s string) string {
	return strings.TrimSpace(htmlSanitizer.Sanitize(s))
}

// PlainText strips all markup and collapses whitespace.
func PlainText(s string) string {
	text := textPolicy.Sanitize(s)
	text = strings.NewReplacer("&amp;", "&", "&#39;", "'", "&#34;", `"`, "&lt;", "<", "&gt;", ">", "&nbsp;", " ").Replace(text)
	return strings.TrimSpace(whitespace.ReplaceAllString(text, " "))
}

// Excerpt returns at most n runes of the plain text of s, cut on a word boundary.
func Excerpt(s string, n int) string {
	text := PlainText(s)
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	cut := string(runes[:n])
	if i := strings.LastIndex(cut, " "); i > n/2 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,.;:") + "…"
}

// HTML returns sanitized markup ready for a template.
func HTML(s string) template.HTML {
	return template.HTML(Sanitize(s)) //nolint:gosec // sanitized above
}

// Markdown renders Markdown source to sanitized HTML.
func Markdown(src []byte) (template.HTML, error) {
	var buf bytes.Buffer
	if err := markdown.Convert(src, &buf); err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	return template.HTML(htmlSanitizer.SanitizeBytes(buf.Bytes())), nil //nolint:gosec // sanitized
}

// Editor is the value behind a rich-text form field. Whatever is set is
// sanitized, so Value always returns markup that is safe to store and render.
type Editor struct {
	value string
}

// NewEditor creates an editor holding s.
func NewEditor(s string) *Editor {
	e := &Editor{}
	e.SetValue(s)
	return e
}

// Value returns the current markup.
func (e *Editor) Value() string {
	return e.value
}

// SetValue replaces the markup.
func (e *Editor) SetValue(s string) {
	e.value = Sanitize(s)
}

// Empty reports whether the editor holds no visible text.
func (e *Editor) Empty() bool {
	return PlainText(e.value) == ""
}

// HTML returns the markup for rendering.
func (e *Editor) HTML() template.HTML {
	return template.HTML(e.value) //nolint:gosec // sanitized in SetValue
}
