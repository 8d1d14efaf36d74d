// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package i18n provides the French and English message catalogs used by the
// public site and the back-office.
//
// Messages are fmt-style format strings registered in an x/text catalog, so
// numbers are printed with the grouping of the reader's language.
package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync/atomic"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

//go:embed locales
var localesFS embed.FS

// Message is one entry of a locale file.
type Message struct {
	ID          string `json:"id"`
	Message     string `json:"message"`
	Translation string `json:"translation"`
}

// MessageFile is the layout of locales/{lang}/messages.json.
type MessageFile struct {
	Language string    `json:"language"`
	Messages []Message `json:"messages"`
}

// DefaultLanguage is used when a request carries no usable preference.
const DefaultLanguage = "fr"

// SupportedLanguages lists the UI languages. The first one is the default.
var SupportedLanguages = []string{"fr", "en"}

// bundle is an immutable set of loaded catalogs.
type bundle struct {
	printers map[string]*message.Printer
	keys     map[string]map[string]struct{}
	tags     []language.Tag
	matcher  language.Matcher
	logger   *slog.Logger
}

var current atomic.Pointer[bundle]

// Init loads every supported locale. It may be called again to reload.
func Init(logger *slog.Logger) error {
	b := &bundle{
		printers: make(map[string]*message.Printer, len(SupportedLanguages)),
		keys:     make(map[string]map[string]struct{}, len(SupportedLanguages)),
		logger:   logger,
	}
	for _, lang := range SupportedLanguages {
		b.tags = append(b.tags, language.MustParse(lang))
	}
	b.matcher = language.NewMatcher(b.tags)

	builder := catalog.NewBuilder(catalog.Fallback(b.tags[0]))
	for i, lang := range SupportedLanguages {
		file, err := readLocale(lang)
		if err != nil {
			return err
		}
		keys := make(map[string]struct{}, len(file.Messages))
		for _, m := range file.Messages {
			if err := builder.SetString(b.tags[i], m.ID, m.Translation); err != nil {
				return fmt.Errorf("registering %s/%s: %w", lang, m.ID, err)
			}
			keys[m.ID] = struct{}{}
		}
		b.keys[lang] = keys
		if logger != nil {
			logger.Debug("loaded translations", "language", lang, "count", len(keys))
		}
	}
	for i, lang := range SupportedLanguages {
		b.printers[lang] = message.NewPrinter(b.tags[i], message.Catalog(builder))
	}

	current.Store(b)
	if logger != nil {
		logger.Info("i18n initialized", "languages", SupportedLanguages)
	}
	return nil
}

func readLocale(lang string) (MessageFile, error) {
	var file MessageFile
	path := "locales/" + lang + "/messages.json"
	data, err := localesFS.ReadFile(path)
	if err != nil {
		return file, fmt.Errorf("reading %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &file); err != nil {
		return file, fmt.Errorf("parsing %s: %w", path, err)
	}
	return file, nil
}

// Translator returns T bound to lang, for templates.
func Translator(lang string) func(key string, args ...any) string {
	return func(key string, args ...any) string {
		return T(lang, key, args...)
	}
}

// T formats the message key in lang. Unknown languages use the default one;
// keys missing from lang fall back to the default language, then to the key.
func T(lang, key string, args ...any) string {
	b := current.Load()
	if b == nil {
		return key
	}
	if _, ok := b.printers[lang]; !ok {
		lang = DefaultLanguage
	}
	if _, ok := b.keys[lang][key]; !ok {
		if _, ok := b.keys[DefaultLanguage][key]; !ok {
			return key
		}
		if b.logger != nil {
			b.logger.Debug("missing translation, using default", "key", key, "lang", lang)
		}
		lang = DefaultLanguage
	}
	return b.printers[lang].Sprintf(key, args...)
}

// GetSupportedLanguages returns the UI languages, default first.
func GetSupportedLanguages() []string {
	return slices.Clone(SupportedLanguages)
}

// MatchLanguage picks the supported language closest to an Accept-Language
// header or a bare language code.
func MatchLanguage(accept string) string {
	b := current.Load()
	if b == nil {
		return DefaultLanguage
	}

	tags, _, err := language.ParseAcceptLanguage(accept)
	if err != nil || len(tags) == 0 {
		tag, err := language.Parse(accept)
		if err != nil {
			return DefaultLanguage
		}
		tags = []language.Tag{tag}
	}

	_, idx, conf := b.matcher.Match(tags...)
	if conf == language.No || idx < 0 || idx >= len(SupportedLanguages) {
		return DefaultLanguage
	}
	return SupportedLanguages[idx]
}

// IsSupported reports whether lang is a UI language, ignoring case.
func IsSupported(lang string) bool {
	return slices.Contains(SupportedLanguages, strings.ToLower(lang))
}

// TranslationCount returns the number of keys loaded for lang.
func TranslationCount(lang string) int {
	b := current.Load()
	if b == nil {
		return 0
	}
	return len(b.keys[lang])
}
