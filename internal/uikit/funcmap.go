// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package uikit provides reusable template helpers, pagination view models
// and breadcrumb types shared by the public site and the back-office.
package uikit

import (
	"fmt"
	"html/template"
	"math"
	"strconv"
	"strings"
	"time"
)

// monthsFr are the French month names, January first.
var monthsFr = [12]string{
	"janvier", "février", "mars", "avril", "mai", "juin",
	"juillet", "août", "septembre", "octobre", "novembre", "décembre",
}

// Currency is appended to formatted prices.
const Currency = "FCFA"

// apiDateLayouts are the date encodings found in backend payloads.
var apiDateLayouts = []string{time.RFC3339, "2006-01-02T15:04:05.000Z", "2006-01-02"}

// TemplateFuncs returns the presentation helpers shared by every template.
// The renderer adds the request-bound ones (T, loc, richtext) on top.
func TemplateFuncs() template.FuncMap {
	return template.FuncMap{
		"lower": strings.ToLower,
		"formatDateLocale": func(t any, lang string) string {
			return ApplyTimeFormatter(t, lang, FormatDateForLocale)
		},
		"formatDateTimeLocale": func(t any, lang string) string {
			return ApplyTimeFormatter(t, lang, FormatDateTimeForLocale)
		},
		"formatPrice": FormatPrice,
		"dict":        Dict,
	}
}

// Dict builds a map from alternating keys and values, for passing several
// values to a partial. Odd argument lists yield nil; non-string keys are skipped.
func Dict(values ...any) map[string]any {
	if len(values)%2 != 0 {
		return nil
	}
	m := make(map[string]any, len(values)/2)
	for i := 0; i < len(values); i += 2 {
		if key, ok := values[i].(string); ok {
			m[key] = values[i+1]
		}
	}
	return m
}

// FormatNumber groups thousands with a space (fr) or a comma (other languages).
func FormatNumber(n int64, lang string) string {
	sep := ","
	if lang == "fr" {
		sep = " "
	}
	digits := strconv.FormatInt(n, 10)
	sign := ""
	if n < 0 {
		sign, digits = "-", digits[1:]
	}

	var b strings.Builder
	b.WriteString(sign)
	head := len(digits) % 3
	if head == 0 {
		head = 3
	}
	b.WriteString(digits[:head])
	for i := head; i < len(digits); i += 3 {
		b.WriteString(sep)
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// FormatPrice renders an amount in whole francs; zero is shown as free.
func FormatPrice(amount float64, lang string) string {
	if amount == 0 {
		if lang == "fr" {
			return "Gratuit"
		}
		return "Free"
	}
	return FormatNumber(int64(math.Round(amount)), lang) + " " + Currency
}

// ParseDate reads the date formats used by the API: RFC 3339 timestamps or plain dates.
func ParseDate(s string) (time.Time, bool) {
	for _, layout := range apiDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatDateForLocale renders "5 mars 2026" in French and "Mar 5, 2026" otherwise.
func FormatDateForLocale(t time.Time, lang string) string {
	if lang == "fr" {
		return fmt.Sprintf("%d %s %d", t.Day(), monthsFr[t.Month()-1], t.Year())
	}
	return t.Format("Jan 2, 2006")
}

// FormatDateTimeForLocale adds the time of day, 24-hour in French.
func FormatDateTimeForLocale(t time.Time, lang string) string {
	if lang == "fr" {
		return FormatDateForLocale(t, lang) + t.Format(", 15:04")
	}
	return t.Format("Jan 2, 2006 3:04 PM")
}

// ApplyTimeFormatter formats a time.Time, a *time.Time or an API date string.
// Nil pointers, zero times and other types give ""; unparseable strings are
// returned unchanged.
func ApplyTimeFormatter(t any, lang string, formatter func(time.Time, string) string) string {
	switch v := t.(type) {
	case time.Time:
		if v.IsZero() {
			return ""
		}
		return formatter(v, lang)
	case *time.Time:
		if v == nil || v.IsZero() {
			return ""
		}
		return formatter(*v, lang)
	case string:
		if parsed, ok := ParseDate(v); ok {
			return formatter(parsed, lang)
		}
		return v
	default:
		return ""
	}
}
