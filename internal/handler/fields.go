// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"html/template"
	"slices"
	"strconv"
	"strings"

	"github.com/makerskills/makerskills-web/internal/form"
	"github.com/makerskills/makerskills-web/internal/model"
	"github.com/makerskills/makerskills-web/internal/richtext"
	"github.com/makerskills/makerskills-web/internal/uikit"
	"github.com/makerskills/makerskills-web/internal/util"
)

// FieldKind selects the input rendered for a field.
type FieldKind string

// Field kinds.
const (
	KindText        FieldKind = "text"
	KindTextarea    FieldKind = "textarea"
	KindRichText    FieldKind = "richtext"
	KindNumber      FieldKind = "number"
	KindInteger     FieldKind = "integer"
	KindCheckbox    FieldKind = "checkbox"
	KindSelect      FieldKind = "select"
	KindMultiSelect FieldKind = "multiselect"
	KindDate        FieldKind = "date"
	KindURL         FieldKind = "url"
	KindEmail       FieldKind = "email"
	KindList        FieldKind = "list"
)

// Choice is one option of a select field.
type Choice struct {
	Value string
	Label string
}

// ChoiceFunc loads the options of a select field that come from another resource.
type ChoiceFunc func(ctx context.Context, lang string) ([]Choice, error)

// Field binds one form input to one attribute of T.
// Scalar fields use Get/Set, list and multi-select fields use GetList/SetList.
type Field[T any] struct {
	Name     string
	Label    string // i18n key
	Kind     FieldKind
	Required bool
	// Options are fixed values; labels are looked up as OptionKey+value.
	Options   []string
	OptionKey string
	// Choices loads options at render time and replaces Options.
	Choices ChoiceFunc

	Get     func(T) string
	Set     func(*T, string) error
	GetList func(T) []string
	SetList func(*T, []string)
}

// IsList reports whether the field holds several values.
func (f Field[T]) IsList() bool {
	return f.Kind == KindList || f.Kind == KindMultiSelect
}

// Display returns the read-only text of the field for lang.
func (f Field[T]) Display(e T, lang string) string {
	if f.IsList() {
		return strings.Join(f.GetList(e), ", ")
	}
	v := f.Get(e)
	switch f.Kind {
	case KindCheckbox:
		if v == "true" {
			return "✓"
		}
		return ""
	case KindSelect:
		if f.OptionKey != "" && v != "" {
			return tr(lang, f.OptionKey+v)
		}
	case KindRichText:
		return richtext.PlainText(v)
	case KindNumber:
		if n, err := strconv.ParseFloat(v, 64); err == nil {
			return uikit.FormatPrice(n, lang)
		}
	case KindDate:
		if t, ok := uikit.ParseDate(v); ok {
			return uikit.FormatDateForLocale(t, lang)
		}
	}
	return v
}

// HTML returns the field value as markup for the detail viewer.
func (f Field[T]) HTML(e T) template.HTML {
	if f.Kind != KindRichText {
		return ""
	}
	return richtext.HTML(f.Get(e))
}

// errParse marks a value that could not be converted.
type errParse string

func (e errParse) Error() string { return string(e) }

func textField[T any](name, label string, get func(T) string, set func(*T, string)) Field[T] {
	return Field[T]{
		Name:  name,
		Label: label,
		Kind:  KindText,
		Get:   get,
		Set: func(e *T, v string) error {
			set(e, strings.TrimSpace(v))
			return nil
		},
	}
}

func textareaField[T any](name, label string, get func(T) string, set func(*T, string)) Field[T] {
	f := textField(name, label, get, set)
	f.Kind = KindTextarea
	return f
}

func richField[T any](name, label string, get func(T) string, set func(*T, string)) Field[T] {
	return Field[T]{
		Name:  name,
		Label: label,
		Kind:  KindRichText,
		Get:   get,
		Set: func(e *T, v string) error {
			set(e, richtext.NewEditor(v).Value())
			return nil
		},
	}
}

func requiredField[T any](f Field[T]) Field[T] {
	f.Required = true
	return f
}

func kindField[T any](kind FieldKind, f Field[T]) Field[T] {
	f.Kind = kind
	return f
}

func numberField[T any](name, label string, get func(T) float64, set func(*T, float64)) Field[T] {
	return Field[T]{
		Name:  name,
		Label: label,
		Kind:  KindNumber,
		Get: func(e T) string {
			return strconv.FormatFloat(get(e), 'f', -1, 64)
		},
		Set: func(e *T, v string) error {
			v = strings.ReplaceAll(strings.TrimSpace(v), " ", "")
			if v == "" {
				set(e, 0)
				return nil
			}
			n, err := strconv.ParseFloat(strings.Replace(v, ",", ".", 1), 64)
			if err != nil {
				return errParse("validation.number")
			}
			set(e, n)
			return nil
		},
	}
}

func integerField[T any](name, label string, get func(T) int, set func(*T, int)) Field[T] {
	return Field[T]{
		Name:  name,
		Label: label,
		Kind:  KindInteger,
		Get: func(e T) string {
			return strconv.Itoa(get(e))
		},
		Set: func(e *T, v string) error {
			v = strings.TrimSpace(v)
			if v == "" {
				set(e, 0)
				return nil
			}
			n, err := strconv.Atoi(v)
			if err != nil {
				return errParse("validation.number")
			}
			set(e, n)
			return nil
		},
	}
}

func checkboxField[T any](name, label string, get func(T) bool, set func(*T, bool)) Field[T] {
	return Field[T]{
		Name:  name,
		Label: label,
		Kind:  KindCheckbox,
		Get: func(e T) string {
			return strconv.FormatBool(get(e))
		},
		Set: func(e *T, v string) error {
			set(e, v == "on" || v == "true" || v == "1")
			return nil
		},
	}
}

func selectField[T any](name, label string, options []string, optionKey string, get func(T) string, set func(*T, string)) Field[T] {
	f := textField(name, label, get, set)
	f.Kind = KindSelect
	f.Options = options
	f.OptionKey = optionKey
	return f
}

func listField[T any](name, label string, get func(T) []string, set func(*T, []string)) Field[T] {
	return Field[T]{
		Name:    name,
		Label:   label,
		Kind:    KindList,
		GetList: get,
		SetList: set,
	}
}

// Validation helpers. Messages are i18n keys.

func requireText(errs form.Errors, field, v string) bool {
	if strings.TrimSpace(v) == "" {
		errs.Add(field, "validation.required")
		return false
	}
	return true
}

func requireLocalized(errs form.Errors, field string, t model.LocalizedText) {
	requireText(errs, field+"_fr", t.FR)
	requireText(errs, field+"_en", t.EN)
}

func requireChoice(errs form.Errors, field, v string, options []string) {
	if !requireText(errs, field, v) {
		return
	}
	if !slices.Contains(options, v) {
		errs.Add(field, "validation.choice")
	}
}

func checkChoice(errs form.Errors, field, v string, options []string) {
	if v != "" && !slices.Contains(options, v) {
		errs.Add(field, "validation.choice")
	}
}

func checkURL(errs form.Errors, field, v string) {
	if v != "" && util.ValidateWebURL(v) != nil {
		errs.Add(field, "validation.url")
	}
}

func checkEmail(errs form.Errors, field, v string) {
	if !requireText(errs, field, v) {
		return
	}
	if !util.IsValidEmail(v) {
		errs.Add(field, "validation.email")
	}
}

func checkPositive(errs form.Errors, field string, v float64) {
	if v < 0 {
		errs.Add(field, "validation.positive")
	}
}

func checkDate(errs form.Errors, field, v string, required bool) {
	if v == "" {
		if required {
			errs.Add(field, "validation.required")
		}
		return
	}
	if _, ok := uikit.ParseDate(v); !ok {
		errs.Add(field, "validation.date")
	}
}

func checkDateOrder(errs form.Errors, field, start, end string) {
	s, okS := uikit.ParseDate(start)
	e, okE := uikit.ParseDate(end)
	if okS && okE && e.Before(s) {
		errs.Add(field, "validation.date_order")
	}
}

func checkItems(errs form.Errors, field string, items []string) {
	for _, it := range items {
		if strings.TrimSpace(it) == "" {
			errs.Add(field, "validation.empty_item")
			return
		}
	}
}

func checkLength(errs form.Errors, field, v string, max int) {
	if len([]rune(v)) > max {
		errs.Add(field, "validation.too_long")
	}
}
