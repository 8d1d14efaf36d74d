// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package form implements the create/edit form state machine:
//
//	[closed] --Add--> [creating] --submit ok--> [closed]
//	[closed] --Edit(e)--> [editing e] --submit ok--> [closed]
//	[creating|editing] --Cancel--> [closed]
//
// The draft is a private copy; the collection changes only on a
// successful submit.
package form

import (
	"context"

	"github.com/makerskills/makerskills-web/internal/collection"
	"github.com/makerskills/makerskills-web/internal/remote"
)

// Mode is the form state.
type Mode int

const (
	Closed Mode = iota
	Creating
	Editing
)

func (m Mode) String() string {
	switch m {
	case Creating:
		return "creating"
	case Editing:
		return "editing"
	default:
		return "closed"
	}
}

// Validator checks a draft and returns field messages.
type Validator[T any] func(T) Errors

// Source persists drafts.
type Source[T any] interface {
	Create(ctx context.Context, draft T) (T, error)
	Update(ctx context.Context, id string, patch T) (T, error)
}

// FileSource is implemented by sources that accept an attachment.
type FileSource[T any] interface {
	CreateWithFile(ctx context.Context, draft T, file *remote.File) (T, error)
	UpdateWithFile(ctx context.Context, id string, patch T, file *remote.File) (T, error)
}

// Config holds the per-entity parts of a form.
type Config[T any] struct {
	// Blank returns the empty template used by Add.
	Blank func() T
	// Validate checks required fields and formats.
	Validate Validator[T]
	// Prepend places created entities at the head of the collection instead of the end.
	Prepend bool
}

// Form is the editing state for one entity type. It is not safe for
// concurrent use; the owning screen serializes access.
type Form[T collection.Entity] struct {
	cfg        Config[T]
	mode       Mode
	draft      T
	editingID  string
	errs       Errors
	submitErr  error
	attachment *remote.File
}

// New creates a closed form.
func New[T collection.Entity](cfg Config[T]) *Form[T] {
	return &Form[T]{cfg: cfg}
}

// Mode returns the current state.
func (f *Form[T]) Mode() Mode { return f.mode }

// IsOpen reports whether the form is creating or editing.
func (f *Form[T]) IsOpen() bool { return f.mode != Closed }

// EditingID returns the id of the entity under edit, or "".
func (f *Form[T]) EditingID() string { return f.editingID }

// Draft returns the working copy.
func (f *Form[T]) Draft() T { return f.draft }

// Errors returns the messages from the last validation.
func (f *Form[T]) Errors() Errors { return f.errs }

// SubmitError returns the backend error from the last failed submit.
func (f *Form[T]) SubmitError() error { return f.submitErr }

// Add opens the form on a blank draft.
func (f *Form[T]) Add() {
	f.reset()
	f.mode = Creating
	if f.cfg.Blank != nil {
		f.draft = f.cfg.Blank()
	}
}

// Edit opens the form on a copy of e.
func (f *Form[T]) Edit(e T) {
	f.reset()
	f.mode = Editing
	f.draft = e
	f.editingID = e.EntityID()
}

// Cancel closes the form and discards the draft.
func (f *Form[T]) Cancel() {
	f.reset()
}

// CloseIfEditing closes the form when it is editing id.
func (f *Form[T]) CloseIfEditing(id string) bool {
	if f.mode == Editing && f.editingID == id {
		f.reset()
		return true
	}
	return false
}

// Update applies fn to the draft.
func (f *Form[T]) Update(fn func(*T)) {
	if f.mode == Closed {
		return
	}
	fn(&f.draft)
}

// SetDraft replaces the draft.
func (f *Form[T]) SetDraft(d T) {
	if f.mode == Closed {
		return
	}
	f.draft = d
}

// Attach sets the file sent with the next submit. nil clears it.
func (f *Form[T]) Attach(file *remote.File) {
	f.attachment = file
}

// Validate runs the validator on the draft and stores the result.
func (f *Form[T]) Validate() Errors {
	errs := Errors{}
	if f.cfg.Validate != nil {
		errs.Merge(f.cfg.Validate(f.draft))
	}
	f.errs = errs
	return errs
}

// Submit validates the draft and, when valid, persists it through src and
// writes the result into store. A failed validation never calls src.
// A backend failure leaves the form open and store untouched.
//
// src may release the caller's lock for the round trip; the form is only
// closed when it still holds the submitted draft afterwards.
func (f *Form[T]) Submit(ctx context.Context, src Source[T], store *collection.Store[T]) (T, error) {
	var zero T
	if f.mode == Closed {
		return zero, ErrClosed
	}
	if errs := f.Validate(); !errs.Empty() {
		return zero, errs
	}
	f.submitErr = nil
	mode, id, draft, file := f.mode, f.editingID, f.draft, f.attachment

	var (
		saved T
		err   error
	)
	if mode == Creating {
		saved, err = create(ctx, src, draft, file)
		if err == nil && saved.EntityID() == "" {
			err = ErrNoEntity
		}
	} else {
		saved, err = update(ctx, src, id, draft, file)
	}
	if err != nil {
		if f.mode == mode && f.editingID == id {
			f.submitErr = err
		}
		return zero, err
	}

	if mode == Creating {
		if f.cfg.Prepend {
			store.Prepend(saved)
		} else {
			store.Add(saved)
		}
	} else {
		if saved.EntityID() != id {
			// Backend answered without the entity; keep the submitted draft.
			saved = draft
		}
		store.ReplaceOne(saved)
	}
	if f.mode == mode && f.editingID == id {
		f.reset()
	}
	return saved, nil
}

func create[T any](ctx context.Context, src Source[T], draft T, file *remote.File) (T, error) {
	if fs, ok := src.(FileSource[T]); ok && file != nil {
		return fs.CreateWithFile(ctx, draft, file)
	}
	return src.Create(ctx, draft)
}

func update[T any](ctx context.Context, src Source[T], id string, draft T, file *remote.File) (T, error) {
	if fs, ok := src.(FileSource[T]); ok && file != nil {
		return fs.UpdateWithFile(ctx, id, draft, file)
	}
	return src.Update(ctx, id, draft)
}

func (f *Form[T]) reset() {
	var zero T
	f.mode = Closed
	f.draft = zero
	f.editingID = ""
	f.errs = nil
	f.submitErr = nil
	f.attachment = nil
}
