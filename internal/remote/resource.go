// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
)

// File is an attachment sent with a multipart create or update.
type File struct {
	Field       string
	Filename    string
	ContentType string
	Data        []byte
}

// Resource is a typed client for one backend collection, e.g. /formations.
type Resource[T any] struct {
	client       *Client
	path         string
	updateMethod string
}

// ResourceOption configures a Resource.
type ResourceOption func(*resourceOptions)

type resourceOptions struct {
	updateMethod string
}

// WithUpdateMethod overrides the verb used by Update (PATCH by default).
func WithUpdateMethod(method string) ResourceOption {
	return func(o *resourceOptions) { o.updateMethod = method }
}

// NewResource binds a resource path to a client.
func NewResource[T any](c *Client, path string, opts ...ResourceOption) *Resource[T] {
	o := resourceOptions{updateMethod: http.MethodPatch}
	for _, opt := range opts {
		opt(&o)
	}
	return &Resource[T]{
		client:       c,
		path:         "/" + strings.Trim(path, "/"),
		updateMethod: o.updateMethod,
	}
}

// Path returns the resource path relative to the base URL.
func (r *Resource[T]) Path() string {
	return r.path
}

func (r *Resource[T]) itemPath(id string) string {
	return r.path + "/" + url.PathEscape(id)
}

// List fetches every entity of the collection.
func (r *Resource[T]) List(ctx context.Context) ([]T, error) {
	var out []T
	if _, err := r.client.doJSON(ctx, http.MethodGet, r.path, nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

// Get fetches one entity by id.
func (r *Resource[T]) Get(ctx context.Context, id string) (T, error) {
	var out T
	_, err := r.client.doJSON(ctx, http.MethodGet, r.itemPath(id), nil, &out)
	return out, err
}

// Create posts a draft and returns the entity as stored by the backend.
func (r *Resource[T]) Create(ctx context.Context, draft T) (T, error) {
	var out T
	_, err := r.client.doJSON(ctx, http.MethodPost, r.path, draft, &out)
	return out, err
}

// Update sends the patch with the configured update verb.
func (r *Resource[T]) Update(ctx context.Context, id string, patch T) (T, error) {
	var out T
	_, err := r.client.doJSON(ctx, r.updateMethod, r.itemPath(id), patch, &out)
	return out, err
}

// Delete removes an entity. Both 200 and 204 count as success.
func (r *Resource[T]) Delete(ctx context.Context, id string) error {
	_, err := r.client.doJSON(ctx, http.MethodDelete, r.itemPath(id), nil, nil)
	return err
}

// CreateWithFile posts the draft as multipart form data with an attached file.
func (r *Resource[T]) CreateWithFile(ctx context.Context, draft T, file *File) (T, error) {
	return r.sendMultipart(ctx, http.MethodPost, r.path, draft, file)
}

// UpdateWithFile sends the patch as multipart form data with an attached file.
func (r *Resource[T]) UpdateWithFile(ctx context.Context, id string, patch T, file *File) (T, error) {
	return r.sendMultipart(ctx, r.updateMethod, r.itemPath(id), patch, file)
}

func (r *Resource[T]) sendMultipart(ctx context.Context, method, path string, draft T, file *File) (T, error) {
	var out T
	body, contentType, err := encodeMultipart(draft, file)
	if err != nil {
		return out, fmt.Errorf("encoding %s %s multipart body: %w", method, path, err)
	}
	_, err = r.client.do(ctx, request{
		method:      method,
		path:        path,
		body:        body,
		contentType: contentType,
	}, &out)
	return out, err
}

// encodeMultipart flattens the JSON form of v into form fields.
// Scalars are written as text, objects and arrays as JSON strings.
func encodeMultipart(v any, file *File) (*bytes.Buffer, string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, "", err
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, "", fmt.Errorf("multipart body must be an object: %w", err)
	}

	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	for name, value := range fields {
		if name == "_id" {
			continue
		}
		if err := w.WriteField(name, fieldText(value)); err != nil {
			return nil, "", err
		}
	}

	if file != nil && len(file.Data) > 0 {
		field := file.Field
		if field == "" {
			field = "image"
		}
		h := textproto.MIMEHeader{}
		h.Set("Content-Disposition",
			fmt.Sprintf(`form-data; name=%q; filename=%q`, field, file.Filename))
		ct := file.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h.Set("Content-Type", ct)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(file.Data); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf, w.FormDataContentType(), nil
}

func fieldText(value json.RawMessage) string {
	var s string
	if err := json.Unmarshal(value, &s); err == nil {
		return s
	}
	if string(value) == "null" {
		return ""
	}
	return string(value)
}
