// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package remote is the HTTP client for the Maker Skills REST backend.
// Every JSON response is wrapped in a {message, data} envelope; the client
// unwraps data and turns failures into RemoteError or TransportError.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client configuration constants
const (
	MaxResponseLen = 10 << 20             // Maximum response body read (10MB)
	MaxErrorLen    = 4 * 1024             // Maximum error body kept for messages
	UserAgent      = "MakerSkillsWeb/1.0" // User-Agent header value
)

// Envelope is the wrapper the backend puts around every JSON response.
type Envelope[T any] struct {
	Message string `json:"message"`
	Data    T      `json:"data"`
}

// TokenSource supplies the bearer token for a request, or "" when anonymous.
type TokenSource interface {
	Token(ctx context.Context) string
}

// TokenFunc adapts a function to TokenSource.
type TokenFunc func(ctx context.Context) string

// Token implements TokenSource.
func (f TokenFunc) Token(ctx context.Context) string { return f(ctx) }

// Client issues requests against the backend base URL.
// It never retries and never caches; each call goes to the network.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	tokens  TokenSource
	logger  *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets a per-request timeout. Zero leaves requests bounded only by their context.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithTokenSource sets where bearer tokens come from.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a client for the given base URL (e.g. https://api.example.com/api).
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base URL must be http or https, got %q", baseURL)
	}

	c := &Client{
		baseURL: u,
		http: &http.Client{
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// endpoint joins the base URL with a resource path.
func (c *Client) endpoint(path string) string {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + "/" + strings.TrimLeft(path, "/")
	return u.String()
}

// request describes one backend call.
type request struct {
	method      string
	path        string
	body        io.Reader
	contentType string
}

// doJSON marshals body (if any) as JSON and decodes the envelope data into out.
func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) (string, error) {
	req := request{method: method, path: path}
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return "", fmt.Errorf("encoding %s %s body: %w", method, path, err)
		}
		req.body = bytes.NewReader(payload)
		req.contentType = "application/json"
	}
	return c.do(ctx, req, out)
}

// do performs the request, classifies the outcome and unwraps the envelope.
func (c *Client) do(ctx context.Context, r request, out any) (string, error) {
	target := c.endpoint(r.path)

	req, err := http.NewRequestWithContext(ctx, r.method, target, r.body)
	if err != nil {
		return "", &TransportError{Method: r.method, URL: target, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", UserAgent)
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	if c.tokens != nil {
		if token := c.tokens.Token(ctx); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("backend request failed",
			"method", r.method, "path", r.path, "error", err)
		return "", &TransportError{Method: r.method, URL: target, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	c.logger.Debug("backend request",
		"method", r.method,
		"path", r.path,
		"status", resp.StatusCode,
		"duration", time.Since(start).String())

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, MaxErrorLen))
		return "", &RemoteError{
			Method:  r.method,
			Path:    r.path,
			Status:  resp.StatusCode,
			Message: errorMessage(body),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseLen))
	if err != nil {
		return "", &TransportError{Method: r.method, URL: target, Err: fmt.Errorf("reading body: %w", err)}
	}
	if resp.StatusCode == http.StatusNoContent || len(bytes.TrimSpace(body)) == 0 {
		return "", nil
	}

	env := Envelope[json.RawMessage]{}
	if err := json.Unmarshal(body, &env); err != nil {
		return "", &RemoteError{
			Method:  r.method,
			Path:    r.path,
			Status:  resp.StatusCode,
			Message: "invalid response envelope: " + err.Error(),
		}
	}
	if out != nil && len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return env.Message, &RemoteError{
				Method:  r.method,
				Path:    r.path,
				Status:  resp.StatusCode,
				Message: "unexpected response data: " + err.Error(),
			}
		}
	}
	return env.Message, nil
}

// errorMessage extracts the server message from an error body.
// JSON bodies carry {message} (or {error}); anything else is used as plain text.
func errorMessage(body []byte) string {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return ""
	}
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(trimmed, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		return payload.Error
	}
	return string(trimmed)
}

// Fetch issues GET {base}/{path} and returns the unwrapped data.
func Fetch[T any](ctx context.Context, c *Client, path string) (T, error) {
	var out T
	_, err := c.doJSON(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

// Send issues a JSON request with the given method and returns the unwrapped data.
func Send[T any](ctx context.Context, c *Client, method, path string, body any) (T, error) {
	var out T
	_, err := c.doJSON(ctx, method, path, body, &out)
	return out, err
}
