// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package remote

import (
	"errors"
	"fmt"
	"net/http"
)

// RemoteError is returned when the backend answers with a non-2xx status.
type RemoteError struct {
	Method  string
	Path    string
	Status  int
	Message string
}

func (e *RemoteError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	return fmt.Sprintf("remote %s %s: %d %s", e.Method, e.Path, e.Status, msg)
}

// NotFound reports whether the backend answered 404.
func (e *RemoteError) NotFound() bool {
	return e.Status == http.StatusNotFound
}

// Unauthorized reports whether the backend rejected the bearer token.
func (e *RemoteError) Unauthorized() bool {
	return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
}

// TransportError is returned when the request never produced an HTTP response
// (DNS failure, refused connection, cancelled context, unreadable body).
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport %s %s: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err is a RemoteError with status 404.
func IsNotFound(err error) bool {
	var re *RemoteError
	return errors.As(err, &re) && re.NotFound()
}

// IsUnauthorized reports whether err is a RemoteError with status 401 or 403.
func IsUnauthorized(err error) bool {
	var re *RemoteError
	return errors.As(err, &re) && re.Unauthorized()
}

// IsTransport reports whether err is a TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// Message returns the text suitable for an error banner: the server message
// for remote errors, a generic connectivity message for transport errors.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var re *RemoteError
	if errors.As(err, &re) {
		if re.Message != "" {
			return re.Message
		}
		return http.StatusText(re.Status)
	}
	if IsTransport(err) {
		return "The server could not be reached"
	}
	return err.Error()
}
