// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package remote

import (
	"context"
	"errors"
	"net/http"
)

// ErrNoToken is returned when the backend accepts credentials but issues no token.
var ErrNoToken = errors.New("login response carried no token")

// Credentials are posted to /auth/login.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Account is the user record returned on login.
type Account struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Login is the data part of a successful /auth/login response.
type Login struct {
	Token string  `json:"token"`
	User  Account `json:"user"`
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, creds Credentials) (Login, error) {
	var out Login
	if _, err := c.doJSON(ctx, http.MethodPost, "/auth/login", creds, &out); err != nil {
		return Login{}, err
	}
	if out.Token == "" {
		return Login{}, ErrNoToken
	}
	return out, nil
}

// Ping issues a lightweight GET against path and reports whether the backend answered.
// Any HTTP response, even an error status, means the backend is reachable.
func (c *Client) Ping(ctx context.Context, path string) error {
	_, err := c.doJSON(ctx, http.MethodGet, path, nil, nil)
	if err == nil {
		return nil
	}
	var re *RemoteError
	if errors.As(err, &re) && re.Status < http.StatusInternalServerError {
		return nil
	}
	return err
}
