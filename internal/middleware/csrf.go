// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"html"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"

	"filippo.io/csrf/gorilla"

	"github.com/makerskills/makerskills-web/internal/i18n"
)

// CSRFFieldName is the form field carrying the token.
const CSRFFieldName = "gorilla.csrf.Token"

// CSRFConfig configures the protection of the login, contact and back-office
// forms. filippo.io/csrf checks Fetch metadata, so no cookie options exist.
type CSRFConfig struct {
	// Key authenticates tokens; the session secret is used.
	Key []byte
	// Dev trusts the local server on Port for cross-origin posts.
	Dev  bool
	Port int
	// OnFailure renders the rejection; nil writes a localized plain 403.
	OnFailure http.Handler
}

// trustedOrigins returns the host:port values allowed to post cross-origin.
func (c CSRFConfig) trustedOrigins() []string {
	if !c.Dev {
		return nil
	}
	p := strconv.Itoa(c.Port)
	return []string{"localhost:" + p, "127.0.0.1:" + p}
}

// CSRF rejects cross-site form posts.
func CSRF(cfg CSRFConfig) func(http.Handler) http.Handler {
	onFailure := cfg.OnFailure
	if onFailure == nil {
		onFailure = http.HandlerFunc(csrfRejected)
	}
	opts := []csrf.Option{csrf.ErrorHandler(onFailure)}
	if origins := cfg.trustedOrigins(); len(origins) > 0 {
		opts = append(opts, csrf.TrustedOrigins(origins))
	}
	return csrf.Protect(cfg.Key, opts...)
}

// CSRFField returns the hidden input carrying the token for r.
func CSRFField(r *http.Request) template.HTML {
	return template.HTML(`<input type="hidden" name="` + CSRFFieldName + `" value="` +
		html.EscapeString(csrf.Token(r)) + `">`)
}

func csrfRejected(w http.ResponseWriter, r *http.Request) {
	reason := "unknown"
	if err := csrf.FailureReason(r); err != nil {
		reason = err.Error()
	}
	slog.Warn("cross-site form post rejected",
		"category", "security",
		"reason", reason,
		"method", r.Method,
		"path", r.URL.Path,
		"origin", r.Header.Get("Origin"),
		"sec_fetch_site", r.Header.Get("Sec-Fetch-Site"),
	)
	http.Error(w, i18n.T(GetLang(r), "msg.csrf_failed"), http.StatusForbidden)
}
