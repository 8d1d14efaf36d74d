// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"slices"
	"strings"
	"time"
	"unicode"

	"github.com/caarlos0/env/v11"
)

// knownWeakSecrets are the example secrets shipped in .env.example and the docs.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// Config holds the application configuration loaded from environment variables.
type Config struct {
	APIBaseURL    string        `env:"MAKERSKILLS_API_BASE_URL,required"`
	APITimeout    time.Duration `env:"MAKERSKILLS_API_TIMEOUT" envDefault:"0s"` // 0 leaves calls bounded by the request context only
	DBPath        string        `env:"MAKERSKILLS_DB_PATH" envDefault:"./data/sessions.db"`
	SessionSecret string        `env:"MAKERSKILLS_SESSION_SECRET,required"`
	ServerHost    string        `env:"MAKERSKILLS_SERVER_HOST" envDefault:"localhost"`
	ServerPort    int           `env:"MAKERSKILLS_SERVER_PORT" envDefault:"8080"`
	Env           string        `env:"MAKERSKILLS_ENV" envDefault:"development"`
	LogLevel      string        `env:"MAKERSKILLS_LOG_LEVEL" envDefault:"info"`

	// Back-office lists
	ItemsPerPage  int           `env:"MAKERSKILLS_ITEMS_PER_PAGE" envDefault:"10"`
	WorkspaceIdle time.Duration `env:"MAKERSKILLS_WORKSPACE_IDLE" envDefault:"30m"`
	MockResources []string      `env:"MAKERSKILLS_MOCK_RESOURCES" envSeparator:","` // Resources served from embedded mock data

	// Uploads
	UploadMaxMB    int `env:"MAKERSKILLS_UPLOAD_MAX_MB" envDefault:"5"`
	ImageMaxWidth  int `env:"MAKERSKILLS_IMAGE_MAX_WIDTH" envDefault:"1600"`
	ImageMaxHeight int `env:"MAKERSKILLS_IMAGE_MAX_HEIGHT" envDefault:"1600"`

	// Rate limiting
	RedisURL       string `env:"MAKERSKILLS_REDIS_URL"` // Optional Redis URL for a shared contact-form limit
	RedisPrefix    string `env:"MAKERSKILLS_REDIS_PREFIX" envDefault:"makerskills:"`
	ContactPerHour int    `env:"MAKERSKILLS_CONTACT_PER_HOUR" envDefault:"5"`

	// Background jobs
	ProbeSchedule string `env:"MAKERSKILLS_PROBE_SCHEDULE" envDefault:"@every 1m"`
	SweepSchedule string `env:"MAKERSKILLS_SWEEP_SCHEDULE" envDefault:"@every 5m"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedis returns true if a Redis rate-limit store is configured.
func (c Config) UseRedis() bool {
	return c.RedisURL != ""
}

// UploadMaxBytes returns the upload size limit in bytes.
func (c Config) UploadMaxBytes() int64 {
	return int64(c.UploadMaxMB) << 20
}

// IsMock reports whether resource is served from embedded mock data.
func (c Config) IsMock(resource string) bool {
	return slices.ContainsFunc(c.MockResources, func(r string) bool {
		return strings.EqualFold(strings.TrimSpace(r), resource)
	})
}

// MinSessionSecretLength is the minimum length of the session secret, which
// also keys the CSRF tokens.
const MinSessionSecretLength = 32

const secretHint = "generate one with: openssl rand -base64 32"

// Load reads the configuration from the process environment.
func Load() (*Config, error) {
	return load(env.Options{})
}

// load parses with opts and validates the result.
func load(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.APIBaseURL = strings.TrimRight(cfg.APIBaseURL, "/")
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if secretClasses(cfg.SessionSecret) < 3 {
		slog.Warn("MAKERSKILLS_SESSION_SECRET has low character diversity; " + secretHint)
	}
	return cfg, nil
}

// validate reports every invalid setting at once.
func (c *Config) validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(len(c.SessionSecret) >= MinSessionSecretLength,
		"MAKERSKILLS_SESSION_SECRET must be at least %d bytes long, got %d; %s",
		MinSessionSecretLength, len(c.SessionSecret), secretHint)
	check(!slices.Contains(knownWeakSecrets, c.SessionSecret),
		"MAKERSKILLS_SESSION_SECRET is a published example value; %s", secretHint)

	u, err := url.Parse(c.APIBaseURL)
	check(err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != "",
		"MAKERSKILLS_API_BASE_URL must be an absolute http(s) URL, got %q", c.APIBaseURL)

	check(c.APITimeout >= 0, "MAKERSKILLS_API_TIMEOUT must not be negative, got %v", c.APITimeout)
	check(c.ItemsPerPage > 0, "MAKERSKILLS_ITEMS_PER_PAGE must be positive, got %d", c.ItemsPerPage)
	check(c.UploadMaxMB > 0, "MAKERSKILLS_UPLOAD_MAX_MB must be positive, got %d", c.UploadMaxMB)
	check(c.ContactPerHour > 0, "MAKERSKILLS_CONTACT_PER_HOUR must be positive, got %d", c.ContactPerHour)

	return errors.Join(errs...)
}

// secretClasses counts the character classes present in s: lowercase,
// uppercase, digits and everything else.
func secretClasses(s string) int {
	var lower, upper, digit, other bool
	for _, r := range s {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		default:
			other = true
		}
	}
	n := 0
	for _, present := range []bool{lower, upper, digit, other} {
		if present {
			n++
		}
	}
	return n
}
