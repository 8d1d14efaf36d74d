// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/makerskills/makerskills-web/internal/cache"
	"github.com/makerskills/makerskills-web/internal/config"
	"github.com/makerskills/makerskills-web/internal/content"
	"github.com/makerskills/makerskills-web/internal/handler"
	"github.com/makerskills/makerskills-web/internal/i18n"
	"github.com/makerskills/makerskills-web/internal/imaging"
	"github.com/makerskills/makerskills-web/internal/logging"
	"github.com/makerskills/makerskills-web/internal/middleware"
	"github.com/makerskills/makerskills-web/internal/remote"
	"github.com/makerskills/makerskills-web/internal/render"
	"github.com/makerskills/makerskills-web/internal/scheduler"
	"github.com/makerskills/makerskills-web/internal/session"
	"github.com/makerskills/makerskills-web/internal/store"
	"github.com/makerskills/makerskills-web/internal/version"
	"github.com/makerskills/makerskills-web/internal/workspace"
	"github.com/makerskills/makerskills-web/web"
)

// Runtime limits not exposed as configuration.
const (
	publicCacheTTL     = 5 * time.Minute
	publicCacheEntries = 256
	activityRetention  = 90 * 24 * time.Hour
	imageQuality       = 85
	probePath          = "/static/summary"
	shutdownGrace      = 30 * time.Second
)

const usage = `Maker Skills - public site and back-office

Usage: %s [-version]

Configuration is read from the environment and from ./.env:
  MAKERSKILLS_API_BASE_URL      Backend API base URL (required)
  MAKERSKILLS_SESSION_SECRET    Session and CSRF key (required, min 32 bytes)
  MAKERSKILLS_DB_PATH           Session database path (default ./data/sessions.db)
  MAKERSKILLS_SERVER_PORT       Listen port (default 8080)
  MAKERSKILLS_ENV               development or production (default development)
  MAKERSKILLS_MOCK_RESOURCES    Comma list of resources served from sample data
  MAKERSKILLS_REDIS_URL         Redis for shared rate limits and cache (optional)

See .env.example for every setting.

Options:
`

func main() {
	var showVersion bool
	flag.BoolVar(&showVersion, "version", false, "print the version and exit")
	flag.BoolVar(&showVersion, "v", false, "shorthand for -version")
	flag.Usage = func() {
		_, _ = fmt.Fprintf(flag.CommandLine.Output(), usage, os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if showVersion {
		fmt.Println("makerskills", version.Get())
		return
	}

	if err := run(); err != nil {
		slog.Error("makerskills stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}

	// Warnings and errors are also kept in memory for the dashboard.
	ring := logging.NewRing(logging.DefaultCapacity)
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	logger := slog.New(logging.NewRecentHandler(textHandler, ring))
	slog.SetDefault(logger)

	if err := i18n.Init(logger); err != nil {
		return fmt.Errorf("initializing i18n: %w", err)
	}
	slog.Info("translations loaded", "languages", i18n.SupportedLanguages, "keys", i18n.TranslationCount(i18n.DefaultLanguage))

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o750); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			slog.Error("closing session database", "error", err)
		}
	}()
	slog.Info("session database opened", "path", cfg.DBPath)

	if err := store.Migrate(ctx, db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	activity := store.New(db)

	sessionManager := session.New(db, cfg.IsDevelopment())

	client, err := remote.New(cfg.APIBaseURL,
		remote.WithTimeout(cfg.APITimeout),
		remote.WithTokenSource(session.Tokens(sessionManager)),
		remote.WithLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("creating API client: %w", err)
	}
	slog.Info("API client ready", "base_url", client.BaseURL(), "mock", cfg.MockResources)

	sources, err := handler.NewSources(client, cfg.IsMock)
	if err != nil {
		return fmt.Errorf("loading data sources: %w", err)
	}

	workspaces := workspace.NewManager(cfg.WorkspaceIdle, logger)

	// Shared rate-limit store and public cache when Redis is configured.
	var redisClient *redis.Client
	if cfg.UseRedis() {
		redisClient, err = middleware.ConnectRedis(ctx, cfg.RedisURL)
		if err != nil {
			slog.Warn("redis unavailable, using in-process limits and cache", "error", err)
			redisClient = nil
		} else {
			defer func() { _ = redisClient.Close() }()
			slog.Info("redis connected")
		}
	}

	memoryLimiter := middleware.NewMemoryLimiter(cfg.ContactPerHour, time.Hour)
	var contactLimiter middleware.Limiter = memoryLimiter
	var publicCache cache.Cache = cache.NewMemoryCache(publicCacheTTL, publicCacheEntries)
	if redisClient != nil {
		redisLimiter := middleware.NewRedisLimiter(redisClient, cfg.RedisPrefix, cfg.ContactPerHour, time.Hour)
		contactLimiter = middleware.NewFallbackLimiter(redisLimiter, memoryLimiter, logger)
		publicCache = cache.NewRedisCache(redisClient, cfg.RedisPrefix, publicCacheTTL)
	}

	loginProtection := middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig())

	// Background jobs
	probe := scheduler.NewProbe(func(ctx context.Context) error {
		return client.Ping(ctx, probePath)
	})
	sched := scheduler.New(db, logger)
	jobs := []scheduler.Job{
		{
			Name:        "workspace-sweep",
			Description: "Evict idle back-office workspaces",
			Schedule:    cfg.SweepSchedule,
			Manual:      true,
			Run: func(context.Context) error {
				if n := workspaces.Sweep(); n > 0 {
					slog.Info("idle workspaces evicted", "category", "system", "count", n)
				}
				return nil
			},
		},
		{
			Name:        "backend-probe",
			Description: "Check that the API server answers",
			Schedule:    cfg.ProbeSchedule,
			Timeout:     10 * time.Second,
			Manual:      true,
			Run:         probe.Run,
		},
		{
			Name:        "activity-prune",
			Description: "Delete journal rows older than 90 days",
			Schedule:    "@daily",
			Manual:      true,
			Run: func(ctx context.Context) error {
				n, err := activity.PruneActivity(ctx, time.Now().Add(-activityRetention))
				if err == nil && n > 0 {
					slog.Info("activity pruned", "category", "system", "rows", n)
				}
				return err
			},
		},
		{
			Name:        "limiter-prune",
			Description: "Forget stale login and contact rate-limit entries",
			Schedule:    "@hourly",
			Run: func(context.Context) error {
				accounts := loginProtection.Prune()
				keys := memoryLimiter.Prune()
				slog.Debug("rate limiters pruned", "category", "system", "accounts", accounts, "contact_keys", keys)
				return nil
			},
		},
	}
	for _, job := range jobs {
		if err := sched.Add(job); err != nil {
			return fmt.Errorf("scheduling %s: %w", job.Name, err)
		}
	}
	sched.Start()
	defer sched.Stop()
	go func() { _ = probe.Run(ctx) }()

	// Handlers
	templatesFS, err := fs.Sub(web.Templates, "templates")
	if err != nil {
		return fmt.Errorf("loading templates: %w", err)
	}
	renderer, err := render.New(render.Config{
		TemplatesFS:    templatesFS,
		SessionManager: sessionManager,
		Logger:         logger,
	})
	if err != nil {
		return fmt.Errorf("initializing renderer: %w", err)
	}

	publicHandler := handler.NewPublicHandler(renderer, sessionManager, content.New(), client, sources, publicCache, logger)
	screens := handler.AdminScreens(sources, handler.Deps{
		Renderer:       renderer,
		SessionManager: sessionManager,
		Workspaces:     workspaces,
		Activity:       activity,
		Images:         imaging.NewProcessor(cfg.ImageMaxWidth, cfg.ImageMaxHeight, imageQuality, cfg.UploadMaxBytes()),
		PerPage:        cfg.ItemsPerPage,
		UploadMaxBytes: cfg.UploadMaxBytes(),
		OnChange:       publicHandler.Invalidate,
		Logger:         logger,
	})

	menu := make([]render.MenuItem, 0, len(screens)+2)
	for _, s := range screens {
		menu = append(menu, render.MenuItem{Path: s.BasePath(), Label: s.Title(), MinRole: s.MinRole()})
	}
	menu = append(menu,
		render.MenuItem{Path: handler.AdminPrefix + "/activity", Label: "nav.activity"},
		render.MenuItem{Path: handler.AdminPrefix + "/jobs", Label: "nav.jobs", MinRole: middleware.RoleAdmin},
	)
	renderer.SetMenu(menu)

	authHandler := handler.NewAuthHandler(client, renderer, sessionManager, workspaces, loginProtection, logger)
	dashboardHandler := handler.NewDashboardHandler(client, renderer, sessionManager, workspaces, activity, ring, probe, logger)
	jobsHandler := handler.NewJobsHandler(renderer, sched.Registry(), logger)
	healthHandler := handler.NewHealthHandler(db, probe, workspaces, publicCache)

	// Router
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.GetHead)
	r.Use(chimw.StripSlashes)
	r.Use(middleware.SecurityHeaders(middleware.SecurityConfig{
		Dev:             cfg.IsDevelopment(),
		AssetOrigin:     middleware.AssetOrigin(cfg.APIBaseURL),
		NoStorePrefixes: []string{handler.AdminPrefix, middleware.LoginPath},
	}))

	staticFS, err := fs.Sub(web.Static, "static/dist")
	if err != nil {
		return fmt.Errorf("loading static files: %w", err)
	}
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServerFS(staticFS)))

	r.Get("/health/live", healthHandler.Liveness)
	r.Get("/health/ready", healthHandler.Readiness)

	r.Group(func(r chi.Router) {
		r.Use(sessionManager.LoadAndSave)
		r.Use(middleware.Preferences(sessionManager))
		r.Use(middleware.LoadAccount(sessionManager))
		r.Use(middleware.CSRF(middleware.CSRFConfig{
			Key:  []byte(cfg.SessionSecret),
			Dev:  cfg.IsDevelopment(),
			Port: cfg.ServerPort,
		}))

		r.Get("/health", healthHandler.Health)

		// Public site
		r.Get("/", publicHandler.Home)
		r.Get("/about", publicHandler.About)
		r.Get("/services", publicHandler.Services)
		r.Get("/formations", publicHandler.Formations)
		r.Get("/formations/{slug}", publicHandler.Formation)
		r.Get("/bootcamp", publicHandler.Bootcamp)
		r.Get("/shop", publicHandler.Shop)
		r.Get("/partners", publicHandler.Partners)
		r.Get("/contact", publicHandler.ContactForm)
		r.With(middleware.RateLimit(contactLimiter, "contact", publicHandler.RateLimited)).
			Post("/contact", publicHandler.Contact)
		r.Post("/theme", publicHandler.Theme)

		// Authentication
		r.Get(middleware.LoginPath, authHandler.LoginForm)
		r.With(loginProtection.Middleware()).Post(middleware.LoginPath, authHandler.Login)
		r.Post("/logout", authHandler.Logout)

		// Back-office
		r.Route(handler.AdminPrefix, func(r chi.Router) {
			r.Use(middleware.RequireAuth(sessionManager))
			r.Use(middleware.RequireRole(middleware.RoleInstructor))
			r.Use(middleware.Workspace(sessionManager, workspaces))

			r.Get("/", dashboardHandler.Dashboard)
			r.Get("/activity", dashboardHandler.Activity)
			r.Route("/jobs", func(r chi.Router) {
				r.Use(middleware.RequireAdmin())
				jobsHandler.Mount(r)
			})
			for _, s := range screens {
				s.Mount(r)
			}
		})

		r.NotFound(publicHandler.NotFound)
	})

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("listening", "addr", srv.Addr, "env", cfg.Env, "version", version.Get().String())
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}
	slog.Info("server stopped")
	return nil
}
