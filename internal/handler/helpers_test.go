// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"io"
	"io/fs"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"

	"github.com/makerskills/makerskills-web/internal/i18n"
	"github.com/makerskills/makerskills-web/internal/middleware"
	"github.com/makerskills/makerskills-web/internal/remote"
	"github.com/makerskills/makerskills-web/internal/render"
	"github.com/makerskills/makerskills-web/internal/session"
	"github.com/makerskills/makerskills-web/internal/testutil"
	"github.com/makerskills/makerskills-web/internal/workspace"
	"github.com/makerskills/makerskills-web/web"
)

func TestMain(m *testing.M) {
	if err := i18n.Init(testutil.TestLoggerSilent()); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

// testApp is a server running the session, preference and account
// middleware in front of the routes under test.
type testApp struct {
	t          *testing.T
	server     *httptest.Server
	client     *http.Client
	db         *sql.DB
	sm         *scs.SessionManager
	renderer   *render.Renderer
	workspaces *workspace.Manager
}

// testSignInPath signs the client in with the role posted as "role".
const testSignInPath = "/test/signin"

func newTestApp(t *testing.T, mount func(r chi.Router, app *testApp)) *testApp {
	t.Helper()

	db := testutil.TestDB(t)
	sm := session.New(db, true)
	app := &testApp{
		t:          t,
		db:         db,
		sm:         sm,
		renderer:   testRenderer(t, sm),
		workspaces: workspace.NewManager(time.Hour, testutil.TestLoggerSilent()),
	}

	r := chi.NewRouter()
	r.Use(sm.LoadAndSave)
	r.Use(middleware.Preferences(sm))
	r.Use(middleware.LoadAccount(sm))
	r.Post(testSignInPath, func(w http.ResponseWriter, r *http.Request) {
		role := r.FormValue("role")
		ws := app.workspaces.Create()
		login := remote.Login{
			Token: "test-token",
			User:  remote.Account{ID: "u-1", Name: "Ada", Email: "ada@example.com", Role: role},
		}
		if err := session.SignIn(r.Context(), sm, login, ws.ID); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
	mount(r, app)

	app.server = httptest.NewServer(r)
	t.Cleanup(app.server.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookiejar.New: %v", err)
	}
	app.client = &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return app
}

func testRenderer(t *testing.T, sm *scs.SessionManager) *render.Renderer {
	t.Helper()
	templatesFS, err := fs.Sub(web.Templates, "templates")
	if err != nil {
		t.Fatalf("fs.Sub: %v", err)
	}
	renderer, err := render.New(render.Config{
		TemplatesFS:    templatesFS,
		SessionManager: sm,
		Logger:         testutil.TestLoggerSilent(),
	})
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}
	return renderer
}

// adminRoutes mounts fn under /admin behind the same guards as the server.
func (app *testApp) adminRoutes(r chi.Router, fn func(r chi.Router)) {
	r.Route(AdminPrefix, func(r chi.Router) {
		r.Use(middleware.RequireAuth(app.sm))
		r.Use(middleware.RequireRole(middleware.RoleInstructor))
		r.Use(middleware.Workspace(app.sm, app.workspaces))
		fn(r)
	})
}

func (app *testApp) signIn(role string) {
	app.t.Helper()
	resp, _ := app.post(testSignInPath, url.Values{"role": {role}})
	if resp.StatusCode != http.StatusNoContent {
		app.t.Fatalf("sign in as %q: status %d", role, resp.StatusCode)
	}
}

func (app *testApp) do(req *http.Request) (*http.Response, string) {
	app.t.Helper()
	req.Header.Set("Accept-Language", "en")
	resp, err := app.client.Do(req)
	if err != nil {
		app.t.Fatalf("%s %s: %v", req.Method, req.URL.Path, err)
	}
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		app.t.Fatalf("reading body: %v", err)
	}
	return resp, string(body)
}

func (app *testApp) get(path string) (*http.Response, string) {
	app.t.Helper()
	req, err := http.NewRequest(http.MethodGet, app.server.URL+path, nil)
	if err != nil {
		app.t.Fatalf("NewRequest: %v", err)
	}
	return app.do(req)
}

func (app *testApp) post(path string, values url.Values) (*http.Response, string) {
	app.t.Helper()
	req, err := http.NewRequest(http.MethodPost, app.server.URL+path, strings.NewReader(values.Encode()))
	if err != nil {
		app.t.Fatalf("NewRequest: %v", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return app.do(req)
}

// follow asserts a 303 redirect to want and returns the target page.
func (app *testApp) follow(resp *http.Response, want string) string {
	app.t.Helper()
	if resp.StatusCode != http.StatusSeeOther {
		app.t.Fatalf("status = %d; want %d", resp.StatusCode, http.StatusSeeOther)
	}
	if loc := resp.Header.Get("Location"); loc != want {
		app.t.Fatalf("Location = %q; want %q", loc, want)
	}
	_, body := app.get(want)
	return body
}

func assertStatus(t *testing.T, got, want int) {
	t.Helper()
	if got != want {
		t.Errorf("status = %d; want %d", got, want)
	}
}

func assertContains(t *testing.T, body, want string) {
	t.Helper()
	if !strings.Contains(body, want) {
		t.Errorf("body does not contain %q", want)
	}
}

func assertNotContains(t *testing.T, body, unwanted string) {
	t.Helper()
	if strings.Contains(body, unwanted) {
		t.Errorf("body unexpectedly contains %q", unwanted)
	}
}
