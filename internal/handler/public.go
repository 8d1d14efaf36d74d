// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"

	"github.com/makerskills/makerskills-web/internal/cache"
	"github.com/makerskills/makerskills-web/internal/collection"
	"github.com/makerskills/makerskills-web/internal/content"
	"github.com/makerskills/makerskills-web/internal/filter"
	"github.com/makerskills/makerskills-web/internal/form"
	"github.com/makerskills/makerskills-web/internal/middleware"
	"github.com/makerskills/makerskills-web/internal/model"
	"github.com/makerskills/makerskills-web/internal/paging"
	"github.com/makerskills/makerskills-web/internal/remote"
	"github.com/makerskills/makerskills-web/internal/render"
	"github.com/makerskills/makerskills-web/internal/screen"
	"github.com/makerskills/makerskills-web/internal/session"
	"github.com/makerskills/makerskills-web/internal/uikit"
)

// Public site constants.
const (
	publicCachePrefix = "public:"
	publicPerPage     = 9
	featuredCount     = 3
	contactPath       = "/contacts"
)

// PublicHandler serves the marketing pages.
type PublicHandler struct {
	renderer       *render.Renderer
	sessionManager *scs.SessionManager
	pages          *content.Library
	client         *remote.Client
	src            Sources
	cache          cache.Cache
	logger         *slog.Logger
}

// NewPublicHandler creates the public site handler. c may be nil to disable caching.
func NewPublicHandler(renderer *render.Renderer, sm *scs.SessionManager, pages *content.Library, client *remote.Client, src Sources, c cache.Cache, logger *slog.Logger) *PublicHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PublicHandler{
		renderer:       renderer,
		sessionManager: sm,
		pages:          pages,
		client:         client,
		src:            src,
		cache:          c,
		logger:         logger.With("category", "public"),
	}
}

// Invalidate drops the cached public copy of resource.
func (h *PublicHandler) Invalidate(ctx context.Context, resource string) {
	if h.cache == nil {
		return
	}
	if err := h.cache.DeleteByPrefix(ctx, publicCachePrefix+resource); err != nil {
		h.logger.Warn("failed to invalidate public cache", "resource", resource, "error", err)
	}
}

// published lists the published entities of a resource, through the cache.
func published[T collection.Entity](ctx context.Context, h *PublicHandler, name string, src screen.Source[T], isPublished func(T) bool) ([]T, error) {
	load := func(ctx context.Context) ([]T, error) {
		items, err := src.List(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]T, 0, len(items))
		for _, it := range items {
			if isPublished(it) {
				out = append(out, it)
			}
		}
		return out, nil
	}
	if h.cache == nil {
		return load(ctx)
	}
	return cache.NewTyped[[]T](h.cache, 0).GetOrLoad(ctx, publicCachePrefix+name, load)
}

// publicPage carries the data shared by every public template.
type publicPage struct {
	Body        template.HTML
	Unavailable bool
	Items       any
	Featured    any
	Pagination  uikit.Pager
	Filter      filter.State
	Categories  []Choice
}

func (h *PublicHandler) render(w http.ResponseWriter, r *http.Request, status int, name, titleKey string, data any) {
	lang := middleware.GetLang(r)
	err := h.renderer.RenderStatus(w, r, status, name, render.TemplateData{
		Title: tr(lang, titleKey),
		Data:  data,
	})
	if err != nil {
		h.logger.Error("failed to render public page", "template", name, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// unavailable logs a backend failure; the page still renders without the list.
func (h *PublicHandler) unavailable(r *http.Request, resource string, err error) bool {
	if err == nil {
		return false
	}
	h.logger.Warn("public list unavailable", "resource", resource, "path", r.URL.Path, "error", err)
	return true
}

func (h *PublicHandler) markdown(r *http.Request, slug string) template.HTML {
	body, err := h.pages.Page(slug, middleware.GetLang(r))
	if err != nil {
		h.logger.Error("failed to render page copy", "slug", slug, "error", err)
		return ""
	}
	return body
}

// Home handles GET /.
func (h *PublicHandler) Home(w http.ResponseWriter, r *http.Request) {
	formations, err := published(r.Context(), h, "formations", h.src.Formations, model.Formation.Published)
	page := publicPage{Body: h.markdown(r, "home"), Unavailable: h.unavailable(r, "formations", err)}

	featured := make([]model.Formation, 0, featuredCount)
	for _, f := range formations {
		if f.Featured && len(featured) < featuredCount {
			featured = append(featured, f)
		}
	}
	if len(featured) == 0 {
		featured = append(featured, formations[:min(featuredCount, len(formations))]...)
	}
	page.Featured = featured

	services, err := published(r.Context(), h, "services", h.src.Services, func(s model.Service) bool { return s.Status == model.StatusPublished })
	if !h.unavailable(r, "services", err) {
		page.Items = services
	}
	h.render(w, r, http.StatusOK, "public/home", "nav.home", page)
}

// About handles GET /about.
func (h *PublicHandler) About(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "public/about", "nav.about", publicPage{Body: h.markdown(r, "about")})
}

// Services handles GET /services.
func (h *PublicHandler) Services(w http.ResponseWriter, r *http.Request) {
	services, err := published(r.Context(), h, "services", h.src.Services, func(s model.Service) bool { return s.Status == model.StatusPublished })
	h.render(w, r, http.StatusOK, "public/services", "nav.services", publicPage{
		Items:       services,
		Unavailable: h.unavailable(r, "services", err),
	})
}

// Formations handles GET /formations: the published catalog with search,
// category filter and pagination.
func (h *PublicHandler) Formations(w http.ResponseWriter, r *http.Request) {
	formations, err := published(r.Context(), h, "formations", h.src.Formations, model.Formation.Published)
	page := publicPage{Unavailable: h.unavailable(r, "formations", err)}

	st := filter.FromValues(r.URL.Query())
	st.Status = filter.All
	spec := formationDescriptor(h.src).Filter
	matched := filter.Apply(formations, st, spec)
	p := paging.Build(matched, uikit.PageParam(r), publicPerPage)

	page.Items = p.Items
	page.Filter = st
	page.Pagination = uikit.NewPager(p, "/formations", st.Values())
	if choices, err := categoryChoices(h.src.Categories, "formation", false)(r.Context(), middleware.GetLang(r)); err == nil {
		page.Categories = choices
	} else {
		h.unavailable(r, "categories", err)
	}
	h.render(w, r, http.StatusOK, "public/formations", "nav.formations", page)
}

// Formation handles GET /formations/{slug}.
func (h *PublicHandler) Formation(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	formations, err := published(r.Context(), h, "formations", h.src.Formations, model.Formation.Published)
	if h.unavailable(r, "formations", err) {
		h.renderer.Error(w, r, http.StatusBadGateway, tr(middleware.GetLang(r), "public.unavailable"))
		return
	}
	for _, f := range formations {
		if f.Slug == slug || (f.Slug == "" && f.ID == slug) {
			h.render(w, r, http.StatusOK, "public/formation", "nav.formations", publicPage{Items: f})
			return
		}
	}
	h.renderer.Error(w, r, http.StatusNotFound, tr(middleware.GetLang(r), "public.not_found"))
}

// Bootcamp handles GET /bootcamp.
func (h *PublicHandler) Bootcamp(w http.ResponseWriter, r *http.Request) {
	bootcamps, err := published(r.Context(), h, "bootcamps", h.src.Bootcamps, func(b model.Bootcamp) bool { return b.Status == model.StatusPublished })
	h.render(w, r, http.StatusOK, "public/bootcamp", "nav.bootcamp", publicPage{
		Body:        h.markdown(r, "bootcamp"),
		Items:       bootcamps,
		Unavailable: h.unavailable(r, "bootcamps", err),
	})
}

// Shop handles GET /shop.
func (h *PublicHandler) Shop(w http.ResponseWriter, r *http.Request) {
	products, err := published(r.Context(), h, "products", h.src.Products, func(p model.Product) bool { return p.Status == model.StatusPublished })
	page := publicPage{Unavailable: h.unavailable(r, "products", err)}

	st := filter.FromValues(r.URL.Query())
	st.Status = filter.All
	matched := filter.Apply(products, st, productDescriptor(h.src).Filter)
	p := paging.Build(matched, uikit.PageParam(r), publicPerPage)

	page.Items = p.Items
	page.Filter = st
	page.Pagination = uikit.NewPager(p, "/shop", st.Values())
	h.render(w, r, http.StatusOK, "public/shop", "nav.shop", page)
}

// Partners handles GET /partners.
func (h *PublicHandler) Partners(w http.ResponseWriter, r *http.Request) {
	partners, err := published(r.Context(), h, "partners", h.src.Partners, func(p model.Partner) bool { return p.Status == model.StatusPublished })
	h.render(w, r, http.StatusOK, "public/partners", "nav.partners", publicPage{
		Items:       partners,
		Unavailable: h.unavailable(r, "partners", err),
	})
}

type contactPage struct {
	Message model.ContactMessage
	Errors  form.Errors
	Sent    bool
}

// ContactForm handles GET /contact.
func (h *PublicHandler) ContactForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "public/contact", "contact.title", contactPage{})
}

// Contact handles POST /contact and forwards the message to the backend.
func (h *PublicHandler) Contact(w http.ResponseWriter, r *http.Request) {
	lang := middleware.GetLang(r)
	if !parseFormOrRedirect(w, r, h.renderer, "/contact") {
		return
	}
	msg := model.ContactMessage{
		Name:    strings.TrimSpace(r.PostForm.Get("name")),
		Email:   strings.ToLower(strings.TrimSpace(r.PostForm.Get("email"))),
		Subject: strings.TrimSpace(r.PostForm.Get("subject")),
		Message: strings.TrimSpace(r.PostForm.Get("message")),
		Lang:    lang,
	}

	if errs := validateContact(msg); !errs.Empty() {
		h.render(w, r, http.StatusUnprocessableEntity, "public/contact", "contact.title", contactPage{Message: msg, Errors: errs})
		return
	}

	if _, err := remote.Send[any](r.Context(), h.client, http.MethodPost, contactPath, msg); err != nil {
		h.logger.Error("failed to forward contact message", "category", "contact", "error", err)
		h.renderer.SetFlash(r, tr(lang, "msg.contact_failed"), render.FlashError)
		h.render(w, r, http.StatusBadGateway, "public/contact", "contact.title", contactPage{Message: msg})
		return
	}

	h.logger.Info("contact message forwarded", "category", "contact", "subject", msg.Subject)
	flashSuccess(w, r, h.renderer, "/contact", tr(lang, "msg.contact_sent"))
}

func validateContact(m model.ContactMessage) form.Errors {
	errs := form.Errors{}
	requireText(errs, "name", m.Name)
	checkLength(errs, "name", m.Name, 100)
	checkEmail(errs, "email", m.Email)
	checkLength(errs, "subject", m.Subject, 200)
	requireText(errs, "message", m.Message)
	checkLength(errs, "message", m.Message, 5000)
	return errs
}

// RateLimited renders the contact page with a 429 status.
func (h *PublicHandler) RateLimited(w http.ResponseWriter, r *http.Request) {
	errs := form.Errors{}
	errs.Add("form", "msg.rate_limited")
	h.render(w, r, http.StatusTooManyRequests, "public/contact", "contact.title", contactPage{Errors: errs})
}

// Theme handles POST /theme: toggles light/dark and returns to the page.
func (h *PublicHandler) Theme(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	theme := session.ThemeDark
	if middleware.GetTheme(r) == session.ThemeDark {
		theme = session.ThemeLight
	}
	h.sessionManager.Put(r.Context(), session.KeyTheme, theme)
	http.Redirect(w, r, middleware.SafeNext(r.PostForm.Get("next"), "/"), http.StatusSeeOther)
}

// NotFound renders the public 404 page.
func (h *PublicHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.renderer.Error(w, r, http.StatusNotFound, tr(middleware.GetLang(r), "public.not_found"))
}
