// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"

	"github.com/makerskills/makerskills-web/internal/collection"
	"github.com/makerskills/makerskills-web/internal/export"
	"github.com/makerskills/makerskills-web/internal/filter"
	"github.com/makerskills/makerskills-web/internal/form"
	"github.com/makerskills/makerskills-web/internal/imaging"
	"github.com/makerskills/makerskills-web/internal/middleware"
	"github.com/makerskills/makerskills-web/internal/paging"
	"github.com/makerskills/makerskills-web/internal/remote"
	"github.com/makerskills/makerskills-web/internal/render"
	"github.com/makerskills/makerskills-web/internal/screen"
	"github.com/makerskills/makerskills-web/internal/store"
	"github.com/makerskills/makerskills-web/internal/uikit"
	"github.com/makerskills/makerskills-web/internal/workspace"
)

// AdminPrefix is the mount point of the back-office.
const AdminPrefix = "/admin"

// Descriptor specializes the generic list screen for one entity type.
type Descriptor[T collection.Entity] struct {
	// Name is both the admin route segment and the backend resource path.
	Name string
	// Title is the i18n key of the resource name.
	Title  string
	Fields []Field[T]
	// Columns are shown in the table and exported. Headers are i18n keys.
	Columns []export.Column[T]
	Filter  filter.Spec[T]

	Categories      []string
	CategoryKey     string
	CategoryChoices ChoiceFunc
	Statuses        []string
	StatusKey       string

	Blank    func() T
	WithID   func(T, string) T
	Validate form.Validator[T]
	// Label returns the display name of an entity.
	Label func(T, string) string
	// Prepare fills derived fields of the draft before validation.
	Prepare func(draft *T, existing []T)
	// ImageURL enables the image upload input and returns the current image.
	ImageURL func(T) string

	Prepend bool
	// MinRole restricts the screen; empty means any signed-in account.
	MinRole string
}

// Deps are the collaborators shared by every resource handler.
type Deps struct {
	Renderer       *render.Renderer
	SessionManager *scs.SessionManager
	Workspaces     *workspace.Manager
	Activity       *store.Queries
	Images         *imaging.Processor
	PerPage        int
	UploadMaxBytes int64
	// OnChange runs after every successful create, update or delete.
	OnChange func(ctx context.Context, resource string)
	Logger   *slog.Logger
}

// ResourceHandler serves the admin CRUD screens of one resource.
type ResourceHandler[T collection.Entity] struct {
	desc   Descriptor[T]
	source screen.Source[T]
	deps   Deps
	logger *slog.Logger
}

// NewResourceHandler creates a handler for desc backed by src.
func NewResourceHandler[T collection.Entity](desc Descriptor[T], src screen.Source[T], deps Deps) *ResourceHandler[T] {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if deps.PerPage <= 0 {
		deps.PerPage = paging.DefaultPerPage
	}
	if deps.UploadMaxBytes <= 0 {
		deps.UploadMaxBytes = 5 << 20
	}
	return &ResourceHandler[T]{
		desc:   desc,
		source: src,
		deps:   deps,
		logger: logger.With("category", "screen", "resource", desc.Name),
	}
}

// Name returns the resource name.
func (h *ResourceHandler[T]) Name() string { return h.desc.Name }

// Title returns the i18n key of the resource name.
func (h *ResourceHandler[T]) Title() string { return h.desc.Title }

// MinRole returns the role needed to open the screen.
func (h *ResourceHandler[T]) MinRole() string { return h.desc.MinRole }

// BasePath returns the list URL.
func (h *ResourceHandler[T]) BasePath() string { return AdminPrefix + "/" + h.desc.Name }

// Mount registers the routes under /{name}.
func (h *ResourceHandler[T]) Mount(r chi.Router) {
	r.Route("/"+h.desc.Name, func(r chi.Router) {
		if h.desc.MinRole != "" {
			r.Use(middleware.RequireRole(h.desc.MinRole))
		}
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/new", h.New)
		r.Post("/close", h.Close)
		r.Post("/cancel", h.Cancel)
		r.Post("/refresh", h.Refresh)
		r.Get("/export.{format}", h.Export)
		r.Get("/{id}", h.Detail)
		r.Post("/{id}", h.Update)
		r.Get("/{id}/edit", h.Edit)
		r.Get("/{id}/delete", h.ConfirmDelete)
		r.Post("/{id}/delete", h.Delete)
	})
}

func (h *ResourceHandler[T]) newScreen() *screen.Screen[T] {
	return screen.New(screen.Config[T]{
		Name:   h.desc.Name,
		Source: h.source,
		Filter: h.desc.Filter,
		Form: form.Config[T]{
			Blank:    h.desc.Blank,
			Validate: h.desc.Validate,
			Prepend:  h.desc.Prepend,
		},
		PerPage: h.deps.PerPage,
		Logger:  h.logger,
	})
}

// screen returns the session's screen for this resource.
func (h *ResourceHandler[T]) screen(w http.ResponseWriter, r *http.Request) (*screen.Screen[T], bool) {
	ws, ok := workspace.FromContext(r.Context())
	if !ok {
		logAndInternalError(w, "no workspace in request context", "resource", h.desc.Name)
		return nil, false
	}
	return workspace.ScreenFor(ws, h.desc.Name, h.newScreen), true
}

// load makes sure the list was fetched once. A backend failure is kept on
// the screen and shown on the page; only an expired token stops the request.
func (h *ResourceHandler[T]) load(w http.ResponseWriter, r *http.Request, s *screen.Screen[T]) bool {
	err := s.EnsureLoaded(r.Context())
	return err == nil || !h.expired(w, r, err)
}

func (h *ResourceHandler[T]) expired(w http.ResponseWriter, r *http.Request, err error) bool {
	return endExpiredSession(w, r, h.deps.SessionManager, h.deps.Renderer, h.deps.Workspaces, err)
}

// applyQuery copies the filter and paging parameters present in the URL into the screen.
func (h *ResourceHandler[T]) applyQuery(s *screen.Screen[T], r *http.Request) {
	q := r.URL.Query()
	if q.Has(filter.ParamSearch) || q.Has(filter.ParamCategory) || q.Has(filter.ParamStatus) {
		s.SetFilter(filter.FromValues(q))
	}
	if q.Has(uikit.ParamPerPage) {
		s.SetPerPage(uikit.PerPageParam(r, h.deps.PerPage))
	}
	if q.Has(uikit.ParamPage) {
		s.SetPage(uikit.PageParam(r))
	}
}

// List handles GET /admin/{res}.
func (h *ResourceHandler[T]) List(w http.ResponseWriter, r *http.Request) {
	s, ok := h.screen(w, r)
	if !ok {
		return
	}
	h.applyQuery(s, r)
	if !h.load(w, r, s) {
		return
	}
	h.renderList(w, r, s)
}

// Refresh handles POST /admin/{res}/refresh.
func (h *ResourceHandler[T]) Refresh(w http.ResponseWriter, r *http.Request) {
	s, ok := h.screen(w, r)
	if !ok {
		return
	}
	lang := middleware.GetLang(r)
	if err := s.Load(r.Context()); err != nil {
		if h.expired(w, r, err) {
			return
		}
		flashError(w, r, h.deps.Renderer, h.BasePath(), tr(lang, "msg.load_failed", remote.Message(err)))
		return
	}
	flashSuccess(w, r, h.deps.Renderer, h.BasePath(), tr(lang, "msg.refreshed"))
}

// Detail handles GET /admin/{res}/{id}: the list with the viewer open.
func (h *ResourceHandler[T]) Detail(w http.ResponseWriter, r *http.Request) {
	s, ok := h.screen(w, r)
	if !ok || !h.load(w, r, s) {
		return
	}
	if err := s.Open(chi.URLParam(r, "id")); err != nil {
		h.notFound(w, r)
		return
	}
	h.renderList(w, r, s)
}

// Close handles POST /admin/{res}/close.
func (h *ResourceHandler[T]) Close(w http.ResponseWriter, r *http.Request) {
	s, ok := h.screen(w, r)
	if !ok {
		return
	}
	s.CloseViewer()
	http.Redirect(w, r, h.BasePath(), http.StatusSeeOther)
}

// New handles GET /admin/{res}/new.
func (h *ResourceHandler[T]) New(w http.ResponseWriter, r *http.Request) {
	s, ok := h.screen(w, r)
	if !ok {
		return
	}
	s.Add()
	h.renderForm(w, r, s, http.StatusOK, nil)
}

// Edit handles GET /admin/{res}/{id}/edit.
func (h *ResourceHandler[T]) Edit(w http.ResponseWriter, r *http.Request) {
	s, ok := h.screen(w, r)
	if !ok || !h.load(w, r, s) {
		return
	}
	if err := s.Edit(chi.URLParam(r, "id")); err != nil {
		h.notFound(w, r)
		return
	}
	h.renderForm(w, r, s, http.StatusOK, nil)
}

// Cancel handles POST /admin/{res}/cancel.
func (h *ResourceHandler[T]) Cancel(w http.ResponseWriter, r *http.Request) {
	s, ok := h.screen(w, r)
	if !ok {
		return
	}
	s.Cancel()
	http.Redirect(w, r, h.BasePath(), http.StatusSeeOther)
}

// Create handles POST /admin/{res}.
func (h *ResourceHandler[T]) Create(w http.ResponseWriter, r *http.Request) {
	h.save(w, r, "")
}

// Update handles POST /admin/{res}/{id}.
func (h *ResourceHandler[T]) Update(w http.ResponseWriter, r *http.Request) {
	h.save(w, r, chi.URLParam(r, "id"))
}

func (h *ResourceHandler[T]) save(w http.ResponseWriter, r *http.Request, id string) {
	s, ok := h.screen(w, r)
	if !ok {
		return
	}
	lang := middleware.GetLang(r)
	if !h.parseForm(w, r) {
		return
	}

	// Reopen the form when the session lost it, e.g. after a restart.
	v := s.View()
	if id == "" {
		if v.FormMode != form.Creating {
			s.Add()
		}
	} else if v.FormMode != form.Editing || v.EditingID != id {
		if !h.load(w, r, s) {
			return
		}
		if err := s.Edit(id); err != nil {
			h.notFound(w, r)
			return
		}
	}

	parseErrs := h.bind(s, r)

	if op := r.PostForm.Get("op"); op != "" {
		h.applyListOp(s, op)
		h.renderForm(w, r, s, http.StatusOK, nil)
		return
	}

	if h.desc.ImageURL != nil {
		file, err := h.readImage(r)
		switch {
		case err != nil:
			h.logger.Warn("rejected image upload", "error", err)
			parseErrs.Add("image", tr(lang, "msg.image_invalid", err.Error()))
		case file != nil:
			s.Attach(file)
		}
	}

	if !parseErrs.Empty() {
		errs := s.Validate()
		errs.Merge(parseErrs)
		h.renderForm(w, r, s, http.StatusUnprocessableEntity, errs)
		return
	}

	creating := s.View().FormMode == form.Creating
	saved, err := s.Submit(r.Context())
	if err != nil {
		if errs, invalid := form.AsErrors(err); invalid {
			h.renderForm(w, r, s, http.StatusUnprocessableEntity, errs)
			return
		}
		if errors.Is(err, form.ErrClosed) {
			flashError(w, r, h.deps.Renderer, h.BasePath(), tr(lang, "msg.form_closed"))
			return
		}
		if h.expired(w, r, err) {
			return
		}
		h.renderForm(w, r, s, http.StatusBadGateway, nil)
		return
	}

	label := h.label(saved, lang)
	action, msg := store.ActionUpdate, "msg.updated"
	if creating {
		action, msg = store.ActionCreate, "msg.created"
	}
	h.record(r, action, saved.EntityID(), label)
	flashSuccess(w, r, h.deps.Renderer, h.BasePath(), tr(lang, msg, label))
}

func (h *ResourceHandler[T]) parseForm(w http.ResponseWriter, r *http.Request) bool {
	if h.desc.ImageURL != nil && strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		r.Body = http.MaxBytesReader(w, r.Body, h.deps.UploadMaxBytes+(1<<20))
		if err := r.ParseMultipartForm(h.deps.UploadMaxBytes); err != nil {
			h.logger.Warn("failed to parse upload form", "error", err)
			flashError(w, r, h.deps.Renderer, h.BasePath(), tr(middleware.GetLang(r), "form.invalid"))
			return false
		}
		return true
	}
	return parseFormOrRedirect(w, r, h.deps.Renderer, h.BasePath())
}

// bind copies the posted values into the draft and returns conversion errors.
func (h *ResourceHandler[T]) bind(s *screen.Screen[T], r *http.Request) form.Errors {
	errs := form.Errors{}
	s.UpdateDraft(func(d *T) {
		for _, f := range h.desc.Fields {
			switch {
			case f.IsList():
				values := make([]string, 0, len(r.PostForm[f.Name]))
				for _, v := range r.PostForm[f.Name] {
					values = append(values, strings.TrimSpace(v))
				}
				f.SetList(d, values)
			case f.Kind == KindCheckbox:
				_ = f.Set(d, r.PostForm.Get(f.Name))
			case r.PostForm.Has(f.Name):
				if err := f.Set(d, r.PostForm.Get(f.Name)); err != nil {
					errs.Add(f.Name, err.Error())
				}
			}
		}
		if h.desc.Prepare != nil {
			h.desc.Prepare(d, s.Items())
		}
	})
	return errs
}

// applyListOp runs an "append:field", "insert:field:i" or "remove:field:i" button.
func (h *ResourceHandler[T]) applyListOp(s *screen.Screen[T], op string) {
	parts := strings.Split(op, ":")
	if len(parts) < 2 {
		return
	}
	var field *Field[T]
	for i := range h.desc.Fields {
		if h.desc.Fields[i].Name == parts[1] && h.desc.Fields[i].Kind == KindList {
			field = &h.desc.Fields[i]
		}
	}
	if field == nil {
		return
	}
	index := -1
	if len(parts) > 2 {
		if n, err := strconv.Atoi(parts[2]); err == nil {
			index = n
		}
	}

	s.UpdateDraft(func(d *T) {
		items := field.GetList(*d)
		switch parts[0] {
		case "append":
			items = form.Append(items, "")
		case "insert":
			items = form.InsertAt(items, index, "")
		case "remove":
			items = form.RemoveAt(items, index)
		default:
			return
		}
		field.SetList(d, items)
	})
}

func (h *ResourceHandler[T]) readImage(r *http.Request) (*remote.File, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	file, header, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()
	if header.Size == 0 {
		return nil, nil
	}

	upload, result, err := h.deps.Images.Prepare(file, "image", header.Filename)
	if err != nil {
		return nil, err
	}
	h.logger.Info("image prepared for upload",
		"width", result.Width, "height", result.Height, "size", result.Size, "resized", result.Resized)
	return upload, nil
}

// ConfirmDelete handles GET /admin/{res}/{id}/delete.
func (h *ResourceHandler[T]) ConfirmDelete(w http.ResponseWriter, r *http.Request) {
	s, ok := h.screen(w, r)
	if !ok || !h.load(w, r, s) {
		return
	}
	e, found := s.Get(chi.URLParam(r, "id"))
	if !found {
		h.notFound(w, r)
		return
	}
	lang := middleware.GetLang(r)
	h.render(w, r, http.StatusOK, "admin/confirm", confirmPage{
		Resource: h.meta(lang),
		ID:       e.EntityID(),
		Label:    h.label(e, lang),
	})
}

// Delete handles POST /admin/{res}/{id}/delete.
func (h *ResourceHandler[T]) Delete(w http.ResponseWriter, r *http.Request) {
	s, ok := h.screen(w, r)
	if !ok || !h.load(w, r, s) {
		return
	}
	lang := middleware.GetLang(r)
	id := chi.URLParam(r, "id")

	e, found := s.Get(id)
	if !found {
		h.notFound(w, r)
		return
	}
	label := h.label(e, lang)

	if err := s.Delete(r.Context(), id); err != nil {
		if h.expired(w, r, err) {
			return
		}
		flashError(w, r, h.deps.Renderer, h.BasePath(), tr(lang, "msg.delete_failed", remote.Message(err)))
		return
	}

	h.record(r, store.ActionDelete, id, label)
	flashSuccess(w, r, h.deps.Renderer, h.BasePath(), tr(lang, "msg.deleted", label))
}

// Export handles GET /admin/{res}/export.{csv|xlsx}: the filtered list as a spreadsheet.
func (h *ResourceHandler[T]) Export(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	if export.ContentType(format) == "" {
		http.NotFound(w, r)
		return
	}
	s, ok := h.screen(w, r)
	if !ok || !h.load(w, r, s) {
		return
	}
	lang := middleware.GetLang(r)

	cols := make([]export.Column[T], len(h.desc.Columns))
	for i, c := range h.desc.Columns {
		cols[i] = export.Column[T]{Header: tr(lang, c.Header), Value: c.Value}
	}
	table := export.Build(tr(lang, h.desc.Title), cols, s.Filtered())

	w.Header().Set("Content-Type", export.ContentType(format))
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", export.Filename(h.desc.Name, format, time.Now())))
	if err := export.Write(w, format, table); err != nil {
		h.logger.Error("export failed", "category", "export", "format", format, "error", err)
		return
	}
	h.logger.Info("list exported", "category", "export", "format", format, "rows", len(table.Rows))
}

func (h *ResourceHandler[T]) notFound(w http.ResponseWriter, r *http.Request) {
	flashError(w, r, h.deps.Renderer, h.BasePath(), tr(middleware.GetLang(r), "msg.not_found"))
}

func (h *ResourceHandler[T]) label(e T, lang string) string {
	if h.desc.Label != nil {
		if l := h.desc.Label(e, lang); l != "" {
			return l
		}
	}
	return e.EntityID()
}

// record appends a journal row. Failures are logged; the mutation already happened.
func (h *ResourceHandler[T]) record(r *http.Request, action, id, label string) {
	if h.deps.OnChange != nil {
		h.deps.OnChange(r.Context(), h.desc.Name)
	}
	if h.deps.Activity == nil {
		return
	}
	actor := middleware.GetAccountName(r)
	_, err := h.deps.Activity.RecordActivity(r.Context(), store.RecordActivityParams{
		Resource:  h.desc.Name,
		EntityID:  id,
		Action:    action,
		Label:     label,
		Actor:     actor,
		CreatedAt: time.Now(),
	})
	if err != nil {
		h.logger.Error("failed to record activity", "action", action, "id", id, "error", err)
	}
}

// =============================================================================
// PAGE DATA
// =============================================================================

// resourceMeta describes the resource to the shared templates.
type resourceMeta struct {
	Name     string
	Title    string
	BasePath string
}

func (h *ResourceHandler[T]) meta(lang string) resourceMeta {
	return resourceMeta{Name: h.desc.Name, Title: tr(lang, h.desc.Title), BasePath: h.BasePath()}
}

type listRow struct {
	ID    string
	Label string
	Cells []string
}

type detailField struct {
	Label string
	Value string
	HTML  template.HTML
	Items []string
}

type detailView struct {
	ID       string
	Label    string
	ImageURL string
	Fields   []detailField
}

type listPage struct {
	Resource       resourceMeta
	Columns        []string
	Rows           []listRow
	Pagination     uikit.Pager
	Filter         filter.State
	FilterActive   bool
	Categories     []Choice
	Statuses       []Choice
	PerPage        int
	PerPageOptions []int
	Total          int
	Loaded         bool
	Loading        bool
	LoadErr        string
	LoadedAt       time.Time
	Detail         *detailView
}

type fieldView struct {
	Name     string
	Label    string
	Kind     string
	Required bool
	Value    string
	Items    []string
	Selected map[string]bool
	Choices  []Choice
	Error    string
}

type formPage struct {
	Resource  resourceMeta
	Editing   bool
	ID        string
	Heading   string
	Action    string
	Fields    []fieldView
	Image     bool
	ImageURL  string
	ImageErr  string
	Invalid   bool
	SubmitErr string
}

type confirmPage struct {
	Resource resourceMeta
	ID       string
	Label    string
}

func (h *ResourceHandler[T]) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	lang := middleware.GetLang(r)
	err := h.deps.Renderer.RenderStatus(w, r, status, name, render.TemplateData{
		Title: tr(lang, h.desc.Title),
		Data:  data,
		Breadcrumbs: []uikit.Breadcrumb{
			{Label: tr(lang, "nav.dashboard"), URL: AdminPrefix},
			{Label: tr(lang, h.desc.Title), URL: h.BasePath(), Active: true},
		},
	})
	if err != nil {
		logAndInternalError(w, "failed to render template", "template", name, "error", err)
	}
}

func (h *ResourceHandler[T]) renderList(w http.ResponseWriter, r *http.Request, s *screen.Screen[T]) {
	lang := middleware.GetLang(r)
	v := s.View()

	page := listPage{
		Resource:       h.meta(lang),
		Pagination:     uikit.NewPager(v.Page, h.BasePath(), v.Filter.Values()),
		Filter:         v.Filter,
		FilterActive:   v.Filter.Active(),
		PerPage:        v.Page.PerPage,
		PerPageOptions: paging.PerPageOptions,
		Total:          v.Total,
		Loaded:         v.Loaded,
		Loading:        v.Loading,
		LoadedAt:       v.LoadedAt,
	}
	if v.LoadErr != nil {
		page.LoadErr = tr(lang, "msg.load_failed", remote.Message(v.LoadErr))
	}
	for _, c := range h.desc.Columns {
		page.Columns = append(page.Columns, tr(lang, c.Header))
	}
	for _, e := range v.Page.Items {
		row := listRow{ID: e.EntityID(), Label: h.label(e, lang)}
		for _, c := range h.desc.Columns {
			row.Cells = append(row.Cells, c.Value(e))
		}
		page.Rows = append(page.Rows, row)
	}
	page.Categories = h.categoryChoices(r.Context(), lang)
	page.Statuses = staticChoices(h.desc.Statuses, h.desc.StatusKey, lang)

	if v.ViewerOpen {
		page.Detail = h.detail(v.Viewing, lang)
	}

	h.render(w, r, http.StatusOK, "admin/list", page)
}

func (h *ResourceHandler[T]) categoryChoices(ctx context.Context, lang string) []Choice {
	if h.desc.CategoryChoices != nil {
		choices, err := h.desc.CategoryChoices(ctx, lang)
		if err != nil {
			h.logger.Warn("failed to load filter choices", "error", err)
			return nil
		}
		return choices
	}
	return staticChoices(h.desc.Categories, h.desc.CategoryKey, lang)
}

func (h *ResourceHandler[T]) detail(e T, lang string) *detailView {
	d := &detailView{ID: e.EntityID(), Label: h.label(e, lang)}
	if h.desc.ImageURL != nil {
		d.ImageURL = h.desc.ImageURL(e)
	}
	for _, f := range h.desc.Fields {
		df := detailField{Label: tr(lang, f.Label)}
		switch {
		case f.Kind == KindList:
			df.Items = f.GetList(e)
		case f.Kind == KindRichText:
			df.HTML = f.HTML(e)
		default:
			df.Value = f.Display(e, lang)
		}
		d.Fields = append(d.Fields, df)
	}
	return d
}

func (h *ResourceHandler[T]) renderForm(w http.ResponseWriter, r *http.Request, s *screen.Screen[T], status int, errs form.Errors) {
	lang := middleware.GetLang(r)
	v := s.View()
	if errs == nil {
		errs = v.Errors
	}

	page := formPage{
		Resource: h.meta(lang),
		Editing:  v.FormMode == form.Editing,
		ID:       v.EditingID,
		Action:   h.BasePath(),
		Image:    h.desc.ImageURL != nil,
		Invalid:  !errs.Empty(),
	}
	if page.Editing {
		page.Heading = tr(lang, "form.edit", h.label(v.Draft, lang))
		page.Action = h.BasePath() + "/" + v.EditingID
	} else {
		page.Heading = tr(lang, "form.new", tr(lang, h.desc.Title))
	}
	if page.Image {
		page.ImageURL = h.desc.ImageURL(v.Draft)
		page.ImageErr = errs.Get("image")
	}
	if v.SubmitErr != nil {
		page.SubmitErr = tr(lang, "msg.save_failed", remote.Message(v.SubmitErr))
	}

	for _, f := range h.desc.Fields {
		fv := fieldView{
			Name:     f.Name,
			Label:    tr(lang, f.Label),
			Kind:     string(f.Kind),
			Required: f.Required,
		}
		if msg := errs.Get(f.Name); msg != "" {
			fv.Error = tr(lang, msg)
		}
		if f.IsList() {
			fv.Items = f.GetList(v.Draft)
			fv.Selected = make(map[string]bool, len(fv.Items))
			for _, it := range fv.Items {
				fv.Selected[it] = true
			}
		} else {
			fv.Value = f.Get(v.Draft)
		}
		fv.Choices = h.fieldChoices(r.Context(), f, lang)
		page.Fields = append(page.Fields, fv)
	}

	h.render(w, r, status, "admin/form", page)
}

func (h *ResourceHandler[T]) fieldChoices(ctx context.Context, f Field[T], lang string) []Choice {
	if f.Choices != nil {
		choices, err := f.Choices(ctx, lang)
		if err != nil {
			h.logger.Warn("failed to load field choices", "field", f.Name, "error", err)
		}
		return choices
	}
	return staticChoices(f.Options, f.OptionKey, lang)
}

func staticChoices(values []string, key, lang string) []Choice {
	choices := make([]Choice, 0, len(values))
	for _, v := range values {
		label := v
		if key != "" {
			label = tr(lang, key+v)
		}
		choices = append(choices, Choice{Value: v, Label: label})
	}
	return choices
}
