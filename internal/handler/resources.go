// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/makerskills/makerskills-web/internal/collection"
	"github.com/makerskills/makerskills-web/internal/export"
	"github.com/makerskills/makerskills-web/internal/filter"
	"github.com/makerskills/makerskills-web/internal/form"
	"github.com/makerskills/makerskills-web/internal/middleware"
	"github.com/makerskills/makerskills-web/internal/model"
	"github.com/makerskills/makerskills-web/internal/remote"
	"github.com/makerskills/makerskills-web/internal/screen"
	"github.com/makerskills/makerskills-web/internal/util"
)

// Sources holds the data source of every managed resource.
type Sources struct {
	Formations   screen.Source[model.Formation]
	Workshops    screen.Source[model.Workshop]
	Bootcamps    screen.Source[model.Bootcamp]
	Services     screen.Source[model.Service]
	Partners     screen.Source[model.Partner]
	Products     screen.Source[model.Product]
	Events       screen.Source[model.Event]
	Categories   screen.Source[model.Category]
	Users        screen.Source[model.User]
	Orders       screen.Source[model.Order]
	Participants screen.Source[model.Participant]
	Projects     screen.Source[model.Project]
}

// NewSources binds every resource to the backend, or to bundled sample data
// when mock reports the resource name as mocked.
func NewSources(c *remote.Client, mock func(string) bool) (Sources, error) {
	var (
		s   Sources
		err error
	)
	steps := []func() error{
		func() (e error) { s.Formations, e = newSource(c, "formations", model.Formation.WithID, mock); return },
		func() (e error) { s.Workshops, e = newSource(c, "workshops", model.Workshop.WithID, mock); return },
		func() (e error) { s.Bootcamps, e = newSource(c, "bootcamps", model.Bootcamp.WithID, mock); return },
		func() (e error) { s.Services, e = newSource(c, "services", model.Service.WithID, mock); return },
		func() (e error) { s.Partners, e = newSource(c, "partners", model.Partner.WithID, mock); return },
		func() (e error) { s.Products, e = newSource(c, "products", model.Product.WithID, mock); return },
		func() (e error) { s.Events, e = newSource(c, "events", model.Event.WithID, mock); return },
		func() (e error) { s.Categories, e = newSource(c, "categories", model.Category.WithID, mock); return },
		func() (e error) { s.Users, e = newSource(c, "users", model.User.WithID, mock); return },
		func() (e error) { s.Orders, e = newSource(c, "orders", model.Order.WithID, mock); return },
		func() (e error) {
			s.Participants, e = newSource(c, "participants", model.Participant.WithID, mock)
			return
		},
		func() (e error) { s.Projects, e = newSource(c, "projects", model.Project.WithID, mock); return },
	}
	for _, step := range steps {
		if err = step(); err != nil {
			return Sources{}, err
		}
	}
	return s, nil
}

func newSource[T collection.Entity](c *remote.Client, name string, withID func(T, string) T, mock func(string) bool) (screen.Source[T], error) {
	if mock != nil && mock(name) {
		if !model.HasMockData(name) {
			return screen.NewMemorySource[T](name, nil, withID), nil
		}
		data, err := model.MockData(name)
		if err != nil {
			return nil, err
		}
		return screen.LoadMemorySource(name, data, withID)
	}
	return remote.NewResource[T](c, name), nil
}

// AdminScreen is the non-generic view of a ResourceHandler used for routing and navigation.
type AdminScreen interface {
	Name() string
	Title() string
	MinRole() string
	BasePath() string
	Mount(r chi.Router)
}

// AdminScreens builds the handler of every managed resource, in menu order.
func AdminScreens(src Sources, deps Deps) []AdminScreen {
	return []AdminScreen{
		NewResourceHandler(formationDescriptor(src), src.Formations, deps),
		NewResourceHandler(workshopDescriptor(src), src.Workshops, deps),
		NewResourceHandler(bootcampDescriptor(), src.Bootcamps, deps),
		NewResourceHandler(serviceDescriptor(), src.Services, deps),
		NewResourceHandler(partnerDescriptor(), src.Partners, deps),
		NewResourceHandler(productDescriptor(src), src.Products, deps),
		NewResourceHandler(eventDescriptor(src), src.Events, deps),
		NewResourceHandler(categoryDescriptor(), src.Categories, deps),
		NewResourceHandler(orderDescriptor(src), src.Orders, deps),
		NewResourceHandler(participantDescriptor(), src.Participants, deps),
		NewResourceHandler(projectDescriptor(src), src.Projects, deps),
		NewResourceHandler(userDescriptor(), src.Users, deps),
	}
}

// categoryChoices lists the categories of kind; values are slugs, or ids when byID.
func categoryChoices(src screen.Source[model.Category], kind string, byID bool) ChoiceFunc {
	return func(ctx context.Context, lang string) ([]Choice, error) {
		cats, err := src.List(ctx)
		if err != nil {
			return nil, err
		}
		choices := make([]Choice, 0, len(cats))
		for _, c := range cats {
			if c.Kind != kind {
				continue
			}
			value := c.Slug
			if byID || value == "" {
				value = c.ID
			}
			choices = append(choices, Choice{Value: value, Label: c.Name.Get(lang)})
		}
		return choices, nil
	}
}

func entityChoices[T collection.Entity](src screen.Source[T], label func(T, string) string) ChoiceFunc {
	return func(ctx context.Context, lang string) ([]Choice, error) {
		items, err := src.List(ctx)
		if err != nil {
			return nil, err
		}
		choices := make([]Choice, 0, len(items))
		for _, e := range items {
			choices = append(choices, Choice{Value: e.EntityID(), Label: label(e, lang)})
		}
		return choices, nil
	}
}

func price(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func one(v string) []string {
	if v == "" {
		return nil
	}
	return []string{v}
}

// =============================================================================
// CATALOG
// =============================================================================

func formationDescriptor(src Sources) Descriptor[model.Formation] {
	type F = model.Formation
	return Descriptor[F]{
		Name:  "formations",
		Title: "res.formations",
		Fields: []Field[F]{
			requiredField(textField("title_fr", "field.title_fr", func(f F) string { return f.Title.FR }, func(f *F, v string) { f.Title.FR = v })),
			requiredField(textField("title_en", "field.title_en", func(f F) string { return f.Title.EN }, func(f *F, v string) { f.Title.EN = v })),
			textField("slug", "field.slug", func(f F) string { return f.Slug }, func(f *F, v string) { f.Slug = strings.ToLower(v) }),
			textareaField("summary_fr", "field.summary_fr", func(f F) string { return f.Summary.FR }, func(f *F, v string) { f.Summary.FR = v }),
			textareaField("summary_en", "field.summary_en", func(f F) string { return f.Summary.EN }, func(f *F, v string) { f.Summary.EN = v }),
			richField("description_fr", "field.description_fr", func(f F) string { return f.Description.FR }, func(f *F, v string) { f.Description.FR = v }),
			richField("description_en", "field.description_en", func(f F) string { return f.Description.EN }, func(f *F, v string) { f.Description.EN = v }),
			requiredField(withChoices(selectField("category", "field.category", nil, "", func(f F) string { return f.Category }, func(f *F, v string) { f.Category = v }),
				categoryChoices(src.Categories, "formation", false))),
			requiredField(selectField("level", "field.level", model.FormationLevels, "level.", func(f F) string { return f.Level }, func(f *F, v string) { f.Level = v })),
			textField("duration", "field.duration", func(f F) string { return f.Duration }, func(f *F, v string) { f.Duration = v }),
			numberField("price", "field.price", func(f F) float64 { return f.Price }, func(f *F, v float64) { f.Price = v }),
			listField("prerequisites", "field.prerequisites", func(f F) []string { return f.Prerequisites }, func(f *F, v []string) { f.Prerequisites = v }),
			listField("curriculum", "field.curriculum", func(f F) []string { return f.Curriculum }, func(f *F, v []string) { f.Curriculum = v }),
			checkboxField("featured", "field.featured", func(f F) bool { return f.Featured }, func(f *F, v bool) { f.Featured = v }),
			requiredField(selectField("status", "field.status", model.PublicationStatuses, "status.", func(f F) string { return f.Status }, func(f *F, v string) { f.Status = v })),
		},
		Columns: []export.Column[F]{
			{Header: "field.title_fr", Value: func(f F) string { return f.Title.FR }},
			{Header: "field.category", Value: func(f F) string { return f.Category }},
			{Header: "field.level", Value: func(f F) string { return f.Level }},
			{Header: "field.price", Value: func(f F) string { return price(f.Price) }},
			{Header: "field.status", Value: func(f F) string { return f.Status }},
		},
		Filter: filter.Spec[F]{
			SearchFields: func(f F) []string { return []string{f.Title.FR, f.Title.EN, f.Slug} },
			Categories:   func(f F) []string { return one(f.Category) },
			Status:       func(f F) string { return f.Status },
		},
		CategoryChoices: categoryChoices(src.Categories, "formation", false),
		Statuses:        model.PublicationStatuses,
		StatusKey:       "status.",
		Blank: func() F {
			return F{Status: model.StatusDraft, Level: model.FormationLevels[0], Prerequisites: []string{}, Curriculum: []string{}}
		},
		WithID:   F.WithID,
		Validate: validateFormation,
		Label:    func(f F, lang string) string { return f.Title.Get(lang) },
		Prepare: func(d *F, existing []F) {
			if d.Slug != "" || d.Title.FR == "" {
				return
			}
			d.Slug = util.UniqueSlug(util.Slugify(d.Title.FR), func(s string) bool {
				for _, e := range existing {
					if e.Slug == s && e.ID != d.ID {
						return true
					}
				}
				return false
			})
		},
		Prepend: true,
	}
}

func validateFormation(f model.Formation) form.Errors {
	errs := form.Errors{}
	requireLocalized(errs, "title", f.Title)
	checkLength(errs, "title_fr", f.Title.FR, 200)
	checkLength(errs, "title_en", f.Title.EN, 200)
	if f.Slug != "" && !util.IsValidSlug(f.Slug) {
		errs.Add("slug", "validation.slug")
	}
	requireText(errs, "category", f.Category)
	requireChoice(errs, "level", f.Level, model.FormationLevels)
	checkPositive(errs, "price", f.Price)
	checkItems(errs, "prerequisites", f.Prerequisites)
	checkItems(errs, "curriculum", f.Curriculum)
	requireChoice(errs, "status", f.Status, model.PublicationStatuses)
	return errs
}

func workshopDescriptor(src Sources) Descriptor[model.Workshop] {
	type W = model.Workshop
	return Descriptor[W]{
		Name:  "workshops",
		Title: "res.workshops",
		Fields: []Field[W]{
			requiredField(textField("title_fr", "field.title_fr", func(w W) string { return w.Title.FR }, func(w *W, v string) { w.Title.FR = v })),
			requiredField(textField("title_en", "field.title_en", func(w W) string { return w.Title.EN }, func(w *W, v string) { w.Title.EN = v })),
			richField("description_fr", "field.description_fr", func(w W) string { return w.Description.FR }, func(w *W, v string) { w.Description.FR = v }),
			richField("description_en", "field.description_en", func(w W) string { return w.Description.EN }, func(w *W, v string) { w.Description.EN = v }),
			requiredField(kindField(KindDate, textField("date", "field.date", func(w W) string { return w.Date }, func(w *W, v string) { w.Date = v }))),
			requiredField(textField("location", "field.location", func(w W) string { return w.Location }, func(w *W, v string) { w.Location = v })),
			withChoices(selectField("category", "field.category", nil, "", func(w W) string { return w.Category }, func(w *W, v string) { w.Category = v }),
				categoryChoices(src.Categories, "formation", false)),
			integerField("seats", "field.seats", func(w W) int { return w.Seats }, func(w *W, v int) { w.Seats = v }),
			numberField("price", "field.price", func(w W) float64 { return w.Price }, func(w *W, v float64) { w.Price = v }),
			requiredField(selectField("status", "field.status", model.PublicationStatuses, "status.", func(w W) string { return w.Status }, func(w *W, v string) { w.Status = v })),
		},
		Columns: []export.Column[W]{
			{Header: "field.title_fr", Value: func(w W) string { return w.Title.FR }},
			{Header: "field.date", Value: func(w W) string { return w.Date }},
			{Header: "field.location", Value: func(w W) string { return w.Location }},
			{Header: "field.seats", Value: func(w W) string { return strconv.Itoa(w.Seats) }},
			{Header: "field.status", Value: func(w W) string { return w.Status }},
		},
		Filter: filter.Spec[W]{
			SearchFields: func(w W) []string { return []string{w.Title.FR, w.Title.EN, w.Location} },
			Categories:   func(w W) []string { return one(w.Category) },
			Status:       func(w W) string { return w.Status },
		},
		CategoryChoices: categoryChoices(src.Categories, "formation", false),
		Statuses:        model.PublicationStatuses,
		StatusKey:       "status.",
		Blank:           func() W { return W{Status: model.StatusDraft} },
		WithID:          W.WithID,
		Validate: func(w W) form.Errors {
			errs := form.Errors{}
			requireLocalized(errs, "title", w.Title)
			checkDate(errs, "date", w.Date, true)
			requireText(errs, "location", w.Location)
			if w.Seats < 0 {
				errs.Add("seats", "validation.positive")
			}
			checkPositive(errs, "price", w.Price)
			requireChoice(errs, "status", w.Status, model.PublicationStatuses)
			return errs
		},
		Label: func(w W, lang string) string { return w.Title.Get(lang) },
	}
}

func bootcampDescriptor() Descriptor[model.Bootcamp] {
	type B = model.Bootcamp
	return Descriptor[B]{
		Name:  "bootcamps",
		Title: "res.bootcamps",
		Fields: []Field[B]{
			requiredField(textField("title_fr", "field.title_fr", func(b B) string { return b.Title.FR }, func(b *B, v string) { b.Title.FR = v })),
			requiredField(textField("title_en", "field.title_en", func(b B) string { return b.Title.EN }, func(b *B, v string) { b.Title.EN = v })),
			richField("description_fr", "field.description_fr", func(b B) string { return b.Description.FR }, func(b *B, v string) { b.Description.FR = v }),
			richField("description_en", "field.description_en", func(b B) string { return b.Description.EN }, func(b *B, v string) { b.Description.EN = v }),
			requiredField(selectField("level", "field.level", model.FormationLevels, "level.", func(b B) string { return b.Level }, func(b *B, v string) { b.Level = v })),
			requiredField(kindField(KindDate, textField("start_date", "field.start_date", func(b B) string { return b.StartDate }, func(b *B, v string) { b.StartDate = v }))),
			requiredField(kindField(KindDate, textField("end_date", "field.end_date", func(b B) string { return b.EndDate }, func(b *B, v string) { b.EndDate = v }))),
			textField("location", "field.location", func(b B) string { return b.Location }, func(b *B, v string) { b.Location = v }),
			listField("technologies", "field.technologies", func(b B) []string { return b.Technologies }, func(b *B, v []string) { b.Technologies = v }),
			numberField("price", "field.price", func(b B) float64 { return b.Price }, func(b *B, v float64) { b.Price = v }),
			requiredField(selectField("status", "field.status", model.PublicationStatuses, "status.", func(b B) string { return b.Status }, func(b *B, v string) { b.Status = v })),
		},
		Columns: []export.Column[B]{
			{Header: "field.title_fr", Value: func(b B) string { return b.Title.FR }},
			{Header: "field.level", Value: func(b B) string { return b.Level }},
			{Header: "field.start_date", Value: func(b B) string { return b.StartDate }},
			{Header: "field.end_date", Value: func(b B) string { return b.EndDate }},
			{Header: "field.status", Value: func(b B) string { return b.Status }},
		},
		Filter: filter.Spec[B]{
			SearchFields: func(b B) []string {
				return append([]string{b.Title.FR, b.Title.EN, b.Location}, b.Technologies...)
			},
			Categories: func(b B) []string { return one(b.Level) },
			Status:     func(b B) string { return b.Status },
		},
		Categories:  model.FormationLevels,
		CategoryKey: "level.",
		Statuses:    model.PublicationStatuses,
		StatusKey:   "status.",
		Blank:       func() B { return B{Status: model.StatusDraft, Technologies: []string{}} },
		WithID:      B.WithID,
		Validate: func(b B) form.Errors {
			errs := form.Errors{}
			requireLocalized(errs, "title", b.Title)
			requireChoice(errs, "level", b.Level, model.FormationLevels)
			checkDate(errs, "start_date", b.StartDate, true)
			checkDate(errs, "end_date", b.EndDate, true)
			checkDateOrder(errs, "end_date", b.StartDate, b.EndDate)
			checkItems(errs, "technologies", b.Technologies)
			checkPositive(errs, "price", b.Price)
			requireChoice(errs, "status", b.Status, model.PublicationStatuses)
			return errs
		},
		Label: func(b B, lang string) string { return b.Title.Get(lang) },
	}
}

func serviceDescriptor() Descriptor[model.Service] {
	type S = model.Service
	return Descriptor[S]{
		Name:  "services",
		Title: "res.services",
		Fields: []Field[S]{
			requiredField(textField("title_fr", "field.title_fr", func(s S) string { return s.Title.FR }, func(s *S, v string) { s.Title.FR = v })),
			requiredField(textField("title_en", "field.title_en", func(s S) string { return s.Title.EN }, func(s *S, v string) { s.Title.EN = v })),
			richField("description_fr", "field.description_fr", func(s S) string { return s.Description.FR }, func(s *S, v string) { s.Description.FR = v }),
			richField("description_en", "field.description_en", func(s S) string { return s.Description.EN }, func(s *S, v string) { s.Description.EN = v }),
			textField("icon", "field.icon", func(s S) string { return s.Icon }, func(s *S, v string) { s.Icon = v }),
			textField("category", "field.category", func(s S) string { return s.Category }, func(s *S, v string) { s.Category = v }),
			requiredField(selectField("status", "field.status", model.PublicationStatuses, "status.", func(s S) string { return s.Status }, func(s *S, v string) { s.Status = v })),
		},
		Columns: []export.Column[S]{
			{Header: "field.title_fr", Value: func(s S) string { return s.Title.FR }},
			{Header: "field.title_en", Value: func(s S) string { return s.Title.EN }},
			{Header: "field.category", Value: func(s S) string { return s.Category }},
			{Header: "field.status", Value: func(s S) string { return s.Status }},
		},
		Filter: filter.Spec[S]{
			SearchFields: func(s S) []string { return []string{s.Title.FR, s.Title.EN, s.Category} },
			Status:       func(s S) string { return s.Status },
		},
		Statuses:  model.PublicationStatuses,
		StatusKey: "status.",
		Blank:     func() S { return S{Status: model.StatusPublished} },
		WithID:    S.WithID,
		Validate: func(s S) form.Errors {
			errs := form.Errors{}
			requireLocalized(errs, "title", s.Title)
			requireChoice(errs, "status", s.Status, model.PublicationStatuses)
			return errs
		},
		Label: func(s S, lang string) string { return s.Title.Get(lang) },
	}
}

func categoryDescriptor() Descriptor[model.Category] {
	type C = model.Category
	return Descriptor[C]{
		Name:  "categories",
		Title: "res.categories",
		Fields: []Field[C]{
			requiredField(textField("name_fr", "field.name_fr", func(c C) string { return c.Name.FR }, func(c *C, v string) { c.Name.FR = v })),
			requiredField(textField("name_en", "field.name_en", func(c C) string { return c.Name.EN }, func(c *C, v string) { c.Name.EN = v })),
			textField("slug", "field.slug", func(c C) string { return c.Slug }, func(c *C, v string) { c.Slug = strings.ToLower(v) }),
			requiredField(selectField("kind", "field.kind", model.CategoryKinds, "kind.", func(c C) string { return c.Kind }, func(c *C, v string) { c.Kind = v })),
		},
		Columns: []export.Column[C]{
			{Header: "field.name_fr", Value: func(c C) string { return c.Name.FR }},
			{Header: "field.name_en", Value: func(c C) string { return c.Name.EN }},
			{Header: "field.slug", Value: func(c C) string { return c.Slug }},
			{Header: "field.kind", Value: func(c C) string { return c.Kind }},
		},
		Filter: filter.Spec[C]{
			SearchFields: func(c C) []string { return []string{c.Name.FR, c.Name.EN, c.Slug} },
			Categories:   func(c C) []string { return one(c.Kind) },
		},
		Categories:  model.CategoryKinds,
		CategoryKey: "kind.",
		Blank:       func() C { return C{Kind: model.CategoryKinds[0]} },
		WithID:      C.WithID,
		Validate: func(c C) form.Errors {
			errs := form.Errors{}
			requireText(errs, "name_fr", c.Name.FR)
			requireText(errs, "name_en", c.Name.EN)
			if c.Slug != "" && !util.IsValidSlug(c.Slug) {
				errs.Add("slug", "validation.slug")
			}
			requireChoice(errs, "kind", c.Kind, model.CategoryKinds)
			return errs
		},
		Label: func(c C, lang string) string { return c.Name.Get(lang) },
		Prepare: func(d *C, _ []C) {
			if d.Slug == "" && d.Name.FR != "" {
				d.Slug = util.Slugify(d.Name.FR)
			}
		},
	}
}

// =============================================================================
// BUSINESS
// =============================================================================

func partnerDescriptor() Descriptor[model.Partner] {
	type P = model.Partner
	return Descriptor[P]{
		Name:  "partners",
		Title: "res.partners",
		Fields: []Field[P]{
			requiredField(textField("name", "field.name", func(p P) string { return p.Name }, func(p *P, v string) { p.Name = v })),
			requiredField(selectField("type", "field.type", model.PartnerTypes, "partner.", func(p P) string { return p.Type }, func(p *P, v string) { p.Type = v })),
			kindField(KindURL, textField("website", "field.website", func(p P) string { return p.Website }, func(p *P, v string) { p.Website = v })),
			kindField(KindURL, textField("logo", "field.logo", func(p P) string { return p.Logo }, func(p *P, v string) { p.Logo = v })),
			richField("description_fr", "field.description_fr", func(p P) string { return p.Description.FR }, func(p *P, v string) { p.Description.FR = v }),
			richField("description_en", "field.description_en", func(p P) string { return p.Description.EN }, func(p *P, v string) { p.Description.EN = v }),
			requiredField(selectField("status", "field.status", model.PublicationStatuses, "status.", func(p P) string { return p.Status }, func(p *P, v string) { p.Status = v })),
		},
		Columns: []export.Column[P]{
			{Header: "field.name", Value: func(p P) string { return p.Name }},
			{Header: "field.type", Value: func(p P) string { return p.Type }},
			{Header: "field.website", Value: func(p P) string { return p.Website }},
			{Header: "field.status", Value: func(p P) string { return p.Status }},
		},
		Filter: filter.Spec[P]{
			SearchFields: func(p P) []string { return []string{p.Name, p.Website} },
			Categories:   func(p P) []string { return one(p.Type) },
			Status:       func(p P) string { return p.Status },
		},
		Categories:  model.PartnerTypes,
		CategoryKey: "partner.",
		Statuses:    model.PublicationStatuses,
		StatusKey:   "status.",
		Blank:       func() P { return P{Type: model.PartnerTypes[0], Status: model.StatusPublished} },
		WithID:      P.WithID,
		Validate: func(p P) form.Errors {
			errs := form.Errors{}
			requireText(errs, "name", p.Name)
			requireChoice(errs, "type", p.Type, model.PartnerTypes)
			checkURL(errs, "website", p.Website)
			checkURL(errs, "logo", p.Logo)
			requireChoice(errs, "status", p.Status, model.PublicationStatuses)
			return errs
		},
		Label: func(p P, _ string) string { return p.Name },
	}
}

func productDescriptor(src Sources) Descriptor[model.Product] {
	type P = model.Product
	return Descriptor[P]{
		Name:  "products",
		Title: "res.products",
		Fields: []Field[P]{
			requiredField(textField("name", "field.name", func(p P) string { return p.Name }, func(p *P, v string) { p.Name = v })),
			requiredField(textField("sku", "field.sku", func(p P) string { return p.SKU }, func(p *P, v string) { p.SKU = strings.ToUpper(v) })),
			withChoices(selectField("category", "field.category", nil, "", func(p P) string { return p.Category }, func(p *P, v string) { p.Category = v }),
				categoryChoices(src.Categories, "product", false)),
			requiredField(numberField("price", "field.price", func(p P) float64 { return p.Price }, func(p *P, v float64) { p.Price = v })),
			integerField("stock", "field.stock", func(p P) int { return p.Stock }, func(p *P, v int) { p.Stock = v }),
			kindField(KindURL, textField("image", "field.image", func(p P) string { return p.Image }, func(p *P, v string) { p.Image = v })),
			richField("description_fr", "field.description_fr", func(p P) string { return p.Description.FR }, func(p *P, v string) { p.Description.FR = v }),
			richField("description_en", "field.description_en", func(p P) string { return p.Description.EN }, func(p *P, v string) { p.Description.EN = v }),
			requiredField(selectField("status", "field.status", model.PublicationStatuses, "status.", func(p P) string { return p.Status }, func(p *P, v string) { p.Status = v })),
		},
		Columns: []export.Column[P]{
			{Header: "field.name", Value: func(p P) string { return p.Name }},
			{Header: "field.sku", Value: func(p P) string { return p.SKU }},
			{Header: "field.price", Value: func(p P) string { return price(p.Price) }},
			{Header: "field.stock", Value: func(p P) string { return strconv.Itoa(p.Stock) }},
			{Header: "field.status", Value: func(p P) string { return p.Status }},
		},
		Filter: filter.Spec[P]{
			SearchFields: func(p P) []string { return []string{p.Name, p.SKU} },
			Categories:   func(p P) []string { return one(p.Category) },
			Status:       func(p P) string { return p.Status },
		},
		CategoryChoices: categoryChoices(src.Categories, "product", false),
		Statuses:        model.PublicationStatuses,
		StatusKey:       "status.",
		Blank:           func() P { return P{Status: model.StatusDraft} },
		WithID:          P.WithID,
		Validate: func(p P) form.Errors {
			errs := form.Errors{}
			requireText(errs, "name", p.Name)
			requireText(errs, "sku", p.SKU)
			checkPositive(errs, "price", p.Price)
			if p.Stock < 0 {
				errs.Add("stock", "validation.positive")
			}
			checkURL(errs, "image", p.Image)
			requireChoice(errs, "status", p.Status, model.PublicationStatuses)
			return errs
		},
		Label: func(p P, _ string) string { return p.Name },
	}
}

func eventDescriptor(src Sources) Descriptor[model.Event] {
	type E = model.Event
	return Descriptor[E]{
		Name:  "events",
		Title: "res.events",
		Fields: []Field[E]{
			requiredField(textField("title_fr", "field.title_fr", func(e E) string { return e.Title.FR }, func(e *E, v string) { e.Title.FR = v })),
			requiredField(textField("title_en", "field.title_en", func(e E) string { return e.Title.EN }, func(e *E, v string) { e.Title.EN = v })),
			richField("description_fr", "field.description_fr", func(e E) string { return e.Description.FR }, func(e *E, v string) { e.Description.FR = v }),
			richField("description_en", "field.description_en", func(e E) string { return e.Description.EN }, func(e *E, v string) { e.Description.EN = v }),
			requiredField(kindField(KindDate, textField("date", "field.date", func(e E) string { return e.Date }, func(e *E, v string) { e.Date = v }))),
			requiredField(textField("location", "field.location", func(e E) string { return e.Location }, func(e *E, v string) { e.Location = v })),
			withChoices(selectField("category", "field.category", nil, "", func(e E) string { return e.Category }, func(e *E, v string) { e.Category = v }),
				categoryChoices(src.Categories, "event", false)),
			integerField("capacity", "field.capacity", func(e E) int { return e.Capacity }, func(e *E, v int) { e.Capacity = v }),
			numberField("price", "field.price", func(e E) float64 { return e.Price }, func(e *E, v float64) { e.Price = v }),
			requiredField(selectField("status", "field.status", model.PublicationStatuses, "status.", func(e E) string { return e.Status }, func(e *E, v string) { e.Status = v })),
		},
		Columns: []export.Column[E]{
			{Header: "field.title_fr", Value: func(e E) string { return e.Title.FR }},
			{Header: "field.date", Value: func(e E) string { return e.Date }},
			{Header: "field.location", Value: func(e E) string { return e.Location }},
			{Header: "field.capacity", Value: func(e E) string { return strconv.Itoa(e.Capacity) }},
			{Header: "field.status", Value: func(e E) string { return e.Status }},
		},
		Filter: filter.Spec[E]{
			SearchFields: func(e E) []string { return []string{e.Title.FR, e.Title.EN, e.Location} },
			Categories:   func(e E) []string { return one(e.Category) },
			Status:       func(e E) string { return e.Status },
		},
		CategoryChoices: categoryChoices(src.Categories, "event", false),
		Statuses:        model.PublicationStatuses,
		StatusKey:       "status.",
		Blank:           func() E { return E{Status: model.StatusDraft} },
		WithID:          E.WithID,
		Validate: func(e E) form.Errors {
			errs := form.Errors{}
			requireLocalized(errs, "title", e.Title)
			checkDate(errs, "date", e.Date, true)
			requireText(errs, "location", e.Location)
			if e.Capacity < 0 {
				errs.Add("capacity", "validation.positive")
			}
			checkPositive(errs, "price", e.Price)
			requireChoice(errs, "status", e.Status, model.PublicationStatuses)
			return errs
		},
		Label:   func(e E, lang string) string { return e.Title.Get(lang) },
		Prepend: true,
	}
}

func participantDescriptor() Descriptor[model.Participant] {
	type P = model.Participant
	return Descriptor[P]{
		Name:  "participants",
		Title: "res.participants",
		Fields: []Field[P]{
			requiredField(textField("name", "field.name", func(p P) string { return p.Name }, func(p *P, v string) { p.Name = v })),
			requiredField(kindField(KindEmail, textField("email", "field.email", func(p P) string { return p.Email }, func(p *P, v string) { p.Email = strings.ToLower(v) }))),
			textField("phone", "field.phone", func(p P) string { return p.Phone }, func(p *P, v string) { p.Phone = v }),
			textField("organization", "field.organization", func(p P) string { return p.Organization }, func(p *P, v string) { p.Organization = v }),
		},
		Columns: []export.Column[P]{
			{Header: "field.name", Value: func(p P) string { return p.Name }},
			{Header: "field.email", Value: func(p P) string { return p.Email }},
			{Header: "field.phone", Value: func(p P) string { return p.Phone }},
			{Header: "field.organization", Value: func(p P) string { return p.Organization }},
		},
		Filter: filter.Spec[P]{
			SearchFields: func(p P) []string { return []string{p.Name, p.Email, p.Organization} },
		},
		Blank:  func() P { return P{} },
		WithID: P.WithID,
		Validate: func(p P) form.Errors {
			errs := form.Errors{}
			requireText(errs, "name", p.Name)
			checkEmail(errs, "email", p.Email)
			return errs
		},
		Label: func(p P, _ string) string { return p.Name },
	}
}

func orderDescriptor(src Sources) Descriptor[model.Order] {
	type O = model.Order
	participants := entityChoices(src.Participants, func(p model.Participant, _ string) string {
		if p.Email == "" {
			return p.Name
		}
		return p.Name + " <" + p.Email + ">"
	})
	events := entityChoices(src.Events, func(e model.Event, lang string) string { return e.Title.Get(lang) })

	return Descriptor[O]{
		Name:  "orders",
		Title: "res.orders",
		Fields: []Field[O]{
			requiredField(withChoices(selectField("participant", "field.participant", nil, "",
				func(o O) string { return o.Participant.ID },
				func(o *O, v string) {
					if v != o.Participant.ID {
						o.Participant = model.Ref{ID: v}
					}
				}), participants)),
			requiredField(withChoices(selectField("event", "field.event", nil, "",
				func(o O) string { return o.Event.ID },
				func(o *O, v string) {
					if v != o.Event.ID {
						o.Event = model.Ref{ID: v}
					}
				}), events)),
			numberField("amount", "field.amount", func(o O) float64 { return o.Amount }, func(o *O, v float64) { o.Amount = v }),
			requiredField(selectField("payment", "field.payment", model.PaymentMethods, "payment.", func(o O) string { return o.Payment }, func(o *O, v string) { o.Payment = v })),
			requiredField(selectField("status", "field.status", model.OrderStatuses, "status.", func(o O) string { return o.Status }, func(o *O, v string) { o.Status = v })),
		},
		Columns: []export.Column[O]{
			{Header: "field.participant", Value: func(o O) string { return o.Participant.Display() }},
			{Header: "field.email", Value: func(o O) string { return o.Participant.Email }},
			{Header: "field.event", Value: func(o O) string { return o.Event.Display() }},
			{Header: "field.amount", Value: func(o O) string { return price(o.Amount) }},
			{Header: "field.payment", Value: func(o O) string { return o.Payment }},
			{Header: "field.status", Value: func(o O) string { return o.Status }},
			{Header: "field.created_at", Value: func(o O) string { return o.CreatedAt }},
		},
		Filter: filter.Spec[O]{
			SearchFields: func(o O) []string {
				return []string{o.Participant.Label, o.Participant.Email, o.Event.Label}
			},
			Categories: func(o O) []string { return one(o.Payment) },
			Status:     func(o O) string { return o.Status },
		},
		Categories:  model.PaymentMethods,
		CategoryKey: "payment.",
		Statuses:    model.OrderStatuses,
		StatusKey:   "status.",
		Blank:       func() O { return O{Status: model.OrderStatuses[0], Payment: model.PaymentMethods[0]} },
		WithID:      O.WithID,
		Validate: func(o O) form.Errors {
			errs := form.Errors{}
			requireText(errs, "participant", o.Participant.ID)
			requireText(errs, "event", o.Event.ID)
			checkPositive(errs, "amount", o.Amount)
			requireChoice(errs, "payment", o.Payment, model.PaymentMethods)
			requireChoice(errs, "status", o.Status, model.OrderStatuses)
			return errs
		},
		Label: func(o O, _ string) string {
			return o.Participant.Display() + " / " + o.Event.Display()
		},
		Prepend: true,
	}
}

func projectDescriptor(src Sources) Descriptor[model.Project] {
	type P = model.Project
	categories := categoryChoices(src.Categories, "project", true)
	return Descriptor[P]{
		Name:  "projects",
		Title: "res.projects",
		Fields: []Field[P]{
			requiredField(textField("title_fr", "field.title_fr", func(p P) string { return p.Title.FR }, func(p *P, v string) { p.Title.FR = v })),
			requiredField(textField("title_en", "field.title_en", func(p P) string { return p.Title.EN }, func(p *P, v string) { p.Title.EN = v })),
			richField("description_fr", "field.description_fr", func(p P) string { return p.Description.FR }, func(p *P, v string) { p.Description.FR = v }),
			richField("description_en", "field.description_en", func(p P) string { return p.Description.EN }, func(p *P, v string) { p.Description.EN = v }),
			kindField(KindURL, textField("link", "field.link", func(p P) string { return p.Link }, func(p *P, v string) { p.Link = v })),
			listField("technologies", "field.technologies", func(p P) []string { return p.Technologies }, func(p *P, v []string) { p.Technologies = v }),
			{
				Name:    "categories",
				Label:   "field.categories",
				Kind:    KindMultiSelect,
				Choices: categories,
				GetList: func(p P) []string { return model.RefIDs(p.Categories) },
				SetList: func(p *P, ids []string) { p.Categories = model.RefsFromIDs(form.Compact(ids)) },
			},
			requiredField(selectField("status", "field.status", model.PublicationStatuses, "status.", func(p P) string { return p.Status }, func(p *P, v string) { p.Status = v })),
		},
		Columns: []export.Column[P]{
			{Header: "field.title_fr", Value: func(p P) string { return p.Title.FR }},
			{Header: "field.technologies", Value: func(p P) string { return strings.Join(p.Technologies, ", ") }},
			{Header: "field.categories", Value: func(p P) string {
				labels := make([]string, 0, len(p.Categories))
				for _, c := range p.Categories {
					labels = append(labels, c.Display())
				}
				return strings.Join(labels, ", ")
			}},
			{Header: "field.status", Value: func(p P) string { return p.Status }},
		},
		Filter: filter.Spec[P]{
			SearchFields: func(p P) []string {
				return append([]string{p.Title.FR, p.Title.EN}, p.Technologies...)
			},
			Categories: func(p P) []string { return model.RefIDs(p.Categories) },
			Status:     func(p P) string { return p.Status },
		},
		CategoryChoices: categories,
		Statuses:        model.PublicationStatuses,
		StatusKey:       "status.",
		Blank:           func() P { return P{Status: model.StatusDraft, Technologies: []string{}, Categories: []model.Ref{}} },
		WithID:          P.WithID,
		Validate: func(p P) form.Errors {
			errs := form.Errors{}
			requireLocalized(errs, "title", p.Title)
			checkURL(errs, "link", p.Link)
			checkItems(errs, "technologies", p.Technologies)
			requireChoice(errs, "status", p.Status, model.PublicationStatuses)
			return errs
		},
		Label:    func(p P, lang string) string { return p.Title.Get(lang) },
		ImageURL: func(p P) string { return p.Image },
		Prepend:  true,
	}
}

func userDescriptor() Descriptor[model.User] {
	type U = model.User
	return Descriptor[U]{
		Name:  "users",
		Title: "res.users",
		Fields: []Field[U]{
			requiredField(textField("name", "field.name", func(u U) string { return u.Name }, func(u *U, v string) { u.Name = v })),
			requiredField(kindField(KindEmail, textField("email", "field.email", func(u U) string { return u.Email }, func(u *U, v string) { u.Email = strings.ToLower(v) }))),
			textField("phone", "field.phone", func(u U) string { return u.Phone }, func(u *U, v string) { u.Phone = v }),
			requiredField(selectField("role", "field.role", model.UserRoles, "role.", func(u U) string { return u.Role }, func(u *U, v string) { u.Role = v })),
			requiredField(selectField("status", "field.status", model.UserStatuses, "status.", func(u U) string { return u.Status }, func(u *U, v string) { u.Status = v })),
		},
		Columns: []export.Column[U]{
			{Header: "field.name", Value: func(u U) string { return u.Name }},
			{Header: "field.email", Value: func(u U) string { return u.Email }},
			{Header: "field.role", Value: func(u U) string { return u.Role }},
			{Header: "field.status", Value: func(u U) string { return u.Status }},
		},
		Filter: filter.Spec[U]{
			SearchFields: func(u U) []string { return []string{u.Name, u.Email} },
			Categories:   func(u U) []string { return one(u.Role) },
			Status:       func(u U) string { return u.Status },
		},
		Categories:  model.UserRoles,
		CategoryKey: "role.",
		Statuses:    model.UserStatuses,
		StatusKey:   "status.",
		Blank:       func() U { return U{Role: "editor", Status: model.UserStatuses[0]} },
		WithID:      U.WithID,
		Validate: func(u U) form.Errors {
			errs := form.Errors{}
			requireText(errs, "name", u.Name)
			checkEmail(errs, "email", u.Email)
			requireChoice(errs, "role", u.Role, model.UserRoles)
			requireChoice(errs, "status", u.Status, model.UserStatuses)
			return errs
		},
		Label:   func(u U, _ string) string { return u.Name },
		MinRole: middleware.RoleAdmin,
	}
}

func withChoices[T any](f Field[T], choices ChoiceFunc) Field[T] {
	f.Choices = choices
	return f
}
