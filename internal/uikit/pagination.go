// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package uikit

import (
	"net/http"
	"net/url"
	"slices"
	"strconv"

	"github.com/makerskills/makerskills-web/internal/paging"
)

// Query parameters used by paginated lists.
const (
	ParamPage    = "page"
	ParamPerPage = "per_page"
)

// Pager is the view model of the "pagination" partial.
type Pager struct {
	CurrentPage int
	TotalPages  int
	TotalItems  int
	FirstIndex  int
	LastIndex   int
	HasPrev     bool
	HasNext     bool
	Pages       []PagerLink

	base  string
	query url.Values
}

// PagerLink is one numbered link, or a gap, of the page window.
type PagerLink struct {
	Number     int
	URL        string
	IsCurrent  bool
	IsEllipsis bool
}

// NewPager builds the pager for p. Links point at base and carry the
// non-empty values of query except the page number.
func NewPager[T any](p paging.Page[T], base string, query url.Values) Pager {
	kept := url.Values{}
	for k, v := range query {
		if k != ParamPage && len(v) > 0 && v[0] != "" {
			kept[k] = v
		}
	}
	pg := Pager{
		CurrentPage: p.Number,
		TotalPages:  p.TotalPages,
		TotalItems:  p.TotalItems,
		FirstIndex:  p.FirstIndex(),
		LastIndex:   p.LastIndex(),
		HasPrev:     p.HasPrev,
		HasNext:     p.HasNext,
		base:        base,
		query:       kept,
	}
	for _, w := range p.Window {
		link := PagerLink{Number: w.Number, IsCurrent: w.Current, IsEllipsis: w.Ellipsis}
		if !w.Ellipsis {
			link.URL = pg.PageURL(w.Number)
		}
		pg.Pages = append(pg.Pages, link)
	}
	return pg
}

// PageURL links to page n.
func (p Pager) PageURL(n int) string {
	q := url.Values{}
	for k, v := range p.query {
		q[k] = v
	}
	q.Set(ParamPage, strconv.Itoa(n))
	return p.base + "?" + q.Encode()
}

// PrevURL links to the previous page.
func (p Pager) PrevURL() string { return p.PageURL(p.CurrentPage - 1) }

// NextURL links to the next page.
func (p Pager) NextURL() string { return p.PageURL(p.CurrentPage + 1) }

// ShouldShow hides the navigation of single-page lists.
func (p Pager) ShouldShow() bool { return p.TotalPages > 1 }

// PageParam reads the requested page number, 1 when absent or not positive.
func PageParam(r *http.Request) int {
	if n := queryInt(r, ParamPage); n > 0 {
		return n
	}
	return 1
}

// PerPageParam reads the requested page size; values outside
// paging.PerPageOptions give def.
func PerPageParam(r *http.Request, def int) int {
	if n := queryInt(r, ParamPerPage); slices.Contains(paging.PerPageOptions, n) {
		return n
	}
	return def
}

// queryInt returns the integer value of param, 0 when absent or malformed.
func queryInt(r *http.Request, param string) int {
	n, err := strconv.Atoi(r.URL.Query().Get(param))
	if err != nil {
		return 0
	}
	return n
}
