// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package paging slices a filtered list into pages and computes the
// compact page-number window shown under lists.
package paging

// DefaultPerPage is used when a caller passes a non-positive page size.
const DefaultPerPage = 10

// PerPageOptions are the page sizes offered by the per-page selector.
var PerPageOptions = []int{5, 10, 20, 50}

// Span is the number of pages shown on each side of the current page.
const Span = 2

// TotalPages returns ceil(totalItems/perPage), 0 for an empty list.
func TotalPages(totalItems, perPage int) int {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	if totalItems <= 0 {
		return 0
	}
	return (totalItems + perPage - 1) / perPage
}

// ClampPage keeps page within [1, max(1, totalPages)].
func ClampPage(page, totalPages int) int {
	if page < 1 {
		return 1
	}
	if totalPages < 1 {
		return 1
	}
	if page > totalPages {
		return totalPages
	}
	return page
}

// Normalize validates perPage, computes total pages and clamps page.
func Normalize(page, totalItems, perPage int) (int, int, int) {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	totalPages := TotalPages(totalItems, perPage)
	return ClampPage(page, totalPages), totalPages, perPage
}

// Paginate returns the slice of items shown on page.
// Pages outside the list yield an empty slice.
func Paginate[T any](items []T, page, perPage int) []T {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	if page < 1 {
		return []T{}
	}
	start := (page - 1) * perPage
	if start >= len(items) {
		return []T{}
	}
	end := min(start+perPage, len(items))
	out := make([]T, end-start)
	copy(out, items[start:end])
	return out
}

// Item is one entry of the page-number window.
type Item struct {
	Number   int
	Current  bool
	Ellipsis bool
}

// Window returns the page numbers to display: the first and last pages,
// the pages within Span of current, and one ellipsis for each gap.
// For total=10, current=5: 1 … 3 4 5 6 7 … 10.
func Window(current, total int) []Item {
	if total < 1 {
		return nil
	}
	current = ClampPage(current, total)

	start := max(1, current-Span)
	end := min(total, current+Span)

	items := make([]Item, 0, end-start+5)
	if start > 1 {
		items = append(items, Item{Number: 1})
		if start > 2 {
			items = append(items, Item{Ellipsis: true})
		}
	}
	for i := start; i <= end; i++ {
		items = append(items, Item{Number: i, Current: i == current})
	}
	if end < total {
		if end < total-1 {
			items = append(items, Item{Ellipsis: true})
		}
		items = append(items, Item{Number: total})
	}
	return items
}

// Page is one page of a list together with its navigation state.
type Page[T any] struct {
	Items      []T
	Number     int
	PerPage    int
	TotalItems int
	TotalPages int
	HasPrev    bool
	HasNext    bool
	Window     []Item
}

// Build clamps page against items and returns the resulting Page.
func Build[T any](items []T, page, perPage int) Page[T] {
	page, totalPages, perPage := Normalize(page, len(items), perPage)
	return Page[T]{
		Items:      Paginate(items, page, perPage),
		Number:     page,
		PerPage:    perPage,
		TotalItems: len(items),
		TotalPages: totalPages,
		HasPrev:    page > 1,
		HasNext:    page < totalPages,
		Window:     Window(page, totalPages),
	}
}

// ShouldShow reports whether navigation controls are needed.
func (p Page[T]) ShouldShow() bool {
	return p.TotalPages > 1
}

// FirstIndex returns the 1-based position of the first item on the page, 0 when empty.
func (p Page[T]) FirstIndex() int {
	if len(p.Items) == 0 {
		return 0
	}
	return (p.Number-1)*p.PerPage + 1
}

// LastIndex returns the 1-based position of the last item on the page, 0 when empty.
func (p Page[T]) LastIndex() int {
	if len(p.Items) == 0 {
		return 0
	}
	return p.FirstIndex() + len(p.Items) - 1
}
