// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// Partner is a company or school listed on the partners page.
type Partner struct {
	ID          string        `json:"_id,omitempty"`
	Name        string        `json:"name"`
	Type        string        `json:"type"`
	Website     string        `json:"website"`
	Logo        string        `json:"logo,omitempty"`
	Description LocalizedText `json:"description"`
	Status      string        `json:"status"`
}

func (p Partner) EntityID() string { return p.ID }

// WithID returns p carrying id.
func (p Partner) WithID(id string) Partner { p.ID = id; return p }

// PartnerTypes are the partner kinds.
var PartnerTypes = []string{"company", "school", "association", "sponsor"}

// Product is an item sold in the shop.
type Product struct {
	ID          string        `json:"_id,omitempty"`
	Name        string        `json:"name"`
	SKU         string        `json:"sku"`
	Category    string        `json:"category"`
	Price       float64       `json:"price"`
	Stock       int           `json:"stock"`
	Image       string        `json:"image,omitempty"`
	Description LocalizedText `json:"description"`
	Status      string        `json:"status"`
}

func (p Product) EntityID() string { return p.ID }

// WithID returns p carrying id.
func (p Product) WithID(id string) Product { p.ID = id; return p }

// InStock reports whether the product can be ordered.
func (p Product) InStock() bool { return p.Stock > 0 }

// Event is a dated public event participants register for.
type Event struct {
	ID          string        `json:"_id,omitempty"`
	Title       LocalizedText `json:"title"`
	Description LocalizedText `json:"description"`
	Date        string        `json:"date"`
	Location    string        `json:"location"`
	Category    string        `json:"category"`
	Capacity    int           `json:"capacity"`
	Price       float64       `json:"price"`
	Status      string        `json:"status"`
}

func (e Event) EntityID() string { return e.ID }

// WithID returns e carrying id.
func (e Event) WithID(id string) Event { e.ID = id; return e }

// Participant is a person registered to an event.
type Participant struct {
	ID           string `json:"_id,omitempty"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Organization string `json:"organization"`
}

func (p Participant) EntityID() string { return p.ID }

// WithID returns p carrying id.
func (p Participant) WithID(id string) Participant { p.ID = id; return p }

// Order is a participant's registration to an event.
type Order struct {
	ID          string  `json:"_id,omitempty"`
	Participant Ref     `json:"participant"`
	Event       Ref     `json:"event"`
	Amount      float64 `json:"amount"`
	Payment     string  `json:"payment"`
	Status      string  `json:"status"`
	CreatedAt   string  `json:"createdAt,omitempty"`
}

func (o Order) EntityID() string { return o.ID }

// WithID returns o carrying id.
func (o Order) WithID(id string) Order { o.ID = id; return o }

// Order values.
var (
	OrderStatuses  = []string{"pending", "paid", "cancelled", "refunded"}
	PaymentMethods = []string{"card", "transfer", "cash", "free"}
)

// User is a back-office account.
type User struct {
	ID     string `json:"_id,omitempty"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Phone  string `json:"phone"`
	Role   string `json:"role"`
	Status string `json:"status"`
}

func (u User) EntityID() string { return u.ID }

// WithID returns u carrying id.
func (u User) WithID(id string) User { u.ID = id; return u }

// RoleAdmin is the administrator role.
const RoleAdmin = "admin"

// IsAdmin reports whether the user has the administrator role.
func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

// User values.
var (
	UserRoles    = []string{RoleAdmin, "editor", "instructor"}
	UserStatuses = []string{"active", "suspended"}
)

// Project is a student project shown in the portfolio, with an optional image.
type Project struct {
	ID           string        `json:"_id,omitempty"`
	Title        LocalizedText `json:"title"`
	Description  LocalizedText `json:"description"`
	Image        string        `json:"image,omitempty"`
	Link         string        `json:"link"`
	Technologies []string      `json:"technologies"`
	Categories   []Ref         `json:"categories"`
	Status       string        `json:"status"`
}

func (p Project) EntityID() string { return p.ID }

// WithID returns p carrying id.
func (p Project) WithID(id string) Project { p.ID = id; return p }

// Summary holds the dashboard counters served by /static/summary.
type Summary struct {
	Formations   int     `json:"formations"`
	Workshops    int     `json:"workshops"`
	Bootcamps    int     `json:"bootcamps"`
	Events       int     `json:"events"`
	Participants int     `json:"participants"`
	Orders       int     `json:"orders"`
	Projects     int     `json:"projects"`
	Users        int     `json:"users"`
	Revenue      float64 `json:"revenue"`
}

// ContactMessage is posted from the public contact form.
type ContactMessage struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
	Lang    string `json:"lang"`
}
