package domain

import (
	"strings"
	"time"
)

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// Page carries the normalized pagination/sort part of a search request.
type Page struct {
	Page      int    `json:"page"`
	Limit     int    `json:"limit"`
	SortBy    string `json:"sort_by,omitempty"`
	SortOrder string `json:"sort_order"`
}

// Normalize floors the page at 1, falls back to the default limit when
// the requested one is outside [1, MaxPageLimit], and defaults the sort
// order to descending. Out-of-range values are corrected, not rejected.
func (p Page) Normalize() Page {
	out := p
	if out.Page < 1 {
		out.Page = 1
	}
	if out.Limit < 1 || out.Limit > MaxPageLimit {
		out.Limit = DefaultPageLimit
	}
	if strings.ToLower(out.SortOrder) != "asc" {
		out.SortOrder = "desc"
	} else {
		out.SortOrder = "asc"
	}
	return out
}

func (p Page) Offset() int {
	return (p.Page - 1) * p.Limit
}

type Pagination struct {
	Page        int  `json:"page"`
	Limit       int  `json:"limit"`
	Total       int  `json:"total"`
	TotalPages  int  `json:"total_pages"`
	HasNextPage bool `json:"has_next_page"`
	HasPrevPage bool `json:"has_prev_page"`
}

func NewPagination(page Page, total int) Pagination {
	totalPages := 0
	if total > 0 {
		totalPages = (total + page.Limit - 1) / page.Limit
	}
	return Pagination{
		Page:        page.Page,
		Limit:       page.Limit,
		Total:       total,
		TotalPages:  totalPages,
		HasNextPage: page.Page < totalPages,
		HasPrevPage: page.Page > 1,
	}
}

// DocumentFilter narrows document searches; absent fields impose no
// constraint.
type DocumentFilter struct {
	OwnerID  string         `json:"owner_id,omitempty"`
	Type     DocumentType   `json:"type,omitempty"`
	Status   DocumentStatus `json:"status,omitempty"`
	DateFrom *time.Time     `json:"date_from,omitempty"`
	DateTo   *time.Time     `json:"date_to,omitempty"`
	Page     Page           `json:"page"`
}

type ScenarioFilter struct {
	CreatorID  string           `json:"creator_id,omitempty"`
	Category   ScenarioCategory `json:"category,omitempty"`
	Difficulty Difficulty       `json:"difficulty,omitempty"`
	PublicOnly bool             `json:"public_only,omitempty"`
	Query      string           `json:"query,omitempty"`
	Page       Page             `json:"page"`
}

type ResourceFilter struct {
	Category string         `json:"category,omitempty"`
	Format   ResourceFormat `json:"format,omitempty"`
	Query    string         `json:"query,omitempty"`
	Page     Page           `json:"page"`
}

type AppointmentFilter struct {
	UserID string            `json:"user_id,omitempty"`
	Status AppointmentStatus `json:"status,omitempty"`
	From   *time.Time        `json:"from,omitempty"`
	Page   Page              `json:"page"`
}
