package model

import (
	"math"
	"time"
)

// Page limits.
const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100

	// MaxPage is the highest page whose offset fits in an int at any limit.
	MaxPage = math.MaxInt / MaxPageLimit
)

// PageRequest is a 1-based offset/limit request.
type PageRequest struct {
	Page  int
	Limit int
}

// Normalize fills defaults and clamps the page and limit.
func (p PageRequest) Normalize() PageRequest {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Page > MaxPage {
		p.Page = MaxPage
	}
	if p.Limit < 1 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	return p
}

// Offset returns the number of rows to skip.
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Pagination describes a returned page.
type Pagination struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

// NewPagination computes the page count for total rows.
func NewPagination(p PageRequest, total int) Pagination {
	pages := 0
	if p.Limit > 0 {
		pages = (total + p.Limit - 1) / p.Limit
	}
	return Pagination{Total: total, Page: p.Page, Limit: p.Limit, TotalPages: pages}
}

// Page is one page of items with its pagination block.
type Page[T any] struct {
	Items      []T
	Pagination Pagination
}

// DateRange is an inclusive time window. Zero bounds are open.
type DateRange struct {
	Start time.Time
	End   time.Time
}
