package models

import "math"

// Status labels used in the response envelope
const (
	StatusSuccess         = "Success"
	StatusNotFound        = "Not Found"
	StatusForbidden       = "Forbidden"
	StatusValidationError = "Validation Error"
	StatusUnauthorized    = "Unauthorized"
	StatusError           = "Error"
)

const (
	DefaultPerPage = 10
	MaxPerPage     = 100
	// MaxPage keeps Offset within a signed 32-bit range at any page size
	MaxPage = math.MaxInt32 / MaxPerPage
)

// Response is the envelope every endpoint answers with
type Response struct {
	Code    int    `json:"code"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Meta    *Meta  `json:"meta,omitempty"`
}

// Meta carries pagination info
type Meta struct {
	Total       int `json:"total"`
	PerPage     int `json:"per_page"`
	CurrentPage int `json:"current_page"`
	LastPage    int `json:"last_page"`
}

// Page is a requested page of a listing
type Page struct {
	Number  int
	PerPage int
}

// NewPage clamps page number and size to sane values
func NewPage(number, perPage int) Page {
	if number < 1 {
		number = 1
	}
	if number > MaxPage {
		number = MaxPage
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	return Page{Number: number, PerPage: perPage}
}

// Offset returns the row offset of the page
func (p Page) Offset() int {
	return (p.Number - 1) * p.PerPage
}

// NewMeta builds pagination info for a page of a listing with total rows
func NewMeta(total int, p Page) *Meta {
	lastPage := 1
	if total > 0 {
		lastPage = (total + p.PerPage - 1) / p.PerPage
	}
	return &Meta{
		Total:       total,
		PerPage:     p.PerPage,
		CurrentPage: p.Number,
		LastPage:    lastPage,
	}
}

// PagedList is a page of items together with its pagination info
type PagedList[T any] struct {
	Items []T
	Meta  *Meta
}
