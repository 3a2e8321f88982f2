package models

import (
	"strings"
	"time"
	"unicode/utf8"
)

const maxTermLength = 255

// Definition represents a row of the definitions table
type Definition struct {
	ID         int
	UserID     int
	CategoryID int
	State      ModerationState
	Term       string
	Body       string
	CreatedAt  time.Time
	UpdatedAt  time.Time
	DeletedAt  *time.Time
}

// DefinitionResponse is a definition enriched with author, category and vote tally
type DefinitionResponse struct {
	ID         int        `json:"id"`
	Term       string     `json:"term"`
	Definition string     `json:"definition"`
	UserID     int        `json:"user_id"`
	Username   string     `json:"username"`
	CategoryID int        `json:"category_id"`
	Category   string     `json:"category"`
	Status     string     `json:"status"`
	Votes      Tally      `json:"votes"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	DeletedAt  *time.Time `json:"deleted_at,omitempty"`
}

// DefinitionRequest is the payload for creating or editing a definition
type DefinitionRequest struct {
	Term       string `json:"term"`
	Definition string `json:"definition"`
	CategoryID int    `json:"category_id"`
}

// Normalize trims surrounding whitespace from free-text fields
func (r *DefinitionRequest) Normalize() {
	r.Term = strings.TrimSpace(r.Term)
	r.Definition = strings.TrimSpace(r.Definition)
}

// Validate checks required fields and lengths
func (r *DefinitionRequest) Validate() error {
	verr := &ValidationError{}
	switch {
	case r.Term == "":
		verr.Add("term", "term is required")
	case utf8.RuneCountInString(r.Term) > maxTermLength:
		verr.Add("term", "term must be at most 255 characters")
	}
	if r.Definition == "" {
		verr.Add("definition", "definition is required")
	}
	if r.CategoryID <= 0 {
		verr.Add("category_id", "category_id is required")
	}
	return verr.OrNil()
}

// ReviewRequest carries an admin review decision
type ReviewRequest struct {
	StatusID int `json:"status_id"`
}

// DefinitionQuery selects publicly visible definitions
type DefinitionQuery struct {
	Term       string
	CategoryID int
	SortByTerm bool
	Page       Page
}

// TermMatch selects how a term search query is matched
type TermMatch int

const (
	// MatchAll returns every distinct approved term
	MatchAll TermMatch = iota
	// MatchPrefix matches terms starting with the query
	MatchPrefix
	// MatchSubstring matches terms containing the query
	MatchSubstring
)
