package models

// Category is immutable reference data seeded by migrations
type Category struct {
	ID   int    `json:"id"`
	Name string `json:"category"`
}
