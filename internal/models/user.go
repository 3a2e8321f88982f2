package models

import "time"

// User represents a user in the system
type User struct {
	ID           int       `json:"id"`
	Role         Role      `json:"role_id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never serialize password hash
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UserResponse represents a user in admin API responses
type UserResponse struct {
	ID        int       `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	RoleID    Role      `json:"role_id"`
	RoleName  string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// UserToken represents an issued bearer token.
// A token is valid only while its row exists, so deleting the row revokes it.
type UserToken struct {
	ID        int       `json:"id"`
	UserID    int       `json:"user_id"`
	TokenID   string    `json:"token_id"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// RegisterRequest represents a registration request
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is returned after a successful login
type LoginResponse struct {
	UserID    int       `json:"user_id"`
	RoleID    Role      `json:"role_id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Dashboard summarizes a user's own submissions
type Dashboard struct {
	UserID        int                  `json:"user_id"`
	Username      string               `json:"username"`
	Email         string               `json:"email"`
	TotalApproved int                  `json:"total_approved"`
	TotalReview   int                  `json:"total_review"`
	TotalRejected int                  `json:"total_reject"`
	Definitions   []DefinitionResponse `json:"definitions"`
}
