package models

// Role is the authorization role of a user.
// Values match the seeded rows of the roles table.
type Role int

const (
	RoleAdmin Role = 1
	RoleUser  Role = 2
)

func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "admin"
	case RoleUser:
		return "user"
	default:
		return "unknown"
	}
}

// RoleRecord represents a row of the roles table
type RoleRecord struct {
	ID   Role   `json:"id"`
	Name string `json:"role"`
}

// ChangeRoleRequest represents a role change request
type ChangeRoleRequest struct {
	RoleID int `json:"role_id"`
}

// Actor is the authenticated identity performing an action
type Actor struct {
	UserID  int
	Role    Role
	TokenID string
}

// IsAdmin reports whether the actor has the admin role
func (a *Actor) IsAdmin() bool {
	return a != nil && a.Role == RoleAdmin
}
