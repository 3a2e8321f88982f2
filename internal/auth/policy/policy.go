// Package policy holds the authorization rules of the service in one table.
// Every access-controlled operation asks Can/Authorize instead of comparing roles inline.
package policy

import (
	"fmt"

	"github.com/CPSG-31/kbti-backend/internal/models"
)

// Action is an access-controlled operation
type Action string

const (
	UpdateDefinition   Action = "definition:update"
	DeleteDefinition   Action = "definition:delete"
	ModerateDefinition Action = "definition:moderate"
	ChangeUserRole     Action = "user:change-role"
	ManageUsers        Action = "user:manage"
	ViewDashboard      Action = "dashboard:view"
)

// Resource describes the target of an action when ownership or state matters
type Resource struct {
	AuthorID int
	State    models.ModerationState
}

// ForDefinition builds a resource from a definition row
func ForDefinition(d *models.Definition) *Resource {
	return &Resource{AuthorID: d.UserID, State: d.State}
}

type rule func(actor *models.Actor, res *Resource) bool

var rules = map[Action]rule{
	UpdateDefinition: func(actor *models.Actor, res *Resource) bool {
		return res != nil && actor.UserID == res.AuthorID
	},
	DeleteDefinition: func(actor *models.Actor, res *Resource) bool {
		return res != nil &&
			(actor.UserID == res.AuthorID || actor.Role == models.RoleAdmin) &&
			res.State != models.StateDeleted
	},
	ModerateDefinition: adminOnly,
	ChangeUserRole:     adminOnly,
	ManageUsers:        adminOnly,
	ViewDashboard: func(actor *models.Actor, _ *Resource) bool {
		return actor.Role == models.RoleUser
	},
}

func adminOnly(actor *models.Actor, _ *Resource) bool {
	return actor.Role == models.RoleAdmin
}

// Can reports whether actor may perform action on res. Unknown actions are denied.
func Can(actor *models.Actor, action Action, res *Resource) bool {
	if actor == nil {
		return false
	}
	r, ok := rules[action]
	if !ok {
		return false
	}
	return r(actor, res)
}

// Authorize returns an error wrapping models.ErrForbidden when Can denies the action
func Authorize(actor *models.Actor, action Action, res *Resource) error {
	if Can(actor, action, res) {
		return nil
	}
	return fmt.Errorf("%w: %s", models.ErrForbidden, action)
}
