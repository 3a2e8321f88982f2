package models

import "slices"

// ModerationState is the lifecycle state of a definition.
// Values match the seeded rows of the status_definitions table.
type ModerationState int

const (
	StateReview   ModerationState = 1
	StateApproved ModerationState = 2
	StateRejected ModerationState = 3
	StateDeleted  ModerationState = 4
)

var stateNames = map[ModerationState]string{
	StateReview:   "review",
	StateApproved: "approved",
	StateRejected: "rejected",
	StateDeleted:  "deleted",
}

// transitions lists every legal target for each state.
// DELETED has no outgoing transition: the only way out is a purge, which removes the row.
var transitions = map[ModerationState][]ModerationState{
	StateReview:   {StateReview, StateApproved, StateRejected, StateDeleted},
	StateApproved: {StateReview, StateDeleted},
	StateRejected: {StateReview, StateDeleted},
	StateDeleted:  nil,
}

func (s ModerationState) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// Valid reports whether s is one of the four known states
func (s ModerationState) Valid() bool {
	_, ok := stateNames[s]
	return ok
}

// PubliclyVisible reports whether definitions in this state may be shown to anyone
func (s ModerationState) PubliclyVisible() bool {
	return s == StateApproved
}

// CanTransition reports whether a definition may move from one state to another
func CanTransition(from, to ModerationState) bool {
	return slices.Contains(transitions[from], to)
}

// CanPurge reports whether a definition in state s may be permanently removed
func CanPurge(s ModerationState) bool {
	return s == StateDeleted
}

// IsReviewDecision reports whether s is a state an admin may pick when reviewing
func IsReviewDecision(s ModerationState) bool {
	return s == StateApproved || s == StateRejected
}
