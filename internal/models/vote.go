package models

// Vote represents a row of the votes table
type Vote struct {
	ID           int
	UserID       int
	DefinitionID int
	IsUpvote     bool
}

// Tally is the vote count of a definition derived from its vote rows
type Tally struct {
	TotalVotes int `json:"total_votes"`
	UpVotes    int `json:"up_votes"`
	DownVotes  int `json:"down_votes"`
}

// NewTally derives a tally from the total number of vote rows and the number of upvotes
func NewTally(total, up int) Tally {
	return Tally{TotalVotes: total, UpVotes: up, DownVotes: total - up}
}

// DefinitionTally is the tally of a definition with the fields that decide its visibility
type DefinitionTally struct {
	AuthorID int
	State    ModerationState
	Votes    Tally
}

// VoteRequest is the payload for casting a vote
type VoteRequest struct {
	IsUpvote *bool `json:"is_upvote"`
}

// VoteResult is returned after a vote was cast, changed or retracted
type VoteResult struct {
	DefinitionID int   `json:"definition_id"`
	IsVoted      bool  `json:"is_voted"`
	IsUpvote     bool  `json:"is_upvote"`
	Votes        Tally `json:"votes"`
}

// Vote outcomes reported by the store
const (
	VoteOutcomeCreated   = "created"
	VoteOutcomeRetracted = "retracted"
	VoteOutcomeChanged   = "changed"
)

// CastOutcome is the stored result of a vote together with what happened to the row
type CastOutcome struct {
	Result  VoteResult
	Outcome string
}
