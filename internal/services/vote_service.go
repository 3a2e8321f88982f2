package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/CPSG-31/kbti-backend/internal/metrics"
	"github.com/CPSG-31/kbti-backend/internal/models"
	"go.uber.org/zap"
)

// VoteRepository is the interface that wraps methods for Votes table data access
type VoteRepository interface {
	// Method Cast records, flips or retracts the vote of "userID" on an APPROVED definition atomically.
	//
	// A definition that is missing, DELETED, or not APPROVED and authored by someone else yields
	// models.ErrDefinitionNotFound. The author of a definition in REVIEW or REJECTED gets a *models.TransitionError.
	// A concurrent writer yields models.ErrConflict and the call may be retried.
	Cast(ctx context.Context, userID, definitionID int, isUpvote bool) (*models.CastOutcome, error)
	// Method Tally computes the vote counts of a definition together with its author and state.
	//
	// If the definition is missing, models.ErrDefinitionNotFound is returned together with "nil" value.
	Tally(ctx context.Context, definitionID int) (*models.DefinitionTally, error)
}

// voteAttempts is how often a vote is tried when it races with another vote of the same user
const voteAttempts = 2

// voteService implements vote casting with toggle-to-retract semantics
type voteService struct {
	repo    VoteRepository
	metrics *metrics.DomainMetrics
	logger  *zap.Logger
}

// NewVoteService creates a new vote service
func NewVoteService(repo VoteRepository, domainMetrics *metrics.DomainMetrics, logger *zap.Logger) *voteService {
	return &voteService{
		repo:    repo,
		metrics: domainMetrics,
		logger:  logger,
	}
}

// CastVote applies a vote of the actor.
//
// Without an existing vote the vote is created, a vote in the same direction is retracted
// and a vote in the opposite direction is flipped. The returned tally includes the change.
func (s *voteService) CastVote(ctx context.Context, actor *models.Actor, definitionID int, req *models.VoteRequest) (*models.VoteResult, error) {
	if actor == nil {
		return nil, models.ErrUnauthenticated
	}
	if req == nil || req.IsUpvote == nil {
		return nil, models.NewValidationError("is_upvote", "is_upvote is required")
	}

	var (
		outcome *models.CastOutcome
		err     error
	)
	for attempt := 1; attempt <= voteAttempts; attempt++ {
		outcome, err = s.repo.Cast(ctx, actor.UserID, definitionID, *req.IsUpvote)
		if !errors.Is(err, models.ErrConflict) {
			break
		}
		s.logger.Warn("vote conflicted with a concurrent vote",
			zap.Int("definitionId", definitionID),
			zap.Int("userId", actor.UserID),
			zap.Int("attempt", attempt),
		)
	}
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil, fmt.Errorf("failed to cast vote after %d attempts: %w", voteAttempts, err)
		}
		return nil, err
	}

	s.metrics.VoteCast(outcome.Outcome)
	return &outcome.Result, nil
}

// Tally retrieves the vote counts of a definition the actor may view.
// "actor" may be nil for anonymous callers.
func (s *voteService) Tally(ctx context.Context, actor *models.Actor, definitionID int) (models.Tally, error) {
	result, err := s.repo.Tally(ctx, definitionID)
	if err != nil {
		return models.Tally{}, err
	}
	if !visibleTo(actor, result.AuthorID, result.State) {
		return models.Tally{}, models.ErrDefinitionNotFound
	}
	return result.Votes, nil
}
