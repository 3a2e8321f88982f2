package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/CPSG-31/kbti-backend/internal/models"
	"go.uber.org/zap"
)

// voteRepository implements VoteRepository
type voteRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewVoteRepository creates a new vote repository
func NewVoteRepository(db *sql.DB, logger *zap.Logger) *voteRepository {
	return &voteRepository{
		db:     db,
		logger: logger,
	}
}

// Cast records, flips or retracts a user's vote on an APPROVED definition in a single transaction.
//
// The definition row is share-locked so it cannot leave APPROVED mid-vote, and the
// (user, definition) vote row is read FOR UPDATE so concurrent votes of the same user
// serialize. A race on the first insert surfaces as models.ErrConflict and may be retried.
func (r *voteRepository) Cast(ctx context.Context, userID, definitionID int, isUpvote bool) (*models.CastOutcome, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		r.logger.Error("failed to begin vote transaction", zap.Error(err))
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var (
		state    models.ModerationState
		authorID int
	)
	err = tx.QueryRowContext(ctx,
		`SELECT status_definition_id, user_id FROM definitions WHERE id = ? LOCK IN SHARE MODE`,
		definitionID,
	).Scan(&state, &authorID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrDefinitionNotFound
	}
	if err != nil {
		return nil, r.txError("failed to lock definition", err)
	}
	if !state.Valid() {
		r.logger.Error("definition has an unknown state", zap.Int("definitionId", definitionID), zap.Int("state", int(state)))
		return nil, fmt.Errorf("definition %d has unknown state %d", definitionID, state)
	}
	if state != models.StateApproved {
		// only the author learns why a hidden definition cannot be voted on
		if state == models.StateDeleted || authorID != userID {
			return nil, models.ErrDefinitionNotFound
		}
		return nil, &models.TransitionError{From: state, Action: "voted on"}
	}

	var current bool
	err = tx.QueryRowContext(ctx,
		`SELECT is_upvote FROM votes WHERE user_id = ? AND definition_id = ? FOR UPDATE`,
		userID, definitionID,
	).Scan(&current)

	outcome := &models.CastOutcome{
		Result: models.VoteResult{DefinitionID: definitionID, IsUpvote: isUpvote},
	}

	switch {
	case errors.Is(err, sql.ErrNoRows):
		_, err = tx.ExecContext(ctx,
			`INSERT INTO votes (user_id, definition_id, is_upvote) VALUES (?, ?, ?)`,
			userID, definitionID, isUpvote,
		)
		if err != nil {
			return nil, r.txError("failed to create vote", err)
		}
		outcome.Result.IsVoted = true
		outcome.Outcome = models.VoteOutcomeCreated
	case err != nil:
		return nil, r.txError("failed to read vote", err)
	case current == isUpvote:
		_, err = tx.ExecContext(ctx,
			`DELETE FROM votes WHERE user_id = ? AND definition_id = ?`,
			userID, definitionID,
		)
		if err != nil {
			return nil, r.txError("failed to retract vote", err)
		}
		outcome.Result.IsVoted = false
		outcome.Outcome = models.VoteOutcomeRetracted
	default:
		_, err = tx.ExecContext(ctx,
			`UPDATE votes SET is_upvote = ? WHERE user_id = ? AND definition_id = ?`,
			isUpvote, userID, definitionID,
		)
		if err != nil {
			return nil, r.txError("failed to change vote", err)
		}
		outcome.Result.IsVoted = true
		outcome.Outcome = models.VoteOutcomeChanged
	}

	var total, ups int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(is_upvote), 0) FROM votes WHERE definition_id = ?`,
		definitionID,
	).Scan(&total, &ups)
	if err != nil {
		return nil, r.txError("failed to tally votes", err)
	}
	outcome.Result.Votes = models.NewTally(total, ups)

	if err := tx.Commit(); err != nil {
		return nil, r.txError("failed to commit vote", err)
	}

	return outcome, nil
}

// txError classifies a failure inside the vote transaction
func (r *voteRepository) txError(msg string, err error) error {
	if isRetryable(err) {
		return fmt.Errorf("%s: %w: %v", msg, models.ErrConflict, err)
	}
	r.logger.Error(msg, zap.Error(err))
	return fmt.Errorf("%s: %w", msg, err)
}

// Tally computes the vote counts of a definition from its vote rows together with
// the author and state that decide who may see them.
// A missing definition yields ErrDefinitionNotFound.
func (r *voteRepository) Tally(ctx context.Context, definitionID int) (*models.DefinitionTally, error) {
	query := `
		SELECT d.status_definition_id, d.user_id, COUNT(v.id), COALESCE(SUM(v.is_upvote), 0)
		FROM definitions d
		LEFT JOIN votes v ON v.definition_id = d.id
		WHERE d.id = ?
		GROUP BY d.id, d.status_definition_id, d.user_id
	`

	var (
		result     models.DefinitionTally
		total, ups int
	)
	err := r.db.QueryRowContext(ctx, query, definitionID).Scan(&result.State, &result.AuthorID, &total, &ups)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrDefinitionNotFound
	}
	if err != nil {
		r.logger.Error("failed to tally votes", zap.Error(err), zap.Int("definitionId", definitionID))
		return nil, fmt.Errorf("failed to tally votes: %w", err)
	}
	result.Votes = models.NewTally(total, ups)

	return &result, nil
}
