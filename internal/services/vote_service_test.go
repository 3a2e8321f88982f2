package services

import (
	"context"
	"errors"
	"testing"

	"github.com/CPSG-31/kbti-backend/internal/metrics"
	"github.com/CPSG-31/kbti-backend/internal/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func boolPtr(b bool) *bool {
	return &b
}

func TestVoteService_CastVote(t *testing.T) {
	outcome := &models.CastOutcome{
		Result: models.VoteResult{
			DefinitionID: 7, IsVoted: true, IsUpvote: true,
			Votes: models.Tally{TotalVotes: 1, UpVotes: 1},
		},
		Outcome: models.VoteOutcomeCreated,
	}

	tests := []struct {
		name          string
		actor         *models.Actor
		req           *models.VoteRequest
		repo          *mockVoteRepository
		expectedCalls int
		expectedError error
		wantErr       bool
	}{
		{
			name:          "success",
			actor:         author,
			req:           &models.VoteRequest{IsUpvote: boolPtr(true)},
			repo:          &mockVoteRepository{outcome: outcome},
			expectedCalls: 1,
		},
		{
			name:          "conflict retried once",
			actor:         author,
			req:           &models.VoteRequest{IsUpvote: boolPtr(true)},
			repo:          &mockVoteRepository{outcome: outcome, errs: []error{models.ErrConflict}},
			expectedCalls: 2,
		},
		{
			name:          "conflict twice surfaces",
			actor:         author,
			req:           &models.VoteRequest{IsUpvote: boolPtr(true)},
			repo:          &mockVoteRepository{outcome: outcome, errs: []error{models.ErrConflict, models.ErrConflict}},
			expectedCalls: 2,
			expectedError: models.ErrConflict,
		},
		{
			name:          "missing direction",
			actor:         author,
			req:           &models.VoteRequest{},
			repo:          &mockVoteRepository{outcome: outcome},
			expectedError: models.ErrValidation,
		},
		{
			name:          "anonymous",
			req:           &models.VoteRequest{IsUpvote: boolPtr(false)},
			repo:          &mockVoteRepository{outcome: outcome},
			expectedError: models.ErrUnauthenticated,
		},
		{
			name:          "definition not approved",
			actor:         author,
			req:           &models.VoteRequest{IsUpvote: boolPtr(false)},
			repo:          &mockVoteRepository{errs: []error{&models.TransitionError{From: models.StateReview, Action: "voted on"}}},
			expectedCalls: 1,
			expectedError: models.ErrDefinitionNotFound,
		},
		{
			name:          "database error not retried",
			actor:         author,
			req:           &models.VoteRequest{IsUpvote: boolPtr(false)},
			repo:          &mockVoteRepository{errs: []error{errors.New("database error")}},
			expectedCalls: 1,
			wantErr:       true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, _ := zap.NewDevelopment()
			reg := prometheus.NewRegistry()
			domain, err := metrics.NewDomainMetrics(reg)
			require.NoError(t, err)
			svc := NewVoteService(tt.repo, domain, logger)

			result, err := svc.CastVote(context.Background(), tt.actor, 7, tt.req)
			assert.Equal(t, tt.expectedCalls, tt.repo.calls)

			switch {
			case tt.expectedError != nil:
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, result)
			case tt.wantErr:
				assert.Error(t, err)
				assert.Nil(t, result)
			default:
				require.NoError(t, err)
				assert.Equal(t, &outcome.Result, result)
				count, err := testutil.GatherAndCount(reg, "kbti_votes_total")
				require.NoError(t, err)
				assert.Equal(t, 1, count)
			}
		})
	}
}

func TestVoteService_Tally(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	author := &models.Actor{UserID: 3, Role: models.RoleUser}
	stranger := &models.Actor{UserID: 4, Role: models.RoleUser}
	admin := &models.Actor{UserID: 1, Role: models.RoleAdmin}
	votes := models.NewTally(3, 2)

	tests := []struct {
		name          string
		state         models.ModerationState
		actor         *models.Actor
		repoErr       error
		expectedError error
	}{
		{name: "approved for anonymous", state: models.StateApproved},
		{name: "review for its author", state: models.StateReview, actor: author},
		{name: "rejected for admin", state: models.StateRejected, actor: admin},
		{name: "review hidden from anonymous", state: models.StateReview, expectedError: models.ErrDefinitionNotFound},
		{name: "rejected hidden from other users", state: models.StateRejected, actor: stranger, expectedError: models.ErrDefinitionNotFound},
		{name: "deleted hidden from admin", state: models.StateDeleted, actor: admin, expectedError: models.ErrDefinitionNotFound},
		{name: "missing definition", repoErr: models.ErrDefinitionNotFound, expectedError: models.ErrDefinitionNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockVoteRepository{
				tally: &models.DefinitionTally{AuthorID: 3, State: tt.state, Votes: votes},
				err:   tt.repoErr,
			}
			svc := NewVoteService(repo, nil, logger)

			tally, err := svc.Tally(context.Background(), tt.actor, 7)
			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Equal(t, models.Tally{}, tally)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, models.Tally{TotalVotes: 3, UpVotes: 2, DownVotes: 1}, tally)
		})
	}
}
