package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/CPSG-31/kbti-backend/internal/metrics"
	"github.com/CPSG-31/kbti-backend/internal/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestModerationService(t *testing.T, repo *mockDefinitionRepository) (*moderationService, *prometheus.Registry) {
	t.Helper()
	logger, _ := zap.NewDevelopment()
	reg := prometheus.NewRegistry()
	domain, err := metrics.NewDomainMetrics(reg)
	require.NoError(t, err)
	return NewModerationService(repo, domain, logger), reg
}

func TestModerationService_Lists(t *testing.T) {
	page := models.NewPage(1, 10)
	items := []models.DefinitionResponse{{ID: 1}, {ID: 2}}

	tests := []struct {
		name           string
		list           func(*moderationService, *models.Actor) (*models.PagedList[models.DefinitionResponse], error)
		expectedStates []models.ModerationState
	}{
		{
			name: "for review",
			list: func(s *moderationService, a *models.Actor) (*models.PagedList[models.DefinitionResponse], error) {
				return s.ListForReview(context.Background(), a, page)
			},
			expectedStates: []models.ModerationState{models.StateReview},
		},
		{
			name: "reviewed",
			list: func(s *moderationService, a *models.Actor) (*models.PagedList[models.DefinitionResponse], error) {
				return s.ListReviewed(context.Background(), a, page)
			},
			expectedStates: []models.ModerationState{models.StateApproved, models.StateRejected},
		},
		{
			name: "deleted",
			list: func(s *moderationService, a *models.Actor) (*models.PagedList[models.DefinitionResponse], error) {
				return s.ListDeleted(context.Background(), a, page)
			},
			expectedStates: []models.ModerationState{models.StateDeleted},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockDefinitionRepository{details: items, total: 12}
			svc, _ := newTestModerationService(t, repo)

			list, err := tt.list(svc, adminUser)
			require.NoError(t, err)
			assert.Equal(t, items, list.Items)
			assert.Equal(t, &models.Meta{Total: 12, PerPage: 10, CurrentPage: 1, LastPage: 2}, list.Meta)
			assert.Equal(t, tt.expectedStates, repo.lastStates)

			_, err = tt.list(svc, author)
			assert.ErrorIs(t, err, models.ErrForbidden)
		})
	}
}

func TestModerationService_Review(t *testing.T) {
	tests := []struct {
		name          string
		actor         *models.Actor
		statusID      int
		current       models.ModerationState
		writeErr      error
		getErr        error
		expectedError error
		expectedFrom  models.ModerationState
	}{
		{name: "approve", actor: adminUser, statusID: 2},
		{name: "reject", actor: adminUser, statusID: 3},
		{name: "non-admin", actor: author, statusID: 2, expectedError: models.ErrForbidden},
		{name: "invalid decision", actor: adminUser, statusID: 4, expectedError: models.ErrValidation},
		{name: "review is not a decision", actor: adminUser, statusID: 1, expectedError: models.ErrValidation},
		{
			name: "already approved", actor: adminUser, statusID: 3,
			writeErr: models.ErrDefinitionNotFound, current: models.StateApproved,
			expectedError: models.ErrDefinitionNotFound, expectedFrom: models.StateApproved,
		},
		{
			name: "moved back to review meanwhile", actor: adminUser, statusID: 2,
			writeErr: models.ErrDefinitionNotFound, current: models.StateReview,
			expectedError: models.ErrConflict,
		},
		{
			name: "missing", actor: adminUser, statusID: 2,
			writeErr: models.ErrDefinitionNotFound, getErr: models.ErrDefinitionNotFound,
			expectedError: models.ErrDefinitionNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockDefinitionRepository{
				definition: &models.Definition{ID: 3, State: tt.current},
				detail:     &models.DefinitionResponse{ID: 3},
				writeErr:   tt.writeErr,
				getErr:     tt.getErr,
			}
			svc, reg := newTestModerationService(t, repo)

			resp, err := svc.Review(context.Background(), tt.actor, 3, &models.ReviewRequest{StatusID: tt.statusID})
			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, resp)
				var transErr *models.TransitionError
				if tt.expectedFrom != 0 {
					require.ErrorAs(t, err, &transErr)
					assert.Equal(t, tt.expectedFrom, transErr.From)
				} else {
					assert.False(t, errors.As(err, &transErr))
				}
				return
			}

			require.NoError(t, err)
			assert.Equal(t, 3, resp.ID)
			to := models.ModerationState(tt.statusID)
			assert.Equal(t, []models.ModerationState{models.StateReview, to}, repo.transitioned)

			count, err := testutil.GatherAndCount(reg, "kbti_moderation_transitions_total")
			require.NoError(t, err)
			assert.Equal(t, 1, count)
		})
	}
}

func TestModerationService_Purge(t *testing.T) {
	tests := []struct {
		name          string
		actor         *models.Actor
		current       models.ModerationState
		writeErr      error
		expectedError error
		expectTrans   bool
	}{
		{name: "purge deleted", actor: adminUser, current: models.StateDeleted},
		{name: "non-admin", actor: author, current: models.StateDeleted, expectedError: models.ErrForbidden},
		{
			name: "not deleted", actor: adminUser, current: models.StateApproved,
			writeErr: models.ErrDefinitionNotFound, expectedError: models.ErrDefinitionNotFound, expectTrans: true,
		},
		{
			name: "deleted again meanwhile", actor: adminUser, current: models.StateDeleted,
			writeErr: models.ErrDefinitionNotFound, expectedError: models.ErrConflict,
		},
		{name: "database error", actor: adminUser, writeErr: errors.New("database error")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockDefinitionRepository{
				definition: &models.Definition{ID: 9, State: tt.current},
				writeErr:   tt.writeErr,
			}
			svc, reg := newTestModerationService(t, repo)

			err := svc.Purge(context.Background(), tt.actor, 9)
			switch {
			case tt.expectedError != nil:
				assert.ErrorIs(t, err, tt.expectedError)
				var transErr *models.TransitionError
				assert.Equal(t, tt.expectTrans, errors.As(err, &transErr))
			case tt.writeErr != nil:
				assert.Error(t, err)
			default:
				require.NoError(t, err)
				assert.Equal(t, 9, repo.purged)
				expected := `
# HELP kbti_definitions_purged_total Soft-deleted definitions permanently removed
# TYPE kbti_definitions_purged_total counter
kbti_definitions_purged_total 1
`
				assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "kbti_definitions_purged_total"))
			}
		})
	}
}
