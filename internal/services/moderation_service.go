package services

import (
	"context"
	"fmt"

	"github.com/CPSG-31/kbti-backend/internal/auth/policy"
	"github.com/CPSG-31/kbti-backend/internal/metrics"
	"github.com/CPSG-31/kbti-backend/internal/models"
	"go.uber.org/zap"
)

var (
	reviewStates   = []models.ModerationState{models.StateReview}
	reviewedStates = []models.ModerationState{models.StateApproved, models.StateRejected}
	deletedStates  = []models.ModerationState{models.StateDeleted}
)

// moderationService implements the admin side of the moderation state machine
type moderationService struct {
	repo    DefinitionRepository
	metrics *metrics.DomainMetrics
	logger  *zap.Logger
}

// NewModerationService creates a new moderation service
func NewModerationService(repo DefinitionRepository, domainMetrics *metrics.DomainMetrics, logger *zap.Logger) *moderationService {
	return &moderationService{
		repo:    repo,
		metrics: domainMetrics,
		logger:  logger,
	}
}

// ListForReview retrieves definitions awaiting a decision
func (s *moderationService) ListForReview(ctx context.Context, actor *models.Actor, page models.Page) (*models.PagedList[models.DefinitionResponse], error) {
	return s.list(ctx, actor, reviewStates, page)
}

// ListReviewed retrieves APPROVED and REJECTED definitions
func (s *moderationService) ListReviewed(ctx context.Context, actor *models.Actor, page models.Page) (*models.PagedList[models.DefinitionResponse], error) {
	return s.list(ctx, actor, reviewedStates, page)
}

// ListDeleted retrieves soft-deleted definitions with their deletion time
func (s *moderationService) ListDeleted(ctx context.Context, actor *models.Actor, page models.Page) (*models.PagedList[models.DefinitionResponse], error) {
	return s.list(ctx, actor, deletedStates, page)
}

func (s *moderationService) list(ctx context.Context, actor *models.Actor, states []models.ModerationState, page models.Page) (*models.PagedList[models.DefinitionResponse], error) {
	if err := policy.Authorize(actor, policy.ModerateDefinition, nil); err != nil {
		return nil, err
	}

	items, total, err := s.repo.ListByStates(ctx, states, page)
	if err != nil {
		return nil, err
	}

	return &models.PagedList[models.DefinitionResponse]{Items: items, Meta: models.NewMeta(total, page)}, nil
}

// Review approves or rejects a definition that is in REVIEW.
//
// "req.StatusID" must be the id of APPROVED or REJECTED. When the definition is not in REVIEW
// (anymore), a *models.TransitionError naming its current state is returned.
func (s *moderationService) Review(ctx context.Context, actor *models.Actor, id int, req *models.ReviewRequest) (*models.DefinitionResponse, error) {
	if err := policy.Authorize(actor, policy.ModerateDefinition, nil); err != nil {
		return nil, err
	}

	to := models.ModerationState(req.StatusID)
	if !models.IsReviewDecision(to) {
		return nil, models.NewValidationError("status_id", "status_id must be approved (2) or rejected (3)")
	}

	if err := s.repo.Transition(ctx, id, models.StateReview, to); err != nil {
		if isNotFound(err) {
			return nil, s.transitionError(ctx, id, to.String(), func(from models.ModerationState) bool {
				return models.CanTransition(from, to)
			})
		}
		return nil, err
	}
	s.metrics.Transition(models.StateReview, to)
	s.logger.Info("definition reviewed",
		zap.Int("definitionId", id),
		zap.String("state", to.String()),
		zap.Int("adminId", actor.UserID),
	)

	return s.repo.GetDetail(ctx, id)
}

// Purge permanently removes a soft-deleted definition and its votes
func (s *moderationService) Purge(ctx context.Context, actor *models.Actor, id int) error {
	if err := policy.Authorize(actor, policy.ModerateDefinition, nil); err != nil {
		return err
	}

	if err := s.repo.Purge(ctx, id); err != nil {
		if isNotFound(err) {
			return s.transitionError(ctx, id, "purged", models.CanPurge)
		}
		return err
	}
	s.metrics.Purged()
	s.logger.Info("definition purged", zap.Int("definitionId", id), zap.Int("adminId", actor.UserID))

	return nil
}

// transitionError explains a failed conditional state change.
// A definition that no longer exists yields models.ErrDefinitionNotFound. One whose current
// state would have allowed the change was moved concurrently and yields models.ErrConflict.
func (s *moderationService) transitionError(ctx context.Context, id int, action string, allowed func(models.ModerationState) bool) error {
	def, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if allowed(def.State) {
		s.logger.Warn("definition changed during moderation", zap.Int("definitionId", id), zap.String("state", def.State.String()))
		return fmt.Errorf("definition %d changed concurrently: %w", id, models.ErrConflict)
	}
	return &models.TransitionError{From: def.State, Action: action}
}
