package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/CPSG-31/kbti-backend/internal/auth/policy"
	"github.com/CPSG-31/kbti-backend/internal/metrics"
	"github.com/CPSG-31/kbti-backend/internal/models"
	"go.uber.org/zap"
)

// DefinitionRepository is the interface that wraps methods for Definitions table data access
type DefinitionRepository interface {
	// Method Create inserts a new definition in the REVIEW state.
	//
	// "def" parameter carries author, category, term and body; its ID and State are filled on success.
	Create(ctx context.Context, def *models.Definition) error
	// Method GetByID retrieves the raw definition row in any state.
	//
	// If the definition does not exist, models.ErrDefinitionNotFound will be returned together with "nil" value.
	GetByID(ctx context.Context, id int) (*models.Definition, error)
	// Method GetDetail retrieves a definition in any state enriched with author name, category label and vote tally.
	//
	// If the definition does not exist, models.ErrDefinitionNotFound will be returned together with "nil" value.
	GetDetail(ctx context.Context, id int) (*models.DefinitionResponse, error)
	// Method Update replaces term, body and category of a definition owned by def.UserID and resets it to REVIEW.
	//
	// The row is only changed when it is still owned by def.UserID and not DELETED,
	// otherwise models.ErrDefinitionNotFound is returned.
	Update(ctx context.Context, def *models.Definition) error
	// Method SoftDelete moves a non-deleted definition to DELETED.
	//
	// If the definition is missing or already DELETED, models.ErrDefinitionNotFound is returned.
	SoftDelete(ctx context.Context, id int) error
	// Method Transition moves a definition from state "from" to state "to" only if it is still in "from".
	//
	// If the definition is missing or its state changed meanwhile, models.ErrDefinitionNotFound is returned.
	Transition(ctx context.Context, id int, from, to models.ModerationState) error
	// Method Purge permanently removes a DELETED definition together with its votes.
	//
	// If the definition is missing or not DELETED, models.ErrDefinitionNotFound is returned.
	Purge(ctx context.Context, id int) error
	// Method ListApproved retrieves a page of APPROVED definitions filtered by term substring and/or category.
	//
	// Returns the page items and the total number of matching rows.
	ListApproved(ctx context.Context, q models.DefinitionQuery) ([]models.DefinitionResponse, int, error)
	// Method ListByStates retrieves a page of definitions in any of "states", most recently updated first.
	ListByStates(ctx context.Context, states []models.ModerationState, page models.Page) ([]models.DefinitionResponse, int, error)
	// Method ListByAuthor retrieves every non-deleted definition of a user.
	ListByAuthor(ctx context.Context, userID int) ([]models.DefinitionResponse, error)
	// Method CountByAuthor counts a user's definitions per moderation state.
	CountByAuthor(ctx context.Context, userID int) (map[models.ModerationState]int, error)
	// Method SearchTerms retrieves distinct APPROVED terms matching "query" the way "match" selects.
	SearchTerms(ctx context.Context, query string, match models.TermMatch) ([]string, error)
	// Method NewestTerms retrieves up to "limit" most recently updated distinct APPROVED terms.
	NewestTerms(ctx context.Context, limit int) ([]string, error)
	// Method Random retrieves up to "limit" random APPROVED definitions.
	Random(ctx context.Context, limit int) ([]models.DefinitionResponse, error)
}

// CategoryRepository is the interface that wraps methods for Categories table data access
type CategoryRepository interface {
	// Method GetCategories retrieves all categories ordered by id.
	GetCategories(ctx context.Context) ([]models.Category, error)
	// Method CategoryExists checks if a category with such id exists.
	CategoryExists(ctx context.Context, categoryID int) (bool, error)
}

// definitionService implements authoring of definitions: create, read, edit and soft delete
type definitionService struct {
	repo         DefinitionRepository
	categoryRepo CategoryRepository
	metrics      *metrics.DomainMetrics
	logger       *zap.Logger
}

// NewDefinitionService creates a new definition service
func NewDefinitionService(
	repo DefinitionRepository,
	categoryRepo CategoryRepository,
	domainMetrics *metrics.DomainMetrics,
	logger *zap.Logger,
) *definitionService {
	return &definitionService{
		repo:         repo,
		categoryRepo: categoryRepo,
		metrics:      domainMetrics,
		logger:       logger,
	}
}

// Create submits a new definition for review
func (s *definitionService) Create(ctx context.Context, actor *models.Actor, req *models.DefinitionRequest) (*models.DefinitionResponse, error) {
	if actor == nil {
		return nil, models.ErrUnauthenticated
	}
	if err := s.validateRequest(ctx, req); err != nil {
		return nil, err
	}

	def := &models.Definition{
		UserID:     actor.UserID,
		CategoryID: req.CategoryID,
		Term:       req.Term,
		Body:       req.Definition,
	}
	if err := s.repo.Create(ctx, def); err != nil {
		return nil, err
	}
	s.metrics.Transition(0, models.StateReview)
	s.logger.Info("definition submitted", zap.Int("definitionId", def.ID), zap.Int("userId", actor.UserID))

	return s.repo.GetDetail(ctx, def.ID)
}

// GetByID retrieves a single definition.
//
// APPROVED definitions are visible to everyone, REVIEW and REJECTED ones only to their author and admins.
// DELETED definitions are reported as not found to everyone. "actor" may be nil for anonymous callers.
func (s *definitionService) GetByID(ctx context.Context, actor *models.Actor, id int) (*models.DefinitionResponse, error) {
	def, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canView(actor, def) {
		return nil, models.ErrDefinitionNotFound
	}

	return s.repo.GetDetail(ctx, id)
}

func canView(actor *models.Actor, def *models.Definition) bool {
	return visibleTo(actor, def.UserID, def.State)
}

// visibleTo reports whether a definition of authorID in state may be shown to actor
func visibleTo(actor *models.Actor, authorID int, state models.ModerationState) bool {
	switch {
	case state.PubliclyVisible():
		return true
	case state == models.StateDeleted:
		return false
	default:
		return actor != nil && (actor.UserID == authorID || actor.IsAdmin())
	}
}

// Update edits a definition of its author. Every edit sends the definition back to REVIEW.
func (s *definitionService) Update(ctx context.Context, actor *models.Actor, id int, req *models.DefinitionRequest) (*models.DefinitionResponse, error) {
	if actor == nil {
		return nil, models.ErrUnauthenticated
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !models.CanTransition(current.State, models.StateReview) {
		return nil, models.ErrDefinitionNotFound
	}
	if err := policy.Authorize(actor, policy.UpdateDefinition, policy.ForDefinition(current)); err != nil {
		return nil, err
	}
	if err := s.validateRequest(ctx, req); err != nil {
		return nil, err
	}

	def := &models.Definition{
		ID:         id,
		UserID:     actor.UserID,
		CategoryID: req.CategoryID,
		Term:       req.Term,
		Body:       req.Definition,
	}
	if err := s.repo.Update(ctx, def); err != nil {
		return nil, err
	}
	s.metrics.Transition(current.State, models.StateReview)

	return s.repo.GetDetail(ctx, id)
}

// SoftDelete moves a definition to DELETED on behalf of its author or an admin
func (s *definitionService) SoftDelete(ctx context.Context, actor *models.Actor, id int) error {
	if actor == nil {
		return models.ErrUnauthenticated
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !models.CanTransition(current.State, models.StateDeleted) {
		return models.ErrDefinitionNotFound
	}
	if err := policy.Authorize(actor, policy.DeleteDefinition, policy.ForDefinition(current)); err != nil {
		return err
	}

	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.metrics.Transition(current.State, models.StateDeleted)
	s.logger.Info("definition deleted",
		zap.Int("definitionId", id),
		zap.Int("actorId", actor.UserID),
		zap.Bool("byAdmin", actor.UserID != current.UserID),
	)

	return nil
}

// validateRequest normalizes and validates a definition payload, including the category reference
func (s *definitionService) validateRequest(ctx context.Context, req *models.DefinitionRequest) error {
	if req == nil {
		return models.NewValidationError("body", "request body is required")
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return err
	}

	exists, err := s.categoryRepo.CategoryExists(ctx, req.CategoryID)
	if err != nil {
		return fmt.Errorf("failed to check category: %w", err)
	}
	if !exists {
		return models.NewValidationError("category_id", "category does not exist")
	}
	return nil
}

// isNotFound reports whether err means the definition is absent or no longer in the expected state
func isNotFound(err error) bool {
	return errors.Is(err, models.ErrDefinitionNotFound)
}
