package services

import (
	"context"

	"github.com/CPSG-31/kbti-backend/internal/auth/policy"
	"github.com/CPSG-31/kbti-backend/internal/models"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// dashboardService builds the personal overview of a contributor
type dashboardService struct {
	userRepo UserRepository
	repo     DefinitionRepository
	logger   *zap.Logger
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(userRepo UserRepository, repo DefinitionRepository, logger *zap.Logger) *dashboardService {
	return &dashboardService{
		userRepo: userRepo,
		repo:     repo,
		logger:   logger,
	}
}

// Dashboard summarizes the actor's own definitions.
//
// The three lookups are independent, so they run in parallel.
func (s *dashboardService) Dashboard(ctx context.Context, actor *models.Actor) (*models.Dashboard, error) {
	if err := policy.Authorize(actor, policy.ViewDashboard, nil); err != nil {
		return nil, err
	}

	var (
		user        *models.User
		counts      map[models.ModerationState]int
		definitions []models.DefinitionResponse
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		user, err = s.userRepo.GetByID(gctx, actor.UserID)
		return err
	})
	g.Go(func() error {
		var err error
		counts, err = s.repo.CountByAuthor(gctx, actor.UserID)
		return err
	})
	g.Go(func() error {
		var err error
		definitions, err = s.repo.ListByAuthor(gctx, actor.UserID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &models.Dashboard{
		UserID:        user.ID,
		Username:      user.Username,
		Email:         user.Email,
		TotalApproved: counts[models.StateApproved],
		TotalReview:   counts[models.StateReview],
		TotalRejected: counts[models.StateRejected],
		Definitions:   definitions,
	}, nil
}
