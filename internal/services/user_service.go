package services

import (
	"context"
	"fmt"

	"github.com/CPSG-31/kbti-backend/internal/auth/policy"
	"github.com/CPSG-31/kbti-backend/internal/models"
	"go.uber.org/zap"
)

// AdminUserRepository is the interface that wraps methods for Users table data access used by administration
type AdminUserRepository interface {
	// Method ListActive retrieves a page of active users with their role names.
	//
	// Returns the page items and the total number of active users.
	ListActive(ctx context.Context, page models.Page) ([]models.UserResponse, int, error)
	// Method GetActive retrieves an active user with the role name.
	//
	// If the user does not exist or is inactive, models.ErrUserNotFound will be returned together with "nil" value.
	GetActive(ctx context.Context, userID int) (*models.UserResponse, error)
	// Method Deactivate marks an active user as inactive.
	//
	// If the user does not exist or is already inactive, models.ErrUserNotFound will be returned.
	Deactivate(ctx context.Context, userID int) error
	// Method UpdateRole changes the role of an active user.
	//
	// If the user does not exist or is inactive, models.ErrUserNotFound will be returned.
	UpdateRole(ctx context.Context, userID int, role models.Role) error
}

// RoleRepository is the interface that wraps methods for Roles table data access
type RoleRepository interface {
	// Method GetRoles retrieves all roles ordered by id.
	GetRoles(ctx context.Context) ([]models.RoleRecord, error)
	// Method RoleExists checks if a role with such id exists.
	RoleExists(ctx context.Context, roleID int) (bool, error)
}

// userService implements user and role administration
type userService struct {
	userRepo      AdminUserRepository
	userTokenRepo UserTokenRepository
	roleRepo      RoleRepository
	logger        *zap.Logger
}

// NewUserService creates a new user administration service
func NewUserService(
	userRepo AdminUserRepository,
	userTokenRepo UserTokenRepository,
	roleRepo RoleRepository,
	logger *zap.Logger,
) *userService {
	return &userService{
		userRepo:      userRepo,
		userTokenRepo: userTokenRepo,
		roleRepo:      roleRepo,
		logger:        logger,
	}
}

// ListUsers retrieves a page of active users
func (s *userService) ListUsers(ctx context.Context, actor *models.Actor, page models.Page) (*models.PagedList[models.UserResponse], error) {
	if err := policy.Authorize(actor, policy.ManageUsers, nil); err != nil {
		return nil, err
	}

	users, total, err := s.userRepo.ListActive(ctx, page)
	if err != nil {
		return nil, err
	}

	return &models.PagedList[models.UserResponse]{Items: users, Meta: models.NewMeta(total, page)}, nil
}

// GetUser retrieves an active user
func (s *userService) GetUser(ctx context.Context, actor *models.Actor, userID int) (*models.UserResponse, error) {
	if err := policy.Authorize(actor, policy.ManageUsers, nil); err != nil {
		return nil, err
	}
	return s.userRepo.GetActive(ctx, userID)
}

// Deactivate disables an active user and revokes all of their tokens
func (s *userService) Deactivate(ctx context.Context, actor *models.Actor, userID int) error {
	if err := policy.Authorize(actor, policy.ManageUsers, nil); err != nil {
		return err
	}

	if err := s.userRepo.Deactivate(ctx, userID); err != nil {
		return err
	}

	revoked, err := s.userTokenRepo.DeleteByUserID(ctx, userID)
	if err != nil {
		// Authenticate rejects inactive users, so leftover tokens are unusable
		s.logger.Warn("failed to revoke tokens of deactivated user", zap.Int("userId", userID), zap.Error(err))
	}
	s.logger.Info("user deactivated",
		zap.Int("userId", userID),
		zap.Int("adminId", actor.UserID),
		zap.Int("revokedTokens", revoked),
	)

	return nil
}

// ChangeRole assigns an existing role to an active user
func (s *userService) ChangeRole(ctx context.Context, actor *models.Actor, userID int, req *models.ChangeRoleRequest) (*models.UserResponse, error) {
	if err := policy.Authorize(actor, policy.ChangeUserRole, nil); err != nil {
		return nil, err
	}
	if req == nil || req.RoleID <= 0 {
		return nil, models.NewValidationError("role_id", "role_id is required")
	}

	exists, err := s.roleRepo.RoleExists(ctx, req.RoleID)
	if err != nil {
		return nil, fmt.Errorf("failed to check role: %w", err)
	}
	if !exists {
		return nil, models.ErrRoleNotFound
	}

	if err := s.userRepo.UpdateRole(ctx, userID, models.Role(req.RoleID)); err != nil {
		return nil, err
	}
	s.logger.Info("user role changed",
		zap.Int("userId", userID),
		zap.Int("roleId", req.RoleID),
		zap.Int("adminId", actor.UserID),
	)

	return s.userRepo.GetActive(ctx, userID)
}

// ListRoles returns all roles
func (s *userService) ListRoles(ctx context.Context, actor *models.Actor) ([]models.RoleRecord, error) {
	if err := policy.Authorize(actor, policy.ManageUsers, nil); err != nil {
		return nil, err
	}
	return s.roleRepo.GetRoles(ctx)
}
