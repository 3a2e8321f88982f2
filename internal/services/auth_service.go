package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/CPSG-31/kbti-backend/internal/auth/service"
	"github.com/CPSG-31/kbti-backend/internal/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"
)

// UserRepository is the interface that wraps methods for Users table data access used by authentication
type UserRepository interface {
	// Method Create inserts a new user into the database.
	//
	// "user" parameter is used to create a new user, its ID is filled on success.
	//
	// If the email or username is already taken, models.ErrConflict is returned.
	Create(ctx context.Context, user *models.User) error
	// Method GetByEmail retrieves a user by email, active or not.
	//
	// If user with such email does not exist, models.ErrUserNotFound will be returned together with "nil" value.
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// Method GetByID retrieves a user by ID, active or not.
	//
	// If user with such ID does not exist, models.ErrUserNotFound will be returned together with "nil" value.
	GetByID(ctx context.Context, userID int) (*models.User, error)
	// Method ExistsByEmail checks if a user with such email exists.
	//
	// If some error occurs during check, the error will be returned together with "false" value.
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	// Method ExistsByUsername checks if a user with such username exists.
	//
	// If some error occurs during check, the error will be returned together with "false" value.
	ExistsByUsername(ctx context.Context, username string) (bool, error)
}

// UserTokenRepository is the interface that wraps methods for UserTokens table data access
type UserTokenRepository interface {
	// Method Create persists an issued token id so that it can be revoked later.
	Create(ctx context.Context, userToken *models.UserToken) error
	// Method IsActive reports whether the token id belongs to the user and has neither expired nor been revoked.
	//
	// "now" parameter is the reference time for expiry.
	IsActive(ctx context.Context, tokenID string, userID int, now time.Time) (bool, error)
	// Method DeleteByTokenID revokes a single token.
	//
	// If the token does not exist, models.ErrTokenNotFound will be returned.
	DeleteByTokenID(ctx context.Context, tokenID string) error
	// Method DeleteByUserID revokes every token of a user and returns the number of revoked tokens.
	DeleteByUserID(ctx context.Context, userID int) (int, error)
	// Method DeleteExpiredTokens deletes all tokens that expired at or before "now".
	//
	// Returns the number of deleted rows; 0 deleted rows is not an error.
	DeleteExpiredTokens(ctx context.Context, now time.Time) (int, error)
}

const maxUsernameLength = 80

// emailRegex validates email format
var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// minPasswordLength is the shortest accepted password
const minPasswordLength = 8

// authService implements registration, login, logout and bearer token authentication
type authService struct {
	userRepo       UserRepository
	userTokenRepo  UserTokenRepository
	tokenGenerator *service.TokenGenerator
	logger         *zap.Logger
	now            func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo UserRepository,
	userTokenRepo UserTokenRepository,
	tokenGenerator *service.TokenGenerator,
	logger *zap.Logger,
) *authService {
	return &authService{
		userRepo:       userRepo,
		userTokenRepo:  userTokenRepo,
		tokenGenerator: tokenGenerator,
		logger:         logger,
		now:            time.Now,
	}
}

// Register creates a new active account with the USER role
func (s *authService) Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error) {
	email, username, err := s.checkRegisterCredentials(ctx, req.Email, req.Username, req.Password)
	if err != nil {
		return nil, err
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.now()
	user := &models.User{
		Role:         models.RoleUser,
		Username:     username,
		Email:        email,
		PasswordHash: string(passwordHash),
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, models.ErrConflict) {
			// lost a race with a concurrent registration
			return nil, models.NewValidationError("email", "email or username already exists")
		}
		return nil, err
	}

	s.logger.Info("user registered", zap.Int("userId", user.ID))
	return user, nil
}

// checkRegisterCredentials validates the registration fields and returns the normalized email and username.
//
// Format checks run first; uniqueness lookups only run for well-formed values and are done in parallel.
func (s *authService) checkRegisterCredentials(ctx context.Context, email, username, password string) (string, string, error) {
	normalizedEmail := strings.TrimSpace(strings.ToLower(email))
	normalizedUsername := strings.TrimSpace(username)

	verr := &models.ValidationError{}
	switch {
	case normalizedUsername == "":
		verr.Add("username", "username is required")
	case utf8.RuneCountInString(normalizedUsername) > maxUsernameLength:
		verr.Add("username", "username must be at most 80 characters")
	}
	if !emailRegex.MatchString(normalizedEmail) {
		verr.Add("email", "invalid email format")
	}
	if utf8.RuneCountInString(password) < minPasswordLength {
		verr.Add("password", "password must be at least 8 characters long")
	}
	if verr.HasErrors() {
		return "", "", verr
	}

	var usernameTaken, emailTaken bool
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		exists, err := s.userRepo.ExistsByUsername(gctx, normalizedUsername)
		if err != nil {
			return fmt.Errorf("failed to check username: %w", err)
		}
		usernameTaken = exists
		return nil
	})
	g.Go(func() error {
		exists, err := s.userRepo.ExistsByEmail(gctx, normalizedEmail)
		if err != nil {
			return fmt.Errorf("failed to check email: %w", err)
		}
		emailTaken = exists
		return nil
	})
	if err := g.Wait(); err != nil {
		return "", "", err
	}

	if usernameTaken {
		verr.Add("username", "username already exists")
	}
	if emailTaken {
		verr.Add("email", "email already exists")
	}
	if verr.HasErrors() {
		return "", "", verr
	}

	return normalizedEmail, normalizedUsername, nil
}

// Login verifies credentials of an active user and issues a bearer token
func (s *authService) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error) {
	email := strings.TrimSpace(strings.ToLower(req.Email))

	verr := &models.ValidationError{}
	if email == "" {
		verr.Add("email", "email is required")
	}
	if req.Password == "" {
		verr.Add("password", "password is required")
	}
	if verr.HasErrors() {
		return nil, verr
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if errors.Is(err, models.ErrUserNotFound) {
		return nil, models.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, models.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, models.ErrInvalidCredentials
	}

	issued, err := s.tokenGenerator.GenerateAccessToken(user.ID, int(user.Role))
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	userToken := &models.UserToken{
		UserID:    user.ID,
		TokenID:   issued.TokenID,
		ExpiresAt: issued.ExpiresAt,
	}
	if err := s.userTokenRepo.Create(ctx, userToken); err != nil {
		return nil, fmt.Errorf("failed to save token: %w", err)
	}

	return &models.LoginResponse{
		UserID:    user.ID,
		RoleID:    user.Role,
		Username:  user.Username,
		Email:     user.Email,
		Token:     issued.Token,
		ExpiresAt: issued.ExpiresAt,
	}, nil
}

// Logout revokes the token the actor authenticated with.
// A token that was already revoked concurrently is not an error.
func (s *authService) Logout(ctx context.Context, actor *models.Actor) error {
	if actor == nil || actor.TokenID == "" {
		return models.ErrUnauthenticated
	}

	err := s.userTokenRepo.DeleteByTokenID(ctx, actor.TokenID)
	if err != nil && !errors.Is(err, models.ErrTokenNotFound) {
		return err
	}
	return nil
}

// Authenticate resolves a bearer token into an actor.
//
// The token must carry a valid signature, must not be expired and must still be persisted.
// The role is read from the user row, so role changes and deactivation apply immediately.
func (s *authService) Authenticate(ctx context.Context, token string) (*models.Actor, error) {
	claims, err := s.tokenGenerator.ValidateAccessToken(token)
	if errors.Is(err, service.ErrTokenExpired) {
		return nil, models.ErrTokenExpired
	}
	if err != nil {
		return nil, models.ErrInvalidCredentials
	}

	active, err := s.userTokenRepo.IsActive(ctx, claims.ID, claims.UserID, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to check token: %w", err)
	}
	if !active {
		return nil, models.ErrInvalidCredentials
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if errors.Is(err, models.ErrUserNotFound) {
		return nil, models.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, models.ErrInvalidCredentials
	}

	return &models.Actor{UserID: user.ID, Role: user.Role, TokenID: claims.ID}, nil
}
