package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/CPSG-31/kbti-backend/internal/models"
	"go.uber.org/zap"
)

// userRepository implements the user data access interfaces of the services package
type userRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sql.DB, logger *zap.Logger) *userRepository {
	return &userRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new user into the database
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (role_id, username, email, password, is_active)
		VALUES (?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query, user.Role, user.Username, user.Email, user.PasswordHash, user.IsActive)
	if err != nil {
		if isDuplicateEntry(err) {
			return fmt.Errorf("user already exists: %w", models.ErrConflict)
		}
		r.logger.Error("failed to create user", zap.Error(err))
		return fmt.Errorf("failed to create user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	user.ID = int(id)
	return nil
}

const userColumns = `id, role_id, username, email, password, is_active, created_at, updated_at`

func scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID,
		&user.Role,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.IsActive,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// GetByEmail retrieves a user by email, active or not
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = ? LIMIT 1`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, email))
	if err != nil && !errors.Is(err, models.ErrUserNotFound) {
		r.logger.Error("failed to get user by email", zap.Error(err))
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return user, err
}

// GetByID retrieves a user by ID, active or not
func (r *userRepository) GetByID(ctx context.Context, userID int) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ? LIMIT 1`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, userID))
	if err != nil && !errors.Is(err, models.ErrUserNotFound) {
		r.logger.Error("failed to get user by id", zap.Error(err), zap.Int("userId", userID))
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}
	return user, err
}

// ExistsByEmail checks if a user exists with the given email
func (r *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE email = ?)`, email)
}

// ExistsByUsername checks if a user exists with the given username
func (r *userRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE username = ?)`, username)
}

func (r *userRepository) exists(ctx context.Context, query string, arg any) (bool, error) {
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, arg).Scan(&exists); err != nil {
		r.logger.Error("failed to check user existence", zap.Error(err))
		return false, fmt.Errorf("failed to check user existence: %w", err)
	}
	return exists, nil
}

// ListActive retrieves a page of active users with their role names, newest first
func (r *userRepository) ListActive(ctx context.Context, page models.Page) ([]models.UserResponse, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE is_active = TRUE`).Scan(&total); err != nil {
		r.logger.Error("failed to count users", zap.Error(err))
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	query := `
		SELECT u.id, u.username, u.email, u.role_id, ro.role_name, u.created_at
		FROM users u
		JOIN roles ro ON ro.id = u.role_id
		WHERE u.is_active = TRUE
		ORDER BY u.created_at DESC, u.id DESC
		LIMIT ? OFFSET ?
	`

	rows, err := r.db.QueryContext(ctx, query, page.PerPage, page.Offset())
	if err != nil {
		r.logger.Error("failed to query users", zap.Error(err))
		return nil, 0, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	users := make([]models.UserResponse, 0)
	for rows.Next() {
		var u models.UserResponse
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.RoleID, &u.RoleName, &u.CreatedAt); err != nil {
			r.logger.Error("failed to scan user", zap.Error(err))
			return nil, 0, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("error iterating rows", zap.Error(err))
		return nil, 0, fmt.Errorf("error iterating rows: %w", err)
	}

	return users, total, nil
}

// GetActive retrieves an active user with the role name
func (r *userRepository) GetActive(ctx context.Context, userID int) (*models.UserResponse, error) {
	query := `
		SELECT u.id, u.username, u.email, u.role_id, ro.role_name, u.created_at
		FROM users u
		JOIN roles ro ON ro.id = u.role_id
		WHERE u.id = ? AND u.is_active = TRUE
		LIMIT 1
	`

	u := &models.UserResponse{}
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&u.ID, &u.Username, &u.Email, &u.RoleID, &u.RoleName, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrUserNotFound
	}
	if err != nil {
		r.logger.Error("failed to get active user", zap.Error(err), zap.Int("userId", userID))
		return nil, fmt.Errorf("failed to get active user: %w", err)
	}

	return u, nil
}

// Deactivate marks an active user as inactive
func (r *userRepository) Deactivate(ctx context.Context, userID int) error {
	query := `UPDATE users SET is_active = FALSE WHERE id = ? AND is_active = TRUE`

	result, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		r.logger.Error("failed to deactivate user", zap.Error(err), zap.Int("userId", userID))
		return fmt.Errorf("failed to deactivate user: %w", err)
	}

	return requireAffected(result, models.ErrUserNotFound)
}

// UpdateRole changes the role of an active user
func (r *userRepository) UpdateRole(ctx context.Context, userID int, role models.Role) error {
	query := `UPDATE users SET role_id = ? WHERE id = ? AND is_active = TRUE`

	result, err := r.db.ExecContext(ctx, query, role, userID)
	if err != nil {
		r.logger.Error("failed to update user role", zap.Error(err), zap.Int("userId", userID))
		return fmt.Errorf("failed to update user role: %w", err)
	}

	return requireAffected(result, models.ErrUserNotFound)
}
