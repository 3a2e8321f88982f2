package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/CPSG-31/kbti-backend/internal/models"
	"go.uber.org/zap"
)

// userTokenRepository implements UserTokenRepository
type userTokenRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewUserTokenRepository creates a new user token repository
func NewUserTokenRepository(db *sql.DB, logger *zap.Logger) *userTokenRepository {
	return &userTokenRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new issued token into the database
func (r *userTokenRepository) Create(ctx context.Context, userToken *models.UserToken) error {
	query := `
		INSERT INTO user_tokens (user_id, token_id, expires_at)
		VALUES (?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query, userToken.UserID, userToken.TokenID, userToken.ExpiresAt)
	if err != nil {
		r.logger.Error("failed to create user token", zap.Error(err), zap.Int("userId", userToken.UserID))
		return fmt.Errorf("failed to create user token: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	userToken.ID = int(id)

	return nil
}

// IsActive reports whether a token id was issued to the user and has not expired or been revoked
func (r *userTokenRepository) IsActive(ctx context.Context, tokenID string, userID int, now time.Time) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM user_tokens WHERE token_id = ? AND user_id = ? AND expires_at > ?)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, tokenID, userID, now).Scan(&exists); err != nil {
		r.logger.Error("failed to check user token", zap.Error(err))
		return false, fmt.Errorf("failed to check user token: %w", err)
	}

	return exists, nil
}

// DeleteByTokenID revokes a single token
func (r *userTokenRepository) DeleteByTokenID(ctx context.Context, tokenID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM user_tokens WHERE token_id = ?`, tokenID)
	if err != nil {
		r.logger.Error("failed to delete user token", zap.Error(err))
		return fmt.Errorf("failed to delete user token: %w", err)
	}

	return requireAffected(result, models.ErrTokenNotFound)
}

// DeleteByUserID revokes every token of a user
func (r *userTokenRepository) DeleteByUserID(ctx context.Context, userID int) (int, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM user_tokens WHERE user_id = ?`, userID)
	if err != nil {
		r.logger.Error("failed to delete user tokens", zap.Error(err), zap.Int("userId", userID))
		return 0, fmt.Errorf("failed to delete user tokens: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return int(rowsAffected), nil
}

// DeleteExpiredTokens deletes all tokens that expired at or before now
func (r *userTokenRepository) DeleteExpiredTokens(ctx context.Context, now time.Time) (int, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM user_tokens WHERE expires_at <= ?`, now)
	if err != nil {
		r.logger.Error("failed to delete expired tokens", zap.Error(err))
		return 0, fmt.Errorf("failed to delete expired tokens: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return int(rowsAffected), nil
}
