package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/CPSG-31/kbti-backend/internal/models"
	"go.uber.org/zap"
)

// catalogRepository reads the seeded reference tables: roles and categories
type catalogRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewCatalogRepository creates a new reference data repository
func NewCatalogRepository(db *sql.DB, logger *zap.Logger) *catalogRepository {
	return &catalogRepository{
		db:     db,
		logger: logger,
	}
}

// GetCategories retrieves all categories ordered by ID
func (r *catalogRepository) GetCategories(ctx context.Context) ([]models.Category, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, category FROM categories ORDER BY id`)
	if err != nil {
		r.logger.Error("failed to query categories", zap.Error(err))
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	categories := make([]models.Category, 0)
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			r.logger.Error("failed to scan category", zap.Error(err))
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("error iterating rows", zap.Error(err))
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return categories, nil
}

// CategoryExists checks if a category with the given ID exists
func (r *catalogRepository) CategoryExists(ctx context.Context, categoryID int) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM categories WHERE id = ?)`, categoryID).Scan(&exists)
	if err != nil {
		r.logger.Error("failed to check category existence", zap.Error(err), zap.Int("categoryId", categoryID))
		return false, fmt.Errorf("failed to check category existence: %w", err)
	}
	return exists, nil
}

// GetRoles retrieves all roles ordered by ID
func (r *catalogRepository) GetRoles(ctx context.Context) ([]models.RoleRecord, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, role_name FROM roles ORDER BY id`)
	if err != nil {
		r.logger.Error("failed to query roles", zap.Error(err))
		return nil, fmt.Errorf("failed to query roles: %w", err)
	}
	defer rows.Close()

	roles := make([]models.RoleRecord, 0)
	for rows.Next() {
		var role models.RoleRecord
		if err := rows.Scan(&role.ID, &role.Name); err != nil {
			r.logger.Error("failed to scan role", zap.Error(err))
			return nil, fmt.Errorf("failed to scan role: %w", err)
		}
		roles = append(roles, role)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("error iterating rows", zap.Error(err))
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return roles, nil
}

// RoleExists checks if a role with the given ID exists
func (r *catalogRepository) RoleExists(ctx context.Context, roleID int) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM roles WHERE id = ?)`, roleID).Scan(&exists)
	if err != nil {
		r.logger.Error("failed to check role existence", zap.Error(err), zap.Int("roleId", roleID))
		return false, fmt.Errorf("failed to check role existence: %w", err)
	}
	return exists, nil
}
