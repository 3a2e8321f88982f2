package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/CPSG-31/kbti-backend/internal/models"
	"go.uber.org/zap"
)

// definitionRepository implements DefinitionRepository.
// Every state change is a conditional statement on the current state, so two
// concurrent moderators cannot overwrite each other.
type definitionRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewDefinitionRepository creates a new definition repository
func NewDefinitionRepository(db *sql.DB, logger *zap.Logger) *definitionRepository {
	return &definitionRepository{
		db:     db,
		logger: logger,
	}
}

// detailSelect joins author, category and the vote tally derived from the votes table
const detailSelect = `
	SELECT d.id, d.term, d.definition, d.user_id, u.username, d.category_id, c.category,
		d.status_definition_id, COALESCE(v.total_votes, 0), COALESCE(v.up_votes, 0),
		d.created_at, d.updated_at, d.deleted_at
	FROM definitions d
	JOIN users u ON u.id = d.user_id
	JOIN categories c ON c.id = d.category_id
	LEFT JOIN (
		SELECT definition_id, COUNT(*) AS total_votes, SUM(is_upvote) AS up_votes
		FROM votes
		GROUP BY definition_id
	) v ON v.definition_id = d.id
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDetail(row rowScanner) (models.DefinitionResponse, error) {
	var (
		d          models.DefinitionResponse
		state      models.ModerationState
		total, ups int
		deletedAt  sql.NullTime
	)
	err := row.Scan(
		&d.ID, &d.Term, &d.Definition, &d.UserID, &d.Username, &d.CategoryID, &d.Category,
		&state, &total, &ups,
		&d.CreatedAt, &d.UpdatedAt, &deletedAt,
	)
	if err != nil {
		return d, err
	}
	d.Status = state.String()
	d.Votes = models.NewTally(total, ups)
	if deletedAt.Valid {
		t := deletedAt.Time
		d.DeletedAt = &t
	}
	return d, nil
}

func (r *definitionRepository) queryDetails(ctx context.Context, query string, args ...any) ([]models.DefinitionResponse, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("failed to query definitions", zap.Error(err))
		return nil, fmt.Errorf("failed to query definitions: %w", err)
	}
	defer rows.Close()

	definitions := make([]models.DefinitionResponse, 0)
	for rows.Next() {
		d, err := scanDetail(rows)
		if err != nil {
			r.logger.Error("failed to scan definition", zap.Error(err))
			return nil, fmt.Errorf("failed to scan definition: %w", err)
		}
		definitions = append(definitions, d)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("error iterating rows", zap.Error(err))
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return definitions, nil
}

func (r *definitionRepository) count(ctx context.Context, where string, args ...any) (int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM definitions d WHERE `+where, args...).Scan(&total); err != nil {
		r.logger.Error("failed to count definitions", zap.Error(err))
		return 0, fmt.Errorf("failed to count definitions: %w", err)
	}
	return total, nil
}

// Create inserts a new definition in the REVIEW state
func (r *definitionRepository) Create(ctx context.Context, def *models.Definition) error {
	query := `
		INSERT INTO definitions (user_id, status_definition_id, category_id, term, definition)
		VALUES (?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query, def.UserID, models.StateReview, def.CategoryID, def.Term, def.Body)
	if err != nil {
		r.logger.Error("failed to create definition", zap.Error(err), zap.Int("userId", def.UserID))
		return fmt.Errorf("failed to create definition: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	def.ID = int(id)
	def.State = models.StateReview
	return nil
}

// GetByID retrieves the raw definition row in any state
func (r *definitionRepository) GetByID(ctx context.Context, id int) (*models.Definition, error) {
	query := `
		SELECT id, user_id, category_id, status_definition_id, term, definition, created_at, updated_at, deleted_at
		FROM definitions
		WHERE id = ?
	`

	def := &models.Definition{}
	var deletedAt sql.NullTime
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&def.ID, &def.UserID, &def.CategoryID, &def.State, &def.Term, &def.Body,
		&def.CreatedAt, &def.UpdatedAt, &deletedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrDefinitionNotFound
	}
	if err != nil {
		r.logger.Error("failed to get definition", zap.Error(err), zap.Int("definitionId", id))
		return nil, fmt.Errorf("failed to get definition: %w", err)
	}
	if deletedAt.Valid {
		def.DeletedAt = &deletedAt.Time
	}

	return def, nil
}

// GetDetail retrieves an enriched definition in any state
func (r *definitionRepository) GetDetail(ctx context.Context, id int) (*models.DefinitionResponse, error) {
	d, err := scanDetail(r.db.QueryRowContext(ctx, detailSelect+` WHERE d.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrDefinitionNotFound
	}
	if err != nil {
		r.logger.Error("failed to get definition detail", zap.Error(err), zap.Int("definitionId", id))
		return nil, fmt.Errorf("failed to get definition detail: %w", err)
	}
	return &d, nil
}

// Update replaces the content of an author's definition and sends it back to REVIEW.
// It fails with ErrDefinitionNotFound when the row is gone, owned by someone else or DELETED.
func (r *definitionRepository) Update(ctx context.Context, def *models.Definition) error {
	query := `
		UPDATE definitions
		SET term = ?, definition = ?, category_id = ?, status_definition_id = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND user_id = ? AND status_definition_id <> ?
	`

	result, err := r.db.ExecContext(ctx, query,
		def.Term, def.Body, def.CategoryID, models.StateReview,
		def.ID, def.UserID, models.StateDeleted,
	)
	if err != nil {
		r.logger.Error("failed to update definition", zap.Error(err), zap.Int("definitionId", def.ID))
		return fmt.Errorf("failed to update definition: %w", err)
	}

	if err := requireAffected(result, models.ErrDefinitionNotFound); err != nil {
		return err
	}
	def.State = models.StateReview
	return nil
}

// SoftDelete moves a non-deleted definition to DELETED and stamps deleted_at
func (r *definitionRepository) SoftDelete(ctx context.Context, id int) error {
	query := `
		UPDATE definitions
		SET status_definition_id = ?, deleted_at = CURRENT_TIMESTAMP
		WHERE id = ? AND status_definition_id <> ?
	`

	result, err := r.db.ExecContext(ctx, query, models.StateDeleted, id, models.StateDeleted)
	if err != nil {
		r.logger.Error("failed to delete definition", zap.Error(err), zap.Int("definitionId", id))
		return fmt.Errorf("failed to delete definition: %w", err)
	}

	return requireAffected(result, models.ErrDefinitionNotFound)
}

// Transition moves a definition from one state to another only if it is still in from
func (r *definitionRepository) Transition(ctx context.Context, id int, from, to models.ModerationState) error {
	query := `
		UPDATE definitions
		SET status_definition_id = ?
		WHERE id = ? AND status_definition_id = ?
	`

	result, err := r.db.ExecContext(ctx, query, to, id, from)
	if err != nil {
		r.logger.Error("failed to change definition state", zap.Error(err), zap.Int("definitionId", id))
		return fmt.Errorf("failed to change definition state: %w", err)
	}

	return requireAffected(result, models.ErrDefinitionNotFound)
}

// Purge permanently removes a definition that is already DELETED.
// Its votes are removed by the foreign key cascade.
func (r *definitionRepository) Purge(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM definitions WHERE id = ? AND status_definition_id = ?`, id, models.StateDeleted)
	if err != nil {
		r.logger.Error("failed to purge definition", zap.Error(err), zap.Int("definitionId", id))
		return fmt.Errorf("failed to purge definition: %w", err)
	}

	return requireAffected(result, models.ErrDefinitionNotFound)
}

// ListApproved retrieves a page of APPROVED definitions matching a term substring or a category
func (r *definitionRepository) ListApproved(ctx context.Context, q models.DefinitionQuery) ([]models.DefinitionResponse, int, error) {
	conditions := []string{"d.status_definition_id = ?"}
	args := []any{models.StateApproved}

	if q.Term != "" {
		conditions = append(conditions, "d.term LIKE ?")
		args = append(args, "%"+escapeLike(q.Term)+"%")
	}
	if q.CategoryID > 0 {
		conditions = append(conditions, "d.category_id = ?")
		args = append(args, q.CategoryID)
	}
	where := strings.Join(conditions, " AND ")

	total, err := r.count(ctx, where, args...)
	if err != nil {
		return nil, 0, err
	}

	orderBy := "d.updated_at DESC, d.id DESC"
	if q.SortByTerm {
		orderBy = "d.term ASC, d.id ASC"
	}

	query := detailSelect + ` WHERE ` + where + ` ORDER BY ` + orderBy + ` LIMIT ? OFFSET ?`
	definitions, err := r.queryDetails(ctx, query, append(args, q.Page.PerPage, q.Page.Offset())...)
	if err != nil {
		return nil, 0, err
	}

	return definitions, total, nil
}

// ListByStates retrieves a page of definitions in any of the given states, most recently updated first
func (r *definitionRepository) ListByStates(ctx context.Context, states []models.ModerationState, page models.Page) ([]models.DefinitionResponse, int, error) {
	if len(states) == 0 {
		return make([]models.DefinitionResponse, 0), 0, nil
	}

	args := make([]any, 0, len(states)+2)
	for _, s := range states {
		args = append(args, s)
	}
	where := `d.status_definition_id IN (` + placeholders(len(states)) + `)`

	total, err := r.count(ctx, where, args...)
	if err != nil {
		return nil, 0, err
	}

	query := detailSelect + ` WHERE ` + where + ` ORDER BY d.updated_at DESC, d.id DESC LIMIT ? OFFSET ?`
	definitions, err := r.queryDetails(ctx, query, append(args, page.PerPage, page.Offset())...)
	if err != nil {
		return nil, 0, err
	}

	return definitions, total, nil
}

// ListByAuthor retrieves every non-deleted definition of a user, most recently updated first
func (r *definitionRepository) ListByAuthor(ctx context.Context, userID int) ([]models.DefinitionResponse, error) {
	query := detailSelect + ` WHERE d.user_id = ? AND d.status_definition_id <> ? ORDER BY d.updated_at DESC, d.id DESC`
	return r.queryDetails(ctx, query, userID, models.StateDeleted)
}

// CountByAuthor counts a user's definitions per moderation state
func (r *definitionRepository) CountByAuthor(ctx context.Context, userID int) (map[models.ModerationState]int, error) {
	query := `
		SELECT status_definition_id, COUNT(*)
		FROM definitions
		WHERE user_id = ?
		GROUP BY status_definition_id
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		r.logger.Error("failed to count definitions by state", zap.Error(err), zap.Int("userId", userID))
		return nil, fmt.Errorf("failed to count definitions by state: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.ModerationState]int)
	for rows.Next() {
		var (
			state models.ModerationState
			n     int
		)
		if err := rows.Scan(&state, &n); err != nil {
			r.logger.Error("failed to scan definition count", zap.Error(err))
			return nil, fmt.Errorf("failed to scan definition count: %w", err)
		}
		counts[state] = n
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("error iterating rows", zap.Error(err))
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return counts, nil
}

// SearchTerms retrieves distinct APPROVED terms, alphabetically
func (r *definitionRepository) SearchTerms(ctx context.Context, query string, match models.TermMatch) ([]string, error) {
	sqlQuery := `SELECT DISTINCT term FROM definitions WHERE status_definition_id = ?`
	args := []any{models.StateApproved}

	switch match {
	case models.MatchPrefix:
		sqlQuery += ` AND term LIKE ?`
		args = append(args, escapeLike(query)+"%")
	case models.MatchSubstring:
		sqlQuery += ` AND term LIKE ?`
		args = append(args, "%"+escapeLike(query)+"%")
	}
	sqlQuery += ` ORDER BY term`

	return r.queryTerms(ctx, sqlQuery, args...)
}

// NewestTerms retrieves the most recently updated distinct APPROVED terms
func (r *definitionRepository) NewestTerms(ctx context.Context, limit int) ([]string, error) {
	query := `
		SELECT term
		FROM definitions
		WHERE status_definition_id = ?
		GROUP BY term
		ORDER BY MAX(updated_at) DESC
		LIMIT ?
	`
	return r.queryTerms(ctx, query, models.StateApproved, limit)
}

func (r *definitionRepository) queryTerms(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("failed to query terms", zap.Error(err))
		return nil, fmt.Errorf("failed to query terms: %w", err)
	}
	defer rows.Close()

	terms := make([]string, 0)
	for rows.Next() {
		var term string
		if err := rows.Scan(&term); err != nil {
			r.logger.Error("failed to scan term", zap.Error(err))
			return nil, fmt.Errorf("failed to scan term: %w", err)
		}
		terms = append(terms, term)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("error iterating rows", zap.Error(err))
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return terms, nil
}

// Random retrieves a random sample of APPROVED definitions
func (r *definitionRepository) Random(ctx context.Context, limit int) ([]models.DefinitionResponse, error) {
	query := detailSelect + ` WHERE d.status_definition_id = ? ORDER BY RAND() LIMIT ?`
	return r.queryDetails(ctx, query, models.StateApproved, limit)
}
