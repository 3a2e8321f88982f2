package services

import (
	"context"
	"time"

	"github.com/CPSG-31/kbti-backend/internal/models"
)

// mockUserRepository is a mock implementation of UserRepository and AdminUserRepository
type mockUserRepository struct {
	user                   *models.User
	userResponse           *models.UserResponse
	users                  []models.UserResponse
	total                  int
	createErr              error
	getErr                 error
	existsByEmailResult    bool
	existsByEmailError     error
	existsByUsernameResult bool
	existsByUsernameError  error
	updateErr              error
	created                *models.User
	updatedRole            models.Role
	deactivated            int
}

func (m *mockUserRepository) Create(ctx context.Context, user *models.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	user.ID = 1
	m.created = user
	return nil
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.user, nil
}

func (m *mockUserRepository) GetByID(ctx context.Context, userID int) (*models.User, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.user, nil
}

func (m *mockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if m.existsByEmailError != nil {
		return false, m.existsByEmailError
	}
	return m.existsByEmailResult, nil
}

func (m *mockUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	if m.existsByUsernameError != nil {
		return false, m.existsByUsernameError
	}
	return m.existsByUsernameResult, nil
}

func (m *mockUserRepository) ListActive(ctx context.Context, page models.Page) ([]models.UserResponse, int, error) {
	if m.getErr != nil {
		return nil, 0, m.getErr
	}
	return m.users, m.total, nil
}

func (m *mockUserRepository) GetActive(ctx context.Context, userID int) (*models.UserResponse, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.userResponse, nil
}

func (m *mockUserRepository) Deactivate(ctx context.Context, userID int) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.deactivated = userID
	return nil
}

func (m *mockUserRepository) UpdateRole(ctx context.Context, userID int, role models.Role) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.updatedRole = role
	return nil
}

// mockUserTokenRepository is a mock implementation of UserTokenRepository
type mockUserTokenRepository struct {
	active         bool
	err            error
	deleteErr      error
	deletedCount   int
	created        *models.UserToken
	deletedTokenID string
	deletedUserID  int
}

func (m *mockUserTokenRepository) Create(ctx context.Context, userToken *models.UserToken) error {
	if m.err != nil {
		return m.err
	}
	m.created = userToken
	return nil
}

func (m *mockUserTokenRepository) IsActive(ctx context.Context, tokenID string, userID int, now time.Time) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	return m.active, nil
}

func (m *mockUserTokenRepository) DeleteByTokenID(ctx context.Context, tokenID string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deletedTokenID = tokenID
	return nil
}

func (m *mockUserTokenRepository) DeleteByUserID(ctx context.Context, userID int) (int, error) {
	if m.deleteErr != nil {
		return 0, m.deleteErr
	}
	m.deletedUserID = userID
	return m.deletedCount, nil
}

func (m *mockUserTokenRepository) DeleteExpiredTokens(ctx context.Context, now time.Time) (int, error) {
	if m.deleteErr != nil {
		return 0, m.deleteErr
	}
	return m.deletedCount, nil
}

// mockDefinitionRepository is a mock implementation of DefinitionRepository
type mockDefinitionRepository struct {
	definition   *models.Definition
	detail       *models.DefinitionResponse
	details      []models.DefinitionResponse
	total        int
	counts       map[models.ModerationState]int
	terms        []string
	err          error
	getErr       error
	writeErr     error
	created      *models.Definition
	updated      *models.Definition
	transitioned []models.ModerationState
	purged       int
	softDeleted  int
	lastQuery    models.DefinitionQuery
	lastStates   []models.ModerationState
	lastMatch    models.TermMatch
	lastLimit    int
}

func (m *mockDefinitionRepository) Create(ctx context.Context, def *models.Definition) error {
	if m.writeErr != nil {
		return m.writeErr
	}
	def.ID = 10
	def.State = models.StateReview
	m.created = def
	return nil
}

func (m *mockDefinitionRepository) GetByID(ctx context.Context, id int) (*models.Definition, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.definition, nil
}

func (m *mockDefinitionRepository) GetDetail(ctx context.Context, id int) (*models.DefinitionResponse, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.detail, nil
}

func (m *mockDefinitionRepository) Update(ctx context.Context, def *models.Definition) error {
	if m.writeErr != nil {
		return m.writeErr
	}
	m.updated = def
	return nil
}

func (m *mockDefinitionRepository) SoftDelete(ctx context.Context, id int) error {
	if m.writeErr != nil {
		return m.writeErr
	}
	m.softDeleted = id
	return nil
}

func (m *mockDefinitionRepository) Transition(ctx context.Context, id int, from, to models.ModerationState) error {
	if m.writeErr != nil {
		return m.writeErr
	}
	m.transitioned = []models.ModerationState{from, to}
	return nil
}

func (m *mockDefinitionRepository) Purge(ctx context.Context, id int) error {
	if m.writeErr != nil {
		return m.writeErr
	}
	m.purged = id
	return nil
}

func (m *mockDefinitionRepository) ListApproved(ctx context.Context, q models.DefinitionQuery) ([]models.DefinitionResponse, int, error) {
	m.lastQuery = q
	if m.err != nil {
		return nil, 0, m.err
	}
	return m.details, m.total, nil
}

func (m *mockDefinitionRepository) ListByStates(ctx context.Context, states []models.ModerationState, page models.Page) ([]models.DefinitionResponse, int, error) {
	m.lastStates = states
	if m.err != nil {
		return nil, 0, m.err
	}
	return m.details, m.total, nil
}

func (m *mockDefinitionRepository) ListByAuthor(ctx context.Context, userID int) ([]models.DefinitionResponse, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.details, nil
}

func (m *mockDefinitionRepository) CountByAuthor(ctx context.Context, userID int) (map[models.ModerationState]int, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.counts, nil
}

func (m *mockDefinitionRepository) SearchTerms(ctx context.Context, query string, match models.TermMatch) ([]string, error) {
	m.lastMatch = match
	if m.err != nil {
		return nil, m.err
	}
	return m.terms, nil
}

func (m *mockDefinitionRepository) NewestTerms(ctx context.Context, limit int) ([]string, error) {
	m.lastLimit = limit
	if m.err != nil {
		return nil, m.err
	}
	return m.terms, nil
}

func (m *mockDefinitionRepository) Random(ctx context.Context, limit int) ([]models.DefinitionResponse, error) {
	m.lastLimit = limit
	if m.err != nil {
		return nil, m.err
	}
	return m.details, nil
}

// mockCatalogRepository is a mock implementation of CategoryRepository and RoleRepository
type mockCatalogRepository struct {
	categories []models.Category
	roles      []models.RoleRecord
	exists     bool
	err        error
}

func (m *mockCatalogRepository) GetCategories(ctx context.Context) ([]models.Category, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.categories, nil
}

func (m *mockCatalogRepository) CategoryExists(ctx context.Context, categoryID int) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	return m.exists, nil
}

func (m *mockCatalogRepository) GetRoles(ctx context.Context) ([]models.RoleRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.roles, nil
}

func (m *mockCatalogRepository) RoleExists(ctx context.Context, roleID int) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	return m.exists, nil
}

// mockVoteRepository is a mock implementation of VoteRepository.
// Each Cast call consumes the next entry of errs; a nil entry returns outcome.
type mockVoteRepository struct {
	outcome *models.CastOutcome
	errs    []error
	calls   int
	tally   *models.DefinitionTally
	err     error
}

func (m *mockVoteRepository) Cast(ctx context.Context, userID, definitionID int, isUpvote bool) (*models.CastOutcome, error) {
	m.calls++
	if len(m.errs) >= m.calls && m.errs[m.calls-1] != nil {
		return nil, m.errs[m.calls-1]
	}
	return m.outcome, nil
}

func (m *mockVoteRepository) Tally(ctx context.Context, definitionID int) (*models.DefinitionTally, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.tally, nil
}
