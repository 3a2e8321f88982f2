package handlers

import (
	"context"
	"time"

	"github.com/CPSG-31/kbti-backend/internal/models"
)

// mockAuthService is a mock implementation of AuthService
type mockAuthService struct {
	user          *models.User
	loginResponse *models.LoginResponse
	err           error
	loggedOut     *models.Actor
}

func (m *mockAuthService) Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.user, nil
}

func (m *mockAuthService) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.loginResponse, nil
}

func (m *mockAuthService) Logout(ctx context.Context, actor *models.Actor) error {
	m.loggedOut = actor
	return m.err
}

// mockDefinitionService is a mock implementation of DefinitionService
type mockDefinitionService struct {
	definition *models.DefinitionResponse
	err        error
	lastActor  *models.Actor
	lastID     int
	lastReq    *models.DefinitionRequest
	deleted    bool
}

func (m *mockDefinitionService) Create(ctx context.Context, actor *models.Actor, req *models.DefinitionRequest) (*models.DefinitionResponse, error) {
	m.lastActor, m.lastReq = actor, req
	if m.err != nil {
		return nil, m.err
	}
	return m.definition, nil
}

func (m *mockDefinitionService) GetByID(ctx context.Context, actor *models.Actor, id int) (*models.DefinitionResponse, error) {
	m.lastActor, m.lastID = actor, id
	if m.err != nil {
		return nil, m.err
	}
	return m.definition, nil
}

func (m *mockDefinitionService) Update(ctx context.Context, actor *models.Actor, id int, req *models.DefinitionRequest) (*models.DefinitionResponse, error) {
	m.lastActor, m.lastID, m.lastReq = actor, id, req
	if m.err != nil {
		return nil, m.err
	}
	return m.definition, nil
}

func (m *mockDefinitionService) SoftDelete(ctx context.Context, actor *models.Actor, id int) error {
	m.lastActor, m.lastID = actor, id
	if m.err != nil {
		return m.err
	}
	m.deleted = true
	return nil
}

// mockSearchService is a mock implementation of SearchService
type mockSearchService struct {
	list        *models.PagedList[models.DefinitionResponse]
	terms       []string
	definitions []models.DefinitionResponse
	categories  []models.Category
	err         error
	lastQuery   models.DefinitionQuery
	lastCall    string
	lastTerm    string
}

func (m *mockSearchService) Find(ctx context.Context, q models.DefinitionQuery) (*models.PagedList[models.DefinitionResponse], error) {
	m.lastCall = "Find"
	m.lastQuery = q
	if m.err != nil {
		return nil, m.err
	}
	return m.list, nil
}

func (m *mockSearchService) FindByTerm(ctx context.Context, term string, sortByTerm bool, page models.Page) (*models.PagedList[models.DefinitionResponse], error) {
	m.lastCall = "FindByTerm"
	m.lastQuery = models.DefinitionQuery{Term: term, SortByTerm: sortByTerm, Page: page}
	if m.err != nil {
		return nil, m.err
	}
	return m.list, nil
}

func (m *mockSearchService) FindByCategory(ctx context.Context, categoryID int, sortByTerm bool, page models.Page) (*models.PagedList[models.DefinitionResponse], error) {
	m.lastCall = "FindByCategory"
	m.lastQuery = models.DefinitionQuery{CategoryID: categoryID, SortByTerm: sortByTerm, Page: page}
	if m.err != nil {
		return nil, m.err
	}
	return m.list, nil
}

func (m *mockSearchService) SearchTerms(ctx context.Context, query string) ([]string, error) {
	m.lastTerm = query
	if m.err != nil {
		return nil, m.err
	}
	return m.terms, nil
}

func (m *mockSearchService) NewlyAddedTerms(ctx context.Context) ([]string, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.terms, nil
}

func (m *mockSearchService) RandomDefinitions(ctx context.Context) ([]models.DefinitionResponse, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.definitions, nil
}

func (m *mockSearchService) ListCategories(ctx context.Context) ([]models.Category, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.categories, nil
}

// mockVoteService is a mock implementation of VoteService
type mockVoteService struct {
	result  *models.VoteResult
	tally     models.Tally
	err       error
	lastReq   *models.VoteRequest
	lastActor *models.Actor
}

func (m *mockVoteService) CastVote(ctx context.Context, actor *models.Actor, definitionID int, req *models.VoteRequest) (*models.VoteResult, error) {
	m.lastReq = req
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

func (m *mockVoteService) Tally(ctx context.Context, actor *models.Actor, definitionID int) (models.Tally, error) {
	m.lastActor = actor
	if m.err != nil {
		return models.Tally{}, m.err
	}
	return m.tally, nil
}

// mockModerationService is a mock implementation of ModerationService
type mockModerationService struct {
	list       *models.PagedList[models.DefinitionResponse]
	definition *models.DefinitionResponse
	err        error
	lastList   string
	lastPage   models.Page
	lastReview *models.ReviewRequest
	purged     int
}

func (m *mockModerationService) listed(name string, page models.Page) (*models.PagedList[models.DefinitionResponse], error) {
	m.lastList, m.lastPage = name, page
	if m.err != nil {
		return nil, m.err
	}
	return m.list, nil
}

func (m *mockModerationService) ListForReview(ctx context.Context, actor *models.Actor, page models.Page) (*models.PagedList[models.DefinitionResponse], error) {
	return m.listed("review", page)
}

func (m *mockModerationService) ListReviewed(ctx context.Context, actor *models.Actor, page models.Page) (*models.PagedList[models.DefinitionResponse], error) {
	return m.listed("reviewed", page)
}

func (m *mockModerationService) ListDeleted(ctx context.Context, actor *models.Actor, page models.Page) (*models.PagedList[models.DefinitionResponse], error) {
	return m.listed("deleted", page)
}

func (m *mockModerationService) Review(ctx context.Context, actor *models.Actor, id int, req *models.ReviewRequest) (*models.DefinitionResponse, error) {
	m.lastReview = req
	if m.err != nil {
		return nil, m.err
	}
	return m.definition, nil
}

func (m *mockModerationService) Purge(ctx context.Context, actor *models.Actor, id int) error {
	if m.err != nil {
		return m.err
	}
	m.purged = id
	return nil
}

// mockUserAdminService is a mock implementation of UserAdminService
type mockUserAdminService struct {
	list        *models.PagedList[models.UserResponse]
	user        *models.UserResponse
	roles       []models.RoleRecord
	err         error
	deactivated int
	lastRole    *models.ChangeRoleRequest
}

func (m *mockUserAdminService) ListUsers(ctx context.Context, actor *models.Actor, page models.Page) (*models.PagedList[models.UserResponse], error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.list, nil
}

func (m *mockUserAdminService) GetUser(ctx context.Context, actor *models.Actor, userID int) (*models.UserResponse, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.user, nil
}

func (m *mockUserAdminService) Deactivate(ctx context.Context, actor *models.Actor, userID int) error {
	if m.err != nil {
		return m.err
	}
	m.deactivated = userID
	return nil
}

func (m *mockUserAdminService) ChangeRole(ctx context.Context, actor *models.Actor, userID int, req *models.ChangeRoleRequest) (*models.UserResponse, error) {
	m.lastRole = req
	if m.err != nil {
		return nil, m.err
	}
	return m.user, nil
}

func (m *mockUserAdminService) ListRoles(ctx context.Context, actor *models.Actor) ([]models.RoleRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.roles, nil
}

// mockDashboardService is a mock implementation of DashboardService
type mockDashboardService struct {
	dashboard *models.Dashboard
	err       error
}

func (m *mockDashboardService) Dashboard(ctx context.Context, actor *models.Actor) (*models.Dashboard, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.dashboard, nil
}

// mockTokenCleaner is a mock implementation of ExpiredTokenCleaner
type mockTokenCleaner struct {
	deleted int
	err     error
	lastNow time.Time
}

func (m *mockTokenCleaner) DeleteExpiredTokens(ctx context.Context, now time.Time) (int, error) {
	m.lastNow = now
	return m.deleted, m.err
}

// mockPinger is a mock implementation of Pinger
type mockPinger struct {
	err error
}

func (m *mockPinger) PingContext(ctx context.Context) error {
	return m.err
}
