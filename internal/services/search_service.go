package services

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/CPSG-31/kbti-backend/internal/models"
	"go.uber.org/zap"
)

const (
	// newTermsLimit is the number of terms returned by NewlyAddedTerms
	newTermsLimit = 10
	// randomDefinitionsLimit is the sample size of RandomDefinitions
	randomDefinitionsLimit = 10
	// allTerms is the query that lists every approved term
	allTerms = "*"
)

// searchService implements the public read side: lookups, term search and categories
type searchService struct {
	repo         DefinitionRepository
	categoryRepo CategoryRepository
	logger       *zap.Logger
}

// NewSearchService creates a new search service
func NewSearchService(repo DefinitionRepository, categoryRepo CategoryRepository, logger *zap.Logger) *searchService {
	return &searchService{
		repo:         repo,
		categoryRepo: categoryRepo,
		logger:       logger,
	}
}

// Find retrieves a page of APPROVED definitions by term substring and/or category.
//
// At least one of "q.Term" and "q.CategoryID" must be set. An empty result is not an error.
func (s *searchService) Find(ctx context.Context, q models.DefinitionQuery) (*models.PagedList[models.DefinitionResponse], error) {
	q.Term = strings.TrimSpace(q.Term)
	if q.Term == "" && q.CategoryID <= 0 {
		return nil, models.NewValidationError("term", "term or category_id is required")
	}

	items, total, err := s.repo.ListApproved(ctx, q)
	if err != nil {
		return nil, err
	}

	return &models.PagedList[models.DefinitionResponse]{Items: items, Meta: models.NewMeta(total, q.Page)}, nil
}

// FindByTerm retrieves APPROVED definitions whose term contains "term"
func (s *searchService) FindByTerm(ctx context.Context, term string, sortByTerm bool, page models.Page) (*models.PagedList[models.DefinitionResponse], error) {
	return s.Find(ctx, models.DefinitionQuery{Term: term, SortByTerm: sortByTerm, Page: page})
}

// FindByCategory retrieves APPROVED definitions of a category
func (s *searchService) FindByCategory(ctx context.Context, categoryID int, sortByTerm bool, page models.Page) (*models.PagedList[models.DefinitionResponse], error) {
	return s.Find(ctx, models.DefinitionQuery{CategoryID: categoryID, SortByTerm: sortByTerm, Page: page})
}

// SearchTerms lists distinct APPROVED terms for autocompletion.
//
// "*" lists every term, a single character matches term prefixes and anything longer matches substrings.
func (s *searchService) SearchTerms(ctx context.Context, query string) ([]string, error) {
	query = strings.TrimSpace(query)

	var match models.TermMatch
	switch {
	case query == "":
		return nil, models.NewValidationError("q", "q is required")
	case query == allTerms:
		match = models.MatchAll
	case utf8.RuneCountInString(query) == 1:
		match = models.MatchPrefix
	default:
		match = models.MatchSubstring
	}

	return s.repo.SearchTerms(ctx, query, match)
}

// NewlyAddedTerms lists the most recently updated APPROVED terms
func (s *searchService) NewlyAddedTerms(ctx context.Context) ([]string, error) {
	return s.repo.NewestTerms(ctx, newTermsLimit)
}

// RandomDefinitions returns a random sample of APPROVED definitions
func (s *searchService) RandomDefinitions(ctx context.Context) ([]models.DefinitionResponse, error) {
	return s.repo.Random(ctx, randomDefinitionsLimit)
}

// ListCategories returns all categories
func (s *searchService) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.categoryRepo.GetCategories(ctx)
}
