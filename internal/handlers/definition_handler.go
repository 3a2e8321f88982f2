package handlers

import (
	"context"
	"net/http"
	"strconv"

	authmw "github.com/CPSG-31/kbti-backend/internal/auth/middleware"
	"github.com/CPSG-31/kbti-backend/internal/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// DefinitionService is the interface that wraps methods for authoring definitions.
type DefinitionService interface {
	// Method Create submits a new definition for review on behalf of "actor".
	//
	// Invalid input or an unknown category yield a *models.ValidationError.
	Create(ctx context.Context, actor *models.Actor, req *models.DefinitionRequest) (*models.DefinitionResponse, error)
	// Method GetByID retrieves a definition visible to "actor"; "actor" may be nil.
	//
	// Definitions the caller may not see are reported as models.ErrDefinitionNotFound.
	GetByID(ctx context.Context, actor *models.Actor, id int) (*models.DefinitionResponse, error)
	// Method Update edits a definition of its author and sends it back to review.
	Update(ctx context.Context, actor *models.Actor, id int, req *models.DefinitionRequest) (*models.DefinitionResponse, error)
	// Method SoftDelete moves a definition to the deleted state on behalf of its author or an admin.
	SoftDelete(ctx context.Context, actor *models.Actor, id int) error
}

// SearchService is the interface that wraps methods for the public read side.
type SearchService interface {
	// Method Find retrieves a page of approved definitions filtered by term substring and/or category.
	//
	// If neither filter is set, a *models.ValidationError is returned.
	Find(ctx context.Context, q models.DefinitionQuery) (*models.PagedList[models.DefinitionResponse], error)
	// Method FindByTerm retrieves a page of approved definitions whose term contains "term".
	FindByTerm(ctx context.Context, term string, sortByTerm bool, page models.Page) (*models.PagedList[models.DefinitionResponse], error)
	// Method FindByCategory retrieves a page of approved definitions of a category.
	FindByCategory(ctx context.Context, categoryID int, sortByTerm bool, page models.Page) (*models.PagedList[models.DefinitionResponse], error)
	// Method SearchTerms lists distinct approved terms: "*" lists all, one character matches prefixes, longer queries match substrings.
	SearchTerms(ctx context.Context, query string) ([]string, error)
	// Method NewlyAddedTerms lists the most recently updated approved terms.
	NewlyAddedTerms(ctx context.Context) ([]string, error)
	// Method RandomDefinitions returns a random sample of approved definitions.
	RandomDefinitions(ctx context.Context) ([]models.DefinitionResponse, error)
	// Method ListCategories returns all categories.
	ListCategories(ctx context.Context) ([]models.Category, error)
}

// VoteService is the interface that wraps methods for voting.
type VoteService interface {
	// Method CastVote creates, flips or retracts the actor's vote on an approved definition.
	CastVote(ctx context.Context, actor *models.Actor, definitionID int, req *models.VoteRequest) (*models.VoteResult, error)
	// Method Tally retrieves the vote counts of a definition the actor may view. "actor" may be nil.
	Tally(ctx context.Context, actor *models.Actor, definitionID int) (models.Tally, error)
}

// DefinitionHandler handles HTTP requests for definitions and their votes
type DefinitionHandler struct {
	BaseHandler
	definitions DefinitionService
	search      SearchService
	votes       VoteService
}

// NewDefinitionHandler creates a new definition handler
func NewDefinitionHandler(definitions DefinitionService, search SearchService, votes VoteService, logger *zap.Logger) *DefinitionHandler {
	return &DefinitionHandler{
		BaseHandler: BaseHandler{logger: logger},
		definitions: definitions,
		search:      search,
		votes:       votes,
	}
}

// RegisterRoutes registers all definition handler routes
func (h *DefinitionHandler) RegisterRoutes(r chi.Router, authMiddleware, optionalAuthMiddleware func(http.Handler) http.Handler) {
	r.Route("/definitions", func(r chi.Router) {
		r.Get("/", h.List)
		r.With(optionalAuthMiddleware).Get("/{id}/votes", h.Tally)
		r.With(optionalAuthMiddleware).Get("/{id}", h.GetByID)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Post("/", h.Create)
			r.Put("/{id}", h.Update)
			r.Delete("/{id}", h.Delete)
			r.Post("/{id}/votes", h.CastVote)
		})
	})
}

// List handles GET /definitions
// @Summary Find approved definitions
// @Description Find approved definitions by term substring and/or category. At least one filter is required.
// @Tags definitions
// @Produce json
// @Param term query string false "Term substring"
// @Param category_id query int false "Category ID"
// @Param sort query string false "Sort order: term (alphabetical) or empty (most recently updated first)"
// @Param page query int false "Page number, default: 1"
// @Param per_page query int false "Page size, default: 10, max: 100"
// @Success 200 {object} models.Response{data=[]models.DefinitionResponse,meta=models.Meta}
// @Failure 422 {object} models.Response
// @Router /definitions [get]
func (h *DefinitionHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	categoryID, _ := strconv.Atoi(query.Get("category_id"))
	q := models.DefinitionQuery{
		Term:       query.Get("term"),
		CategoryID: categoryID,
		SortByTerm: query.Get("sort") == "term",
		Page:       pageParams(r),
	}

	var (
		list *models.PagedList[models.DefinitionResponse]
		err  error
	)
	switch {
	case q.Term != "" && q.CategoryID <= 0:
		list, err = h.search.FindByTerm(r.Context(), q.Term, q.SortByTerm, q.Page)
	case q.Term == "" && q.CategoryID > 0:
		list, err = h.search.FindByCategory(r.Context(), q.CategoryID, q.SortByTerm, q.Page)
	default:
		list, err = h.search.Find(r.Context(), q)
	}
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	respondPaged(&h.BaseHandler, w, list)
}

// GetByID handles GET /definitions/{id}
// @Summary Get a definition
// @Description Approved definitions are public; authors and admins may also see definitions in review or rejected
// @Tags definitions
// @Produce json
// @Security BearerAuth
// @Param id path int true "Definition ID"
// @Success 200 {object} models.Response{data=models.DefinitionResponse}
// @Failure 404 {object} models.Response
// @Router /definitions/{id} [get]
func (h *DefinitionHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	actor, _ := authmw.GetActor(r.Context())

	definition, err := h.definitions.GetByID(r.Context(), actor, id)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.respondSuccess(w, http.StatusOK, definition)
}

// Create handles POST /definitions
// @Summary Submit a definition
// @Description Submit a new definition; it stays in review until an admin approves it
// @Tags definitions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.DefinitionRequest true "Definition"
// @Success 201 {object} models.Response{data=models.DefinitionResponse}
// @Failure 401 {object} models.Response
// @Failure 422 {object} models.Response{data=[]models.FieldError}
// @Router /definitions [post]
func (h *DefinitionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.DefinitionRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	actor, _ := authmw.GetActor(r.Context())

	definition, err := h.definitions.Create(r.Context(), actor, &req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.respondSuccess(w, http.StatusCreated, definition)
}

// Update handles PUT /definitions/{id}
// @Summary Edit a definition
// @Description Edit one of your definitions; it goes back to review
// @Tags definitions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Definition ID"
// @Param request body models.DefinitionRequest true "Definition"
// @Success 200 {object} models.Response{data=models.DefinitionResponse}
// @Failure 403 {object} models.Response
// @Failure 404 {object} models.Response
// @Failure 422 {object} models.Response{data=[]models.FieldError}
// @Router /definitions/{id} [put]
func (h *DefinitionHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req models.DefinitionRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	actor, _ := authmw.GetActor(r.Context())

	definition, err := h.definitions.Update(r.Context(), actor, id, &req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.respondSuccess(w, http.StatusOK, definition)
}

// Delete handles DELETE /definitions/{id}
// @Summary Delete a definition
// @Description Soft-delete a definition; allowed for its author and admins
// @Tags definitions
// @Produce json
// @Security BearerAuth
// @Param id path int true "Definition ID"
// @Success 200 {object} models.Response
// @Failure 403 {object} models.Response
// @Failure 404 {object} models.Response
// @Router /definitions/{id} [delete]
func (h *DefinitionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	actor, _ := authmw.GetActor(r.Context())

	if err := h.definitions.SoftDelete(r.Context(), actor, id); err != nil {
		h.handleError(w, r, err)
		return
	}

	h.respondMessage(w, http.StatusOK, "definition deleted")
}

// CastVote handles POST /definitions/{id}/votes
// @Summary Vote on a definition
// @Description Voting again in the same direction retracts the vote, the opposite direction flips it
// @Tags votes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Definition ID"
// @Param request body models.VoteRequest true "Vote"
// @Success 200 {object} models.Response{data=models.VoteResult}
// @Failure 404 {object} models.Response
// @Failure 422 {object} models.Response
// @Router /definitions/{id}/votes [post]
func (h *DefinitionHandler) CastVote(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req models.VoteRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	actor, _ := authmw.GetActor(r.Context())

	result, err := h.votes.CastVote(r.Context(), actor, id, &req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.respondSuccess(w, http.StatusOK, result)
}

// Tally handles GET /definitions/{id}/votes
// @Summary Get the vote tally of a definition
// @Description Follows the visibility of GET /definitions/{id}
// @Tags votes
// @Produce json
// @Security BearerAuth
// @Param id path int true "Definition ID"
// @Success 200 {object} models.Response{data=models.Tally}
// @Failure 404 {object} models.Response
// @Router /definitions/{id}/votes [get]
func (h *DefinitionHandler) Tally(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	actor, _ := authmw.GetActor(r.Context())

	tally, err := h.votes.Tally(r.Context(), actor, id)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.respondSuccess(w, http.StatusOK, tally)
}
