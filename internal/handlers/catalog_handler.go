package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CatalogHandler handles the public term lookups and reference data
type CatalogHandler struct {
	BaseHandler
	search SearchService
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(search SearchService, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		BaseHandler: BaseHandler{logger: logger},
		search:      search,
	}
}

// RegisterRoutes registers all catalog handler routes
func (h *CatalogHandler) RegisterRoutes(r chi.Router) {
	r.Get("/search", h.SearchTerms)
	r.Route("/terms", func(r chi.Router) {
		r.Get("/new", h.NewlyAddedTerms)
		r.Get("/random", h.RandomDefinitions)
	})
	r.Get("/categories", h.ListCategories)
}

// SearchTerms handles GET /search
// @Summary Search terms
// @Description List distinct approved terms. "*" lists all terms, a single character matches prefixes, longer queries match substrings.
// @Tags search
// @Produce json
// @Param q query string true "Query"
// @Success 200 {object} models.Response{data=[]string}
// @Failure 422 {object} models.Response
// @Router /search [get]
func (h *CatalogHandler) SearchTerms(w http.ResponseWriter, r *http.Request) {
	terms, err := h.search.SearchTerms(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.respondSuccess(w, http.StatusOK, terms)
}

// NewlyAddedTerms handles GET /terms/new
// @Summary Newest terms
// @Description The 10 most recently updated approved terms
// @Tags search
// @Produce json
// @Success 200 {object} models.Response{data=[]string}
// @Router /terms/new [get]
func (h *CatalogHandler) NewlyAddedTerms(w http.ResponseWriter, r *http.Request) {
	terms, err := h.search.NewlyAddedTerms(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.respondSuccess(w, http.StatusOK, terms)
}

// RandomDefinitions handles GET /terms/random
// @Summary Random definitions
// @Description A random sample of 10 approved definitions with their tallies
// @Tags search
// @Produce json
// @Success 200 {object} models.Response{data=[]models.DefinitionResponse}
// @Router /terms/random [get]
func (h *CatalogHandler) RandomDefinitions(w http.ResponseWriter, r *http.Request) {
	definitions, err := h.search.RandomDefinitions(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.respondSuccess(w, http.StatusOK, definitions)
}

// ListCategories handles GET /categories
// @Summary List categories
// @Tags categories
// @Produce json
// @Success 200 {object} models.Response{data=[]models.Category}
// @Router /categories [get]
func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.search.ListCategories(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.respondSuccess(w, http.StatusOK, categories)
}
