package handlers

import (
	"context"
	"net/http"

	authmw "github.com/CPSG-31/kbti-backend/internal/auth/middleware"
	"github.com/CPSG-31/kbti-backend/internal/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ModerationService is the interface that wraps methods for moderating definitions.
type ModerationService interface {
	// Method ListForReview retrieves a page of definitions awaiting review.
	ListForReview(ctx context.Context, actor *models.Actor, page models.Page) (*models.PagedList[models.DefinitionResponse], error)
	// Method ListReviewed retrieves a page of approved and rejected definitions.
	ListReviewed(ctx context.Context, actor *models.Actor, page models.Page) (*models.PagedList[models.DefinitionResponse], error)
	// Method ListDeleted retrieves a page of soft-deleted definitions.
	ListDeleted(ctx context.Context, actor *models.Actor, page models.Page) (*models.PagedList[models.DefinitionResponse], error)
	// Method Review approves or rejects a definition in review.
	//
	// A definition that is not in review yields a *models.TransitionError.
	Review(ctx context.Context, actor *models.Actor, id int, req *models.ReviewRequest) (*models.DefinitionResponse, error)
	// Method Purge permanently removes a soft-deleted definition.
	Purge(ctx context.Context, actor *models.Actor, id int) error
}

// UserAdminService is the interface that wraps methods for user and role administration.
type UserAdminService interface {
	// Method ListUsers retrieves a page of active users.
	ListUsers(ctx context.Context, actor *models.Actor, page models.Page) (*models.PagedList[models.UserResponse], error)
	// Method GetUser retrieves an active user.
	GetUser(ctx context.Context, actor *models.Actor, userID int) (*models.UserResponse, error)
	// Method Deactivate disables an active user and revokes their tokens.
	Deactivate(ctx context.Context, actor *models.Actor, userID int) error
	// Method ChangeRole assigns an existing role to an active user.
	ChangeRole(ctx context.Context, actor *models.Actor, userID int, req *models.ChangeRoleRequest) (*models.UserResponse, error)
	// Method ListRoles returns all roles.
	ListRoles(ctx context.Context, actor *models.Actor) ([]models.RoleRecord, error)
}

// AdminHandler handles moderation and user administration requests
type AdminHandler struct {
	BaseHandler
	moderation ModerationService
	users      UserAdminService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(moderation ModerationService, users UserAdminService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		BaseHandler: BaseHandler{logger: logger},
		moderation:  moderation,
		users:       users,
	}
}

// RegisterRoutes registers all admin handler routes.
// The caller is expected to guard them with authentication and the admin role.
func (h *AdminHandler) RegisterRoutes(r chi.Router) {
	r.Route("/admin", func(r chi.Router) {
		r.Route("/definitions", func(r chi.Router) {
			r.Get("/", h.ListReviewed)
			r.Get("/review", h.ListForReview)
			r.Get("/deleted", h.ListDeleted)
			r.Put("/{id}/review", h.Review)
			r.Delete("/{id}", h.Purge)
		})
		r.Route("/users", func(r chi.Router) {
			r.Get("/", h.ListUsers)
			r.Get("/{id}", h.GetUser)
			r.Delete("/{id}", h.DeactivateUser)
			r.Put("/{id}/role", h.ChangeRole)
		})
		r.Get("/roles", h.ListRoles)
	})
}

type pagedDefinitions func(ctx context.Context, actor *models.Actor, page models.Page) (*models.PagedList[models.DefinitionResponse], error)

func (h *AdminHandler) listDefinitions(w http.ResponseWriter, r *http.Request, list pagedDefinitions) {
	actor, _ := authmw.GetActor(r.Context())

	definitions, err := list(r.Context(), actor, pageParams(r))
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	respondPaged(&h.BaseHandler, w, definitions)
}

// ListReviewed handles GET /admin/definitions
// @Summary List reviewed definitions
// @Description Approved and rejected definitions, most recently updated first
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number, default: 1"
// @Param per_page query int false "Page size, default: 10, max: 100"
// @Success 200 {object} models.Response{data=[]models.DefinitionResponse,meta=models.Meta}
// @Failure 403 {object} models.Response
// @Router /admin/definitions [get]
func (h *AdminHandler) ListReviewed(w http.ResponseWriter, r *http.Request) {
	h.listDefinitions(w, r, h.moderation.ListReviewed)
}

// ListForReview handles GET /admin/definitions/review
// @Summary List definitions awaiting review
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number, default: 1"
// @Param per_page query int false "Page size, default: 10, max: 100"
// @Success 200 {object} models.Response{data=[]models.DefinitionResponse,meta=models.Meta}
// @Failure 403 {object} models.Response
// @Router /admin/definitions/review [get]
func (h *AdminHandler) ListForReview(w http.ResponseWriter, r *http.Request) {
	h.listDefinitions(w, r, h.moderation.ListForReview)
}

// ListDeleted handles GET /admin/definitions/deleted
// @Summary List soft-deleted definitions
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number, default: 1"
// @Param per_page query int false "Page size, default: 10, max: 100"
// @Success 200 {object} models.Response{data=[]models.DefinitionResponse,meta=models.Meta}
// @Failure 403 {object} models.Response
// @Router /admin/definitions/deleted [get]
func (h *AdminHandler) ListDeleted(w http.ResponseWriter, r *http.Request) {
	h.listDefinitions(w, r, h.moderation.ListDeleted)
}

// Review handles PUT /admin/definitions/{id}/review
// @Summary Approve or reject a definition
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Definition ID"
// @Param request body models.ReviewRequest true "Decision: status_id 2 (approved) or 3 (rejected)"
// @Success 200 {object} models.Response{data=models.DefinitionResponse}
// @Failure 404 {object} models.Response
// @Failure 422 {object} models.Response
// @Router /admin/definitions/{id}/review [put]
func (h *AdminHandler) Review(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req models.ReviewRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	actor, _ := authmw.GetActor(r.Context())

	definition, err := h.moderation.Review(r.Context(), actor, id, &req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.respondSuccess(w, http.StatusOK, definition)
}

// Purge handles DELETE /admin/definitions/{id}
// @Summary Permanently remove a deleted definition
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "Definition ID"
// @Success 200 {object} models.Response
// @Failure 404 {object} models.Response
// @Router /admin/definitions/{id} [delete]
func (h *AdminHandler) Purge(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	actor, _ := authmw.GetActor(r.Context())

	if err := h.moderation.Purge(r.Context(), actor, id); err != nil {
		h.handleError(w, r, err)
		return
	}

	h.respondMessage(w, http.StatusOK, "definition purged")
}

// ListUsers handles GET /admin/users
// @Summary List active users
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number, default: 1"
// @Param per_page query int false "Page size, default: 10, max: 100"
// @Success 200 {object} models.Response{data=[]models.UserResponse,meta=models.Meta}
// @Failure 403 {object} models.Response
// @Router /admin/users [get]
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	actor, _ := authmw.GetActor(r.Context())

	users, err := h.users.ListUsers(r.Context(), actor, pageParams(r))
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	respondPaged(&h.BaseHandler, w, users)
}

// GetUser handles GET /admin/users/{id}
// @Summary Get an active user
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} models.Response{data=models.UserResponse}
// @Failure 404 {object} models.Response
// @Router /admin/users/{id} [get]
func (h *AdminHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	actor, _ := authmw.GetActor(r.Context())

	user, err := h.users.GetUser(r.Context(), actor, id)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.respondSuccess(w, http.StatusOK, user)
}

// DeactivateUser handles DELETE /admin/users/{id}
// @Summary Deactivate a user
// @Description Mark the user inactive and revoke their tokens
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} models.Response
// @Failure 404 {object} models.Response
// @Router /admin/users/{id} [delete]
func (h *AdminHandler) DeactivateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	actor, _ := authmw.GetActor(r.Context())

	if err := h.users.Deactivate(r.Context(), actor, id); err != nil {
		h.handleError(w, r, err)
		return
	}

	h.respondMessage(w, http.StatusOK, "user deactivated")
}

// ChangeRole handles PUT /admin/users/{id}/role
// @Summary Change the role of a user
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param request body models.ChangeRoleRequest true "New role"
// @Success 200 {object} models.Response{data=models.UserResponse}
// @Failure 404 {object} models.Response
// @Failure 422 {object} models.Response
// @Router /admin/users/{id}/role [put]
func (h *AdminHandler) ChangeRole(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req models.ChangeRoleRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	actor, _ := authmw.GetActor(r.Context())

	user, err := h.users.ChangeRole(r.Context(), actor, id, &req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.respondSuccess(w, http.StatusOK, user)
}

// ListRoles handles GET /admin/roles
// @Summary List roles
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Response{data=[]models.RoleRecord}
// @Router /admin/roles [get]
func (h *AdminHandler) ListRoles(w http.ResponseWriter, r *http.Request) {
	actor, _ := authmw.GetActor(r.Context())

	roles, err := h.users.ListRoles(r.Context(), actor)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.respondSuccess(w, http.StatusOK, roles)
}
