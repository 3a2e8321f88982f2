package handlers

import (
	"context"
	"net/http"

	authmw "github.com/CPSG-31/kbti-backend/internal/auth/middleware"
	"github.com/CPSG-31/kbti-backend/internal/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// DashboardService is the interface that wraps the contributor overview.
type DashboardService interface {
	// Method Dashboard summarizes the actor's own definitions. Only the user role may view it.
	Dashboard(ctx context.Context, actor *models.Actor) (*models.Dashboard, error)
}

// DashboardHandler handles the contributor dashboard
type DashboardHandler struct {
	BaseHandler
	service DashboardService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(svc DashboardService, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{
		BaseHandler: BaseHandler{logger: logger},
		service:     svc,
	}
}

// RegisterRoutes registers all dashboard handler routes
func (h *DashboardHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.With(authMiddleware).Get("/dashboard", h.Dashboard)
}

// Dashboard handles GET /dashboard
// @Summary Contributor dashboard
// @Description Counts per moderation state and the caller's own non-deleted definitions
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Response{data=models.Dashboard}
// @Failure 401 {object} models.Response
// @Failure 403 {object} models.Response
// @Router /dashboard [get]
func (h *DashboardHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	actor, _ := authmw.GetActor(r.Context())

	dashboard, err := h.service.Dashboard(r.Context(), actor)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.respondSuccess(w, http.StatusOK, dashboard)
}
