package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ExpiredTokenCleaner deletes persisted tokens that can no longer authenticate
type ExpiredTokenCleaner interface {
	// Method DeleteExpiredTokens deletes all tokens that expired at or before "now" and returns how many were deleted.
	DeleteExpiredTokens(ctx context.Context, now time.Time) (int, error)
}

// TokenCleaningHandler handles token cleaning requests
type TokenCleaningHandler struct {
	BaseHandler
	userTokenRepo ExpiredTokenCleaner
	now           func() time.Time
}

// NewTokenCleaningHandler creates a new token cleaning handler
func NewTokenCleaningHandler(userTokenRepo ExpiredTokenCleaner, logger *zap.Logger) *TokenCleaningHandler {
	return &TokenCleaningHandler{
		BaseHandler:   BaseHandler{logger: logger},
		userTokenRepo: userTokenRepo,
		now:           time.Now,
	}
}

// RegisterRoutes registers token cleaning handler routes
func (h *TokenCleaningHandler) RegisterRoutes(r chi.Router) {
	r.Delete("/maintenance/tokens/expired", h.CleanTokens)
}

type cleanTokensResult struct {
	Deleted int `json:"deleted"`
}

// CleanTokens handles DELETE /maintenance/tokens/expired
// @Summary Clean expired tokens
// @Description Removes all user tokens whose expiry has passed
// @Tags maintenance
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} models.Response
// @Failure 401 {object} models.Response
// @Failure 500 {object} models.Response
// @Router /maintenance/tokens/expired [delete]
func (h *TokenCleaningHandler) CleanTokens(w http.ResponseWriter, r *http.Request) {
	deletedCount, err := h.userTokenRepo.DeleteExpiredTokens(r.Context(), h.now())
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	// 0 deleted rows is not an error
	h.logger.Info("token cleaning completed successfully", zap.Int("deletedCount", deletedCount))
	h.respondSuccess(w, http.StatusOK, cleanTokensResult{Deleted: deletedCount})
}
