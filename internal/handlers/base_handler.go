package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/CPSG-31/kbti-backend/internal/middlewares"
	"github.com/CPSG-31/kbti-backend/internal/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BaseHandler provides the response envelope and error mapping shared by all handlers
type BaseHandler struct {
	logger *zap.Logger
}

// respondJSON sends a JSON response
func (h *BaseHandler) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode JSON response", zap.Error(err))
	}
}

// respondSuccess sends a Success envelope carrying data
func (h *BaseHandler) respondSuccess(w http.ResponseWriter, code int, data any) {
	h.respondJSON(w, code, models.Response{Code: code, Status: models.StatusSuccess, Data: data})
}

// respondMessage sends a Success envelope carrying only a message
func (h *BaseHandler) respondMessage(w http.ResponseWriter, code int, message string) {
	h.respondJSON(w, code, models.Response{Code: code, Status: models.StatusSuccess, Message: message})
}

// respondPaged sends a Success envelope with the page items in data and pagination in meta
func respondPaged[T any](h *BaseHandler, w http.ResponseWriter, list *models.PagedList[T]) {
	h.respondJSON(w, http.StatusOK, models.Response{
		Code:   http.StatusOK,
		Status: models.StatusSuccess,
		Data:   list.Items,
		Meta:   list.Meta,
	})
}

// respondError sends an error envelope
func (h *BaseHandler) respondError(w http.ResponseWriter, code int, status, message string) {
	h.respondJSON(w, code, models.Response{Code: code, Status: status, Message: message})
}

// handleError maps a service error to its envelope.
// Anything that does not wrap a known sentinel is logged and answered with a generic 500.
func (h *BaseHandler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		verr     *models.ValidationError
		transErr *models.TransitionError
	)

	switch {
	case errors.As(err, &verr):
		h.respondJSON(w, http.StatusUnprocessableEntity, models.Response{
			Code:    http.StatusUnprocessableEntity,
			Status:  models.StatusValidationError,
			Message: "validation failed",
			Data:    verr.Errors,
		})
	case errors.Is(err, models.ErrValidation):
		h.respondError(w, http.StatusUnprocessableEntity, models.StatusValidationError, err.Error())
	case errors.Is(err, models.ErrTokenExpired):
		h.respondError(w, http.StatusUnauthorized, models.StatusUnauthorized, "token expired")
	case errors.Is(err, models.ErrInvalidCredentials):
		h.respondError(w, http.StatusUnauthorized, models.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, models.ErrUnauthenticated):
		h.respondError(w, http.StatusUnauthorized, models.StatusUnauthorized, "authentication required")
	case errors.Is(err, models.ErrForbidden):
		h.respondError(w, http.StatusForbidden, models.StatusForbidden, "you are not allowed to perform this action")
	case errors.As(err, &transErr):
		h.respondError(w, http.StatusNotFound, models.StatusNotFound, transErr.Error())
	case errors.Is(err, models.ErrNotFound):
		h.respondError(w, http.StatusNotFound, models.StatusNotFound, notFoundMessage(err))
	default:
		h.logger.Error("request failed",
			zap.String("request_id", middlewares.GetRequestID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		h.respondError(w, http.StatusInternalServerError, models.StatusError, "Internal Server Error")
	}
}

func notFoundMessage(err error) string {
	for _, sentinel := range []error{
		models.ErrDefinitionNotFound,
		models.ErrUserNotFound,
		models.ErrRoleNotFound,
		models.ErrTokenNotFound,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return "resource not found"
}

// decodeJSON decodes the request body into dst and answers 422 when it is malformed
func (h *BaseHandler) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondError(w, http.StatusRequestEntityTooLarge, models.StatusError, "request body too large")
			return false
		}
		h.respondError(w, http.StatusUnprocessableEntity, models.StatusValidationError, "invalid request body")
		return false
	}
	return true
}

// pathID reads the numeric {id} URL parameter. A malformed id cannot name a resource, so it answers 404.
func (h *BaseHandler) pathID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		h.respondError(w, http.StatusNotFound, models.StatusNotFound, "resource not found")
		return 0, false
	}
	return id, true
}

// pageParams reads ?page and ?per_page, falling back to defaults for missing or malformed values
func pageParams(r *http.Request) models.Page {
	number, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	return models.NewPage(number, perPage)
}

// NotFound answers requests that match no route
func NotFound(w http.ResponseWriter, r *http.Request) {
	middlewares.WriteEnvelope(w, http.StatusNotFound, models.StatusNotFound, "Route not found")
}

// MethodNotAllowed answers requests whose path exists under another method
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	middlewares.WriteEnvelope(w, http.StatusMethodNotAllowed, models.StatusError, "Method not allowed")
}
