package handlers

import (
	"context"
	"net/http"

	authmw "github.com/CPSG-31/kbti-backend/internal/auth/middleware"
	"github.com/CPSG-31/kbti-backend/internal/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// AuthService is the interface that wraps methods for authentication business logic.
type AuthService interface {
	// Method Register validates the credentials and creates an active user with the USER role.
	//
	// Invalid or already taken credentials yield a *models.ValidationError.
	Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error)
	// Method Login verifies the credentials of an active user and issues a bearer token.
	//
	// Unknown email, wrong password or an inactive account yield models.ErrInvalidCredentials.
	Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error)
	// Method Logout revokes the token the actor authenticated with.
	Logout(ctx context.Context, actor *models.Actor) error
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	BaseHandler
	authService AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		BaseHandler: BaseHandler{logger: logger},
		authService: authService,
	}
}

// RegisterRoutes registers all auth handler routes
func (h *AuthHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.With(authMiddleware).Post("/logout", h.Logout)
	})
}

// Register handles POST /auth/register
// @Summary Register a new user
// @Description Create an active account with the user role
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.RegisterRequest true "Registration data"
// @Success 201 {object} models.Response{data=models.User}
// @Failure 422 {object} models.Response{data=[]models.FieldError}
// @Failure 500 {object} models.Response
// @Router /auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	user, err := h.authService.Register(r.Context(), &req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.respondSuccess(w, http.StatusCreated, user)
}

// Login handles POST /auth/login
// @Summary Log in
// @Description Exchange email and password for a bearer token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Credentials"
// @Success 200 {object} models.Response{data=models.LoginResponse}
// @Failure 401 {object} models.Response
// @Failure 422 {object} models.Response{data=[]models.FieldError}
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.authService.Login(r.Context(), &req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.respondSuccess(w, http.StatusOK, resp)
}

// Logout handles POST /auth/logout
// @Summary Log out
// @Description Revoke the bearer token used for this request
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Response
// @Failure 401 {object} models.Response
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	actor, _ := authmw.GetActor(r.Context())

	if err := h.authService.Logout(r.Context(), actor); err != nil {
		h.handleError(w, r, err)
		return
	}

	h.respondMessage(w, http.StatusOK, "logged out")
}
