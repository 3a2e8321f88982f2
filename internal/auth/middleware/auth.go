package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/CPSG-31/kbti-backend/internal/middlewares"
	"github.com/CPSG-31/kbti-backend/internal/models"
)

type contextKey string

const actorKey contextKey = "actor"

// Authenticator resolves a bearer token to the acting user
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.Actor, error)
}

// AuthMiddleware requires a valid bearer token and stores the actor in the request context
func AuthMiddleware(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearerToken(r)
			if token == "" {
				middlewares.WriteEnvelope(w, http.StatusUnauthorized, models.StatusUnauthorized, "authentication required")
				return
			}

			actor, err := auth.Authenticate(r.Context(), token)
			if err != nil {
				respondAuthError(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		})
	}
}

// OptionalAuthMiddleware lets anonymous requests through but still rejects a bad token
func OptionalAuthMiddleware(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			actor, err := auth.Authenticate(r.Context(), token)
			if err != nil {
				respondAuthError(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		})
	}
}

// WithActor returns a copy of ctx carrying actor
func WithActor(ctx context.Context, actor *models.Actor) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

// GetActor retrieves the authenticated actor from context
func GetActor(ctx context.Context) (*models.Actor, bool) {
	actor, ok := ctx.Value(actorKey).(*models.Actor)
	return actor, ok && actor != nil
}

// extractBearerToken reads "Authorization: Bearer <token>"
func extractBearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func respondAuthError(w http.ResponseWriter, err error) {
	message := "invalid credentials"
	switch {
	case errors.Is(err, models.ErrTokenExpired):
		message = "token expired"
	case errors.Is(err, models.ErrUnauthenticated):
	default:
		middlewares.WriteEnvelope(w, http.StatusInternalServerError, models.StatusError, "Internal Server Error")
		return
	}
	middlewares.WriteEnvelope(w, http.StatusUnauthorized, models.StatusUnauthorized, message)
}
