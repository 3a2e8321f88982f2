package middleware

import (
	"net/http"

	"github.com/CPSG-31/kbti-backend/internal/middlewares"
	"github.com/CPSG-31/kbti-backend/internal/models"
)

// RoleMiddleware rejects requests whose actor does not have the required role.
// It must run after AuthMiddleware.
func RoleMiddleware(required models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := GetActor(r.Context())
			if !ok {
				middlewares.WriteEnvelope(w, http.StatusUnauthorized, models.StatusUnauthorized, "authentication required")
				return
			}

			if actor.Role != required {
				middlewares.WriteEnvelope(w, http.StatusForbidden, models.StatusForbidden, "insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
