package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/CPSG-31/kbti-backend/internal/middlewares"
	"github.com/CPSG-31/kbti-backend/internal/models"
)

// APIKeyMiddleware validates API key from X-API-Key header
func APIKeyMiddleware(apiKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			providedKey := r.Header.Get("X-API-Key")

			if apiKey == "" || providedKey == "" || subtle.ConstantTimeCompare([]byte(providedKey), []byte(apiKey)) != 1 {
				middlewares.WriteEnvelope(w, http.StatusUnauthorized, models.StatusUnauthorized, "invalid or missing API key")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
