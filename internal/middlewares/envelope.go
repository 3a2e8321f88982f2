package middlewares

import (
	"encoding/json"
	"net/http"

	"github.com/CPSG-31/kbti-backend/internal/models"
)

// WriteEnvelope writes a bodyless-data envelope response.
// Middlewares run outside the handlers package, so they share this helper.
func WriteEnvelope(w http.ResponseWriter, code int, status, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(models.Response{
		Code:    code,
		Status:  status,
		Message: message,
	})
}
