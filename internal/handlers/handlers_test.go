package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	authmw "github.com/CPSG-31/kbti-backend/internal/auth/middleware"
	"github.com/CPSG-31/kbti-backend/internal/models"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var (
	userActor  = &models.Actor{UserID: 4, Role: models.RoleUser, TokenID: "tok-user"}
	adminActor = &models.Actor{UserID: 1, Role: models.RoleAdmin, TokenID: "tok-admin"}
)

func passthrough(next http.Handler) http.Handler {
	return next
}

// newRequest builds a request with an optional JSON body and an optional actor in the context
func newRequest(t *testing.T, method, target string, body any, actor *models.Actor) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	if actor != nil {
		req = req.WithContext(authmw.WithActor(req.Context(), actor))
	}
	return req
}

// envelope is the decoded form of models.Response with raw data for typed decoding
type envelope struct {
	Code    int             `json:"code"`
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Meta    *models.Meta    `json:"meta"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.Equal(t, w.Code, env.Code)
	return env
}

func decodeData[T any](t *testing.T, env envelope) T {
	t.Helper()

	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}
