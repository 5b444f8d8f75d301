package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xelth-com/mfgtrack/internal/models"
	"github.com/xelth-com/mfgtrack/internal/utils"
)

const testSecret = "test-secret"

func sessionRequest(t *testing.T, user *models.User, secret string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/api/users.php", nil)
	if user != nil {
		token, err := utils.GenerateSessionToken(user, secret, time.Hour)
		require.NoError(t, err)
		req.AddCookie(&http.Cookie{Name: SessionCookie, Value: token})
	}
	return req
}

func TestSessionMiddleware(t *testing.T) {
	var seen *models.User
	h := SessionMiddleware(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = UserFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, sessionRequest(t, nil, testSecret))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"success":false,"message":"Not authenticated"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, sessionRequest(t, &models.User{ID: "u1", Role: models.RoleAdmin}, "other-secret"))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, sessionRequest(t, &models.User{ID: "u1", Username: "amy", Role: models.RoleSupervisor}, testSecret))
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, seen)
	assert.Equal(t, "u1", seen.ID)
	assert.Equal(t, models.RoleSupervisor, seen.Role)
}

func TestRequireRole(t *testing.T) {
	h := SessionMiddleware(testSecret)(RequireRole(models.RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, sessionRequest(t, &models.User{ID: "u2", Role: models.RoleSupervisor}, testSecret))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, sessionRequest(t, &models.User{ID: "u3", Role: models.RoleAdmin}, testSecret))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestCaseInsensitiveMiddleware(t *testing.T) {
	var path string
	h := CaseInsensitiveMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/API/JobOrders.PHP", nil))
	assert.Equal(t, "/api/joborders.php", path)

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ws/Alerts", nil))
	assert.Equal(t, "/ws/Alerts", path)
}
