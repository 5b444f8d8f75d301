package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xelth-com/mfgtrack/internal/models"
)

// backendStub answers every request with handler and records the last request
type backendStub struct {
	lastMethod string
	lastQuery  string
	lastBody   map[string]any
}

func newStub(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) (*LiveClient, *backendStub) {
	t.Helper()
	stub := &backendStub{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		stub.lastMethod = r.Method
		stub.lastQuery = r.URL.RawQuery
		stub.lastBody = nil
		if raw, _ := io.ReadAll(r.Body); len(raw) > 0 {
			_ = json.Unmarshal(raw, &stub.lastBody)
		}
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return NewLiveClient(srv.URL, srv.Client(), nil), stub
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestLiveMissingEndpointNamesPath(t *testing.T) {
	c, _ := newStub(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	_, err := c.ListJobOrders(context.Background(), ListOptions{})
	require.Error(t, err)

	var nf *EndpointNotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Contains(t, err.Error(), "/api/joborders.php")
	assert.Equal(t, http.StatusNotFound, StatusCode(err))
}

func TestLiveApplicationErrorKeepsBackendMessage(t *testing.T) {
	c, _ := newStub(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"success": false, "message": "duplicate username"})
	})

	_, err := c.CreateUser(context.Background(), models.UserInput{Username: "bob", Role: models.RoleSupervisor})
	require.Error(t, err)
	assert.Equal(t, "duplicate username", err.Error())

	var appErr *ApplicationError
	assert.True(t, errors.As(err, &appErr))
}

func TestLiveFailureMessages(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"json message", http.StatusBadRequest, `{"message":"title is required"}`, "title is required"},
		{"json error", http.StatusInternalServerError, `{"error":"db down"}`, "db down"},
		{"plain text", http.StatusBadGateway, "upstream timeout", "upstream timeout"},
		{"empty body", http.StatusServiceUnavailable, "", "API request failed: 503 Service Unavailable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newStub(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})
			_, err := c.ListUsers(context.Background(), ListOptions{})
			require.Error(t, err)
			assert.Equal(t, tt.want, err.Error())
			assert.Equal(t, tt.status, StatusCode(err))
		})
	}
}

func TestLiveInvalidJSON(t *testing.T) {
	c, _ := newStub(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "<html>oops</html>")
	})
	_, err := c.GetPlanningMetrics(context.Background())
	require.Error(t, err)

	var rf *RequestFailedError
	require.True(t, errors.As(err, &rf))
	assert.Contains(t, err.Error(), "invalid JSON")
}

func TestLiveListMapsBackendRows(t *testing.T) {
	c, stub := newStub(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"data": []map[string]any{
				{"id": 7, "title": "JO-7", "status": "active", "total_devices": 4, "completed_devices": 1, "assigned_to": "3,4"},
				{"id": "8", "name": "JO-8", "status": "weird"},
			},
			"pagination": map[string]any{"total": 12, "page": 2, "limit": 2},
		})
	})

	page, err := c.ListJobOrders(context.Background(), ListOptions{Page: 2, Limit: 2, Status: "in_progress"})
	require.NoError(t, err)
	assert.Equal(t, http.MethodGet, stub.lastMethod)
	assert.Contains(t, stub.lastQuery, "status=active")
	assert.Contains(t, stub.lastQuery, "page=2")

	require.Len(t, page.Items, 2)
	assert.Equal(t, 12, page.Total)
	assert.Equal(t, 2, page.Page)

	first := page.Items[0]
	assert.Equal(t, "7", first.ID)
	assert.Equal(t, models.JobOrderInProgress, first.Status)
	assert.Equal(t, 25, first.Progress)
	assert.Equal(t, []string{"3", "4"}, first.AssignedTo)

	second := page.Items[1]
	assert.Equal(t, "JO-8", second.Title)
	assert.Equal(t, models.JobOrderOpen, second.Status)
	assert.Equal(t, []string{}, second.AssignedTo)
}

func TestLiveListWithoutDataReturnsEmpty(t *testing.T) {
	c, _ := newStub(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	})
	page, err := c.ListDevices(context.Background(), ListOptions{})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, 0, page.Total)
}

func TestLiveLogin(t *testing.T) {
	c, stub := newStub(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"data":    map[string]any{"user": map[string]any{"id": 1, "username": "Admin", "role": "technician", "full_name": "Site Admin"}},
		})
	})

	u, err := c.Login(context.Background(), "Admin", "secret")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "1", u.ID)
	assert.Equal(t, models.RoleAdmin, u.Role)
	assert.Equal(t, "Site Admin", u.Name)
	assert.Equal(t, http.MethodPost, stub.lastMethod)
}

func TestLiveLoginBadCredentials(t *testing.T) {
	for _, status := range []int{http.StatusOK, http.StatusUnauthorized} {
		c, _ := newStub(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, status, map[string]any{"success": false, "message": "Invalid credentials"})
		})
		u, err := c.Login(context.Background(), "nobody", "wrong")
		assert.NoError(t, err)
		assert.Nil(t, u)
	}
}

func TestLiveLoginWithoutUserIsAnError(t *testing.T) {
	c, _ := newStub(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	})

	u, err := c.Login(context.Background(), "admin", "password")
	assert.Nil(t, u)
	var appErr *ApplicationError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, EndpointLogin, appErr.Endpoint)
}

func TestLiveCreateFallsBackToInput(t *testing.T) {
	c, stub := newStub(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "id": 42})
	})

	jo, err := c.CreateJobOrder(context.Background(), models.JobOrderInput{Title: "Batch A", TotalDevices: 10})
	require.NoError(t, err)
	assert.Equal(t, "42", jo.ID)
	assert.Equal(t, "Batch A", jo.Title)
	assert.Equal(t, models.JobOrderOpen, jo.Status)
	assert.Equal(t, "Batch A", stub.lastBody["title"])
}

func TestLiveReviewSendsBackendStatus(t *testing.T) {
	c, stub := newStub(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	})

	ok, err := c.RejectTask(context.Background(), "5", "bad solder")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, http.MethodPut, stub.lastMethod)
	assert.Equal(t, "id=5", stub.lastQuery)
	assert.Equal(t, "rejected", stub.lastBody["status"])
	assert.Equal(t, "bad solder", stub.lastBody["rejection_reason"])
}

func TestLiveMissingBackendFeatures(t *testing.T) {
	c, _ := newStub(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request to %s", r.URL.Path)
	})
	ctx := context.Background()

	logs, err := c.ListTestLogs(ctx, ListOptions{})
	require.NoError(t, err)
	assert.Empty(t, logs.Items)

	insp, err := c.ListQualityInspections(ctx, ListOptions{})
	require.NoError(t, err)
	assert.Empty(t, insp.Items)

	_, err = c.CreateTestLog(ctx, models.TestLog{})
	assert.ErrorIs(t, err, ErrNotImplemented)
	_, err = c.CreateQualityInspection(ctx, models.QualityInspection{})
	assert.ErrorIs(t, err, ErrNotImplemented)
}
