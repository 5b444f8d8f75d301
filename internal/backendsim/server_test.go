package backendsim

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xelth-com/mfgtrack/internal/api"
	"github.com/xelth-com/mfgtrack/internal/mockstore"
	"github.com/xelth-com/mfgtrack/internal/models"
	"github.com/xelth-com/mfgtrack/internal/websocket"
)

const testSecret = "sim-test-secret"

type harness struct {
	store  *mockstore.Store
	hub    *websocket.Hub
	srv    *httptest.Server
	http   *http.Client
	client *api.LiveClient
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	store := mockstore.New(mockstore.WithSeed(11), mockstore.WithProfile(mockstore.Profile{
		JobOrders: 8, Devices: 30, TaskEntries: 40, ProductionLogs: 20, TestLogs: 5, QualityInspections: 5,
	}))

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	hub := websocket.NewHub(nil)
	go hub.Run(ctx)

	srv := httptest.NewServer(New(store, hub, testSecret, nil).Handler())
	t.Cleanup(srv.Close)

	httpClient := api.NewHTTPClient(5 * time.Second)
	return &harness{
		store:  store,
		hub:    hub,
		srv:    srv,
		http:   httpClient,
		client: api.NewLiveClient(srv.URL, httpClient, nil),
	}
}

func (h *harness) login(t *testing.T, username string) *models.User {
	t.Helper()
	u, err := h.client.Login(context.Background(), username, mockstore.DefaultPassword)
	require.NoError(t, err)
	require.NotNil(t, u, "login %s", username)
	return u
}

func TestLoginRequiredForData(t *testing.T) {
	h := newHarness(t)

	_, err := h.client.ListJobOrders(context.Background(), api.ListOptions{})
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, api.StatusCode(err))
	assert.Equal(t, "Not authenticated", err.Error())

	u, err := h.client.Login(context.Background(), "admin", "wrong")
	assert.NoError(t, err)
	assert.Nil(t, u)
}

func TestLoginMapsBackendRoles(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, models.RoleAdmin, h.login(t, "admin").Role)
	assert.Equal(t, models.RolePlanningEngineer, h.login(t, "planner").Role)
	assert.Equal(t, models.RoleSupervisor, h.login(t, "supervisor").Role)
	// the backend only knows "technician"
	assert.Equal(t, models.RoleProductionWorker, h.login(t, "tester1").Role)
}

func TestLiveClientAgainstSimulator(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.login(t, "admin")

	orders, err := h.client.ListJobOrders(ctx, api.ListOptions{})
	require.NoError(t, err)
	require.Len(t, orders.Items, 8)

	want := map[string]models.JobOrder{}
	for _, jo := range h.store.JobOrders() {
		want[jo.ID] = jo
	}
	for _, got := range orders.Items {
		exp, ok := want[got.ID]
		require.True(t, ok)
		assert.Equal(t, exp.Title, got.Title)
		assert.Equal(t, exp.Status, got.Status)
		assert.Equal(t, exp.Progress, got.Progress)
		assert.Equal(t, exp.TotalDevices, got.TotalDevices)
	}

	paged, err := h.client.ListJobOrders(ctx, api.ListOptions{Page: 2, Limit: 3})
	require.NoError(t, err)
	assert.Len(t, paged.Items, 3)
	assert.Equal(t, 8, paged.Total)
	assert.Equal(t, 2, paged.Page)

	one, err := h.client.GetJobOrder(ctx, orders.Items[0].ID)
	require.NoError(t, err)
	assert.Equal(t, orders.Items[0].Title, one.Title)

	devices, err := h.client.ListDevices(ctx, api.ListOptions{JobOrderID: orders.Items[0].ID})
	require.NoError(t, err)
	stages := map[string]models.DeviceStage{}
	for _, d := range h.store.Devices() {
		stages[d.ID] = d.Stage
	}
	for _, d := range devices.Items {
		assert.Equal(t, orders.Items[0].ID, d.JobOrderID)
		assert.Equal(t, stages[d.ID], d.Stage)
	}

	m, err := h.client.GetPlanningMetrics(ctx)
	require.NoError(t, err)
	assert.Equal(t, h.store.PlanningMetrics(), *m)
}

func TestSimulatorMutations(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.login(t, "admin")

	_, err := h.client.CreateUser(ctx, models.UserInput{Name: "Dup", Username: "supervisor", Role: models.RoleSupervisor})
	require.Error(t, err)
	assert.Equal(t, "duplicate username", err.Error())

	created, err := h.client.CreateUser(ctx, models.UserInput{Name: "New Planner", Username: "planner2", Password: "pw", Role: models.RolePlanningEngineer})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, models.RolePlanningEngineer, created.Role)

	jo, err := h.client.CreateJobOrder(ctx, models.JobOrderInput{
		Title: "Sim batch", TotalDevices: 4, DueDate: time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, models.JobOrderOpen, jo.Status)
	assert.Equal(t, "2026-11-01", jo.DueDate.Format("2006-01-02"))

	updated, err := h.client.UpdateJobOrder(ctx, jo.ID, models.JobOrderInput{Title: "Sim batch", Status: models.JobOrderInProgress, TotalDevices: 4})
	require.NoError(t, err)
	assert.Equal(t, models.JobOrderInProgress, updated.Status)

	task, err := h.client.SubmitTaskCompletion(ctx, models.TaskSubmission{
		JobOrderID: jo.ID, OperationID: "op-1", TechnicianID: created.ID,
		SerialNumbers: []string{"SN-90001", "SN-90002"}, StandardTime: 15, ActualTime: 20,
		StartTime: time.Now().Add(-time.Hour),
	})
	require.NoError(t, err)
	assert.Equal(t, models.TaskSubmitted, task.Status)
	assert.Equal(t, []string{"SN-90001", "SN-90002"}, task.SerialNumbers)

	ok, err := h.client.RejectTask(ctx, task.ID, "torque out of spec")
	require.NoError(t, err)
	assert.True(t, ok)

	rejected, err := h.client.ListTasks(ctx, api.ListOptions{TechnicianID: created.ID, Status: string(models.TaskRejected)})
	require.NoError(t, err)
	require.Len(t, rejected.Items, 1)
	assert.Equal(t, "torque out of spec", rejected.Items[0].RejectionReason)

	op, err := h.client.CreateOperation(ctx, models.OperationInput{Name: "Burn-in test", StandardTime: 30})
	require.NoError(t, err)
	assert.Equal(t, models.StageTesting, op.Stage)

	deleted, err := h.client.DeleteOperation(ctx, op.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	_, err = h.client.DeleteOperation(ctx, op.ID)
	var appErr *api.ApplicationError
	assert.True(t, errors.As(err, &appErr))
}

func TestAdminAlertsRequireAdmin(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.login(t, "supervisor")
	_, err := h.client.ListAlerts(ctx)
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, api.StatusCode(err))

	h.login(t, "admin")
	ok, err := h.client.SendAlert(ctx, models.Alert{Title: "Line 2 down", Severity: models.AlertCritical, TargetRole: models.RoleSupervisor})
	require.NoError(t, err)
	assert.True(t, ok)

	alerts, err := h.client.ListAlerts(ctx)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, models.AlertCritical, alerts[0].Severity)
	assert.Equal(t, models.RoleSupervisor, alerts[0].TargetRole)
}

func TestUnknownEndpoint(t *testing.T) {
	h := newHarness(t)
	h.login(t, "admin")

	sim := api.NewLiveClient(h.srv.URL+"/legacy", h.http, nil)
	_, err := sim.ListUsers(context.Background(), api.ListOptions{})
	var nf *api.EndpointNotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Contains(t, err.Error(), "/api/users.php")
}

func TestCaseInsensitiveScripts(t *testing.T) {
	h := newHarness(t)
	resp, err := h.http.Post(h.srv.URL+"/API/Login.PHP", "application/json",
		strings.NewReader(`{"username":"admin","password":"password"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAlertPushOverWebsocket(t *testing.T) {
	h := newHarness(t)
	h.login(t, "admin")

	wsURL := "ws" + strings.TrimPrefix(h.srv.URL, "http") + "/ws/alerts"
	dialer := gws.Dialer{Jar: h.http.Jar, HandshakeTimeout: 3 * time.Second}
	conn, _, err := dialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return h.hub.Subscribers() == 1 }, 2*time.Second, 10*time.Millisecond)

	_, err = h.client.SendAlert(context.Background(), models.Alert{Title: "Shift change"})
	require.NoError(t, err)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	var msg websocket.AlertMessage
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "ALERT", msg.Type)
	assert.Equal(t, "Shift change", msg.Alert.Title)
}

func TestPageOfClampsLargePages(t *testing.T) {
	tests := []struct {
		query      string
		start, end int
	}{
		{"", 0, 8},
		{"?page=2&limit=3", 3, 6},
		{"?page=3&limit=3", 6, 8},
		{"?page=4611686018427387905&limit=2", 8, 8},
		{"?page=1&limit=9223372036854775807", 0, 8},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/api/joborders.php"+tt.query, nil)
		start, end, _ := pageOf(req, 8)
		assert.Equal(t, tt.start, start, tt.query)
		assert.Equal(t, tt.end, end, tt.query)
	}
}
