package dashboard

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xelth-com/mfgtrack/internal/api"
	"github.com/xelth-com/mfgtrack/internal/mockstore"
	"github.com/xelth-com/mfgtrack/internal/models"
)

// flakyClient fails the calls named in broken and forwards the rest
type flakyClient struct {
	api.Client
	broken map[string]bool
}

var errBackendDown = errors.New("backend down")

func (f *flakyClient) GetPlanningMetrics(ctx context.Context) (*models.PlanningMetrics, error) {
	if f.broken[SectionMetrics] {
		return nil, errBackendDown
	}
	return f.Client.GetPlanningMetrics(ctx)
}

func (f *flakyClient) ListAlerts(ctx context.Context) ([]models.Alert, error) {
	if f.broken[SectionAlerts] {
		return nil, errBackendDown
	}
	return f.Client.ListAlerts(ctx)
}

func newClient(t *testing.T) (*api.MockClient, *mockstore.Store) {
	t.Helper()
	store := mockstore.New(mockstore.WithSeed(3), mockstore.WithProfile(mockstore.Profile{
		JobOrders: 5, Devices: 15, TaskEntries: 30, ProductionLogs: 12, TestLogs: 6, QualityInspections: 4,
	}))
	require.NoError(t, store.EnsureSeeded())
	return api.NewMockClient(store, nil), store
}

func userWithRole(t *testing.T, store *mockstore.Store, role models.Role) *models.User {
	t.Helper()
	for _, u := range store.Users() {
		if u.Role == role {
			return &u
		}
	}
	t.Fatalf("no seeded user with role %s", role)
	return nil
}

func TestLoadRequiresUser(t *testing.T) {
	client, _ := newClient(t)
	_, err := Load(context.Background(), client, nil)
	assert.ErrorIs(t, err, ErrNoUser)
}

func TestLoadAdmin(t *testing.T) {
	client, store := newClient(t)
	snap, err := Load(context.Background(), client, userWithRole(t, store, models.RoleAdmin))
	require.NoError(t, err)

	assert.Empty(t, snap.Errors)
	require.NotNil(t, snap.Metrics)
	assert.Equal(t, 5, snap.Metrics.TotalJobOrders)
	assert.Len(t, snap.Users, len(store.Users()))
	assert.Len(t, snap.JobOrders, 5)
	assert.Empty(t, snap.Tasks)
}

func TestLoadSupervisorSeesPendingApprovals(t *testing.T) {
	client, store := newClient(t)
	snap, err := Load(context.Background(), client, userWithRole(t, store, models.RoleSupervisor))
	require.NoError(t, err)

	assert.Empty(t, snap.Errors)
	for _, task := range snap.Tasks {
		assert.Equal(t, models.TaskSubmitted, task.Status)
	}
	for _, jo := range snap.JobOrders {
		assert.Equal(t, models.JobOrderInProgress, jo.Status)
	}
}

func TestLoadTechnicianSeesOwnWork(t *testing.T) {
	client, store := newClient(t)
	worker := userWithRole(t, store, models.RoleProductionWorker)

	snap, err := Load(context.Background(), client, worker)
	require.NoError(t, err)

	assert.Empty(t, snap.Errors)
	for _, task := range snap.Tasks {
		assert.Equal(t, worker.ID, task.TechnicianID)
	}
	for _, l := range snap.ProductionLogs {
		assert.Equal(t, worker.ID, l.WorkerID)
	}
	assert.NotEmpty(t, snap.Operations)
	assert.Nil(t, snap.TestLogs)
}

func TestLoadKeepsGoingWhenOneSectionFails(t *testing.T) {
	mock, store := newClient(t)
	client := &flakyClient{Client: mock, broken: map[string]bool{SectionMetrics: true}}

	snap, err := Load(context.Background(), client, userWithRole(t, store, models.RoleAdmin))
	require.NoError(t, err)

	require.True(t, snap.Failed(SectionMetrics))
	assert.ErrorIs(t, snap.Errors[SectionMetrics], errBackendDown)
	assert.Nil(t, snap.Metrics)
	assert.False(t, snap.Failed(SectionUsers))
	assert.NotEmpty(t, snap.Users)
	assert.Len(t, snap.JobOrders, 5)
}

func TestLoadFiltersAlertsByRole(t *testing.T) {
	client, store := newClient(t)
	ctx := context.Background()
	_, _ = client.SendAlert(ctx, models.Alert{Title: "All hands"})
	_, _ = client.SendAlert(ctx, models.Alert{Title: "Supervisors only", TargetRole: models.RoleSupervisor})
	_, _ = client.SendAlert(ctx, models.Alert{Title: "Testers only", TargetRole: models.RoleTestPersonnel})

	snap, err := Load(ctx, client, userWithRole(t, store, models.RoleSupervisor))
	require.NoError(t, err)
	titles := []string{}
	for _, a := range snap.Alerts {
		titles = append(titles, a.Title)
	}
	assert.ElementsMatch(t, []string{"All hands", "Supervisors only"}, titles)

	admin, err := Load(ctx, client, userWithRole(t, store, models.RoleAdmin))
	require.NoError(t, err)
	assert.Len(t, admin.Alerts, 3)

	broken := &flakyClient{Client: client, broken: map[string]bool{SectionAlerts: true}}
	snap, err = Load(ctx, broken, userWithRole(t, store, models.RoleSupervisor))
	require.NoError(t, err)
	assert.True(t, snap.Failed(SectionAlerts))
}
