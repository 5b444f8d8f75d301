package mockstore

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xelth-com/mfgtrack/internal/mapping"
	"github.com/xelth-com/mfgtrack/internal/models"
)

func seeded(t *testing.T, opts ...Option) *Store {
	t.Helper()
	s := New(append([]Option{WithSeed(7)}, opts...)...)
	require.NoError(t, s.EnsureSeeded())
	return s
}

func TestEnsureSeeded_DefaultCounts(t *testing.T) {
	s := seeded(t)
	c := s.Counts()

	p := DefaultProfile()
	assert.Equal(t, len(seedUsers), c.Users)
	assert.Equal(t, len(seedOperations), c.Operations)
	assert.Equal(t, p.JobOrders, c.JobOrders)
	assert.Equal(t, p.Devices, c.Devices)
	assert.Equal(t, p.TaskEntries, c.TaskEntries)
	assert.Equal(t, p.ProductionLogs, c.ProductionLogs)
	assert.Equal(t, p.TestLogs, c.TestLogs)
	assert.Equal(t, p.QualityInspections, c.QualityInspections)
}

func TestEnsureSeeded_Idempotent(t *testing.T) {
	s := seeded(t)
	first := s.Counts()

	require.NoError(t, s.EnsureSeeded())
	assert.Equal(t, first, s.Counts())
}

func TestEnsureSeeded_ConcurrentCallsDoNotDuplicate(t *testing.T) {
	s := New(WithSeed(3))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, s.EnsureSeeded())
		}()
	}
	wg.Wait()

	assert.Equal(t, DefaultProfile().JobOrders, s.Counts().JobOrders)
	assert.Equal(t, DefaultProfile().TaskEntries, s.Counts().TaskEntries)
}

func TestEnsureSeeded_OnlyFillsEmptyCollections(t *testing.T) {
	s := New(WithSeed(1))
	s.CreateJobOrder(models.JobOrderInput{Title: "Hand made"})

	require.NoError(t, s.EnsureSeeded())

	orders := s.JobOrders()
	require.Len(t, orders, 1)
	assert.Equal(t, "Hand made", orders[0].Title)
	// every device lands on the only job order
	assert.Equal(t, DefaultProfile().Devices, orders[0].TotalDevices)
}

func TestEnsureSeeded_TasksRoundRobinTechnicians(t *testing.T) {
	s := seeded(t)

	var technicians []string
	for _, u := range s.Users() {
		if mapping.MapRoleToBackend(u.Role) == "technician" {
			technicians = append(technicians, u.ID)
		}
	}
	require.NotEmpty(t, technicians)

	tasks := s.Tasks()
	for i, task := range tasks {
		assert.Equal(t, technicians[i%len(technicians)], task.TechnicianID)
	}
}

func TestEnsureSeeded_JobOrderCountsMatchDevices(t *testing.T) {
	s := seeded(t)

	perJob := map[string]int{}
	for _, d := range s.Devices() {
		perJob[d.JobOrderID]++
		if d.Stage == models.StageCompleted {
			assert.NotNil(t, d.CompletedAt, d.SerialNumber)
		}
	}
	for _, jo := range s.JobOrders() {
		assert.Equal(t, perJob[jo.ID], jo.TotalDevices)
		assert.Equal(t, models.ComputeProgress(jo.CompletedDevices, jo.TotalDevices), jo.Progress)
	}
}

func TestAuthenticate(t *testing.T) {
	s := seeded(t)

	u, ok := s.Authenticate("planner", DefaultPassword)
	require.True(t, ok)
	assert.Equal(t, models.RolePlanningEngineer, u.Role)

	_, ok = s.Authenticate("planner", "nope")
	assert.False(t, ok)

	_, ok = s.Authenticate("ghost", DefaultPassword)
	assert.False(t, ok)
}

func TestUserMutations(t *testing.T) {
	s := seeded(t)

	u, err := s.CreateUser(models.UserInput{Name: "New Tech", Username: "newtech", Role: models.RoleTestPersonnel, Password: "s3cret"})
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)

	_, err = s.CreateUser(models.UserInput{Username: "NEWTECH"})
	assert.ErrorIs(t, err, ErrDuplicateUsername)

	_, ok := s.Authenticate("newtech", "s3cret")
	assert.True(t, ok)

	updated, err := s.UpdateUser(u.ID, models.UserInput{Name: "Renamed"})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, models.RoleTestPersonnel, updated.Role)

	_, err = s.UpdateUser("missing", models.UserInput{Name: "x"})
	assert.ErrorIs(t, err, ErrNotFound)

	assert.True(t, s.DeleteUser(u.ID))
	assert.False(t, s.DeleteUser(u.ID))
}

func TestTaskStatus(t *testing.T) {
	s := seeded(t)
	task := s.AddTask(models.TaskSubmission{JobOrderID: "jo", TechnicianID: "tech", StandardTime: 30, ActualTime: 25})
	assert.Equal(t, models.TaskSubmitted, task.Status)

	rejected, err := s.SetTaskStatus(task.ID, models.TaskRejected, "wrong serial")
	require.NoError(t, err)
	assert.Equal(t, "wrong serial", rejected.RejectionReason)

	approved, err := s.SetTaskStatus(task.ID, models.TaskApproved, "")
	require.NoError(t, err)
	assert.Empty(t, approved.RejectionReason)

	_, err = s.SetTaskStatus("missing", models.TaskApproved, "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReadsReturnCopies(t *testing.T) {
	s := seeded(t)
	orders := s.JobOrders()
	orders[0].Title = "mutated"
	orders[0].AssignedTo = append(orders[0].AssignedTo, "intruder")

	fresh, ok := s.JobOrder(orders[0].ID)
	require.True(t, ok)
	assert.NotEqual(t, "mutated", fresh.Title)
	assert.NotContains(t, fresh.AssignedTo, "intruder")

	var completed *models.Device
	devices := s.Devices()
	for i := range devices {
		if devices[i].CompletedAt != nil {
			completed = &devices[i]
			break
		}
	}
	require.NotNil(t, completed, "seed should produce a completed device")
	want := *completed.CompletedAt
	*completed.CompletedAt = want.AddDate(-40, 0, 0)
	for _, d := range s.Devices() {
		if d.ID == completed.ID {
			assert.Equal(t, want, *d.CompletedAt)
		}
	}

	end := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s.AddProductionLog(models.ProductionWorkLog{DeviceID: "dev-x", EndTime: &end})
	logs := s.ProductionLogs()
	*logs[len(logs)-1].EndTime = end.Add(time.Hour)
	logs = s.ProductionLogs()
	assert.Equal(t, end, *logs[len(logs)-1].EndTime)

	s.AddTestLog(models.TestLog{DeviceID: "dev-x", Measurements: map[string]string{"voltage": "230"}})
	tests := s.TestLogs()
	tests[len(tests)-1].Measurements["voltage"] = "0"
	tests = s.TestLogs()
	assert.Equal(t, "230", tests[len(tests)-1].Measurements["voltage"])

	defects := []string{"Loose connector"}
	s.AddQualityInspection(models.QualityInspection{DeviceID: "dev-x", Defects: defects})
	defects[0] = "changed by caller"
	inspections := s.QualityInspections()
	inspections[len(inspections)-1].Defects[0] = "changed by reader"
	inspections = s.QualityInspections()
	assert.Equal(t, []string{"Loose connector"}, inspections[len(inspections)-1].Defects)
}

func TestAlertHook(t *testing.T) {
	s := New()
	var got []models.Alert
	s.OnAlert(func(a models.Alert) { got = append(got, a) })

	a := s.AddAlert(models.Alert{Title: "Line stop", Message: "Press 4 down"})
	require.Len(t, got, 1)
	assert.Equal(t, a.ID, got[0].ID)
	assert.Equal(t, models.AlertInfo, got[0].Severity)
	assert.Len(t, s.Alerts(), 1)
}

func TestPlanningMetrics(t *testing.T) {
	s := seeded(t)
	m := s.PlanningMetrics()

	assert.Equal(t, DefaultProfile().JobOrders, m.TotalJobOrders)
	assert.Equal(t, m.TotalJobOrders, m.OpenJobOrders+m.InProgressJobOrders+m.CompletedJobOrders+m.OnHoldJobOrders)
	assert.Equal(t, DefaultProfile().Devices, m.TotalDevices)
	assert.Greater(t, m.AverageEfficiency, 0.0)
}

func TestLoadProfile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte("job_orders: 3\ndevices: 12\n"), 0o600))

	p, err := LoadProfile(path)
	require.NoError(t, err)
	assert.Equal(t, 3, p.JobOrders)
	assert.Equal(t, 12, p.Devices)
	assert.Equal(t, DefaultProfile().TaskEntries, p.TaskEntries)

	s := seeded(t, WithProfile(p))
	assert.Equal(t, 3, s.Counts().JobOrders)
	assert.Equal(t, 12, s.Counts().Devices)

	require.NoError(t, os.WriteFile(path, []byte("devices: -1\n"), 0o600))
	_, err = LoadProfile(path)
	assert.Error(t, err)

	_, err = LoadProfile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestEnsureSeeded_SameSeedSameIDs(t *testing.T) {
	a := seeded(t, WithSeed(5))
	b := seeded(t, WithSeed(5))

	require.NotEmpty(t, a.JobOrders())
	assert.Equal(t, a.JobOrders()[0].ID, b.JobOrders()[0].ID)
	assert.Equal(t, a.Devices()[0].ID, b.Devices()[0].ID)
}
