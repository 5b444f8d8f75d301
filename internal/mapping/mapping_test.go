package mapping

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xelth-com/mfgtrack/internal/models"
)

func row(t *testing.T, raw string) models.Row {
	t.Helper()
	var r models.Row
	require.NoError(t, json.Unmarshal([]byte(raw), &r))
	return r
}

func TestMapRole_KnownTable(t *testing.T) {
	for backend, want := range backendRoles {
		assert.Equal(t, want, MapRole(backend, "someone"), backend)
		assert.Equal(t, want, MapRole(" "+strings.ToUpper(backend)+" ", "someone"), backend)
	}
}

func TestMapRole_UnknownDefaultsToProductionWorker(t *testing.T) {
	for _, raw := range []string{"", "janitor", "root", "SUPERVISOR_X"} {
		assert.Equal(t, models.RoleProductionWorker, MapRole(raw, "bob"), raw)
	}
}

func TestMapRole_AdminUsernameOverride(t *testing.T) {
	for _, username := range []string{"admin", "Admin", "ADMIN", " admin "} {
		for _, raw := range []string{"technician", "supervisor", "", "unknown"} {
			assert.Equal(t, models.RoleAdmin, MapRole(raw, username), "%s/%s", username, raw)
		}
	}
}

func TestMapRoleToBackend(t *testing.T) {
	for role, want := range frontendRoles {
		assert.Equal(t, want, MapRoleToBackend(role), role)
	}
	assert.Equal(t, "technician", MapRoleToBackend(models.Role("ghost")))

	// lossy: tester and inspector cannot be told apart after a round trip
	assert.Equal(t, MapRoleToBackend(models.RoleTestPersonnel), MapRoleToBackend(models.RoleQualityInspector))
	assert.Equal(t, models.RoleProductionWorker, MapRole(MapRoleToBackend(models.RoleQualityInspector), "qa"))
}

func TestMapJobOrderStatus(t *testing.T) {
	cases := map[string]models.JobOrderStatus{
		"active":    models.JobOrderInProgress,
		"completed": models.JobOrderCompleted,
		"overdue":   models.JobOrderInProgress,
		"due_soon":  models.JobOrderInProgress,
		"open":      models.JobOrderOpen,
		"on_hold":   models.JobOrderOnHold,
	}
	for in, want := range cases {
		assert.Equal(t, want, MapJobOrderStatus(in), in)
	}
	for _, in := range []string{"", "cancelled", "in_progress", "ACTIVE"} {
		assert.Equal(t, models.JobOrderOpen, MapJobOrderStatus(in), in)
	}
}

func TestMapTaskStatus(t *testing.T) {
	assert.Equal(t, models.TaskSubmitted, MapTaskStatus("pending"))
	assert.Equal(t, models.TaskSubmitted, MapTaskStatus("submitted"))
	assert.Equal(t, models.TaskApproved, MapTaskStatus("approved"))
	assert.Equal(t, models.TaskRejected, MapTaskStatus("rejected"))
	assert.Equal(t, models.TaskDraft, MapTaskStatus("draft"))
	assert.Equal(t, models.TaskDraft, MapTaskStatus("weird"))

	for _, s := range models.TaskStatuses {
		assert.Equal(t, s, MapTaskStatus(TaskStatusToBackend(s)), s)
	}
	for _, s := range models.JobOrderStatuses {
		assert.Equal(t, s, MapJobOrderStatus(JobOrderStatusToBackend(s)), s)
	}
}

func TestInferDeviceStage(t *testing.T) {
	done := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	assert.Equal(t, models.StageSubAssembly, InferDeviceStage("Final Assembly", nil))
	assert.Equal(t, models.StageCompleted, InferDeviceStage("Final Assembly", &done))

	cases := map[string]models.DeviceStage{
		"PCB Assemblage":      models.StageSubAssembly,
		"Burn-in Test":        models.StageTesting,
		"Final Touch":         models.StageFinalTouch,
		"Cleaning":            models.StageFinalTouch,
		"Packing":             models.StageFinalTouch,
		"Packaging":           models.StagePacking,
		"Cable routing":       models.StageInstallation,
		"":                    models.StageInstallation,
		"assembly test bench": models.StageSubAssembly,
	}
	for name, want := range cases {
		assert.Equal(t, want, InferDeviceStage(name, nil), name)
	}
}

func TestMapDevice(t *testing.T) {
	d := MapDevice(row(t, `{"id": 9, "serial_number": "SN-0009", "job_order_id": 3, "operation_name": "Final Assembly", "completion_date": null}`))
	assert.Equal(t, "9", d.ID)
	assert.Equal(t, "3", d.JobOrderID)
	assert.Equal(t, models.StageSubAssembly, d.Stage)
	assert.Nil(t, d.CompletedAt)

	d = MapDevice(row(t, `{"id": 9, "operation_name": "Final Assembly", "completion_date": "2024-05-01 10:00:00"}`))
	assert.Equal(t, models.StageCompleted, d.Stage)
	require.NotNil(t, d.CompletedAt)

	d = MapDevice(row(t, `{"id": 1, "stage": "Final Touch", "operation_name": "Installation"}`))
	assert.Equal(t, models.StageFinalTouch, d.Stage)
}

func TestMapJobOrder_FieldFallbacks(t *testing.T) {
	jo := MapJobOrder(row(t, `{"id": "7", "name": "JO-7", "status": "overdue", "progress": 35, "totalDevices": "20", "completed_devices": 7, "assigned_to": "[1,2]"}`))
	assert.Equal(t, "JO-7", jo.Title)
	assert.Equal(t, models.JobOrderInProgress, jo.Status)
	assert.Equal(t, 35, jo.Progress)
	assert.Equal(t, 20, jo.TotalDevices)
	assert.Equal(t, 7, jo.CompletedDevices)
	assert.Equal(t, []string{"1", "2"}, jo.AssignedTo)

	// progress_percentage outranks progress
	jo = MapJobOrder(row(t, `{"progress_percentage": 80, "progress": 10}`))
	assert.Equal(t, 80, jo.Progress)

	// derived from device counts
	jo = MapJobOrder(row(t, `{"total_devices": 8, "completed_devices": 2}`))
	assert.Equal(t, 25, jo.Progress)

	// nothing present: safe defaults
	jo = MapJobOrder(models.Row{})
	assert.Equal(t, 0, jo.Progress)
	assert.Equal(t, models.JobOrderOpen, jo.Status)
	assert.Equal(t, []string{}, jo.AssignedTo)
	assert.Equal(t, "", jo.Title)
}

func TestMapTaskEntry(t *testing.T) {
	te := MapTaskEntry(row(t, `{
		"id": 101, "job_order_id": 4, "operation_id": 2, "user_id": 17,
		"serial_number": "SN-1", "start_time": "2024-02-01 08:00:00",
		"end_time": "2024-02-01 09:30:00", "standard_time": "60", "actual_time": 90,
		"status": "pending", "remarks": "ok"}`))

	assert.Equal(t, "101", te.ID)
	assert.Equal(t, "4", te.JobOrderID)
	assert.Equal(t, "17", te.TechnicianID)
	assert.Equal(t, []string{"SN-1"}, te.SerialNumbers)
	assert.Equal(t, 60.0, te.StandardTime)
	assert.Equal(t, 90.0, te.ActualTime)
	assert.Equal(t, models.TaskSubmitted, te.Status)
	assert.Equal(t, "ok", te.Notes)
	require.NotNil(t, te.EndTime)
	assert.Equal(t, 9, te.EndTime.Hour())
}

func TestMapUser(t *testing.T) {
	u := MapUser(row(t, `{"id": 1, "username": "admin", "role": "technician"}`))
	assert.Equal(t, models.RoleAdmin, u.Role)
	assert.Equal(t, "admin", u.Name)

	u = MapUser(row(t, `{"id": 2, "username": "sam", "full_name": "Sam K", "role": "Engineer"}`))
	assert.Equal(t, models.RolePlanningEngineer, u.Role)
	assert.Equal(t, "Sam K", u.Name)
}

func TestPayloads_UseBackendVocabulary(t *testing.T) {
	p := UserPayload(models.UserInput{Username: "qa", Role: models.RoleQualityInspector})
	assert.Equal(t, "technician", p["role"])
	_, hasPassword := p["password"]
	assert.False(t, hasPassword)

	jp := JobOrderPayload(models.JobOrderInput{Title: "X", Status: models.JobOrderInProgress, DueDate: time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)})
	assert.Equal(t, "active", jp["status"])
	assert.Equal(t, "2024-07-01", jp["due_date"])

	tp := TaskSubmissionPayload(models.TaskSubmission{JobOrderID: "1"})
	assert.Equal(t, "pending", tp["status"])

	rp := TaskReviewPayload(models.TaskRejected, "scratched housing")
	assert.Equal(t, "rejected", rp["status"])
	assert.Equal(t, "scratched housing", rp["rejection_reason"])

	op := OperationPayload(models.OperationInput{Name: "Leak Test"})
	assert.Equal(t, "testing", op["stage"])
}
