package mapping

import (
	"time"

	"github.com/xelth-com/mfgtrack/internal/models"
)

// BackendTimeLayout is the timestamp format the PHP backend stores
const BackendTimeLayout = "2006-01-02 15:04:05"

// BackendDateLayout is used for date-only columns such as due dates
const BackendDateLayout = "2006-01-02"

// UserPayload builds the backend body for a create or update user request
func UserPayload(in models.UserInput) map[string]any {
	p := map[string]any{
		"name":     in.Name,
		"username": in.Username,
		"role":     MapRoleToBackend(in.Role),
	}
	if in.Email != "" {
		p["email"] = in.Email
	}
	if in.Password != "" {
		p["password"] = in.Password
	}
	if in.Avatar != "" {
		p["avatar"] = in.Avatar
	}
	return p
}

// JobOrderPayload builds the backend body for a create or update job order request
func JobOrderPayload(in models.JobOrderInput) map[string]any {
	status := in.Status
	if status == "" {
		status = models.JobOrderOpen
	}
	assigned := in.AssignedTo
	if assigned == nil {
		assigned = []string{}
	}
	p := map[string]any{
		"title":         in.Title,
		"description":   in.Description,
		"status":        JobOrderStatusToBackend(status),
		"total_devices": in.TotalDevices,
		"assigned_to":   assigned,
	}
	if !in.DueDate.IsZero() {
		p["due_date"] = in.DueDate.Format(BackendDateLayout)
	}
	return p
}

// TaskSubmissionPayload builds the backend body for a task completion.
// New completions enter the approval queue as "pending".
func TaskSubmissionPayload(in models.TaskSubmission) map[string]any {
	serials := in.SerialNumbers
	if serials == nil {
		serials = []string{}
	}
	p := map[string]any{
		"job_order_id":   in.JobOrderID,
		"operation_id":   in.OperationID,
		"technician_id":  in.TechnicianID,
		"serial_numbers": serials,
		"start_time":     formatTime(in.StartTime),
		"standard_time":  in.StandardTime,
		"actual_time":    in.ActualTime,
		"notes":          in.Notes,
		"status":         TaskStatusToBackend(models.TaskSubmitted),
	}
	if in.EndTime != nil {
		p["end_time"] = formatTime(*in.EndTime)
	}
	return p
}

// TaskReviewPayload builds the body for approving or rejecting a task
func TaskReviewPayload(status models.TaskStatus, reason string) map[string]any {
	p := map[string]any{"status": TaskStatusToBackend(status)}
	if reason != "" {
		p["rejection_reason"] = reason
	}
	return p
}

// OperationPayload builds the backend body for an operation template
func OperationPayload(in models.OperationInput) map[string]any {
	stage := in.Stage
	if stage == "" {
		stage = InferDeviceStage(in.Name, nil)
	}
	return map[string]any{
		"name":          in.Name,
		"description":   in.Description,
		"stage":         string(stage),
		"standard_time": in.StandardTime,
	}
}

// ProductionLogPayload builds the backend body for a production work log
func ProductionLogPayload(l models.ProductionWorkLog) map[string]any {
	p := map[string]any{
		"device_id":        l.DeviceID,
		"job_order_id":     l.JobOrderID,
		"worker_id":        l.WorkerID,
		"operation_name":   l.Operation,
		"stage":            string(l.Stage),
		"start_time":       formatTime(l.StartTime),
		"duration_minutes": l.DurationMinutes,
		"status":           string(l.Status),
		"notes":            l.Notes,
	}
	if l.EndTime != nil {
		p["end_time"] = formatTime(*l.EndTime)
	}
	return p
}

// AlertPayload builds the backend body for sending an alert
func AlertPayload(a models.Alert) map[string]any {
	p := map[string]any{
		"title":    a.Title,
		"message":  a.Message,
		"severity": string(a.Severity),
	}
	if a.TargetRole != "" {
		p["target_role"] = MapRoleToBackend(a.TargetRole)
	}
	return p
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(BackendTimeLayout)
}
