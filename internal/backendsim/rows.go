package backendsim

import (
	"time"

	"github.com/xelth-com/mfgtrack/internal/mapping"
	"github.com/xelth-com/mfgtrack/internal/models"
)

// The encoders below write entities the way the PHP backend stores them:
// snake_case columns, backend vocabulary, MySQL timestamps.

func userRow(u models.User) map[string]any {
	return map[string]any{
		"id":       u.ID,
		"name":     u.Name,
		"username": u.Username,
		"email":    u.Email,
		"role":     mapping.MapRoleToBackend(u.Role),
		"avatar":   u.Avatar,
	}
}

func jobOrderRow(jo models.JobOrder) map[string]any {
	return map[string]any{
		"id":                  jo.ID,
		"title":               jo.Title,
		"description":         jo.Description,
		"status":              mapping.JobOrderStatusToBackend(jo.Status),
		"progress_percentage": jo.Progress,
		"total_devices":       jo.TotalDevices,
		"completed_devices":   jo.CompletedDevices,
		"due_date":            date(jo.DueDate),
		"created_at":          timestamp(jo.CreatedAt),
		"assigned_to":         jo.AssignedTo,
	}
}

func taskRow(t models.TaskEntry) map[string]any {
	return map[string]any{
		"id":               t.ID,
		"job_order_id":     t.JobOrderID,
		"operation_id":     t.OperationID,
		"technician_id":    t.TechnicianID,
		"serial_numbers":   t.SerialNumbers,
		"start_time":       timestamp(t.StartTime),
		"end_time":         optTimestamp(t.EndTime),
		"standard_time":    t.StandardTime,
		"actual_time":      t.ActualTime,
		"notes":            t.Notes,
		"status":           mapping.TaskStatusToBackend(t.Status),
		"rejection_reason": t.RejectionReason,
	}
}

func operationRow(op models.Operation) map[string]any {
	return map[string]any{
		"id":            op.ID,
		"name":          op.Name,
		"description":   op.Description,
		"stage":         string(op.Stage),
		"standard_time": op.StandardTime,
	}
}

func deviceRow(d models.Device) map[string]any {
	return map[string]any{
		"id":              d.ID,
		"serial_number":   d.SerialNumber,
		"job_order_id":    d.JobOrderID,
		"current_stage":   string(d.Stage),
		"operation_name":  d.CurrentOperation,
		"created_at":      timestamp(d.CreatedAt),
		"completion_date": optTimestamp(d.CompletedAt),
	}
}

func productionLogRow(l models.ProductionWorkLog) map[string]any {
	return map[string]any{
		"id":               l.ID,
		"device_id":        l.DeviceID,
		"job_order_id":     l.JobOrderID,
		"worker_id":        l.WorkerID,
		"operation_name":   l.Operation,
		"stage":            string(l.Stage),
		"start_time":       timestamp(l.StartTime),
		"end_time":         optTimestamp(l.EndTime),
		"duration_minutes": l.DurationMinutes,
		"status":           string(l.Status),
		"notes":            l.Notes,
	}
}

func alertRow(a models.Alert) map[string]any {
	row := map[string]any{
		"id":         a.ID,
		"title":      a.Title,
		"message":    a.Message,
		"severity":   string(a.Severity),
		"created_at": timestamp(a.CreatedAt),
	}
	if a.TargetRole != "" {
		row["target_role"] = mapping.MapRoleToBackend(a.TargetRole)
	}
	return row
}

func metricsRow(m models.PlanningMetrics) map[string]any {
	return map[string]any{
		"total_job_orders":     m.TotalJobOrders,
		"open_job_orders":      m.OpenJobOrders,
		"active_job_orders":    m.InProgressJobOrders,
		"completed_job_orders": m.CompletedJobOrders,
		"on_hold_job_orders":   m.OnHoldJobOrders,
		"total_devices":        m.TotalDevices,
		"completed_devices":    m.CompletedDevices,
		"pending_approvals":    m.PendingApprovals,
		"average_efficiency":   m.AverageEfficiency,
	}
}

func rows[T any](items []T, enc func(T) map[string]any) []map[string]any {
	out := make([]map[string]any, 0, len(items))
	for _, it := range items {
		out = append(out, enc(it))
	}
	return out
}

func timestamp(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(mapping.BackendTimeLayout)
}

func optTimestamp(t *time.Time) any {
	if t == nil {
		return nil
	}
	return timestamp(*t)
}

func date(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(mapping.BackendDateLayout)
}
