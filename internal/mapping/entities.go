package mapping

import "github.com/xelth-com/mfgtrack/internal/models"

// Field-name fallback chains. The first key holding a usable value wins.
var (
	idKeys              = []string{"id"}
	jobOrderIDKeys      = []string{"job_order_id", "jobOrderId", "joborder_id"}
	operationIDKeys     = []string{"operation_id", "operationId", "template_id"}
	technicianIDKeys    = []string{"technician_id", "technicianId", "user_id"}
	deviceIDKeys        = []string{"device_id", "deviceId"}
	createdAtKeys       = []string{"created_at", "createdAt"}
	progressKeys        = []string{"progress_percentage", "progress"}
	totalDevicesKeys    = []string{"total_devices", "totalDevices", "device_count", "quantity"}
	completedDeviceKeys = []string{"completed_devices", "completedDevices", "devices_completed"}
)

// MapUser converts a backend user row
func MapUser(r models.Row) models.User {
	username := r.String("username", "user_name", "login")
	name := r.String("name", "full_name", "fullName")
	if name == "" {
		name = username
	}
	return models.User{
		ID:       r.String("id", "user_id"),
		Name:     name,
		Username: username,
		Email:    r.String("email"),
		Role:     MapRole(r.String("role", "user_role"), username),
		Avatar:   r.String("avatar", "avatar_url"),
	}
}

// MapJobOrder converts a backend job order row. Progress missing from the row
// is derived from the device counts.
func MapJobOrder(r models.Row) models.JobOrder {
	total := r.IntOr(0, totalDevicesKeys...)
	completed := r.IntOr(0, completedDeviceKeys...)
	progress, ok := r.Int(progressKeys...)
	if !ok {
		progress = models.ComputeProgress(completed, total)
	}
	return models.JobOrder{
		ID:               r.String("id", "job_order_id"),
		Title:            r.String("title", "name", "job_order_number", "order_number"),
		Description:      r.String("description", "details"),
		Status:           MapJobOrderStatus(r.String("status")),
		Progress:         clampPercent(progress),
		TotalDevices:     total,
		CompletedDevices: completed,
		DueDate:          r.TimeOrZero("due_date", "dueDate", "deadline"),
		CreatedAt:        r.TimeOrZero(createdAtKeys...),
		AssignedTo:       r.Strings("assigned_to", "assignedTo", "assigned_users"),
	}
}

// MapTaskEntry converts a backend task row
func MapTaskEntry(r models.Row) models.TaskEntry {
	serials := r.Strings("serial_numbers", "serialNumbers")
	if len(serials) == 0 {
		serials = r.Strings("serial_number", "serialNumber")
	}
	return models.TaskEntry{
		ID:              r.String("id", "task_id"),
		JobOrderID:      r.String(jobOrderIDKeys...),
		OperationID:     r.String(operationIDKeys...),
		TechnicianID:    r.String(technicianIDKeys...),
		SerialNumbers:   serials,
		StartTime:       r.TimeOrZero("start_time", "startTime", "started_at"),
		EndTime:         r.OptTime("end_time", "endTime", "completed_at"),
		StandardTime:    r.FloatOr(0, "standard_time", "standardTime", "standard_time_minutes"),
		ActualTime:      r.FloatOr(0, "actual_time", "actualTime", "actual_time_minutes", "duration"),
		Notes:           r.String("notes", "remarks", "comments"),
		Status:          MapTaskStatus(r.String("status", "approval_status")),
		RejectionReason: r.String("rejection_reason", "rejectionReason"),
	}
}

// MapDevice converts a backend device row. A recognised stage column wins;
// otherwise the stage is inferred from the operation name.
func MapDevice(r models.Row) models.Device {
	operation := r.String("operation_name", "current_operation", "currentOperation", "operation")
	completedAt := r.OptTime("completion_date", "completed_at", "completedAt")
	stage, ok := ParseStage(r.String("stage", "current_stage"))
	if !ok || (completedAt != nil && stage != models.StageCompleted) {
		stage = InferDeviceStage(operation, completedAt)
	}
	return models.Device{
		ID:               r.String("id", "device_id"),
		SerialNumber:     r.String("serial_number", "serialNumber", "serial"),
		JobOrderID:       r.String(jobOrderIDKeys...),
		Stage:            stage,
		CurrentOperation: operation,
		CreatedAt:        r.TimeOrZero(createdAtKeys...),
		CompletedAt:      completedAt,
	}
}

// MapProductionWorkLog converts a backend production log row
func MapProductionWorkLog(r models.Row) models.ProductionWorkLog {
	operation := r.String("operation_name", "operation")
	endTime := r.OptTime("end_time", "endTime")
	stage, ok := ParseStage(r.String("stage"))
	if !ok {
		stage = InferDeviceStage(operation, nil)
	}
	return models.ProductionWorkLog{
		ID:              r.String(idKeys...),
		DeviceID:        r.String(deviceIDKeys...),
		JobOrderID:      r.String(jobOrderIDKeys...),
		WorkerID:        r.String("worker_id", "workerId", "user_id", "technician_id"),
		Operation:       operation,
		Stage:           stage,
		StartTime:       r.TimeOrZero("start_time", "startTime"),
		EndTime:         endTime,
		DurationMinutes: r.FloatOr(0, "duration_minutes", "durationMinutes", "duration"),
		Status:          MapWorkLogStatus(r.String("status")),
		Notes:           r.String("notes", "remarks"),
	}
}

// MapTestLog converts a backend test log row
func MapTestLog(r models.Row) models.TestLog {
	return models.TestLog{
		ID:           r.String(idKeys...),
		DeviceID:     r.String(deviceIDKeys...),
		TesterID:     r.String("tester_id", "testerId", "user_id"),
		TestType:     r.String("test_type", "testType", "test_name"),
		Result:       MapTestResult(r.String("result", "status")),
		Measurements: r.StringMap("measurements", "readings"),
		Notes:        r.String("notes", "remarks"),
		TestedAt:     r.TimeOrZero("tested_at", "testedAt", "created_at"),
	}
}

// MapQualityInspection converts a backend inspection row
func MapQualityInspection(r models.Row) models.QualityInspection {
	return models.QualityInspection{
		ID:          r.String(idKeys...),
		DeviceID:    r.String(deviceIDKeys...),
		InspectorID: r.String("inspector_id", "inspectorId", "user_id"),
		Result:      MapInspectionResult(r.String("result", "status")),
		Defects:     r.Strings("defects", "defect_list"),
		Notes:       r.String("notes", "remarks"),
		InspectedAt: r.TimeOrZero("inspected_at", "inspectedAt", "created_at"),
	}
}

// MapOperation converts a backend operation template row
func MapOperation(r models.Row) models.Operation {
	name := r.String("name", "operation_name", "title")
	stage, ok := ParseStage(r.String("stage"))
	if !ok {
		stage = InferDeviceStage(name, nil)
	}
	return models.Operation{
		ID:           r.String("id", "operation_id"),
		Name:         name,
		Description:  r.String("description"),
		Stage:        stage,
		StandardTime: r.FloatOr(0, "standard_time", "standardTime", "standard_time_minutes"),
	}
}

// MapAlert converts a backend alert row
func MapAlert(r models.Row) models.Alert {
	var target models.Role
	if raw := r.String("target_role", "targetRole"); raw != "" {
		target = MapRole(raw, "")
	}
	return models.Alert{
		ID:         r.String(idKeys...),
		Title:      r.String("title", "subject"),
		Message:    r.String("message", "body"),
		Severity:   MapAlertSeverity(r.String("severity", "priority")),
		TargetRole: target,
		CreatedAt:  r.TimeOrZero(createdAtKeys...),
	}
}

// MapPlanningMetrics converts the planning metrics row
func MapPlanningMetrics(r models.Row) models.PlanningMetrics {
	return models.PlanningMetrics{
		TotalJobOrders:      r.IntOr(0, "total_job_orders", "totalJobOrders"),
		OpenJobOrders:       r.IntOr(0, "open_job_orders", "openJobOrders"),
		InProgressJobOrders: r.IntOr(0, "active_job_orders", "in_progress_job_orders", "inProgressJobOrders"),
		CompletedJobOrders:  r.IntOr(0, "completed_job_orders", "completedJobOrders"),
		OnHoldJobOrders:     r.IntOr(0, "on_hold_job_orders", "onHoldJobOrders"),
		TotalDevices:        r.IntOr(0, "total_devices", "totalDevices"),
		CompletedDevices:    r.IntOr(0, "completed_devices", "completedDevices"),
		PendingApprovals:    r.IntOr(0, "pending_approvals", "pending_tasks", "pendingApprovals"),
		AverageEfficiency:   r.FloatOr(0, "average_efficiency", "avg_efficiency", "averageEfficiency"),
	}
}

// MapRows applies fn to every row
func MapRows[T any](rows []models.Row, fn func(models.Row) T) []T {
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		out = append(out, fn(r))
	}
	return out
}

func clampPercent(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
