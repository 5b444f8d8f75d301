package mapping

import "github.com/xelth-com/mfgtrack/internal/models"

// jobOrderStatuses folds the backend's wider vocabulary into the four
// frontend states. overdue and due_soon are scheduling flags on running orders.
var jobOrderStatuses = map[string]models.JobOrderStatus{
	"active":    models.JobOrderInProgress,
	"completed": models.JobOrderCompleted,
	"overdue":   models.JobOrderInProgress,
	"due_soon":  models.JobOrderInProgress,
	"open":      models.JobOrderOpen,
	"on_hold":   models.JobOrderOnHold,
}

var jobOrderStatusesToBackend = map[models.JobOrderStatus]string{
	models.JobOrderOpen:       "open",
	models.JobOrderInProgress: "active",
	models.JobOrderCompleted:  "completed",
	models.JobOrderOnHold:     "on_hold",
}

var taskStatuses = map[string]models.TaskStatus{
	"pending":   models.TaskSubmitted,
	"approved":  models.TaskApproved,
	"rejected":  models.TaskRejected,
	"draft":     models.TaskDraft,
	"submitted": models.TaskSubmitted,
}

var taskStatusesToBackend = map[models.TaskStatus]string{
	models.TaskDraft:     "draft",
	models.TaskSubmitted: "pending",
	models.TaskApproved:  "approved",
	models.TaskRejected:  "rejected",
}

var workLogStatuses = map[string]models.WorkLogStatus{
	"started":     models.WorkLogInProgress,
	"in_progress": models.WorkLogInProgress,
	"active":      models.WorkLogInProgress,
	"paused":      models.WorkLogPaused,
	"on_hold":     models.WorkLogPaused,
	"completed":   models.WorkLogCompleted,
	"done":        models.WorkLogCompleted,
	"finished":    models.WorkLogCompleted,
}

var testResults = map[string]models.TestResult{
	"pass":    models.TestPass,
	"passed":  models.TestPass,
	"ok":      models.TestPass,
	"fail":    models.TestFail,
	"failed":  models.TestFail,
	"ng":      models.TestFail,
	"pending": models.TestPending,
}

var inspectionResults = map[string]models.InspectionResult{
	"approved": models.InspectionApproved,
	"accepted": models.InspectionApproved,
	"pass":     models.InspectionApproved,
	"rejected": models.InspectionRejected,
	"fail":     models.InspectionRejected,
	"rework":   models.InspectionRework,
	"pending":  models.InspectionPending,
}

var alertSeverities = map[string]models.AlertSeverity{
	"info":     models.AlertInfo,
	"low":      models.AlertInfo,
	"warning":  models.AlertWarning,
	"medium":   models.AlertWarning,
	"critical": models.AlertCritical,
	"high":     models.AlertCritical,
}

// MapJobOrderStatus converts a backend job order status. Unknown values are "open".
func MapJobOrderStatus(status string) models.JobOrderStatus {
	if s, ok := jobOrderStatuses[status]; ok {
		return s
	}
	return models.JobOrderOpen
}

// JobOrderStatusToBackend converts a frontend status for filters and payloads
func JobOrderStatusToBackend(status models.JobOrderStatus) string {
	if s, ok := jobOrderStatusesToBackend[status]; ok {
		return s
	}
	return "open"
}

// MapTaskStatus converts a backend task status. Unknown values are "draft".
func MapTaskStatus(status string) models.TaskStatus {
	if s, ok := taskStatuses[status]; ok {
		return s
	}
	return models.TaskDraft
}

// TaskStatusToBackend converts a frontend task status; submitted is "pending" there
func TaskStatusToBackend(status models.TaskStatus) string {
	if s, ok := taskStatusesToBackend[status]; ok {
		return s
	}
	return "draft"
}

// MapWorkLogStatus converts a backend work log status. Unknown values are in_progress.
func MapWorkLogStatus(status string) models.WorkLogStatus {
	if s, ok := workLogStatuses[lower(status)]; ok {
		return s
	}
	return models.WorkLogInProgress
}

// MapTestResult converts a backend test result. Unknown values are pending.
func MapTestResult(result string) models.TestResult {
	if r, ok := testResults[lower(result)]; ok {
		return r
	}
	return models.TestPending
}

// MapInspectionResult converts a backend inspection result. Unknown values are pending.
func MapInspectionResult(result string) models.InspectionResult {
	if r, ok := inspectionResults[lower(result)]; ok {
		return r
	}
	return models.InspectionPending
}

// MapAlertSeverity converts a backend severity or priority. Unknown values are info.
func MapAlertSeverity(severity string) models.AlertSeverity {
	if s, ok := alertSeverities[lower(severity)]; ok {
		return s
	}
	return models.AlertInfo
}
