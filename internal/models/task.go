package models

import "time"

// TaskStatus is the approval state of a task completion
type TaskStatus string

const (
	TaskDraft     TaskStatus = "draft"
	TaskSubmitted TaskStatus = "submitted"
	TaskApproved  TaskStatus = "approved"
	TaskRejected  TaskStatus = "rejected"
)

// TaskStatuses lists every task status
var TaskStatuses = []TaskStatus{TaskDraft, TaskSubmitted, TaskApproved, TaskRejected}

// TaskEntry is a technician's recorded completion of one operation on a job order.
// Times are in minutes.
type TaskEntry struct {
	ID              string     `json:"id"`
	JobOrderID      string     `json:"jobOrderId"`
	OperationID     string     `json:"operationId"`
	TechnicianID    string     `json:"technicianId"`
	SerialNumbers   []string   `json:"serialNumbers"`
	StartTime       time.Time  `json:"startTime"`
	EndTime         *time.Time `json:"endTime,omitempty"`
	StandardTime    float64    `json:"standardTime"`
	ActualTime      float64    `json:"actualTime"`
	Notes           string     `json:"notes,omitempty"`
	Status          TaskStatus `json:"status"`
	RejectionReason string     `json:"rejectionReason,omitempty"`
}

// TaskSubmission is what a technician sends when completing an operation
type TaskSubmission struct {
	JobOrderID    string     `json:"jobOrderId"`
	OperationID   string     `json:"operationId"`
	TechnicianID  string     `json:"technicianId"`
	SerialNumbers []string   `json:"serialNumbers"`
	StartTime     time.Time  `json:"startTime"`
	EndTime       *time.Time `json:"endTime,omitempty"`
	StandardTime  float64    `json:"standardTime"`
	ActualTime    float64    `json:"actualTime"`
	Notes         string     `json:"notes,omitempty"`
}

// Operation is a reusable work step template
type Operation struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Description  string      `json:"description,omitempty"`
	Stage        DeviceStage `json:"stage"`
	StandardTime float64     `json:"standardTime"`
}

// OperationInput carries the fields of a create or update operation request
type OperationInput struct {
	Name         string      `json:"name"`
	Description  string      `json:"description,omitempty"`
	Stage        DeviceStage `json:"stage,omitempty"`
	StandardTime float64     `json:"standardTime"`
}
