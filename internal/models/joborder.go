package models

import "time"

// JobOrderStatus is the frontend job order lifecycle state
type JobOrderStatus string

const (
	JobOrderOpen       JobOrderStatus = "open"
	JobOrderInProgress JobOrderStatus = "in_progress"
	JobOrderCompleted  JobOrderStatus = "completed"
	JobOrderOnHold     JobOrderStatus = "on_hold"
)

// JobOrderStatuses lists every job order status
var JobOrderStatuses = []JobOrderStatus{JobOrderOpen, JobOrderInProgress, JobOrderCompleted, JobOrderOnHold}

// JobOrder is a production order covering a batch of devices
type JobOrder struct {
	ID               string         `json:"id"`
	Title            string         `json:"title"`
	Description      string         `json:"description,omitempty"`
	Status           JobOrderStatus `json:"status"`
	Progress         int            `json:"progress"`
	TotalDevices     int            `json:"totalDevices"`
	CompletedDevices int            `json:"completedDevices"`
	DueDate          time.Time      `json:"dueDate"`
	CreatedAt        time.Time      `json:"createdAt"`
	AssignedTo       []string       `json:"assignedTo"`
}

// JobOrderInput carries the fields of a create or update job order request
type JobOrderInput struct {
	Title        string         `json:"title"`
	Description  string         `json:"description,omitempty"`
	Status       JobOrderStatus `json:"status,omitempty"`
	TotalDevices int            `json:"totalDevices"`
	DueDate      time.Time      `json:"dueDate"`
	AssignedTo   []string       `json:"assignedTo,omitempty"`
}

// ComputeProgress derives a 0-100 percentage from device counts
func ComputeProgress(completed, total int) int {
	if total <= 0 || completed <= 0 {
		return 0
	}
	p := (completed*100 + total/2) / total
	if p > 100 {
		return 100
	}
	return p
}
