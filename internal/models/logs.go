package models

import "time"

// WorkLogStatus is the state of a production work log
type WorkLogStatus string

const (
	WorkLogInProgress WorkLogStatus = "in_progress"
	WorkLogPaused     WorkLogStatus = "paused"
	WorkLogCompleted  WorkLogStatus = "completed"
)

// WorkLogStatuses lists every work log status
var WorkLogStatuses = []WorkLogStatus{WorkLogInProgress, WorkLogPaused, WorkLogCompleted}

// ProductionWorkLog records work done on a device at one stage
type ProductionWorkLog struct {
	ID              string        `json:"id"`
	DeviceID        string        `json:"deviceId"`
	JobOrderID      string        `json:"jobOrderId"`
	WorkerID        string        `json:"workerId"`
	Operation       string        `json:"operation"`
	Stage           DeviceStage   `json:"stage"`
	StartTime       time.Time     `json:"startTime"`
	EndTime         *time.Time    `json:"endTime,omitempty"`
	DurationMinutes float64       `json:"durationMinutes"`
	Status          WorkLogStatus `json:"status"`
	Notes           string        `json:"notes,omitempty"`
}

// TestResult is the outcome of a device test
type TestResult string

const (
	TestPending TestResult = "pending"
	TestPass    TestResult = "pass"
	TestFail    TestResult = "fail"
)

// TestResults lists every test result
var TestResults = []TestResult{TestPending, TestPass, TestFail}

// TestLog records one test run against a device
type TestLog struct {
	ID           string            `json:"id"`
	DeviceID     string            `json:"deviceId"`
	TesterID     string            `json:"testerId"`
	TestType     string            `json:"testType"`
	Result       TestResult        `json:"result"`
	Measurements map[string]string `json:"measurements,omitempty"`
	Notes        string            `json:"notes,omitempty"`
	TestedAt     time.Time         `json:"testedAt"`
}

// InspectionResult is the verdict of a quality inspection
type InspectionResult string

const (
	InspectionPending  InspectionResult = "pending"
	InspectionApproved InspectionResult = "approved"
	InspectionRejected InspectionResult = "rejected"
	InspectionRework   InspectionResult = "rework"
)

// InspectionResults lists every inspection result
var InspectionResults = []InspectionResult{InspectionPending, InspectionApproved, InspectionRejected, InspectionRework}

// QualityInspection records a quality check of a device
type QualityInspection struct {
	ID          string           `json:"id"`
	DeviceID    string           `json:"deviceId"`
	InspectorID string           `json:"inspectorId"`
	Result      InspectionResult `json:"result"`
	Defects     []string         `json:"defects"`
	Notes       string           `json:"notes,omitempty"`
	InspectedAt time.Time        `json:"inspectedAt"`
}
