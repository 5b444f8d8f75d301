package models

import "time"

// DeviceStage is where a device currently sits on the production line
type DeviceStage string

const (
	StageInstallation DeviceStage = "installation"
	StageSubAssembly  DeviceStage = "sub_assembly"
	StageTesting      DeviceStage = "testing"
	StageFinalTouch   DeviceStage = "final_touch"
	StagePacking      DeviceStage = "packing"
	StageCompleted    DeviceStage = "completed"
)

// DeviceStages lists every stage in line order
var DeviceStages = []DeviceStage{
	StageInstallation,
	StageSubAssembly,
	StageTesting,
	StageFinalTouch,
	StagePacking,
	StageCompleted,
}

// Valid reports whether s is a known stage
func (s DeviceStage) Valid() bool {
	for _, known := range DeviceStages {
		if s == known {
			return true
		}
	}
	return false
}

// Device is a single serialized unit built under a job order
type Device struct {
	ID               string      `json:"id"`
	SerialNumber     string      `json:"serialNumber"`
	JobOrderID       string      `json:"jobOrderId"`
	Stage            DeviceStage `json:"stage"`
	CurrentOperation string      `json:"currentOperation,omitempty"`
	CreatedAt        time.Time   `json:"createdAt"`
	CompletedAt      *time.Time  `json:"completedAt,omitempty"`
}
