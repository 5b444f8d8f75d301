package models

import "time"

// AlertSeverity grades an alert
type AlertSeverity string

const (
	AlertInfo     AlertSeverity = "info"
	AlertWarning  AlertSeverity = "warning"
	AlertCritical AlertSeverity = "critical"
)

// Alert is a broadcast notice sent by an admin.
// Empty TargetRole means everyone.
type Alert struct {
	ID         string        `json:"id"`
	Title      string        `json:"title"`
	Message    string        `json:"message"`
	Severity   AlertSeverity `json:"severity"`
	TargetRole Role          `json:"targetRole,omitempty"`
	CreatedAt  time.Time     `json:"createdAt"`
}

// PlanningMetrics summarizes production for the planning dashboard
type PlanningMetrics struct {
	TotalJobOrders      int     `json:"totalJobOrders"`
	OpenJobOrders       int     `json:"openJobOrders"`
	InProgressJobOrders int     `json:"inProgressJobOrders"`
	CompletedJobOrders  int     `json:"completedJobOrders"`
	OnHoldJobOrders     int     `json:"onHoldJobOrders"`
	TotalDevices        int     `json:"totalDevices"`
	CompletedDevices    int     `json:"completedDevices"`
	PendingApprovals    int     `json:"pendingApprovals"`
	AverageEfficiency   float64 `json:"averageEfficiency"`
}
