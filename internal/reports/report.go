// Package reports turns job orders, devices and task completions into the
// production report and the device label sheets.
package reports

import (
	"math"
	"time"

	"github.com/xelth-com/mfgtrack/internal/models"
)

// JobOrderSummary is one row of the production report
type JobOrderSummary struct {
	JobOrderID       string
	Title            string
	Status           models.JobOrderStatus
	Progress         int
	DueDate          time.Time
	Devices          int
	CompletedDevices int
	DevicesByStage   map[models.DeviceStage]int
	Tasks            int
	ApprovedTasks    int
	PendingTasks     int
	RejectedTasks    int
	StandardMinutes  float64
	ActualMinutes    float64
	// Efficiency is standard over actual minutes of approved tasks, in percent
	Efficiency float64
}

// Report is the production report for a set of job orders
type Report struct {
	GeneratedAt time.Time
	Rows        []JobOrderSummary
	Totals      JobOrderSummary
}

// BuildJobOrderReport summarizes every job order in the given order. Devices
// and tasks that belong to no listed job order are ignored. When no device
// of a job order is known, its own device counters are used.
func BuildJobOrderReport(jobOrders []models.JobOrder, devices []models.Device, tasks []models.TaskEntry) Report {
	index := make(map[string]int, len(jobOrders))
	rows := make([]JobOrderSummary, len(jobOrders))
	for i, jo := range jobOrders {
		index[jo.ID] = i
		rows[i] = JobOrderSummary{
			JobOrderID:     jo.ID,
			Title:          jo.Title,
			Status:         jo.Status,
			Progress:       jo.Progress,
			DueDate:        jo.DueDate,
			DevicesByStage: map[models.DeviceStage]int{},
		}
	}

	for _, d := range devices {
		i, ok := index[d.JobOrderID]
		if !ok {
			continue
		}
		rows[i].Devices++
		rows[i].DevicesByStage[d.Stage]++
		if d.Stage == models.StageCompleted {
			rows[i].CompletedDevices++
		}
	}

	for _, t := range tasks {
		i, ok := index[t.JobOrderID]
		if !ok {
			continue
		}
		r := &rows[i]
		r.Tasks++
		switch t.Status {
		case models.TaskApproved:
			r.ApprovedTasks++
			r.StandardMinutes += t.StandardTime
			r.ActualMinutes += t.ActualTime
		case models.TaskSubmitted:
			r.PendingTasks++
		case models.TaskRejected:
			r.RejectedTasks++
		}
	}

	totals := JobOrderSummary{Title: "Total", DevicesByStage: map[models.DeviceStage]int{}}
	for i, jo := range jobOrders {
		r := &rows[i]
		if r.Devices == 0 {
			r.Devices = jo.TotalDevices
			r.CompletedDevices = jo.CompletedDevices
		}
		r.StandardMinutes = round1(r.StandardMinutes)
		r.ActualMinutes = round1(r.ActualMinutes)
		r.Efficiency = efficiency(r.StandardMinutes, r.ActualMinutes)

		totals.Devices += r.Devices
		totals.CompletedDevices += r.CompletedDevices
		totals.Tasks += r.Tasks
		totals.ApprovedTasks += r.ApprovedTasks
		totals.PendingTasks += r.PendingTasks
		totals.RejectedTasks += r.RejectedTasks
		totals.StandardMinutes += r.StandardMinutes
		totals.ActualMinutes += r.ActualMinutes
		for stage, n := range r.DevicesByStage {
			totals.DevicesByStage[stage] += n
		}
	}
	totals.StandardMinutes = round1(totals.StandardMinutes)
	totals.ActualMinutes = round1(totals.ActualMinutes)
	totals.Progress = models.ComputeProgress(totals.CompletedDevices, totals.Devices)
	totals.Efficiency = efficiency(totals.StandardMinutes, totals.ActualMinutes)

	return Report{GeneratedAt: time.Now().UTC(), Rows: rows, Totals: totals}
}

func efficiency(standard, actual float64) float64 {
	if actual <= 0 {
		return 0
	}
	return round1(standard / actual * 100)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
