package reports

import (
	"fmt"
	"io"

	"github.com/xelth-com/mfgtrack/internal/models"
	"github.com/xuri/excelize/v2"
)

const (
	summarySheet = "Job Orders"
	stagesSheet  = "Device Stages"
)

var summaryHeaders = []string{
	"Job Order", "Title", "Status", "Progress %", "Due Date", "Devices", "Completed",
	"Tasks", "Approved", "Pending", "Rejected", "Standard min", "Actual min", "Efficiency %",
}

// WriteXLSX writes the report as a workbook with a summary sheet and a
// device-stage breakdown sheet
func WriteXLSX(w io.Writer, rep Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#D3D3D3"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	all := append(append([]JobOrderSummary{}, rep.Rows...), rep.Totals)

	if err := writeRow(f, summarySheet, 1, toAny(summaryHeaders)); err != nil {
		return err
	}
	for i, r := range all {
		due := ""
		if !r.DueDate.IsZero() {
			due = r.DueDate.Format("2006-01-02")
		}
		row := []any{
			r.JobOrderID, r.Title, string(r.Status), r.Progress, due, r.Devices, r.CompletedDevices,
			r.Tasks, r.ApprovedTasks, r.PendingTasks, r.RejectedTasks, r.StandardMinutes, r.ActualMinutes, r.Efficiency,
		}
		if err := writeRow(f, summarySheet, i+2, row); err != nil {
			return err
		}
	}
	if err := styleHeader(f, summarySheet, len(summaryHeaders), headerStyle); err != nil {
		return err
	}
	f.SetColWidth(summarySheet, "A", "A", 38)
	f.SetColWidth(summarySheet, "B", "B", 30)

	if _, err := f.NewSheet(stagesSheet); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	stageHeaders := []any{"Job Order", "Title"}
	for _, s := range models.DeviceStages {
		stageHeaders = append(stageHeaders, string(s))
	}
	if err := writeRow(f, stagesSheet, 1, stageHeaders); err != nil {
		return err
	}
	for i, r := range all {
		row := []any{r.JobOrderID, r.Title}
		for _, s := range models.DeviceStages {
			row = append(row, r.DevicesByStage[s])
		}
		if err := writeRow(f, stagesSheet, i+2, row); err != nil {
			return err
		}
	}
	if err := styleHeader(f, stagesSheet, len(stageHeaders), headerStyle); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, rowNum int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d of %s: %w", rowNum, sheet, err)
	}
	return nil
}

func styleHeader(f *excelize.File, sheet string, cols, style int) error {
	last, err := excelize.CoordinatesToCellName(cols, 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A1", last, style)
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
