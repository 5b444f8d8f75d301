package reports

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"
)

// pdfColumn is one column of the PDF summary table
type pdfColumn struct {
	title string
	width float64
	align string
	value func(JobOrderSummary) string
}

var pdfColumns = []pdfColumn{
	{"Title", 62, "L", func(r JobOrderSummary) string { return r.Title }},
	{"Status", 24, "L", func(r JobOrderSummary) string { return string(r.Status) }},
	{"Progress", 18, "R", func(r JobOrderSummary) string { return fmt.Sprintf("%d%%", r.Progress) }},
	{"Due", 22, "C", func(r JobOrderSummary) string {
		if r.DueDate.IsZero() {
			return "-"
		}
		return r.DueDate.Format("2006-01-02")
	}},
	{"Devices", 22, "R", func(r JobOrderSummary) string { return fmt.Sprintf("%d/%d", r.CompletedDevices, r.Devices) }},
	{"Tasks", 16, "R", func(r JobOrderSummary) string { return fmt.Sprintf("%d", r.Tasks) }},
	{"Approved", 18, "R", func(r JobOrderSummary) string { return fmt.Sprintf("%d", r.ApprovedTasks) }},
	{"Pending", 16, "R", func(r JobOrderSummary) string { return fmt.Sprintf("%d", r.PendingTasks) }},
	{"Std min", 20, "R", func(r JobOrderSummary) string { return fmt.Sprintf("%.1f", r.StandardMinutes) }},
	{"Act min", 20, "R", func(r JobOrderSummary) string { return fmt.Sprintf("%.1f", r.ActualMinutes) }},
	{"Eff %", 18, "R", func(r JobOrderSummary) string { return fmt.Sprintf("%.1f", r.Efficiency) }},
}

// WritePDF writes the report as a landscape A4 table
func WritePDF(w io.Writer, rep Report) error {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 12, 10)
	pdf.SetAutoPageBreak(true, 12)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	header := func() {
		pdf.SetFont("Arial", "B", 9)
		pdf.SetFillColor(211, 211, 211)
		for _, c := range pdfColumns {
			pdf.CellFormat(c.width, 7, c.title, "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 8)
	}

	pdf.SetHeaderFunc(func() {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 8, "Production Report", "", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "", 8)
		pdf.CellFormat(0, 5, "Generated "+rep.GeneratedAt.Format("2006-01-02 15:04 MST"), "", 1, "L", false, 0, "")
		pdf.Ln(2)
		header()
	})
	pdf.SetFooterFunc(func() {
		pdf.SetY(-10)
		pdf.SetFont("Arial", "I", 7)
		pdf.CellFormat(0, 5, fmt.Sprintf("Page %d", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()
	for _, r := range rep.Rows {
		for _, c := range pdfColumns {
			pdf.CellFormat(c.width, 6, tr(c.value(r)), "1", 0, c.align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	pdf.SetFont("Arial", "B", 8)
	for _, c := range pdfColumns {
		pdf.CellFormat(c.width, 6, tr(c.value(rep.Totals)), "1", 0, c.align, false, 0, "")
	}
	pdf.Ln(-1)

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to render report PDF: %w", err)
	}
	return nil
}
