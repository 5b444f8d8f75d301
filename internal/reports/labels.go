package reports

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"github.com/skip2/go-qrcode"
	"github.com/xelth-com/mfgtrack/internal/models"
)

// LabelConfig holds the label sheet geometry in millimetres
type LabelConfig struct {
	Cols       int     `json:"cols"`
	Rows       int     `json:"rows"`
	MarginTop  float64 `json:"marginTop"`
	MarginLeft float64 `json:"marginLeft"`
	GapX       float64 `json:"gapX"`
	GapY       float64 `json:"gapY"`
	// Prefix is prepended to the serial number in the QR payload
	Prefix string `json:"prefix"`
}

// DefaultLabelConfig is a 3x8 sheet of 70x37 mm stickers
func DefaultLabelConfig() LabelConfig {
	return LabelConfig{Cols: 3, Rows: 8, MarginTop: 0, MarginLeft: 0, GapX: 0, GapY: 0}
}

// ErrNoDevices is returned when there is nothing to print
var ErrNoDevices = errors.New("no devices to label")

// DeviceLabelsPDF renders one QR label per device, carrying its serial number
func DeviceLabelsPDF(devices []models.Device, cfg LabelConfig) ([]byte, error) {
	if len(devices) == 0 {
		return nil, ErrNoDevices
	}
	if cfg.Cols <= 0 || cfg.Rows <= 0 {
		return nil, fmt.Errorf("invalid label grid %dx%d", cfg.Cols, cfg.Rows)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetFont("Arial", "B", 10)

	// A4 dimensions
	pageWidth, pageHeight := 210.0, 297.0

	totalGapX := float64(cfg.Cols-1) * cfg.GapX
	totalGapY := float64(cfg.Rows-1) * cfg.GapY

	// symmetric margins
	availW := pageWidth - (cfg.MarginLeft * 2)
	availH := pageHeight - (cfg.MarginTop * 2)

	labelW := (availW - totalGapX) / float64(cfg.Cols)
	labelH := (availH - totalGapY) / float64(cfg.Rows)
	if labelW <= 0 || labelH <= 0 {
		return nil, fmt.Errorf("margins and gaps leave no room for labels")
	}

	labelsPerPage := cfg.Cols * cfg.Rows
	imgOptions := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: true}

	for i, d := range devices {
		if i%labelsPerPage == 0 {
			pdf.AddPage()
		}

		indexOnPage := i % labelsPerPage
		col := indexOnPage % cfg.Cols
		row := indexOnPage / cfg.Cols

		// top-left of the label
		x := cfg.MarginLeft + float64(col)*(labelW+cfg.GapX)
		y := cfg.MarginTop + float64(row)*(labelH+cfg.GapY)

		qrPng, err := qrcode.Encode(cfg.Prefix+d.SerialNumber, qrcode.Medium, 256)
		if err != nil {
			return nil, fmt.Errorf("failed to encode QR for %s: %w", d.SerialNumber, err)
		}
		imgName := fmt.Sprintf("qr_%d", i)
		pdf.RegisterImageOptionsReader(imgName, imgOptions, bytes.NewReader(qrPng))

		// QR on the left, text on the right
		qrSize := labelH * 0.8
		if qrSize > labelW/2 {
			qrSize = labelW / 2
		}
		qrX := x + 2
		qrY := y + (labelH-qrSize)/2
		pdf.ImageOptions(imgName, qrX, qrY, qrSize, qrSize, false, imgOptions, 0, "")

		textX := qrX + qrSize + 2
		textW := labelW - qrSize - 6

		pdf.SetXY(textX, y+labelH/2-6)
		pdf.SetFontSize(10)
		pdf.CellFormat(textW, 5, d.SerialNumber, "", 2, "L", false, 0, "")

		pdf.SetX(textX)
		pdf.SetFontSize(7)
		pdf.CellFormat(textW, 4, "JO "+shortID(d.JobOrderID), "", 2, "L", false, 0, "")

		pdf.SetX(textX)
		pdf.CellFormat(textW, 4, string(d.Stage), "", 0, "L", false, 0, "")
	}

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("failed to build label sheet: %w", err)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
