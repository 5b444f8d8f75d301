package main

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/xelth-com/mfgtrack/internal/api"
	"github.com/xelth-com/mfgtrack/internal/models"
	"github.com/xelth-com/mfgtrack/internal/reports"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	reportFormat string
	reportOut    string
	labelsJob    string
	labelsOut    string
	labelsPrefix string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Export the production report as XLSX or PDF",
	RunE: func(cmd *cobra.Command, args []string) error {
		format := strings.ToLower(reportFormat)
		if format != "xlsx" && format != "pdf" {
			return fmt.Errorf("unsupported format %q, use xlsx or pdf", reportFormat)
		}
		if reportOut == "" {
			reportOut = "production-report." + format
		}
		if _, err := login(cmd.Context()); err != nil {
			return err
		}

		ctx := cmd.Context()
		var (
			orders  []models.JobOrder
			devices []models.Device
			tasks   []models.TaskEntry
		)
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			p, err := client.ListJobOrders(gctx, api.ListOptions{})
			orders = p.Items
			return err
		})
		g.Go(func() error {
			p, err := client.ListDevices(gctx, api.ListOptions{})
			devices = p.Items
			return err
		})
		g.Go(func() error {
			p, err := client.ListTasks(gctx, api.ListOptions{})
			tasks = p.Items
			return err
		})
		if err := g.Wait(); err != nil {
			return err
		}

		rep := reports.BuildJobOrderReport(orders, devices, tasks)
		var buf bytes.Buffer
		var err error
		if format == "xlsx" {
			err = reports.WriteXLSX(&buf, rep)
		} else {
			err = reports.WritePDF(&buf, rep)
		}
		if err != nil {
			return err
		}
		if err := os.WriteFile(reportOut, buf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", reportOut, err)
		}
		logger.Info("Report written", zap.String("path", reportOut), zap.Int("job_orders", len(rep.Rows)))
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d job orders)\n", reportOut, len(rep.Rows))
		return nil
	},
}

var labelsCmd = &cobra.Command{
	Use:   "labels",
	Short: "Print QR serial-number labels for the devices of a job order",
	RunE: func(cmd *cobra.Command, args []string) error {
		if labelsJob == "" {
			return fmt.Errorf("--job-order is required")
		}
		if labelsOut == "" {
			labelsOut = "labels-" + labelsJob + ".pdf"
		}
		if _, err := login(cmd.Context()); err != nil {
			return err
		}

		page, err := client.ListDevices(cmd.Context(), api.ListOptions{JobOrderID: labelsJob})
		if err != nil {
			return err
		}
		labelCfg := reports.DefaultLabelConfig()
		labelCfg.Prefix = labelsPrefix
		pdf, err := reports.DeviceLabelsPDF(page.Items, labelCfg)
		if err != nil {
			return fmt.Errorf("job order %s: %w", labelsJob, err)
		}
		if err := os.WriteFile(labelsOut, pdf, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", labelsOut, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d labels)\n", labelsOut, len(page.Items))
		return nil
	},
}

func init() {
	reportCmd.Flags().StringVar(&reportFormat, "format", "xlsx", "xlsx or pdf")
	reportCmd.Flags().StringVar(&reportOut, "out", "", "output file")

	labelsCmd.Flags().StringVar(&labelsJob, "job-order", "", "job order id")
	labelsCmd.Flags().StringVar(&labelsOut, "out", "", "output file")
	labelsCmd.Flags().StringVar(&labelsPrefix, "prefix", "", "prefix for the QR payload")
}
