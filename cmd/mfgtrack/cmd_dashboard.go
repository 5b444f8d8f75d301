package main

import (
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"
	"github.com/xelth-com/mfgtrack/internal/access"
	"github.com/xelth-com/mfgtrack/internal/dashboard"
)

var dashboardUser string

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Load the dashboard of a user and summarize it",
	Long: `Logs in as --user and loads every section that user's role sees,
concurrently. Sections that fail are reported without hiding the others.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if dashboardUser == "" {
			return errors.New("--user is required")
		}
		username = dashboardUser
		user, err := login(cmd.Context())
		if err != nil {
			return err
		}

		snap, err := dashboard.Load(cmd.Context(), client, user)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if jsonOut {
			errs := map[string]string{}
			for k, e := range snap.Errors {
				errs[k] = e.Error()
			}
			return printJSON(out, struct {
				*dashboard.Snapshot
				Errors map[string]string `json:"errors"`
			}{snap, errs})
		}

		fmt.Fprintf(out, "%s (%s) -> %s\n", user.Name, user.Role, access.HomePath(user.Role))
		if snap.Metrics != nil {
			m := snap.Metrics
			fmt.Fprintf(out, "job orders: %d (open %d, in progress %d, completed %d, on hold %d)\n",
				m.TotalJobOrders, m.OpenJobOrders, m.InProgressJobOrders, m.CompletedJobOrders, m.OnHoldJobOrders)
			fmt.Fprintf(out, "devices: %d/%d completed, pending approvals %d, efficiency %.1f%%\n",
				m.CompletedDevices, m.TotalDevices, m.PendingApprovals, m.AverageEfficiency)
		}
		sections := [][]string{
			{dashboard.SectionUsers, fmt.Sprint(len(snap.Users))},
			{dashboard.SectionJobOrders, fmt.Sprint(len(snap.JobOrders))},
			{dashboard.SectionTasks, fmt.Sprint(len(snap.Tasks))},
			{dashboard.SectionOperations, fmt.Sprint(len(snap.Operations))},
			{dashboard.SectionDevices, fmt.Sprint(len(snap.Devices))},
			{dashboard.SectionProductionLogs, fmt.Sprint(len(snap.ProductionLogs))},
			{dashboard.SectionTestLogs, fmt.Sprint(len(snap.TestLogs))},
			{dashboard.SectionInspections, fmt.Sprint(len(snap.Inspections))},
			{dashboard.SectionAlerts, fmt.Sprint(len(snap.Alerts))},
		}
		if err := printTable(out, []string{"SECTION", "ITEMS"}, sections); err != nil {
			return err
		}

		failed := make([]string, 0, len(snap.Errors))
		for k := range snap.Errors {
			failed = append(failed, k)
		}
		sort.Strings(failed)
		for _, k := range failed {
			fmt.Fprintf(out, "failed %s: %v\n", k, snap.Errors[k])
		}
		return nil
	},
}

func init() {
	dashboardCmd.Flags().StringVar(&dashboardUser, "user", "", "username to load the dashboard for")
}
