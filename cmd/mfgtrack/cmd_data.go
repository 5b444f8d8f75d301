package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/xelth-com/mfgtrack/internal/api"
)

var listOpts api.ListOptions

func addListFlags(cmd *cobra.Command, filters ...string) {
	f := cmd.Flags()
	f.IntVar(&listOpts.Page, "page", 1, "page number")
	f.IntVar(&listOpts.Limit, "limit", 0, "page size, 0 for everything")
	f.StringVar(&listOpts.Search, "search", "", "substring filter")
	for _, name := range filters {
		switch name {
		case "status":
			f.StringVar(&listOpts.Status, "status", "", "status filter")
		case "job-order":
			f.StringVar(&listOpts.JobOrderID, "job-order", "", "job order id")
		case "technician":
			f.StringVar(&listOpts.TechnicianID, "technician", "", "technician user id")
		}
	}
}

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "List users",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := login(cmd.Context()); err != nil {
			return err
		}
		page, err := client.ListUsers(cmd.Context(), listOpts)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if jsonOut {
			return printJSON(out, page)
		}
		rows := make([][]string, 0, len(page.Items))
		for _, u := range page.Items {
			rows = append(rows, []string{u.ID, u.Username, u.Name, string(u.Role), u.Email})
		}
		if err := printTable(out, []string{"ID", "USERNAME", "NAME", "ROLE", "EMAIL"}, rows); err != nil {
			return err
		}
		pageFooter(out, page)
		return nil
	},
}

var jobOrdersCmd = &cobra.Command{
	Use:     "joborders",
	Aliases: []string{"jo"},
	Short:   "List job orders",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := login(cmd.Context()); err != nil {
			return err
		}
		page, err := client.ListJobOrders(cmd.Context(), listOpts)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if jsonOut {
			return printJSON(out, page)
		}
		rows := make([][]string, 0, len(page.Items))
		for _, jo := range page.Items {
			due := "-"
			if !jo.DueDate.IsZero() {
				due = jo.DueDate.Format("2006-01-02")
			}
			rows = append(rows, []string{
				jo.ID, jo.Title, string(jo.Status), fmt.Sprintf("%d%%", jo.Progress),
				fmt.Sprintf("%d/%d", jo.CompletedDevices, jo.TotalDevices), due,
			})
		}
		if err := printTable(out, []string{"ID", "TITLE", "STATUS", "PROGRESS", "DEVICES", "DUE"}, rows); err != nil {
			return err
		}
		pageFooter(out, page)
		return nil
	},
}

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "List task completions",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := login(cmd.Context()); err != nil {
			return err
		}
		page, err := client.ListTasks(cmd.Context(), listOpts)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if jsonOut {
			return printJSON(out, page)
		}
		rows := make([][]string, 0, len(page.Items))
		for _, t := range page.Items {
			rows = append(rows, []string{
				t.ID, t.JobOrderID, t.TechnicianID, string(t.Status),
				fmt.Sprintf("%.0f/%.0f", t.StandardTime, t.ActualTime), strings.Join(t.SerialNumbers, ","),
			})
		}
		if err := printTable(out, []string{"ID", "JOB ORDER", "TECHNICIAN", "STATUS", "STD/ACT MIN", "SERIALS"}, rows); err != nil {
			return err
		}
		pageFooter(out, page)
		return nil
	},
}

func init() {
	addListFlags(usersCmd)
	addListFlags(jobOrdersCmd, "status", "technician")
	addListFlags(tasksCmd, "status", "job-order", "technician")
}
