package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/xelth-com/mfgtrack/internal/buildinfo"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	RunE: func(cmd *cobra.Command, args []string) error {
		info := buildinfo.Get()
		if jsonOut {
			return printJSON(cmd.OutOrStdout(), info)
		}
		fmt.Fprintln(cmd.OutOrStdout(), info.String())
		return nil
	},
}
