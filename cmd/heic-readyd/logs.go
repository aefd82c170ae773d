package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"heic-readyd/internal/activitylog"
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Print the daemon's recent activity log",
	RunE: func(cmd *cobra.Command, args []string) error {
		var entries []activitylog.Entry
		if err := clientGet("/logs", &entries); err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("(no activity yet)")
			return nil
		}
		for _, e := range entries {
			line := fmt.Sprintf("[%s] %s", e.Result, e.SourcePath)
			if e.OutputPath != "" {
				line += " -> " + e.OutputPath
			}
			if e.Reason != "" {
				line += " (" + e.Reason + ")"
			}
			switch e.Result {
			case activitylog.ResultFailure:
				fmt.Println(styleErr.Render(line))
			case activitylog.ResultSkip:
				fmt.Println(styleWarn.Render(line))
			default:
				fmt.Println(styleOK.Render(line))
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(logsCmd)
}
