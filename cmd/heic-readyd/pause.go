package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"heic-readyd/internal/config"
)

var pauseCmd = &cobra.Command{
	Use:   "pause",
	Short: "Pause conversion",
	RunE:  setPaused(true),
}

var resumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Resume conversion",
	RunE:  setPaused(false),
}

func setPaused(want bool) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		var cfg config.Config
		if err := clientGet("/config", &cfg); err != nil {
			return err
		}
		if cfg.Paused == want {
			fmt.Println(styleOK.Render(pauseStateLabel(want) + " already"))
			return nil
		}

		var applied config.Config
		if err := clientPost("/pause", nil, &applied); err != nil {
			return err
		}
		fmt.Println(styleOK.Render(pauseStateLabel(applied.Paused)))
		return nil
	}
}

func pauseStateLabel(paused bool) string {
	if paused {
		return "paused"
	}
	return "running"
}

func init() {
	rootCmd.AddCommand(pauseCmd, resumeCmd)
}
