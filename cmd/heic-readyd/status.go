package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

type statusResponse struct {
	State     string `json:"state"`
	QueueSize int    `json:"queue_size"`
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the daemon's current state and queue depth",
	RunE: func(cmd *cobra.Command, args []string) error {
		var status statusResponse
		if err := clientGet("/status", &status); err != nil {
			return err
		}
		fmt.Printf("state: %s\nqueue: %d pending\n", status.State, status.QueueSize)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
