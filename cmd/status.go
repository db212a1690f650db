package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status <task-id>",
	Short: "Check a processing task once",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		status, err := app.client.TaskStatus(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if status == "" {
			status = "unknown"
		}
		fmt.Println(status)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
