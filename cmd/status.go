package cmd

import (
	"github.com/marcus/isle/internal/models"
	"github.com/marcus/isle/internal/output"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check the store server and show item counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newClient()

		if err := client.HealthCheck(); err != nil {
			output.Error("server unreachable at %s: %v", serverURL, err)
			return err
		}
		output.Success("Server OK: %s", serverURL)

		todos, err := client.List()
		if err != nil {
			output.Error("list: %v", err)
			return err
		}
		c := models.CountTodos(todos)
		output.Info("%d left · %d done", c.Remaining, c.Completed)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
