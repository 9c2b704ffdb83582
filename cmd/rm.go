package cmd

import (
	"errors"

	"github.com/marcus/isle/internal/output"
	"github.com/marcus/isle/internal/storeclient"
	"github.com/spf13/cobra"
)

var rmCmd = &cobra.Command{
	Use:     "rm <id>",
	Aliases: []string{"delete"},
	Short:   "Delete a to-do item",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseTodoID(args[0])
		if err != nil {
			output.Error("%v", err)
			return err
		}

		if err := newClient().Delete(id); err != nil {
			if errors.Is(err, storeclient.ErrNotFound) {
				output.Error("no item with id %d", id)
			} else {
				output.Error("delete: %v", err)
			}
			return err
		}

		output.Success("Deleted #%d", id)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rmCmd)
}
