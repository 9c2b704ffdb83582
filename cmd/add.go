package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/marcus/isle/internal/output"
	"github.com/marcus/isle/internal/storeclient"
	"github.com/spf13/cobra"
)

var addCmd = &cobra.Command{
	Use:   "add <text>",
	Short: "Add a to-do item",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text := strings.TrimSpace(strings.Join(args, " "))
		if text == "" {
			output.Error("item text cannot be empty")
			return fmt.Errorf("item text cannot be empty")
		}

		todo, err := newClient().Create(text)
		if err != nil {
			if errors.Is(err, storeclient.ErrBadRequest) {
				output.Error("rejected: %v", err)
			} else {
				output.Error("add: %v", err)
			}
			return err
		}

		output.Success("Added #%d: %s", todo.ID, todo.Text)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(addCmd)
}
