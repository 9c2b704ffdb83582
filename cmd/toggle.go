package cmd

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/marcus/isle/internal/output"
	"github.com/marcus/isle/internal/storeclient"
	"github.com/spf13/cobra"
)

var toggleCmd = &cobra.Command{
	Use:     "toggle <id>",
	Aliases: []string{"done"},
	Short:   "Toggle an item's completed state",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseTodoID(args[0])
		if err != nil {
			output.Error("%v", err)
			return err
		}

		client := newClient()
		todos, err := client.List()
		if err != nil {
			output.Error("list: %v", err)
			return err
		}

		var completed bool
		found := false
		for _, t := range todos {
			if t.ID == id {
				completed = t.Completed
				found = true
				break
			}
		}
		if !found {
			output.Error("no item with id %d", id)
			return fmt.Errorf("no item with id %d", id)
		}

		todo, err := client.SetCompleted(id, !completed)
		if err != nil {
			if errors.Is(err, storeclient.ErrNotFound) {
				output.Error("no item with id %d", id)
			} else {
				output.Error("toggle: %v", err)
			}
			return err
		}

		if todo.Completed {
			output.Success("Completed #%d: %s", todo.ID, todo.Text)
		} else {
			output.Info("Reopened #%d: %s", todo.ID, todo.Text)
		}
		return nil
	},
}

func parseTodoID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

func init() {
	rootCmd.AddCommand(toggleCmd)
}
