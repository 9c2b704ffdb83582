package cmd

import (
	"fmt"
	"sort"

	"github.com/marcus/isle/internal/models"
	"github.com/marcus/isle/internal/output"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List to-do items",
	RunE: func(cmd *cobra.Command, args []string) error {
		todos, err := newClient().List()
		if err != nil {
			output.Error("list: %v", err)
			return err
		}

		jsonOutput, _ := cmd.Flags().GetBool("json")
		if jsonOutput {
			return output.JSON(todos)
		}

		// Incomplete first, matching the widget's display order
		sorted := make([]models.Todo, len(todos))
		copy(sorted, todos)
		sort.SliceStable(sorted, func(i, j int) bool {
			return !sorted[i].Completed && sorted[j].Completed
		})

		for _, t := range sorted {
			fmt.Println(output.FormatTodoShort(t))
		}

		c := models.CountTodos(todos)
		if len(todos) == 0 {
			fmt.Println("Nothing to do.")
		} else {
			output.Info("%d left · %d done", c.Remaining, c.Completed)
		}
		return nil
	},
}

func init() {
	listCmd.Flags().Bool("json", false, "Output as JSON")
	rootCmd.AddCommand(listCmd)
}
