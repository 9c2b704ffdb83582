package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/marcus/isle/internal/models"
	"github.com/marcus/isle/internal/output"
	"github.com/spf13/cobra"
)

// Styles for tail output
var (
	insertMark = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Render("+")  // green
	updateMark = lipgloss.NewStyle().Foreground(lipgloss.Color("45")).Render("~")  // cyan
	deleteMark = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render("-") // red
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

var tailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Show recent change-feed activity",
	Long: `Show recent insert/update/delete events. Use -f to follow in real-time.

Examples:
  isle tail          # Show last 20 change events
  isle tail -f       # Follow new events in real-time
  isle tail -n 50    # Show last 50 events
  isle tail -f -n 0  # Follow only new events, skip history`,
	RunE: func(cmd *cobra.Command, args []string) error {
		follow, _ := cmd.Flags().GetBool("follow")
		lines, _ := cmd.Flags().GetInt("lines")

		client := newClient()

		// Show initial entries
		var entries []models.Change
		if lines > 0 {
			var err error
			entries, err = client.ChangesTail(lines)
			if err != nil {
				output.Error("query changes: %v", err)
				return err
			}
		}

		for _, c := range entries {
			printChange(c)
		}

		if !follow {
			if len(entries) == 0 {
				fmt.Println("No change activity recorded.")
			}
			return nil
		}

		// Follow mode: stream new events, handle Ctrl+C gracefully
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		sub, err := client.Subscribe(ctx)
		if err != nil {
			output.Error("subscribe: %v", err)
			return err
		}
		defer sub.Close()

		for {
			select {
			case <-ctx.Done():
				fmt.Println() // clean line after ^C
				return nil
			case c, ok := <-sub.C:
				if !ok {
					if err := sub.Err(); err != nil {
						slog.Debug("tail: feed closed", "err", err)
					}
					return nil
				}
				printChange(c)
			}
		}
	},
}

func printChange(c models.Change) {
	mark := updateMark
	switch c.Action {
	case models.ChangeInsert:
		mark = insertMark
	case models.ChangeDelete:
		mark = deleteMark
	}

	seq := ""
	if c.Seq > 0 {
		seq = dimStyle.Render(fmt.Sprintf("seq:%d", c.Seq)) + " "
	}

	state := "○"
	if c.Todo.Completed {
		state = "●"
	}

	fmt.Printf("%s%s %s #%d %s %s\n", seq, mark, c.Action, c.Todo.ID, state, truncateText(c.Todo.Text, 48))
}

// truncateText shortens display text by cell width, never splitting a rune.
func truncateText(s string, max int) string {
	return ansi.Truncate(s, max, "...")
}

func init() {
	tailCmd.Flags().BoolP("follow", "f", false, "Follow new events in real-time")
	tailCmd.Flags().IntP("lines", "n", 20, "Number of initial lines to show")
	rootCmd.AddCommand(tailCmd)
}
