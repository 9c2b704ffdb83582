// Package output provides styled terminal output helpers (success, error,
// todo formatting) using lipgloss.
package output

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/marcus/isle/internal/models"
	"golang.org/x/term"
)

var (
	// Styles
	subtleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	openStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("45"))
	doneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("242")).Strikethrough(true)
)

// Success prints a success message
func Success(format string, args ...interface{}) {
	fmt.Println(successStyle.Render(fmt.Sprintf(format, args...)))
}

// Error prints an error message
func Error(format string, args ...interface{}) {
	fmt.Println(errorStyle.Render("ERROR: " + fmt.Sprintf(format, args...)))
}

// Info prints an info message
func Info(format string, args ...interface{}) {
	fmt.Println(fmt.Sprintf(format, args...))
}

// JSON outputs data as JSON
func JSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

// IsTTY reports whether stdout is attached to a terminal. Styled output is
// skipped when piping into other tools.
func IsTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// FormatTodoShort formats a todo as a single styled line.
func FormatTodoShort(t models.Todo) string {
	if !IsTTY() {
		check := "[ ]"
		if t.Completed {
			check = "[x]"
		}
		return fmt.Sprintf("%s %d %s", check, t.ID, t.Text)
	}

	check := openStyle.Render("○")
	text := t.Text
	if t.Completed {
		check = successStyle.Render("●")
		text = doneStyle.Render(t.Text)
	}
	return fmt.Sprintf("%s %s %s", check, subtleStyle.Render(fmt.Sprintf("#%d", t.ID)), text)
}
