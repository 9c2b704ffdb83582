package widget

import (
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/marcus/isle/internal/models"
)

// Messages produced by the async remote calls. Each outcome message carries
// everything the controller needs to confirm or roll back.
type (
	todosLoadedMsg struct {
		todos []models.Todo
		err   error
	}

	addDoneMsg struct {
		tempID int64
		text   string
		todo   *models.Todo
		err    error
	}

	toggleDoneMsg struct {
		id   int64
		prev bool
		err  error
	}

	removeDoneMsg struct {
		id       int64
		snapshot models.Todo
		err      error
	}

	changeMsg models.Change

	feedClosedMsg struct{}
)

// loadTodos fetches the full row set for the initial load.
func loadTodos(store Store) tea.Cmd {
	return func() tea.Msg {
		todos, err := store.List()
		if err != nil {
			slog.Warn("load todos", "err", err)
		}
		return todosLoadedMsg{todos: todos, err: err}
	}
}

// addTodo issues the remote insert for an optimistic add.
func addTodo(store Store, tempID int64, text string) tea.Cmd {
	return func() tea.Msg {
		todo, err := store.Create(text)
		if err != nil {
			slog.Warn("add todo", "err", err)
		}
		return addDoneMsg{tempID: tempID, text: text, todo: todo, err: err}
	}
}

// toggleTodo issues the remote update for an optimistic toggle. prev is the
// pre-toggle completed value, carried through for rollback.
func toggleTodo(store Store, id int64, prev bool) tea.Cmd {
	return func() tea.Msg {
		_, err := store.SetCompleted(id, !prev)
		if err != nil {
			slog.Warn("toggle todo", "id", id, "err", err)
		}
		return toggleDoneMsg{id: id, prev: prev, err: err}
	}
}

// removeTodo issues the remote delete for an optimistic remove.
func removeTodo(store Store, id int64, snapshot models.Todo) tea.Cmd {
	return func() tea.Msg {
		err := store.Delete(id)
		if err != nil {
			slog.Warn("remove todo", "id", id, "err", err)
		}
		return removeDoneMsg{id: id, snapshot: snapshot, err: err}
	}
}

// waitForChange blocks on the feed channel and reschedules itself after
// every delivered event.
func waitForChange(ch <-chan models.Change) tea.Cmd {
	return func() tea.Msg {
		change, ok := <-ch
		if !ok {
			return feedClosedMsg{}
		}
		return changeMsg(change)
	}
}
