// Package widget implements the island TUI: a collapsible to-do list with a
// collapsed summary badge and an expanded panel, driven by the optimistic
// state controller in internal/island.
package widget

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/marcus/isle/internal/island"
	"github.com/marcus/isle/internal/models"
)

// Store is the subset of the store client the widget issues calls through.
type Store interface {
	List() ([]models.Todo, error)
	Create(text string) (*models.Todo, error)
	SetCompleted(id int64, completed bool) (*models.Todo, error)
	Delete(id int64) error
}

// Model is the Bubble Tea model for the island widget.
type Model struct {
	Store Store
	State *island.State

	// Events receives change-feed events for the lifetime of the widget;
	// CloseFeed releases the subscription and is called on every exit path.
	Events    <-chan models.Change
	CloseFeed func()

	Input   textinput.Model
	Spinner spinner.Model

	Expanded bool
	Cursor   int

	Width  int
	Height int

	quitting bool
}

// NewModel creates a widget model. events and closeFeed may be nil when no
// live feed is available (the widget then shows only its own mutations).
func NewModel(store Store, events <-chan models.Change, closeFeed func()) Model {
	input := textinput.New()
	input.Placeholder = "What needs doing?"
	input.CharLimit = models.MaxTextLen
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinnerStyle

	return Model{
		Store:     store,
		State:     island.NewState(),
		Events:    events,
		CloseFeed: closeFeed,
		Input:     input,
		Spinner:   sp,
		Expanded:  true,
	}
}

// Init fires the initial load, starts draining the change feed, and spins
// the loading indicator.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{loadTodos(m.Store), m.Spinner.Tick, textinput.Blink}
	if m.Events != nil {
		cmds = append(cmds, waitForChange(m.Events))
	}
	return tea.Batch(cmds...)
}

// Update routes messages to the state controller and schedules remote calls.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		return m, nil

	case spinner.TickMsg:
		if !m.State.Loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd

	case todosLoadedMsg:
		if msg.err != nil {
			m.State.FailLoad()
			return m, nil
		}
		m.State.SetLoaded(msg.todos)
		m.clampCursor()
		return m, nil

	case addDoneMsg:
		if msg.err != nil {
			m.State.FailAdd(msg.tempID, msg.text)
			m.Input.SetValue(m.State.Draft)
		} else {
			m.State.ConfirmAdd(msg.tempID, *msg.todo)
		}
		return m, nil

	case toggleDoneMsg:
		if msg.err != nil {
			m.State.FailToggle(msg.id, msg.prev)
		} else {
			m.State.EndToggle(msg.id)
		}
		return m, nil

	case removeDoneMsg:
		if msg.err != nil {
			m.State.FailRemove(msg.id, msg.snapshot)
		} else {
			m.State.EndRemove(msg.id)
		}
		m.clampCursor()
		return m, nil

	case changeMsg:
		m.State.Ingest(models.Change(msg))
		m.clampCursor()
		return m, waitForChange(m.Events)

	case feedClosedMsg:
		// Feed is gone; keep running on local state only
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

// handleKey processes key input for both island states.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Any keypress dismisses a failure notice
	m.State.ClearNotice()

	switch msg.Type {
	case tea.KeyCtrlC:
		return m.quit()
	case tea.KeyTab:
		m.Expanded = !m.Expanded
		return m, nil
	}

	if !m.Expanded {
		switch msg.String() {
		case "q", "esc":
			return m.quit()
		case "enter":
			m.Expanded = true
		}
		return m, nil
	}

	switch msg.String() {
	case "esc":
		m.Expanded = false
		return m, nil

	case "enter":
		if m.State.Adding {
			return m, nil
		}
		text := m.Input.Value()
		tempID, ok := m.State.BeginAdd(text)
		if !ok {
			return m, nil
		}
		m.Input.SetValue("")
		return m, addTodo(m.Store, tempID, models.NormalizeText(text))

	case "up", "ctrl+p":
		if m.Cursor > 0 {
			m.Cursor--
		}
		return m, nil

	case "down", "ctrl+n":
		if m.Cursor < len(m.State.Items)-1 {
			m.Cursor++
		}
		return m, nil

	case "ctrl+t":
		return m.toggleSelected()

	case "ctrl+d":
		return m.removeSelected()
	}

	// Everything else feeds the text input, unless an add is in flight
	if m.State.Adding {
		return m, nil
	}
	var cmd tea.Cmd
	m.Input, cmd = m.Input.Update(msg)
	return m, cmd
}

// toggleSelected starts an optimistic toggle of the item under the cursor.
func (m Model) toggleSelected() (tea.Model, tea.Cmd) {
	item, ok := m.selected()
	if !ok || m.State.Busy(item.ID) {
		return m, nil
	}
	prev, ok := m.State.BeginToggle(item.ID)
	if !ok {
		return m, nil
	}
	return m, toggleTodo(m.Store, item.ID, prev)
}

// removeSelected starts an optimistic remove of the item under the cursor.
func (m Model) removeSelected() (tea.Model, tea.Cmd) {
	item, ok := m.selected()
	if !ok || m.State.Busy(item.ID) {
		return m, nil
	}
	snapshot, ok := m.State.BeginRemove(item.ID)
	if !ok {
		return m, nil
	}
	m.clampCursor()
	return m, removeTodo(m.Store, item.ID, snapshot)
}

// selected returns the item under the cursor in the derived display order.
func (m Model) selected() (models.Todo, bool) {
	visible := m.State.Visible()
	if m.Cursor < 0 || m.Cursor >= len(visible) {
		return models.Todo{}, false
	}
	return visible[m.Cursor], true
}

func (m *Model) clampCursor() {
	if n := len(m.State.Items); m.Cursor >= n {
		m.Cursor = n - 1
	}
	if m.Cursor < 0 {
		m.Cursor = 0
	}
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	if m.CloseFeed != nil {
		m.CloseFeed()
	}
	return m, tea.Quit
}
