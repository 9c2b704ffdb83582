// Package island holds the UI state controller for the to-do widget: an
// in-memory item list with optimistic mutation, rollback on remote failure,
// and ingestion of change-feed events. It performs no I/O; callers issue the
// remote operations and report outcomes back through the transition funcs.
package island

import (
	"sort"

	"github.com/marcus/isle/internal/models"
)

// Notices surfaced to the user on remote-call failure. No retries are
// attempted; the user re-issues the action.
const (
	NoticeAddFailed    = "Failed to add"
	NoticeUpdateFailed = "Failed to update"
	NoticeDeleteFailed = "Failed to delete"
	NoticeLoadFailed   = "Failed to load"
)

// State is the controller's owned state. It is mutated only through the
// transition methods below; the widget layer treats it as a value it reads.
type State struct {
	Items []models.Todo

	// Busy flags gating interactive controls. Advisory only: they disable
	// controls, they are not locks.
	Adding   bool
	Toggling map[int64]bool
	Removing map[int64]bool

	Loading bool
	Notice  string
	Draft   string

	// nextTempID counts down from -1 so optimistic adds can never collide
	// with store-assigned (positive) ids.
	nextTempID int64
}

// NewState creates an empty controller state, marked loading until the
// initial fetch resolves.
func NewState() *State {
	return &State{
		Toggling:   make(map[int64]bool),
		Removing:   make(map[int64]bool),
		Loading:    true,
		nextTempID: -1,
	}
}

// SetLoaded installs the initial row set and clears the loading flag.
func (s *State) SetLoaded(rows []models.Todo) {
	s.Items = append([]models.Todo(nil), rows...)
	s.Loading = false
}

// FailLoad records a failed initial fetch: the list stays empty and a
// notice is surfaced.
func (s *State) FailLoad() {
	s.Loading = false
	s.Notice = NoticeLoadFailed
}

// BeginAdd starts an optimistic add. Empty (after trimming) text is a no-op
// and returns ok=false with no state change. Otherwise the item is appended
// with a temporary negative id, the draft input is cleared, and the adding
// flag is set.
func (s *State) BeginAdd(text string) (tempID int64, ok bool) {
	text = models.NormalizeText(text)
	if text == "" {
		return 0, false
	}
	tempID = s.nextTempID
	s.nextTempID--
	s.Items = append(s.Items, models.Todo{ID: tempID, Text: text, Completed: false})
	s.Draft = ""
	s.Adding = true
	return tempID, true
}

// ConfirmAdd replaces the temporary entry with the store-returned row,
// in place, and clears the adding flag.
func (s *State) ConfirmAdd(tempID int64, row models.Todo) {
	for i := range s.Items {
		if s.Items[i].ID == tempID {
			s.Items[i] = row
			break
		}
	}
	s.Adding = false
}

// FailAdd rolls an optimistic add back: the temporary entry is removed, the
// draft input is restored to the text that was being added, and a notice is
// surfaced. The adding flag clears regardless.
func (s *State) FailAdd(tempID int64, text string) {
	s.removeByID(tempID)
	s.Draft = text
	s.Notice = NoticeAddFailed
	s.Adding = false
}

// BeginToggle starts an optimistic toggle. Returns the pre-toggle completed
// value for rollback. A missing id or an already-toggling item is a no-op.
func (s *State) BeginToggle(id int64) (prev bool, ok bool) {
	if s.Toggling[id] {
		return false, false
	}
	for i := range s.Items {
		if s.Items[i].ID == id {
			prev = s.Items[i].Completed
			s.Items[i].Completed = !prev
			s.Toggling[id] = true
			return prev, true
		}
	}
	return false, false
}

// EndToggle clears the toggling flag after a confirmed update.
func (s *State) EndToggle(id int64) {
	delete(s.Toggling, id)
}

// FailToggle restores the pre-toggle completed value and surfaces a notice.
func (s *State) FailToggle(id int64, prev bool) {
	for i := range s.Items {
		if s.Items[i].ID == id {
			s.Items[i].Completed = prev
			break
		}
	}
	s.Notice = NoticeUpdateFailed
	delete(s.Toggling, id)
}

// BeginRemove starts an optimistic remove, capturing the item for rollback.
// A missing id or an already-removing item is a no-op.
func (s *State) BeginRemove(id int64) (snapshot models.Todo, ok bool) {
	if s.Removing[id] {
		return models.Todo{}, false
	}
	for _, t := range s.Items {
		if t.ID == id {
			snapshot = t
			s.removeByID(id)
			s.Removing[id] = true
			return snapshot, true
		}
	}
	return models.Todo{}, false
}

// EndRemove clears the removing flag after a confirmed delete.
func (s *State) EndRemove(id int64) {
	delete(s.Removing, id)
}

// FailRemove re-appends the captured item (at the end, not its original
// position) and surfaces a notice.
func (s *State) FailRemove(id int64, snapshot models.Todo) {
	s.Items = append(s.Items, snapshot)
	s.Notice = NoticeDeleteFailed
	delete(s.Removing, id)
}

// Ingest applies one change-feed event. Inserts append unconditionally —
// no dedup against an in-flight optimistic add, so the originating session
// can transiently show a double entry. Updates replace the full row by id;
// deletes remove by id; both are no-ops when the id is absent.
func (s *State) Ingest(change models.Change) {
	switch change.Action {
	case models.ChangeInsert:
		s.Items = append(s.Items, change.Todo)
	case models.ChangeUpdate:
		for i := range s.Items {
			if s.Items[i].ID == change.Todo.ID {
				s.Items[i] = change.Todo
				break
			}
		}
	case models.ChangeDelete:
		s.removeByID(change.Todo.ID)
	}
}

// ClearNotice dismisses the current failure notice.
func (s *State) ClearNotice() {
	s.Notice = ""
}

// Busy reports whether the item's controls should be disabled.
func (s *State) Busy(id int64) bool {
	return s.Toggling[id] || s.Removing[id]
}

// Visible returns the derived display order: incomplete items first,
// completed after, stable within each group.
func (s *State) Visible() []models.Todo {
	out := append([]models.Todo(nil), s.Items...)
	sort.SliceStable(out, func(i, j int) bool {
		return !out[i].Completed && out[j].Completed
	})
	return out
}

// Counts recomputes the remaining/completed counters from the current list.
func (s *State) Counts() models.Counts {
	return models.CountTodos(s.Items)
}

func (s *State) removeByID(id int64) {
	for i := range s.Items {
		if s.Items[i].ID == id {
			s.Items = append(s.Items[:i], s.Items[i+1:]...)
			return
		}
	}
}
