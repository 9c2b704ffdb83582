package island

import (
	"reflect"
	"testing"

	"github.com/marcus/isle/internal/models"
)

func loadedState(items ...models.Todo) *State {
	s := NewState()
	s.SetLoaded(items)
	return s
}

func TestBeginAddAppendsTempItem(t *testing.T) {
	s := loadedState()

	tempID, ok := s.BeginAdd("  buy milk  ")
	if !ok {
		t.Fatal("BeginAdd rejected valid text")
	}
	if tempID >= 0 {
		t.Errorf("temp id = %d, want negative", tempID)
	}
	if len(s.Items) != 1 {
		t.Fatalf("got %d items, want 1", len(s.Items))
	}
	if s.Items[0].Text != "buy milk" {
		t.Errorf("text = %q, want trimmed %q", s.Items[0].Text, "buy milk")
	}
	if s.Items[0].Completed {
		t.Error("optimistic item should start incomplete")
	}
	if !s.Adding {
		t.Error("adding flag should be set")
	}
	if s.Draft != "" {
		t.Error("draft should be cleared")
	}
}

func TestBeginAddEmptyIsNoOp(t *testing.T) {
	for _, text := range []string{"", "   ", "\t\n"} {
		s := loadedState(models.Todo{ID: 1, Text: "a"})
		before := append([]models.Todo(nil), s.Items...)

		if _, ok := s.BeginAdd(text); ok {
			t.Errorf("BeginAdd(%q) should be a no-op", text)
		}
		if !reflect.DeepEqual(s.Items, before) {
			t.Errorf("list changed on empty add: %+v", s.Items)
		}
		if s.Adding {
			t.Error("adding flag set on no-op")
		}
	}
}

func TestTempIDsNeverRepeat(t *testing.T) {
	s := loadedState()
	seen := make(map[int64]bool)
	for i := 0; i < 5; i++ {
		id, ok := s.BeginAdd("x")
		if !ok {
			t.Fatal("BeginAdd rejected valid text")
		}
		if seen[id] {
			t.Fatalf("temp id %d repeated", id)
		}
		seen[id] = true
		s.Adding = false
	}
}

func TestConfirmAddReplacesInPlace(t *testing.T) {
	s := loadedState(models.Todo{ID: 1, Text: "first"})
	tempID, _ := s.BeginAdd("second")

	s.ConfirmAdd(tempID, models.Todo{ID: 42, Text: "second", Completed: false})

	if len(s.Items) != 2 {
		t.Fatalf("got %d items, want 2 (no duplicate)", len(s.Items))
	}
	if s.Items[1].ID != 42 {
		t.Errorf("confirmed id = %d, want 42", s.Items[1].ID)
	}
	if s.Adding {
		t.Error("adding flag should clear on confirm")
	}
}

func TestFailAddRestoresPriorState(t *testing.T) {
	s := loadedState()
	tempID, _ := s.BeginAdd("buy milk")

	s.FailAdd(tempID, "buy milk")

	if len(s.Items) != 0 {
		t.Errorf("list should return to pre-add state, got %+v", s.Items)
	}
	if s.Draft != "buy milk" {
		t.Errorf("draft = %q, want restored %q", s.Draft, "buy milk")
	}
	if s.Notice != NoticeAddFailed {
		t.Errorf("notice = %q, want %q", s.Notice, NoticeAddFailed)
	}
	if s.Adding {
		t.Error("adding flag should clear on failure")
	}
}

func TestToggleSuccess(t *testing.T) {
	s := loadedState(models.Todo{ID: 1, Text: "a", Completed: false})

	prev, ok := s.BeginToggle(1)
	if !ok {
		t.Fatal("BeginToggle rejected known id")
	}
	if prev {
		t.Error("prev should be the pre-toggle value false")
	}
	if !s.Items[0].Completed {
		t.Error("completed should flip optimistically")
	}
	if !s.Toggling[1] {
		t.Error("toggling flag should be set")
	}

	s.EndToggle(1)
	if s.Toggling[1] {
		t.Error("toggling flag should clear")
	}

	// Matches the worked example: final state, remaining=0 completed=1
	want := []models.Todo{{ID: 1, Text: "a", Completed: true}}
	if !reflect.DeepEqual(s.Items, want) {
		t.Errorf("items = %+v, want %+v", s.Items, want)
	}
	if c := s.Counts(); c.Remaining != 0 || c.Completed != 1 {
		t.Errorf("counts = %+v, want remaining=0 completed=1", c)
	}
}

func TestFailToggleRollsBack(t *testing.T) {
	s := loadedState(models.Todo{ID: 1, Text: "a", Completed: false})
	prev, _ := s.BeginToggle(1)

	s.FailToggle(1, prev)

	if s.Items[0].Completed != false {
		t.Error("completed should be exactly its pre-toggle value")
	}
	if s.Notice != NoticeUpdateFailed {
		t.Errorf("notice = %q, want %q", s.Notice, NoticeUpdateFailed)
	}
	if s.Toggling[1] {
		t.Error("toggling flag should clear on failure")
	}
}

func TestToggleGuards(t *testing.T) {
	s := loadedState(models.Todo{ID: 1, Text: "a"})

	if _, ok := s.BeginToggle(99); ok {
		t.Error("toggle of unknown id should be a no-op")
	}

	s.BeginToggle(1)
	if _, ok := s.BeginToggle(1); ok {
		t.Error("toggle while already toggling should be a no-op")
	}
}

func TestRemoveSuccess(t *testing.T) {
	s := loadedState(
		models.Todo{ID: 1, Text: "a"},
		models.Todo{ID: 2, Text: "b"},
	)

	snapshot, ok := s.BeginRemove(1)
	if !ok {
		t.Fatal("BeginRemove rejected known id")
	}
	if snapshot.Text != "a" {
		t.Errorf("snapshot = %+v, want item 1", snapshot)
	}
	if len(s.Items) != 1 || s.Items[0].ID != 2 {
		t.Errorf("item not removed: %+v", s.Items)
	}
	if !s.Removing[1] {
		t.Error("removing flag should be set")
	}

	s.EndRemove(1)
	if s.Removing[1] {
		t.Error("removing flag should clear")
	}
}

func TestFailRemoveReappendsAtEnd(t *testing.T) {
	s := loadedState(
		models.Todo{ID: 1, Text: "a"},
		models.Todo{ID: 2, Text: "b"},
	)
	snapshot, _ := s.BeginRemove(1)

	s.FailRemove(1, snapshot)

	if len(s.Items) != 2 {
		t.Fatalf("got %d items, want 2", len(s.Items))
	}
	// Content-equal restore; position may differ (it lands at the end)
	if s.Items[1] != snapshot {
		t.Errorf("restored item = %+v, want %+v", s.Items[1], snapshot)
	}
	if s.Notice != NoticeDeleteFailed {
		t.Errorf("notice = %q, want %q", s.Notice, NoticeDeleteFailed)
	}
	if s.Removing[1] {
		t.Error("removing flag should clear on failure")
	}
}

func TestIngest(t *testing.T) {
	s := loadedState(models.Todo{ID: 1, Text: "a", Completed: false})

	s.Ingest(models.Change{Action: models.ChangeInsert, Todo: models.Todo{ID: 2, Text: "b"}})
	if len(s.Items) != 2 {
		t.Fatalf("insert not applied: %+v", s.Items)
	}

	s.Ingest(models.Change{Action: models.ChangeUpdate, Todo: models.Todo{ID: 1, Text: "a", Completed: true}})
	if !s.Items[0].Completed {
		t.Error("update should replace the row by id")
	}

	// Update for an unknown id is a no-op
	s.Ingest(models.Change{Action: models.ChangeUpdate, Todo: models.Todo{ID: 99, Text: "x"}})
	if len(s.Items) != 2 {
		t.Errorf("update of unknown id should not append: %+v", s.Items)
	}

	s.Ingest(models.Change{Action: models.ChangeDelete, Todo: models.Todo{ID: 2}})
	if len(s.Items) != 1 || s.Items[0].ID != 1 {
		t.Errorf("delete not applied: %+v", s.Items)
	}
}

func TestIngestInsertDoesNotDedupOptimisticAdd(t *testing.T) {
	// The feed echoes our own insert before the HTTP response lands; the
	// transient double entry is accepted behavior.
	s := loadedState()
	tempID, _ := s.BeginAdd("buy milk")

	s.Ingest(models.Change{Action: models.ChangeInsert, Todo: models.Todo{ID: 7, Text: "buy milk"}})
	if len(s.Items) != 2 {
		t.Fatalf("feed insert should append unconditionally, got %+v", s.Items)
	}

	s.ConfirmAdd(tempID, models.Todo{ID: 7, Text: "buy milk"})
	if len(s.Items) != 2 {
		t.Errorf("confirm replaces the temp entry only: %+v", s.Items)
	}
}

func TestFailLoad(t *testing.T) {
	s := NewState()
	if !s.Loading {
		t.Error("new state should be loading")
	}
	s.FailLoad()
	if s.Loading {
		t.Error("loading flag should clear on failure")
	}
	if len(s.Items) != 0 {
		t.Error("list should stay empty on load failure")
	}
	if s.Notice != NoticeLoadFailed {
		t.Errorf("notice = %q, want %q", s.Notice, NoticeLoadFailed)
	}
}

func TestVisibleOrdering(t *testing.T) {
	s := loadedState(
		models.Todo{ID: 1, Text: "a", Completed: true},
		models.Todo{ID: 2, Text: "b", Completed: false},
		models.Todo{ID: 3, Text: "c", Completed: true},
		models.Todo{ID: 4, Text: "d", Completed: false},
	)

	got := s.Visible()
	wantIDs := []int64{2, 4, 1, 3} // incomplete first, stable within groups
	for i, want := range wantIDs {
		if got[i].ID != want {
			t.Fatalf("visible order = %v, want ids %v", got, wantIDs)
		}
	}

	// Derived view must not reorder the underlying list
	if s.Items[0].ID != 1 {
		t.Error("Visible must not mutate Items")
	}
}

func TestCountsInvariant(t *testing.T) {
	s := loadedState(
		models.Todo{ID: 1, Completed: true},
		models.Todo{ID: 2, Completed: false},
		models.Todo{ID: 3, Completed: true},
	)
	c := s.Counts()
	if c.Remaining != 1 || c.Completed != 2 {
		t.Errorf("counts = %+v, want remaining=1 completed=2", c)
	}
	if c.Remaining+c.Completed != len(s.Items) {
		t.Error("remaining + completed must equal total items")
	}
}

func TestBusy(t *testing.T) {
	s := loadedState(models.Todo{ID: 1}, models.Todo{ID: 2})
	s.BeginToggle(1)
	s.BeginRemove(2)

	if !s.Busy(1) || !s.Busy(2) {
		t.Error("busy should report toggling and removing items")
	}
	if s.Busy(3) {
		t.Error("unknown id should not be busy")
	}

	s.EndToggle(1)
	s.EndRemove(2)
	if s.Busy(1) || s.Busy(2) {
		t.Error("busy should clear with the flags")
	}
}

func TestClearNotice(t *testing.T) {
	s := NewState()
	s.FailLoad()
	s.ClearNotice()
	if s.Notice != "" {
		t.Errorf("notice = %q, want empty", s.Notice)
	}
}
