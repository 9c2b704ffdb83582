package storeclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/marcus/isle/internal/api"
	"github.com/marcus/isle/internal/models"
	"github.com/marcus/isle/internal/serverdb"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	store, err := serverdb.Open(filepath.Join(t.TempDir(), "isle.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	srv := api.NewServer(api.LoadConfig(), store)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	return New(ts.URL)
}

func TestCreateListDelete(t *testing.T) {
	c := newTestClient(t)

	created, err := c.Create("buy milk")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.ID <= 0 {
		t.Errorf("id = %d, want positive", created.ID)
	}
	if created.Text != "buy milk" || created.Completed {
		t.Errorf("unexpected row: %+v", created)
	}

	todos, err := c.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(todos) != 1 || todos[0].ID != created.ID {
		t.Errorf("unexpected list: %+v", todos)
	}

	if err := c.Delete(created.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	todos, err = c.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(todos) != 0 {
		t.Errorf("list should be empty, got %+v", todos)
	}
}

func TestSetCompleted(t *testing.T) {
	c := newTestClient(t)

	created, err := c.Create("a")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	updated, err := c.SetCompleted(created.ID, true)
	if err != nil {
		t.Fatalf("SetCompleted failed: %v", err)
	}
	if !updated.Completed {
		t.Error("completed flag not set")
	}
}

func TestSentinelErrors(t *testing.T) {
	c := newTestClient(t)

	if err := c.Delete(999); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete missing: err = %v, want ErrNotFound", err)
	}
	if _, err := c.SetCompleted(999, true); !errors.Is(err, ErrNotFound) {
		t.Errorf("SetCompleted missing: err = %v, want ErrNotFound", err)
	}
	if _, err := c.Create("   "); !errors.Is(err, ErrBadRequest) {
		t.Errorf("Create blank: err = %v, want ErrBadRequest", err)
	}
}

func TestSubscribeDeliversChanges(t *testing.T) {
	c := newTestClient(t)

	sub, err := c.Subscribe(context.Background())
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	defer sub.Close()

	created, err := c.Create("a")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	select {
	case change := <-sub.C:
		if change.Action != models.ChangeInsert {
			t.Errorf("action = %q, want insert", change.Action)
		}
		if change.Todo.ID != created.ID {
			t.Errorf("change id = %d, want %d", change.Todo.ID, created.ID)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for change event")
	}
}

func TestSubscribeClose(t *testing.T) {
	c := newTestClient(t)

	sub, err := c.Subscribe(context.Background())
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	sub.Close()
	sub.Close() // idempotent

	select {
	case _, ok := <-sub.C:
		if ok {
			t.Error("expected closed channel after Close")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("channel not closed after Close")
	}
	if err := sub.Err(); err != nil {
		t.Errorf("clean close should leave nil error, got %v", err)
	}
}

func TestSubscribeContextCancel(t *testing.T) {
	c := newTestClient(t)

	ctx, cancel := context.WithCancel(context.Background())
	sub, err := c.Subscribe(ctx)
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	cancel()

	select {
	case _, ok := <-sub.C:
		if ok {
			t.Error("expected closed channel after context cancel")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("channel not closed after context cancel")
	}
}

func TestHealthCheck(t *testing.T) {
	c := newTestClient(t)

	if err := c.HealthCheck(); err != nil {
		t.Fatalf("HealthCheck failed: %v", err)
	}

	down := New("http://127.0.0.1:1")
	if err := down.HealthCheck(); err == nil {
		t.Error("HealthCheck against an unreachable server should fail")
	}
}

func TestSubscribeDropsUnknownActions(t *testing.T) {
	// Raw feed server sending one malformed event before a valid one.
	upgrader := websocket.Upgrader{}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()
		conn.WriteJSON(map[string]any{"action": "truncate", "todo": map[string]any{"id": 1}})
		conn.WriteJSON(models.Change{Action: models.ChangeInsert, Todo: models.Todo{ID: 2, Text: "ok"}})
		// Hold the socket open until the client hangs up
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	t.Cleanup(ts.Close)

	sub, err := New(ts.URL).Subscribe(context.Background())
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	defer sub.Close()

	select {
	case change := <-sub.C:
		if change.Action != models.ChangeInsert || change.Todo.ID != 2 {
			t.Errorf("delivered %+v, want the valid insert only", change)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for the valid event")
	}
}

func TestChangesTail(t *testing.T) {
	c := newTestClient(t)

	created, err := c.Create("a")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := c.SetCompleted(created.ID, true); err != nil {
		t.Fatalf("SetCompleted failed: %v", err)
	}

	changes, err := c.ChangesTail(10)
	if err != nil {
		t.Fatalf("ChangesTail failed: %v", err)
	}
	if len(changes) != 2 {
		t.Fatalf("got %d changes, want 2", len(changes))
	}
	if changes[0].Action != models.ChangeInsert || changes[1].Action != models.ChangeUpdate {
		t.Errorf("unexpected actions: %+v", changes)
	}
}
