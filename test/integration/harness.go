// Package integration runs end-to-end tests against a real isle-server:
// HTTP API and change feed on one side, direct SQL inspection of the
// store database on the other.
package integration

import (
	"database/sql"
	"fmt"
	"net/http/httptest"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/marcus/isle/internal/api"
	"github.com/marcus/isle/internal/models"
	"github.com/marcus/isle/internal/serverdb"
	"github.com/marcus/isle/internal/storeclient"
)

// Harness wires a live server, a store client, and an independent SQL
// connection to the server's database file. The independent connection uses
// a second driver so state checks don't share the server's code path.
type Harness struct {
	t      *testing.T
	Server *httptest.Server
	Client *storeclient.Client
	SQL    *sql.DB
}

// NewHarness starts a server on a temp database and connects to it.
func NewHarness(t *testing.T) *Harness {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "isle.db")

	store, err := serverdb.Open(dbPath)
	if err != nil {
		t.Fatalf("open store db: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	cfg := api.LoadConfig()
	srv := api.NewServer(cfg, store)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	raw, err := sql.Open("sqlite3", dbPath+"?_busy_timeout=5000")
	if err != nil {
		t.Fatalf("open raw db: %v", err)
	}
	t.Cleanup(func() { raw.Close() })

	return &Harness{
		t:      t,
		Server: ts,
		Client: storeclient.New(ts.URL),
		SQL:    raw,
	}
}

// CountRows returns the number of rows in a table, read directly from disk.
func (h *Harness) CountRows(table string) int {
	h.t.Helper()
	var n int
	if err := h.SQL.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&n); err != nil {
		h.t.Fatalf("count %s: %v", table, err)
	}
	return n
}

// RawTodo reads one todos row directly from disk, bypassing the API.
func (h *Harness) RawTodo(id int64) (models.Todo, bool) {
	h.t.Helper()
	var t models.Todo
	err := h.SQL.QueryRow("SELECT id, text, completed FROM todos WHERE id = ?", id).
		Scan(&t.ID, &t.Text, &t.Completed)
	if err == sql.ErrNoRows {
		return models.Todo{}, false
	}
	if err != nil {
		h.t.Fatalf("raw todo %d: %v", id, err)
	}
	return t, true
}

// LastJournalEntry reads the newest changes row directly from disk.
func (h *Harness) LastJournalEntry() (action string, todoID int64) {
	h.t.Helper()
	err := h.SQL.QueryRow("SELECT action, todo_id FROM changes ORDER BY seq DESC LIMIT 1").
		Scan(&action, &todoID)
	if err != nil {
		h.t.Fatalf("last journal entry: %v", err)
	}
	return action, todoID
}

// MustCreate creates a todo through the API, failing the test on error.
func (h *Harness) MustCreate(text string) models.Todo {
	h.t.Helper()
	todo, err := h.Client.Create(text)
	if err != nil {
		h.t.Fatalf("create %q: %v", text, err)
	}
	return *todo
}
