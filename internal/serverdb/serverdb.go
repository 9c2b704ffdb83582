package serverdb

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/marcus/isle/internal/models"
	_ "modernc.org/sqlite"
)

// ErrTodoNotFound is returned when a mutation targets an id with no row.
var ErrTodoNotFound = errors.New("todo not found")

// DB wraps the server database connection.
type DB struct {
	conn *sql.DB
}

// Open opens (creating if necessary) the server database at the given path
// and ensures the schema exists.
func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Enable WAL mode for concurrent reads while writes are serialized
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if _, err := conn.Exec("PRAGMA busy_timeout=500"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	// Slightly faster writes, still safe with WAL
	conn.Exec("PRAGMA synchronous=NORMAL")

	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &DB{conn: conn}, nil
}

// Close closes the database.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping verifies the database is reachable.
func (db *DB) Ping() error {
	return db.conn.Ping()
}

// ListTodos returns all rows ordered by id ascending.
func (db *DB) ListTodos() ([]models.Todo, error) {
	rows, err := db.conn.Query(`SELECT id, text, completed FROM todos ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("query todos: %w", err)
	}
	defer rows.Close()

	var todos []models.Todo
	for rows.Next() {
		var t models.Todo
		if err := rows.Scan(&t.ID, &t.Text, &t.Completed); err != nil {
			return nil, fmt.Errorf("scan todo: %w", err)
		}
		todos = append(todos, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return todos, nil
}

// GetTodo retrieves a single row by id.
func (db *DB) GetTodo(id int64) (*models.Todo, error) {
	var t models.Todo
	err := db.conn.QueryRow(`SELECT id, text, completed FROM todos WHERE id = ?`, id).
		Scan(&t.ID, &t.Text, &t.Completed)
	if err == sql.ErrNoRows {
		return nil, ErrTodoNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get todo %d: %w", id, err)
	}
	return &t, nil
}

// CreateTodo inserts a new incomplete row and journals the insert.
// The returned change carries the created row with its store-assigned id.
func (db *DB) CreateTodo(text string) (models.Change, error) {
	var change models.Change
	err := db.withTx(func(tx *sql.Tx) error {
		res, err := tx.Exec(`INSERT INTO todos (text, completed) VALUES (?, 0)`, text)
		if err != nil {
			return fmt.Errorf("insert todo: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("last insert id: %w", err)
		}
		todo := models.Todo{ID: id, Text: text, Completed: false}
		seq, err := journalChange(tx, models.ChangeInsert, todo)
		if err != nil {
			return err
		}
		change = models.Change{Seq: seq, Action: models.ChangeInsert, Todo: todo}
		return nil
	})
	return change, err
}

// SetTodoCompleted updates only the completed flag of a row and journals the update.
// Returns ErrTodoNotFound when no row has the given id.
func (db *DB) SetTodoCompleted(id int64, completed bool) (models.Change, error) {
	var change models.Change
	err := db.withTx(func(tx *sql.Tx) error {
		var todo models.Todo
		err := tx.QueryRow(`SELECT id, text, completed FROM todos WHERE id = ?`, id).
			Scan(&todo.ID, &todo.Text, &todo.Completed)
		if err == sql.ErrNoRows {
			return ErrTodoNotFound
		}
		if err != nil {
			return fmt.Errorf("get todo %d: %w", id, err)
		}

		if _, err := tx.Exec(`UPDATE todos SET completed = ? WHERE id = ?`, completed, id); err != nil {
			return fmt.Errorf("update todo %d: %w", id, err)
		}
		todo.Completed = completed

		seq, err := journalChange(tx, models.ChangeUpdate, todo)
		if err != nil {
			return err
		}
		change = models.Change{Seq: seq, Action: models.ChangeUpdate, Todo: todo}
		return nil
	})
	return change, err
}

// DeleteTodo removes a row and journals the delete.
// Returns ErrTodoNotFound when no row has the given id.
func (db *DB) DeleteTodo(id int64) (models.Change, error) {
	var change models.Change
	err := db.withTx(func(tx *sql.Tx) error {
		res, err := tx.Exec(`DELETE FROM todos WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("delete todo %d: %w", id, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if n == 0 {
			return ErrTodoNotFound
		}

		todo := models.Todo{ID: id}
		seq, err := journalChange(tx, models.ChangeDelete, todo)
		if err != nil {
			return err
		}
		change = models.Change{Seq: seq, Action: models.ChangeDelete, Todo: todo}
		return nil
	})
	return change, err
}

// ChangesTail returns the most recent n journal entries in ascending seq order.
func (db *DB) ChangesTail(n int) ([]models.Change, error) {
	rows, err := db.conn.Query(`
		SELECT seq, action, todo_id, text, completed
		FROM changes ORDER BY seq DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("query changes: %w", err)
	}
	defer rows.Close()

	var changes []models.Change
	for rows.Next() {
		var c models.Change
		if err := rows.Scan(&c.Seq, &c.Action, &c.Todo.ID, &c.Todo.Text, &c.Todo.Completed); err != nil {
			return nil, fmt.Errorf("scan change: %w", err)
		}
		changes = append(changes, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	// Reverse into ascending order
	for i, j := 0, len(changes)-1; i < j; i, j = i+1, j-1 {
		changes[i], changes[j] = changes[j], changes[i]
	}
	return changes, nil
}

// PruneChanges deletes journal entries older than the retention period.
// Returns the number of rows removed.
func (db *DB) PruneChanges(retention time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-retention)
	res, err := db.conn.Exec(`DELETE FROM changes WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune changes: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

// withTx runs fn inside a transaction, committing on nil and rolling back on error.
func (db *DB) withTx(fn func(tx *sql.Tx) error) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// journalChange appends one row to the changes table and returns its seq.
func journalChange(tx *sql.Tx, action models.ChangeAction, todo models.Todo) (int64, error) {
	res, err := tx.Exec(`
		INSERT INTO changes (action, todo_id, text, completed)
		VALUES (?, ?, ?, ?)`, string(action), todo.ID, todo.Text, todo.Completed)
	if err != nil {
		return 0, fmt.Errorf("journal %s for todo %d: %w", action, todo.ID, err)
	}
	seq, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("journal seq: %w", err)
	}
	return seq, nil
}
