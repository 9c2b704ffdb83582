package serverdb

// schema is the full database schema for a fresh isle-server database.
// todos holds the live rows; changes is an append-only journal of every
// mutation, used by the tail endpoint and pruned on a retention ticker.
const schema = `
CREATE TABLE IF NOT EXISTS todos (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    text TEXT NOT NULL,
    completed BOOLEAN NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS changes (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    action TEXT NOT NULL CHECK (action IN ('insert', 'update', 'delete')),
    todo_id INTEGER NOT NULL,
    text TEXT NOT NULL DEFAULT '',
    completed BOOLEAN NOT NULL DEFAULT 0,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_changes_created_at ON changes(created_at);
`
