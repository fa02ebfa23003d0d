package sqlite

import (
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection
type DB struct {
	*sql.DB
}

// New creates a new SQLite database connection
func New(dataSourceName string) (*DB, error) {
	db, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Each connection to a private in-memory database sees its own empty schema.
	if dataSourceName == ":memory:" || strings.Contains(dataSourceName, "mode=memory") {
		db.SetMaxOpenConns(1)
	}

	return &DB{db}, nil
}

const schema = `
-- Operator sessions, keyed by sha256 of the bearer token
CREATE TABLE IF NOT EXISTS operator_sessions (
    token_hash TEXT PRIMARY KEY,
    email TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL,
    expires_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_operator_sessions_expiry ON operator_sessions(expires_at);

-- Audit log of proxied imports
CREATE TABLE IF NOT EXISTS import_activity (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    request_id TEXT NOT NULL,
    event_id TEXT NOT NULL,
    operator TEXT NOT NULL,
    status_code INTEGER NOT NULL,
    outcome TEXT NOT NULL CHECK(outcome IN ('imported', 'rejected', 'bad_gateway')),
    notes TEXT,
    details TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_import_activity_event ON import_activity(event_id);
CREATE INDEX IF NOT EXISTS idx_import_activity_operator ON import_activity(operator);
CREATE INDEX IF NOT EXISTS idx_import_activity_created ON import_activity(created_at);
`

// RunMigrations creates the schema if it does not already exist.
func (db *DB) RunMigrations() error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}
