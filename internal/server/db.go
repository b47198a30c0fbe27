package server

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// OpenDB opens the backend SQLite database at the given path, or an
// in-memory database for ":memory:". Enables WAL and foreign keys and runs
// migrations automatically.
func OpenDB(path string) (*sql.DB, error) {
	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return db, nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS initiatives (
		id             TEXT PRIMARY KEY,
		title          TEXT NOT NULL,
		description    TEXT NOT NULL DEFAULT '',
		function_tag   TEXT NOT NULL
		               CHECK(function_tag IN ('bd','construction','hr','finance','legal','strategy','service')),
		priority       TEXT NOT NULL
		               CHECK(priority IN ('critical','high','strategic','resolved')),
		owner_label    TEXT NOT NULL DEFAULT '',
		status_label   TEXT NOT NULL DEFAULT '',
		deadline       TEXT,
		deadline_label TEXT NOT NULL DEFAULT '',
		archived       INTEGER NOT NULL DEFAULT 0,
		created_at     TEXT NOT NULL,
		updated_at     TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS action_items (
		id            TEXT PRIMARY KEY,
		initiative_id TEXT NOT NULL REFERENCES initiatives(id) ON DELETE CASCADE,
		title         TEXT NOT NULL,
		status        TEXT NOT NULL CHECK(status IN ('pending','in_progress','done')),
		priority      TEXT NOT NULL CHECK(priority IN ('urgent','important','normal')),
		deadline      TEXT,
		completed_at  TEXT,
		sort_order    INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS decisions (
		id            TEXT PRIMARY KEY,
		question      TEXT NOT NULL,
		function_tag  TEXT NOT NULL,
		deadline      TEXT,
		status        TEXT NOT NULL CHECK(status IN ('open','decided')),
		decision_text TEXT NOT NULL DEFAULT '',
		deferred      INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS key_dates (
		id       TEXT PRIMARY KEY,
		date     TEXT NOT NULL,
		title    TEXT NOT NULL,
		category TEXT NOT NULL DEFAULT '',
		emoji    TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS syncs (
		id                     TEXT PRIMARY KEY,
		sync_date              TEXT NOT NULL,
		title                  TEXT NOT NULL,
		notes                  TEXT NOT NULL DEFAULT '',
		started_at             TEXT NOT NULL,
		ended_at               TEXT NOT NULL,
		duration_seconds       INTEGER NOT NULL,
		next_sync_date         TEXT NOT NULL DEFAULT '',
		next_sync_focus        TEXT NOT NULL DEFAULT '',
		items_discussed        INTEGER NOT NULL DEFAULT 0,
		decisions_made         INTEGER NOT NULL DEFAULT 0,
		action_items_completed INTEGER NOT NULL DEFAULT 0,
		created_at             TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_action_items_initiative ON action_items(initiative_id)`,
	`CREATE INDEX IF NOT EXISTS idx_key_dates_date ON key_dates(date)`,
}

func migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}
