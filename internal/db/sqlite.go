package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// SQLiteStore implements benchmark.Store using SQLite
type SQLiteStore struct {
	sqlStore
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		created_at_ns INTEGER NOT NULL,
		commit_hash TEXT NOT NULL DEFAULT '',
		vector_len INTEGER NOT NULL,
		matrix_size INTEGER NOT NULL,
		repeat_count INTEGER NOT NULL,
		seed INTEGER NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS results (
		run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		name TEXT NOT NULL,
		group_name TEXT NOT NULL DEFAULT '',
		iterations INTEGER NOT NULL,
		seconds REAL NOT NULL,
		total_seconds REAL NOT NULL,
		PRIMARY KEY (run_id, position)
	);`,
}

// NewSQLiteStore creates a new SQLite store and applies migrations
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &SQLiteStore{sqlStore{db: db}}
	if err := store.migrate(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}
