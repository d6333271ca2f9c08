package db

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

// PostgresStore implements benchmark.Store using PostgreSQL
type PostgresStore struct {
	sqlStore
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS runs (
		id BIGSERIAL PRIMARY KEY,
		created_at_ns BIGINT NOT NULL,
		commit_hash TEXT NOT NULL DEFAULT '',
		vector_len INTEGER NOT NULL,
		matrix_size INTEGER NOT NULL,
		repeat_count INTEGER NOT NULL,
		seed BIGINT NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS results (
		run_id BIGINT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		name TEXT NOT NULL,
		group_name TEXT NOT NULL DEFAULT '',
		iterations INTEGER NOT NULL,
		seconds DOUBLE PRECISION NOT NULL,
		total_seconds DOUBLE PRECISION NOT NULL,
		PRIMARY KEY (run_id, position)
	);`,
}

// NewPostgresStore creates a new Postgres store and applies migrations
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := newPostgresStore(db)
	if err := store.migrate(postgresSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

func newPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{sqlStore{db: db, rebind: dollarPlaceholders}}
}
