package db

import (
	"fmt"
	"strings"

	"numbench/internal/benchmark"
)

// DefaultSQLitePath is used when the sqlite backend has no connection string.
const DefaultSQLitePath = ".numbench/history.db"

// DefaultJSONPath is used when the json backend has no connection string.
const DefaultJSONPath = ".numbench/history.json"

// StoreConfig holds configuration for the storage backend
type StoreConfig struct {
	Type             string // "sqlite", "postgres" or "json"
	ConnectionString string // File path for SQLite and JSON, DSN for Postgres
}

// NewStore creates a new history store based on the provided configuration
func NewStore(config StoreConfig) (benchmark.Store, error) {
	switch strings.ToLower(config.Type) {
	case "postgres", "postgresql":
		if config.ConnectionString == "" {
			return nil, fmt.Errorf("postgres connection string is required")
		}
		store, err := NewPostgresStore(config.ConnectionString)
		if err != nil {
			return nil, err
		}
		return store, nil
	case "sqlite", "sqlite3", "":
		if config.ConnectionString == "" {
			config.ConnectionString = DefaultSQLitePath
		}
		if err := ensureDir(config.ConnectionString); err != nil {
			return nil, err
		}
		store, err := NewSQLiteStore(config.ConnectionString)
		if err != nil {
			return nil, err
		}
		return store, nil
	case "json", "file":
		if config.ConnectionString == "" {
			config.ConnectionString = DefaultJSONPath
		}
		store, err := benchmark.NewFileStore(config.ConnectionString)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported store type: %s", config.Type)
	}
}
