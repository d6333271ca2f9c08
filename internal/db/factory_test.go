package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"numbench/internal/benchmark"
)

func TestNewStore(t *testing.T) {
	dir := t.TempDir()

	t.Run("sqlite", func(t *testing.T) {
		store, err := NewStore(StoreConfig{Type: "sqlite", ConnectionString: filepath.Join(dir, "sub", "h.db")})
		require.NoError(t, err)
		defer store.Close()
		assert.IsType(t, &SQLiteStore{}, store)
	})

	t.Run("empty type defaults to sqlite", func(t *testing.T) {
		store, err := NewStore(StoreConfig{ConnectionString: filepath.Join(dir, "default.db")})
		require.NoError(t, err)
		defer store.Close()
		assert.IsType(t, &SQLiteStore{}, store)
	})

	t.Run("json", func(t *testing.T) {
		store, err := NewStore(StoreConfig{Type: "JSON", ConnectionString: filepath.Join(dir, "h.json")})
		require.NoError(t, err)
		assert.IsType(t, &benchmark.FileStore{}, store)
	})

	t.Run("postgres without dsn", func(t *testing.T) {
		store, err := NewStore(StoreConfig{Type: "postgres"})
		assert.Error(t, err)
		assert.Nil(t, store)
	})

	t.Run("unsupported", func(t *testing.T) {
		_, err := NewStore(StoreConfig{Type: "mongo"})
		assert.ErrorContains(t, err, "unsupported store type: mongo")
	})
}
