package db

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"numbench/internal/benchmark"
)

func sampleRun(commit string, ts time.Time) benchmark.Run {
	return benchmark.Run{
		Timestamp: ts,
		Commit:    commit,
		Params:    benchmark.Params{VectorLen: 100, MatrixSize: 10, Repeat: 2, Seed: 42},
		Results: []benchmark.Result{
			{Name: "Exponentiation (Pow)", Group: "elementwise", Iterations: 2, Seconds: 0.5, TotalSeconds: 1},
			{Name: "Dot", Group: "matmul", Iterations: 2, Seconds: 0.25, TotalSeconds: 0.5},
		},
	}
}

func TestSQLiteStore(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer store.Close()

	// Empty history
	latest, err := store.LoadLatest()
	require.NoError(t, err)
	assert.Nil(t, latest)
	runs, err := store.LoadAll()
	require.NoError(t, err)
	assert.Empty(t, runs)

	now := time.Now()
	require.NoError(t, store.Save(sampleRun("new", now)))
	require.NoError(t, store.Save(sampleRun("old", now.Add(-time.Hour))))

	runs, err = store.LoadAll()
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "old", runs[0].Commit)
	assert.Equal(t, "new", runs[1].Commit)
	assert.True(t, runs[1].Timestamp.Equal(now))
	assert.Equal(t, benchmark.Params{VectorLen: 100, MatrixSize: 10, Repeat: 2, Seed: 42}, runs[1].Params)
	assert.Equal(t, sampleRun("new", now).Results, runs[1].Results)

	latest, err = store.LoadLatest()
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, "new", latest.Commit)
	require.Len(t, latest.Results, 2)
	assert.Equal(t, "Exponentiation (Pow)", latest.Results[0].Name)
}

func TestSQLiteStore_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	store, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Save(sampleRun("persisted", time.Now())))
	require.NoError(t, store.Close())

	store, err = NewSQLiteStore(path)
	require.NoError(t, err)
	defer store.Close()

	latest, err := store.LoadLatest()
	require.NoError(t, err)
	assert.Equal(t, "persisted", latest.Commit)
}
