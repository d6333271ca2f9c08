package main

import (
	"bytes"
	"errors"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"numbench/internal/benchmark"
	"numbench/internal/db"
	"numbench/internal/suite"
)

type mockStore struct {
	saved   []benchmark.Run
	latest  *benchmark.Run
	loadErr error
	closed  bool
}

func (m *mockStore) Save(run benchmark.Run) error {
	m.saved = append(m.saved, run)
	return nil
}

func (m *mockStore) LoadLatest() (*benchmark.Run, error) {
	return m.latest, m.loadErr
}

func (m *mockStore) LoadAll() ([]benchmark.Run, error) {
	if m.latest == nil {
		return m.saved, m.loadErr
	}
	return append([]benchmark.Run{*m.latest}, m.saved...), m.loadErr
}

func (m *mockStore) Close() error {
	m.closed = true
	return nil
}

// setup isolates viper, the working directory and the injectable functions.
func setup(t *testing.T, store benchmark.Store) {
	t.Helper()
	viper.Reset()
	t.Chdir(t.TempDir())

	origStore, origCommit := newStoreFunc, gitCommitFunc
	t.Cleanup(func() {
		newStoreFunc, gitCommitFunc = origStore, origCommit
		viper.Reset()
	})

	gitCommitFunc = func() (string, error) { return "abc1234", nil }
	if store != nil {
		newStoreFunc = func(db.StoreConfig) (benchmark.Store, error) { return store, nil }
	}
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

var small = []string{"--vector-len", "32", "--matrix-size", "4"}

func TestRootCmd_PrintsOneLinePerOperation(t *testing.T) {
	setup(t, nil)

	out, _, err := execute(t, small...)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 9)

	wantLabels := []string{
		suite.LabelPow, suite.LabelMulElem, suite.LabelSquare,
		suite.LabelMatMul, suite.LabelDot, suite.LabelMethod, suite.LabelEinsum, suite.LabelTensor,
		suite.LabelNative1D,
	}
	for i, line := range lines {
		label, value, ok := strings.Cut(line, ": ")
		require.True(t, ok, line)
		assert.Equal(t, wantLabels[i], label)

		secs, err := strconv.ParseFloat(value, 64)
		require.NoError(t, err, line)
		assert.GreaterOrEqual(t, secs, 0.0)
	}
}

func TestRootCmd_RejectsArgs(t *testing.T) {
	setup(t, nil)
	_, _, err := execute(t, "extra")
	assert.Error(t, err)
}

func TestRootCmd_InvalidConfig(t *testing.T) {
	setup(t, nil)
	_, _, err := execute(t, "--matrix-size", "0")
	assert.ErrorContains(t, err, "matrix_size must be positive")
}

func TestRootCmd_EnvOverride(t *testing.T) {
	setup(t, nil)
	t.Setenv("NUMBENCH_VECTOR_LEN", "8")
	t.Setenv("NUMBENCH_MATRIX_SIZE", "3")
	t.Setenv("NUMBENCH_SAVE", "true")
	store := &mockStore{}
	newStoreFunc = func(db.StoreConfig) (benchmark.Store, error) { return store, nil }

	_, _, err := execute(t)
	require.NoError(t, err)
	require.Len(t, store.saved, 1)
	assert.Equal(t, 8, store.saved[0].Params.VectorLen)
	assert.Equal(t, 3, store.saved[0].Params.MatrixSize)
}

func TestRootCmd_Save(t *testing.T) {
	store := &mockStore{}
	setup(t, store)

	_, errOut, err := execute(t, append(small, "--save", "--repeat", "2")...)
	require.NoError(t, err)

	assert.Contains(t, errOut, "Results saved")
	require.Len(t, store.saved, 1)
	run := store.saved[0]
	assert.Equal(t, "abc1234", run.Commit)
	assert.Equal(t, benchmark.Params{VectorLen: 32, MatrixSize: 4, Repeat: 2, Seed: 42}, run.Params)
	require.Len(t, run.Results, 9)
	assert.Equal(t, 2, run.Results[0].Iterations)
	assert.True(t, store.closed)
}

func TestRootCmd_Compare(t *testing.T) {
	prev := benchmark.Run{
		Timestamp: time.Now().Add(-time.Hour),
		Results: []benchmark.Result{
			{Name: suite.LabelDot, Seconds: 1e-12},
		},
	}
	store := &mockStore{latest: &prev}
	setup(t, store)

	out, _, err := execute(t, append(small, "--compare")...)
	require.NoError(t, err)

	assert.Contains(t, out, "Comparison with previous run")
	assert.Contains(t, out, suite.LabelDot)
	assert.Empty(t, store.saved, "compare alone does not save")
}

func TestRootCmd_CompareWithoutHistory(t *testing.T) {
	setup(t, &mockStore{})

	_, errOut, err := execute(t, append(small, "--compare")...)
	require.NoError(t, err)
	assert.Contains(t, errOut, "No previous run to compare with")
}

func TestRootCmd_FailThreshold(t *testing.T) {
	// A previous run that no real machine can beat.
	prev := benchmark.Run{
		Results: []benchmark.Result{
			{Name: suite.LabelMatMul, Seconds: 1e-15},
		},
	}
	store := &mockStore{latest: &prev}
	setup(t, store)

	_, _, err := execute(t, append(small, "--fail-threshold", "10", "--save")...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "performance regression detected")
	assert.Contains(t, err.Error(), suite.LabelMatMul+" is ")
	assert.Len(t, store.saved, 1, "the run is still saved")
}

func TestRootCmd_StoreError(t *testing.T) {
	setup(t, nil)
	newStoreFunc = func(db.StoreConfig) (benchmark.Store, error) { return nil, errors.New("disk full") }

	_, _, err := execute(t, append(small, "--save")...)
	assert.ErrorContains(t, err, "failed to open history store: disk full")
}

func TestRootCmd_JSONStoreRoundTrip(t *testing.T) {
	setup(t, nil)
	path := filepath.Join(t.TempDir(), "history.json")

	_, _, err := execute(t, append(small, "--save", "--store", "json", "--dsn", path)...)
	require.NoError(t, err)
	viper.Reset()
	_, _, err = execute(t, append(small, "--save", "--store", "json", "--dsn", path)...)
	require.NoError(t, err)

	viper.Reset()
	out, _, err := execute(t, "history", "--store", "json", "--dsn", path, "--details")
	require.NoError(t, err)
	assert.Contains(t, out, "TIMESTAMP")
	assert.Contains(t, out, "abc1234")
	assert.Contains(t, out, suite.LabelEinsum)
	assert.Equal(t, 2, strings.Count(out, "abc1234"))
}

func TestRootCmd_MetricsFile(t *testing.T) {
	setup(t, nil)
	path := filepath.Join(t.TempDir(), "numbench.prom")

	_, _, err := execute(t, append(small, "--metrics-file", path)...)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "numbench_operations_total")
	assert.Contains(t, string(data), "numbench_last_run_timestamp_seconds")
}

func TestHistoryCmd_Empty(t *testing.T) {
	setup(t, &mockStore{})
	out, _, err := execute(t, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "No saved runs.")
}

func TestHistoryCmd_Limit(t *testing.T) {
	store := &mockStore{}
	for i := 0; i < 3; i++ {
		store.saved = append(store.saved, benchmark.Run{
			Timestamp: time.Date(2026, 1, i+1, 0, 0, 0, 0, time.UTC),
			Commit:    "c" + strconv.Itoa(i),
		})
	}
	setup(t, store)

	out, _, err := execute(t, "history", "--limit", "2")
	require.NoError(t, err)
	assert.NotContains(t, out, "c0")
	assert.Contains(t, out, "c1")
	assert.Contains(t, out, "c2")
}

func TestVerifyCmd(t *testing.T) {
	setup(t, nil)
	out, _, err := execute(t, append([]string{"verify"}, small...)...)
	require.NoError(t, err)

	assert.Contains(t, out, "REFERENCE")
	assert.Equal(t, 7, strings.Count(out, "PASS"))
	assert.NotContains(t, out, "FAIL")
}

func TestVersionCmd(t *testing.T) {
	setup(t, nil)
	out, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "numbench version")
}

func TestRootCmd_MetricsServerStopsAfterRun(t *testing.T) {
	setup(t, nil)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	cmd := newRootCmd()
	assert.Contains(t, cmd.Flags().Lookup("metrics-addr").Usage, "until the run finishes")

	_, _, err = execute(t, append(small, "--metrics-addr", addr)...)
	require.NoError(t, err)

	conn, err := net.DialTimeout("tcp", addr, time.Second)
	if err == nil {
		conn.Close()
	}
	assert.Error(t, err, "metrics server still listening after the run")
}
