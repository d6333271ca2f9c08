package db

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"numbench/internal/benchmark"
)

// sqlStore holds the run/result persistence shared by the SQL backends.
// Queries are written with '?' placeholders and rebound per driver.
type sqlStore struct {
	db     *sql.DB
	rebind func(string) string
}

func (s *sqlStore) q(query string) string {
	if s.rebind == nil {
		return query
	}
	return s.rebind(query)
}

// dollarPlaceholders rewrites '?' placeholders as $1, $2, ... for PostgreSQL.
func dollarPlaceholders(query string) string {
	var sb strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			sb.WriteString("$" + strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// Close closes the database connection
func (s *sqlStore) Close() error {
	return s.db.Close()
}

// Save stores a run and its results in one transaction.
func (s *sqlStore) Save(run benchmark.Run) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var runID int64
	err = tx.QueryRow(s.q(`INSERT INTO runs (created_at_ns, commit_hash, vector_len, matrix_size, repeat_count, seed)
		VALUES (?, ?, ?, ?, ?, ?) RETURNING id`),
		run.Timestamp.UnixNano(), run.Commit, run.Params.VectorLen, run.Params.MatrixSize,
		run.Params.Repeat, int64(run.Params.Seed)).Scan(&runID)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	for i, r := range run.Results {
		_, err := tx.Exec(s.q(`INSERT INTO results (run_id, position, name, group_name, iterations, seconds, total_seconds)
			VALUES (?, ?, ?, ?, ?, ?, ?)`),
			runID, i, r.Name, r.Group, r.Iterations, r.Seconds, r.TotalSeconds)
		if err != nil {
			return fmt.Errorf("failed to insert result %q: %w", r.Name, err)
		}
	}
	return tx.Commit()
}

// LoadAll returns every run, oldest first.
func (s *sqlStore) LoadAll() ([]benchmark.Run, error) {
	runs, ids, err := s.queryRuns(`SELECT id, created_at_ns, commit_hash, vector_len, matrix_size, repeat_count, seed
		FROM runs ORDER BY created_at_ns ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	for i := range runs {
		if runs[i].Results, err = s.queryResults(ids[i]); err != nil {
			return nil, err
		}
	}
	return runs, nil
}

// LoadLatest returns the most recent run, or nil when nothing has been saved.
func (s *sqlStore) LoadLatest() (*benchmark.Run, error) {
	runs, ids, err := s.queryRuns(`SELECT id, created_at_ns, commit_hash, vector_len, matrix_size, repeat_count, seed
		FROM runs ORDER BY created_at_ns DESC, id DESC LIMIT 1`)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, nil
	}
	if runs[0].Results, err = s.queryResults(ids[0]); err != nil {
		return nil, err
	}
	return &runs[0], nil
}

func (s *sqlStore) queryRuns(query string) ([]benchmark.Run, []int64, error) {
	rows, err := s.db.Query(s.q(query))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	runs := []benchmark.Run{}
	var ids []int64
	for rows.Next() {
		var (
			id, ns, seed int64
			run          benchmark.Run
		)
		if err := rows.Scan(&id, &ns, &run.Commit, &run.Params.VectorLen, &run.Params.MatrixSize,
			&run.Params.Repeat, &seed); err != nil {
			return nil, nil, err
		}
		run.Timestamp = time.Unix(0, ns)
		run.Params.Seed = uint64(seed)
		runs = append(runs, run)
		ids = append(ids, id)
	}
	return runs, ids, rows.Err()
}

func (s *sqlStore) queryResults(runID int64) ([]benchmark.Result, error) {
	rows, err := s.db.Query(s.q(`SELECT name, group_name, iterations, seconds, total_seconds
		FROM results WHERE run_id = ? ORDER BY position ASC`), runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query results: %w", err)
	}
	defer rows.Close()

	var results []benchmark.Result
	for rows.Next() {
		var r benchmark.Result
		if err := rows.Scan(&r.Name, &r.Group, &r.Iterations, &r.Seconds, &r.TotalSeconds); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

func (s *sqlStore) migrate(queries []string) error {
	for _, query := range queries {
		if _, err := s.db.Exec(query); err != nil {
			return err
		}
	}
	return nil
}
