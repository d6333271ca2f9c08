package main

import (
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"numbench/internal/benchmark"
	"numbench/internal/config"
	"numbench/internal/metrics"
	"numbench/internal/suite"
	"numbench/internal/telemetry"
)

// gitCommitFunc allows mocking in tests.
var gitCommitFunc = func() (string, error) {
	out, err := exec.Command("git", "rev-parse", "--short", "HEAD").Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

func runBenchmark(cmd *cobra.Command, s config.Settings) error {
	ctx := cmd.Context()
	params := paramsFrom(s)

	slog.Debug("generating data", "vector_len", params.VectorLen, "matrix_size", params.MatrixSize, "seed", params.Seed)
	data, err := suite.Generate(params)
	if err != nil {
		return fmt.Errorf("failed to generate data: %w", err)
	}

	m := metrics.NewMetrics()
	if s.MetricsAddr != "" {
		srv, err := telemetry.StartMetricsServer(s.MetricsAddr, m.Handler())
		if err != nil {
			return fmt.Errorf("failed to start metrics server: %w", err)
		}
		defer srv.Close()
	}

	var runner benchmark.Runner = benchmark.NewRunner(
		benchmark.WithRepeat(s.Repeat),
		benchmark.WithOutput(cmd.OutOrStdout()),
		benchmark.WithObserver(m.Observe),
	)
	results, err := runner.Run(ctx, suite.Cases(data))
	if err != nil {
		return err
	}

	run := benchmark.Run{
		Timestamp: time.Now(),
		Params: benchmark.Params{
			VectorLen:  params.VectorLen,
			MatrixSize: params.MatrixSize,
			Repeat:     s.Repeat,
			Seed:       params.Seed,
		},
		Results: results,
	}
	if commit, err := gitCommitFunc(); err == nil {
		run.Commit = commit
	}
	m.ObserveRun(run)

	if s.MetricsFile != "" {
		if err := m.WriteTextfile(s.MetricsFile); err != nil {
			return fmt.Errorf("failed to write metrics: %w", err)
		}
	}

	if !s.Save && !s.Compare && s.FailThreshold <= 0 {
		return nil
	}
	return compareAndSave(cmd, s, run)
}

func compareAndSave(cmd *cobra.Command, s config.Settings, run benchmark.Run) error {
	store, err := newStoreFunc(storeConfigFrom(s))
	if err != nil {
		return fmt.Errorf("failed to open history store: %w", err)
	}
	defer store.Close()

	var regressions []benchmark.Comparison
	if s.Compare || s.FailThreshold > 0 {
		prev, err := store.LoadLatest()
		if err != nil {
			return fmt.Errorf("failed to load previous run: %w", err)
		}
		if prev == nil {
			fmt.Fprintln(cmd.ErrOrStderr(), "No previous run to compare with.")
		} else {
			comps := benchmark.Compare(*prev, run)
			if s.Compare {
				fmt.Fprintln(cmd.OutOrStdout(), "\nComparison with previous run:")
				printComparison(cmd.OutOrStdout(), comps, s.Threshold)
			}
			if s.FailThreshold > 0 {
				regressions = benchmark.Regressions(comps, s.FailThreshold)
			}
		}
	}

	if s.Save {
		if err := store.Save(run); err != nil {
			return fmt.Errorf("failed to save run: %w", err)
		}
		fmt.Fprintln(cmd.ErrOrStderr(), "Results saved")
	}

	if len(regressions) > 0 {
		parts := make([]string, len(regressions))
		for i, r := range regressions {
			parts[i] = fmt.Sprintf("%s is %.2f%% slower", r.Name, r.SecondsDiff)
		}
		return fmt.Errorf("performance regression detected: %s", strings.Join(parts, ", "))
	}
	return nil
}
