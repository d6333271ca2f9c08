package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"numbench/internal/config"
	"numbench/internal/metrics"
	"numbench/internal/suite"
)

func newVerifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check that every variant computes the same result",
		Long: `Generates the same data as a benchmark run, computes every variant once and
compares it with its reference: Pow for the elementwise operations, MatMul for
the matrix products and floats.Dot for the native loop.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(cmd, config.Current())
		},
	}
	cmd.Flags().Float64("tolerance", 1e-9, "Relative and absolute tolerance")
	return cmd
}

func runVerify(cmd *cobra.Command, s config.Settings) error {
	data, err := suite.Generate(paramsFrom(s))
	if err != nil {
		return fmt.Errorf("failed to generate data: %w", err)
	}

	checks, err := suite.Verify(data, s.Tolerance)
	if err != nil {
		return err
	}
	printChecks(cmd.OutOrStdout(), checks)

	failed := suite.Failed(checks)
	if s.MetricsFile != "" {
		m := metrics.NewMetrics()
		for _, c := range failed {
			m.VerifyFailed(c.Name)
		}
		if err := m.WriteTextfile(s.MetricsFile); err != nil {
			return fmt.Errorf("failed to write metrics: %w", err)
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("%d of %d checks failed", len(failed), len(checks))
	}
	return nil
}
