package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"numbench/internal/benchmark"
	"numbench/internal/config"
	"numbench/internal/db"
	"numbench/internal/suite"
	"numbench/internal/telemetry"
)

var exit = os.Exit

// newStoreFunc allows tests to swap the history backend.
var newStoreFunc = func(cfg db.StoreConfig) (benchmark.Store, error) {
	return db.NewStore(cfg)
}

// Execute builds the command tree and runs it. It is called by main.main().
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfgFile string
	defaults := suite.DefaultParams()

	rootCmd := &cobra.Command{
		Use:   "numbench",
		Short: "Time elementwise and matrix-multiplication operations",
		Long: `numbench generates random dense vectors and matrices, runs a fixed menu of
elementwise and matrix-multiplication operations, and prints the wall-clock
time of each one as "<label>: <seconds>".

Run without arguments it times every operation once on a 10^6 element
vector and two 1000x1000 matrices.`,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Load(cfgFile); err != nil {
				return err
			}
			if err := config.BindFlags(cmd.Flags()); err != nil {
				return err
			}
			s := config.Current()
			telemetry.InitLogger(s.Verbose, s.LogFile)
			return config.ValidateConfig()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBenchmark(cmd, config.Current())
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	pf.BoolP("verbose", "v", false, "Enable verbose/debug logging")
	pf.String("log-file", "", "Also write logs to this file")
	pf.Int("vector-len", defaults.VectorLen, "Length of the elementwise and 1D dot-product vectors")
	pf.Int("matrix-size", defaults.MatrixSize, "Rows and columns of the square matrices")
	pf.Uint64("seed", defaults.Seed, "Seed for the random data")
	pf.String("store", "sqlite", "History backend: sqlite, postgres or json")
	pf.String("dsn", "", "History location: file path for sqlite/json, DSN for postgres")
	pf.String("metrics-file", "", "Write Prometheus metrics to this file when done")

	f := rootCmd.Flags()
	f.IntP("repeat", "n", 1, "Executions of each operation inside one timing window")
	f.Bool("save", false, "Save the run to history")
	f.Bool("compare", false, "Compare with the latest saved run")
	f.Float64("threshold", 10.0, "Percentage change highlighted in the comparison")
	f.Float64("fail-threshold", 0, "Fail when any operation is slower than the latest saved run by more than this percentage (0 disables)")
	f.String("metrics-addr", "", "Serve Prometheus metrics on this address until the run finishes; the server stops when numbench exits")

	rootCmd.AddCommand(newVerifyCmd(), newHistoryCmd(), newVersionCmd())
	return rootCmd
}

func paramsFrom(s config.Settings) suite.Params {
	return suite.Params{VectorLen: s.VectorLen, MatrixSize: s.MatrixSize, Seed: s.Seed}
}

func storeConfigFrom(s config.Settings) db.StoreConfig {
	return db.StoreConfig{Type: s.StoreType, ConnectionString: s.StoreDSN}
}
