package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"numbench/internal/config"
)

func newHistoryCmd() *cobra.Command {
	var (
		limit   int
		details bool
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List saved benchmark runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := newStoreFunc(storeConfigFrom(config.Current()))
			if err != nil {
				return fmt.Errorf("failed to open history store: %w", err)
			}
			defer store.Close()

			runs, err := store.LoadAll()
			if err != nil {
				return fmt.Errorf("failed to load history: %w", err)
			}
			if len(runs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No saved runs.")
				return nil
			}
			if limit > 0 && len(runs) > limit {
				runs = runs[len(runs)-limit:]
			}
			printHistory(cmd.OutOrStdout(), runs, details)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "Show at most this many of the latest runs (0 for all)")
	cmd.Flags().BoolVar(&details, "details", false, "Show per-operation timings")
	return cmd
}
