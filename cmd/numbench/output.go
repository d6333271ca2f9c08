package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"

	"numbench/internal/benchmark"
	"numbench/internal/suite"
)

var (
	passStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	failStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	imprStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
)

func printComparison(w io.Writer, comps []benchmark.Comparison, threshold float64) {
	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	fmt.Fprintln(tw, "OPERATION\tPREV S\tCURR S\tDIFF %\tSTATUS")
	for _, c := range comps {
		status := passStyle.Render("PASS")
		if c.SecondsDiff > threshold {
			status = failStyle.Render("SLOWER")
		} else if c.SecondsDiff < -threshold {
			status = imprStyle.Render("FASTER")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%+.2f%%\t%s\n", c.Name,
			benchmark.FormatSeconds(c.Prev.Seconds), benchmark.FormatSeconds(c.Curr.Seconds), c.SecondsDiff, status)
	}
	tw.Flush()
}

func printChecks(w io.Writer, checks []suite.Check) {
	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	fmt.Fprintln(tw, "VARIANT\tREFERENCE\tMAX ABS DIFF\tSTATUS")
	for _, c := range checks {
		status := passStyle.Render("PASS")
		if !c.OK {
			status = failStyle.Render("FAIL")
		}
		fmt.Fprintf(tw, "%s\t%s\t%.3g\t%s\n", c.Name, c.Reference, c.MaxAbsDiff, status)
	}
	tw.Flush()
}

func printHistory(w io.Writer, runs []benchmark.Run, details bool) {
	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	fmt.Fprintln(tw, "TIMESTAMP\tCOMMIT\tVECTOR\tMATRIX\tREPEAT\tOPERATIONS")
	for _, r := range runs {
		commit := r.Commit
		if commit == "" {
			commit = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%d\n", r.Timestamp.Format("2006-01-02 15:04:05"), commit,
			r.Params.VectorLen, r.Params.MatrixSize, r.Params.Repeat, len(r.Results))
		if details {
			for _, res := range r.Results {
				fmt.Fprintf(tw, "  %s\t%s\t\t\t\t\n", res.Name, benchmark.FormatSeconds(res.Seconds))
			}
		}
	}
	tw.Flush()
}
