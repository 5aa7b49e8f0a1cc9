package cli

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/roach88/lantern/internal/store"
)

// ReportOptions holds flags for the report command.
type ReportOptions struct {
	*RootOptions
	Database string
}

// NewReportCommand creates the report command.
func NewReportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "report [run-id]",
		Short: "Report archived runs and their estimates",
		Long: `Without a run id, list archived runs. With one, print that run's metric
estimates and simulation results.

Example:
  lantern report --db runs.db
  lantern report --db runs.db 0190f16e-...`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite run archive (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runReport(opts *ReportOptions, args []string, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open archive", err)
	}
	defer st.Close()

	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

	if len(args) == 0 {
		runs, err := st.ListRuns(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to list runs", err)
		}
		if opts.Format == "json" {
			return formatter.SuccessJSONOnly(runs)
		}
		table := tablewriter.NewTable(cmd.OutOrStdout(),
			tablewriter.WithHeader([]string{"Run", "URL", "Created"}),
		)
		for _, r := range runs {
			table.Append([]string{r.ID, r.URL, r.CreatedAt})
		}
		table.Render()
		return nil
	}

	runID := args[0]
	run, err := st.ReadRun(ctx, runID)
	if err != nil {
		return WrapExitError(ExitCommandError, "run not found", err)
	}
	estimates, err := st.ListEstimates(ctx, runID)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list estimates", err)
	}
	simulations, err := st.ListSimulations(ctx, runID)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list simulations", err)
	}

	if opts.Format == "json" {
		return formatter.SuccessJSONOnly(map[string]any{
			"run":         run,
			"estimates":   estimates,
			"simulations": simulations,
		})
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Run %s (%s, created %s)\n\n", run.ID, run.URL, run.CreatedAt)
	table := tablewriter.NewTable(cmd.OutOrStdout(),
		tablewriter.WithHeader([]string{"Metric", "Estimate(ms)", "Optimistic(ms)", "Pessimistic(ms)", "Error"}),
	)
	for _, e := range estimates {
		table.Append([]string{
			e.Metric,
			nullableMs(e.TimingMs),
			nullableMs(e.OptimisticMs),
			nullableMs(e.PessimisticMs),
			e.ErrorCode,
		})
	}
	table.Render()

	if len(simulations) > 0 {
		fmt.Fprintln(cmd.OutOrStdout())
		simTable := tablewriter.NewTable(cmd.OutOrStdout(),
			tablewriter.WithHeader([]string{"Label", "Nodes", "Completion(ms)", "Fingerprint"}),
		)
		for _, s := range simulations {
			simTable.Append([]string{
				s.Label,
				fmt.Sprintf("%d", s.NodeCount),
				fmt.Sprintf("%.1f", s.CompletionMs),
				s.GraphFingerprint[:12],
			})
		}
		simTable.Render()
	}
	return nil
}

func nullableMs(v sql.NullFloat64) string {
	if !v.Valid {
		return "-"
	}
	return fmt.Sprintf("%.1f", v.Float64)
}
