package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/lantern/internal/export"
	"github.com/roach88/lantern/internal/simulate"
)

// ExportTraceOptions holds flags for the export-trace command.
type ExportTraceOptions struct {
	*RootOptions
	Records string
	Tasks   string
	URL     string
	Profile string
	Out     string
}

// NewExportTraceCommand creates the export-trace command.
func NewExportTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportTraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export-trace",
		Short: "Export a simulated schedule as a synthetic trace file",
		Long: `Simulate the dependency graph and write the resulting schedule as a
devtools-style trace JSON file for visualization.

Example:
  lantern export-trace --records records.json --out simulated.trace.json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExportTrace(opts)
		},
	}

	cmd.Flags().StringVar(&opts.Records, "records", "", "path to network records artifact (required)")
	cmd.Flags().StringVar(&opts.Tasks, "tasks", "", "path to main-thread tasks artifact")
	cmd.Flags().StringVar(&opts.URL, "url", "", "main document URL (defaults to first record)")
	cmd.Flags().StringVar(&opts.Profile, "profile", "", "path to CUE throttling profile")
	cmd.Flags().StringVar(&opts.Out, "out", "", "output trace file path (required)")
	_ = cmd.MarkFlagRequired("records")
	_ = cmd.MarkFlagRequired("out")

	return cmd
}

func runExportTrace(opts *ExportTraceOptions) error {
	_, params, err := resolveProfile(opts.Profile)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load profile", err)
	}

	artifacts, err := LoadArtifacts(opts.Records, opts.Tasks, opts.URL)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load artifacts", err)
	}
	g, err := artifacts.BuildGraph()
	if err != nil {
		return WrapExitError(ExitFailure, "failed to build graph", err)
	}

	timings, err := simulate.Simulate(g, params)
	if err != nil {
		return WrapExitError(ExitFailure, "simulation failed", err)
	}

	f, err := os.Create(opts.Out)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to create output file", err)
	}
	defer f.Close()

	if err := export.WriteTrace(f, g, timings); err != nil {
		return WrapExitError(ExitFailure, "failed to write trace", err)
	}

	slog.Info("synthetic trace written",
		"path", opts.Out,
		"nodes", timings.Len(),
		"completion_ms", fmt.Sprintf("%.1f", timings.CompletionTime()),
	)
	return nil
}
