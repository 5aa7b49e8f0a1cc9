package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/roach88/lantern/internal/export"
	"github.com/roach88/lantern/internal/metrics"
	"github.com/roach88/lantern/internal/simulate"
	"github.com/roach88/lantern/internal/store"
)

// EstimateOptions holds flags for the estimate command.
type EstimateOptions struct {
	*RootOptions
	Records    string
	Tasks      string
	URL        string
	Profile    string
	Database   string
	FCPMs      float64
	FMPMs      float64
	TraceEndMs float64
}

// NewEstimateCommand creates the estimate command.
func NewEstimateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EstimateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "estimate",
		Short: "Estimate page-load metrics under synthetic conditions",
		Long: `Run optimistic and pessimistic bounding simulations for every metric and
blend them into calibrated estimates. With --db, the run is archived for
later reporting.

Example:
  lantern estimate --records records.json --tasks tasks.json \
    --fcp-ms 1200 --fmp-ms 1800 --trace-end-ms 30000 --db runs.db`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEstimate(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Records, "records", "", "path to network records artifact (required)")
	cmd.Flags().StringVar(&opts.Tasks, "tasks", "", "path to main-thread tasks artifact")
	cmd.Flags().StringVar(&opts.URL, "url", "", "main document URL (defaults to first record)")
	cmd.Flags().StringVar(&opts.Profile, "profile", "", "path to CUE throttling profile")
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite run archive (optional)")
	cmd.Flags().Float64Var(&opts.FCPMs, "fcp-ms", 0, "observed first contentful paint reference (ms)")
	cmd.Flags().Float64Var(&opts.FMPMs, "fmp-ms", 0, "observed first meaningful paint reference (ms)")
	cmd.Flags().Float64Var(&opts.TraceEndMs, "trace-end-ms", 0, "end of captured trace (ms)")
	_ = cmd.MarkFlagRequired("records")

	return cmd
}

// estimateReport is the JSON payload of the estimate command.
type estimateReport struct {
	RunID     string              `json:"run_id"`
	URL       string              `json:"url"`
	Profile   string              `json:"profile"`
	Estimates []estimateRowReport `json:"estimates"`
}

type estimateRowReport struct {
	Metric        string  `json:"metric"`
	TimingMs      float64 `json:"timing_ms,omitempty"`
	OptimisticMs  float64 `json:"optimistic_ms,omitempty"`
	PessimisticMs float64 `json:"pessimistic_ms,omitempty"`
	ErrorCode     string  `json:"error_code,omitempty"`
}

func runEstimate(opts *EstimateOptions, cmd *cobra.Command) error {
	profile, params, err := resolveProfile(opts.Profile)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load profile", err)
	}
	weights, err := profile.Weights()
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid blend weights", err)
	}

	artifacts, err := LoadArtifacts(opts.Records, opts.Tasks, opts.URL)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load artifacts", err)
	}
	g, err := artifacts.BuildGraph()
	if err != nil {
		return WrapExitError(ExitFailure, "failed to build graph", err)
	}

	traceEnd := opts.TraceEndMs
	if traceEnd == 0 {
		traceEnd = latestRecordEnd(artifacts)
	}
	obs := metrics.Observation{
		Tasks:                  artifacts.Tasks,
		Records:                artifacts.Records,
		FirstContentfulPaintMs: opts.FCPMs,
		TraceEndMs:             traceEnd,
	}
	refs := map[metrics.Kind]float64{
		metrics.FirstContentfulPaint: opts.FCPMs,
		metrics.FirstMeaningfulPaint: opts.FMPMs,
		metrics.TimeToInteractive:    traceEnd,
	}

	cache := simulate.NewCache()
	registry := export.NewRegistry(export.DefaultCapacity)
	var estimatorOpts []metrics.EstimatorOption
	if weights != nil {
		estimatorOpts = append(estimatorOpts, metrics.WithBlendWeights(weights))
	}
	estimator := metrics.NewEstimator(cache, estimatorOpts...)

	runID := uuid.Must(uuid.NewV7()).String()
	slog.Info("estimating metrics",
		"run_id", runID,
		"nodes", g.Len(),
		"profile", profile.Name,
	)

	results := estimator.EstimateAll(metrics.AllKinds, g, refs, obs, params)
	for _, r := range results {
		if r.Metric != nil {
			registry.Record(string(r.Kind)+"/optimistic", r.Metric.Optimistic.Graph, r.Metric.Optimistic.NodeTimings)
			registry.Record(string(r.Kind)+"/pessimistic", r.Metric.Pessimistic.Graph, r.Metric.Pessimistic.NodeTimings)
		}
	}

	if opts.Database != "" {
		if err := archiveRun(cmd.Context(), opts.Database, runID, artifacts.MainDocumentURL, params, registry, results); err != nil {
			return WrapExitError(ExitCommandError, "failed to archive run", err)
		}
	}

	report := estimateReport{RunID: runID, URL: artifacts.MainDocumentURL, Profile: profile.Name}
	for _, r := range results {
		row := estimateRowReport{Metric: string(r.Kind)}
		if r.Err != nil {
			row.ErrorCode = r.ErrorCode()
		} else {
			row.TimingMs = r.Metric.TimingMs
			row.OptimisticMs = r.Metric.Optimistic.TimingMs
			row.PessimisticMs = r.Metric.Pessimistic.TimingMs
		}
		report.Estimates = append(report.Estimates, row)
	}

	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	if opts.Format == "json" {
		return formatter.SuccessJSONOnly(report)
	}
	printEstimateTable(cmd.OutOrStdout(), report)
	return nil
}

func archiveRun(ctx context.Context, path, runID, url string, params simulate.ResourceParameters, registry *export.Registry, results []metrics.Result) error {
	if ctx == nil {
		ctx = context.Background()
	}
	st, err := store.Open(path)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			slog.Error("error closing archive", "error", closeErr)
		}
	}()

	if err := st.CreateRun(ctx, runID, url); err != nil {
		return err
	}
	for _, entry := range registry.Entries() {
		row := store.SimulationRow{
			RunID:            runID,
			Label:            entry.Label,
			GraphFingerprint: entry.Graph.Fingerprint(),
			ParamsKey:        params.Key(),
			NodeCount:        entry.Graph.Len(),
			CompletionMs:     entry.Timings.CompletionTime(),
		}
		if err := st.WriteSimulation(ctx, row); err != nil {
			return err
		}
	}
	for _, r := range results {
		if err := st.WriteEstimate(ctx, runID, r); err != nil {
			return err
		}
	}
	return nil
}

func latestRecordEnd(artifacts *Artifacts) float64 {
	end := 0.0
	for i := range artifacts.Records {
		if artifacts.Records[i].EndTime > end {
			end = artifacts.Records[i].EndTime
		}
	}
	for _, t := range artifacts.Tasks {
		if t.EndTime > end {
			end = t.EndTime
		}
	}
	return end
}

func printEstimateTable(w io.Writer, report estimateReport) {
	fmt.Fprintf(w, "Run %s (%s, profile %s)\n\n", report.RunID, report.URL, report.Profile)
	table := tablewriter.NewTable(w,
		tablewriter.WithHeader([]string{"Metric", "Estimate(ms)", "Optimistic(ms)", "Pessimistic(ms)", "Error"}),
	)
	for _, row := range report.Estimates {
		if row.ErrorCode != "" {
			table.Append([]string{row.Metric, "-", "-", "-", row.ErrorCode})
			continue
		}
		table.Append([]string{
			row.Metric,
			fmt.Sprintf("%.1f", row.TimingMs),
			fmt.Sprintf("%.1f", row.OptimisticMs),
			fmt.Sprintf("%.1f", row.PessimisticMs),
			"",
		})
	}
	table.Render()
}
