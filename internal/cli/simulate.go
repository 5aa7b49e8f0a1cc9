package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/roach88/lantern/internal/graph"
	"github.com/roach88/lantern/internal/simulate"
)

// SimulateOptions holds flags for the simulate command.
type SimulateOptions struct {
	*RootOptions
	Records string
	Tasks   string
	URL     string
	Profile string
}

// NewSimulateCommand creates the simulate command.
func NewSimulateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SimulateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Simulate a page load under synthetic conditions",
		Long: `Build the dependency graph from captured artifacts and simulate it under
the throttling profile, printing per-node start/end times.

Example:
  lantern simulate --records records.json --tasks tasks.json --profile slow4g.cue`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulate(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Records, "records", "", "path to network records artifact (required)")
	cmd.Flags().StringVar(&opts.Tasks, "tasks", "", "path to main-thread tasks artifact")
	cmd.Flags().StringVar(&opts.URL, "url", "", "main document URL (defaults to first record)")
	cmd.Flags().StringVar(&opts.Profile, "profile", "", "path to CUE throttling profile")
	_ = cmd.MarkFlagRequired("records")

	return cmd
}

// nodeReport is the per-node JSON payload of the simulate command.
type nodeReport struct {
	NodeID  int     `json:"node_id"`
	Kind    string  `json:"kind"`
	Name    string  `json:"name"`
	StartMs float64 `json:"start_ms"`
	EndMs   float64 `json:"end_ms"`
}

// simulateReport is the full JSON payload of the simulate command.
type simulateReport struct {
	Fingerprint  string       `json:"graph_fingerprint"`
	Profile      string       `json:"profile"`
	CompletionMs float64      `json:"completion_ms"`
	Nodes        []nodeReport `json:"nodes"`
}

func runSimulate(opts *SimulateOptions, cmd *cobra.Command) error {
	profile, params, err := resolveProfile(opts.Profile)
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

	slog.Info("simulating",
		"nodes", g.Len(),
		"profile", profile.Name,
		"rtt_ms", params.RTTMs,
		"throughput_kbps", params.ThroughputKbps,
	)
	timings, err := simulate.Simulate(g, params)
	if err != nil {
		return WrapExitError(ExitFailure, "simulation failed", err)
	}

	report := simulateReport{
		Fingerprint:  g.Fingerprint(),
		Profile:      profile.Name,
		CompletionMs: timings.CompletionTime(),
	}
	for _, id := range timings.IDs() {
		timing, _ := timings.Get(id)
		report.Nodes = append(report.Nodes, nodeReport{
			NodeID:  int(id),
			Kind:    nodeKindName(g.Node(id)),
			Name:    nodeName(g.Node(id)),
			StartMs: timing.Start,
			EndMs:   timing.End,
		})
	}

	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	if opts.Format == "json" {
		return formatter.SuccessJSONOnly(report)
	}

	printTimingsTable(cmd.OutOrStdout(), report)
	return nil
}

func resolveProfile(path string) (Profile, simulate.ResourceParameters, error) {
	profile := DefaultProfile()
	if path != "" {
		loaded, err := LoadProfile(path)
		if err != nil {
			return Profile{}, simulate.ResourceParameters{}, err
		}
		profile = loaded
	}
	params, err := simulate.Resolve(simulate.ThrottlingMode(profile.Mode), profile.Parameters(), profile.Parameters())
	if err != nil {
		return Profile{}, simulate.ResourceParameters{}, err
	}
	return profile, params, nil
}

func nodeKindName(n graph.Node) string {
	if n.IsNetwork() {
		return "network"
	}
	return "cpu"
}

func nodeName(n graph.Node) string {
	if n.IsNetwork() {
		return n.Record.URL
	}
	return n.Task.Event
}

func printTimingsTable(w io.Writer, report simulateReport) {
	fmt.Fprintf(w, "Simulated completion: %.1fms (profile %s)\n\n", report.CompletionMs, report.Profile)
	table := tablewriter.NewTable(w,
		tablewriter.WithHeader([]string{"Node", "Kind", "Start(ms)", "End(ms)", "Name"}),
	)
	for _, n := range report.Nodes {
		table.Append([]string{
			fmt.Sprintf("%d", n.NodeID),
			n.Kind,
			fmt.Sprintf("%.1f", n.StartMs),
			fmt.Sprintf("%.1f", n.EndMs),
			n.Name,
		})
	}
	table.Render()
}
