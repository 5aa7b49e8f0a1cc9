package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/lantern/internal/chain"
	"github.com/roach88/lantern/internal/trace"
)

// ChainsOptions holds flags for the chains command.
type ChainsOptions struct {
	*RootOptions
	Records   string
	URL       string
	Threshold string
}

// NewChainsCommand creates the chains command.
func NewChainsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ChainsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "chains",
		Short: "Extract the critical request chains",
		Long: `Filter the dependency graph down to its render-blocking lineage of
high-priority requests.

Example:
  lantern chains --records records.json --threshold Medium`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChains(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Records, "records", "", "path to network records artifact (required)")
	cmd.Flags().StringVar(&opts.URL, "url", "", "main document URL (defaults to first record)")
	cmd.Flags().StringVar(&opts.Threshold, "threshold", "Medium", "minimum priority for inclusion")
	_ = cmd.MarkFlagRequired("records")

	return cmd
}

// chainsReport is the JSON payload of the chains command.
type chainsReport struct {
	LongestMs float64                 `json:"longest_ms"`
	Chains    map[string]*chain.Chain `json:"chains"`
}

func runChains(opts *ChainsOptions, cmd *cobra.Command) error {
	artifacts, err := LoadArtifacts(opts.Records, "", opts.URL)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load artifacts", err)
	}
	g, err := artifacts.BuildGraph()
	if err != nil {
		return WrapExitError(ExitFailure, "failed to build graph", err)
	}

	extractOpts := chain.DefaultOptions()
	extractOpts.PriorityThreshold = trace.ParsePriority(opts.Threshold)
	chains := chain.Extract(g, extractOpts)

	report := chainsReport{LongestMs: chain.Longest(chains), Chains: chains}
	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	if opts.Format == "json" {
		return formatter.SuccessJSONOnly(report)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Longest chain: %.1fms\n", report.LongestMs)
	printChainTree(cmd, chains, 0)
	return nil
}

// printChainTree renders the chain tree depth-first with deterministic
// (sorted) sibling order.
func printChainTree(cmd *cobra.Command, chains map[string]*chain.Chain, depth int) {
	ids := make([]string, 0, len(chains))
	for id := range chains {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		c := chains[id]
		fmt.Fprintf(cmd.OutOrStdout(), "%s%s  %s (%s, %.1fms)\n",
			strings.Repeat("  ", depth),
			id,
			c.Request.URL,
			c.Request.Priority,
			c.Request.Duration(),
		)
		printChainTree(cmd, c.Children, depth+1)
	}
}
