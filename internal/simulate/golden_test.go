package simulate_test

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"

	"github.com/roach88/lantern/internal/graph"
	"github.com/roach88/lantern/internal/simulate"
	"github.com/roach88/lantern/internal/testutil"
)

type nodeSnapshot struct {
	Node    int     `json:"node"`
	Label   string  `json:"label"`
	StartMs float64 `json:"start_ms"`
	EndMs   float64 `json:"end_ms"`
}

type simulationSnapshot struct {
	Scenario     string         `json:"scenario"`
	CompletionMs float64        `json:"completion_ms"`
	Nodes        []nodeSnapshot `json:"nodes"`
}

func snapshot(t *testing.T, name string, g *graph.Graph, timings *simulate.NodeTimings) []byte {
	t.Helper()
	snap := simulationSnapshot{Scenario: name, CompletionMs: timings.CompletionTime()}
	for _, id := range timings.IDs() {
		n := g.Node(id)
		label := n.RequestID()
		if !n.IsNetwork() {
			label = n.Task.Event
		}
		timing, _ := timings.Get(id)
		snap.Nodes = append(snap.Nodes, nodeSnapshot{
			Node:    int(id),
			Label:   label,
			StartMs: timing.Start,
			EndMs:   timing.End,
		})
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	require.NoError(t, err)
	return data
}

func TestSimulate_Scenarios(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("testdata", "*.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, paths, "no scenario fixtures found")

	for _, path := range paths {
		scenario, err := testutil.LoadScenario(path)
		require.NoError(t, err, path)

		t.Run(scenario.Name, func(t *testing.T) {
			g, params := scenario.Build()
			require.NoError(t, g.Validate())

			timings, err := simulate.Simulate(g, params)
			require.NoError(t, err)

			gold := goldie.New(t,
				goldie.WithFixtureDir(filepath.Join("testdata", "golden")),
				goldie.WithNameSuffix(".golden"),
			)
			gold.Assert(t, scenario.Name, snapshot(t, scenario.Name, g, timings))
		})
	}
}
