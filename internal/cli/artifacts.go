package cli

import (
	"fmt"
	"os"

	"github.com/roach88/lantern/internal/graph"
	"github.com/roach88/lantern/internal/trace"
)

// Artifacts is one gathering pass's captured evidence, loaded from the
// files the gatherer wrote.
type Artifacts struct {
	Records         []trace.NetworkRecord
	Tasks           []*trace.MainThreadTask
	MainDocumentURL string
}

// LoadArtifacts reads the network-log and task-tree artifact files.
// tasksPath may be empty: a pass without trace parsing still yields a
// network-only graph.
func LoadArtifacts(recordsPath, tasksPath, mainDocumentURL string) (*Artifacts, error) {
	rf, err := os.Open(recordsPath)
	if err != nil {
		return nil, fmt.Errorf("open records artifact: %w", err)
	}
	defer rf.Close()

	records, err := trace.DecodeRecords(rf)
	if err != nil {
		return nil, err
	}

	var tasks []*trace.MainThreadTask
	if tasksPath != "" {
		tf, err := os.Open(tasksPath)
		if err != nil {
			return nil, fmt.Errorf("open tasks artifact: %w", err)
		}
		defer tf.Close()

		tasks, err = trace.DecodeTasks(tf)
		if err != nil {
			return nil, err
		}
	}

	if mainDocumentURL == "" && len(records) > 0 {
		mainDocumentURL = records[0].URL
	}

	return &Artifacts{
		Records:         records,
		Tasks:           tasks,
		MainDocumentURL: mainDocumentURL,
	}, nil
}

// BuildGraph constructs the dependency graph for the pass and validates
// the acyclicity invariant before anything downstream consumes it.
func (a *Artifacts) BuildGraph() (*graph.Graph, error) {
	g := graph.Build(a.Records, a.Tasks, a.MainDocumentURL)
	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("graph construction: %w", err)
	}
	return g, nil
}
