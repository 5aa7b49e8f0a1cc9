package metrics

import (
	"github.com/roach88/lantern/internal/graph"
	"github.com/roach88/lantern/internal/trace"
)

// Projections are pure functions from a base graph to a read-only bounded
// view. The base arena is never touched; see graph.Subset.

// renderBlockingTypes are the resource types that can hold up first paint.
var renderBlockingTypes = map[trace.ResourceType]bool{
	trace.ResourceDocument:   true,
	trace.ResourceStylesheet: true,
	trace.ResourceScript:     true,
	trace.ResourceFont:       true,
}

// optimisticGraph keeps only nodes plausibly on a path to the metric's
// defining event at refTimestamp. Below-the-fold and non-blocking
// resources are treated as removable from the critical path.
func optimisticGraph(kind Kind, g *graph.Graph, refTimestamp float64) *graph.Graph {
	mainFrame := g.MainFrameID()
	switch kind {
	case TimeToInteractive:
		// Everything that started before the reference still gates
		// interactivity; CPU work is never removable for this class.
		return g.Subset(func(n graph.Node) bool {
			if !n.IsNetwork() {
				return true
			}
			return n.Record.StartTime <= refTimestamp && !trace.IsCriticalExcluded(n.Record, mainFrame)
		})
	default:
		// Paint-class: render-blocking network work discovered before the
		// event, nothing else.
		return g.Subset(func(n graph.Node) bool {
			if !n.IsNetwork() {
				return false
			}
			rec := n.Record
			return rec.StartTime <= refTimestamp &&
				renderBlockingTypes[rec.ResourceType] &&
				!trace.IsCriticalExcluded(rec, mainFrame)
		})
	}
}

// pessimisticGraph keeps every node discovered up to refTimestamp,
// assuming no favorable overlap. For interactivity the whole graph is the
// bound: late work can still push the quiet window out.
func pessimisticGraph(kind Kind, g *graph.Graph, refTimestamp float64) *graph.Graph {
	if kind == TimeToInteractive {
		return g.Subset(func(graph.Node) bool { return true })
	}
	return g.Subset(func(n graph.Node) bool {
		if n.IsNetwork() {
			return n.Record.StartTime <= refTimestamp
		}
		return n.Task.StartTime <= refTimestamp
	})
}
