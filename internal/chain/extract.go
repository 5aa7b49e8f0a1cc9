package chain

import (
	"github.com/roach88/lantern/internal/graph"
	"github.com/roach88/lantern/internal/trace"
)

// Chain is one level of the critical request chain tree, keyed by request
// id in its parent's Children map.
type Chain struct {
	Request  *trace.NetworkRecord `json:"request"`
	Children map[string]*Chain    `json:"children"`
}

// Options controls chain extraction.
type Options struct {
	// PriorityThreshold is the minimum priority for inclusion.
	PriorityThreshold trace.Priority
}

// DefaultOptions returns the extraction defaults: Medium priority cutoff.
func DefaultOptions() Options {
	return Options{PriorityThreshold: trace.PriorityMedium}
}

// Extract filters the graph down to its critical request chains, returned
// as a tree keyed by request id.
//
// A node is included iff its priority meets the threshold AND it is not
// critical-excluded (favicon, iframe document, link preload). When a node
// fails inclusion its entire subtree is pruned from that branch; sibling
// branches are evaluated independently.
//
// Redirect hops appear as nested single-child levels keyed by their own
// intermediate ids, with the final record as the last level's key, because
// the builder represents redirects as single-child dependency hops.
func Extract(g *graph.Graph, opts Options) map[string]*Chain {
	if g == nil || g.Len() == 0 {
		return map[string]*Chain{}
	}

	result := make(map[string]*Chain)
	root := g.Node(g.Root())
	switch {
	case included(g, root, opts):
		c := &Chain{Request: root.Record, Children: make(map[string]*Chain)}
		result[root.RequestID()] = c
		descend(g, root.ID, c.Children, opts)
	case root.Record.RequestID == graph.PlaceholderRequestID:
		// The synthetic root stands in for a missing main document and
		// carries no request of its own; its children are the real
		// top-level candidates. A real root that fails inclusion prunes
		// its subtree like any other node.
		descend(g, root.ID, result, opts)
	}

	// Secondary roots (records with unresolvable initiators) are chain
	// candidates in their own right, subject to the same pruning.
	for _, n := range g.Nodes() {
		if n.ID == g.Root() || len(g.Dependencies(n.ID)) > 0 {
			continue
		}
		if !included(g, n, opts) {
			continue
		}
		if _, ok := result[n.RequestID()]; ok {
			continue
		}
		c := &Chain{Request: n.Record, Children: make(map[string]*Chain)}
		result[n.RequestID()] = c
		descend(g, n.ID, c.Children, opts)
	}
	return result
}

// descend evaluates the dependents of id, inserting included nodes into
// parent and recursing.
func descend(g *graph.Graph, id graph.NodeID, parent map[string]*Chain, opts Options) {
	for _, depID := range g.Dependents(id) {
		n := g.Node(depID)
		if !included(g, n, opts) {
			// Prune this subtree; siblings continue independently.
			continue
		}
		c, ok := parent[n.RequestID()]
		if !ok {
			c = &Chain{Request: n.Record, Children: make(map[string]*Chain)}
			parent[n.RequestID()] = c
		}
		descend(g, depID, c.Children, opts)
	}
}

func included(g *graph.Graph, n graph.Node, opts Options) bool {
	if !n.IsNetwork() {
		return false
	}
	if n.Record.RequestID == graph.PlaceholderRequestID {
		return false
	}
	if n.Record.Priority < opts.PriorityThreshold {
		return false
	}
	return !trace.IsCriticalExcluded(n.Record, g.MainFrameID())
}

// Longest returns the duration in milliseconds of the longest chain in the
// extracted tree, measured from the earliest start to the latest end along
// a single lineage.
func Longest(chains map[string]*Chain) float64 {
	longest := 0.0
	for _, c := range chains {
		if d := depthDuration(c, c.Request.StartTime); d > longest {
			longest = d
		}
	}
	return longest
}

func depthDuration(c *Chain, start float64) float64 {
	best := c.Request.EndTime - start
	for _, child := range c.Children {
		if d := depthDuration(child, start); d > best {
			best = d
		}
	}
	return best
}
