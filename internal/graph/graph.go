package graph

import (
	"sort"

	"github.com/roach88/lantern/internal/trace"
)

// NodeID is a dense arena index. IDs are assigned in construction order
// and are stable for the lifetime of the pass.
type NodeID int

// NodeKind distinguishes the two halves of the tagged union.
type NodeKind int

const (
	// KindNetwork nodes wrap one network-log record.
	KindNetwork NodeKind = iota
	// KindCPU nodes wrap one top-level main-thread task.
	KindCPU
)

// Node is one vertex of the dependency graph. Exactly one of Record or
// Task is set, according to Kind. A placeholder root (empty input) is a
// network node with a synthetic record.
type Node struct {
	ID     NodeID
	Kind   NodeKind
	Record *trace.NetworkRecord
	Task   *trace.MainThreadTask
}

// IsNetwork reports whether the node is a network node.
func (n Node) IsNetwork() bool { return n.Kind == KindNetwork }

// RequestID returns the wrapped record's request id, or "" for CPU nodes.
func (n Node) RequestID() string {
	if n.Record == nil {
		return ""
	}
	return n.Record.RequestID
}

// Graph is an immutable arena of nodes plus adjacency maps.
// All mutation happens inside Build; afterwards the graph is read-only
// and safe for concurrent use.
type Graph struct {
	nodes       []Node
	deps        map[NodeID][]NodeID // node -> nodes that must complete first
	dependents  map[NodeID][]NodeID // inverse of deps
	root        NodeID
	mainFrameID string
}

// Len returns the number of nodes in the graph.
func (g *Graph) Len() int { return len(g.nodes) }

// Root returns the id of the main document node.
func (g *Graph) Root() NodeID { return g.root }

// MainFrameID returns the frame id of the main document, used by the
// critical-exclusion classifier.
func (g *Graph) MainFrameID() string { return g.mainFrameID }

// Node returns the node with the given id.
// Panics on an id outside the arena: ids are internal, a bad one is a bug.
func (g *Graph) Node(id NodeID) Node { return g.nodes[id] }

// Nodes returns all nodes in id order. The returned slice is shared;
// callers must not modify it.
func (g *Graph) Nodes() []Node { return g.nodes }

// Dependencies returns the ids that must complete before id may start,
// in ascending order. The returned slice is shared; callers must not
// modify it.
func (g *Graph) Dependencies(id NodeID) []NodeID { return g.deps[id] }

// Dependents returns the ids unblocked by id's completion, in ascending
// order. The returned slice is shared; callers must not modify it.
func (g *Graph) Dependents(id NodeID) []NodeID { return g.dependents[id] }

// Subset returns a new read-only graph over the nodes for which keep
// returns true. Edges are re-derived: a kept node depends on its nearest
// kept ancestors, so ordering constraints survive the removal of
// intermediate nodes. The receiver is not modified.
func (g *Graph) Subset(keep func(Node) bool) *Graph {
	kept := make(map[NodeID]bool, len(g.nodes))
	for _, n := range g.nodes {
		if keep(n) {
			kept[n.ID] = true
		}
	}
	// The root survives every projection: simulation needs an entry point
	// even when the predicate rejects the main document.
	kept[g.root] = true

	sub := &Graph{
		deps:        make(map[NodeID][]NodeID),
		dependents:  make(map[NodeID][]NodeID),
		root:        g.root,
		mainFrameID: g.mainFrameID,
	}
	for _, n := range g.nodes {
		if !kept[n.ID] {
			continue
		}
		sub.nodes = append(sub.nodes, n)
		ancestors := g.nearestKeptAncestors(n.ID, kept)
		sub.deps[n.ID] = ancestors
		for _, a := range ancestors {
			sub.dependents[a] = append(sub.dependents[a], n.ID)
		}
	}
	for id := range sub.dependents {
		sortIDs(sub.dependents[id])
	}
	return sub
}

// nearestKeptAncestors walks up through dropped nodes and collects, for
// each dependency path, the first ancestor present in the kept set.
func (g *Graph) nearestKeptAncestors(id NodeID, kept map[NodeID]bool) []NodeID {
	found := make(map[NodeID]bool)
	seen := make(map[NodeID]bool)
	var walk func(NodeID)
	walk = func(cur NodeID) {
		for _, dep := range g.deps[cur] {
			if kept[dep] {
				found[dep] = true
				continue
			}
			if seen[dep] {
				continue
			}
			seen[dep] = true
			walk(dep)
		}
	}
	walk(id)

	out := make([]NodeID, 0, len(found))
	for dep := range found {
		out = append(out, dep)
	}
	sortIDs(out)
	return out
}

// Validate checks the acyclicity invariant with a Kahn traversal.
// Returns a CycleError naming the stuck nodes if one exists.
func (g *Graph) Validate() error {
	indegree := make(map[NodeID]int, len(g.nodes))
	for _, n := range g.nodes {
		indegree[n.ID] = len(g.deps[n.ID])
	}
	queue := make([]NodeID, 0, len(g.nodes))
	for _, n := range g.nodes {
		if indegree[n.ID] == 0 {
			queue = append(queue, n.ID)
		}
	}
	visited := 0
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		visited++
		for _, dep := range g.dependents[id] {
			indegree[dep]--
			if indegree[dep] == 0 {
				queue = append(queue, dep)
			}
		}
	}
	if visited != len(g.nodes) {
		var stuck []NodeID
		for id, deg := range indegree {
			if deg > 0 {
				stuck = append(stuck, id)
			}
		}
		sortIDs(stuck)
		return &CycleError{Stuck: stuck}
	}
	return nil
}

func sortIDs(ids []NodeID) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}
