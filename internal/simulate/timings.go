package simulate

import (
	"sort"

	"github.com/roach88/lantern/internal/graph"
)

// Timing is one node's simulated schedule slot, in virtual milliseconds.
type Timing struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// NodeTimings maps node ids to simulated start/end times. Produced fresh
// by every Simulate call and never aliased back into the graph.
type NodeTimings struct {
	byNode map[graph.NodeID]Timing
}

func newNodeTimings(capacity int) *NodeTimings {
	return &NodeTimings{byNode: make(map[graph.NodeID]Timing, capacity)}
}

// Get returns the timing for a node, with ok reporting presence.
func (t *NodeTimings) Get(id graph.NodeID) (Timing, bool) {
	timing, ok := t.byNode[id]
	return timing, ok
}

// Len returns the number of scheduled nodes.
func (t *NodeTimings) Len() int { return len(t.byNode) }

// IDs returns all scheduled node ids in ascending order.
func (t *NodeTimings) IDs() []graph.NodeID {
	ids := make([]graph.NodeID, 0, len(t.byNode))
	for id := range t.byNode {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// CompletionTime returns the simulated overall completion in milliseconds:
// the maximum end time across all nodes.
func (t *NodeTimings) CompletionTime() float64 {
	max := 0.0
	for _, timing := range t.byNode {
		if timing.End > max {
			max = timing.End
		}
	}
	return max
}

func (t *NodeTimings) set(id graph.NodeID, timing Timing) {
	t.byNode[id] = timing
}
