// Package export replays simulated schedules as synthetic trace files for
// visualization in devtools-style viewers.
//
// The Registry is plain dependency injection: callers that want debug
// traces construct one and pass it where needed. There is no process-wide
// "last N simulations" store; the simulator knows nothing about export.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/roach88/lantern/internal/graph"
	"github.com/roach88/lantern/internal/simulate"
)

// DefaultCapacity bounds how many simulation results a Registry retains.
const DefaultCapacity = 10

// Entry is one retained simulation result.
type Entry struct {
	Label   string
	Graph   *graph.Graph
	Timings *simulate.NodeTimings
}

// Registry retains the most recent simulation results of one audit run
// for later export. Oldest entries are evicted first.
type Registry struct {
	mu       sync.Mutex
	capacity int
	entries  []Entry
}

// NewRegistry creates a registry retaining up to capacity entries.
// Non-positive capacity gets the default.
func NewRegistry(capacity int) *Registry {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Registry{capacity: capacity}
}

// Record retains one labeled simulation result.
func (r *Registry) Record(label string, g *graph.Graph, timings *simulate.NodeTimings) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, Entry{Label: label, Graph: g, Timings: timings})
	if len(r.entries) > r.capacity {
		r.entries = r.entries[len(r.entries)-r.capacity:]
	}
}

// Entries returns the retained results, oldest first.
func (r *Registry) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// traceEvent is the devtools trace-event wire shape ("X" complete events).
// Timestamps and durations are microseconds.
type traceEvent struct {
	Name      string         `json:"name"`
	Category  string         `json:"cat"`
	Phase     string         `json:"ph"`
	Timestamp int64          `json:"ts"`
	Duration  int64          `json:"dur"`
	PID       int            `json:"pid"`
	TID       int            `json:"tid"`
	Args      map[string]any `json:"args,omitempty"`
}

// Trace threads: one lane per modeled resource.
const (
	networkTID = 1
	cpuTID     = 2
)

// WriteTrace replays a simulated schedule as a synthetic trace JSON
// document. Timings are handed in explicitly by the caller; the writer
// reads nothing from ambient state.
func WriteTrace(w io.Writer, g *graph.Graph, timings *simulate.NodeTimings) error {
	events := make([]traceEvent, 0, timings.Len())
	for _, id := range timings.IDs() {
		timing, _ := timings.Get(id)
		n := g.Node(id)

		ev := traceEvent{
			Category:  "lantern",
			Phase:     "X",
			Timestamp: int64(timing.Start * 1000),
			Duration:  int64((timing.End - timing.Start) * 1000),
			PID:       1,
		}
		if n.IsNetwork() {
			ev.Name = n.Record.URL
			ev.TID = networkTID
			ev.Args = map[string]any{
				"request_id":    n.Record.RequestID,
				"transfer_size": n.Record.TransferSize,
				"resource_type": string(n.Record.ResourceType),
			}
		} else {
			ev.Name = n.Task.Event
			ev.TID = cpuTID
			ev.Args = map[string]any{
				"duration_ms": n.Task.Duration,
			}
		}
		events = append(events, ev)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(map[string]any{"traceEvents": events}); err != nil {
		return fmt.Errorf("write synthetic trace: %w", err)
	}
	return nil
}
