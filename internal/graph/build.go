package graph

import (
	"log/slog"

	"github.com/roach88/lantern/internal/trace"
)

// PlaceholderRequestID identifies the synthetic root created for an empty
// record list. Downstream consumers treat it like any other record.
const PlaceholderRequestID = "__placeholder__"

// Build constructs the dependency graph for one gathering pass.
//
// Construction is total: malformed input degrades to placeholder structure
// (secondary roots, unattributed CPU attachment) rather than failing.
// Errors are reserved for invariant violations detected after the fact
// via Validate.
//
// Edge rules:
//   - a record's initiator becomes a dependency, provided the initiator is
//     present and started no later than the record (temporal causality
//     filters out back-references produced by out-of-order logs);
//   - a redirect chain of length N becomes N sequential single-child hops
//     ending at the final record;
//   - each top-level CPU task depends on the network node that produced
//     its first attributable stack URL, falling back to the nearest
//     network node preceding it in time, then to the root.
func Build(records []trace.NetworkRecord, tasks []*trace.MainThreadTask, mainDocumentURL string) *Graph {
	b := &builder{
		g: &Graph{
			deps:       make(map[NodeID][]NodeID),
			dependents: make(map[NodeID][]NodeID),
		},
		byRequestID: make(map[string]NodeID),
		byURL:       make(map[string]NodeID),
	}

	if len(records) == 0 {
		slog.Debug("building placeholder graph: no network records")
		placeholder := &trace.NetworkRecord{
			RequestID:    PlaceholderRequestID,
			URL:          mainDocumentURL,
			ResourceType: trace.ResourceDocument,
			Priority:     trace.PriorityVeryHigh,
		}
		b.addNetworkNode(placeholder)
		b.finish()
		return b.g
	}

	for i := range records {
		b.addNetworkNode(&records[i])
	}
	b.wireInitiators(records)
	b.wireRedirects(records)
	b.chooseRoot(records, mainDocumentURL)
	b.attachTasks(tasks)
	b.finish()

	slog.Debug("dependency graph built",
		"nodes", b.g.Len(),
		"records", len(records),
		"tasks", len(tasks),
		"root", b.g.root,
	)
	return b.g
}

type builder struct {
	g           *Graph
	byRequestID map[string]NodeID
	byURL       map[string]NodeID
}

func (b *builder) addNetworkNode(rec *trace.NetworkRecord) NodeID {
	id := NodeID(len(b.g.nodes))
	b.g.nodes = append(b.g.nodes, Node{ID: id, Kind: KindNetwork, Record: rec})
	b.byRequestID[rec.RequestID] = id
	// First record wins per URL so attribution resolves to the request
	// that actually produced the resource.
	if _, ok := b.byURL[rec.URL]; !ok {
		b.byURL[rec.URL] = id
	}
	return id
}

func (b *builder) addCPUNode(task *trace.MainThreadTask) NodeID {
	id := NodeID(len(b.g.nodes))
	b.g.nodes = append(b.g.nodes, Node{ID: id, Kind: KindCPU, Task: task})
	return id
}

// addDependency records that dep must complete before id starts.
// Self-edges and duplicates are dropped.
func (b *builder) addDependency(id, dep NodeID) {
	if id == dep {
		return
	}
	for _, existing := range b.g.deps[id] {
		if existing == dep {
			return
		}
	}
	b.g.deps[id] = append(b.g.deps[id], dep)
}

func (b *builder) wireInitiators(records []trace.NetworkRecord) {
	for i := range records {
		rec := &records[i]
		if rec.InitiatorID == "" {
			continue
		}
		initiator, ok := b.byRequestID[rec.InitiatorID]
		if !ok {
			// Out-of-order log: the node becomes a secondary root.
			slog.Debug("initiator not found, attaching as secondary root",
				"request_id", rec.RequestID,
				"initiator_id", rec.InitiatorID,
			)
			continue
		}
		// Temporal causality guard: an initiator that started after its
		// supposed dependent is log noise and would risk a cycle.
		if b.g.nodes[initiator].Record.StartTime > rec.StartTime {
			continue
		}
		b.addDependency(b.byRequestID[rec.RequestID], initiator)
	}
}

// wireRedirects re-keys redirect chains: each hop becomes an intermediate
// single-child node keyed by its own id, with the final record inheriting
// the original hop's position in the graph.
func (b *builder) wireRedirects(records []trace.NetworkRecord) {
	for i := range records {
		rec := &records[i]
		if len(rec.RedirectChain) == 0 {
			continue
		}
		final := b.byRequestID[rec.RequestID]
		prev := NodeID(-1)
		for _, hopID := range rec.RedirectChain {
			hop, ok := b.byRequestID[hopID]
			if !ok {
				continue
			}
			if prev >= 0 {
				b.addDependency(hop, prev)
			}
			prev = hop
		}
		if prev >= 0 {
			b.addDependency(final, prev)
		}
	}
}

// chooseRoot selects the main document node. When the main navigation was
// redirected, the root is the first hop of the chain: every other node is
// causally downstream of that initial request.
func (b *builder) chooseRoot(records []trace.NetworkRecord, mainDocumentURL string) {
	main := NodeID(0)
	for i := range records {
		rec := &records[i]
		if rec.URL == mainDocumentURL && rec.ResourceType == trace.ResourceDocument {
			main = b.byRequestID[rec.RequestID]
			break
		}
	}
	mainRec := b.g.nodes[main].Record
	b.g.mainFrameID = mainRec.FrameID

	root := main
	if len(mainRec.RedirectChain) > 0 {
		if first, ok := b.byRequestID[mainRec.RedirectChain[0]]; ok {
			root = first
		}
	}
	// The root anchors the graph; it owes nothing to anyone.
	delete(b.g.deps, root)
	b.g.root = root
}

func (b *builder) attachTasks(tasks []*trace.MainThreadTask) {
	for _, task := range tasks {
		id := b.addCPUNode(task)
		b.addDependency(id, b.attachmentFor(task))
	}
}

// attachmentFor resolves the network node a CPU task depends on.
func (b *builder) attachmentFor(task *trace.MainThreadTask) NodeID {
	if url := firstAttributableURL(task); url != "" {
		if owner, ok := b.byURL[url]; ok {
			return owner
		}
	}
	// No attribution: nearest network node already finished when the task
	// started, falling back to the root.
	best := b.g.root
	bestEnd := -1.0
	for _, n := range b.g.nodes {
		if n.Kind != KindNetwork {
			continue
		}
		if n.Record.EndTime <= task.StartTime && n.Record.EndTime > bestEnd {
			best = n.ID
			bestEnd = n.Record.EndTime
		}
	}
	return best
}

// firstAttributableURL walks the task tree depth-first for the topmost
// stack URL.
func firstAttributableURL(task *trace.MainThreadTask) string {
	if url := task.TopAttributableURL(); url != "" {
		return url
	}
	for _, child := range task.Children {
		if url := firstAttributableURL(child); url != "" {
			return url
		}
	}
	return ""
}

// finish freezes the arena: dependency lists are sorted and the dependent
// adjacency is derived as their exact inverse.
func (b *builder) finish() {
	for id := range b.g.deps {
		sortIDs(b.g.deps[id])
	}
	for _, n := range b.g.nodes {
		for _, dep := range b.g.deps[n.ID] {
			b.g.dependents[dep] = append(b.g.dependents[dep], n.ID)
		}
	}
	for id := range b.g.dependents {
		sortIDs(b.g.dependents[id])
	}
}
