package simulate

import (
	"log/slog"
	"math"

	"github.com/roach88/lantern/internal/graph"
)

// MaxIterations bounds the event loop. One iteration processes at least
// one event, so a well-formed graph of N nodes finishes in O(N) events;
// the generous bound exists purely to catch modeling defects.
const MaxIterations = 200_000

// timeEpsilon absorbs float drift when deciding whether a download or
// task has fully drained.
const timeEpsilon = 1e-9

// Simulate assigns start/end times to every node of the graph under the
// given resource parameters.
//
// Pure function: identical (graph, params) always yield identical
// timings, the graph is never mutated, and no I/O occurs. Safe to call
// concurrently on a shared graph.
func Simulate(g *graph.Graph, params ResourceParameters) (*NodeTimings, error) {
	params = params.normalized()
	if err := params.Validate(); err != nil {
		return nil, err
	}

	s := &simulation{
		g:           g,
		params:      params,
		pool:        newConnectionPool(params.MaxConnectionsPerOrigin),
		timings:     newNodeTimings(g.Len()),
		pendingDeps: make(map[graph.NodeID]int, g.Len()),
	}
	return s.run()
}

// simulation is the per-call mutable state: clock, connection pool, CPU
// queue, and accumulating timings. Nothing in here survives the call.
type simulation struct {
	g      *graph.Graph
	params ResourceParameters

	clock   float64
	pool    *connectionPool
	timings *NodeTimings

	pendingDeps map[graph.NodeID]int
	ready       []graph.NodeID // network nodes awaiting a connection, id order
	downloads   []*download    // connection-assigned network nodes, admission order
	cpuQueue    []graph.NodeID // FIFO, never reordered
	cpuCurrent  *cpuTask

	completed int
}

// download is one in-flight network node. warmupLeft > 0 means the
// connection handshake is still in progress and the transfer is not yet
// consuming bandwidth.
type download struct {
	id         graph.NodeID
	conn       *connection
	warmupLeft float64
	bytesLeft  float64
	start      float64
}

type cpuTask struct {
	id    graph.NodeID
	left  float64
	start float64
}

func (s *simulation) run() (*NodeTimings, error) {
	// Seed the ready set with dependency-free nodes.
	for _, n := range s.g.Nodes() {
		deps := len(s.g.Dependencies(n.ID))
		s.pendingDeps[n.ID] = deps
		if deps == 0 {
			s.admit(n.ID)
		}
	}

	total := s.g.Len()
	for iterations := 0; s.completed < total; iterations++ {
		if iterations >= MaxIterations {
			err := &SimulationDivergedError{
				Iterations: iterations,
				ClockMs:    s.clock,
				Remaining:  total - s.completed,
			}
			slog.Error("simulation diverged", "error", err)
			return nil, err
		}

		s.assignConnections()
		s.startNextCPUTask()

		dt, ok := s.nextEventDelta()
		if !ok {
			// Nothing active, nothing queued, nodes unfinished: the
			// remaining dependencies can never resolve.
			return nil, &GraphCycleError{Stuck: s.unfinished()}
		}

		s.advance(dt)
		s.completeEvents()
	}

	return s.timings, nil
}

// admit moves a dependency-satisfied node into its waiting lane.
func (s *simulation) admit(id graph.NodeID) {
	n := s.g.Node(id)
	if n.IsNetwork() {
		s.ready = append(s.ready, id)
		return
	}
	// CPU tasks queue in arrival order and are never preempted.
	s.cpuQueue = append(s.cpuQueue, id)
}

// assignConnections hands connections to ready network nodes in id order.
// Nodes beyond the per-origin cap stay queued without a start time.
func (s *simulation) assignConnections() {
	var stillQueued []graph.NodeID
	for _, id := range s.ready {
		rec := s.g.Node(id).Record
		conn := s.pool.acquire(rec.Origin)
		if conn == nil {
			stillQueued = append(stillQueued, id)
			continue
		}
		warmup := 0.0
		if !conn.warm {
			roundTrips := s.params.TCPRoundTrips
			if rec.IsSecure() {
				roundTrips += s.params.TLSRoundTrips
			}
			warmup = s.params.RTTMs * float64(roundTrips)
		}
		s.downloads = append(s.downloads, &download{
			id:         id,
			conn:       conn,
			warmupLeft: warmup,
			bytesLeft:  math.Max(float64(rec.TransferSize), 0),
			start:      s.clock,
		})
	}
	s.ready = stillQueued
}

// startNextCPUTask pops the queue head into execution if the CPU is idle.
func (s *simulation) startNextCPUTask() {
	if s.cpuCurrent != nil || len(s.cpuQueue) == 0 {
		return
	}
	id := s.cpuQueue[0]
	s.cpuQueue = s.cpuQueue[1:]
	task := s.g.Node(id).Task
	s.cpuCurrent = &cpuTask{
		id:    id,
		left:  task.Duration * s.params.CPUSlowdownMultiplier,
		start: s.clock,
	}
}

// activeRate returns the per-download bandwidth in bytes per millisecond:
// a max-min fair (equal) partition of total throughput across downloads
// whose warm-up has completed.
func (s *simulation) activeRate() float64 {
	active := 0
	for _, d := range s.downloads {
		if d.warmupLeft <= 0 {
			active++
		}
	}
	if active == 0 {
		return 0
	}
	return s.params.bytesPerMs() / float64(active)
}

// nextEventDelta returns the time until the nearest event: a warm-up
// completing, a download draining at its current rate, or the executing
// CPU task finishing. ok is false when no event can ever arrive.
func (s *simulation) nextEventDelta() (float64, bool) {
	dt := math.Inf(1)
	rate := s.activeRate()
	for _, d := range s.downloads {
		if d.warmupLeft > 0 {
			dt = math.Min(dt, d.warmupLeft)
			continue
		}
		if rate > 0 {
			dt = math.Min(dt, d.bytesLeft/rate)
		}
	}
	if s.cpuCurrent != nil {
		dt = math.Min(dt, s.cpuCurrent.left)
	}
	if math.IsInf(dt, 1) {
		return 0, false
	}
	return dt, true
}

// advance moves the virtual clock by dt, draining warm-ups, transfers at
// the current fair-share rate, and the executing CPU task. Remaining bytes
// are always consumed at the rate that held before this event, which is
// what makes mid-flight repartitioning sound.
func (s *simulation) advance(dt float64) {
	rate := s.activeRate()
	s.clock += dt
	for _, d := range s.downloads {
		if d.warmupLeft > 0 {
			d.warmupLeft -= dt
			continue
		}
		d.bytesLeft -= rate * dt
	}
	if s.cpuCurrent != nil {
		s.cpuCurrent.left -= dt
	}
}

// completeEvents records end times for every drained download and the
// finished CPU task, releases connections, and re-admits newly ready
// dependents. The next loop iteration recomputes the bandwidth partition
// for the survivors.
func (s *simulation) completeEvents() {
	var remaining []*download
	for _, d := range s.downloads {
		if d.warmupLeft > timeEpsilon || d.bytesLeft > timeEpsilon {
			remaining = append(remaining, d)
			continue
		}
		s.pool.release(d.conn)
		s.finish(d.id, d.start)
	}
	s.downloads = remaining

	if s.cpuCurrent != nil && s.cpuCurrent.left <= timeEpsilon {
		s.finish(s.cpuCurrent.id, s.cpuCurrent.start)
		s.cpuCurrent = nil
	}
}

// finish stamps a node's timing and unblocks its dependents.
func (s *simulation) finish(id graph.NodeID, start float64) {
	s.timings.set(id, Timing{Start: start, End: s.clock})
	s.completed++
	for _, dep := range s.g.Dependents(id) {
		s.pendingDeps[dep]--
		if s.pendingDeps[dep] == 0 {
			s.admit(dep)
		}
	}
}

// unfinished lists nodes with no recorded end time, for cycle diagnostics.
func (s *simulation) unfinished() []graph.NodeID {
	var stuck []graph.NodeID
	for _, n := range s.g.Nodes() {
		if _, ok := s.timings.Get(n.ID); !ok {
			stuck = append(stuck, n.ID)
		}
	}
	return stuck
}
