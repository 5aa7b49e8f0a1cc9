// Package simulate implements the Lantern load simulator: a pure,
// deterministic, event-driven scheduler that assigns start/end times to
// every node of a dependency graph under synthetic network and CPU
// constraints.
//
// ARCHITECTURE:
//
// Single-threaded virtual time:
// Concurrency is modeled, not executed. A monotonic virtual clock advances
// from event to event - download completions, connection warm-ups, CPU
// task completions - with no real threads, locks, or I/O anywhere in the
// loop. All mutable state (connection pool, CPU queue, accumulating
// timings) is local to one Simulate call, so the same immutable graph can
// be simulated from many goroutines at once.
//
// CRITICAL PATTERNS:
//
// Determinism:
// Identical (graph, parameters) always yield identical NodeTimings. Ready
// nodes are admitted in ascending id order, active downloads iterate in
// ascending id order, and the CPU queue is strictly FIFO. No wall-clock
// reads, no map-order iteration on the hot path.
//
// Bounded iteration:
// The loop is finite by construction, and a step bound guards against
// modeling defects. Exceeding it is a defect (SimulationDivergedError),
// never a data-quality problem.
package simulate
