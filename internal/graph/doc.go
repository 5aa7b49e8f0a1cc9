// Package graph builds and holds the causal dependency graph of one page
// load: every network request and main-thread task observed during the
// gathering pass, linked by "must complete first" edges.
//
// ARCHITECTURE:
//
// Arena representation:
// Nodes live in a flat slice indexed by a dense integer NodeID. Dependency
// and dependent relations are two parallel adjacency maps keyed by id.
// Nodes never hold object references to each other, so a Graph can be
// shared read-only across any number of concurrent simulations.
//
// Projections:
// Optimistic/pessimistic metric views are produced by Subset, a pure
// function returning a new Graph over a subset of ids with re-derived
// edges. The base arena is never mutated after Build.
//
// CRITICAL: the dependency relation must be acyclic. A cycle is a builder
// defect, surfaced as CycleError, never as user-visible data corruption.
package graph
