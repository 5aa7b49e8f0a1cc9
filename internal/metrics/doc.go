// Package metrics turns simulations into calibrated page-load metric
// estimates.
//
// For each metric kind the estimator derives two bounding projections of
// the dependency graph - an optimistic view keeping only what plausibly
// blocks the metric's defining event, and a pessimistic view keeping
// everything discovered up to it - simulates both, and blends the two
// completion times with a per-kind calibration weight.
//
// Errors never escape a metric: graph and simulation failures are folded
// into a per-metric error result at this boundary, so one broken metric
// cannot abort the rest of an audit run.
package metrics
