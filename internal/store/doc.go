// Package store persists one audit run's simulation results and metric
// estimates to SQLite for later reporting.
//
// The archive is strictly diagnostic: the simulator and estimator never
// touch it, and nothing in it feeds back into a computation. Rows are
// scoped to a run id; there is no cross-run invalidation to manage because
// cached simulation results never outlive the run that produced them.
package store
