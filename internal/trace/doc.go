// Package trace defines the immutable input model for a simulation pass:
// network-log records and main-thread task trees captured during one real
// page load.
//
// Records and tasks are created once per gathering pass and are read-only
// thereafter. Anything derived from them (critical-exclusion, favicon
// detection) is computed by pure classification functions in this package,
// never stored as mutable state on the records themselves.
package trace
