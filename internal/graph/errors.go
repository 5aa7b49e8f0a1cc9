package graph

import (
	"errors"
	"fmt"
)

// CycleError reports a cycle in the dependency relation. This always
// indicates a builder defect, not bad user data: the builder absorbs
// malformed input with placeholder edges instead of producing cycles.
type CycleError struct {
	// Stuck lists the node ids left with unresolved dependencies after a
	// full topological traversal.
	Stuck []NodeID
}

// Error implements the error interface.
func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency graph contains a cycle: %d nodes unresolvable %v", len(e.Stuck), e.Stuck)
}

// IsCycleError returns true if the error is a CycleError.
// Uses errors.As to handle wrapped errors.
func IsCycleError(err error) bool {
	var ce *CycleError
	return errors.As(err, &ce)
}
