package simulate

import (
	"errors"
	"fmt"

	"github.com/roach88/lantern/internal/graph"
)

// GraphCycleError reports that the ready-set computation stalled with
// unfinished nodes whose dependencies can never complete. This indicates a
// builder bug, not bad user data: it is fatal to the metric computation
// consuming it.
type GraphCycleError struct {
	// Stuck lists the ids that never became ready.
	Stuck []graph.NodeID
}

// Error implements the error interface.
func (e *GraphCycleError) Error() string {
	return fmt.Sprintf("simulation deadlocked on a dependency cycle: %d nodes never ready %v", len(e.Stuck), e.Stuck)
}

// IsGraphCycleError returns true if the error is a GraphCycleError.
// Uses errors.As to handle wrapped errors.
func IsGraphCycleError(err error) bool {
	var ce *GraphCycleError
	return errors.As(err, &ce)
}

// SimulationDivergedError reports that the event loop exceeded its
// iteration bound. Always a modeling defect; logged distinctly from
// data-quality errors and treated as fatal.
type SimulationDivergedError struct {
	Iterations int
	ClockMs    float64
	Remaining  int
}

// Error implements the error interface.
func (e *SimulationDivergedError) Error() string {
	return fmt.Sprintf("simulation diverged: %d iterations at t=%.1fms with %d nodes unfinished",
		e.Iterations, e.ClockMs, e.Remaining)
}

// IsDivergedError returns true if the error is a SimulationDivergedError.
// Uses errors.As to handle wrapped errors.
func IsDivergedError(err error) bool {
	var de *SimulationDivergedError
	return errors.As(err, &de)
}
