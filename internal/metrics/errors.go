package metrics

import (
	"errors"
	"fmt"
)

// IdleErrorCode names the reason interactivity could not be determined.
type IdleErrorCode string

const (
	// NoCPUIdlePeriod: the main thread never quieted for a full window.
	NoCPUIdlePeriod IdleErrorCode = "NO_CPU_IDLE_PERIOD"
	// NoNetworkIdlePeriod: more than two requests stayed in flight through
	// every candidate window.
	NoNetworkIdlePeriod IdleErrorCode = "NO_NETWORK_IDLE_PERIOD"
	// TraceTooShort: the trace ended within one window of the paint
	// reference, so no verdict is possible either way.
	TraceTooShort IdleErrorCode = "TRACE_TOO_SHORT"
)

// NoIdlePeriodError is the legitimate "could not determine interactivity"
// outcome. It is a named, user-facing error code, not a crash: the audit
// layer surfaces it as a per-metric result. Code blames the resource that
// never quieted: NoCPUIdlePeriod means the main thread stayed busy,
// NoNetworkIdlePeriod means the network did.
type NoIdlePeriodError struct {
	Code IdleErrorCode
	// SearchStartMs is where the quiet-window scan began.
	SearchStartMs float64
	// TraceEndMs is where the observation ran out.
	TraceEndMs float64
}

// Error implements the error interface.
func (e *NoIdlePeriodError) Error() string {
	return fmt.Sprintf("%s: no %.0fms quiet window between %.1fms and end of trace (%.1fms)",
		e.Code, QuietWindowMs, e.SearchStartMs, e.TraceEndMs)
}

// IsNoIdlePeriodError returns true if the error is a NoIdlePeriodError.
// Uses errors.As to handle wrapped errors.
func IsNoIdlePeriodError(err error) bool {
	var ne *NoIdlePeriodError
	return errors.As(err, &ne)
}

// Result carries one metric's outcome across the error boundary: either a
// populated estimate or the error that prevented it, never both. Graph and
// simulation failures stop at this type instead of aborting the run.
type Result struct {
	Kind   Kind          `json:"kind"`
	Metric *MetricResult `json:"metric,omitempty"`
	Err    error         `json:"-"`
}

// ErrorCode returns a stable code string for a failed result, or "".
func (r Result) ErrorCode() string {
	if r.Err == nil {
		return ""
	}
	var ie *NoIdlePeriodError
	if errors.As(r.Err, &ie) {
		return string(ie.Code)
	}
	return "METRIC_COMPUTATION_FAILED"
}
