package metrics

import (
	"sort"

	"github.com/roach88/lantern/internal/trace"
)

// Quiet-period definition for interactivity. The page counts as
// interactive at the start of the first window of QuietWindowMs in which
// the main thread runs no task longer than LongTaskThresholdMs and at most
// MaxConcurrentRequests network requests are in flight.
const (
	QuietWindowMs         = 5000.0
	LongTaskThresholdMs   = 50.0
	MaxConcurrentRequests = 2
)

// Observation is the real (not simulated) capture evidence interactivity
// post-processing scans: the actual task list, record list, paint
// reference, and where the trace ran out.
type Observation struct {
	Tasks                  []*trace.MainThreadTask
	Records                []trace.NetworkRecord
	FirstContentfulPaintMs float64
	TraceEndMs             float64
}

type interval struct {
	start, end float64
}

func (iv interval) intersects(lo, hi float64) bool {
	return iv.start < hi && iv.end > lo
}

// findQuietWindow locates the start of the first quiet window at or after
// max(candidateMs, FCP). Failure is a NoIdlePeriodError whose sub-code
// names the resource that never quieted, or TraceTooShort when the trace
// ended before a verdict was possible.
func findQuietWindow(obs Observation, candidateMs float64) (float64, error) {
	searchStart := candidateMs
	if obs.FirstContentfulPaintMs > searchStart {
		searchStart = obs.FirstContentfulPaintMs
	}

	cpuBusy := longTaskIntervals(obs.Tasks)
	netBusy := congestedIntervals(obs.Records)

	// Candidate window starts: the search origin plus the trailing edge of
	// every busy interval, in ascending order.
	starts := []float64{searchStart}
	for _, iv := range append(append([]interval(nil), cpuBusy...), netBusy...) {
		if iv.end > searchStart {
			starts = append(starts, iv.end)
		}
	}
	sort.Float64s(starts)

	for _, w := range starts {
		if w+QuietWindowMs > obs.TraceEndMs {
			break
		}
		if anyIntersects(cpuBusy, w, w+QuietWindowMs) {
			continue
		}
		if anyIntersects(netBusy, w, w+QuietWindowMs) {
			continue
		}
		return w, nil
	}

	return 0, &NoIdlePeriodError{
		Code:          quietFailureCode(cpuBusy, netBusy, searchStart, obs.TraceEndMs),
		SearchStartMs: searchStart,
		TraceEndMs:    obs.TraceEndMs,
	}
}

// quietFailureCode decides which resource kept the page from quieting.
// When both stayed busy, the one still busy later in the trace is blamed;
// when neither was, the trace simply ended too soon.
func quietFailureCode(cpuBusy, netBusy []interval, searchStart, traceEnd float64) IdleErrorCode {
	cpuLast := lastBusyEnd(cpuBusy, searchStart, traceEnd)
	netLast := lastBusyEnd(netBusy, searchStart, traceEnd)
	switch {
	case cpuLast < 0 && netLast < 0:
		return TraceTooShort
	case cpuLast >= netLast:
		return NoCPUIdlePeriod
	default:
		return NoNetworkIdlePeriod
	}
}

// lastBusyEnd returns the latest busy edge within the search range, or -1
// when the resource never violated quiet in it.
func lastBusyEnd(busy []interval, searchStart, traceEnd float64) float64 {
	last := -1.0
	for _, iv := range busy {
		if iv.intersects(searchStart, traceEnd) && iv.end > last {
			last = iv.end
		}
	}
	return last
}

func anyIntersects(busy []interval, lo, hi float64) bool {
	for _, iv := range busy {
		if iv.intersects(lo, hi) {
			return true
		}
	}
	return false
}

// longTaskIntervals collects every task in the tree exceeding the
// long-task threshold.
func longTaskIntervals(tasks []*trace.MainThreadTask) []interval {
	var out []interval
	var walk func(*trace.MainThreadTask)
	walk = func(t *trace.MainThreadTask) {
		if t.Duration > LongTaskThresholdMs {
			out = append(out, interval{start: t.StartTime, end: t.EndTime})
		}
		for _, child := range t.Children {
			walk(child)
		}
	}
	for _, t := range tasks {
		walk(t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].start < out[j].start })
	return out
}

// congestedIntervals sweeps the record list for spans where more than
// MaxConcurrentRequests were in flight simultaneously.
func congestedIntervals(records []trace.NetworkRecord) []interval {
	type edge struct {
		at    float64
		delta int
	}
	edges := make([]edge, 0, len(records)*2)
	for i := range records {
		rec := &records[i]
		if rec.EndTime <= rec.StartTime {
			continue
		}
		edges = append(edges, edge{at: rec.StartTime, delta: +1})
		edges = append(edges, edge{at: rec.EndTime, delta: -1})
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].at != edges[j].at {
			return edges[i].at < edges[j].at
		}
		// Ends before starts at the same instant: back-to-back requests do
		// not overlap.
		return edges[i].delta < edges[j].delta
	})

	var out []interval
	inFlight := 0
	congestedSince := -1.0
	for _, e := range edges {
		inFlight += e.delta
		switch {
		case inFlight > MaxConcurrentRequests && congestedSince < 0:
			congestedSince = e.at
		case inFlight <= MaxConcurrentRequests && congestedSince >= 0:
			out = append(out, interval{start: congestedSince, end: e.at})
			congestedSince = -1
		}
	}
	return out
}
