package metrics

import (
	"fmt"
	"log/slog"

	"github.com/roach88/lantern/internal/graph"
	"github.com/roach88/lantern/internal/simulate"
)

// Estimate is one bounding projection's outcome, kept on the result for
// diagnostics and debug-trace export only.
type Estimate struct {
	TimingMs    float64               `json:"timing_ms"`
	NodeTimings *simulate.NodeTimings `json:"-"`
	Graph       *graph.Graph          `json:"-"`
}

// MetricResult is the calibrated estimate for one metric.
type MetricResult struct {
	Kind        Kind     `json:"kind"`
	TimingMs    float64  `json:"timing_ms"`
	Optimistic  Estimate `json:"optimistic"`
	Pessimistic Estimate `json:"pessimistic"`
}

// Estimator runs bounding simulations and blends them. The simulation
// cache is injected so every metric of one audit run shares memoized
// results; weights default to BlendWeights but are overridable for
// calibration work.
type Estimator struct {
	cache   *simulate.Cache
	weights map[Kind]float64
}

// EstimatorOption configures an Estimator.
type EstimatorOption func(*Estimator)

// WithBlendWeights overrides the per-kind interpolation weights.
// Missing kinds fall back to the defaults.
func WithBlendWeights(weights map[Kind]float64) EstimatorOption {
	return func(e *Estimator) {
		for k, w := range weights {
			e.weights[k] = w
		}
	}
}

// NewEstimator creates an Estimator over the given simulation cache.
// A nil cache gets a private one.
func NewEstimator(cache *simulate.Cache, opts ...EstimatorOption) *Estimator {
	if cache == nil {
		cache = simulate.NewCache()
	}
	e := &Estimator{cache: cache, weights: make(map[Kind]float64, len(BlendWeights))}
	for k, w := range BlendWeights {
		e.weights[k] = w
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Estimate computes the calibrated timing for one metric.
//
// refTimestamp is the metric's defining event in real-trace milliseconds;
// obs carries the real task/record lists for interactivity
// post-processing (ignored for paint-class metrics).
func (e *Estimator) Estimate(kind Kind, g *graph.Graph, refTimestamp float64, obs Observation, params simulate.ResourceParameters) (*MetricResult, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("estimate: unknown metric kind %q", kind)
	}
	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("estimate %s: %w", kind, err)
	}

	optimistic, err := e.bound(kind, optimisticGraph(kind, g, refTimestamp), params)
	if err != nil {
		return nil, fmt.Errorf("estimate %s (optimistic): %w", kind, err)
	}
	pessimistic, err := e.bound(kind, pessimisticGraph(kind, g, refTimestamp), params)
	if err != nil {
		return nil, fmt.Errorf("estimate %s (pessimistic): %w", kind, err)
	}

	w := e.weights[kind]
	timing := optimistic.TimingMs + (pessimistic.TimingMs-optimistic.TimingMs)*w

	if kind == TimeToInteractive {
		quiet, err := findQuietWindow(obs, timing)
		if err != nil {
			return nil, err
		}
		if quiet > timing {
			timing = quiet
		}
	}

	slog.Debug("metric estimated",
		"kind", kind,
		"timing_ms", timing,
		"optimistic_ms", optimistic.TimingMs,
		"pessimistic_ms", pessimistic.TimingMs,
		"weight", w,
	)

	return &MetricResult{
		Kind:        kind,
		TimingMs:    timing,
		Optimistic:  optimistic,
		Pessimistic: pessimistic,
	}, nil
}

// EstimateAll computes every requested metric, converting per-metric
// failures into error results instead of aborting the pass. This is the
// propagation boundary: graph and simulation errors stop here.
func (e *Estimator) EstimateAll(kinds []Kind, g *graph.Graph, refs map[Kind]float64, obs Observation, params simulate.ResourceParameters) []Result {
	results := make([]Result, 0, len(kinds))
	for _, kind := range kinds {
		metric, err := e.Estimate(kind, g, refs[kind], obs, params)
		if err != nil {
			slog.Warn("metric computation failed",
				"kind", kind,
				"error", err,
			)
			results = append(results, Result{Kind: kind, Err: err})
			continue
		}
		results = append(results, Result{Kind: kind, Metric: metric})
	}
	return results
}

// bound simulates one projection through the shared cache.
func (e *Estimator) bound(kind Kind, projection *graph.Graph, params simulate.ResourceParameters) (Estimate, error) {
	timings, err := e.cache.Simulate(projection, params)
	if err != nil {
		return Estimate{}, err
	}
	return Estimate{
		TimingMs:    timings.CompletionTime(),
		NodeTimings: timings,
		Graph:       projection,
	}, nil
}
