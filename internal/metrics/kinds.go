package metrics

import "fmt"

// Kind identifies a predicted page-load metric.
type Kind string

const (
	FirstContentfulPaint Kind = "first-contentful-paint"
	FirstMeaningfulPaint Kind = "first-meaningful-paint"
	TimeToInteractive    Kind = "time-to-interactive"
)

// AllKinds lists every supported metric in evaluation order.
var AllKinds = []Kind{FirstContentfulPaint, FirstMeaningfulPaint, TimeToInteractive}

// BlendWeights holds the per-kind optimistic/pessimistic interpolation
// weight w: timing = optimistic + (pessimistic-optimistic) * w.
//
// These are calibration constants tuned against reference traces, not
// values derived from first principles. Paint-class metrics sit midway
// between the bounds; interactivity leans pessimistic because real pages
// rarely enjoy the optimistic view's favorable overlap for that long.
var BlendWeights = map[Kind]float64{
	FirstContentfulPaint: 0.5,
	FirstMeaningfulPaint: 0.5,
	TimeToInteractive:    0.65,
}

// Valid reports whether k names a supported metric.
func (k Kind) Valid() bool {
	_, ok := BlendWeights[k]
	return ok
}

// ParseKind converts a metric name, accepting the canonical hyphenated id.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !k.Valid() {
		return "", fmt.Errorf("unknown metric kind %q", s)
	}
	return k, nil
}
