package simulate

import "fmt"

// Connection warm-up cost model. A fresh connection pays RTTMs times the
// applicable round-trip count before its first byte arrives.
//
// DefaultTLSRoundTrips is a calibration constant, not derived from first
// principles: TLS 1.2 full handshakes cost closer to 3 round trips, TLS
// 1.3 closer to 2. Override per ResourceParameters when calibrating
// against reference traces.
const (
	DefaultTCPRoundTrips = 1
	DefaultTLSRoundTrips = 2

	// DefaultMaxConnectionsPerOrigin mirrors the per-origin connection cap
	// of contemporary browsers.
	DefaultMaxConnectionsPerOrigin = 6
)

// ThrottlingMode selects how ResourceParameters relate to the conditions
// the artifacts were captured under.
type ThrottlingMode string

const (
	// ModeProvided uses values observed live during capture.
	ModeProvided ThrottlingMode = "provided"
	// ModeDevTools reflects emulated throttling applied during capture.
	ModeDevTools ThrottlingMode = "devtools"
	// ModeSimulate uses synthetic parameters chosen independently of
	// capture conditions. This is the mode Lantern exists for.
	ModeSimulate ThrottlingMode = "simulate"
)

// ValidThrottlingModes defines the allowed mode names.
var ValidThrottlingModes = map[ThrottlingMode]bool{
	ModeProvided: true,
	ModeDevTools: true,
	ModeSimulate: true,
}

// ResourceParameters is the full set of resource constraints for one
// simulation. Pure value type: it is copied into the simulation and never
// mutated mid-run, so it can double as a cache key component.
type ResourceParameters struct {
	RTTMs                   float64
	ThroughputKbps          float64
	CPUSlowdownMultiplier   float64
	MaxConnectionsPerOrigin int
	TCPRoundTrips           int
	TLSRoundTrips           int
}

// Defaults returns simulation parameters modeling a mid-tier mobile device
// on a slow 4G link, the standard synthetic baseline.
func Defaults() ResourceParameters {
	return ResourceParameters{
		RTTMs:                   150,
		ThroughputKbps:          1638.4,
		CPUSlowdownMultiplier:   4,
		MaxConnectionsPerOrigin: DefaultMaxConnectionsPerOrigin,
		TCPRoundTrips:           DefaultTCPRoundTrips,
		TLSRoundTrips:           DefaultTLSRoundTrips,
	}
}

// normalized fills zero-valued fields with defaults so callers can specify
// only what they care about.
func (p ResourceParameters) normalized() ResourceParameters {
	if p.MaxConnectionsPerOrigin <= 0 {
		p.MaxConnectionsPerOrigin = DefaultMaxConnectionsPerOrigin
	}
	if p.TCPRoundTrips <= 0 {
		p.TCPRoundTrips = DefaultTCPRoundTrips
	}
	if p.TLSRoundTrips <= 0 {
		p.TLSRoundTrips = DefaultTLSRoundTrips
	}
	if p.CPUSlowdownMultiplier <= 0 {
		p.CPUSlowdownMultiplier = 1
	}
	return p
}

// Validate rejects parameter sets the simulator cannot schedule under.
func (p ResourceParameters) Validate() error {
	if p.RTTMs < 0 {
		return fmt.Errorf("rtt must be non-negative, got %v", p.RTTMs)
	}
	if p.ThroughputKbps <= 0 {
		return fmt.Errorf("throughput must be positive, got %v", p.ThroughputKbps)
	}
	return nil
}

// Key returns a canonical string identity for the parameter set, used
// together with the graph fingerprint as a memoization key.
func (p ResourceParameters) Key() string {
	p = p.normalized()
	return fmt.Sprintf("rtt=%.3f|tput=%.3f|cpu=%.3f|conns=%d|tcp=%d|tls=%d",
		p.RTTMs, p.ThroughputKbps, p.CPUSlowdownMultiplier,
		p.MaxConnectionsPerOrigin, p.TCPRoundTrips, p.TLSRoundTrips)
}

// bytesPerMs converts the throughput setting to the unit the event loop
// works in.
func (p ResourceParameters) bytesPerMs() float64 {
	return p.ThroughputKbps * 1024 / 8 / 1000
}

// Resolve maps a throttling mode plus the observed capture conditions to
// the parameters a simulation should run under.
//
// For ModeProvided and ModeDevTools the observed values are authoritative
// (the capture already ran under them); for ModeSimulate the synthetic
// values win and observed conditions are ignored.
func Resolve(mode ThrottlingMode, observed, synthetic ResourceParameters) (ResourceParameters, error) {
	if !ValidThrottlingModes[mode] {
		return ResourceParameters{}, fmt.Errorf("unknown throttling mode %q", mode)
	}
	switch mode {
	case ModeSimulate:
		return synthetic.normalized(), nil
	default:
		return observed.normalized(), nil
	}
}
