package cli

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/roach88/lantern/internal/metrics"
	"github.com/roach88/lantern/internal/simulate"
)

// profileSchema constrains throttling/calibration profiles. Defaults mirror
// the simulate package's synthetic baseline; a profile file only needs the
// fields it wants to change.
const profileSchema = `
{
	name:                        string
	mode:                        *"simulate" | "provided" | "devtools"
	rtt_ms:                      *150.0 | number & >=0
	throughput_kbps:             *1638.4 | number & >0
	cpu_slowdown_multiplier:     *4.0 | number & >=1
	max_connections_per_origin:  *6 | int & >0
	tcp_round_trips:             *1 | int & >=1
	tls_round_trips:             *2 | int & >=1
	blend_weights?: {[string]: number & >=0 & <=1}
}
`

// Profile is a named throttling/calibration configuration.
type Profile struct {
	Name                    string             `json:"name"`
	Mode                    string             `json:"mode"`
	RTTMs                   float64            `json:"rtt_ms"`
	ThroughputKbps          float64            `json:"throughput_kbps"`
	CPUSlowdownMultiplier   float64            `json:"cpu_slowdown_multiplier"`
	MaxConnectionsPerOrigin int                `json:"max_connections_per_origin"`
	TCPRoundTrips           int                `json:"tcp_round_trips"`
	TLSRoundTrips           int                `json:"tls_round_trips"`
	BlendWeights            map[string]float64 `json:"blend_weights,omitempty"`
}

// DefaultProfile returns the synthetic mobile baseline.
func DefaultProfile() Profile {
	p := simulate.Defaults()
	return Profile{
		Name:                    "default",
		Mode:                    string(simulate.ModeSimulate),
		RTTMs:                   p.RTTMs,
		ThroughputKbps:          p.ThroughputKbps,
		CPUSlowdownMultiplier:   p.CPUSlowdownMultiplier,
		MaxConnectionsPerOrigin: p.MaxConnectionsPerOrigin,
		TCPRoundTrips:           p.TCPRoundTrips,
		TLSRoundTrips:           p.TLSRoundTrips,
	}
}

// LoadProfile reads and validates a CUE profile file against the embedded
// schema. Schema violations surface as command errors with CUE's position
// information intact.
func LoadProfile(path string) (Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("read profile: %w", err)
	}

	ctx := cuecontext.New()
	schema := ctx.CompileString(profileSchema)
	if err := schema.Err(); err != nil {
		return Profile{}, fmt.Errorf("internal profile schema invalid: %w", err)
	}

	val := ctx.CompileBytes(data, cue.Filename(path))
	if err := val.Err(); err != nil {
		return Profile{}, fmt.Errorf("parse profile %s: %w", path, err)
	}

	unified := schema.Unify(val)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return Profile{}, fmt.Errorf("validate profile %s: %w", path, err)
	}

	var p Profile
	if err := unified.Decode(&p); err != nil {
		return Profile{}, fmt.Errorf("decode profile %s: %w", path, err)
	}
	return p, nil
}

// Parameters converts the profile to simulator parameters.
func (p Profile) Parameters() simulate.ResourceParameters {
	return simulate.ResourceParameters{
		RTTMs:                   p.RTTMs,
		ThroughputKbps:          p.ThroughputKbps,
		CPUSlowdownMultiplier:   p.CPUSlowdownMultiplier,
		MaxConnectionsPerOrigin: p.MaxConnectionsPerOrigin,
		TCPRoundTrips:           p.TCPRoundTrips,
		TLSRoundTrips:           p.TLSRoundTrips,
	}
}

// Weights converts the profile's blend-weight overrides to metric kinds.
// Unknown metric names are rejected at load time rather than silently
// ignored during estimation.
func (p Profile) Weights() (map[metrics.Kind]float64, error) {
	if len(p.BlendWeights) == 0 {
		return nil, nil
	}
	out := make(map[metrics.Kind]float64, len(p.BlendWeights))
	for name, w := range p.BlendWeights {
		kind, err := metrics.ParseKind(name)
		if err != nil {
			return nil, fmt.Errorf("profile %s: %w", p.Name, err)
		}
		out[kind] = w
	}
	return out, nil
}
