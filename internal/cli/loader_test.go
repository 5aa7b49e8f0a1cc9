package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/lantern/internal/metrics"
)

func writeProfile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "profile.cue")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadProfile_DefaultsFill(t *testing.T) {
	path := writeProfile(t, `name: "baseline"`)

	p, err := LoadProfile(path)
	require.NoError(t, err)
	assert.Equal(t, "baseline", p.Name)
	assert.Equal(t, "simulate", p.Mode)
	assert.InDelta(t, 150.0, p.RTTMs, 1e-9)
	assert.InDelta(t, 1638.4, p.ThroughputKbps, 1e-9)
	assert.InDelta(t, 4.0, p.CPUSlowdownMultiplier, 1e-9)
	assert.Equal(t, 6, p.MaxConnectionsPerOrigin)
}

func TestLoadProfile_OverridesApply(t *testing.T) {
	path := writeProfile(t, `
name:            "desktop"
mode:            "devtools"
rtt_ms:          40.0
throughput_kbps: 10240.0
cpu_slowdown_multiplier: 1.0
`)

	p, err := LoadProfile(path)
	require.NoError(t, err)
	assert.Equal(t, "devtools", p.Mode)
	assert.InDelta(t, 40.0, p.RTTMs, 1e-9)
	assert.InDelta(t, 10240.0, p.ThroughputKbps, 1e-9)

	params := p.Parameters()
	assert.InDelta(t, 40.0, params.RTTMs, 1e-9)
	assert.InDelta(t, 1.0, params.CPUSlowdownMultiplier, 1e-9)
}

func TestLoadProfile_RejectsNegativeRTT(t *testing.T) {
	path := writeProfile(t, `
name:   "broken"
rtt_ms: -5.0
`)
	_, err := LoadProfile(path)
	assert.Error(t, err)
}

func TestLoadProfile_RejectsUnknownMode(t *testing.T) {
	path := writeProfile(t, `
name: "broken"
mode: "turbo"
`)
	_, err := LoadProfile(path)
	assert.Error(t, err)
}

func TestLoadProfile_RejectsMissingName(t *testing.T) {
	path := writeProfile(t, `rtt_ms: 100.0`)
	_, err := LoadProfile(path)
	assert.Error(t, err)
}

func TestLoadProfile_MissingFile(t *testing.T) {
	_, err := LoadProfile(filepath.Join(t.TempDir(), "nope.cue"))
	assert.Error(t, err)
}

func TestLoadProfile_BlendWeights(t *testing.T) {
	path := writeProfile(t, `
name: "calibrated"
blend_weights: {
	"time-to-interactive": 0.8
}
`)

	p, err := LoadProfile(path)
	require.NoError(t, err)

	weights, err := p.Weights()
	require.NoError(t, err)
	assert.InDelta(t, 0.8, weights[metrics.TimeToInteractive], 1e-9)
}

func TestLoadProfile_RejectsOutOfRangeWeight(t *testing.T) {
	path := writeProfile(t, `
name: "broken"
blend_weights: {
	"first-contentful-paint": 1.5
}
`)
	_, err := LoadProfile(path)
	assert.Error(t, err)
}

func TestProfileWeights_RejectsUnknownMetric(t *testing.T) {
	p := DefaultProfile()
	p.BlendWeights = map[string]float64{"speed-index": 0.5}
	_, err := p.Weights()
	assert.Error(t, err)
}

func TestDefaultProfile_MatchesSimulatorDefaults(t *testing.T) {
	p := DefaultProfile()
	params := p.Parameters()
	assert.InDelta(t, 150.0, params.RTTMs, 1e-9)
	assert.InDelta(t, 1638.4, params.ThroughputKbps, 1e-9)
	assert.Equal(t, 1, params.TCPRoundTrips)
	assert.Equal(t, 2, params.TLSRoundTrips)

	weights, err := p.Weights()
	require.NoError(t, err)
	assert.Nil(t, weights)
}
