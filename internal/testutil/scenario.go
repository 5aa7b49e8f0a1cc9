package testutil

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/lantern/internal/graph"
	"github.com/roach88/lantern/internal/simulate"
	"github.com/roach88/lantern/internal/trace"
)

// Scenario defines a simulation conformance scenario: a small captured
// pass plus the throttling parameters to simulate it under. Scenarios live
// in testdata as YAML and back the golden-file tests.
type Scenario struct {
	// Name uniquely identifies this scenario; the golden file shares it.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// MainDocumentURL anchors graph construction. Defaults to the first
	// record's URL.
	MainDocumentURL string `yaml:"main_document_url,omitempty"`

	// Records are the pass's network records in capture order.
	Records []RecordSpec `yaml:"records"`

	// Tasks are top-level main-thread tasks.
	Tasks []TaskSpec `yaml:"tasks,omitempty"`

	// Params are the simulation parameters. Zero fields use simulator
	// defaults.
	Params ParamsSpec `yaml:"params"`
}

// TaskSpec is the YAML shape of a main-thread task fixture.
type TaskSpec struct {
	Event    string   `yaml:"event"`
	Start    float64  `yaml:"start"`
	Duration float64  `yaml:"duration"`
	URLs     []string `yaml:"urls,omitempty"`
}

// ParamsSpec is the YAML shape of simulation parameters.
type ParamsSpec struct {
	RTTMs                   float64 `yaml:"rtt_ms"`
	ThroughputKbps          float64 `yaml:"throughput_kbps"`
	CPUSlowdownMultiplier   float64 `yaml:"cpu_slowdown_multiplier"`
	MaxConnectionsPerOrigin int     `yaml:"max_connections_per_origin"`
	TCPRoundTrips           int     `yaml:"tcp_round_trips"`
	TLSRoundTrips           int     `yaml:"tls_round_trips"`
}

// LoadScenario reads and parses a scenario YAML file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	if s.Name == "" {
		return nil, fmt.Errorf("scenario %s: name is required", path)
	}
	return &s, nil
}

// Build materializes the scenario into a dependency graph and parameters.
func (s *Scenario) Build() (*graph.Graph, simulate.ResourceParameters) {
	records := Records(s.Records...)
	tasks := make([]*trace.MainThreadTask, 0, len(s.Tasks))
	for _, ts := range s.Tasks {
		tasks = append(tasks, Task(ts.Event, ts.Start, ts.Duration, ts.URLs...))
	}

	mainURL := s.MainDocumentURL
	if mainURL == "" && len(records) > 0 {
		mainURL = records[0].URL
	}

	params := simulate.ResourceParameters{
		RTTMs:                   s.Params.RTTMs,
		ThroughputKbps:          s.Params.ThroughputKbps,
		CPUSlowdownMultiplier:   s.Params.CPUSlowdownMultiplier,
		MaxConnectionsPerOrigin: s.Params.MaxConnectionsPerOrigin,
		TCPRoundTrips:           s.Params.TCPRoundTrips,
		TLSRoundTrips:           s.Params.TLSRoundTrips,
	}
	return graph.Build(records, tasks, mainURL), params
}
