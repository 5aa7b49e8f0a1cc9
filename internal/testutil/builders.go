// Package testutil provides shared fixtures for simulation tests: compact
// record/task builders and YAML-defined scenarios for golden-file tests.
package testutil

import (
	"fmt"
	"strings"

	"github.com/roach88/lantern/internal/trace"
)

// RecordSpec is a compact description of a network record for tests.
// Zero values get sensible fixture defaults.
type RecordSpec struct {
	ID        string             `yaml:"id"`
	URL       string             `yaml:"url"`
	Initiator string             `yaml:"initiator,omitempty"`
	Start     float64            `yaml:"start"`
	End       float64            `yaml:"end"`
	Size      int64              `yaml:"size"`
	Type      trace.ResourceType `yaml:"type,omitempty"`
	Priority  string             `yaml:"priority,omitempty"`
	Redirects []string           `yaml:"redirects,omitempty"`
	Preload   bool               `yaml:"preload,omitempty"`
	Frame     string             `yaml:"frame,omitempty"`
	MimeType  string             `yaml:"mime_type,omitempty"`
}

// NewRecord materializes a RecordSpec.
func NewRecord(spec RecordSpec) trace.NetworkRecord {
	if spec.URL == "" {
		spec.URL = "http://example.com/" + spec.ID
	}
	if spec.Type == "" {
		spec.Type = trace.ResourceScript
	}
	if spec.Priority == "" {
		spec.Priority = "High"
	}
	if spec.End == 0 {
		spec.End = spec.Start + 100
	}
	if spec.Frame == "" {
		spec.Frame = "FRAME0"
	}
	return trace.NetworkRecord{
		RequestID:     spec.ID,
		URL:           spec.URL,
		Origin:        originOf(spec.URL),
		StartTime:     spec.Start,
		EndTime:       spec.End,
		TransferSize:  spec.Size,
		ResourceType:  spec.Type,
		Priority:      trace.ParsePriority(spec.Priority),
		PriorityName:  spec.Priority,
		InitiatorID:   spec.Initiator,
		RedirectChain: spec.Redirects,
		Protocol:      "h2",
		MimeType:      spec.MimeType,
		FrameID:       spec.Frame,
		IsLinkPreload: spec.Preload,
		Finished:      true,
		StatusCode:    200,
	}
}

// Records materializes a set of specs in order.
func Records(specs ...RecordSpec) []trace.NetworkRecord {
	out := make([]trace.NetworkRecord, len(specs))
	for i, spec := range specs {
		out[i] = NewRecord(spec)
	}
	return out
}

// Task builds a leaf main-thread task attributed to the given URLs.
func Task(event string, start, duration float64, urls ...string) *trace.MainThreadTask {
	return &trace.MainThreadTask{
		Event:            event,
		StartTime:        start,
		EndTime:          start + duration,
		Duration:         duration,
		SelfTime:         duration,
		AttributableURLs: urls,
	}
}

// originOf derives scheme://host from a URL the simple fixture way.
func originOf(url string) string {
	idx := strings.Index(url, "://")
	if idx < 0 {
		return url
	}
	rest := url[idx+3:]
	if slash := strings.IndexByte(rest, '/'); slash >= 0 {
		rest = rest[:slash]
	}
	return fmt.Sprintf("%s://%s", url[:idx], rest)
}
