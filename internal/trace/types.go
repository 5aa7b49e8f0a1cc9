package trace

import "fmt"

// Priority is the browser-assigned request priority.
// The ordering VeryLow < Low < Medium < High < VeryHigh is significant:
// critical chain extraction compares priorities against a threshold.
type Priority int

const (
	PriorityVeryLow Priority = iota
	PriorityLow
	PriorityMedium
	PriorityHigh
	PriorityVeryHigh
)

var priorityNames = map[Priority]string{
	PriorityVeryLow:  "VeryLow",
	PriorityLow:      "Low",
	PriorityMedium:   "Medium",
	PriorityHigh:     "High",
	PriorityVeryHigh: "VeryHigh",
}

// String returns the devtools protocol name for the priority.
func (p Priority) String() string {
	if name, ok := priorityNames[p]; ok {
		return name
	}
	return fmt.Sprintf("Priority(%d)", int(p))
}

// ParsePriority converts a devtools protocol priority name.
// Unknown names default to Low rather than failing: a single record with
// an unrecognized priority must not abort graph construction.
func ParsePriority(s string) Priority {
	for p, name := range priorityNames {
		if name == s {
			return p
		}
	}
	return PriorityLow
}

// ResourceType is the devtools protocol resource type of a request.
type ResourceType string

const (
	ResourceDocument   ResourceType = "Document"
	ResourceStylesheet ResourceType = "Stylesheet"
	ResourceScript     ResourceType = "Script"
	ResourceImage      ResourceType = "Image"
	ResourceFont       ResourceType = "Font"
	ResourceMedia      ResourceType = "Media"
	ResourceXHR        ResourceType = "XHR"
	ResourceFetch      ResourceType = "Fetch"
	ResourceOther      ResourceType = "Other"
)

// NetworkRecord is a single structured network-log entry.
//
// INVARIANTS:
//   - RequestID is unique within one gathering pass
//   - A redirect chain of length N lists the N prior record ids, in order,
//     for the same logical navigation; the final record carries the chain
//   - Records are never mutated after parse
//
// Times are milliseconds relative to the trace origin.
type NetworkRecord struct {
	RequestID            string       `json:"request_id"`
	URL                  string       `json:"url"`
	Origin               string       `json:"origin"`
	StartTime            float64      `json:"start_time"`
	EndTime              float64      `json:"end_time"`
	ResponseReceivedTime float64      `json:"response_received_time"`
	TransferSize         int64        `json:"transfer_size"`
	ResourceType         ResourceType `json:"resource_type"`
	Priority             Priority     `json:"-"`
	PriorityName         string       `json:"priority"`
	InitiatorID          string       `json:"initiator_id,omitempty"`
	RedirectChain        []string     `json:"redirect_chain,omitempty"`
	Protocol             string       `json:"protocol"`
	MimeType             string       `json:"mime_type"`
	FrameID              string       `json:"frame_id"`
	IsLinkPreload        bool         `json:"is_link_preload"`
	Finished             bool         `json:"finished"`
	Failed               bool         `json:"failed"`
	StatusCode           int          `json:"status_code"`
}

// Duration returns the wall time the request occupied, in milliseconds.
func (r *NetworkRecord) Duration() float64 {
	return r.EndTime - r.StartTime
}

// IsSecure reports whether the request was carried over TLS.
// Secure requests pay extra warm-up round trips on a fresh connection.
func (r *NetworkRecord) IsSecure() bool {
	return len(r.URL) >= 8 && r.URL[:8] == "https://"
}

// MainThreadTask is one node of the parsed main-thread task tree.
// SelfTime excludes time attributed to Children.
type MainThreadTask struct {
	Event            string            `json:"event"`
	StartTime        float64           `json:"start_time"`
	EndTime          float64           `json:"end_time"`
	Duration         float64           `json:"duration"`
	SelfTime         float64           `json:"self_time"`
	AttributableURLs []string          `json:"attributable_urls,omitempty"`
	Children         []*MainThreadTask `json:"children,omitempty"`
}

// TopAttributableURL returns the topmost URL from the task's call stack,
// or "" when the task carries no attribution.
func (t *MainThreadTask) TopAttributableURL() string {
	if len(t.AttributableURLs) == 0 {
		return ""
	}
	return t.AttributableURLs[0]
}
