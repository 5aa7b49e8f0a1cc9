package trace

import (
	"net/url"
	"path"
	"strings"
)

// Classification of records is derived, never stored: records are shared
// read-only across every simulation of a pass, so exclusion must be a pure
// function of the record, not a flag set on it.

// faviconMimeTypes are the mime types browsers report for icon fetches.
// Filename-pattern matching is heuristic, not protocol-guaranteed; the
// patterns here are intentionally narrow.
var faviconMimeTypes = map[string]bool{
	"image/x-icon":             true,
	"image/vnd.microsoft.icon": true,
}

// IsFavicon reports whether the record looks like a favicon fetch.
func IsFavicon(r *NetworkRecord) bool {
	if faviconMimeTypes[r.MimeType] {
		return true
	}
	u, err := url.Parse(r.URL)
	if err != nil {
		return false
	}
	base := strings.ToLower(path.Base(u.Path))
	return base == "favicon.ico"
}

// IsIframeDocument reports whether the record is a document loaded into a
// frame other than the main frame.
func IsIframeDocument(r *NetworkRecord, mainFrameID string) bool {
	return r.ResourceType == ResourceDocument && r.FrameID != "" && r.FrameID != mainFrameID
}

// IsCriticalExcluded reports whether the record is excluded from critical
// chain extraction. Excluded records still participate in simulation: a
// favicon download consumes bandwidth whether or not it blocks render.
func IsCriticalExcluded(r *NetworkRecord, mainFrameID string) bool {
	if r.IsLinkPreload {
		return true
	}
	if IsIframeDocument(r, mainFrameID) {
		return true
	}
	return IsFavicon(r)
}
