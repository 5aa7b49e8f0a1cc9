package trace

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePriority_KnownNames(t *testing.T) {
	assert.Equal(t, PriorityVeryLow, ParsePriority("VeryLow"))
	assert.Equal(t, PriorityLow, ParsePriority("Low"))
	assert.Equal(t, PriorityMedium, ParsePriority("Medium"))
	assert.Equal(t, PriorityHigh, ParsePriority("High"))
	assert.Equal(t, PriorityVeryHigh, ParsePriority("VeryHigh"))
}

func TestParsePriority_UnknownDefaultsToLow(t *testing.T) {
	assert.Equal(t, PriorityLow, ParsePriority("Bogus"))
}

func TestPriority_Ordering(t *testing.T) {
	assert.True(t, PriorityVeryLow < PriorityLow)
	assert.True(t, PriorityLow < PriorityMedium)
	assert.True(t, PriorityMedium < PriorityHigh)
	assert.True(t, PriorityHigh < PriorityVeryHigh)
}

func TestIsFavicon_ByURL(t *testing.T) {
	r := &NetworkRecord{URL: "http://example.com/favicon.ico", MimeType: "image/png"}
	assert.True(t, IsFavicon(r))
}

func TestIsFavicon_ByMimeType(t *testing.T) {
	r := &NetworkRecord{URL: "http://example.com/icon", MimeType: "image/x-icon"}
	assert.True(t, IsFavicon(r))
	r.MimeType = "image/vnd.microsoft.icon"
	assert.True(t, IsFavicon(r))
}

func TestIsFavicon_RegularImage(t *testing.T) {
	r := &NetworkRecord{URL: "http://example.com/hero.png", MimeType: "image/png"}
	assert.False(t, IsFavicon(r))
}

func TestIsIframeDocument(t *testing.T) {
	iframe := &NetworkRecord{ResourceType: ResourceDocument, FrameID: "CHILD"}
	assert.True(t, IsIframeDocument(iframe, "MAIN"))

	mainDoc := &NetworkRecord{ResourceType: ResourceDocument, FrameID: "MAIN"}
	assert.False(t, IsIframeDocument(mainDoc, "MAIN"))

	script := &NetworkRecord{ResourceType: ResourceScript, FrameID: "CHILD"}
	assert.False(t, IsIframeDocument(script, "MAIN"), "only documents count as iframe loads")
}

func TestIsCriticalExcluded(t *testing.T) {
	preload := &NetworkRecord{ResourceType: ResourceScript, IsLinkPreload: true, FrameID: "MAIN"}
	assert.True(t, IsCriticalExcluded(preload, "MAIN"))

	iframe := &NetworkRecord{ResourceType: ResourceDocument, FrameID: "CHILD"}
	assert.True(t, IsCriticalExcluded(iframe, "MAIN"))

	favicon := &NetworkRecord{URL: "http://example.com/favicon.ico", FrameID: "MAIN"}
	assert.True(t, IsCriticalExcluded(favicon, "MAIN"))

	script := &NetworkRecord{URL: "http://example.com/app.js", ResourceType: ResourceScript, FrameID: "MAIN"}
	assert.False(t, IsCriticalExcluded(script, "MAIN"))
}

func TestDecodeRecords_DerivesPriority(t *testing.T) {
	payload := `[
		{"request_id": "1", "url": "https://example.com/", "priority": "VeryHigh", "resource_type": "Document"},
		{"request_id": "2", "url": "https://example.com/a.js", "priority": "Medium"}
	]`
	records, err := DecodeRecords(strings.NewReader(payload))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, PriorityVeryHigh, records[0].Priority)
	assert.Equal(t, PriorityMedium, records[1].Priority)
	assert.Equal(t, ResourceOther, records[1].ResourceType, "missing resource type defaults to Other")
}

func TestDecodeRecords_Malformed(t *testing.T) {
	_, err := DecodeRecords(strings.NewReader("{not json"))
	assert.Error(t, err)
}

func TestDecodeTasks_Nested(t *testing.T) {
	payload := `[
		{"event": "RunTask", "start_time": 0, "end_time": 120, "duration": 120, "self_time": 20,
		 "children": [{"event": "EvaluateScript", "start_time": 20, "end_time": 120, "duration": 100, "self_time": 100,
		               "attributable_urls": ["https://example.com/a.js"]}]}
	]`
	tasks, err := DecodeTasks(strings.NewReader(payload))
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	require.Len(t, tasks[0].Children, 1)
	assert.Equal(t, "https://example.com/a.js", tasks[0].Children[0].TopAttributableURL())
	assert.Empty(t, tasks[0].TopAttributableURL())
}

func TestNetworkRecord_IsSecure(t *testing.T) {
	assert.True(t, (&NetworkRecord{URL: "https://example.com/"}).IsSecure())
	assert.False(t, (&NetworkRecord{URL: "http://example.com/"}).IsSecure())
}
