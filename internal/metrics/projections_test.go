package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/lantern/internal/graph"
	"github.com/roach88/lantern/internal/testutil"
	"github.com/roach88/lantern/internal/trace"
)

func projectionFixture() *graph.Graph {
	records := testutil.Records(
		testutil.RecordSpec{ID: "doc", URL: "http://example.com/", Type: "Document", Size: 102400},
		testutil.RecordSpec{ID: "css", URL: "http://example.com/s.css", Initiator: "doc", Start: 10, Size: 51200, Type: "Stylesheet"},
		testutil.RecordSpec{ID: "img", URL: "http://example.com/hero.jpg", Initiator: "doc", Start: 10, Size: 102400, Type: "Image"},
		testutil.RecordSpec{ID: "late", URL: "http://example.com/late.js", Initiator: "doc", Start: 5000, Size: 51200},
	)
	tasks := []*trace.MainThreadTask{testutil.Task("EvaluateScript", 300, 80, "http://example.com/s.css")}
	return graph.Build(records, tasks, "http://example.com/")
}

func ids(g *graph.Graph) []graph.NodeID {
	out := make([]graph.NodeID, 0, g.Len())
	for _, n := range g.Nodes() {
		out = append(out, n.ID)
	}
	return out
}

func TestOptimisticGraph_PaintKeepsOnlyRenderBlocking(t *testing.T) {
	g := projectionFixture()
	sub := optimisticGraph(FirstContentfulPaint, g, 1000)

	// doc and css survive; the image is non-blocking, the late script
	// started after the reference, and CPU work is dropped entirely.
	assert.ElementsMatch(t, []graph.NodeID{0, 1}, ids(sub))
}

func TestOptimisticGraph_InteractiveKeepsCPUWork(t *testing.T) {
	g := projectionFixture()
	sub := optimisticGraph(TimeToInteractive, g, 1000)

	// Node 4 is the main-thread task; only the late script is dropped.
	assert.ElementsMatch(t, []graph.NodeID{0, 1, 2, 4}, ids(sub))
}

func TestPessimisticGraph_PaintKeepsEverythingBeforeReference(t *testing.T) {
	g := projectionFixture()
	sub := pessimisticGraph(FirstContentfulPaint, g, 1000)

	assert.ElementsMatch(t, []graph.NodeID{0, 1, 2, 4}, ids(sub))
}

func TestPessimisticGraph_InteractiveIsWholeGraph(t *testing.T) {
	g := projectionFixture()
	sub := pessimisticGraph(TimeToInteractive, g, 1000)

	assert.Equal(t, g.Len(), sub.Len())
}

func TestProjections_DoNotMutateBase(t *testing.T) {
	g := projectionFixture()
	before := g.Fingerprint()
	_ = optimisticGraph(FirstContentfulPaint, g, 1000)
	_ = pessimisticGraph(TimeToInteractive, g, 1000)
	require.Equal(t, before, g.Fingerprint())
	assert.Equal(t, 5, g.Len())
}
