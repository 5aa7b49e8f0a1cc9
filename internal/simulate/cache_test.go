package simulate_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/lantern/internal/graph"
	"github.com/roach88/lantern/internal/simulate"
	"github.com/roach88/lantern/internal/testutil"
)

func cacheFixture() *graph.Graph {
	return graph.Build(testutil.Records(
		testutil.RecordSpec{ID: "doc", URL: "http://example.com/", Type: "Document", Size: 102400},
		testutil.RecordSpec{ID: "a", URL: "http://example.com/a.js", Initiator: "doc", Start: 10, Size: 51200},
	), nil, "http://example.com/")
}

func TestCache_MemoizesByGraphAndParams(t *testing.T) {
	cache := simulate.NewCache()
	g := cacheFixture()

	first, err := cache.Simulate(g, simulate.Defaults())
	require.NoError(t, err)
	second, err := cache.Simulate(g, simulate.Defaults())
	require.NoError(t, err)

	assert.Same(t, first, second, "hit must return the memoized result")
	assert.Equal(t, 1, cache.Len())
}

func TestCache_DistinctParamsMiss(t *testing.T) {
	cache := simulate.NewCache()
	g := cacheFixture()

	_, err := cache.Simulate(g, simulate.Defaults())
	require.NoError(t, err)

	slower := simulate.Defaults()
	slower.RTTMs = 300
	_, err = cache.Simulate(g, slower)
	require.NoError(t, err)

	assert.Equal(t, 2, cache.Len())
}

func TestCache_DistinctGraphsMiss(t *testing.T) {
	cache := simulate.NewCache()
	g := cacheFixture()
	sub := g.Subset(func(n graph.Node) bool { return n.ID == g.Root() })

	_, err := cache.Simulate(g, simulate.Defaults())
	require.NoError(t, err)
	_, err = cache.Simulate(sub, simulate.Defaults())
	require.NoError(t, err)

	assert.Equal(t, 2, cache.Len())
}

func TestCache_ErrorsAreNotCached(t *testing.T) {
	cache := simulate.NewCache()
	g := graph.Build(testutil.Records(
		testutil.RecordSpec{ID: "a", URL: "http://example.com/", Type: "Document", Size: 1000},
		testutil.RecordSpec{ID: "b", URL: "http://example.com/b.js", Initiator: "c", Start: 50, Size: 1000},
		testutil.RecordSpec{ID: "c", URL: "http://example.com/c.js", Initiator: "b", Start: 50, Size: 1000},
	), nil, "http://example.com/")

	_, err := cache.Simulate(g, simulate.Defaults())
	require.Error(t, err)
	assert.Zero(t, cache.Len())
}

func TestCache_ConcurrentCallers(t *testing.T) {
	cache := simulate.NewCache()
	g := cacheFixture()

	want, err := simulate.Simulate(g, simulate.Defaults())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			timings, err := cache.Simulate(g, simulate.Defaults())
			assert.NoError(t, err)
			assert.InDelta(t, want.CompletionTime(), timings.CompletionTime(), 1e-9)
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, cache.Len())
}
