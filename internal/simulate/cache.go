package simulate

import (
	"sync"

	"github.com/roach88/lantern/internal/graph"
)

// Cache memoizes simulation results by (graph fingerprint, parameters)
// for the lifetime of one audit run. The same graph is simulated many
// times per run (optimistic/pessimistic x metric), so hits are common.
//
// The cache is an explicit value handed to callers, never a package-level
// registry. Entries are invalidated by dropping the whole cache at end of
// run; there is no cross-run persistence.
type Cache struct {
	mu      sync.Mutex
	entries map[cacheKey]*NodeTimings
}

type cacheKey struct {
	fingerprint string
	params      string
}

// NewCache creates an empty simulation cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[cacheKey]*NodeTimings)}
}

// Simulate returns the memoized timings for (g, params), running the
// simulator on a miss. Results are shared: callers must treat the
// returned NodeTimings as read-only.
//
// Thread-safe: concurrent callers simulating different metrics may share
// one cache. The simulator itself runs outside the lock; at worst two
// racing callers compute the same deterministic result and one write wins.
func (c *Cache) Simulate(g *graph.Graph, params ResourceParameters) (*NodeTimings, error) {
	key := cacheKey{fingerprint: g.Fingerprint(), params: params.Key()}

	c.mu.Lock()
	if timings, ok := c.entries[key]; ok {
		c.mu.Unlock()
		return timings, nil
	}
	c.mu.Unlock()

	timings, err := Simulate(g, params)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[key] = timings
	c.mu.Unlock()
	return timings, nil
}

// Len returns the number of memoized results.
// Used for testing and diagnostics.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
