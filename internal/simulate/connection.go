package simulate

// connection models one TCP connection to an origin. A connection that has
// completed its warm-up once stays warm for the rest of the simulation;
// reuse pays no further handshake cost.
type connection struct {
	origin string
	warm   bool
	busy   bool
}

// connectionPool tracks connections per origin, bounded by the per-origin
// cap. Connections live for one Simulate call only.
type connectionPool struct {
	maxPerOrigin int
	byOrigin     map[string][]*connection
}

func newConnectionPool(maxPerOrigin int) *connectionPool {
	return &connectionPool{
		maxPerOrigin: maxPerOrigin,
		byOrigin:     make(map[string][]*connection),
	}
}

// acquire returns an idle connection for the origin, preferring a warm one,
// opening a fresh connection while under the cap. Returns nil when the
// origin is saturated; the caller's node stays queued.
func (p *connectionPool) acquire(origin string) *connection {
	conns := p.byOrigin[origin]
	var idle *connection
	for _, c := range conns {
		if c.busy {
			continue
		}
		if c.warm {
			c.busy = true
			return c
		}
		if idle == nil {
			idle = c
		}
	}
	if idle != nil {
		idle.busy = true
		return idle
	}
	if len(conns) >= p.maxPerOrigin {
		return nil
	}
	c := &connection{origin: origin}
	p.byOrigin[origin] = append(p.byOrigin[origin], c)
	c.busy = true
	return c
}

// release returns a connection to the pool. The completed transfer leaves
// it warm.
func (p *connectionPool) release(c *connection) {
	c.busy = false
	c.warm = true
}
