package failover

import "sync/atomic"

// Counter is the sequence counter shared by the active Producer and the Monitor.
//
// All operations are atomic but uncoordinated: a Store from the Monitor and an
// Inc from the Producer may interleave in any order and the last write wins.
type Counter struct {
	v atomic.Uint64
}

// NewCounter creates a counter starting at start.
func NewCounter(start uint64) *Counter {
	c := &Counter{}
	c.v.Store(start)
	return c
}

// Load returns the current value.
func (c *Counter) Load() uint64 {
	return c.v.Load()
}

// Store overwrites the value.
func (c *Counter) Store(v uint64) {
	c.v.Store(v)
}

// Inc adds one and returns the new value.
func (c *Counter) Inc() uint64 {
	return c.v.Add(1)
}

// Advance adds n and returns the new value.
func (c *Counter) Advance(n uint64) uint64 {
	return c.v.Add(n)
}

// ObserveMax raises the value to v if v is larger and reports whether it did.
// It never moves the counter backwards.
func (c *Counter) ObserveMax(v uint64) bool {
	for {
		cur := c.v.Load()
		if v <= cur {
			return false
		}
		if c.v.CompareAndSwap(cur, v) {
			return true
		}
	}
}
