package export

import "time"

// SetNow overrides the clock for deterministic artifact names in tests.
func (c *Coordinator) SetNow(now func() time.Time) {
	c.now = now
}
