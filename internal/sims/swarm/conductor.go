package swarm

// conductor emits a global heartbeat each time the clock crosses a multiple of
// its period.
type conductor struct {
	period int64
	last   int64
}

func (c *conductor) reset(periodMillis int64) {
	c.period = periodMillis
	c.last = 0
}

// setPeriod changes the interval without beating for the time already past.
func (c *conductor) setPeriod(periodMillis, now int64) {
	c.period = periodMillis
	c.last = 0
	if periodMillis > 0 {
		c.last = now / periodMillis
	}
}

func (c *conductor) step(now int64) bool {
	if c.period <= 0 {
		return false
	}
	k := now / c.period
	if k > c.last {
		c.last = k
		return true
	}
	return false
}
