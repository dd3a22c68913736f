package core

// Clock is a logical millisecond clock. It only moves when a driver advances it,
// which keeps simulations reproducible regardless of wall-clock jitter.
type Clock struct {
	now int64
}

// NewClock returns a clock reading zero.
func NewClock() *Clock { return &Clock{} }

// Now reports the current logical time in milliseconds.
func (c *Clock) Now() int64 { return c.now }

// Advance moves the clock forward. Negative values are ignored.
func (c *Clock) Advance(ms int64) {
	if ms > 0 {
		c.now += ms
	}
}

// Reset rewinds the clock to zero. Stopwatches created earlier keep their
// start marks, so callers should restart them afterwards.
func (c *Clock) Reset() { c.now = 0 }

// NewTimer returns a stopped Stopwatch reading this clock.
func (c *Clock) NewTimer() *Stopwatch {
	return &Stopwatch{clock: c}
}

// Stopwatch measures elapsed logical time since its last restart.
type Stopwatch struct {
	clock   *Clock
	start   int64
	running bool
}

// Restart zeroes the elapsed time and starts the stopwatch.
func (s *Stopwatch) Restart() {
	s.start = s.clock.now
	s.running = true
}

// Stop halts the stopwatch. A stopped stopwatch reports zero elapsed time.
func (s *Stopwatch) Stop() {
	s.start = s.clock.now
	s.running = false
}

// Running reports whether the stopwatch has been started.
func (s *Stopwatch) Running() bool { return s.running }

// Elapsed returns the milliseconds since the last restart.
func (s *Stopwatch) Elapsed() int64 {
	if !s.running {
		return 0
	}
	return s.clock.now - s.start
}

// HasPassed reports whether at least threshold milliseconds have elapsed.
func (s *Stopwatch) HasPassed(threshold int64) bool {
	return s.running && s.Elapsed() >= threshold
}

// Advance fast-forwards a running stopwatch by ms milliseconds.
func (s *Stopwatch) Advance(ms int64) {
	if !s.running || ms <= 0 {
		return
	}
	s.start -= ms
}
