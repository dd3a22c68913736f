package core

import "time"

// FixedStep paces simulation ticks against the wall clock so a driver can
// render at its own rate and still advance the swarm in real time.
type FixedStep struct {
	step        time.Duration
	accumulator time.Duration
	last        time.Time
	now         func() time.Time
}

// NewFixedStep constructs a FixedStep controller targeting the given TPS.
func NewFixedStep(tps int) *FixedStep {
	if tps <= 0 {
		tps = 60
	}
	fs := &FixedStep{now: time.Now}
	fs.SetTPS(tps)
	fs.accumulator = fs.step
	return fs
}

// ForTick returns a controller whose rate matches one simulated tick of
// tickMillis, so one wall second advances one simulated second.
func ForTick(tickMillis int) *FixedStep {
	if tickMillis <= 0 {
		return NewFixedStep(0)
	}
	fs := NewFixedStep(1)
	fs.step = time.Duration(tickMillis) * time.Millisecond
	fs.accumulator = fs.step
	return fs
}

// SetTPS changes the tick rate. It is safe to call from the main loop.
func (f *FixedStep) SetTPS(tps int) {
	if tps <= 0 {
		tps = 60
	}
	f.step = time.Second / time.Duration(tps)
}

// Interval returns the wall-clock duration of one tick.
func (f *FixedStep) Interval() time.Duration { return f.step }

// ShouldStep reports whether the simulation should advance by one tick.
func (f *FixedStep) ShouldStep() bool {
	return f.Pending(1) > 0
}

// Pending returns how many ticks are due, capped at max so a stalled frame
// does not trigger an unbounded catch-up burst.
func (f *FixedStep) Pending(max int) int {
	now := f.now()
	if f.last.IsZero() {
		f.last = now
	}
	f.accumulator += now.Sub(f.last)
	f.last = now
	n := 0
	for f.accumulator >= f.step && n < max {
		f.accumulator -= f.step
		n++
	}
	if n == max && f.accumulator > f.step {
		f.accumulator = f.step
	}
	return n
}
