package firefly

// Timer is a monotonic elapsed-time counter owned by a single agent.
type Timer interface {
	Restart()
	Stop()
	HasPassed(thresholdMillis int64) bool
	Advance(ms int64)
	Elapsed() int64
}

// Rand supplies uniformly distributed values in [0, 1).
type Rand interface {
	Float64() float64
}

// Signal is one peer's output from the previous tick.
type Signal struct {
	ID     int
	Action uint8
}

// Environment is the frozen view an agent senses during a tick.
type Environment interface {
	Peers() []Signal
	Heartbeat() bool
}

// Snapshot is a ready-made Environment backed by plain values.
type Snapshot struct {
	Signals []Signal
	Beat    bool
}

// Peers returns the stored signals.
func (s Snapshot) Peers() []Signal { return s.Signals }

// Heartbeat reports whether the global beat fired.
func (s Snapshot) Heartbeat() bool { return s.Beat }
