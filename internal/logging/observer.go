package logging

import (
	"github.com/felixgeelhaar/bolt/v3"

	"flashsync/internal/sims/swarm"
	"flashsync/pkg/firefly"
)

// TransitionLogger is a swarm observer that traces every state change and
// reports the order parameter every Every ticks at debug level.
type TransitionLogger struct {
	logger *bolt.Logger
	sim    string
	// Every is the tick interval of progress lines; 0 disables them.
	Every int64
}

var _ swarm.Observer = (*TransitionLogger)(nil)

// NewTransitionLogger logs through l, or the default logger when l is nil.
func NewTransitionLogger(l *bolt.Logger, sim string, every int64) *TransitionLogger {
	return &TransitionLogger{logger: l, sim: sim, Every: every}
}

func (t *TransitionLogger) get() *bolt.Logger {
	if t.logger != nil {
		return t.logger
	}
	return Get()
}

// OnTransition implements swarm.Observer.
func (t *TransitionLogger) OnTransition(tick int64, id int, from, to firefly.State) {
	NewEvent(t.get().Trace()).
		Add(Sim(t.sim)).
		Add(Tick(tick)).
		Add(Agent(id)).
		Add(Transition(from, to)).
		Msg("transition")
}

// OnTick implements swarm.Observer.
func (t *TransitionLogger) OnTick(st swarm.TickStats) {
	if t.Every <= 0 || st.Tick%t.Every != 0 {
		return
	}
	NewEvent(t.get().Debug()).
		Add(Sim(t.sim)).
		Add(Tick(st.Tick)).
		Add(Count("flashing", st.Flashing)).
		Add(Order(st.Order)).
		Msg("progress")
}
