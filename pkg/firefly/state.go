package firefly

// State enumerates the oscillator's behavioural phases.
type State uint8

const (
	// Idle integrates toward the next flash and listens to peers.
	Idle State = iota
	// Blind ignores peers for a short while after a phase advance.
	Blind
	// Flash emits the signal.
	Flash
	// Refract follows a flash and ignores peers.
	Refract
)

// States lists every state in declaration order.
var States = [...]State{Idle, Blind, Flash, Refract}

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Blind:
		return "blind"
	case Flash:
		return "flash"
	case Refract:
		return "refract"
	default:
		return "unknown"
	}
}
