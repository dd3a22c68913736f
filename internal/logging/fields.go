package logging

import (
	"strconv"
	"time"

	"github.com/felixgeelhaar/bolt/v3"

	"flashsync/pkg/firefly"
)

// Field is a function that applies structured data to a log event.
type Field func(*bolt.Event) *bolt.Event

// Sim adds the simulation name.
func Sim(name string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("sim", name)
	}
}

// RunID adds a recording run ID.
func RunID(id string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("run_id", id)
	}
}

// Tick adds the simulation tick.
func Tick(tick int64) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Int64("tick", tick)
	}
}

// Seed adds the RNG seed.
func Seed(seed int64) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Int64("seed", seed)
	}
}

// Agent adds a firefly id.
func Agent(id int) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Int("agent", id)
	}
}

// Transition adds from_state and to_state fields.
func Transition(from, to firefly.State) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("from_state", from.String()).Str("to_state", to.String())
	}
}

// Order adds the swarm order parameter.
func Order(r float64) Field {
	return Float("order", r)
}

// Float adds a float field formatted with the shortest exact representation.
func Float(key string, v float64) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str(key, strconv.FormatFloat(v, 'f', -1, 64))
	}
}

// Count adds an integer field with a custom key.
func Count(key string, n int) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Int(key, n)
	}
}

// Duration adds a duration field in milliseconds.
func Duration(d time.Duration) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Int64("duration_ms", d.Milliseconds())
	}
}

// Path adds a file path field.
func Path(p string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("path", p)
	}
}

// Flag adds a boolean field with a custom key.
func Flag(key string, v bool) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Bool(key, v)
	}
}

// ErrorField adds an error field.
func ErrorField(err error) Field {
	return func(e *bolt.Event) *bolt.Event {
		if err == nil {
			return e
		}
		return e.Err(err)
	}
}

// Component adds a component field for categorization.
func Component(name string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("component", name)
	}
}

// Str adds a string field with custom key.
func Str(key, value string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str(key, value)
	}
}
