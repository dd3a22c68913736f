package logging

import (
	"bytes"
	"strings"
	"testing"

	"flashsync/internal/sims/swarm"
	"flashsync/pkg/firefly"
)

func TestTransitionLogger(t *testing.T) {
	t.Parallel()

	logger, buf := testLogger()
	tl := NewTransitionLogger(logger, "fireflies", 100)

	tl.OnTransition(12, 4, firefly.Idle, firefly.Flash)
	for _, want := range []string{`"tick":12`, `"agent":4`, `"to_state":"flash"`, `"transition"`} {
		if !bytes.Contains(buf.Bytes(), []byte(want)) {
			t.Fatalf("expected %s in %s", want, buf.String())
		}
	}

	buf.Reset()
	tl.OnTick(swarm.TickStats{Tick: 99, Order: 0.4})
	if buf.Len() != 0 {
		t.Fatalf("tick 99 should not report progress: %s", buf.String())
	}
	tl.OnTick(swarm.TickStats{Tick: 200, Flashing: 3, Order: 0.75})
	out := buf.String()
	if !strings.Contains(out, `"flashing":3`) || !strings.Contains(out, `"order":"0.75"`) {
		t.Fatalf("unexpected progress line %s", out)
	}
}

func TestTransitionLoggerRespectsLevel(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	tl := NewTransitionLogger(New(Config{Level: "info", Format: "json", Output: buf}), "fireflies", 1)
	tl.OnTransition(1, 0, firefly.Flash, firefly.Refract)
	tl.OnTick(swarm.TickStats{Tick: 1})
	if buf.Len() != 0 {
		t.Fatalf("trace and debug lines should be filtered at info: %s", buf.String())
	}
}
