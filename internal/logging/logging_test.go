package logging

import (
	"bytes"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/felixgeelhaar/bolt/v3"

	"flashsync/pkg/firefly"
)

func testLogger() (*bolt.Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return New(Config{Level: "trace", Format: "json", Output: buf}), buf
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	config := DefaultConfig()
	if config.Level != "info" {
		t.Errorf("Level = %s, want info", config.Level)
	}
	if config.Format != "console" {
		t.Errorf("Format = %s, want console", config.Format)
	}
	if config.Output != os.Stderr {
		t.Errorf("Output = %v, want os.Stderr", config.Output)
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected bolt.Level
	}{
		{"trace", bolt.TRACE},
		{"debug", bolt.DEBUG},
		{"info", bolt.INFO},
		{"warn", bolt.WARN},
		{"error", bolt.ERROR},
		{"unknown", bolt.INFO},
		{"", bolt.INFO},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			if got := parseLevel(tt.input); got != tt.expected {
				t.Errorf("parseLevel(%s) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestFields(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		field Field
		want  string
	}{
		{"sim", Sim("fireflies"), `"sim":"fireflies"`},
		{"run", RunID("abc"), `"run_id":"abc"`},
		{"tick", Tick(42), `"tick":42`},
		{"seed", Seed(7), `"seed":7`},
		{"agent", Agent(3), `"agent":3`},
		{"from", Transition(firefly.Idle, firefly.Flash), `"from_state":"idle"`},
		{"to", Transition(firefly.Idle, firefly.Flash), `"to_state":"flash"`},
		{"order", Order(0.5), `"order":"0.5"`},
		{"count", Count("flashes", 9), `"flashes":9`},
		{"duration", Duration(250 * time.Millisecond), `"duration_ms":250`},
		{"path", Path("swarm.yaml"), `"path":"swarm.yaml"`},
		{"flag", Flag("heartbeat", true), `"heartbeat":true`},
		{"component", Component("recorder"), `"component":"recorder"`},
		{"str", Str("k", "v"), `"k":"v"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			logger, buf := testLogger()
			tt.field(logger.Info()).Msg("test")
			if !bytes.Contains(buf.Bytes(), []byte(tt.want)) {
				t.Errorf("expected %s in output: %s", tt.want, buf.String())
			}
		})
	}
}

func TestErrorFieldNil(t *testing.T) {
	t.Parallel()

	logger, buf := testLogger()
	ErrorField(nil)(logger.Info()).Msg("ok")
	if bytes.Contains(buf.Bytes(), []byte(`"error"`)) {
		t.Errorf("nil error should add nothing: %s", buf.String())
	}

	buf.Reset()
	ErrorField(errors.New("boom"))(logger.Error()).Msg("failed")
	if !bytes.Contains(buf.Bytes(), []byte("boom")) {
		t.Errorf("expected error text in output: %s", buf.String())
	}
}

func TestLevelFiltersEvents(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	logger := New(Config{Level: "warn", Format: "json", Output: buf})
	NewEvent(logger.Info()).Add(Tick(1)).Msg("hidden")
	if buf.Len() != 0 {
		t.Fatalf("info should be filtered at warn level: %s", buf.String())
	}
	NewEvent(logger.Warn()).Add(Tick(2)).Msg("shown")
	if !bytes.Contains(buf.Bytes(), []byte("shown")) {
		t.Fatalf("expected warn event: %s", buf.String())
	}
}
