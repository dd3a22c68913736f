package telemetry

import (
	"context"
	"testing"

	"flashsync/internal/sims/swarm"
	"flashsync/pkg/firefly"
)

func setupTestMetrics(t *testing.T) (*Collector, *Metrics) {
	t.Helper()
	c := NewCollector()
	t.Cleanup(func() { _ = c.Shutdown(context.Background()) })

	m := NewMetrics(context.Background(), DefaultMetricsConfig())
	if m.Error() != nil {
		t.Fatalf("failed to create metrics: %v", m.Error())
	}
	return c, m
}

func TestMetricsRecordTicks(t *testing.T) {
	c, m := setupTestMetrics(t)

	m.OnTick(swarm.TickStats{Tick: 1, Onsets: 3, Heartbeat: true, Order: 0.2})
	m.OnTick(swarm.TickStats{Tick: 2, Onsets: 0, Order: 0.4})
	m.OnTransition(2, 0, firefly.Idle, firefly.Flash)
	m.OnTransition(2, 1, firefly.Flash, firefly.Refract)

	s, err := c.Collect(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if s.Flashes != 3 {
		t.Errorf("flashes = %d, want 3", s.Flashes)
	}
	if s.Heartbeats != 1 {
		t.Errorf("heartbeats = %d, want 1", s.Heartbeats)
	}
	if s.Transitions != 2 {
		t.Errorf("transitions = %d, want 2", s.Transitions)
	}
	if s.OrderCount != 2 {
		t.Errorf("order samples = %d, want 2", s.OrderCount)
	}
	if s.OrderMean < 0.299 || s.OrderMean > 0.301 {
		t.Errorf("order mean = %f, want 0.3", s.OrderMean)
	}
}

func TestMetricsObserveSwarm(t *testing.T) {
	c, m := setupTestMetrics(t)

	cfg := swarm.DefaultConfig()
	cfg.Width, cfg.Height = 8, 8
	cfg.Params.Count = 24
	s := swarm.NewWithConfig(cfg)
	s.Observe(m)

	var onsets int64
	for i := 0; i < 500; i++ {
		s.Step()
		onsets += int64(s.Stats().Onsets)
	}

	sum, err := c.Collect(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if sum.Flashes != onsets || onsets == 0 {
		t.Fatalf("flashes = %d, swarm reported %d", sum.Flashes, onsets)
	}
	if sum.OrderCount != 500 {
		t.Fatalf("order samples = %d, want 500", sum.OrderCount)
	}
	if sum.Heartbeats != 0 {
		t.Fatalf("free-running swarm has no heartbeats, got %d", sum.Heartbeats)
	}
}
