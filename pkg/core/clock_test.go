package core

import "testing"

func TestStopwatchLifecycle(t *testing.T) {
	clock := NewClock()
	sw := clock.NewTimer()

	clock.Advance(100)
	if sw.Elapsed() != 0 || sw.HasPassed(0) {
		t.Fatal("stopped stopwatch must report nothing elapsed")
	}

	sw.Restart()
	clock.Advance(40)
	if sw.Elapsed() != 40 {
		t.Fatalf("elapsed = %d, want 40", sw.Elapsed())
	}
	if !sw.HasPassed(40) || sw.HasPassed(41) {
		t.Fatal("HasPassed must compare inclusively against elapsed time")
	}

	sw.Advance(25)
	if sw.Elapsed() != 65 {
		t.Fatalf("elapsed after fast-forward = %d, want 65", sw.Elapsed())
	}

	sw.Stop()
	sw.Advance(1000)
	if sw.Running() || sw.Elapsed() != 0 {
		t.Fatal("fast-forwarding a stopped stopwatch must be a no-op")
	}
}

func TestClockIgnoresNegativeAdvance(t *testing.T) {
	clock := NewClock()
	clock.Advance(10)
	clock.Advance(-5)
	if clock.Now() != 10 {
		t.Fatalf("now = %d, want 10", clock.Now())
	}
	clock.Reset()
	if clock.Now() != 0 {
		t.Fatalf("reset clock reads %d", clock.Now())
	}
}

func TestRNGDeterministic(t *testing.T) {
	a := NewRNG(42)
	b := NewRNG(42)
	for i := 0; i < 100; i++ {
		if a.Float64() != b.Float64() {
			t.Fatalf("draw %d differs between equal seeds", i)
		}
	}
	if NewRNG(1).IntN(0) != 0 {
		t.Fatal("IntN(0) should return 0")
	}
}
