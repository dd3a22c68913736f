package audio

import (
	"testing"

	"github.com/gopxl/beep"

	"flashsync/internal/core"
)

type recordingSink struct {
	played []beep.Streamer
}

func (r *recordingSink) Play(s beep.Streamer) { r.played = append(r.played, s) }

func drain(t *testing.T, s beep.Streamer) int {
	t.Helper()
	buf := make([][2]float64, 512)
	total := 0
	for i := 0; i < 100; i++ {
		n, ok := s.Stream(buf)
		for j := 0; j < n; j++ {
			for ch := 0; ch < 2; ch++ {
				if v := buf[j][ch]; v < -1 || v > 1 {
					t.Fatalf("sample %d out of range: %f", total+j, v)
				}
			}
		}
		total += n
		if !ok {
			return total
		}
	}
	t.Fatal("chirp never ended")
	return 0
}

func TestChirpLengthAndRange(t *testing.T) {
	cfg := DefaultChirpConfig()
	s := NewChirp(cfg, 0.5)
	if got, want := drain(t, s), cfg.SampleRate.N(cfg.Duration); got != want {
		t.Fatalf("chirp streamed %d samples, want %d", got, want)
	}
	if s.Err() != nil {
		t.Fatalf("unexpected error %v", s.Err())
	}
}

func TestEnvelopeStartsSilent(t *testing.T) {
	cfg := DefaultChirpConfig()
	cfg.Volume = 1
	s := NewChirp(cfg, 0)
	buf := make([][2]float64, 1)
	if n, _ := s.Stream(buf); n != 1 || buf[0][0] != 0 || buf[0][1] != 0 {
		t.Fatalf("first sample should be silent, got %v", buf[0])
	}
}

func TestChirperPlaysOnRisingEdges(t *testing.T) {
	sink := &recordingSink{}
	c := NewChirper(DefaultChirpConfig(), sink, 10)

	p := core.Point{X: 3, Y: 1}
	for _, action := range []uint8{0, 1, 1, 1, 0, 0, 1, 0} {
		c.Respond(7, p, action)
	}
	c.Respond(8, core.Point{X: 9}, 1)

	if len(sink.played) != 3 {
		t.Fatalf("expected 3 chirps, got %d", len(sink.played))
	}
	for _, s := range sink.played {
		drain(t, s)
	}
}
