// Package audio turns flash onsets into short chirps.
package audio

import (
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
)

// ChirpConfig shapes a single chirp.
type ChirpConfig struct {
	SampleRate beep.SampleRate
	Freq       float64
	Duration   time.Duration
	Attack     time.Duration
	Release    time.Duration
	// Volume is linear gain in (0, 1].
	Volume float64
}

// DefaultChirpConfig returns a short high chirp.
func DefaultChirpConfig() ChirpConfig {
	return ChirpConfig{
		SampleRate: beep.SampleRate(44100),
		Freq:       2200,
		Duration:   60 * time.Millisecond,
		Attack:     5 * time.Millisecond,
		Release:    40 * time.Millisecond,
		Volume:     0.25,
	}
}

// tone is a sine oscillator that ends after a fixed number of samples.
type tone struct {
	step   float64
	phase  float64
	remain int
}

func newTone(freq float64, d time.Duration, rate beep.SampleRate) *tone {
	return &tone{step: freq / float64(rate), remain: rate.N(d)}
}

func (t *tone) Stream(samples [][2]float64) (n int, ok bool) {
	if t.remain <= 0 {
		return 0, false
	}
	for i := range samples {
		if t.remain <= 0 {
			return i, true
		}
		v := math.Sin(2 * math.Pi * t.phase)
		samples[i][0] = v
		samples[i][1] = v
		t.phase += t.step
		t.phase -= math.Floor(t.phase)
		t.remain--
	}
	return len(samples), true
}

func (t *tone) Err() error { return nil }

// envelope applies a linear attack and release to a stream.
type envelope struct {
	streamer beep.Streamer
	pos      int
	attack   int
	release  int
	total    int
}

func (e *envelope) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = e.streamer.Stream(samples)
	for i := 0; i < n; i++ {
		vol := 1.0
		if e.attack > 0 && e.pos < e.attack {
			vol = float64(e.pos) / float64(e.attack)
		}
		if start := e.total - e.release; e.release > 0 && e.pos >= start {
			vol = math.Max(0, float64(e.total-e.pos)/float64(e.release))
		}
		samples[i][0] *= vol
		samples[i][1] *= vol
		e.pos++
	}
	return n, ok
}

func (e *envelope) Err() error { return e.streamer.Err() }

// NewChirp builds one chirp panned to pan in [-1, 1] (left to right).
func NewChirp(cfg ChirpConfig, pan float64) beep.Streamer {
	rate := cfg.SampleRate
	shaped := &envelope{
		streamer: newTone(cfg.Freq, cfg.Duration, rate),
		attack:   rate.N(cfg.Attack),
		release:  rate.N(cfg.Release),
		total:    rate.N(cfg.Duration),
	}
	var s beep.Streamer = shaped
	if cfg.Volume > 0 && cfg.Volume < 1 {
		s = &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(cfg.Volume)}
	}
	return &effects.Pan{Streamer: s, Pan: math.Max(-1, math.Min(1, pan))}
}
