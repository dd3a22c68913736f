package audio

import (
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"

	"flashsync/internal/core"
)

// Sink plays streamers.
type Sink interface {
	Play(s beep.Streamer)
}

// Chirper is a swarm responder that plays one chirp per flash onset, panned
// by the firefly's column.
type Chirper struct {
	cfg   ChirpConfig
	sink  Sink
	width int
	prev  map[int]uint8
}

// NewChirper creates a chirper for a field width cells wide.
func NewChirper(cfg ChirpConfig, sink Sink, width int) *Chirper {
	if width < 1 {
		width = 1
	}
	return &Chirper{cfg: cfg, sink: sink, width: width, prev: map[int]uint8{}}
}

// Respond implements the swarm responder contract.
func (c *Chirper) Respond(id int, origin core.Point, action uint8) {
	was := c.prev[id]
	c.prev[id] = action
	if action == 0 || was != 0 {
		return
	}
	pan := 0.0
	if c.width > 1 {
		pan = 2*float64(origin.X)/float64(c.width-1) - 1
	}
	c.sink.Play(NewChirp(c.cfg, pan))
}

// Speaker mixes chirps into the system audio device.
type Speaker struct {
	mu    sync.Mutex
	mixer *beep.Mixer
}

// OpenSpeaker initialises the audio device at rate.
func OpenSpeaker(rate beep.SampleRate) (*Speaker, error) {
	if err := speaker.Init(rate, rate.N(time.Second/10)); err != nil {
		return nil, err
	}
	s := &Speaker{mixer: &beep.Mixer{}}
	speaker.Play(s.mixer)
	return s, nil
}

// Play implements Sink.
func (s *Speaker) Play(st beep.Streamer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	speaker.Lock()
	s.mixer.Add(st)
	speaker.Unlock()
}

// Close stops playback and releases the device.
func (s *Speaker) Close() {
	speaker.Lock()
	s.mixer.Clear()
	speaker.Unlock()
	speaker.Close()
}
