package firefly

// heartbeatSync replaces the oscillator with a counter over external beats.
type heartbeatSync struct {
	enabled bool
	everyN  int
	counter int
}

func (h *heartbeatSync) enable(everyN int) {
	if everyN < 1 {
		everyN = 1
	}
	h.enabled = true
	h.everyN = everyN
	// the first beat after enabling fires
	h.counter = everyN - 1
}

func (h *heartbeatSync) disable() {
	h.enabled = false
}

func (h *heartbeatSync) step(beat bool) uint8 {
	if beat {
		h.counter++
	}
	if h.counter >= h.everyN {
		h.counter = 0
		return 1
	}
	return 0
}
