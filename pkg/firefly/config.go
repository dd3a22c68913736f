package firefly

import "math"

// Config holds the timing and coupling parameters of a single oscillator.
// Durations are in seconds. Values are not validated here; the caller is
// expected to reject a non-positive FlashPeriod before constructing agents.
type Config struct {
	FlashPeriod           float64
	FlashAdjust           float64
	RefractoryTime        float64
	BlindTime             float64
	FlashTime             float64
	HeartBeatAdjustFactor float64
}

// DefaultConfig returns a one-second oscillator with a short flash.
func DefaultConfig() Config {
	return Config{
		FlashPeriod:           1.0,
		FlashAdjust:           0.05,
		RefractoryTime:        0.05,
		BlindTime:             0.01,
		FlashTime:             0.1,
		HeartBeatAdjustFactor: 0,
	}
}

// Millis converts seconds to whole milliseconds, rounding to the nearest
// millisecond. Anything below half a millisecond becomes zero.
func Millis(seconds float64) int64 {
	return int64(math.Round(seconds * 1000))
}
