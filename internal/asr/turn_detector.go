// Package asr holds the speech-side collaborator contracts and the
// energy-based turn detector that decides when a customer utterance is
// complete.
package asr

import "time"

const (
	// DefaultSilenceHold is how long continuous silence must last before a
	// turn boundary is signaled. Calibrated in the 500-800ms range.
	DefaultSilenceHold = 650 * time.Millisecond

	// DefaultSilenceEnergy is the instantaneous energy below which a sample
	// counts as silence for 16-bit PCM input.
	DefaultSilenceEnergy = 500.0
)

// TurnDetector is a two-state machine over a stream of audio-energy
// samples: Speaking, and Silence-timing once energy drops below the
// silence threshold. It signals a boundary when silence has held for the
// configured duration. One detector per call; state never crosses calls.
type TurnDetector struct {
	silenceEnergy float64
	silenceHold   time.Duration

	timing       bool
	silenceStart time.Time
}

// NewTurnDetector creates a detector with the given silence energy
// threshold and hold duration. Non-positive arguments fall back to the
// defaults.
func NewTurnDetector(silenceEnergy float64, silenceHold time.Duration) *TurnDetector {
	if silenceEnergy <= 0 {
		silenceEnergy = DefaultSilenceEnergy
	}
	if silenceHold <= 0 {
		silenceHold = DefaultSilenceHold
	}
	return &TurnDetector{
		silenceEnergy: silenceEnergy,
		silenceHold:   silenceHold,
	}
}

// Observe consumes one energy sample and reports whether a turn boundary
// was detected at this sample. A sample at or above the silence threshold
// always returns to Speaking and clears the timer; a boundary resets the
// detector so the next silence run is timed from scratch.
func (d *TurnDetector) Observe(energy float64, now time.Time) bool {
	if energy >= d.silenceEnergy {
		d.timing = false
		return false
	}

	if !d.timing {
		d.timing = true
		d.silenceStart = now
		return false
	}

	if now.Sub(d.silenceStart) >= d.silenceHold {
		d.timing = false
		return true
	}
	return false
}

// Reset returns the detector to the Speaking state with no timer.
func (d *TurnDetector) Reset() {
	d.timing = false
	d.silenceStart = time.Time{}
}
