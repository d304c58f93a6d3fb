package asr

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTurnDetectorSignalsAfterSilenceHold(t *testing.T) {
	d := NewTurnDetector(500, 650*time.Millisecond)
	start := time.Now()

	// Speech keeps the detector in Speaking.
	assert.False(t, d.Observe(1200, start))
	// First silent sample starts the timer but does not signal.
	assert.False(t, d.Observe(100, start.Add(100*time.Millisecond)))
	// Still under the hold duration.
	assert.False(t, d.Observe(80, start.Add(500*time.Millisecond)))
	// Silence has now held for 650ms since it began.
	assert.True(t, d.Observe(90, start.Add(750*time.Millisecond)))
}

func TestTurnDetectorSpeechClearsTimer(t *testing.T) {
	d := NewTurnDetector(500, 650*time.Millisecond)
	start := time.Now()

	assert.False(t, d.Observe(100, start))
	// Speech resumes before the hold elapses; timer must restart.
	assert.False(t, d.Observe(900, start.Add(600*time.Millisecond)))
	assert.False(t, d.Observe(100, start.Add(700*time.Millisecond)))
	// 650ms from the new silence entry, not the first.
	assert.False(t, d.Observe(100, start.Add(1200*time.Millisecond)))
	assert.True(t, d.Observe(100, start.Add(1350*time.Millisecond)))
}

func TestTurnDetectorNeverSignalsWhileSpeaking(t *testing.T) {
	d := NewTurnDetector(500, 650*time.Millisecond)
	now := time.Now()
	for i := 0; i < 100; i++ {
		assert.False(t, d.Observe(501, now.Add(time.Duration(i)*100*time.Millisecond)))
	}
}

func TestTurnDetectorSignalsOncePerQualifyingRun(t *testing.T) {
	d := NewTurnDetector(500, 650*time.Millisecond)
	start := time.Now()

	boundaries := 0
	// 700ms silence run sampled every 100ms.
	for i := 0; i <= 7; i++ {
		if d.Observe(50, start.Add(time.Duration(i)*100*time.Millisecond)) {
			boundaries++
		}
	}
	assert.Equal(t, 1, boundaries)
}

func TestTurnDetectorResetClearsSilenceTimer(t *testing.T) {
	d := NewTurnDetector(500, 650*time.Millisecond)
	start := time.Now()

	assert.False(t, d.Observe(50, start))
	d.Reset()
	// After reset the earlier silence entry must not count.
	assert.False(t, d.Observe(50, start.Add(700*time.Millisecond)))
	assert.True(t, d.Observe(50, start.Add(1400*time.Millisecond)))
}

func TestPassthroughTranscriber(t *testing.T) {
	tr := PassthroughTranscriber{}

	got, err := tr.Transcribe(context.Background(), []byte("my bill is wrong"))
	require.NoError(t, err)
	assert.Equal(t, "my bill is wrong", got.Text)
	assert.True(t, got.IsFinal)

	_, err = tr.Transcribe(context.Background(), nil)
	assert.ErrorIs(t, err, ErrEmptyPayload)

	_, err = tr.Transcribe(context.Background(), []byte{0xff, 0xfe, 0xfd})
	assert.Error(t, err)
}
