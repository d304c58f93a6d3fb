package asr

import (
	"context"
	"errors"
	"unicode/utf8"
)

// Transcription is the result of a speech-to-text call.
type Transcription struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
	IsFinal    bool    `json:"is_final"`
}

// Transcriber converts an audio (or pre-transcribed text) payload into a
// transcript. Implementations live behind this contract; transcription
// accuracy is out of scope for the pipeline.
type Transcriber interface {
	Transcribe(ctx context.Context, payload []byte) (Transcription, error)
}

// ErrEmptyPayload indicates there was nothing to transcribe.
var ErrEmptyPayload = errors.New("asr: empty payload")

// PassthroughTranscriber treats UTF-8 payloads as already-transcribed
// text. Used when upstream delivers text frames instead of raw audio and
// in deployments without a speech service configured.
type PassthroughTranscriber struct{}

func (PassthroughTranscriber) Transcribe(_ context.Context, payload []byte) (Transcription, error) {
	if len(payload) == 0 {
		return Transcription{}, ErrEmptyPayload
	}
	if !utf8.Valid(payload) {
		return Transcription{}, errors.New("asr: payload is not text and no speech service is configured")
	}
	return Transcription{
		Text:       string(payload),
		Confidence: 0.9,
		IsFinal:    true,
	}, nil
}
