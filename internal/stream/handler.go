// Package stream is the realtime ingest surface: a websocket per call
// that accepts energy-annotated audio/text frames, detects turn
// boundaries, and flushes finished utterances through the pipeline.
package stream

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/jdhruv555/aura-assist/internal/asr"
	"github.com/jdhruv555/aura-assist/internal/pipeline"
	"github.com/jdhruv555/aura-assist/pkg/logging"
)

// Frame is one inbound websocket message.
//
// "audio" frames carry an energy sample plus (optionally) payload text
// accumulated into the current utterance; "text" frames are complete
// utterances processed immediately; "end" closes the call.
type Frame struct {
	Type    string            `json:"type"` // audio, text, end
	Energy  float64           `json:"energy,omitempty"`
	Payload string            `json:"payload,omitempty"`
	Speaker string            `json:"speaker,omitempty"`
	Outcome *pipeline.Outcome `json:"outcome,omitempty"`
}

// TurnProcessor is the slice of the orchestrator the ingest surface
// needs.
type TurnProcessor interface {
	ProcessTurn(ctx context.Context, callID, text, speaker string) pipeline.TurnResult
	EndCall(ctx context.Context, callID string, outcome pipeline.Outcome) error
}

// Handler serves /ws/calls/{callID}. Each connection owns its own turn
// detector, so boundary state never leaks across calls.
type Handler struct {
	processor   TurnProcessor
	transcriber asr.Transcriber
	logger      *logging.Logger
	upgrader    websocket.Upgrader

	silenceEnergy float64
	silenceHold   time.Duration
	now           func() time.Time
}

func NewHandler(processor TurnProcessor, transcriber asr.Transcriber, silenceEnergy float64, silenceHold time.Duration, logger *logging.Logger) *Handler {
	if processor == nil {
		panic("stream: turn processor cannot be nil")
	}
	if transcriber == nil {
		transcriber = asr.PassthroughTranscriber{}
	}
	if logger == nil {
		logger = logging.Default()
	}
	if silenceEnergy <= 0 {
		silenceEnergy = asr.DefaultSilenceEnergy
	}
	if silenceHold <= 0 {
		silenceHold = asr.DefaultSilenceHold
	}
	return &Handler{
		processor:   processor,
		transcriber: transcriber,
		logger:      logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		silenceEnergy: silenceEnergy,
		silenceHold:   silenceHold,
		now:           time.Now,
	}
}

// HandleCall upgrades the connection and runs the per-call frame loop.
func (h *Handler) HandleCall(w http.ResponseWriter, r *http.Request) {
	callID := chi.URLParam(r, "callID")
	if callID == "" {
		http.Error(w, "callID is required", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("stream: websocket upgrade failed", "call_id", callID, "error", err)
		return
	}
	defer conn.Close()

	h.logger.Info("stream connected", "call_id", callID)
	h.serve(r.Context(), conn, callID)
	h.logger.Info("stream disconnected", "call_id", callID)
}

func (h *Handler) serve(ctx context.Context, conn *websocket.Conn, callID string) {
	detector := asr.NewTurnDetector(h.silenceEnergy, h.silenceHold)
	var utterance strings.Builder
	speaker := pipeline.SpeakerCustomer

	flush := func() {
		text := strings.TrimSpace(utterance.String())
		utterance.Reset()
		if text == "" {
			return
		}
		result := h.processor.ProcessTurn(ctx, callID, text, speaker)
		if err := conn.WriteJSON(result); err != nil {
			h.logger.Warn("stream: failed to write turn result", "call_id", callID, "error", err)
		}
	}

	for {
		var frame Frame
		if err := conn.ReadJSON(&frame); err != nil {
			return
		}
		if frame.Speaker != "" {
			speaker = frame.Speaker
		}

		switch frame.Type {
		case "audio":
			if frame.Payload != "" {
				tr, err := h.transcriber.Transcribe(ctx, []byte(frame.Payload))
				if err != nil {
					h.logger.Warn("stream: transcription failed", "call_id", callID, "error", err)
				} else if tr.Text != "" {
					if utterance.Len() > 0 {
						utterance.WriteByte(' ')
					}
					utterance.WriteString(tr.Text)
				}
			}
			if detector.Observe(frame.Energy, h.now()) {
				flush()
			}

		case "text":
			// A text frame is a complete utterance on its own; anything
			// buffered belongs to the same turn.
			if frame.Payload != "" {
				if utterance.Len() > 0 {
					utterance.WriteByte(' ')
				}
				utterance.WriteString(frame.Payload)
			}
			flush()
			detector.Reset()

		case "end":
			flush()
			var outcome pipeline.Outcome
			if frame.Outcome != nil {
				outcome = *frame.Outcome
			}
			if err := h.processor.EndCall(ctx, callID, outcome); err != nil {
				h.logger.Error("stream: failed to end call", "call_id", callID, "error", err)
				_ = conn.WriteJSON(map[string]string{"type": "error", "error": err.Error()})
				return
			}
			_ = conn.WriteJSON(map[string]string{"type": "call_ended", "call_id": callID})
			return

		default:
			h.logger.Warn("stream: unknown frame type", "call_id", callID, "type", frame.Type)
		}
	}
}
