// Package handlers holds the HTTP endpoints for the call pipeline. The
// handlers are transport-thin: decode, delegate to the orchestrator,
// encode.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jdhruv555/aura-assist/internal/pipeline"
	"github.com/jdhruv555/aura-assist/pkg/logging"
)

// CallPipeline is the orchestrator surface the HTTP layer consumes.
type CallPipeline interface {
	StartCall(ctx context.Context, callID, customerID string) pipeline.StartResult
	ProcessTurn(ctx context.Context, callID, text, speaker string) pipeline.TurnResult
	EndCall(ctx context.Context, callID string, outcome pipeline.Outcome) error
	RecordSelection(callID, responseID string)
	Snapshot(callID string) (pipeline.CallState, bool)
	ActiveCalls() int
}

// CallsHandler exposes the call lifecycle over HTTP.
type CallsHandler struct {
	calls  CallPipeline
	logger *logging.Logger
}

func NewCallsHandler(calls CallPipeline, logger *logging.Logger) *CallsHandler {
	if calls == nil {
		panic("handlers: call pipeline cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &CallsHandler{calls: calls, logger: logger}
}

// StartCallRequest is the body for POST /calls/start. Both ids are
// optional; missing ones are generated.
type StartCallRequest struct {
	CallID     string `json:"call_id,omitempty"`
	CustomerID string `json:"customer_id,omitempty"`
}

// StartCall handles POST /calls/start.
func (h *CallsHandler) StartCall(w http.ResponseWriter, r *http.Request) {
	var req StartCallRequest
	if err := decodeBody(r, &req); err != nil {
		http.Error(w, `{"error": "invalid JSON body"}`, http.StatusBadRequest)
		return
	}

	res := h.calls.StartCall(r.Context(), req.CallID, req.CustomerID)
	writeJSON(w, http.StatusCreated, res)
}

// TurnRequest is the body for POST /calls/turn.
type TurnRequest struct {
	CallID  string `json:"call_id"`
	Text    string `json:"text"`
	Speaker string `json:"speaker,omitempty"`
}

// ProcessTurn handles POST /calls/turn.
func (h *CallsHandler) ProcessTurn(w http.ResponseWriter, r *http.Request) {
	var req TurnRequest
	if err := decodeBody(r, &req); err != nil {
		http.Error(w, `{"error": "invalid JSON body"}`, http.StatusBadRequest)
		return
	}
	if req.CallID == "" {
		http.Error(w, `{"error": "call_id is required"}`, http.StatusBadRequest)
		return
	}
	if req.Speaker == "" {
		req.Speaker = pipeline.SpeakerCustomer
	}

	result := h.calls.ProcessTurn(r.Context(), req.CallID, req.Text, req.Speaker)
	writeJSON(w, http.StatusOK, result)
}

// EndCallRequest is the body for POST /calls/end.
type EndCallRequest struct {
	CallID  string           `json:"call_id"`
	Outcome pipeline.Outcome `json:"outcome"`
}

// EndCall handles POST /calls/end.
func (h *CallsHandler) EndCall(w http.ResponseWriter, r *http.Request) {
	var req EndCallRequest
	if err := decodeBody(r, &req); err != nil {
		http.Error(w, `{"error": "invalid JSON body"}`, http.StatusBadRequest)
		return
	}
	if req.CallID == "" {
		http.Error(w, `{"error": "call_id is required"}`, http.StatusBadRequest)
		return
	}

	if err := h.calls.EndCall(r.Context(), req.CallID, req.Outcome); err != nil {
		h.logger.Error("failed to end call", "call_id", req.CallID, "error", err)
		http.Error(w, `{"error": "failed to persist call outcome"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ended", "call_id": req.CallID})
}

// GetCall handles GET /calls/{callID}: a snapshot of an active call.
func (h *CallsHandler) GetCall(w http.ResponseWriter, r *http.Request) {
	callID := chi.URLParam(r, "callID")
	state, ok := h.calls.Snapshot(callID)
	if !ok {
		http.Error(w, `{"error": "call not found"}`, http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// SelectionRequest is the body for POST /calls/{callID}/selection.
type SelectionRequest struct {
	ResponseID string `json:"response_id"`
}

// RecordSelection handles POST /calls/{callID}/selection: notes which
// recommendation the human agent used.
func (h *CallsHandler) RecordSelection(w http.ResponseWriter, r *http.Request) {
	callID := chi.URLParam(r, "callID")
	var req SelectionRequest
	if err := decodeBody(r, &req); err != nil || req.ResponseID == "" {
		http.Error(w, `{"error": "response_id is required"}`, http.StatusBadRequest)
		return
	}

	h.calls.RecordSelection(callID, req.ResponseID)
	writeJSON(w, http.StatusOK, map[string]string{"status": "recorded"})
}

// Health handles GET /health.
func (h *CallsHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":       "ok",
		"active_calls": h.calls.ActiveCalls(),
	})
}

// decodeBody tolerates an empty body; endpoints validate required
// fields themselves.
func decodeBody(r *http.Request, v any) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
