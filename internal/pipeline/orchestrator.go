package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/jdhruv555/aura-assist/internal/nlu"
	"github.com/jdhruv555/aura-assist/internal/observability/metrics"
	"github.com/jdhruv555/aura-assist/internal/persona"
	"github.com/jdhruv555/aura-assist/internal/planner"
	"github.com/jdhruv555/aura-assist/internal/profile"
	"github.com/jdhruv555/aura-assist/internal/ranker"
	"github.com/jdhruv555/aura-assist/pkg/logging"
)

// Turn result statuses.
const (
	StatusProcessing = "processing"
	StatusComplete   = "complete"
	StatusError      = "error"
)

// SpeakerCustomer marks the turns that run the full analysis pipeline.
// Other speakers are recorded but not analyzed.
const SpeakerCustomer = "customer"

// Defaults applied when the config leaves a knob unset.
const (
	DefaultMaxTurnLatency = 3 * time.Second
	DefaultTopResponses   = 5
)

// Interpreter is the NLU collaborator.
type Interpreter interface {
	Interpret(ctx context.Context, transcript string) nlu.Interpretation
}

// PersonaSelector resolves a persona per turn and absorbs call outcomes.
type PersonaSelector interface {
	Select(customerType, intent string, sentiment nlu.Sentiment) string
	Update(ctx context.Context, customerType, personaType string, outcome persona.Outcome) persona.Performance
}

// DialoguePlanner is the plan-generation collaborator.
type DialoguePlanner interface {
	PlanDialogue(ctx context.Context, utterance, intent string, sentiment nlu.Sentiment, personaType string, convo planner.Conversation) ([]planner.Plan, error)
}

// ResponseRanker orders the planned candidates.
type ResponseRanker interface {
	Rank(ctx context.Context, plans []planner.Plan, customerType string, sentiment nlu.Sentiment) []ranker.RankedResponse
}

// Emitter receives boundary events for transport layers (dashboards).
// Events are emitted outside the per-call turn lock, so a slow emitter
// delays only its own event delivery, never the call's next turn.
type Emitter interface {
	CallStarted(callID string)
	CallUpdate(result TurnResult)
	CallEnded(callID string)
}

// Outcome is the caller-reported result of a finished call. Nil fields
// mean the signal was not collected.
type Outcome struct {
	Satisfaction *float64 `json:"satisfaction,omitempty"`
	Resolved     *bool    `json:"resolved,omitempty"`
}

// ContextSummary is the slice of customer context exposed in results.
type ContextSummary struct {
	CustomerType    string `json:"customer_type"`
	SelectedPersona string `json:"selected_persona"`
}

// TurnResult is the structured outcome of one ProcessTurn invocation.
// It is always produced; failures surface as Status "error" with a
// message, never as a panic past the orchestration boundary.
type TurnResult struct {
	CallID          string                  `json:"call_id"`
	Status          string                  `json:"status"`
	Error           string                  `json:"error,omitempty"`
	Transcript      string                  `json:"transcript"`
	Interpretation  *nlu.Interpretation     `json:"interpretation,omitempty"`
	CustomerContext *ContextSummary         `json:"customer_context,omitempty"`
	RankedResponses []ranker.RankedResponse `json:"ranked_responses,omitempty"`
	LatencyMS       float64                 `json:"latency_ms,omitempty"`
	Timestamp       time.Time               `json:"timestamp"`
}

// StartResult reports the ids in effect after StartCall, which fills in
// generated ids when the caller omits them.
type StartResult struct {
	CallID     string `json:"call_id"`
	CustomerID string `json:"customer_id"`
	Created    bool   `json:"created"`
}

// Deps are the orchestrator's collaborators. Emitter and Metrics are
// optional; everything else is required.
type Deps struct {
	Interpreter Interpreter
	Selector    PersonaSelector
	Planner     DialoguePlanner
	Ranker      ResponseRanker
	Profiles    profile.Store
	History     profile.HistoryStore
	Emitter     Emitter
	Metrics     *metrics.PipelineMetrics
	Logger      *logging.Logger
}

// Config tunes orchestration behavior.
type Config struct {
	// MaxTurnLatency is the advisory per-turn budget for the analysis
	// stages. A breach is logged and counted, never aborted.
	MaxTurnLatency time.Duration

	// TopResponses caps the ranked responses included in a turn result.
	TopResponses int
}

// Orchestrator sequences the per-turn stages and owns call lifecycle.
type Orchestrator struct {
	deps   Deps
	states *StateStore
	tracer trace.Tracer
	logger *logging.Logger

	maxTurnLatency time.Duration
	topResponses   int

	now func() time.Time
}

func NewOrchestrator(deps Deps, cfg Config) *Orchestrator {
	if deps.Interpreter == nil {
		panic("pipeline: interpreter cannot be nil")
	}
	if deps.Selector == nil {
		panic("pipeline: persona selector cannot be nil")
	}
	if deps.Planner == nil {
		panic("pipeline: planner cannot be nil")
	}
	if deps.Ranker == nil {
		panic("pipeline: ranker cannot be nil")
	}
	if deps.Profiles == nil {
		panic("pipeline: profile store cannot be nil")
	}
	if deps.History == nil {
		panic("pipeline: history store cannot be nil")
	}
	if deps.Logger == nil {
		deps.Logger = logging.Default()
	}
	if cfg.MaxTurnLatency <= 0 {
		cfg.MaxTurnLatency = DefaultMaxTurnLatency
	}
	if cfg.TopResponses <= 0 {
		cfg.TopResponses = DefaultTopResponses
	}
	return &Orchestrator{
		deps:           deps,
		states:         NewStateStore(),
		tracer:         otel.Tracer("aura.internal.pipeline"),
		logger:         deps.Logger,
		maxTurnLatency: cfg.MaxTurnLatency,
		topResponses:   cfg.TopResponses,
		now:            time.Now,
	}
}

// StartCall activates a call. Missing ids are generated. Starting an
// already-active call is a no-op that reports Created=false.
func (o *Orchestrator) StartCall(ctx context.Context, callID, customerID string) StartResult {
	_, span := o.tracer.Start(ctx, "pipeline.start_call")
	defer span.End()

	if callID == "" {
		callID = uuid.NewString()
	}
	if customerID == "" {
		customerID = generatedCustomerID()
	}
	span.SetAttributes(attribute.String("aura.call_id", callID))

	entry, created := o.states.create(callID, customerID, o.now())
	if !created {
		o.logger.Warn("start requested for already active call", "call_id", callID)
		return StartResult{CallID: callID, CustomerID: entry.state.CustomerID}
	}

	o.deps.Metrics.CallStarted()
	if o.deps.Emitter != nil {
		o.deps.Emitter.CallStarted(callID)
	}
	o.logger.Info("call started", "call_id", callID, "customer_id", customerID)
	return StartResult{CallID: callID, CustomerID: customerID, Created: true}
}

// ProcessTurn runs one utterance through the pipeline. Turns of the same
// call are processed strictly in arrival order; turns of different calls
// run independently. An unknown call id auto-creates a call.
func (o *Orchestrator) ProcessTurn(ctx context.Context, callID, text, speaker string) TurnResult {
	ctx, span := o.tracer.Start(ctx, "pipeline.process_turn")
	defer span.End()
	span.SetAttributes(attribute.String("aura.call_id", callID))

	entry, ok := o.states.get(callID)
	if !ok {
		o.logger.Warn("turn for unknown call, creating new call", "call_id", callID)
		var created bool
		entry, created = o.states.create(callID, generatedCustomerID(), o.now())
		if created {
			o.deps.Metrics.CallStarted()
			if o.deps.Emitter != nil {
				o.deps.Emitter.CallStarted(callID)
			}
		}
	}

	entry.mu.Lock()

	state := entry.state
	now := o.now()

	if text != "" {
		state.Transcript = append(state.Transcript, TranscriptEntry{
			Text:      text,
			Speaker:   speaker,
			Timestamp: now,
		})
	}
	if text == "" || speaker != SpeakerCustomer {
		entry.mu.Unlock()
		return TurnResult{
			CallID:     callID,
			Status:     StatusProcessing,
			Transcript: text,
			Timestamp:  now,
		}
	}

	result := o.analyzeTurn(ctx, state, text)
	entry.mu.Unlock()

	// Emitted outside the turn lock: a slow dashboard must not stall the
	// call's next turn.
	if o.deps.Emitter != nil {
		o.deps.Emitter.CallUpdate(result)
	}
	return result
}

// analyzeTurn runs the analysis stages for one customer utterance. It
// never panics past this boundary: an unexpected failure is converted
// into a structured error result.
func (o *Orchestrator) analyzeTurn(ctx context.Context, state *CallState, text string) (result TurnResult) {
	started := o.now()

	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("turn processing failed", "call_id", state.CallID, "panic", r)
			o.deps.Metrics.ObserveTurn(StatusError, o.now().Sub(started).Seconds())
			result = TurnResult{
				CallID:     state.CallID,
				Status:     StatusError,
				Error:      fmt.Sprintf("turn processing failed: %v", r),
				Transcript: text,
				Timestamp:  o.now(),
			}
		}
	}()

	// NLU never fails outright; degraded fields carry neutral defaults.
	interp := o.deps.Interpreter.Interpret(ctx, text)
	state.Interpretations = append(state.Interpretations, interp)
	state.CurrentIntent = interp.Intent.Name
	state.CurrentSentiment = interp.Sentiment

	custCtx := o.resolveContext(ctx, state, interp)
	state.Context = &custCtx
	state.SelectedPersona = custCtx.SelectedPersona

	plans, err := o.deps.Planner.PlanDialogue(ctx, text, interp.Intent.Name, interp.Sentiment,
		custCtx.SelectedPersona, planner.Conversation{
			CustomerType: custCtx.CustomerType,
			Transcript:   recentTranscript(state.Transcript, 10),
		})
	if err != nil {
		o.logger.Error("dialogue planning failed, continuing without candidates",
			"call_id", state.CallID, "error", err)
		plans = nil
	}

	ranked := o.deps.Ranker.Rank(ctx, plans, custCtx.CustomerType, interp.Sentiment)

	latency := o.now().Sub(started)
	state.Responses = append(state.Responses, ResponseEntry{Timestamp: o.now(), Responses: ranked})

	o.deps.Metrics.ObserveTurn(StatusComplete, latency.Seconds())
	o.deps.Metrics.ObservePersona(custCtx.SelectedPersona)
	if latency > o.maxTurnLatency {
		o.logger.Warn("turn latency budget exceeded", "call_id", state.CallID,
			"latency_ms", latency.Milliseconds(), "budget_ms", o.maxTurnLatency.Milliseconds())
		o.deps.Metrics.ObserveLatencyBreach()
	}

	top := ranked
	if len(top) > o.topResponses {
		top = top[:o.topResponses]
	}

	return TurnResult{
		CallID:          state.CallID,
		Status:          StatusComplete,
		Transcript:      text,
		Interpretation:  &interp,
		CustomerContext: &ContextSummary{CustomerType: custCtx.CustomerType, SelectedPersona: custCtx.SelectedPersona},
		RankedResponses: top,
		LatencyMS:       float64(latency.Microseconds()) / 1000.0,
		Timestamp:       o.now(),
	}
}

// resolveContext loads the customer profile, classifies it for this turn
// and resolves the persona. A failing profile store degrades to a fresh
// default profile so the turn still completes.
func (o *Orchestrator) resolveContext(ctx context.Context, state *CallState, interp nlu.Interpretation) CustomerContext {
	prof, err := o.deps.Profiles.Get(ctx, state.CustomerID)
	if err != nil {
		if !errors.Is(err, profile.ErrNotFound) {
			o.logger.Warn("profile lookup failed, using default profile",
				"customer_id", state.CustomerID, "error", err)
		}
		prof = profile.NewProfile(state.CustomerID)
	}

	customerType := profile.Classify(prof, interp.Intent.Name, interp.Sentiment)
	selected := o.deps.Selector.Select(customerType, interp.Intent.Name, interp.Sentiment)

	return CustomerContext{
		Profile:         prof,
		CustomerType:    customerType,
		SelectedPersona: selected,
	}
}

// RecordSelection notes which recommended response the human agent
// actually used. Unknown calls are ignored.
func (o *Orchestrator) RecordSelection(callID, responseID string) {
	entry, ok := o.states.get(callID)
	if !ok {
		return
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	entry.state.SelectedResponseID = responseID
	o.logger.Info("response selection recorded", "call_id", callID, "response_id", responseID)
}

// EndCall closes a call: it persists the history record, folds the
// outcome into the customer aggregates and the persona performance
// table, then discards the call state. Unknown ids are a warning no-op.
// Store failures at call end surface as hard errors.
func (o *Orchestrator) EndCall(ctx context.Context, callID string, outcome Outcome) error {
	ctx, span := o.tracer.Start(ctx, "pipeline.end_call")
	defer span.End()
	span.SetAttributes(attribute.String("aura.call_id", callID))

	entry, ok := o.states.get(callID)
	if !ok {
		o.logger.Warn("end requested for unknown call", "call_id", callID)
		return nil
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	state := entry.state
	duration := o.now().Sub(state.StartTime)

	// The profile upsert runs first: call_history references the
	// customers row, which does not exist yet on a customer's first call.
	if err := o.updateProfile(ctx, state, outcome); err != nil {
		return err
	}

	record := profile.CallHistoryRecord{
		CallID:          state.CallID,
		CustomerID:      state.CustomerID,
		PersonaUsed:     state.SelectedPersona,
		Intent:          state.CurrentIntent,
		Satisfaction:    outcome.Satisfaction,
		Resolved:        outcome.Resolved,
		DurationSeconds: int(duration.Seconds()),
		EndedAt:         o.now(),
	}
	if err := o.deps.History.Append(ctx, record); err != nil {
		return fmt.Errorf("pipeline: failed to persist call history for %s: %w", callID, err)
	}

	if state.Context != nil && state.SelectedPersona != "" {
		o.deps.Selector.Update(ctx, state.Context.CustomerType, state.SelectedPersona, persona.Outcome{
			Satisfaction: outcome.Satisfaction,
			Resolved:     outcome.Resolved,
		})
	}

	o.states.remove(callID)
	o.deps.Metrics.CallEnded()
	if o.deps.Emitter != nil {
		o.deps.Emitter.CallEnded(callID)
	}
	o.logger.Info("call ended", "call_id", callID, "duration_seconds", record.DurationSeconds)
	return nil
}

func (o *Orchestrator) updateProfile(ctx context.Context, state *CallState, outcome Outcome) error {
	prof, err := o.deps.Profiles.Get(ctx, state.CustomerID)
	if err != nil {
		if !errors.Is(err, profile.ErrNotFound) {
			return fmt.Errorf("pipeline: failed to load profile for %s: %w", state.CustomerID, err)
		}
		prof = profile.NewProfile(state.CustomerID)
	}

	profile.ApplyOutcome(&prof, outcome.Satisfaction, outcome.Resolved)
	if state.Context != nil {
		prof.CustomerType = state.Context.CustomerType
		prof.PreferredPersona = state.SelectedPersona
	}

	if err := o.deps.Profiles.Put(ctx, prof); err != nil {
		return fmt.Errorf("pipeline: failed to persist profile for %s: %w", state.CustomerID, err)
	}
	return nil
}

// Snapshot exposes the current state of an active call.
func (o *Orchestrator) Snapshot(callID string) (CallState, bool) {
	return o.states.Snapshot(callID)
}

// ActiveCalls returns the number of calls in flight.
func (o *Orchestrator) ActiveCalls() int {
	return o.states.ActiveCalls()
}

func recentTranscript(entries []TranscriptEntry, max int) []string {
	if len(entries) > max {
		entries = entries[len(entries)-max:]
	}
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Speaker + ": " + e.Text
	}
	return out
}

func generatedCustomerID() string {
	return "customer_" + uuid.NewString()[:8]
}
