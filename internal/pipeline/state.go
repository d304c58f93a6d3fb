// Package pipeline owns per-call orchestration: it sequences NLU,
// context resolution, planning and ranking for every customer turn,
// keeps isolated state per active call, and feeds call outcomes back
// into the persona performance model.
package pipeline

import (
	"sync"
	"time"

	"github.com/jdhruv555/aura-assist/internal/nlu"
	"github.com/jdhruv555/aura-assist/internal/profile"
	"github.com/jdhruv555/aura-assist/internal/ranker"
)

// TranscriptEntry is one recorded utterance.
type TranscriptEntry struct {
	Text      string    `json:"text"`
	Speaker   string    `json:"speaker"`
	Timestamp time.Time `json:"timestamp"`
}

// ResponseEntry is one turn's ranked recommendation set.
type ResponseEntry struct {
	Timestamp time.Time               `json:"timestamp"`
	Responses []ranker.RankedResponse `json:"ranked_responses"`
}

// CustomerContext is the per-turn context snapshot: the profile as
// loaded, its classification for this turn, and the persona resolved
// from it.
type CustomerContext struct {
	Profile         profile.CustomerProfile `json:"customer_profile"`
	CustomerType    string                  `json:"customer_type"`
	SelectedPersona string                  `json:"selected_persona"`
}

// CallState is the full per-call record. Exactly one exists per active
// call id; it is owned by the state store and mutated only by the
// orchestrator while holding the call's turn lock.
type CallState struct {
	CallID     string    `json:"call_id"`
	CustomerID string    `json:"customer_id"`
	StartTime  time.Time `json:"start_time"`

	Transcript      []TranscriptEntry    `json:"transcript"`
	Interpretations []nlu.Interpretation `json:"interpretations"`
	Responses       []ResponseEntry      `json:"responses"`

	CurrentIntent      string           `json:"current_intent,omitempty"`
	CurrentSentiment   nlu.Sentiment    `json:"current_sentiment"`
	SelectedPersona    string           `json:"selected_persona,omitempty"`
	SelectedResponseID string           `json:"selected_response_id,omitempty"`
	Context            *CustomerContext `json:"customer_context,omitempty"`
}

// callEntry pairs a call's state with the mutex that serializes its
// turns. Different calls never contend on each other's entry.
type callEntry struct {
	mu    sync.Mutex
	state *CallState
}

// StateStore holds the active calls. Map access is guarded separately
// from per-call turn serialization so unrelated calls progress
// independently.
type StateStore struct {
	mu    sync.RWMutex
	calls map[string]*callEntry
}

func NewStateStore() *StateStore {
	return &StateStore{calls: make(map[string]*callEntry)}
}

// create adds a fresh entry unless the call is already active. Returns
// the entry and whether it was created by this invocation.
func (s *StateStore) create(callID, customerID string, now time.Time) (*callEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry, ok := s.calls[callID]; ok {
		return entry, false
	}
	entry := &callEntry{state: &CallState{
		CallID:     callID,
		CustomerID: customerID,
		StartTime:  now,
	}}
	s.calls[callID] = entry
	return entry, true
}

func (s *StateStore) get(callID string) (*callEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.calls[callID]
	return entry, ok
}

func (s *StateStore) remove(callID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.calls, callID)
}

// Snapshot returns a deep-enough copy of a call's state for read-only
// consumers; the logs are copied so later turns cannot mutate the view.
func (s *StateStore) Snapshot(callID string) (CallState, bool) {
	entry, ok := s.get(callID)
	if !ok {
		return CallState{}, false
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()

	snap := *entry.state
	snap.Transcript = append([]TranscriptEntry(nil), entry.state.Transcript...)
	snap.Interpretations = append([]nlu.Interpretation(nil), entry.state.Interpretations...)
	snap.Responses = append([]ResponseEntry(nil), entry.state.Responses...)
	if entry.state.Context != nil {
		ctx := *entry.state.Context
		snap.Context = &ctx
	}
	return snap, true
}

// ActiveCalls returns the number of calls currently tracked.
func (s *StateStore) ActiveCalls() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.calls)
}
