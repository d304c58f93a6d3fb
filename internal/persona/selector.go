package persona

import (
	"context"
	"fmt"
	"sync"

	"github.com/jdhruv555/aura-assist/internal/nlu"
	"github.com/jdhruv555/aura-assist/pkg/logging"
)

const (
	// DefaultScoreThreshold: below this best score the performance table
	// is not trusted and selection falls back to the heuristic cascade.
	DefaultScoreThreshold = 0.3

	// DefaultHistoryBonus multiplies the score of personas with any track
	// record with this customer type.
	DefaultHistoryBonus = 1.1
)

// SelectorOption tunes the selector.
type SelectorOption func(*Selector)

// WithScoreThreshold overrides the heuristic-fallback threshold.
func WithScoreThreshold(threshold float64) SelectorOption {
	return func(s *Selector) {
		if threshold > 0 {
			s.scoreThreshold = threshold
		}
	}
}

// WithHistoryBonus overrides the track-record multiplier.
func WithHistoryBonus(bonus float64) SelectorOption {
	return func(s *Selector) {
		if bonus > 0 {
			s.historyBonus = bonus
		}
	}
}

// Selector maintains the (customer type x persona) performance table and
// chooses the best-performing persona per turn. The table is shared
// across all concurrent calls; updates to the same key are serialized so
// concurrent outcome reports never lose writes.
type Selector struct {
	store  Store
	logger *logging.Logger

	scoreThreshold float64
	historyBonus   float64

	mu    sync.RWMutex
	table map[string]Performance
}

// NewSelector creates a selector. store may be nil for a purely
// in-memory model (tests, demos).
func NewSelector(store Store, logger *logging.Logger, opts ...SelectorOption) *Selector {
	if logger == nil {
		logger = logging.Default()
	}
	s := &Selector{
		store:          store,
		logger:         logger,
		scoreThreshold: DefaultScoreThreshold,
		historyBonus:   DefaultHistoryBonus,
		table:          make(map[string]Performance),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load warms the in-memory table from the durable store.
func (s *Selector) Load(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	entries, err := s.store.List(ctx)
	if err != nil {
		return fmt.Errorf("persona: failed to warm performance table: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range entries {
		s.table[tableKey(e.CustomerType, e.PersonaType)] = e.Performance
	}
	s.logger.Info("persona performance table loaded", "entries", len(entries))
	return nil
}

// Select returns the best-performing persona for the customer type,
// falling back to intent/sentiment heuristics when no persona has enough
// signal. Selection is deterministic: ties resolve to the first persona
// in enumeration order.
func (s *Selector) Select(customerType, intent string, sentiment nlu.Sentiment) string {
	s.mu.RLock()
	best := ""
	bestScore := 0.0
	for _, p := range all {
		perf, ok := s.table[tableKey(customerType, p)]
		if !ok {
			perf = DefaultPerformance()
		}

		score := 0.4*perf.SuccessRate + 0.3*perf.SatisfactionAvg + 0.3*perf.ResolutionRate
		if perf.CallCount > 0 {
			score *= s.historyBonus
		}
		if score > bestScore {
			bestScore = score
			best = p
		}
	}
	s.mu.RUnlock()

	if best == "" || bestScore < s.scoreThreshold {
		return heuristicPersona(intent, sentiment)
	}
	return best
}

// Update folds one call outcome into the entry for (customerType,
// personaType), creating it with defaults on first reference. The
// updated entry is persisted best-effort; a store failure keeps the
// in-memory model current and is logged. The lock is held across the
// Put so concurrent updates to one key persist in apply order and a
// restart warm-load never resurrects a stale aggregate.
func (s *Selector) Update(ctx context.Context, customerType, personaType string, outcome Outcome) Performance {
	key := tableKey(customerType, personaType)

	s.mu.Lock()
	defer s.mu.Unlock()

	perf, ok := s.table[key]
	if !ok {
		perf = DefaultPerformance()
	}
	perf.apply(outcome)
	s.table[key] = perf

	if s.store != nil {
		entry := Entry{CustomerType: customerType, PersonaType: personaType, Performance: perf}
		if err := s.store.Put(ctx, entry); err != nil {
			s.logger.Error("failed to persist persona performance", "error", err,
				"customer_type", customerType, "persona", personaType)
		}
	}
	return perf
}

// Performance returns the current entry for a key, or the default for an
// unseen key.
func (s *Selector) Performance(customerType, personaType string) Performance {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if perf, ok := s.table[tableKey(customerType, personaType)]; ok {
		return perf
	}
	return DefaultPerformance()
}

// heuristicPersona is the fallback cascade, checked in order.
func heuristicPersona(intent string, sentiment nlu.Sentiment) string {
	switch {
	case sentiment.Polarity < -0.3 || sentiment.Emotion == "angry" || sentiment.Emotion == "frustrated":
		return EmpatheticAuthoritative
	case intent == nlu.IntentTechnicalSupport:
		return PatientEducational
	case intent == nlu.IntentBillingInquiry:
		return EfficientSolutionFocused
	default:
		return FriendlyCasual
	}
}

func tableKey(customerType, personaType string) string {
	return customerType + ":" + personaType
}
