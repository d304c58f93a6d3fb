package persona

// Performance tracks how a persona has performed with one customer type.
// SuccessRate is always derived from the other two rates; it is never set
// independently.
type Performance struct {
	SuccessRate     float64 `json:"success_rate"`
	SatisfactionAvg float64 `json:"satisfaction_avg"`
	ResolutionRate  float64 `json:"resolution_rate"`
	CallCount       int     `json:"call_count"`
}

// emaAlpha is the learning rate for online performance updates.
const emaAlpha = 0.1

// DefaultPerformance is the lazily-created entry for an unseen
// (customer type, persona) pair.
func DefaultPerformance() Performance {
	return Performance{
		SuccessRate:     0.5,
		SatisfactionAvg: 0.5,
		ResolutionRate:  0.5,
		CallCount:       0,
	}
}

// Outcome is a call result reported back into the performance model.
// Nil fields mean the signal was not observed.
type Outcome struct {
	Satisfaction *float64
	Resolved     *bool
}

// apply folds one outcome into the entry with an exponential moving
// average and recomputes the derived success rate.
func (p *Performance) apply(outcome Outcome) {
	if outcome.Satisfaction != nil {
		p.SatisfactionAvg = emaAlpha**outcome.Satisfaction + (1-emaAlpha)*p.SatisfactionAvg
	}
	if outcome.Resolved != nil {
		value := 0.0
		if *outcome.Resolved {
			value = 1.0
		}
		p.ResolutionRate = emaAlpha*value + (1-emaAlpha)*p.ResolutionRate
	}
	p.SuccessRate = 0.6*p.SatisfactionAvg + 0.4*p.ResolutionRate
	p.CallCount++
}
