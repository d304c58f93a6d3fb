// Package profile owns the customer aggregate: the durable profile, its
// classification for persona selection, and the call-end metric updates.
package profile

import (
	"github.com/jdhruv555/aura-assist/internal/nlu"
)

// Customer type classifications, in evaluation priority order.
const (
	TypeNew           = "new"
	TypeLoyalPositive = "loyal_positive"
	TypeFrustrated    = "frustrated"
	TypeComplainer    = "complainer"
	TypeRepeat        = "repeat"
	TypeRegular       = "regular"
)

// CustomerProfile aggregates a customer's call history metrics. Mutated
// only at call end.
type CustomerProfile struct {
	CustomerID       string  `json:"customer_id"`
	CustomerType     string  `json:"customer_type"`
	TotalCalls       int     `json:"total_calls"`
	SatisfactionAvg  float64 `json:"satisfaction_avg"`
	ResolutionRate   float64 `json:"resolution_rate"`
	PreferredPersona string  `json:"preferred_persona,omitempty"`
}

// NewProfile returns the default profile for a first-seen customer.
func NewProfile(customerID string) CustomerProfile {
	return CustomerProfile{
		CustomerID:   customerID,
		CustomerType: TypeNew,
	}
}

// Classify derives the customer type from the profile and the current
// interaction. Rules are checked in priority order; the first match wins.
func Classify(p CustomerProfile, intent string, sentiment nlu.Sentiment) string {
	switch {
	case p.TotalCalls == 0:
		return TypeNew
	case p.TotalCalls > 10 && p.SatisfactionAvg > 0.7:
		return TypeLoyalPositive
	case sentiment.Polarity < -0.3:
		return TypeFrustrated
	case intent == nlu.IntentComplaint:
		return TypeComplainer
	case p.TotalCalls > 5:
		return TypeRepeat
	default:
		return TypeRegular
	}
}

// ApplyOutcome folds one finished call into the running aggregates using
// an incremental average over the post-increment call count. Nil fields
// leave the corresponding aggregate untouched.
func ApplyOutcome(p *CustomerProfile, satisfaction *float64, resolved *bool) {
	p.TotalCalls++
	n := float64(p.TotalCalls)

	if satisfaction != nil {
		p.SatisfactionAvg = (p.SatisfactionAvg*(n-1) + *satisfaction) / n
	}
	if resolved != nil {
		value := 0.0
		if *resolved {
			value = 1.0
		}
		p.ResolutionRate = (p.ResolutionRate*(n-1) + value) / n
	}
}
