// Package planner generates candidate agent responses and forecasts
// customer reactions one to two steps ahead. The ranker consumes its
// plans; the pipeline never talks to the generation backends directly.
package planner

// Candidate is one proposed agent response. Immutable once generated.
type Candidate struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	Tone     string `json:"tone"`
	Approach string `json:"approach"`
	Persona  string `json:"persona"`
}

// ReactionForecast is one hypothetical customer reaction to a candidate.
// Probabilities are independent branch estimates, not a distribution;
// they are never normalized.
type ReactionForecast struct {
	CustomerResponse     string  `json:"customer_response"`
	Probability          float64 `json:"probability"`
	ResultingSentiment   string  `json:"resulting_sentiment"`
	ResolutionLikelihood float64 `json:"resolution_likelihood"`
	NextStep             string  `json:"next_step"`
}

// Plan pairs a candidate with its forecasts and the expectations derived
// from them.
type Plan struct {
	Candidate                     Candidate          `json:"response_option"`
	Forecasts                     []ReactionForecast `json:"predicted_reactions"`
	ExpectedSentimentImprovement  float64            `json:"expected_sentiment_improvement"`
	ExpectedResolutionProbability float64            `json:"expected_resolution_probability"`
}

// Conversation is the slice of call context the planner backends see.
type Conversation struct {
	CustomerType string
	Transcript   []string
}
