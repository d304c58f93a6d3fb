// Package ranker scores and orders candidate responses using the
// forecast-derived expectations, optionally blended with a learned value
// estimate.
package ranker

import (
	"context"
	"sort"

	"github.com/jdhruv555/aura-assist/internal/nlu"
	"github.com/jdhruv555/aura-assist/internal/planner"
	"github.com/jdhruv555/aura-assist/pkg/logging"
)

// Scoring weights for the composite score. Fixed; weight learning is an
// offline concern.
const (
	weightResolution   = 0.4
	weightSatisfaction = 0.3
	weightImprovement  = 0.2
	weightEfficiency   = 0.1
)

// Breakdown exposes the per-component scores behind a ranking, so a
// supervising agent can see why a response won.
type Breakdown struct {
	ResolutionProbability float64 `json:"resolution_probability"`
	SatisfactionEstimate  float64 `json:"satisfaction_estimate"`
	SentimentImprovement  float64 `json:"sentiment_improvement"`
	Efficiency            float64 `json:"efficiency"`
}

// RankedResponse is one scored candidate. Ranking is 1-based and
// contiguous across the returned slice.
type RankedResponse struct {
	Candidate      planner.Candidate          `json:"response"`
	Forecasts      []planner.ReactionForecast `json:"predicted_reactions"`
	Score          float64                    `json:"score"`
	CompositeScore float64                    `json:"composite_score"`
	ValueEstimate  *float64                   `json:"value_estimate,omitempty"`
	Breakdown      Breakdown                  `json:"breakdown"`
	Ranking        int                        `json:"ranking"`
}

// ValueEstimator is an optional learned value function over candidate
// states. Estimates are centered on 0 and shifted by 0.5 when blended.
type ValueEstimator interface {
	EstimateValue(ctx context.Context, plan planner.Plan, customerType string, sentiment nlu.Sentiment) (float64, error)
}

// Option tunes the ranker.
type Option func(*Ranker)

// WithValueEstimator blends a learned value estimate into the final
// score: 0.6 x composite + 0.4 x (estimate + 0.5).
func WithValueEstimator(estimator ValueEstimator) Option {
	return func(r *Ranker) { r.estimator = estimator }
}

// Ranker orders candidates by score. Without a value estimator the final
// score is the weighted composite alone.
type Ranker struct {
	estimator ValueEstimator
	logger    *logging.Logger
}

func NewRanker(logger *logging.Logger, opts ...Option) *Ranker {
	if logger == nil {
		logger = logging.Default()
	}
	r := &Ranker{logger: logger}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Rank scores every plan and returns the responses ordered best-first.
// The sort is stable: equal scores keep generation order. A failed value
// estimate degrades that candidate to its composite score.
func (r *Ranker) Rank(ctx context.Context, plans []planner.Plan, customerType string, sentiment nlu.Sentiment) []RankedResponse {
	responses := make([]RankedResponse, 0, len(plans))
	for _, plan := range plans {
		responses = append(responses, r.score(ctx, plan, customerType, sentiment))
	}

	sort.SliceStable(responses, func(i, j int) bool {
		return responses[i].Score > responses[j].Score
	})
	for i := range responses {
		responses[i].Ranking = i + 1
	}
	return responses
}

func (r *Ranker) score(ctx context.Context, plan planner.Plan, customerType string, sentiment nlu.Sentiment) RankedResponse {
	improvement := plan.ExpectedSentimentImprovement
	breakdown := Breakdown{
		ResolutionProbability: plan.ExpectedResolutionProbability,
		SatisfactionEstimate:  0.5 + improvement,
		SentimentImprovement:  improvement,
		Efficiency:            efficiencyScore(plan.Candidate.Text),
	}

	composite := weightResolution*breakdown.ResolutionProbability +
		weightSatisfaction*breakdown.SatisfactionEstimate +
		weightImprovement*(improvement+0.5) +
		weightEfficiency*breakdown.Efficiency

	response := RankedResponse{
		Candidate:      plan.Candidate,
		Forecasts:      plan.Forecasts,
		Score:          composite,
		CompositeScore: composite,
		Breakdown:      breakdown,
	}

	if r.estimator != nil {
		estimate, err := r.estimator.EstimateValue(ctx, plan, customerType, sentiment)
		if err != nil {
			r.logger.Warn("value estimate failed, using composite score",
				"candidate_id", plan.Candidate.ID, "error", err)
			return response
		}
		response.ValueEstimate = &estimate
		response.Score = 0.6*composite + 0.4*(estimate+0.5)
	}
	return response
}

// efficiencyScore prefers concise responses: linear decay from the
// 50-character mark, floored at zero around 250 characters. Responses
// under 50 characters score above 1.
func efficiencyScore(text string) float64 {
	score := 1.0 - (float64(len(text))-50.0)/200.0
	if score < 0 {
		return 0
	}
	return score
}
