package planner

import (
	"context"
	"fmt"
	"sync"

	"github.com/jdhruv555/aura-assist/internal/nlu"
	"github.com/jdhruv555/aura-assist/pkg/logging"
)

// maxConcurrentForecasts bounds the fan-out of reaction prediction so a
// large candidate set cannot flood the prediction backend.
const maxConcurrentForecasts = 4

// OptionGenerator produces candidate agent responses for one turn.
type OptionGenerator interface {
	GenerateOptions(ctx context.Context, utterance, intent string, sentiment nlu.Sentiment, persona string, convo Conversation) ([]Candidate, error)
}

// ReactionPredictor forecasts customer reactions to one candidate.
type ReactionPredictor interface {
	PredictReactions(ctx context.Context, candidate Candidate, customerType string, sentiment nlu.Sentiment) ([]ReactionForecast, error)
}

// Planner runs the full look-ahead: generate candidates, then forecast
// reactions for each candidate concurrently. A failed forecast degrades
// that candidate to an empty forecast list instead of failing the turn.
type Planner struct {
	generator OptionGenerator
	predictor ReactionPredictor
	logger    *logging.Logger
}

func NewPlanner(generator OptionGenerator, predictor ReactionPredictor, logger *logging.Logger) *Planner {
	if generator == nil {
		panic("planner: option generator cannot be nil")
	}
	if predictor == nil {
		panic("planner: reaction predictor cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Planner{generator: generator, predictor: predictor, logger: logger}
}

// PlanDialogue returns one plan per generated candidate, in generation
// order. Only candidate generation can fail the call; per-candidate
// forecast errors are logged and degrade to derivation defaults.
func (p *Planner) PlanDialogue(ctx context.Context, utterance, intent string, sentiment nlu.Sentiment, persona string, convo Conversation) ([]Plan, error) {
	candidates, err := p.generator.GenerateOptions(ctx, utterance, intent, sentiment, persona, convo)
	if err != nil {
		return nil, fmt.Errorf("planner: failed to generate response options: %w", err)
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	plans := make([]Plan, len(candidates))
	sem := make(chan struct{}, maxConcurrentForecasts)
	var wg sync.WaitGroup
	for i, candidate := range candidates {
		wg.Add(1)
		go func(i int, candidate Candidate) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			forecasts, err := p.predictor.PredictReactions(ctx, candidate, convo.CustomerType, sentiment)
			if err != nil {
				p.logger.Warn("reaction forecast failed, degrading candidate",
					"candidate_id", candidate.ID, "error", err)
				forecasts = nil
			}
			plans[i] = Plan{
				Candidate:                     candidate,
				Forecasts:                     forecasts,
				ExpectedSentimentImprovement:  SentimentImprovement(forecasts),
				ExpectedResolutionProbability: ResolutionProbability(forecasts),
			}
		}(i, candidate)
	}
	wg.Wait()

	return plans, nil
}

// SentimentImprovement is the probability-weighted sentiment shift across
// forecasts: positive branches add 0.5x their probability, negative
// branches subtract 0.3x, neutral branches contribute nothing.
func SentimentImprovement(forecasts []ReactionForecast) float64 {
	improvement := 0.0
	for _, f := range forecasts {
		switch f.ResultingSentiment {
		case nlu.SentimentPositive:
			improvement += f.Probability * 0.5
		case nlu.SentimentNegative:
			improvement -= f.Probability * 0.3
		}
	}
	return improvement
}

// ResolutionProbability is the probability-weighted average resolution
// likelihood. Empty forecasts (or all-zero probabilities) return the
// neutral prior 0.5.
func ResolutionProbability(forecasts []ReactionForecast) float64 {
	totalWeighted := 0.0
	totalWeight := 0.0
	for _, f := range forecasts {
		totalWeighted += f.Probability * f.ResolutionLikelihood
		totalWeight += f.Probability
	}
	if totalWeight <= 0 {
		return 0.5
	}
	return totalWeighted / totalWeight
}
