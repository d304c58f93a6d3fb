package planner

import (
	"context"
	"fmt"

	"github.com/jdhruv555/aura-assist/internal/nlu"
)

// TemplateGenerator is the offline candidate source: canned per-intent
// responses, used when no model backend is configured.
type TemplateGenerator struct{}

var intentTemplates = map[string][]Candidate{
	nlu.IntentBillingInquiry: {
		{Text: "I'd be happy to help you with your billing question. Let me pull up your account information.", Tone: "helpful", Approach: "proactive"},
		{Text: "I understand you have a billing question. Can you provide me with your account number?", Tone: "professional", Approach: "information_gathering"},
	},
	nlu.IntentTechnicalSupport: {
		{Text: "I'm sorry you're experiencing this issue. Let me help you troubleshoot this step by step.", Tone: "empathetic", Approach: "problem_solving"},
		{Text: "I can help you resolve this technical issue. Can you describe what's happening?", Tone: "supportive", Approach: "diagnostic"},
	},
	nlu.IntentComplaint: {
		{Text: "I sincerely apologize for the inconvenience. Let me see what I can do to make this right.", Tone: "apologetic", Approach: "resolution_focused"},
		{Text: "I understand your frustration. I want to help resolve this for you today.", Tone: "empathetic", Approach: "acknowledgment"},
	},
}

var defaultTemplates = []Candidate{
	{Text: "I'm here to help. Can you tell me more about what you need?", Tone: "friendly", Approach: "information_gathering"},
}

func (TemplateGenerator) GenerateOptions(_ context.Context, _, intent string, _ nlu.Sentiment, persona string, _ Conversation) ([]Candidate, error) {
	templates, ok := intentTemplates[intent]
	if !ok {
		templates = defaultTemplates
	}

	candidates := make([]Candidate, len(templates))
	for i, t := range templates {
		t.ID = fmt.Sprintf("response_%d", i)
		t.Persona = persona
		candidates[i] = t
	}
	return candidates, nil
}

// HeuristicPredictor is the offline forecast source: canned branch sets
// keyed on the customer's current polarity.
type HeuristicPredictor struct{}

var negativeForecasts = []ReactionForecast{
	{CustomerResponse: "That's helpful, thank you", Probability: 0.4, ResultingSentiment: nlu.SentimentNeutral, ResolutionLikelihood: 0.6, NextStep: "Customer accepts solution"},
	{CustomerResponse: "I'm still not satisfied", Probability: 0.5, ResultingSentiment: nlu.SentimentNegative, ResolutionLikelihood: 0.3, NextStep: "Escalation needed"},
	{CustomerResponse: "Okay, let's try that", Probability: 0.1, ResultingSentiment: nlu.SentimentPositive, ResolutionLikelihood: 0.8, NextStep: "Proceed with solution"},
}

var neutralForecasts = []ReactionForecast{
	{CustomerResponse: "That sounds good", Probability: 0.7, ResultingSentiment: nlu.SentimentPositive, ResolutionLikelihood: 0.9, NextStep: "Resolution in progress"},
	{CustomerResponse: "I need to think about it", Probability: 0.2, ResultingSentiment: nlu.SentimentNeutral, ResolutionLikelihood: 0.5, NextStep: "Follow-up needed"},
	{CustomerResponse: "Actually, I have another question", Probability: 0.1, ResultingSentiment: nlu.SentimentNeutral, ResolutionLikelihood: 0.4, NextStep: "Additional inquiry"},
}

func (HeuristicPredictor) PredictReactions(_ context.Context, _ Candidate, _ string, sentiment nlu.Sentiment) ([]ReactionForecast, error) {
	source := neutralForecasts
	if sentiment.Polarity < -0.3 {
		source = negativeForecasts
	}
	out := make([]ReactionForecast, len(source))
	copy(out, source)
	return out, nil
}
