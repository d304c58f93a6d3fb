package nlu

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jdhruv555/aura-assist/pkg/logging"
)

type stubIntent struct {
	intent Intent
	err    error
}

func (s stubIntent) ClassifyIntent(context.Context, string) (Intent, error) {
	return s.intent, s.err
}

type stubSentiment struct {
	sentiment Sentiment
	err       error
}

func (s stubSentiment) AnalyzeSentiment(context.Context, string) (Sentiment, error) {
	return s.sentiment, s.err
}

type stubEntities struct {
	entities []Entity
	err      error
}

func (s stubEntities) ExtractEntities(context.Context, string) ([]Entity, error) {
	return s.entities, s.err
}

func TestInterpretJoinsAllThreeSubCalls(t *testing.T) {
	i := NewInterpreter(
		stubIntent{intent: Intent{Name: IntentBillingInquiry, Confidence: 0.8}},
		stubSentiment{sentiment: Sentiment{Label: SentimentNegative, Polarity: -0.5, Emotion: "frustrated"}},
		stubEntities{entities: []Entity{{Text: "$20", Label: "MONEY"}}},
		logging.Default(),
	)

	got := i.Interpret(context.Background(), "why was I charged $20")

	assert.Equal(t, "why was I charged $20", got.Transcript)
	assert.Equal(t, IntentBillingInquiry, got.Intent.Name)
	assert.Equal(t, -0.5, got.Sentiment.Polarity)
	assert.Len(t, got.Entities, 1)
	assert.False(t, got.Timestamp.IsZero())
}

func TestInterpretDegradesPerFieldOnFailure(t *testing.T) {
	boom := errors.New("collaborator unavailable")
	i := NewInterpreter(
		stubIntent{err: boom},
		stubSentiment{sentiment: Sentiment{Label: SentimentPositive, Polarity: 0.4, Emotion: "satisfied"}},
		stubEntities{err: boom},
		logging.Default(),
	)

	got := i.Interpret(context.Background(), "thanks, this works now")

	// Failed fields take their neutral defaults; the healthy one survives.
	assert.Equal(t, IntentOther, got.Intent.Name)
	assert.Equal(t, 0.0, got.Intent.Confidence)
	assert.Equal(t, SentimentPositive, got.Sentiment.Label)
	assert.Empty(t, got.Entities)
}

func TestInterpretAllFailuresStillReturnsResult(t *testing.T) {
	boom := errors.New("down")
	i := NewInterpreter(stubIntent{err: boom}, stubSentiment{err: boom}, stubEntities{err: boom}, nil)

	got := i.Interpret(context.Background(), "hello")

	assert.Equal(t, DefaultIntent(), got.Intent)
	assert.Equal(t, NeutralSentiment(), got.Sentiment)
}
