package nlu

import (
	"context"
	"sync"
	"time"

	"github.com/jdhruv555/aura-assist/pkg/logging"
)

// IntentClassifier classifies one utterance into an intent category.
type IntentClassifier interface {
	ClassifyIntent(ctx context.Context, transcript string) (Intent, error)
}

// SentimentAnalyzer measures sentiment of one utterance.
type SentimentAnalyzer interface {
	AnalyzeSentiment(ctx context.Context, transcript string) (Sentiment, error)
}

// EntityExtractor extracts named entities from one utterance.
type EntityExtractor interface {
	ExtractEntities(ctx context.Context, transcript string) ([]Entity, error)
}

// Interpreter joins the three NLU sub-calls for a turn. The sub-calls run
// concurrently; a failing sub-call degrades to its neutral default so the
// turn always gets a usable interpretation.
type Interpreter struct {
	intents   IntentClassifier
	sentiment SentimentAnalyzer
	entities  EntityExtractor
	logger    *logging.Logger
}

// NewInterpreter wires the three extractors together.
func NewInterpreter(intents IntentClassifier, sentiment SentimentAnalyzer, entities EntityExtractor, logger *logging.Logger) *Interpreter {
	if intents == nil {
		panic("nlu: intent classifier cannot be nil")
	}
	if sentiment == nil {
		panic("nlu: sentiment analyzer cannot be nil")
	}
	if entities == nil {
		panic("nlu: entity extractor cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Interpreter{
		intents:   intents,
		sentiment: sentiment,
		entities:  entities,
		logger:    logger,
	}
}

// Interpret runs intent, sentiment and entity extraction in parallel and
// returns the join. It never returns an error: per-field defaults stand
// in for failed sub-calls.
func (i *Interpreter) Interpret(ctx context.Context, transcript string) Interpretation {
	result := Interpretation{
		Transcript: transcript,
		Intent:     DefaultIntent(),
		Sentiment:  NeutralSentiment(),
		Timestamp:  time.Now().UTC(),
	}

	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		defer wg.Done()
		intent, err := i.intents.ClassifyIntent(ctx, transcript)
		if err != nil {
			i.logger.Warn("intent classification degraded to default", "error", err)
			return
		}
		result.Intent = intent
	}()

	go func() {
		defer wg.Done()
		sentiment, err := i.sentiment.AnalyzeSentiment(ctx, transcript)
		if err != nil {
			i.logger.Warn("sentiment analysis degraded to neutral", "error", err)
			return
		}
		result.Sentiment = sentiment
	}()

	go func() {
		defer wg.Done()
		entities, err := i.entities.ExtractEntities(ctx, transcript)
		if err != nil {
			i.logger.Warn("entity extraction degraded to empty", "error", err)
			return
		}
		result.Entities = entities
	}()

	wg.Wait()
	return result
}
