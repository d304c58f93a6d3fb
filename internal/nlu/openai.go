package nlu

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var nluTracer = otel.Tracer("aura.internal.nlu")

type chatClient interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

const openAICallTimeout = 10 * time.Second

// OpenAIExtractor implements the three NLU contracts with JSON-mode chat
// completions. A rule-based fallback covers entity extraction details the
// model misses (amounts, dates, account numbers).
type OpenAIExtractor struct {
	client chatClient
	model  string
	rules  RuleEntityExtractor
}

// NewOpenAIExtractor returns an OpenAI-backed NLU implementation.
func NewOpenAIExtractor(client chatClient, model string) *OpenAIExtractor {
	if client == nil {
		panic("nlu: chat client cannot be nil")
	}
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAIExtractor{client: client, model: model}
}

// ClassifyIntent asks the model for one of the fixed intent categories.
func (e *OpenAIExtractor) ClassifyIntent(ctx context.Context, transcript string) (Intent, error) {
	ctx, span := nluTracer.Start(ctx, "nlu.classify_intent")
	defer span.End()

	prompt := fmt.Sprintf(`Classify the customer's intent from the following transcript:

Transcript: %q

Intent categories: %s

Respond with JSON: {"intent": "<category>", "confidence": <0-1>}`,
		transcript, strings.Join(IntentCategories, ", "))

	raw, err := e.complete(ctx, "You are an expert at classifying customer service intents.", prompt, 0.3)
	if err != nil {
		span.RecordError(err)
		return Intent{}, err
	}

	var result Intent
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		span.RecordError(err)
		return Intent{}, fmt.Errorf("nlu: malformed intent response: %w", err)
	}
	if !validIntent(result.Name) {
		result.Name = IntentOther
	}
	span.SetAttributes(attribute.String("aura.intent", result.Name))
	return result, nil
}

type sentimentPayload struct {
	Sentiment    string  `json:"sentiment"`
	Polarity     float64 `json:"polarity"`
	Subjectivity float64 `json:"subjectivity"`
	Emotion      string  `json:"emotion"`
	Confidence   float64 `json:"confidence"`
}

// AnalyzeSentiment asks the model for polarity, subjectivity and emotion.
func (e *OpenAIExtractor) AnalyzeSentiment(ctx context.Context, transcript string) (Sentiment, error) {
	ctx, span := nluTracer.Start(ctx, "nlu.analyze_sentiment")
	defer span.End()

	prompt := fmt.Sprintf(`Analyze the emotional tone of this customer statement:
%q

Respond with JSON: {"sentiment": "positive|neutral|negative", "polarity": <-1 to 1>, "subjectivity": <0-1>, "emotion": "<emotion>", "confidence": <0-1>}
Emotions: angry, frustrated, satisfied, happy, neutral, anxious, confused`, transcript)

	raw, err := e.complete(ctx, "You are an expert at reading customer sentiment.", prompt, 0.3)
	if err != nil {
		span.RecordError(err)
		return Sentiment{}, err
	}

	var payload sentimentPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		span.RecordError(err)
		return Sentiment{}, fmt.Errorf("nlu: malformed sentiment response: %w", err)
	}
	label := payload.Sentiment
	if label != SentimentPositive && label != SentimentNegative {
		label = SentimentNeutral
	}
	return Sentiment{
		Label:        label,
		Polarity:     clampPolarity(payload.Polarity),
		Subjectivity: payload.Subjectivity,
		Emotion:      payload.Emotion,
		Confidence:   payload.Confidence,
	}, nil
}

type entitiesPayload struct {
	Entities []Entity `json:"entities"`
}

// ExtractEntities extracts named entities, merging the model's output
// with the regex extraction for structured values.
func (e *OpenAIExtractor) ExtractEntities(ctx context.Context, transcript string) ([]Entity, error) {
	ctx, span := nluTracer.Start(ctx, "nlu.extract_entities")
	defer span.End()

	prompt := fmt.Sprintf(`Extract named entities from this customer statement:
%q

Respond with JSON: {"entities": [{"text": "...", "label": "PERSON|ORG|PRODUCT|MONEY|DATE|ACCOUNT_NUMBER", "start": <offset>, "end": <offset>, "confidence": <0-1>}]}`, transcript)

	raw, err := e.complete(ctx, "You are an expert at extracting entities from customer service transcripts.", prompt, 0.2)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	var payload entitiesPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("nlu: malformed entities response: %w", err)
	}

	entities := payload.Entities
	structured, _ := e.rules.ExtractEntities(ctx, transcript)
	for _, ent := range structured {
		if !containsEntity(entities, ent) {
			entities = append(entities, ent)
		}
	}
	return entities, nil
}

func (e *OpenAIExtractor) complete(ctx context.Context, system, user string, temperature float32) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, openAICallTimeout)
	defer cancel()

	resp, err := e.client.CreateChatCompletion(callCtx, openai.ChatCompletionRequest{
		Model:       e.model,
		Temperature: temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		return "", fmt.Errorf("nlu: openai completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("nlu: openai returned no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func validIntent(name string) bool {
	for _, intent := range IntentCategories {
		if intent == name {
			return true
		}
	}
	return false
}

func containsEntity(entities []Entity, ent Entity) bool {
	for _, existing := range entities {
		if existing.Text == ent.Text && existing.Label == ent.Label {
			return true
		}
	}
	return false
}
