package planner

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

	"github.com/jdhruv555/aura-assist/internal/nlu"
)

var plannerTracer = otel.Tracer("aura.internal.planner")

type chatClient interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

const openAICallTimeout = 10 * time.Second

// OpenAIGenerator produces candidates with a JSON-mode chat completion.
type OpenAIGenerator struct {
	client chatClient
	model  string

	describePersona func(string) string
}

// NewOpenAIGenerator returns a model-backed candidate generator.
// describePersona maps a persona name to its style instruction for the
// prompt; it must not be nil.
func NewOpenAIGenerator(client chatClient, model string, describePersona func(string) string) *OpenAIGenerator {
	if client == nil {
		panic("planner: chat client cannot be nil")
	}
	if describePersona == nil {
		panic("planner: persona describer cannot be nil")
	}
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAIGenerator{client: client, model: model, describePersona: describePersona}
}

type generatedOption struct {
	ResponseText string `json:"response_text"`
	Text         string `json:"text"`
	Tone         string `json:"tone"`
	Approach     string `json:"approach"`
}

type optionsPayload struct {
	Options   []generatedOption `json:"options"`
	Responses []generatedOption `json:"responses"`
}

func (g *OpenAIGenerator) GenerateOptions(ctx context.Context, utterance, intent string, sentiment nlu.Sentiment, persona string, convo Conversation) ([]Candidate, error) {
	ctx, span := plannerTracer.Start(ctx, "planner.generate_options")
	defer span.End()
	span.SetAttributes(attribute.String("aura.persona", persona), attribute.String("aura.intent", intent))

	prompt := fmt.Sprintf(`You are a customer service agent with the following persona: %s

Customer said: %q
Customer intent: %s
Customer sentiment: %s (%s)

Generate 3-5 different response options for the agent. Each response should:
1. Address the customer's concern appropriately
2. Match the selected persona style
3. Be concise (1-2 sentences)
4. Move the conversation toward resolution

Respond with JSON: {"options": [{"response_text": "<response>", "tone": "<tone>", "approach": "<approach>"}, ...]}`,
		g.describePersona(persona), utterance, intent, sentiment.Label, sentiment.Emotion)

	raw, err := complete(ctx, g.client, g.model,
		"You are an expert at generating customer service responses.", prompt, 0.7)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	var payload optionsPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("planner: malformed options response: %w", err)
	}
	options := payload.Options
	if len(options) == 0 {
		options = payload.Responses
	}

	candidates := make([]Candidate, 0, len(options))
	for i, option := range options {
		text := option.ResponseText
		if text == "" {
			text = option.Text
		}
		if text == "" {
			continue
		}
		candidates = append(candidates, Candidate{
			ID:       fmt.Sprintf("response_%d", i),
			Text:     text,
			Tone:     option.Tone,
			Approach: option.Approach,
			Persona:  persona,
		})
	}
	return candidates, nil
}

// OpenAIPredictor forecasts reactions with a JSON-mode chat completion.
type OpenAIPredictor struct {
	client chatClient
	model  string
}

func NewOpenAIPredictor(client chatClient, model string) *OpenAIPredictor {
	if client == nil {
		panic("planner: chat client cannot be nil")
	}
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAIPredictor{client: client, model: model}
}

type reactionsPayload struct {
	Reactions []ReactionForecast `json:"reactions"`
}

func (p *OpenAIPredictor) PredictReactions(ctx context.Context, candidate Candidate, customerType string, sentiment nlu.Sentiment) ([]ReactionForecast, error) {
	ctx, span := plannerTracer.Start(ctx, "planner.predict_reactions")
	defer span.End()
	span.SetAttributes(attribute.String("aura.candidate_id", candidate.ID))

	prompt := fmt.Sprintf(`Given this agent response, predict 2-3 possible customer reactions:

Agent Response: %q
Customer Type: %s
Current Sentiment: %s (%s)

For each possible reaction, estimate:
1. The customer's likely response
2. The probability of that reaction (0-1)
3. The resulting sentiment (positive/neutral/negative)
4. The likelihood of resolution (0-1)

Respond with JSON: {"reactions": [{"customer_response": "...", "probability": <0-1>, "resulting_sentiment": "positive|neutral|negative", "resolution_likelihood": <0-1>, "next_step": "..."}, ...]}`,
		candidate.Text, customerType, sentiment.Label, sentiment.Emotion)

	raw, err := complete(ctx, p.client, p.model,
		"You are an expert at predicting customer service conversation outcomes.", prompt, 0.5)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	var payload reactionsPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("planner: malformed reactions response: %w", err)
	}
	return payload.Reactions, nil
}

func complete(ctx context.Context, client chatClient, model, system, user string, temperature float32) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, openAICallTimeout)
	defer cancel()

	resp, err := client.CreateChatCompletion(callCtx, openai.ChatCompletionRequest{
		Model:       model,
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
		return "", fmt.Errorf("planner: openai completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("planner: openai returned no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
