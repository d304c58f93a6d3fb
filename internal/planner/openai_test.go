package planner

import (
	"context"
	"errors"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jdhruv555/aura-assist/internal/nlu"
	"github.com/jdhruv555/aura-assist/internal/persona"
)

type stubChat struct {
	content string
	err     error
	lastReq openai.ChatCompletionRequest
}

func (s *stubChat) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	s.lastReq = req
	if s.err != nil {
		return openai.ChatCompletionResponse{}, s.err
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: s.content}},
		},
	}, nil
}

func TestOpenAIGeneratorParsesOptions(t *testing.T) {
	chat := &stubChat{content: `{"options": [
		{"response_text": "Let me check your bill.", "tone": "helpful", "approach": "proactive"},
		{"response_text": "Can I get your account number?", "tone": "professional", "approach": "information_gathering"}
	]}`}
	g := NewOpenAIGenerator(chat, "", persona.Description)

	candidates, err := g.GenerateOptions(context.Background(), "my bill is wrong",
		nlu.IntentBillingInquiry, nlu.Sentiment{Label: nlu.SentimentNegative, Emotion: "frustrated"},
		persona.EfficientSolutionFocused, Conversation{CustomerType: "new"})
	require.NoError(t, err)
	require.Len(t, candidates, 2)
	assert.Equal(t, "response_0", candidates[0].ID)
	assert.Equal(t, "Let me check your bill.", candidates[0].Text)
	assert.Equal(t, persona.EfficientSolutionFocused, candidates[0].Persona)

	// JSON mode must be requested and the persona instruction included.
	require.NotNil(t, chat.lastReq.ResponseFormat)
	assert.Equal(t, openai.ChatCompletionResponseFormatTypeJSONObject, chat.lastReq.ResponseFormat.Type)
	assert.Contains(t, chat.lastReq.Messages[1].Content, persona.Description(persona.EfficientSolutionFocused))
}

func TestOpenAIGeneratorAcceptsResponsesKey(t *testing.T) {
	chat := &stubChat{content: `{"responses": [{"text": "Happy to help!", "tone": "friendly"}]}`}
	g := NewOpenAIGenerator(chat, "", persona.Description)

	candidates, err := g.GenerateOptions(context.Background(), "hi",
		nlu.IntentGeneralInquiry, nlu.Sentiment{}, persona.FriendlyCasual, Conversation{})
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "Happy to help!", candidates[0].Text)
}

func TestOpenAIGeneratorPropagatesErrors(t *testing.T) {
	g := NewOpenAIGenerator(&stubChat{err: errors.New("rate limited")}, "", persona.Description)

	_, err := g.GenerateOptions(context.Background(), "hi",
		nlu.IntentGeneralInquiry, nlu.Sentiment{}, persona.FriendlyCasual, Conversation{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "planner: openai completion failed")
}

func TestOpenAIGeneratorMalformedJSON(t *testing.T) {
	g := NewOpenAIGenerator(&stubChat{content: "sure, here are some options"}, "", persona.Description)

	_, err := g.GenerateOptions(context.Background(), "hi",
		nlu.IntentGeneralInquiry, nlu.Sentiment{}, persona.FriendlyCasual, Conversation{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "planner: malformed options response")
}

func TestOpenAIPredictorParsesReactions(t *testing.T) {
	chat := &stubChat{content: `{"reactions": [
		{"customer_response": "That works", "probability": 0.7, "resulting_sentiment": "positive", "resolution_likelihood": 0.9, "next_step": "Resolution in progress"},
		{"customer_response": "Hmm", "probability": 0.3, "resulting_sentiment": "neutral", "resolution_likelihood": 0.5, "next_step": "Follow-up needed"}
	]}`}
	p := NewOpenAIPredictor(chat, "")

	forecasts, err := p.PredictReactions(context.Background(),
		Candidate{ID: "response_0", Text: "Let me fix that for you."}, "frustrated",
		nlu.Sentiment{Label: nlu.SentimentNegative, Emotion: "angry"})
	require.NoError(t, err)
	require.Len(t, forecasts, 2)
	assert.InDelta(t, 0.7, forecasts[0].Probability, 1e-9)
	assert.Equal(t, nlu.SentimentPositive, forecasts[0].ResultingSentiment)

	assert.Contains(t, chat.lastReq.Messages[1].Content, "Let me fix that for you.")
	assert.Contains(t, chat.lastReq.Messages[1].Content, "frustrated")
}

func TestNewOpenAIGeneratorPanicsOnNilClient(t *testing.T) {
	assert.Panics(t, func() { NewOpenAIGenerator(nil, "", persona.Description) })
	assert.Panics(t, func() { NewOpenAIPredictor(nil, "") })
}
