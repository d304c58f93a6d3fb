package nlu

import (
	"context"
	"errors"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
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

func TestOpenAIClassifyIntent(t *testing.T) {
	chat := &stubChat{content: `{"intent": "billing_inquiry", "confidence": 0.92}`}
	e := NewOpenAIExtractor(chat, "gpt-4o-mini")

	got, err := e.ClassifyIntent(context.Background(), "my bill is too high")
	require.NoError(t, err)
	assert.Equal(t, IntentBillingInquiry, got.Name)
	assert.Equal(t, 0.92, got.Confidence)
	assert.Equal(t, "gpt-4o-mini", chat.lastReq.Model)
	require.NotNil(t, chat.lastReq.ResponseFormat)
	assert.Equal(t, openai.ChatCompletionResponseFormatTypeJSONObject, chat.lastReq.ResponseFormat.Type)
}

func TestOpenAIClassifyIntentUnknownCategoryFallsBackToOther(t *testing.T) {
	chat := &stubChat{content: `{"intent": "made_up_category", "confidence": 0.7}`}
	e := NewOpenAIExtractor(chat, "")

	got, err := e.ClassifyIntent(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, IntentOther, got.Name)
}

func TestOpenAIAnalyzeSentiment(t *testing.T) {
	chat := &stubChat{content: `{"sentiment": "negative", "polarity": -0.6, "subjectivity": 0.8, "emotion": "frustrated", "confidence": 0.9}`}
	e := NewOpenAIExtractor(chat, "")

	got, err := e.AnalyzeSentiment(context.Background(), "this is useless")
	require.NoError(t, err)
	assert.Equal(t, SentimentNegative, got.Label)
	assert.Equal(t, -0.6, got.Polarity)
	assert.Equal(t, "frustrated", got.Emotion)
}

func TestOpenAIExtractEntitiesMergesStructuredMatches(t *testing.T) {
	chat := &stubChat{content: `{"entities": [{"text": "Acme", "label": "ORG", "start": 0, "end": 4, "confidence": 0.8}]}`}
	e := NewOpenAIExtractor(chat, "")

	got, err := e.ExtractEntities(context.Background(), "Acme charged me $30")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "ORG", got[0].Label)
	assert.Equal(t, "MONEY", got[1].Label)
	assert.Equal(t, "$30", got[1].Text)
}

func TestOpenAIErrorsPropagate(t *testing.T) {
	chat := &stubChat{err: errors.New("rate limited")}
	e := NewOpenAIExtractor(chat, "")

	_, err := e.ClassifyIntent(context.Background(), "hi")
	assert.Error(t, err)

	_, err = e.AnalyzeSentiment(context.Background(), "hi")
	assert.Error(t, err)

	_, err = e.ExtractEntities(context.Background(), "hi")
	assert.Error(t, err)
}

func TestOpenAIMalformedResponseIsAnError(t *testing.T) {
	chat := &stubChat{content: "not json"}
	e := NewOpenAIExtractor(chat, "")

	_, err := e.ClassifyIntent(context.Background(), "hi")
	assert.Error(t, err)
}
