// Package nlu defines the natural-language-understanding collaborator
// contracts consumed by the pipeline and the structured results they
// return. The pipeline never inspects raw model output; everything
// crosses this boundary as typed values.
package nlu

import "time"

// Intent categories recognized by the classifier.
const (
	IntentBillingInquiry     = "billing_inquiry"
	IntentTechnicalSupport   = "technical_support"
	IntentProductInformation = "product_information"
	IntentComplaint          = "complaint"
	IntentRefundRequest      = "refund_request"
	IntentAccountManagement  = "account_management"
	IntentGeneralInquiry     = "general_inquiry"
	IntentOther              = "other"
)

// IntentCategories is the fixed classification vocabulary, in the order
// presented to classifiers.
var IntentCategories = []string{
	IntentBillingInquiry,
	IntentTechnicalSupport,
	IntentProductInformation,
	IntentComplaint,
	IntentRefundRequest,
	IntentAccountManagement,
	IntentGeneralInquiry,
	IntentOther,
}

// Sentiment labels.
const (
	SentimentPositive = "positive"
	SentimentNeutral  = "neutral"
	SentimentNegative = "negative"
)

// Intent is a classified customer intent.
type Intent struct {
	Name       string  `json:"intent"`
	Confidence float64 `json:"confidence"`
}

// Sentiment is the emotional reading of one utterance.
type Sentiment struct {
	Label        string  `json:"label"`
	Polarity     float64 `json:"polarity"`     // [-1, 1]
	Subjectivity float64 `json:"subjectivity"` // [0, 1]
	Emotion      string  `json:"emotion"`
	Confidence   float64 `json:"confidence"`
}

// Entity is a span extracted from the transcript.
type Entity struct {
	Text       string  `json:"text"`
	Label      string  `json:"label"`
	Start      int     `json:"start"`
	End        int     `json:"end"`
	Confidence float64 `json:"confidence"`
}

// Interpretation is the joined result of the intent, sentiment and entity
// sub-calls for one utterance.
type Interpretation struct {
	Transcript string    `json:"transcript"`
	Intent     Intent    `json:"intent"`
	Sentiment  Sentiment `json:"sentiment"`
	Entities   []Entity  `json:"entities"`
	Timestamp  time.Time `json:"timestamp"`
}

// DefaultIntent is the neutral fallback used when intent classification
// is unavailable.
func DefaultIntent() Intent {
	return Intent{Name: IntentOther, Confidence: 0}
}

// NeutralSentiment is the neutral fallback used when sentiment analysis
// is unavailable.
func NeutralSentiment() Sentiment {
	return Sentiment{
		Label:        SentimentNeutral,
		Polarity:     0,
		Subjectivity: 0.5,
		Emotion:      "neutral",
		Confidence:   0,
	}
}
