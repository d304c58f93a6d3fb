package nlu

import (
	"context"
	"regexp"
	"strings"
)

// Rule-based NLU implementations. These back the pipeline when no model
// endpoint is configured and serve as the degraded path in tests.

var intentKeywords = map[string][]string{
	IntentBillingInquiry:     {"bill", "billing", "charge", "charges", "payment", "invoice", "cost", "price", "statement"},
	IntentTechnicalSupport:   {"not working", "broken", "error", "issue", "problem", "bug", "help with", "trouble", "can't"},
	IntentProductInformation: {"what is", "tell me about", "information", "details", "how does"},
	IntentComplaint:          {"complaint", "unhappy", "dissatisfied", "terrible", "awful", "frustrated", "angry"},
	IntentRefundRequest:      {"refund", "money back", "return", "cancel", "want a refund"},
	IntentAccountManagement:  {"account", "password", "login", "profile", "settings", "reset password"},
}

// RuleIntentClassifier scores keyword hits per category.
type RuleIntentClassifier struct{}

func (RuleIntentClassifier) ClassifyIntent(_ context.Context, transcript string) (Intent, error) {
	lower := strings.ToLower(transcript)

	best := Intent{Name: IntentOther, Confidence: 0.5}
	bestScore := 0.0
	for _, intent := range IntentCategories {
		keywords, ok := intentKeywords[intent]
		if !ok {
			continue
		}
		hits := 0
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				hits++
			}
		}
		if hits == 0 {
			continue
		}
		score := float64(hits) / float64(len(keywords))
		if score > bestScore {
			bestScore = score
			best = Intent{Name: intent, Confidence: min(score, 0.9)}
		}
	}
	return best, nil
}

var negativeWords = []string{
	"angry", "awful", "terrible", "horrible", "frustrated", "annoyed",
	"unacceptable", "worst", "hate", "broken", "useless", "disappointed",
	"unhappy", "wrong", "ridiculous",
}

var positiveWords = []string{
	"great", "thanks", "thank you", "perfect", "wonderful", "happy",
	"excellent", "love", "appreciate", "awesome", "helpful",
}

// RuleSentimentAnalyzer derives polarity from a small opinion lexicon.
// Subjectivity is approximated by the density of opinion words.
type RuleSentimentAnalyzer struct{}

func (RuleSentimentAnalyzer) AnalyzeSentiment(_ context.Context, transcript string) (Sentiment, error) {
	lower := strings.ToLower(transcript)

	neg, pos := 0, 0
	for _, w := range negativeWords {
		neg += strings.Count(lower, w)
	}
	for _, w := range positiveWords {
		pos += strings.Count(lower, w)
	}

	words := len(strings.Fields(lower))
	if words == 0 {
		words = 1
	}

	polarity := clampPolarity(float64(pos-neg) * 0.35)
	label := SentimentNeutral
	switch {
	case polarity > 0.1:
		label = SentimentPositive
	case polarity < -0.1:
		label = SentimentNegative
	}

	emotion := "neutral"
	switch {
	case strings.Contains(lower, "angry") || strings.Contains(lower, "furious"):
		emotion = "angry"
	case strings.Contains(lower, "frustrat") || strings.Contains(lower, "annoy"):
		emotion = "frustrated"
	case polarity > 0.3:
		emotion = "satisfied"
	}

	subjectivity := float64(pos+neg) / float64(words)
	if subjectivity > 1 {
		subjectivity = 1
	}

	return Sentiment{
		Label:        label,
		Polarity:     polarity,
		Subjectivity: subjectivity,
		Emotion:      emotion,
		Confidence:   abs(polarity),
	}, nil
}

var (
	moneyPattern   = regexp.MustCompile(`\$[\d,]+\.?\d*`)
	datePattern    = regexp.MustCompile(`\d{1,2}[/-]\d{1,2}[/-]\d{2,4}`)
	accountPattern = regexp.MustCompile(`\b\d{6,}\b`)
)

// RuleEntityExtractor pulls domain entities (amounts, dates, account
// numbers) with regular expressions.
type RuleEntityExtractor struct{}

func (RuleEntityExtractor) ExtractEntities(_ context.Context, transcript string) ([]Entity, error) {
	var entities []Entity

	for _, loc := range moneyPattern.FindAllStringIndex(transcript, -1) {
		entities = append(entities, Entity{
			Text: transcript[loc[0]:loc[1]], Label: "MONEY",
			Start: loc[0], End: loc[1], Confidence: 0.9,
		})
	}
	for _, loc := range datePattern.FindAllStringIndex(transcript, -1) {
		entities = append(entities, Entity{
			Text: transcript[loc[0]:loc[1]], Label: "DATE",
			Start: loc[0], End: loc[1], Confidence: 0.8,
		})
	}
	for _, loc := range accountPattern.FindAllStringIndex(transcript, -1) {
		entities = append(entities, Entity{
			Text: transcript[loc[0]:loc[1]], Label: "ACCOUNT_NUMBER",
			Start: loc[0], End: loc[1], Confidence: 0.7,
		})
	}
	return entities, nil
}

func clampPolarity(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
