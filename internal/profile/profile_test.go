package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jdhruv555/aura-assist/internal/nlu"
)

func TestClassifyPriorityOrder(t *testing.T) {
	tests := []struct {
		name      string
		profile   CustomerProfile
		intent    string
		sentiment nlu.Sentiment
		want      string
	}{
		{
			name:    "zero calls always new",
			profile: CustomerProfile{TotalCalls: 0},
			// Even an angry complaint stays "new" because the first rule wins.
			intent:    nlu.IntentComplaint,
			sentiment: nlu.Sentiment{Polarity: -0.9},
			want:      TypeNew,
		},
		{
			name:      "loyal positive beats frustrated",
			profile:   CustomerProfile{TotalCalls: 11, SatisfactionAvg: 0.8},
			sentiment: nlu.Sentiment{Polarity: -0.5},
			want:      TypeLoyalPositive,
		},
		{
			name:      "frustrated beats complainer",
			profile:   CustomerProfile{TotalCalls: 3},
			intent:    nlu.IntentComplaint,
			sentiment: nlu.Sentiment{Polarity: -0.4},
			want:      TypeFrustrated,
		},
		{
			name:      "complainer beats repeat",
			profile:   CustomerProfile{TotalCalls: 7},
			intent:    nlu.IntentComplaint,
			sentiment: nlu.Sentiment{Polarity: 0},
			want:      TypeComplainer,
		},
		{
			name:    "repeat above five calls",
			profile: CustomerProfile{TotalCalls: 6},
			intent:  nlu.IntentBillingInquiry,
			want:    TypeRepeat,
		},
		{
			name:    "regular otherwise",
			profile: CustomerProfile{TotalCalls: 2},
			intent:  nlu.IntentGeneralInquiry,
			want:    TypeRegular,
		},
		{
			name:      "polarity exactly at boundary is not frustrated",
			profile:   CustomerProfile{TotalCalls: 2},
			sentiment: nlu.Sentiment{Polarity: -0.3},
			want:      TypeRegular,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.profile, tt.intent, tt.sentiment)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestApplyOutcomeIncrementalAverage(t *testing.T) {
	p := NewProfile("cust-1")

	sat := 0.8
	resolved := true
	ApplyOutcome(&p, &sat, &resolved)

	assert.Equal(t, 1, p.TotalCalls)
	assert.InDelta(t, 0.8, p.SatisfactionAvg, 1e-9)
	assert.InDelta(t, 1.0, p.ResolutionRate, 1e-9)

	sat2 := 0.4
	unresolved := false
	ApplyOutcome(&p, &sat2, &unresolved)

	assert.Equal(t, 2, p.TotalCalls)
	assert.InDelta(t, 0.6, p.SatisfactionAvg, 1e-9)
	assert.InDelta(t, 0.5, p.ResolutionRate, 1e-9)
}

func TestApplyOutcomeNilFieldsLeaveAveragesUntouched(t *testing.T) {
	p := CustomerProfile{CustomerID: "cust-2", TotalCalls: 4, SatisfactionAvg: 0.7, ResolutionRate: 0.5}

	ApplyOutcome(&p, nil, nil)

	assert.Equal(t, 5, p.TotalCalls)
	assert.InDelta(t, 0.7, p.SatisfactionAvg, 1e-9)
	assert.InDelta(t, 0.5, p.ResolutionRate, 1e-9)
}
