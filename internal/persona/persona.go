// Package persona owns the interaction-persona vocabulary and the
// online-updated performance model used to pick a persona per turn.
package persona

// The fixed persona set. Enumeration order matters: ties during
// selection resolve to the first-seen persona, so this order must stay
// stable for reproducible selection.
const (
	EmpatheticAuthoritative  = "empathetic_authoritative"
	EfficientSolutionFocused = "efficient_solution_focused"
	FriendlyCasual           = "friendly_casual"
	ProfessionalFormal       = "professional_formal"
	PatientEducational       = "patient_educational"
	AssertiveDirect          = "assertive_direct"
	SupportiveEncouraging    = "supportive_encouraging"
	AnalyticalDetailed       = "analytical_detailed"
)

var all = []string{
	EmpatheticAuthoritative,
	EfficientSolutionFocused,
	FriendlyCasual,
	ProfessionalFormal,
	PatientEducational,
	AssertiveDirect,
	SupportiveEncouraging,
	AnalyticalDetailed,
}

// All returns the persona set in enumeration order.
func All() []string {
	out := make([]string, len(all))
	copy(out, all)
	return out
}

var descriptions = map[string]string{
	EmpatheticAuthoritative:  "Show empathy while being confident and solution-oriented",
	EfficientSolutionFocused: "Be direct, efficient, and focus on solving the problem quickly",
	FriendlyCasual:           "Be warm, friendly, and conversational",
	ProfessionalFormal:       "Be professional, formal, and respectful",
	PatientEducational:       "Be patient, explain things clearly, and guide the customer",
	AssertiveDirect:          "Be assertive, direct, and take charge of the situation",
	SupportiveEncouraging:    "Be supportive, encouraging, and positive",
	AnalyticalDetailed:       "Be analytical, provide detailed information, and be thorough",
}

// Description returns the style instruction for a persona, used when
// prompting the response generator.
func Description(p string) string {
	if d, ok := descriptions[p]; ok {
		return d
	}
	return "Be helpful and professional"
}
