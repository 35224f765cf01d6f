package memory

import "github.com/verdantlabs/careloop/internal/core"

// Score assigns an importance weight to a message. It is a pure function of
// role and content: scoring the same message twice always yields the same
// value. Used to rank pins under a tight context budget and to weight
// competing summaries.
func Score(role, content string) float64 {
	var base float64
	switch role {
	case core.RoleUser:
		base = 0.45
	case core.RoleAssistant:
		base = 0.35
	default:
		base = 0.25
	}

	if isAcknowledgment(content) {
		return clamp(base - 0.25)
	}

	sig := detectSignals(content)
	if sig.symptom {
		base += 0.20
	}
	if sig.medication {
		base += 0.15
	}
	if sig.mood {
		base += 0.10
	}
	switch sig.urgency {
	case core.UrgencyUrgent:
		base += 0.30
	case core.UrgencyElevated:
		base += 0.15
	}

	return clamp(base)
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
