package memory

import (
	"strings"

	"github.com/verdantlabs/careloop/internal/core"
)

// Detection is keyword driven rather than full NLP: cheap, deterministic,
// and swappable behind the extractor without touching storage or scheduling.

var symptomKeywords = []string{
	"headache", "migraine", "nausea", "dizzy", "dizziness", "pain",
	"fever", "fatigue", "cough", "rash", "swelling", "insomnia",
	"cramp", "shortness of breath", "palpitation", "numbness", "symptom",
}

var medicationKeywords = []string{
	"medication", "medicine", "prescribed", "prescription", "dose",
	"dosage", "pill", "tablet", "refill", " mg", "insulin", "inhaler",
}

var moodKeywords = []string{
	"anxious", "anxiety", "depressed", "stressed", "overwhelmed",
	"irritable", "mood", "panic", "hopeless", "exhausted",
}

var urgentKeywords = []string{
	"emergency", "urgent", "911", "unbearable", "can't breathe",
	"cannot breathe", "chest pain", "collapsed", "bleeding heavily",
}

var severityKeywords = []string{
	"severe", "worse", "worsening", "intense", "getting bad", "very bad",
}

var acknowledgments = []string{
	"ok", "okay", "thanks", "thank you", "got it", "sure", "yes", "no", "fine",
}

type signals struct {
	symptom    bool
	medication bool
	mood       bool
	urgency    core.Urgency
}

func (s signals) any() bool {
	return s.symptom || s.medication || s.mood || s.urgency != core.UrgencyRoutine
}

func (s signals) category() string {
	switch {
	case s.symptom:
		return "symptom"
	case s.medication:
		return "medication"
	case s.mood:
		return "mood"
	case s.urgency != core.UrgencyRoutine:
		return "urgency"
	default:
		return ""
	}
}

func detectSignals(text string) signals {
	lower := strings.ToLower(text)

	sig := signals{urgency: core.UrgencyRoutine}
	sig.symptom = containsAny(lower, symptomKeywords)
	sig.medication = containsAny(lower, medicationKeywords)
	sig.mood = containsAny(lower, moodKeywords)

	switch {
	case containsAny(lower, urgentKeywords):
		sig.urgency = core.UrgencyUrgent
	case containsAny(lower, severityKeywords):
		sig.urgency = core.UrgencyElevated
	}
	return sig
}

func containsAny(lower string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func isAcknowledgment(text string) bool {
	trimmed := strings.ToLower(strings.TrimRight(strings.TrimSpace(text), ".!"))
	if len(strings.Fields(trimmed)) > 3 {
		return false
	}
	for _, ack := range acknowledgments {
		if trimmed == ack {
			return true
		}
	}
	return false
}

// signalSentence returns the first sentence carrying a positive signal, so a
// pin stores the fact itself rather than a whole message.
func signalSentence(text string) string {
	for _, sentence := range splitSentences(text) {
		if detectSignals(sentence).any() {
			return strings.TrimSpace(sentence)
		}
	}
	return strings.TrimSpace(text)
}

func splitSentences(text string) []string {
	var sentences []string
	var b strings.Builder
	for _, r := range text {
		b.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			if s := strings.TrimSpace(b.String()); s != "" {
				sentences = append(sentences, s)
			}
			b.Reset()
		}
	}
	if s := strings.TrimSpace(b.String()); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}
