package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/verdantlabs/careloop/internal/core"
)

func TestScore_Deterministic(t *testing.T) {
	content := "I had a severe headache all night and took 400 mg ibuprofen."
	first := Score(core.RoleUser, content)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Score(core.RoleUser, content))
	}
}

func TestScore_Ranking(t *testing.T) {
	clinical := Score(core.RoleUser, "My chest pain is getting worse, I think it's urgent")
	casual := Score(core.RoleUser, "The weather has been nice this week")
	ack := Score(core.RoleUser, "ok thanks")

	assert.Greater(t, clinical, casual, "clinical signal should outrank casual chat")
	assert.Greater(t, casual, ack, "casual chat should outrank an acknowledgment")
}

func TestScore_RoleWeight(t *testing.T) {
	content := "She mentioned a headache after dinner."
	assert.Greater(t, Score(core.RoleUser, content), Score(core.RoleAssistant, content))
	assert.Greater(t, Score(core.RoleAssistant, content), Score(core.RoleSystem, content))
}

func TestScore_Bounds(t *testing.T) {
	tests := []struct {
		name    string
		role    string
		content string
	}{
		{"empty", core.RoleUser, ""},
		{"ack", core.RoleUser, "ok"},
		{"stacked signals", core.RoleUser, "severe chest pain, emergency, anxious, took medication, headache"},
		{"system", core.RoleSystem, "routine notice"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score := Score(tt.role, tt.content)
			assert.GreaterOrEqual(t, score, 0.0)
			assert.LessOrEqual(t, score, 1.0)
		})
	}
}

func TestDetectSignals(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		category string
		urgency  core.Urgency
	}{
		{"symptom", "I've had a migraine since Tuesday", "symptom", core.UrgencyRoutine},
		{"medication", "the doctor prescribed a new dose", "medication", core.UrgencyRoutine},
		{"mood", "feeling really anxious lately", "mood", core.UrgencyRoutine},
		{"severity", "the pain is getting worse", "symptom", core.UrgencyElevated},
		{"urgent", "this feels like an emergency", "urgency", core.UrgencyUrgent},
		{"nothing", "see you tomorrow at the park", "", core.UrgencyRoutine},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig := detectSignals(tt.text)
			assert.Equal(t, tt.category, sig.category())
			assert.Equal(t, tt.urgency, sig.urgency)
		})
	}
}

func TestSignalSentence(t *testing.T) {
	text := "Thanks for checking in. My headache came back this morning. Anyway, how are you?"
	assert.Equal(t, "My headache came back this morning.", signalSentence(text))
}
