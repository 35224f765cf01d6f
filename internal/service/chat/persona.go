package chat

import (
	"os"

	"github.com/verdantlabs/careloop/internal/config"
	"github.com/verdantlabs/careloop/internal/core"
)

const defaultPersona = "You are CareLoop, a calm personal health companion. " +
	"You help the user keep track of how they and the people they care for are doing. " +
	"Be warm and concise. You are not a doctor and never give diagnoses."

// Persona builds the system prompt emitted ahead of the assembled context
// window. A PERSONA.md in the runtime directory overrides the default.
type Persona struct {
	cfg *config.AppConfig
}

func NewPersona(cfg *config.AppConfig) *Persona {
	return &Persona{cfg: cfg}
}

func (p *Persona) Build() core.ChatMessage {
	if content, err := os.ReadFile(p.cfg.GetPersonaPath()); err == nil && len(content) > 0 {
		return core.ChatMessage{Role: core.RoleSystem, Content: string(content)}
	}
	return core.ChatMessage{Role: core.RoleSystem, Content: defaultPersona}
}
