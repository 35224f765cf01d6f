package config

import (
	"context"
	"path/filepath"

	"github.com/caarlos0/env/v9"
	"github.com/verdantlabs/careloop/pkg/log"
)

type AppConfig struct {
	RuntimePath string `env:"CARELOOP_RUNTIME_PATH" envDefault:".careloop"`
	LLMProvider string `env:"LLM_PROVIDER" envDefault:"openai_compatible"`

	// Transport flags
	EnableHTTP bool   `env:"ENABLE_HTTP" envDefault:"true"`
	EnableCLI  bool   `env:"ENABLE_CLI" envDefault:"false"`
	HTTPAddr   string `env:"HTTP_ADDR" envDefault:":8787"`

	// Persona prompt shown to the model ahead of the assembled window.
	PersonaID string `env:"PERSONA_ID" envDefault:"companion"`
}

func NewAppConfig(ctx context.Context) *AppConfig {
	c := &AppConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse App config")
	}
	return c
}

func (c AppConfig) GetDatabasePath() string {
	return filepath.Join(c.RuntimePath, "careloop.db")
}

func (c AppConfig) GetPersonaPath() string {
	return filepath.Join(c.RuntimePath, "PERSONA.md")
}
