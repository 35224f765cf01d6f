package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/verdantlabs/careloop/pkg/log"
)

type LLMConfig struct {
	BaseURL     string  `env:"LLM_BASE_URL" envDefault:"https://api.openai.com"`
	APIKey      string  `env:"LLM_API_KEY"`
	Model       string  `env:"LLM_MODEL" envDefault:"gpt-4o-mini"`
	Temperature float64 `env:"LLM_TEMPERATURE" envDefault:"0.4"`
	MaxTokens   int     `env:"LLM_MAX_TOKENS" envDefault:"1024"`
	// Generous default because local backends can take minutes per reply.
	TimeoutSeconds int `env:"LLM_TIMEOUT_SECONDS" envDefault:"120"`
}

func NewLLMConfig(ctx context.Context) *LLMConfig {
	c := &LLMConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse LLM config")
	}
	return c
}

type OllamaConfig struct {
	BaseURL string `env:"OLLAMA_BASE_URL" envDefault:"http://localhost:11434"`
	APIKey  string `env:"OLLAMA_API_KEY"`
	Model   string `env:"OLLAMA_MODEL" envDefault:"llama3.1"`
}

func NewOllamaConfig(ctx context.Context) *OllamaConfig {
	c := &OllamaConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Ollama config")
	}
	return c
}
