package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/verdantlabs/careloop/internal/config"
	"github.com/verdantlabs/careloop/internal/core"
	"github.com/verdantlabs/careloop/pkg/log"
)

// NewProvider creates the configured generation backend.
func NewProvider(ctx context.Context, appCfg *config.AppConfig, cfg *config.LLMConfig) (core.AIProvider, error) {
	switch appCfg.LLMProvider {
	case "openai_compatible":
		log.FromCtx(ctx).Info().
			Str("provider", appCfg.LLMProvider).
			Str("model", cfg.Model).
			Msg("starting llm provider")
		return NewOpenAICompatible(OpenAICompatibleConfig{
			BaseURL:    cfg.BaseURL,
			APIKey:     cfg.APIKey,
			Model:      cfg.Model,
			AuthHeader: "Authorization",
			AuthPrefix: "Bearer ",
			Timeout:    time.Duration(cfg.TimeoutSeconds) * time.Second,
		}), nil
	case "ollama":
		ollamaCfg := config.NewOllamaConfig(ctx)
		log.FromCtx(ctx).Info().
			Str("provider", appCfg.LLMProvider).
			Str("model", ollamaCfg.Model).
			Msg("starting llm provider")
		return NewOllama(ollamaCfg.BaseURL, ollamaCfg.APIKey, ollamaCfg.Model), nil
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", appCfg.LLMProvider)
	}
}
