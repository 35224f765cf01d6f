package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/verdantlabs/careloop/pkg/log"
)

// MemoryConfig holds the knobs of the conversation memory engine.
type MemoryConfig struct {
	// BufferSize is K: how many recent messages are always included verbatim.
	BufferSize int `env:"MEMORY_BUFFER_SIZE" envDefault:"10"`

	// SummaryThreshold triggers compression once the uncompressed message
	// count since the last summary exceeds it.
	SummaryThreshold int `env:"MEMORY_SUMMARY_THRESHOLD" envDefault:"8"`

	// TokenBudget bounds the assembled context payload.
	TokenBudget int `env:"MEMORY_TOKEN_BUDGET" envDefault:"2048"`

	// PinScoreThreshold is the promotion cutoff from candidate fact to
	// persisted pin. Tune against recorded clinical-safety requirements.
	PinScoreThreshold float64 `env:"MEMORY_PIN_SCORE_THRESHOLD" envDefault:"0.5"`

	// MaxPins caps how many pins are considered for one context assembly.
	MaxPins int `env:"MEMORY_MAX_PINS" envDefault:"20"`

	// VitalsWindowDays is the default lookback for vitals queries.
	VitalsWindowDays int `env:"MEMORY_VITALS_WINDOW_DAYS" envDefault:"7"`
}

func NewMemoryConfig(ctx context.Context) *MemoryConfig {
	c := &MemoryConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Memory config")
	}
	return c
}
