package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/docvault/internal/core"
	"github.com/sandevgo/docvault/pkg/log"
)

// OpenAIConfig holds the single required secret. The key is intentionally not
// tagged required: the service must come up without it and report a
// configuration error from the ingest and chat paths instead of dying at
// parse time.
type OpenAIConfig struct {
	APIKey  string `env:"OPENAI_API_KEY"`
	BaseURL string `env:"OPENAI_BASE_URL" envDefault:"https://api.openai.com"`
	Model   string `env:"OPENAI_MODEL" envDefault:"gpt-4-turbo-preview"`
}

func NewOpenAIConfig(ctx context.Context) *OpenAIConfig {
	c := &OpenAIConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse OpenAI config")
	}
	return c
}

// Validate reports whether remote calls can be attempted at all.
func (c OpenAIConfig) Validate() error {
	if c.APIKey == "" {
		return &core.ConfigurationError{Msg: "OPENAI_API_KEY is not configured"}
	}
	return nil
}
