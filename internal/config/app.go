package config

import (
	"context"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v9"
	"github.com/sandevgo/docvault/pkg/log"
)

type AppConfig struct {
	RuntimePath string `env:"DOCVAULT_RUNTIME_PATH" envDefault:".docvault"`

	// HTTP API
	ListenAddr string `env:"LISTEN_ADDR" envDefault:":8080"`

	// Run polling. One poll per interval, up to the attempt ceiling, so the
	// worst case wait is roughly interval * attempts.
	RunPollInterval time.Duration `env:"RUN_POLL_INTERVAL" envDefault:"1s"`
	RunMaxPolls     int           `env:"RUN_MAX_POLLS" envDefault:"30"`
}

func NewAppConfig(ctx context.Context) *AppConfig {
	c := &AppConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse App config")
	}
	return c
}

func (c AppConfig) GetRuntimePath() string {
	return c.RuntimePath
}

func (c AppConfig) GetDatabasePath() string {
	return filepath.Join(c.RuntimePath, "docvault.db")
}
