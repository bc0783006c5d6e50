package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/sandevgo/docvault/internal/config"
	"github.com/sandevgo/docvault/internal/providers/openai"
	"github.com/sandevgo/docvault/internal/service/chat"
	"github.com/sandevgo/docvault/internal/service/ingest"
	"github.com/sandevgo/docvault/internal/storage/sqlite"
	"github.com/sandevgo/docvault/internal/transport/httpapi"
	"github.com/sandevgo/docvault/pkg/log"
	"github.com/sandevgo/docvault/pkg/srv"
)

// NewServices is the composition root: configuration, storage, the one shared
// provider client, and the HTTP transport, wired by explicit construction.
func NewServices(ctx context.Context) []srv.Service {
	logger := log.FromCtx(ctx)
	services := make([]srv.Service, 0)

	// init env
	if err := initEnv(ctx, config.GetRuntimePath()); err != nil {
		logger.Fatal().Err(err).Msg("failed to init env")
	}

	// 1. Configuration
	appCfg := config.NewAppConfig(ctx)
	aiCfg := config.NewOpenAIConfig(ctx)

	// 2. Storage
	db, err := sqlite.NewDB(ctx, appCfg.GetDatabasePath())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize storage")
	}
	services = append(services, srv.NewCleanup(db.Close))

	documentsRepo := sqlite.NewDocumentsRepo(db)
	feedbackRepo := sqlite.NewFeedbackRepo(db)

	// 3. Provider client, built once and shared by every request.
	provider := openai.NewClient(openai.Config{
		BaseURL: aiCfg.BaseURL,
		APIKey:  aiCfg.APIKey,
		Model:   aiCfg.Model,
	})

	// 4. Services
	ingestSvc := ingest.NewService(provider, documentsRepo, aiCfg)
	chatSvc := chat.NewService(provider, documentsRepo, aiCfg, appCfg)

	// 5. Transport
	api := httpapi.NewServer(appCfg.ListenAddr, ingestSvc, chatSvc, documentsRepo, feedbackRepo, config.IsDebug())
	services = append(services, api)

	return services
}

func initEnv(ctx context.Context, runtimePath string) error {
	logger := log.FromCtx(ctx)
	envFile := filepath.Join(runtimePath, ".env")

	if _, err := os.Stat(envFile); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if err := godotenv.Load(envFile); err != nil {
		logger.Warn().Err(err).Str("path", envFile).Msg("failed to load .env file")
		return err
	}

	logger.Debug().Str("path", envFile).Msg("loaded .env file")
	return nil
}
