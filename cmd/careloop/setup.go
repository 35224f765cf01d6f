package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/verdantlabs/careloop/internal/config"
	"github.com/verdantlabs/careloop/internal/providers/llm"
	"github.com/verdantlabs/careloop/internal/service/chat"
	"github.com/verdantlabs/careloop/internal/service/memory"
	"github.com/verdantlabs/careloop/internal/service/router"
	"github.com/verdantlabs/careloop/internal/storage/sqlite"
	"github.com/verdantlabs/careloop/internal/transport/cli"
	"github.com/verdantlabs/careloop/internal/transport/httpapi"
	"github.com/verdantlabs/careloop/pkg/log"
	"github.com/verdantlabs/careloop/pkg/srv"
)

func NewServices(ctx context.Context) []srv.Service {
	logger := log.FromCtx(ctx)
	services := make([]srv.Service, 0)

	if err := initEnv(ctx, config.GetRuntimePath()); err != nil {
		logger.Fatal().Err(err).Msg("failed to init env")
	}

	// 1. Configuration
	appCfg := config.NewAppConfig(ctx)
	memCfg := config.NewMemoryConfig(ctx)
	llmCfg := config.NewLLMConfig(ctx)

	// 2. Storage
	db, err := sqlite.NewDB(ctx, appCfg.GetDatabasePath())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize storage")
	}
	services = append(services, srv.NewCleanup(db.Close))

	sessions := sqlite.NewSessionsRepo(db)
	messages := sqlite.NewMessagesRepo(db)
	summaries := sqlite.NewSummariesRepo(db)
	pins := sqlite.NewPinsRepo(db)
	clinical := sqlite.NewClinicalStore(db)

	// 3. AI provider
	aiProvider, err := llm.NewProvider(ctx, appCfg, llmCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize LLM provider")
	}

	// 4. Memory engine
	buffer := memory.NewRollingBuffer(messages, memCfg.BufferSize)
	assembler := memory.NewAssembler(buffer, summaries, pins, memCfg)
	extractor := memory.NewPinExtractor(pins, memCfg)
	summarizer := memory.NewSummarizer(messages, summaries, aiProvider, memCfg)

	// 5. Ground-truth router
	queryRouter := router.NewRouter(clinical, memCfg)

	// 6. Turn orchestrator
	chatSvc := chat.NewService(
		appCfg, llmCfg,
		sessions, messages,
		aiProvider, queryRouter,
		assembler, extractor, summarizer,
	)

	// 7. Transports
	transports, err := initTransports(ctx, appCfg, chatSvc, sessions)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize transports")
	}
	services = append(services, transports...)

	return services
}

func initTransports(ctx context.Context, cfg *config.AppConfig, chatSvc *chat.Service, sessions *sqlite.SessionsRepo) ([]srv.Service, error) {
	var services []srv.Service

	if cfg.EnableHTTP {
		services = append(services, httpapi.NewServer(cfg.HTTPAddr, chatSvc, sessions))
	}

	if cfg.EnableCLI {
		repl, err := cli.NewReadLine(chatSvc, cfg)
		if err != nil {
			return nil, err
		}
		services = append(services, repl)
	}

	return services, nil
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
