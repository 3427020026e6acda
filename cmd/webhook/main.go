package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"adbridge/internal/adpiler"
	"adbridge/internal/classify"
	"adbridge/internal/domain"
	"adbridge/internal/geo"
	"adbridge/internal/history"
	"adbridge/internal/http/handlers"
	"adbridge/internal/http/httpapi"
	"adbridge/internal/infra"
	"adbridge/internal/mapping"
	"adbridge/internal/pipeline"
	"adbridge/internal/preview"
	"adbridge/internal/publish"
	"adbridge/internal/source"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()

	var store *history.Store
	if cfg.DatabaseURL != "" {
		pool, err := infra.NewDBPool(ctx, cfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect database")
		}
		defer pool.Close()
		store = history.NewStore(infra.NewSQLRunner(pool, logger), logger)
	}

	resolver, err := geo.Open(cfg.GeoIPDBPath, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip database unavailable, continuing without it")
	}
	if resolver != nil {
		defer resolver.Close()
	}

	orch, err := buildOrchestrator(cfg, logger, store)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build pipeline")
	}

	app := handlers.NewApp(logger, cfg.WebhookSecret, orch, store)
	router := httpapi.NewRouter(app, logger, resolver)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("webhook service listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}

func buildOrchestrator(cfg *infra.Config, logger infra.Logger, store *history.Store) (*pipeline.Orchestrator, error) {
	api, err := adpiler.NewClient(adpiler.Options{
		BaseURL: cfg.AdpilerBaseURL,
		Token:   cfg.AdpilerToken,
		Logger:  &logger,
	})
	if err != nil {
		return nil, err
	}

	src := source.NewClient(source.Options{
		BaseURL:  cfg.SourceBaseURL,
		APIKey:   cfg.SourceAPIKey,
		APIToken: cfg.SourceAPIToken,
		Logger:   logger,
	})

	var lookup mapping.Lookup
	if cfg.MappingCSVPath != "" {
		csvLookup, err := mapping.LoadCSV(cfg.MappingCSVPath)
		if err != nil {
			return nil, err
		}
		lookup = csvLookup
	}

	var forced *domain.Mode
	if cfg.ForcedMode != "" {
		mode, err := domain.ParseMode(cfg.ForcedMode)
		if err != nil {
			return nil, err
		}
		forced = &mode
	}

	return pipeline.New(pipeline.Options{
		Classifier:        classify.NewClassifier(src.DownloadAttachment, classify.ImageConfigProber{}, logger),
		Publisher:         publish.NewPublisher(publish.Options{API: api, Logger: logger}),
		Previews:          preview.NewResolver(api, cfg.PreviewDomain, cfg.CampaignCode, logger),
		Mapping:           lookup,
		Comments:          src,
		History:           store,
		Logger:            logger,
		ForcedMode:        forced,
		PaidDefault:       cfg.PaidDefault,
		DefaultClientID:   cfg.DefaultClientID,
		DefaultCampaignID: cfg.DefaultCampaignID,
	}), nil
}
