package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/Spunkeroo/scam-stream/internal/config"
	"github.com/Spunkeroo/scam-stream/internal/handler"
	"github.com/Spunkeroo/scam-stream/internal/middleware"
	"github.com/Spunkeroo/scam-stream/internal/repository"
	"github.com/Spunkeroo/scam-stream/internal/router"
	"github.com/Spunkeroo/scam-stream/internal/service"
)

func main() {
	cfg := config.Load()
	middleware.InitLogger(cfg.LogLevel, "scam-stream")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := repository.Open(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.StorageBackend).Msg("failed to open storage")
	}
	defer closeStore()

	var pool *pgxpool.Pool
	if pg, ok := store.(*repository.PostgresRepo); ok {
		pool = pg.Pool()
	}
	handler.InitMetrics(pool)

	catalog := service.NewCatalog(cfg.FixtureDir, cfg.FixtureBaseURL)
	reports := service.NewSubmissionRegistry(store, cfg.PromotionThreshold)
	statsWorker := service.NewStatsWorker(catalog, reports, cfg.StatsInterval, handler.PublishStats)
	catalog.OnLoad(func(fixture string, err error) {
		handler.RecordFixtureLoad(fixture, err)
		if fixture == service.FixtureScams && err == nil {
			statsWorker.Refresh(ctx)
		}
	})
	// Fixtures load in the background; views stay empty until they arrive.
	go func() {
		_ = catalog.Load(ctx)
	}()
	go statsWorker.Start(ctx)
	defer statsWorker.Stop()

	app := fiber.New(fiber.Config{
		AppName:      "scam.stream API",
		ServerHeader: "scam.stream",
		BodyLimit:    cfg.BodyLimitMB << 20,
	})

	router.Setup(app, &router.Handlers{
		Health:   handler.NewHealthHandler(store, cfg.StorageBackend, catalog),
		Feed:     handler.NewFeedHandler(service.NewFeedService(catalog, reports, store)),
		Database: handler.NewDatabaseHandler(service.NewDatabaseService(catalog, store)),
		Report:   handler.NewReportHandler(reports),
		Video:    handler.NewVideoHandler(service.NewVideoService(catalog)),
		Alert:    handler.NewAlertHandler(service.NewAlertService(catalog)),
		Stats:    handler.NewStatsHandler(statsWorker),
	}, cfg.CORSOrigins)

	go func() {
		<-ctx.Done()
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown failed")
		}
	}()

	log.Info().
		Str("port", cfg.Port).
		Str("env", cfg.Environment).
		Str("storage", cfg.StorageBackend).
		Msg("scam.stream backend starting")

	if err := app.Listen(":"+cfg.Port, fiber.ListenConfig{DisableStartupMessage: true}); err != nil {
		log.Error().Err(err).Msg("server stopped")
	}
}
