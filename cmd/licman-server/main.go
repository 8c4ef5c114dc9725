// Package main is the entrypoint for the licence-manager server.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Kiefer-Networks/licence-manager/internal/api"
	"github.com/Kiefer-Networks/licence-manager/internal/config"
	"github.com/Kiefer-Networks/licence-manager/internal/costs"
	"github.com/Kiefer-Networks/licence-manager/internal/db"
	"github.com/Kiefer-Networks/licence-manager/internal/matching"
	"github.com/Kiefer-Networks/licence-manager/internal/metrics"
	"github.com/Kiefer-Networks/licence-manager/internal/reconcile"
	"github.com/rs/zerolog"
)

var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger := zerolog.New(os.Stdout).With().Timestamp().Str("version", Version).Logger()
	if os.Getenv("ENV") != string(config.EnvProduction) {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	logger.Info().
		Str("version", Version).
		Str("commit", Commit).
		Str("build_date", BuildDate).
		Msg("Starting licence-manager server")

	cfg := config.LoadServerConfig()

	if cfg.DatabaseURL == "" {
		logger.Fatal().Msg("DATABASE_URL environment variable is required")
		return 1
	}

	database, err := db.New(ctx, db.DefaultConfig(cfg.DatabaseURL), logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to database")
		return 1
	}
	defer database.Close()

	if err := database.Migrate(ctx); err != nil {
		logger.Fatal().Err(err).Msg("Failed to run database migrations")
		return 1
	}

	normalizer := costs.NewNormalizer()
	if cfg.PriceBookPath != "" {
		normalizer, err = costs.LoadPriceBook(cfg.PriceBookPath)
		if err != nil {
			logger.Fatal().Err(err).Str("path", cfg.PriceBookPath).Msg("Failed to load price book")
			return 1
		}
		logger.Info().Str("path", cfg.PriceBookPath).Msg("Price book loaded")
	}

	matchCfg := matching.DefaultConfig(cfg.CompanyDomains)
	if cfg.FuzzyMinScore > 0 {
		matchCfg.FuzzyMinScore = cfg.FuzzyMinScore
	}

	m := metrics.New()
	coordinator := reconcile.NewCoordinator(database, normalizer, matchCfg, logger)
	service := reconcile.NewService(database, coordinator, reconcile.ServiceConfig{
		Workers: cfg.ReconcileWorkers,
	}, m, logger)

	if cfg.ReconcileSchedule != "" {
		scheduler := reconcile.NewScheduler(service, cfg.ReconcileSchedule, logger)
		if err := scheduler.Start(ctx); err != nil {
			logger.Fatal().Err(err).Msg("Failed to start reconcile scheduler")
			return 1
		}
		defer func() {
			<-scheduler.Stop().Done()
		}()
	}

	router := api.NewRouter(database, service, m, logger)

	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           router.Engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.ListenAddr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		logger.Error().Err(err).Msg("HTTP server failed")
		return 1
	case sig := <-sigCh:
		logger.Info().Str("signal", sig.String()).Msg("Shutting down")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Graceful shutdown failed")
		return 1
	}

	logger.Info().Msg("Server stopped")
	return 0
}
