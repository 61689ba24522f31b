package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/stemsi/paxcalc-backend/internal/config"
	"github.com/stemsi/paxcalc-backend/internal/database"
	"github.com/stemsi/paxcalc-backend/internal/dataset"
	"github.com/stemsi/paxcalc-backend/internal/handler"
	"github.com/stemsi/paxcalc-backend/internal/logger"
	"github.com/stemsi/paxcalc-backend/internal/middleware"
	"github.com/stemsi/paxcalc-backend/internal/repository"
	"github.com/stemsi/paxcalc-backend/internal/router"
	"github.com/stemsi/paxcalc-backend/internal/service"
	"github.com/stemsi/paxcalc-backend/internal/validator"
	"github.com/stemsi/paxcalc-backend/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting PAX calculator backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Load Bundled Indices ──────────────────────────────────────────
	catalog, err := dataset.Catalog(cfg.DatasetDir)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load bundled PAX indices")
	}
	log.Info().Int("count", len(catalog)).Str("dataset_dir", cfg.DatasetDir).Msg("Bundled indices loaded")

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Repositories ───────────────────────────────────────
	adminRepo := repository.NewAdminRepository(pool)
	indexRepo := repository.NewPaxIndexRepository(pool)
	calculationRepo := repository.NewCalculationRepository(pool)
	indexCache := repository.NewPaxIndexCache(rdb, cfg.IndexCacheTTL)
	lastUsedRepo := repository.NewLastUsedRepository(rdb, cfg.LastUsedTTL)
	historyQueue := repository.NewHistoryQueue(rdb)

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg, adminRepo)
	paxService := service.NewPaxService(indexRepo, indexCache, catalog, cfg.DefaultIndexYear, log)
	calculatorService := service.NewCalculatorService(paxService, historyQueue, lastUsedRepo, calculationRepo, log)
	exportService := service.NewExportService()

	// ─── Initialize Handlers ──────────────────────────────────────────
	systemHandler := handler.NewSystemHandler(map[string]handler.HealthCheck{
		"postgres": pool.Ping,
		"redis":    func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
	}, historyQueue, log)

	handlers := &router.Handlers{
		Auth:       handler.NewAuthHandler(authService),
		Pax:        handler.NewPaxHandler(paxService, exportService, log),
		Calculator: handler.NewCalculatorHandler(calculatorService),
		WS:         handler.NewWSHandler(calculatorService, log, cfg.AllowedOrigins),
		System:     systemHandler,
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())
	var workers sync.WaitGroup

	historyWorker := worker.NewHistoryWorker(calculationRepo, historyQueue, log)
	workers.Add(1)
	go func() {
		defer workers.Done()
		historyWorker.Start(workerCtx)
	}()

	// ─── Setup Router ──────────────────────────────────────────────────
	// Login attempts: 10 per minute per IP.
	loginLimiter := middleware.NewRateLimiter(ctx, 10, time.Minute)
	r := router.SetupRouter(authService, handlers, loginLimiter, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop the history worker and wait for its final flush.
	workerCancel()
	workers.Wait()

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
