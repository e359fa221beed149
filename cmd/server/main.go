package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/examsentry/integrity-backend/internal/config"
	"github.com/examsentry/integrity-backend/internal/database"
	"github.com/examsentry/integrity-backend/internal/handler"
	"github.com/examsentry/integrity-backend/internal/logger"
	"github.com/examsentry/integrity-backend/internal/policy"
	"github.com/examsentry/integrity-backend/internal/repository"
	"github.com/examsentry/integrity-backend/internal/router"
	"github.com/examsentry/integrity-backend/internal/service"
	"github.com/examsentry/integrity-backend/internal/validator"
	"github.com/examsentry/integrity-backend/internal/worker"
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
		Msg("Starting ExamSentry Integrity Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis (optional backend) ───────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	if rdb != nil {
		defer rdb.Close()
	}

	// ─── Initialize Repositories ───────────────────────────────────────
	examRepo := repository.NewExamRepository(pool)
	submissionRepo := repository.NewSubmissionRepository(pool)
	eventRepo := repository.NewEventRepository(pool)
	violationRepo := repository.NewViolationRepository(pool)
	metricsRepo := repository.NewMetricsRepository(pool)
	flagRepo := repository.NewFlagRepository(pool)
	inviteRepo := repository.NewInviteRepository(pool)

	// ─── Initialize Services ──────────────────────────────────────────
	thresholds := policy.FromConfig(cfg)

	tokenService := service.NewTokenService(cfg)
	accessService := service.NewAccessService(examRepo, inviteRepo, submissionRepo, log)
	lockService := service.NewSessionLockService(rdb, cfg.SessionLockTTL, log)
	monitoringService := service.NewMonitoringService(
		submissionRepo, eventRepo, violationRepo, metricsRepo, flagRepo,
		rdb, thresholds, log,
	)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Access:     handler.NewAccessHandler(accessService, log),
		Session:    handler.NewSessionHandler(lockService, cfg, log),
		Monitoring: handler.NewMonitoringHandler(monitoringService, log),
		ProctorWS:  handler.NewProctorWSHandler(rdb, monitoringService, log, cfg.AllowedOrigins),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	// Without Redis there is no recompute queue; the monitoring service
	// recomputes metrics inline instead.
	workerCtx, workerCancel := context.WithCancel(context.Background())

	if rdb != nil {
		metricsWorker := worker.NewMetricsWorker(metricsRepo, rdb, thresholds, log)
		go metricsWorker.Start(workerCtx)
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(tokenService, handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
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

	// 2. Stop the worker and wait for the queue to drain.
	workerCancel()
	time.Sleep(2 * time.Second) // Allow the worker to drain.

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
