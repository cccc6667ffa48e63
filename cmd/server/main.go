package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/eduinsight/dropout-backend/internal/classifier"
	"github.com/eduinsight/dropout-backend/internal/config"
	"github.com/eduinsight/dropout-backend/internal/database"
	"github.com/eduinsight/dropout-backend/internal/handler"
	"github.com/eduinsight/dropout-backend/internal/logger"
	"github.com/eduinsight/dropout-backend/internal/repository"
	"github.com/eduinsight/dropout-backend/internal/router"
	"github.com/eduinsight/dropout-backend/internal/service"
	"github.com/eduinsight/dropout-backend/internal/validator"
	"github.com/eduinsight/dropout-backend/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("model_path", cfg.ModelPath).
		Msg("Starting Dropout Prediction Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Load Model ────────────────────────────────────────────────────
	// A load failure is not fatal: the server comes up and every
	// prediction request fails with MODEL_UNAVAILABLE until a restart
	// with a valid artifact.
	var clf classifier.Classifier
	forest, err := classifier.LoadFromFile(cfg.ModelPath)
	if err != nil {
		log.Warn().Err(err).Str("path", cfg.ModelPath).
			Msg("Model could not be loaded; prediction requests will fail")
	} else {
		clf = forest
		log.Info().
			Int("trees", len(forest.Trees)).
			Strs("classes", forest.Classes()).
			Msg("Model loaded")
	}

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
	predictionRepo := repository.NewPredictionRepository(pool)
	moodRepo := repository.NewMoodRepository(pool)

	// ─── Initialize Services ──────────────────────────────────────────
	predictionService := service.NewPredictionService(clf, log)
	historyService := service.NewHistoryService(predictionRepo, rdb, log)
	moodService := service.NewMoodService(moodRepo, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Meta:       handler.NewMetaHandler(predictionService, pool, rdb),
		Prediction: handler.NewPredictionHandler(predictionService, historyService, log),
		History:    handler.NewHistoryHandler(historyService),
		Mood:       handler.NewMoodHandler(moodService),
		WS:         handler.NewWSHandler(rdb, log, cfg.AllowedOrigins),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	persistenceWorker := worker.NewPersistenceWorker(predictionRepo, rdb, log)
	go persistenceWorker.Start(workerCtx)

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(handlers, cfg)

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

	// 2. Stop the persistence worker and let the queue drain.
	workerCancel()
	time.Sleep(2 * time.Second) // Allow workers to drain.

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
