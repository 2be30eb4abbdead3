// Package main is the entrypoint for the mediascribe server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mediascribe/internal/api"
	"mediascribe/internal/api/handler"
	mw "mediascribe/internal/api/middleware"
	"mediascribe/internal/api/response"
	"mediascribe/internal/cache"
	"mediascribe/internal/config"
	"mediascribe/internal/feed"
	"mediascribe/internal/ingest"
	"mediascribe/internal/media"
	"mediascribe/internal/pipeline"
	"mediascribe/internal/store"
	"mediascribe/internal/summarize"
	"mediascribe/internal/transcribe"
)

const shutdownTimeout = 30 * time.Second

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load config — fail fast on invalid config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	slog.Info("config loaded", "summary_provider", cfg.Summary.Provider, "env", cfg.Server.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Working directories
	for _, dir := range []string{cfg.Storage.UploadDir, cfg.Storage.WatchDir, cfg.Storage.AudioDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	// 3. Connect to database
	pool, err := store.Connect(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()
	slog.Info("database connected")

	// 4. Run migrations
	if err := store.RunMigrations(cfg.Database.URL, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	slog.Info("database migrations applied")

	// 5. Create Redis cache
	redisCache, err := cache.NewRedisCache(cfg.Redis.URL)
	if err != nil {
		return fmt.Errorf("create redis cache: %w", err)
	}
	defer redisCache.Close()

	if err := redisCache.Ping(ctx); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	slog.Info("redis connected")

	// 6. Create summarizer provider
	summarizer, err := summarize.NewProvider(cfg.Summary)
	if err != nil {
		return fmt.Errorf("create summarizer: %w", err)
	}
	slog.Info("summarizer initialized", "provider", summarizer.Name())

	// 7. Build the processing pipeline
	pgStore := store.NewPostgresStore(pool)
	decoder := media.NewFFmpegDecoder(cfg.Storage.FFmpegPath)
	transcriber := transcribe.NewHTTPClient(cfg.Whisper.BaseURL, cfg.Whisper.Timeout)

	worker := pipeline.NewWorker(pgStore, redisCache, decoder, transcriber, summarizer,
		cfg.Storage.UploadDir, cfg.Storage.AudioDir, cfg.Summary.InferenceTimeout)
	dispatcher := pipeline.NewDispatcher(pgStore, redisCache, worker,
		cfg.Pipeline.MaxWorkers, cfg.Pipeline.PollInterval)
	gate := pipeline.NewGate(pgStore, redisCache, dispatcher.Notify)

	dispatcherDone := make(chan struct{})
	go func() {
		defer close(dispatcherDone)
		if err := dispatcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("dispatcher stopped", "error", err)
			stop()
		}
	}()

	// 8. Start the directory scanner
	scanner := ingest.NewScanner(gate, cfg.Storage.WatchDir, cfg.Storage.UploadDir, cfg.Pipeline.ScanInterval)
	scannerDone := make(chan struct{})
	go func() {
		defer close(scannerDone)
		if err := scanner.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("ingest scanner stopped", "error", err)
		}
	}()

	// 9. Build router with dependencies
	deps := api.Dependencies{
		RateLimit: mw.NewRateLimit(redisCache, 10),

		HealthHandler:     healthHandler(pgStore, redisCache),
		UploadHandler:     handler.NewUploadHandler(gate, cfg.Storage.UploadDir),
		ListJobsHandler:   handler.NewListJobsHandler(pgStore),
		GetJobHandler:     handler.NewGetJobHandler(pgStore),
		JobStatusHandler:  handler.NewJobStatusHandler(pgStore, redisCache),
		DeleteJobHandler:  handler.NewDeleteJobHandler(pgStore, redisCache, cfg.Storage.UploadDir),
		TranscriptHandler: handler.NewTranscriptHandler(pgStore),
		RSSHandler:        handler.NewRSSHandler(pgStore, feed.NewBuilder(cfg.Feed.BaseURL)),
	}

	router := api.NewRouter(deps)

	// 10. Start HTTP server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		slog.Info("shutdown signal received, draining connections...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	// Wait for in-flight jobs and the scanner to wind down. Jobs that cannot
	// finish stay in processing and are swept back to pending on next start.
	<-dispatcherDone
	<-scannerDone

	slog.Info("server stopped gracefully")
	return nil
}

// healthHandler checks database and cache connectivity.
func healthHandler(s store.Store, c cache.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := map[string]string{
			"database": "ok",
			"cache":    "ok",
		}

		if err := s.Ping(r.Context()); err != nil {
			checks["database"] = "degraded"
		}
		if err := c.Ping(r.Context()); err != nil {
			checks["cache"] = "degraded"
		}

		degraded := checks["database"] != "ok" || checks["cache"] != "ok"
		if degraded {
			response.Error(w, http.StatusServiceUnavailable, "DEGRADED",
				"One or more services degraded", checks)
			return
		}

		response.JSON(w, map[string]any{
			"status":   "ok",
			"services": checks,
		})
	}
}
