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

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hszk-dev/ytpodcast/internal/api/handler"
	"github.com/hszk-dev/ytpodcast/internal/api/middleware"
	"github.com/hszk-dev/ytpodcast/internal/app"
	"github.com/hszk-dev/ytpodcast/internal/config"
	"github.com/hszk-dev/ytpodcast/internal/infrastructure/queue"
	"github.com/hszk-dev/ytpodcast/internal/usecase"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	videoCache, closeCache, err := app.OpenVideoCache(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to open video cache: %w", err)
	}
	defer func() {
		if err := closeCache(); err != nil {
			logger.Error("failed to close video cache", slog.String("error", err.Error()))
		}
	}()

	source := app.NewYouTubeSource(cfg)
	provider := app.NewInfoProvider(cfg, source, videoCache)

	var warmupSvc usecase.WarmupService
	if cfg.RabbitMQ.Enabled {
		queueClient, err := queue.NewClient(ctx, queue.DefaultClientConfig(cfg.RabbitMQ.URL()))
		if err != nil {
			logger.Warn("RabbitMQ unavailable, cache warm-up disabled", slog.String("error", err.Error()))
		} else {
			defer queueClient.Close()
			logger.Info("connected to RabbitMQ")
			warmupSvc = usecase.NewWarmupService(provider, queueClient)
		}
	}

	infoHandler := handler.NewInfoHandler(provider, warmupSvc, cfg.Provider.MaxLimit)
	cachePinger, _ := videoCache.(handler.Pinger)
	r := setupRouter(logger, infoHandler, source.Name(), cfg.Cache.Backend, cachePinger)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server",
			slog.Int("port", cfg.Server.Port),
			slog.String("cache_backend", cfg.Cache.Backend),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("server error: %w", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info("shutting down server", slog.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

func setupRouter(logger *slog.Logger, infoHandler *handler.InfoHandler, sourceName, cacheBackend string, cachePinger handler.Pinger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))

	r.Get("/health", handler.Health(sourceName, cacheBackend, cachePinger))
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", infoHandler.Routes)

	return r
}
