package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hszk-dev/ytpodcast/internal/app"
	"github.com/hszk-dev/ytpodcast/internal/config"
	"github.com/hszk-dev/ytpodcast/internal/domain/repository"
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
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if cfg.Cache.Backend == config.CacheBackendNone {
		return fmt.Errorf("worker needs a cache backend, CACHE_BACKEND is %q", cfg.Cache.Backend)
	}

	videoCache, closeCache, err := app.OpenVideoCache(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to open video cache: %w", err)
	}
	defer func() {
		if err := closeCache(); err != nil {
			logger.Error("failed to close video cache", slog.String("error", err.Error()))
		}
	}()

	queueClient, err := queue.NewClient(ctx, queue.DefaultClientConfig(cfg.RabbitMQ.URL()))
	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	defer queueClient.Close()
	logger.Info("connected to RabbitMQ")

	provider := app.NewInfoProvider(cfg, app.NewYouTubeSource(cfg), videoCache)
	warmupSvc := usecase.NewWarmupService(provider, nil)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Tasks run on their own context; shutdown drains them before cancelling.
	taskCtx, cancelTasks := context.WithCancel(context.Background())
	defer cancelTasks()

	// Closed once the consumer has returned, which includes the task it was running.
	consumerDone := make(chan struct{})

	errCh := make(chan error, 1)
	go func() {
		defer close(consumerDone)
		logger.Info("starting worker, consuming warmup tasks")
		if err := consumeTasks(ctx, taskCtx, queueClient, warmupSvc); err != nil {
			errCh <- fmt.Errorf("consumer error: %w", err)
		}
	}()

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info("shutting down worker", slog.String("signal", sig.String()))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Worker.ShutdownTimeout)
	defer shutdownCancel()

	// Stop consuming new tasks.
	cancel()

	select {
	case <-consumerDone:
		logger.Info("all in-flight tasks completed")
	case <-shutdownCtx.Done():
		logger.Warn("shutdown timeout exceeded, cancelling in-flight tasks")
		cancelTasks()
		<-consumerDone
	}

	logger.Info("worker stopped")
	return nil
}

// consumeTasks processes warm-up tasks until ctx is cancelled. Each task runs
// on taskCtx, so cancelling ctx lets the current task finish. A consumer that
// stops because ctx was cancelled returns nil.
func consumeTasks(ctx, taskCtx context.Context, q repository.MessageQueue, svc usecase.WarmupService) error {
	err := q.ConsumeWarmupTasks(ctx, func(task repository.WarmupTask) error {
		return svc.ProcessTask(taskCtx, task)
	})
	if ctx.Err() != nil {
		return nil
	}
	return err
}
