package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"caixa/internal/amqp"
	"caixa/internal/backend"
	"caixa/internal/config"
	applog "caixa/internal/log"
	"caixa/internal/services"
	"caixa/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.DefaultConfig())
	applog.SetDefault(logger)

	logger.Info("Starting caixa-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err.Error())
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the worker binary")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// The worker shares the database with the server, so the memory
	// backend makes no sense here.
	factory := backend.NewFactory(logger)
	result, err := factory.CreateBackend(ctx, backend.Config{
		Type:         backend.SQLiteBackend,
		SQLiteDBPath: cfg.SQLiteDBPath,
	})
	if err != nil {
		logger.Error("Failed to initialize backend", applog.FieldError, err.Error())
		os.Exit(1)
	}
	if result.Cleanup != nil {
		defer func() {
			if err := result.Cleanup(); err != nil {
				logger.Error("Backend cleanup failed", applog.FieldError, err.Error())
			}
		}()
	}
	repo := result.Backend

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", applog.FieldError, err.Error())
		os.Exit(1)
	}
	defer amqpClient.Close()

	activity := services.NewActivityService(repo, logger)
	processor := services.NewSyncProcessor(repo, activity, services.SyncProcessorConfig{
		PollInterval: cfg.SyncInterval,
		BatchSize:    cfg.SyncBatchSize,
		SyncDelay:    cfg.SyncDelay,
	}, logger)
	syncWorker := worker.NewSyncWorker(processor, repo, cfg.SyncDelay, cfg.SyncBatchSize, logger)

	// Recover integrations stuck in syncing from before this worker
	// started (missed messages, worker downtime).
	logger.Info("Performing startup sync check...")
	if err := syncWorker.StartupSyncCheck(ctx); err != nil {
		logger.Error("Startup sync check failed", applog.FieldError, err.Error())
		// Don't exit - continue with normal operation
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := amqpClient.ConsumeIntegrationSync(gctx, syncWorker.HandleSyncMessage); err != nil {
			if err != context.Canceled {
				return err
			}
		}
		return nil
	})

	// Periodic safety net for syncs whose messages never arrived.
	g.Go(func() error {
		ticker := time.NewTicker(cfg.SyncInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				if err := syncWorker.StartupSyncCheck(gctx); err != nil {
					logger.Error("Periodic sync check failed", applog.FieldError, err.Error())
				}
			}
		}
	})

	if err := g.Wait(); err != nil {
		logger.Error("Worker error", applog.FieldError, err.Error())
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully")
}
