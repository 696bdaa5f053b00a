package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"caixa/internal/amqp"
	"caixa/internal/auth"
	"caixa/internal/backend"
	"caixa/internal/config"
	apphttp "caixa/internal/http"
	applog "caixa/internal/log"
	"caixa/internal/services"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.DefaultConfig())
	applog.SetDefault(logger)

	logger.Info("Starting caixa server")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err.Error())
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	factory := backend.NewFactory(logger)
	result, err := factory.CreateBackend(ctx, backend.Config{
		Type:         backend.BackendType(cfg.DataBackend),
		SQLiteDBPath: cfg.SQLiteDBPath,
		SeedDemo:     cfg.SeedDemo,
	})
	if err != nil {
		logger.Error("Failed to initialize backend",
			applog.FieldError, err.Error(),
			applog.FieldBackend, cfg.DataBackend)
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

	sessions := auth.NewSessionManager(cfg.SessionTTL)

	activity := services.NewActivityService(repo, logger)
	finance := services.NewFinanceService(repo, activity, logger)
	identity := services.NewIdentityService(repo, activity, sessions, cfg.ResetLinkDelay, logger)
	defer identity.Close()

	// AMQP is optional. Without it, sync completion runs in-process
	// through the processor queue.
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, falling back to in-process sync",
				applog.FieldError, err.Error())
			amqpClient = nil
		} else {
			defer amqpClient.Close()
			logger.Info("AMQP client initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	processor := services.NewSyncProcessor(repo, activity, services.SyncProcessorConfig{
		PollInterval: cfg.SyncInterval,
		BatchSize:    cfg.SyncBatchSize,
		SyncDelay:    cfg.SyncDelay,
	}, logger)
	if amqpClient == nil {
		if err := processor.Start(ctx); err != nil {
			logger.Error("Failed to start sync processor", applog.FieldError, err.Error())
			os.Exit(1)
		}
	}

	integrations := services.NewIntegrationService(repo, activity, amqpClient, processor, logger)
	dashboard := services.NewDashboardService()

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Sessions:     sessions,
		Identity:     identity,
		Finance:      finance,
		Activity:     activity,
		Integrations: integrations,
		Dashboard:    dashboard,
		Logger:       logger,
	})
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Server listening",
			"port", cfg.Port,
			applog.FieldBackend, cfg.DataBackend)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutdown signal received")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err.Error())
		}
		if processor.IsRunning() {
			if err := processor.Stop(shutdownCtx); err != nil {
				logger.Error("Sync processor shutdown error", applog.FieldError, err.Error())
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", applog.FieldError, err.Error())
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
