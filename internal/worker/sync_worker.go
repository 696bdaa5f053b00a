package worker

import (
	"context"
	"fmt"
	"time"

	"caixa/internal/amqp"
	"caixa/internal/core"
	applog "caixa/internal/log"
	"caixa/internal/services"
)

// SyncWorker bridges AMQP sync messages to the sync processor. It runs
// in the worker binary; the web binary never consumes from the queue.
type SyncWorker struct {
	processor *services.SyncProcessor
	repo      services.Repository
	delay     time.Duration
	batchSize int
	logger    *applog.Logger
}

func NewSyncWorker(processor *services.SyncProcessor, repo services.Repository, delay time.Duration, batchSize int, logger *applog.Logger) *SyncWorker {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	if batchSize <= 0 {
		batchSize = 10
	}
	return &SyncWorker{
		processor: processor,
		repo:      repo,
		delay:     delay,
		batchSize: batchSize,
		logger:    logger.WithComponent(applog.ComponentWorker),
	}
}

// HandleSyncMessage processes a single integration sync message from AMQP.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.IntegrationSyncMessage) error {
	w.logger.InfoContext(ctx, "Processing sync message",
		applog.FieldEntityID, msg.IntegrationID,
		applog.FieldCompanyID, msg.CompanyID,
		applog.FieldUserID, msg.UserID)

	// Simulate provider latency before the import lands.
	if w.delay > 0 {
		timer := time.NewTimer(w.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	req := services.SyncRequest{
		IntegrationID: msg.IntegrationID,
		CompanyID:     msg.CompanyID,
		UserID:        msg.UserID,
		UserName:      msg.UserName,
		Requested:     msg.Timestamp,
	}
	if err := w.processor.CompleteSync(ctx, req); err != nil {
		return fmt.Errorf("complete sync: %w", err)
	}
	return nil
}

// StartupSyncCheck completes any integrations left in the syncing
// state from before the worker started. This recovers from missed
// AMQP messages or worker downtime.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	stuck, err := w.repo.ListIntegrationsByStatus(ctx, core.IntegrationSyncing)
	if err != nil {
		return fmt.Errorf("list syncing integrations: %w", err)
	}
	if len(stuck) == 0 {
		w.logger.InfoContext(ctx, "No stuck syncs found on startup")
		return nil
	}
	if len(stuck) > w.batchSize {
		stuck = stuck[:w.batchSize]
	}

	w.logger.InfoContext(ctx, "Found stuck syncs on startup, processing...",
		"count", len(stuck))

	successCount := 0
	errorCount := 0
	for _, integration := range stuck {
		req := services.SyncRequest{
			IntegrationID: integration.ID,
			CompanyID:     integration.CompanyID,
			UserID:        "system",
			UserName:      "Sistema",
			Requested:     time.Now(),
		}
		if err := w.processor.CompleteSync(ctx, req); err != nil {
			w.logger.ErrorContext(ctx, "Failed to recover stuck sync",
				applog.FieldEntityID, integration.ID,
				applog.FieldError, err.Error())
			errorCount++
			continue
		}
		successCount++
	}

	w.logger.InfoContext(ctx, "Startup sync check completed",
		"total", len(stuck),
		"synced", successCount,
		"errors", errorCount)
	return nil
}
