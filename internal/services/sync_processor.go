package services

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"

	"caixa/internal/core"
	applog "caixa/internal/log"
)

// SyncRequest asks the processor to complete one integration sync. It
// carries the requesting actor so the audit entry names who started
// the sync.
type SyncRequest struct {
	IntegrationID string
	CompanyID     string
	UserID        string
	UserName      string
	Requested     time.Time
}

// SyncProcessorConfig holds configuration for the sync processor.
type SyncProcessorConfig struct {
	// PollInterval is how often to scan for stuck syncing integrations (default: 10s)
	PollInterval time.Duration

	// BatchSize is the max number of stuck integrations recovered per poll (default: 10)
	BatchSize int

	// SyncDelay simulates provider latency before a sync completes (default: 1.5s)
	SyncDelay time.Duration

	// MinAmountCents and MaxAmountCents bound the imported transaction amount
	MinAmountCents int64
	MaxAmountCents int64
}

// DefaultSyncProcessorConfig returns sensible defaults.
func DefaultSyncProcessorConfig() SyncProcessorConfig {
	return SyncProcessorConfig{
		PollInterval:   10 * time.Second,
		BatchSize:      10,
		SyncDelay:      1500 * time.Millisecond,
		MinAmountCents: 1000,
		MaxAmountCents: 50000,
	}
}

// SyncProcessor completes integration syncs. Requests arrive either
// from the in-process queue (single binary) or from an AMQP consumer
// (worker binary); a poll loop recovers integrations left in the
// syncing state by a crash or a lost message.
type SyncProcessor struct {
	repo     Repository
	activity *ActivityService
	config   SyncProcessorConfig
	logger   *applog.Logger

	requests  chan SyncRequest
	now       func() time.Time
	randCents func(min, max int64) int64

	// Lifecycle management
	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewSyncProcessor creates a new sync processor.
func NewSyncProcessor(repo Repository, activity *ActivityService, config SyncProcessorConfig, logger *applog.Logger) *SyncProcessor {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	if config.BatchSize <= 0 {
		config.BatchSize = DefaultSyncProcessorConfig().BatchSize
	}
	if config.PollInterval <= 0 {
		config.PollInterval = DefaultSyncProcessorConfig().PollInterval
	}
	if config.MinAmountCents <= 0 || config.MaxAmountCents < config.MinAmountCents {
		def := DefaultSyncProcessorConfig()
		config.MinAmountCents = def.MinAmountCents
		config.MaxAmountCents = def.MaxAmountCents
	}
	return &SyncProcessor{
		repo:     repo,
		activity: activity,
		config:   config,
		logger:   logger.WithComponent(applog.ComponentWorker),
		requests: make(chan SyncRequest, 64),
		now:      time.Now,
		randCents: func(min, max int64) int64 {
			return min + rand.Int64N(max-min+1)
		},
	}
}

// Enqueue hands a sync request to the running processor. It never
// blocks; when the queue is full the poll loop picks the integration
// up later since it is already marked syncing.
func (p *SyncProcessor) Enqueue(req SyncRequest) {
	select {
	case p.requests <- req:
	default:
		p.logger.Warn("Sync queue full, deferring to poll recovery",
			applog.FieldEntityID, req.IntegrationID)
	}
}

// Start begins the processing loop. Returns an error if already running.
func (p *SyncProcessor) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return fmt.Errorf("sync processor is already running")
	}
	p.running = true
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})
	p.mu.Unlock()

	go p.runLoop(ctx)

	p.logger.InfoContext(ctx, "Sync processor started",
		"poll_interval", p.config.PollInterval,
		"batch_size", p.config.BatchSize,
		"sync_delay", p.config.SyncDelay)

	return nil
}

// Stop gracefully stops the processor and waits for completion.
func (p *SyncProcessor) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	p.mu.Unlock()

	close(p.stopCh)

	select {
	case <-p.doneCh:
		p.logger.InfoContext(ctx, "Sync processor stopped gracefully")
	case <-ctx.Done():
		p.logger.WarnContext(ctx, "Sync processor stop timed out")
		return ctx.Err()
	}

	p.mu.Lock()
	p.running = false
	p.mu.Unlock()

	return nil
}

// IsRunning returns whether the processor is currently running.
func (p *SyncProcessor) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// runLoop is the main processing loop.
func (p *SyncProcessor) runLoop(ctx context.Context) {
	defer close(p.doneCh)

	pollTicker := time.NewTicker(p.config.PollInterval)
	defer pollTicker.Stop()

	for {
		select {
		case <-p.stopCh:
			return
		case <-ctx.Done():
			return
		case req := <-p.requests:
			if !p.wait(ctx, p.config.SyncDelay) {
				return
			}
			if err := p.CompleteSync(ctx, req); err != nil {
				p.logger.ErrorContext(ctx, "Sync failed",
					applog.FieldEntityID, req.IntegrationID,
					applog.FieldError, err.Error())
			}
		case <-pollTicker.C:
			p.recoverStale(ctx)
		}
	}
}

// wait sleeps for d unless the processor is stopped first.
func (p *SyncProcessor) wait(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-p.stopCh:
		return false
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// recoverStale picks up integrations stuck in the syncing state, for
// example after a crash or a lost queue message. Recovered syncs are
// attributed to the system actor since the original requester is gone.
func (p *SyncProcessor) recoverStale(ctx context.Context) {
	stuck, err := p.repo.ListIntegrationsByStatus(ctx, core.IntegrationSyncing)
	if err != nil {
		p.logger.ErrorContext(ctx, "Stale sync scan failed", applog.FieldError, err.Error())
		return
	}
	if len(stuck) == 0 {
		return
	}
	if len(stuck) > p.config.BatchSize {
		stuck = stuck[:p.config.BatchSize]
	}

	p.logger.InfoContext(ctx, "Recovering stale syncs", "count", len(stuck))

	for _, integration := range stuck {
		select {
		case <-p.stopCh:
			return
		case <-ctx.Done():
			return
		default:
		}

		req := SyncRequest{
			IntegrationID: integration.ID,
			CompanyID:     integration.CompanyID,
			UserID:        "system",
			UserName:      "Sistema",
			Requested:     p.now(),
		}
		if err := p.CompleteSync(ctx, req); err != nil {
			p.logger.ErrorContext(ctx, "Stale sync recovery failed",
				applog.FieldEntityID, integration.ID,
				applog.FieldError, err.Error())
		}
	}
}

// CompleteSync finishes one integration sync: it imports a single paid
// transaction from the provider, stamps the sync time, and returns the
// integration to the connected state. The integration is re-checked
// first so a sync racing a disconnect becomes a no-op.
func (p *SyncProcessor) CompleteSync(ctx context.Context, req SyncRequest) error {
	integration, err := p.repo.GetIntegration(ctx, req.IntegrationID)
	if err != nil {
		if err == core.ErrNotFound {
			p.logger.InfoContext(ctx, "Integration removed before sync completed",
				applog.FieldEntityID, req.IntegrationID)
			return nil
		}
		return fmt.Errorf("get integration: %w", err)
	}
	if integration.Status != core.IntegrationSyncing {
		return nil
	}

	categories, err := p.repo.ListCategoriesByCompany(ctx, integration.CompanyID)
	if err != nil {
		return fmt.Errorf("list categories: %w", err)
	}
	accounts, err := p.repo.ListAccountsByCompany(ctx, integration.CompanyID)
	if err != nil {
		return fmt.Errorf("list accounts: %w", err)
	}
	if len(categories) == 0 || len(accounts) == 0 {
		p.logger.WarnContext(ctx, "Cannot import, company has no categories or accounts",
			applog.FieldEntityID, integration.ID,
			applog.FieldCompanyID, integration.CompanyID)
		integration.Status = core.IntegrationConnected
		if err := p.repo.UpdateIntegration(ctx, integration); err != nil {
			return fmt.Errorf("reset integration status: %w", err)
		}
		return nil
	}

	now := p.now()
	imported := core.Transaction{
		ID:          uuid.NewString(),
		Name:        fmt.Sprintf("Importado via %s", integration.Name),
		Amount:      core.Money{Cents: p.randCents(p.config.MinAmountCents, p.config.MaxAmountCents)},
		Date:        now,
		DueDate:     now,
		CategoryID:  categories[0].ID,
		AccountID:   accounts[0].ID,
		Status:      core.StatusPaid,
		PaymentDate: &now,
		CompanyID:   integration.CompanyID,
	}
	if err := p.repo.CreateTransaction(ctx, imported); err != nil {
		return fmt.Errorf("create imported transaction: %w", err)
	}

	integration.Status = core.IntegrationConnected
	integration.LastSync = &now
	if err := p.repo.UpdateIntegration(ctx, integration); err != nil {
		return fmt.Errorf("update integration: %w", err)
	}

	actor := core.Session{
		UserID:    req.UserID,
		UserName:  req.UserName,
		CompanyID: req.CompanyID,
	}
	if err := p.activity.Record(ctx, actor, core.ActionSync, core.EntityIntegration,
		fmt.Sprintf("Synced integration %q, imported 1 transaction", integration.Name)); err != nil {
		return err
	}

	p.logger.InfoContext(ctx, "Integration sync completed",
		applog.FieldEntityID, integration.ID,
		applog.FieldProvider, integration.Provider,
		applog.FieldAmountCents, imported.Amount.Cents,
		applog.FieldCompanyID, integration.CompanyID)

	return nil
}
