package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"caixa/internal/amqp"
	"caixa/internal/core"
	applog "caixa/internal/log"
)

// providerNames maps provider ids to their display names.
var providerNames = map[string]string{
	core.ProviderBank:   "Conta Bancária",
	core.ProviderStripe: "Stripe",
	core.ProviderPayPal: "PayPal",
}

// IntegrationService manages external data source connections and
// their async sync pipeline. When an AMQP client is configured sync
// requests go through the broker to a worker; otherwise they are
// handed to the in-process sync processor.
type IntegrationService struct {
	integrations IntegrationRepository
	activity     *ActivityService
	amqpClient   *amqp.Client // nil when AMQP is not configured
	processor    *SyncProcessor
	logger       *applog.Logger
	now          func() time.Time
}

func NewIntegrationService(repo IntegrationRepository, activity *ActivityService, amqpClient *amqp.Client, processor *SyncProcessor, logger *applog.Logger) *IntegrationService {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &IntegrationService{
		integrations: repo,
		activity:     activity,
		amqpClient:   amqpClient,
		processor:    processor,
		logger:       logger.WithComponent(applog.ComponentIntegration),
		now:          time.Now,
	}
}

// List returns the session company's integrations.
func (s *IntegrationService) List(ctx context.Context, sess core.Session) ([]core.Integration, error) {
	if err := sess.Check(core.PermView); err != nil {
		return nil, err
	}
	if sess.CompanyID == "" {
		return []core.Integration{}, nil
	}
	return s.integrations.ListIntegrationsByCompany(ctx, sess.CompanyID)
}

// Connect creates a connected integration for the given provider.
func (s *IntegrationService) Connect(ctx context.Context, sess core.Session, provider string) (core.Integration, error) {
	if err := sess.Check(core.PermAdmin); err != nil {
		return core.Integration{}, err
	}
	if err := requireCompany(sess); err != nil {
		return core.Integration{}, err
	}
	if !core.ValidProvider(provider) {
		return core.Integration{}, core.ErrInvalidProvider
	}

	integration := core.Integration{
		ID:        uuid.NewString(),
		Name:      providerNames[provider],
		Provider:  provider,
		Status:    core.IntegrationConnected,
		CompanyID: sess.CompanyID,
	}
	if err := s.integrations.CreateIntegration(ctx, integration); err != nil {
		return core.Integration{}, fmt.Errorf("create integration: %w", err)
	}
	if err := s.activity.Record(ctx, sess, core.ActionCreate, core.EntityIntegration,
		fmt.Sprintf("Connected integration %q", integration.Name)); err != nil {
		return core.Integration{}, err
	}

	s.logger.InfoContext(ctx, "Integration connected",
		applog.FieldEntityID, integration.ID,
		applog.FieldProvider, provider,
		applog.FieldCompanyID, integration.CompanyID)
	return integration, nil
}

// Disconnect removes an integration. A sync in flight for it becomes a
// no-op when the processor re-checks existence.
func (s *IntegrationService) Disconnect(ctx context.Context, sess core.Session, id string) error {
	if err := sess.Check(core.PermAdmin); err != nil {
		return err
	}

	existing, err := s.integrations.GetIntegration(ctx, id)
	if err != nil {
		return err
	}
	if err := scoped(sess, existing.CompanyID); err != nil {
		return err
	}

	if err := s.integrations.DeleteIntegration(ctx, id); err != nil {
		return fmt.Errorf("delete integration: %w", err)
	}
	return s.activity.Record(ctx, sess, core.ActionDelete, core.EntityIntegration,
		fmt.Sprintf("Disconnected integration %q", existing.Name))
}

// Sync marks an integration as syncing and dispatches the completion
// request. The call returns immediately; the import happens later in
// the processor. Syncing an already-syncing integration is a no-op.
func (s *IntegrationService) Sync(ctx context.Context, sess core.Session, id string) (core.Integration, error) {
	if err := sess.Check(core.PermEdit); err != nil {
		return core.Integration{}, err
	}

	integration, err := s.integrations.GetIntegration(ctx, id)
	if err != nil {
		return core.Integration{}, err
	}
	if err := scoped(sess, integration.CompanyID); err != nil {
		return core.Integration{}, err
	}
	if integration.Status == core.IntegrationSyncing {
		return integration, nil
	}

	integration.Status = core.IntegrationSyncing
	if err := s.integrations.UpdateIntegration(ctx, integration); err != nil {
		return core.Integration{}, fmt.Errorf("mark integration syncing: %w", err)
	}

	if s.amqpClient != nil {
		err := s.amqpClient.PublishIntegrationSync(ctx, integration.ID, integration.CompanyID, sess.UserID, sess.UserName)
		if err != nil {
			// The poll loop will recover the syncing row if no worker
			// ever sees the message.
			s.logger.ErrorContext(ctx, "Failed to publish sync message",
				applog.FieldEntityID, integration.ID,
				applog.FieldError, err.Error())
		}
	} else if s.processor != nil {
		s.processor.Enqueue(SyncRequest{
			IntegrationID: integration.ID,
			CompanyID:     integration.CompanyID,
			UserID:        sess.UserID,
			UserName:      sess.UserName,
			Requested:     s.now(),
		})
	}

	s.logger.InfoContext(ctx, "Integration sync requested",
		applog.FieldEntityID, integration.ID,
		applog.FieldProvider, integration.Provider,
		applog.FieldUserID, sess.UserID)
	return integration, nil
}
