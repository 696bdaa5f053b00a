package services

import (
	"context"
	"testing"

	"caixa/internal/core"
	"caixa/internal/memory"
)

func integrationFixture(t *testing.T) (*memory.Store, *IntegrationService, *SyncProcessor, *ActivityService) {
	t.Helper()
	store := memory.New()
	ctx := context.Background()

	if err := store.CreateCompany(ctx, core.Company{ID: "1", Name: "Empresa Demo"}); err != nil {
		t.Fatal(err)
	}
	if err := store.CreateCategory(ctx, core.Category{ID: "c-1", Name: "Alimentação", Budget: core.Money{Cents: 150000}, Color: "hsl(var(--chart-1))", CompanyID: "1"}); err != nil {
		t.Fatal(err)
	}
	if err := store.CreateAccount(ctx, core.Account{ID: "a-1", Name: "Nubank", CompanyID: "1"}); err != nil {
		t.Fatal(err)
	}

	activity := NewActivityService(store, nil)
	processor := NewSyncProcessor(store, activity, SyncProcessorConfig{SyncDelay: 0}, nil)
	processor.randCents = func(min, max int64) int64 { return 4242 }
	service := NewIntegrationService(store, activity, nil, processor, nil)
	return store, service, processor, activity
}

func TestConnectIntegration(t *testing.T) {
	_, service, _, _ := integrationFixture(t)
	ctx := context.Background()

	integration, err := service.Connect(ctx, adminSession(), core.ProviderBank)
	if err != nil {
		t.Fatal(err)
	}
	if integration.Name != "Conta Bancária" {
		t.Errorf("expected provider display name, got %q", integration.Name)
	}
	if integration.Status != core.IntegrationConnected {
		t.Errorf("new integration should be connected, got %q", integration.Status)
	}
	if integration.LastSync != nil {
		t.Error("new integration should have no last sync")
	}

	if _, err := service.Connect(ctx, adminSession(), "venmo"); err != core.ErrInvalidProvider {
		t.Errorf("unknown provider should be rejected, got %v", err)
	}
	if _, err := service.Connect(ctx, editorSession(), core.ProviderStripe); err != core.ErrPermissionDenied {
		t.Errorf("connect requires admin, got %v", err)
	}
}

func TestSyncMarksIntegrationSyncing(t *testing.T) {
	store, service, _, _ := integrationFixture(t)
	ctx := context.Background()

	integration, err := service.Connect(ctx, adminSession(), core.ProviderBank)
	if err != nil {
		t.Fatal(err)
	}

	synced, err := service.Sync(ctx, editorSession(), integration.ID)
	if err != nil {
		t.Fatal(err)
	}
	if synced.Status != core.IntegrationSyncing {
		t.Errorf("sync should mark the integration syncing, got %q", synced.Status)
	}

	// Re-syncing while a sync is in flight is a no-op.
	again, err := service.Sync(ctx, editorSession(), integration.ID)
	if err != nil {
		t.Fatal(err)
	}
	if again.Status != core.IntegrationSyncing {
		t.Errorf("repeated sync should stay syncing, got %q", again.Status)
	}

	stored, err := store.GetIntegration(ctx, integration.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.Status != core.IntegrationSyncing {
		t.Errorf("stored status should be syncing, got %q", stored.Status)
	}
}

func TestSyncRequiresEdit(t *testing.T) {
	_, service, _, _ := integrationFixture(t)
	ctx := context.Background()

	integration, err := service.Connect(ctx, adminSession(), core.ProviderBank)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := service.Sync(ctx, viewerSession(), integration.ID); err != core.ErrPermissionDenied {
		t.Errorf("viewer sync should be denied, got %v", err)
	}
}

func TestCompleteSyncImportsOneTransaction(t *testing.T) {
	store, service, processor, activity := integrationFixture(t)
	ctx := context.Background()

	integration, err := service.Connect(ctx, adminSession(), core.ProviderBank)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := service.Sync(ctx, editorSession(), integration.ID); err != nil {
		t.Fatal(err)
	}

	err = processor.CompleteSync(ctx, SyncRequest{
		IntegrationID: integration.ID,
		CompanyID:     "1",
		UserID:        "u-editor",
		UserName:      "Editor Demo",
	})
	if err != nil {
		t.Fatal(err)
	}

	done, err := store.GetIntegration(ctx, integration.ID)
	if err != nil {
		t.Fatal(err)
	}
	if done.Status != core.IntegrationConnected {
		t.Errorf("completed sync should return to connected, got %q", done.Status)
	}
	if done.LastSync == nil {
		t.Error("completed sync should stamp the sync time")
	}

	transactions, err := store.ListTransactionsByCompany(ctx, "1")
	if err != nil {
		t.Fatal(err)
	}
	if len(transactions) != 1 {
		t.Fatalf("expected exactly 1 imported transaction, got %d", len(transactions))
	}
	imported := transactions[0]
	if imported.Name != `Importado via Conta Bancária` {
		t.Errorf("unexpected imported name %q", imported.Name)
	}
	if imported.Status != core.StatusPaid || imported.PaymentDate == nil {
		t.Errorf("imported transaction should be paid, got %+v", imported)
	}
	if imported.Amount.Cents != 4242 {
		t.Errorf("expected deterministic amount 4242, got %d", imported.Amount.Cents)
	}
	if imported.CategoryID != "c-1" || imported.AccountID != "a-1" {
		t.Errorf("import should use the company's first category and account, got %+v", imported)
	}

	// The sync is audited and attributed to the requesting user.
	entries, err := activity.List(ctx, adminSession(), ActivityFilter{Action: core.ActionSync})
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 sync entry, got %d", len(entries))
	}
	if entries[0].UserName != "Editor Demo" {
		t.Errorf("sync entry should name the requester, got %q", entries[0].UserName)
	}
}

func TestCompleteSyncAfterDisconnectIsNoop(t *testing.T) {
	store, service, processor, _ := integrationFixture(t)
	ctx := context.Background()

	integration, err := service.Connect(ctx, adminSession(), core.ProviderPayPal)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := service.Sync(ctx, editorSession(), integration.ID); err != nil {
		t.Fatal(err)
	}
	if err := service.Disconnect(ctx, adminSession(), integration.ID); err != nil {
		t.Fatal(err)
	}

	err = processor.CompleteSync(ctx, SyncRequest{IntegrationID: integration.ID, CompanyID: "1"})
	if err != nil {
		t.Fatalf("sync of a removed integration should be a clean no-op, got %v", err)
	}

	transactions, err := store.ListTransactionsByCompany(ctx, "1")
	if err != nil {
		t.Fatal(err)
	}
	if len(transactions) != 0 {
		t.Errorf("no transaction should be imported after disconnect, got %d", len(transactions))
	}
}

func TestCompleteSyncWithoutCategoriesResets(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	if err := store.CreateCompany(ctx, core.Company{ID: "9", Name: "Vazia"}); err != nil {
		t.Fatal(err)
	}
	if err := store.CreateIntegration(ctx, core.Integration{
		ID: "i-1", Name: "Stripe", Provider: core.ProviderStripe,
		Status: core.IntegrationSyncing, CompanyID: "9",
	}); err != nil {
		t.Fatal(err)
	}

	processor := NewSyncProcessor(store, NewActivityService(store, nil), SyncProcessorConfig{}, nil)
	if err := processor.CompleteSync(ctx, SyncRequest{IntegrationID: "i-1", CompanyID: "9"}); err != nil {
		t.Fatal(err)
	}

	integration, err := store.GetIntegration(ctx, "i-1")
	if err != nil {
		t.Fatal(err)
	}
	if integration.Status != core.IntegrationConnected {
		t.Errorf("integration should be reset to connected, got %q", integration.Status)
	}
	if integration.LastSync != nil {
		t.Error("a failed import should not stamp the sync time")
	}
	transactions, err := store.ListTransactionsByCompany(ctx, "9")
	if err != nil {
		t.Fatal(err)
	}
	if len(transactions) != 0 {
		t.Errorf("nothing should be imported without categories, got %d", len(transactions))
	}
}

func TestDisconnectScoping(t *testing.T) {
	store, service, _, _ := integrationFixture(t)
	ctx := context.Background()

	if err := store.CreateIntegration(ctx, core.Integration{
		ID: "i-other", Name: "Stripe", Provider: core.ProviderStripe,
		Status: core.IntegrationConnected, CompanyID: "2",
	}); err != nil {
		t.Fatal(err)
	}

	if err := service.Disconnect(ctx, adminSession(), "i-other"); err != core.ErrNotFound {
		t.Errorf("cross-tenant disconnect should be ErrNotFound, got %v", err)
	}
}
