package memory

import (
	"context"
	"testing"
	"time"

	"caixa/internal/core"
)

func TestTransactionCRUD(t *testing.T) {
	s := New()
	ctx := context.Background()

	tr := core.Transaction{
		ID: "t-1", Name: "Mercado", Amount: core.Money{Cents: 1000},
		Date: time.Now(), DueDate: time.Now(),
		CategoryID: "c-1", AccountID: "a-1",
		Status: core.StatusPending, CompanyID: "1",
	}
	if err := s.CreateTransaction(ctx, tr); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetTransaction(ctx, "t-1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "Mercado" {
		t.Errorf("expected Mercado, got %q", got.Name)
	}

	got.Name = "Feira"
	if err := s.UpdateTransaction(ctx, got); err != nil {
		t.Fatal(err)
	}
	updated, err := s.GetTransaction(ctx, "t-1")
	if err != nil {
		t.Fatal(err)
	}
	if updated.Name != "Feira" {
		t.Errorf("update did not stick, got %q", updated.Name)
	}

	if err := s.DeleteTransaction(ctx, "t-1"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetTransaction(ctx, "t-1"); err != core.ErrNotFound {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := s.DeleteTransaction(ctx, "t-1"); err != core.ErrNotFound {
		t.Errorf("double delete should be ErrNotFound, got %v", err)
	}
}

func TestListTransactionsByCompanyIsScoped(t *testing.T) {
	s := New()
	ctx := context.Background()

	for i, company := range []string{"1", "2", "1"} {
		tr := core.Transaction{
			ID: string(rune('a' + i)), Name: "T", Amount: core.Money{Cents: 100},
			Date: time.Now(), DueDate: time.Now(),
			CategoryID: "c", AccountID: "a",
			Status: core.StatusPending, CompanyID: company,
		}
		if err := s.CreateTransaction(ctx, tr); err != nil {
			t.Fatal(err)
		}
	}

	list, err := s.ListTransactionsByCompany(ctx, "1")
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 {
		t.Errorf("expected 2 transactions for company 1, got %d", len(list))
	}
	for _, tr := range list {
		if tr.CompanyID != "1" {
			t.Errorf("leaked foreign transaction %+v", tr)
		}
	}
}

func TestGetUserByEmail(t *testing.T) {
	s := New()
	ctx := context.Background()

	u := core.User{ID: "u-1", Name: "Admin", Email: "admin@demo.com", Role: core.RoleAdmin, CompanyID: "1", Status: core.UserActive}
	if err := s.CreateUser(ctx, u); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetUserByEmail(ctx, "admin@demo.com")
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != "u-1" {
		t.Errorf("expected u-1, got %q", got.ID)
	}

	// Email matching is exact, case included.
	if _, err := s.GetUserByEmail(ctx, "Admin@demo.com"); err != core.ErrNotFound {
		t.Errorf("expected ErrNotFound for different case, got %v", err)
	}
}

func TestAppendActivityPrepends(t *testing.T) {
	s := New()
	ctx := context.Background()

	for _, id := range []string{"first", "second", "third"} {
		if err := s.AppendActivity(ctx, core.ActivityLog{ID: id, CompanyID: "1", Timestamp: time.Now()}); err != nil {
			t.Fatal(err)
		}
	}

	entries, err := s.ListActivities(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].ID != "third" || entries[2].ID != "first" {
		t.Errorf("expected most-recent-first, got %v", entries)
	}
}

func TestListIntegrationsByStatus(t *testing.T) {
	s := New()
	ctx := context.Background()

	if err := s.CreateIntegration(ctx, core.Integration{ID: "i-1", Status: core.IntegrationConnected, CompanyID: "1"}); err != nil {
		t.Fatal(err)
	}
	if err := s.CreateIntegration(ctx, core.Integration{ID: "i-2", Status: core.IntegrationSyncing, CompanyID: "1"}); err != nil {
		t.Fatal(err)
	}

	syncing, err := s.ListIntegrationsByStatus(ctx, core.IntegrationSyncing)
	if err != nil {
		t.Fatal(err)
	}
	if len(syncing) != 1 || syncing[0].ID != "i-2" {
		t.Errorf("expected only i-2, got %v", syncing)
	}
}

func TestReturnedSlicesAreCopies(t *testing.T) {
	s := New()
	ctx := context.Background()

	if err := s.CreateCategory(ctx, core.Category{ID: "c-1", Name: "Lazer", Budget: core.Money{Cents: 100}, Color: "#fff", CompanyID: "1"}); err != nil {
		t.Fatal(err)
	}

	list, err := s.ListCategoriesByCompany(ctx, "1")
	if err != nil {
		t.Fatal(err)
	}
	list[0].Name = "Mutated"

	again, err := s.ListCategoriesByCompany(ctx, "1")
	if err != nil {
		t.Fatal(err)
	}
	if again[0].Name != "Lazer" {
		t.Error("mutating a returned slice must not affect the store")
	}
}

func TestSeed(t *testing.T) {
	s := New()
	ctx := context.Background()

	if err := Seed(ctx, s); err != nil {
		t.Fatalf("Seed failed: %v", err)
	}

	u, err := s.GetUserByEmail(ctx, "admin@demo.com")
	if err != nil {
		t.Fatal(err)
	}
	if u.Role != core.RoleAdmin || u.CompanyID != "1" {
		t.Errorf("unexpected demo admin %+v", u)
	}

	categories, err := s.ListCategoriesByCompany(ctx, "1")
	if err != nil {
		t.Fatal(err)
	}
	if len(categories) != 5 {
		t.Errorf("expected 5 demo categories, got %d", len(categories))
	}
	if categories[0].Name != "Alimentação" {
		t.Errorf("expected Alimentação first, got %q", categories[0].Name)
	}

	accounts, err := s.ListAccountsByCompany(ctx, "1")
	if err != nil {
		t.Fatal(err)
	}
	if len(accounts) != 3 {
		t.Errorf("expected 3 demo accounts, got %d", len(accounts))
	}

	transactions, err := s.ListTransactionsByCompany(ctx, "1")
	if err != nil {
		t.Fatal(err)
	}
	if len(transactions) != 3 {
		t.Errorf("expected 3 demo transactions, got %d", len(transactions))
	}
}
