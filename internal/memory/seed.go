package memory

import (
	"context"
	"fmt"
	"time"

	"caixa/internal/auth"
	"caixa/internal/core"
)

// Seed loads the demo dataset: one company with categories, accounts,
// a few transactions and an income, plus demo users for every role.
// All demo users share the password "password".
func Seed(ctx context.Context, s *Store) error {
	now := time.Now()

	if err := s.CreateCompany(ctx, core.Company{ID: "1", Name: "Empresa Demo"}); err != nil {
		return err
	}

	hash, err := auth.HashPassword("password")
	if err != nil {
		return fmt.Errorf("hash demo password: %w", err)
	}

	users := []core.User{
		{ID: "u-master", Name: "Sistema Global", Email: "master@demo.com", PasswordHash: hash, Role: core.RoleMaster, CompanyID: "", Status: core.UserActive},
		{ID: "u-admin", Name: "Admin Demo", Email: "admin@demo.com", PasswordHash: hash, Role: core.RoleAdmin, CompanyID: "1", Status: core.UserActive},
		{ID: "u-editor", Name: "Editor Demo", Email: "user@demo.com", PasswordHash: hash, Role: core.RoleEditor, CompanyID: "1", Status: core.UserActive},
		{ID: "u-viewer", Name: "Viewer Demo", Email: "viewer@demo.com", PasswordHash: hash, Role: core.RoleViewer, CompanyID: "1", Status: core.UserActive},
	}
	for _, u := range users {
		if err := s.CreateUser(ctx, u); err != nil {
			return err
		}
	}

	categories := []core.Category{
		{ID: "1", Name: "Alimentação", Budget: core.Money{Cents: 150000}, Color: "hsl(var(--chart-1))", CompanyID: "1"},
		{ID: "2", Name: "Moradia", Budget: core.Money{Cents: 250000}, Color: "hsl(var(--chart-2))", CompanyID: "1"},
		{ID: "3", Name: "Transporte", Budget: core.Money{Cents: 80000}, Color: "hsl(var(--chart-3))", CompanyID: "1"},
		{ID: "4", Name: "Lazer", Budget: core.Money{Cents: 50000}, Color: "hsl(var(--chart-4))", CompanyID: "1"},
		{ID: "5", Name: "Saúde", Budget: core.Money{Cents: 30000}, Color: "hsl(var(--chart-5))", CompanyID: "1"},
	}
	for _, c := range categories {
		if err := s.CreateCategory(ctx, c); err != nil {
			return err
		}
	}

	accounts := []core.Account{
		{ID: "1", Name: "Nubank", CompanyID: "1"},
		{ID: "2", Name: "Itaú", CompanyID: "1"},
		{ID: "3", Name: "Carteira", CompanyID: "1"},
	}
	for _, a := range accounts {
		if err := s.CreateAccount(ctx, a); err != nil {
			return err
		}
	}

	transactions := []core.Transaction{
		{ID: "1", Name: "Supermercado Mensal", Amount: core.Money{Cents: 85050}, Date: now, DueDate: now, CategoryID: "1", AccountID: "1", Status: core.StatusPaid, PaymentDate: &now, CompanyID: "1"},
		{ID: "2", Name: "Aluguel", Amount: core.Money{Cents: 180000}, Date: now, DueDate: now, CategoryID: "2", AccountID: "2", Status: core.StatusPending, CompanyID: "1"},
		{ID: "3", Name: "Uber", Amount: core.Money{Cents: 4590}, Date: now, DueDate: now, CategoryID: "3", AccountID: "1", Status: core.StatusPaid, PaymentDate: &now, CompanyID: "1"},
	}
	for _, t := range transactions {
		if err := s.CreateTransaction(ctx, t); err != nil {
			return err
		}
	}

	income := core.Income{
		ID:          "1",
		Source:      core.SourceSalary,
		Description: "Salário Mensal",
		Amount:      core.Money{Cents: 500000},
		Date:        now,
		CompanyID:   "1",
	}
	return s.CreateIncome(ctx, income)
}
