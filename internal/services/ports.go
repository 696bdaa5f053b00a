package services

import (
	"context"

	"caixa/internal/core"
)

// Ports for the data layer. Implementations must return
// core.ErrNotFound for missing rows and must never mutate the company
// id of an existing row.
type (
	CompanyRepository interface {
		CreateCompany(ctx context.Context, c core.Company) error
		GetCompany(ctx context.Context, id string) (core.Company, error)
		ListCompanies(ctx context.Context) ([]core.Company, error)
	}

	UserRepository interface {
		CreateUser(ctx context.Context, u core.User) error
		GetUser(ctx context.Context, id string) (core.User, error)
		GetUserByEmail(ctx context.Context, email string) (core.User, error)
		UpdateUser(ctx context.Context, u core.User) error
		ListUsers(ctx context.Context) ([]core.User, error)
		ListUsersByCompany(ctx context.Context, companyID string) ([]core.User, error)
	}

	TransactionRepository interface {
		CreateTransaction(ctx context.Context, t core.Transaction) error
		GetTransaction(ctx context.Context, id string) (core.Transaction, error)
		UpdateTransaction(ctx context.Context, t core.Transaction) error
		DeleteTransaction(ctx context.Context, id string) error
		ListTransactionsByCompany(ctx context.Context, companyID string) ([]core.Transaction, error)
		ListTransactions(ctx context.Context) ([]core.Transaction, error)
	}

	IncomeRepository interface {
		CreateIncome(ctx context.Context, i core.Income) error
		GetIncome(ctx context.Context, id string) (core.Income, error)
		UpdateIncome(ctx context.Context, i core.Income) error
		DeleteIncome(ctx context.Context, id string) error
		ListIncomesByCompany(ctx context.Context, companyID string) ([]core.Income, error)
		ListIncomes(ctx context.Context) ([]core.Income, error)
	}

	CategoryRepository interface {
		CreateCategory(ctx context.Context, c core.Category) error
		GetCategory(ctx context.Context, id string) (core.Category, error)
		UpdateCategory(ctx context.Context, c core.Category) error
		DeleteCategory(ctx context.Context, id string) error
		ListCategoriesByCompany(ctx context.Context, companyID string) ([]core.Category, error)
	}

	AccountRepository interface {
		CreateAccount(ctx context.Context, a core.Account) error
		GetAccount(ctx context.Context, id string) (core.Account, error)
		UpdateAccount(ctx context.Context, a core.Account) error
		DeleteAccount(ctx context.Context, id string) error
		ListAccountsByCompany(ctx context.Context, companyID string) ([]core.Account, error)
	}

	InvitationRepository interface {
		CreateInvitation(ctx context.Context, i core.Invitation) error
		GetInvitation(ctx context.Context, id string) (core.Invitation, error)
		UpdateInvitation(ctx context.Context, i core.Invitation) error
		DeleteInvitation(ctx context.Context, id string) error
		ListInvitationsByCompany(ctx context.Context, companyID string) ([]core.Invitation, error)
	}

	IntegrationRepository interface {
		CreateIntegration(ctx context.Context, i core.Integration) error
		GetIntegration(ctx context.Context, id string) (core.Integration, error)
		UpdateIntegration(ctx context.Context, i core.Integration) error
		DeleteIntegration(ctx context.Context, id string) error
		ListIntegrationsByCompany(ctx context.Context, companyID string) ([]core.Integration, error)
		ListIntegrationsByStatus(ctx context.Context, status core.IntegrationStatus) ([]core.Integration, error)
	}

	// ActivityLogRepository stores the audit trail. Lists return
	// entries most-recent-first.
	ActivityLogRepository interface {
		AppendActivity(ctx context.Context, entry core.ActivityLog) error
		ListActivities(ctx context.Context) ([]core.ActivityLog, error)
		ListActivitiesByCompany(ctx context.Context, companyID string) ([]core.ActivityLog, error)
	}
)

// Repository is the full data layer a backend must provide.
type Repository interface {
	CompanyRepository
	UserRepository
	TransactionRepository
	IncomeRepository
	CategoryRepository
	AccountRepository
	InvitationRepository
	IntegrationRepository
	ActivityLogRepository
}
