package memory

import (
	"context"
	"sync"

	"caixa/internal/core"
)

// Store is an in-memory implementation of the data layer, used for
// development and tests. Records keep insertion order so list results
// are stable; activity entries are prepended so lists come back
// most-recent-first.
type Store struct {
	mu           sync.Mutex
	companies    []core.Company
	users        []core.User
	transactions []core.Transaction
	incomes      []core.Income
	categories   []core.Category
	accounts     []core.Account
	invitations  []core.Invitation
	integrations []core.Integration
	activities   []core.ActivityLog
}

func New() *Store {
	return &Store{}
}

func (s *Store) CreateCompany(_ context.Context, c core.Company) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.companies = append(s.companies, c)
	return nil
}

func (s *Store) GetCompany(_ context.Context, id string) (core.Company, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.companies {
		if c.ID == id {
			return c, nil
		}
	}
	return core.Company{}, core.ErrNotFound
}

func (s *Store) ListCompanies(_ context.Context) ([]core.Company, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Company(nil), s.companies...), nil
}

func (s *Store) CreateUser(_ context.Context, u core.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = append(s.users, u)
	return nil
}

func (s *Store) GetUser(_ context.Context, id string) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ID == id {
			return u, nil
		}
	}
	return core.User{}, core.ErrNotFound
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return core.User{}, core.ErrNotFound
}

func (s *Store) UpdateUser(_ context.Context, u core.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.users {
		if s.users[i].ID == u.ID {
			s.users[i] = u
			return nil
		}
	}
	return core.ErrNotFound
}

func (s *Store) ListUsers(_ context.Context) ([]core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.User(nil), s.users...), nil
}

func (s *Store) ListUsersByCompany(_ context.Context, companyID string) ([]core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.User, 0)
	for _, u := range s.users {
		if u.CompanyID == companyID {
			out = append(out, u)
		}
	}
	return out, nil
}

func (s *Store) CreateTransaction(_ context.Context, t core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transactions = append(s.transactions, t)
	return nil
}

func (s *Store) GetTransaction(_ context.Context, id string) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.transactions {
		if t.ID == id {
			return t, nil
		}
	}
	return core.Transaction{}, core.ErrNotFound
}

func (s *Store) UpdateTransaction(_ context.Context, t core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.transactions {
		if s.transactions[i].ID == t.ID {
			s.transactions[i] = t
			return nil
		}
	}
	return core.ErrNotFound
}

func (s *Store) DeleteTransaction(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.transactions {
		if s.transactions[i].ID == id {
			s.transactions = append(s.transactions[:i], s.transactions[i+1:]...)
			return nil
		}
	}
	return core.ErrNotFound
}

func (s *Store) ListTransactionsByCompany(_ context.Context, companyID string) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Transaction, 0)
	for _, t := range s.transactions {
		if t.CompanyID == companyID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *Store) ListTransactions(_ context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Transaction(nil), s.transactions...), nil
}

func (s *Store) CreateIncome(_ context.Context, i core.Income) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.incomes = append(s.incomes, i)
	return nil
}

func (s *Store) GetIncome(_ context.Context, id string) (core.Income, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, i := range s.incomes {
		if i.ID == id {
			return i, nil
		}
	}
	return core.Income{}, core.ErrNotFound
}

func (s *Store) UpdateIncome(_ context.Context, in core.Income) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.incomes {
		if s.incomes[i].ID == in.ID {
			s.incomes[i] = in
			return nil
		}
	}
	return core.ErrNotFound
}

func (s *Store) DeleteIncome(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.incomes {
		if s.incomes[i].ID == id {
			s.incomes = append(s.incomes[:i], s.incomes[i+1:]...)
			return nil
		}
	}
	return core.ErrNotFound
}

func (s *Store) ListIncomesByCompany(_ context.Context, companyID string) ([]core.Income, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Income, 0)
	for _, i := range s.incomes {
		if i.CompanyID == companyID {
			out = append(out, i)
		}
	}
	return out, nil
}

func (s *Store) ListIncomes(_ context.Context) ([]core.Income, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Income(nil), s.incomes...), nil
}

func (s *Store) CreateCategory(_ context.Context, c core.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories = append(s.categories, c)
	return nil
}

func (s *Store) GetCategory(_ context.Context, id string) (core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.categories {
		if c.ID == id {
			return c, nil
		}
	}
	return core.Category{}, core.ErrNotFound
}

func (s *Store) UpdateCategory(_ context.Context, c core.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.categories {
		if s.categories[i].ID == c.ID {
			s.categories[i] = c
			return nil
		}
	}
	return core.ErrNotFound
}

func (s *Store) DeleteCategory(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.categories {
		if s.categories[i].ID == id {
			s.categories = append(s.categories[:i], s.categories[i+1:]...)
			return nil
		}
	}
	return core.ErrNotFound
}

func (s *Store) ListCategoriesByCompany(_ context.Context, companyID string) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Category, 0)
	for _, c := range s.categories {
		if c.CompanyID == companyID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *Store) CreateAccount(_ context.Context, a core.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts = append(s.accounts, a)
	return nil
}

func (s *Store) GetAccount(_ context.Context, id string) (core.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.accounts {
		if a.ID == id {
			return a, nil
		}
	}
	return core.Account{}, core.ErrNotFound
}

func (s *Store) UpdateAccount(_ context.Context, a core.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.accounts {
		if s.accounts[i].ID == a.ID {
			s.accounts[i] = a
			return nil
		}
	}
	return core.ErrNotFound
}

func (s *Store) DeleteAccount(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.accounts {
		if s.accounts[i].ID == id {
			s.accounts = append(s.accounts[:i], s.accounts[i+1:]...)
			return nil
		}
	}
	return core.ErrNotFound
}

func (s *Store) ListAccountsByCompany(_ context.Context, companyID string) ([]core.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Account, 0)
	for _, a := range s.accounts {
		if a.CompanyID == companyID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *Store) CreateInvitation(_ context.Context, i core.Invitation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invitations = append(s.invitations, i)
	return nil
}

func (s *Store) GetInvitation(_ context.Context, id string) (core.Invitation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, i := range s.invitations {
		if i.ID == id {
			return i, nil
		}
	}
	return core.Invitation{}, core.ErrNotFound
}

func (s *Store) UpdateInvitation(_ context.Context, in core.Invitation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.invitations {
		if s.invitations[i].ID == in.ID {
			s.invitations[i] = in
			return nil
		}
	}
	return core.ErrNotFound
}

func (s *Store) DeleteInvitation(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.invitations {
		if s.invitations[i].ID == id {
			s.invitations = append(s.invitations[:i], s.invitations[i+1:]...)
			return nil
		}
	}
	return core.ErrNotFound
}

func (s *Store) ListInvitationsByCompany(_ context.Context, companyID string) ([]core.Invitation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Invitation, 0)
	for _, i := range s.invitations {
		if i.CompanyID == companyID {
			out = append(out, i)
		}
	}
	return out, nil
}

func (s *Store) CreateIntegration(_ context.Context, i core.Integration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.integrations = append(s.integrations, i)
	return nil
}

func (s *Store) GetIntegration(_ context.Context, id string) (core.Integration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, i := range s.integrations {
		if i.ID == id {
			return i, nil
		}
	}
	return core.Integration{}, core.ErrNotFound
}

func (s *Store) UpdateIntegration(_ context.Context, in core.Integration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.integrations {
		if s.integrations[i].ID == in.ID {
			s.integrations[i] = in
			return nil
		}
	}
	return core.ErrNotFound
}

func (s *Store) DeleteIntegration(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.integrations {
		if s.integrations[i].ID == id {
			s.integrations = append(s.integrations[:i], s.integrations[i+1:]...)
			return nil
		}
	}
	return core.ErrNotFound
}

func (s *Store) ListIntegrationsByCompany(_ context.Context, companyID string) ([]core.Integration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Integration, 0)
	for _, i := range s.integrations {
		if i.CompanyID == companyID {
			out = append(out, i)
		}
	}
	return out, nil
}

func (s *Store) ListIntegrationsByStatus(_ context.Context, status core.IntegrationStatus) ([]core.Integration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Integration, 0)
	for _, i := range s.integrations {
		if i.Status == status {
			out = append(out, i)
		}
	}
	return out, nil
}

// AppendActivity prepends so lists come back most-recent-first.
func (s *Store) AppendActivity(_ context.Context, entry core.ActivityLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activities = append([]core.ActivityLog{entry}, s.activities...)
	return nil
}

func (s *Store) ListActivities(_ context.Context) ([]core.ActivityLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.ActivityLog(nil), s.activities...), nil
}

func (s *Store) ListActivitiesByCompany(_ context.Context, companyID string) ([]core.ActivityLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.ActivityLog, 0)
	for _, entry := range s.activities {
		if entry.CompanyID == companyID {
			out = append(out, entry)
		}
	}
	return out, nil
}
