package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"caixa/internal/core"
	applog "caixa/internal/log"
)

// FinanceService is the tenant-scoped store for financial records.
// Every command takes the acting session explicitly and returns a
// typed error on denial instead of silently dropping the write.
type FinanceService struct {
	transactions TransactionRepository
	incomes      IncomeRepository
	categories   CategoryRepository
	accounts     AccountRepository
	activity     *ActivityService
	logger       *applog.Logger

	// now drives budget attribution (real calendar month, not the
	// session's browsing month).
	now func() time.Time
}

func NewFinanceService(repo Repository, activity *ActivityService, logger *applog.Logger) *FinanceService {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &FinanceService{
		transactions: repo,
		incomes:      repo,
		categories:   repo,
		accounts:     repo,
		activity:     activity,
		logger:       logger.WithComponent(applog.ComponentFinance),
		now:          time.Now,
	}
}

// TransactionInput carries the caller-controlled fields of a
// transaction. CompanyID is always stamped from the session.
type TransactionInput struct {
	Name        string
	Amount      core.Money
	DueDate     time.Time
	CategoryID  string
	AccountID   string
	Status      core.TransactionStatus
	PaymentDate *time.Time
}

// IncomeInput carries the caller-controlled fields of an income.
type IncomeInput struct {
	Source      core.IncomeSource
	Description string
	Amount      core.Money
	Date        time.Time
}

// CategoryInput carries the caller-controlled fields of a category.
type CategoryInput struct {
	Name   string
	Budget core.Money
	Color  string
}

// requireCompany rejects sessions without a tenant for mutations.
func requireCompany(sess core.Session) error {
	if sess.CompanyID == "" {
		return core.ErrNoCompany
	}
	return nil
}

// scoped returns ErrNotFound when a record belongs to another tenant,
// so cross-company probing is indistinguishable from a missing row.
func scoped(sess core.Session, companyID string) error {
	if sess.IsMaster() {
		return nil
	}
	if companyID != sess.CompanyID {
		return core.ErrNotFound
	}
	return nil
}

// CreateTransaction stores a new expense for the session's company and
// returns an advisory budget warning when the category's current-month
// projection exceeds its ceiling. The warning never blocks the write.
func (s *FinanceService) CreateTransaction(ctx context.Context, sess core.Session, in TransactionInput) (core.Transaction, *core.BudgetWarning, error) {
	if err := sess.Check(core.PermEdit); err != nil {
		return core.Transaction{}, nil, err
	}
	if err := requireCompany(sess); err != nil {
		return core.Transaction{}, nil, err
	}

	t := core.Transaction{
		ID:          uuid.NewString(),
		Name:        in.Name,
		Amount:      in.Amount,
		Date:        s.now(),
		DueDate:     in.DueDate,
		CategoryID:  in.CategoryID,
		AccountID:   in.AccountID,
		Status:      in.Status,
		PaymentDate: in.PaymentDate,
		CompanyID:   sess.CompanyID,
	}
	if t.Status == core.StatusPaid && t.PaymentDate == nil {
		now := s.now()
		t.PaymentDate = &now
	}
	if t.Status == core.StatusPending {
		t.PaymentDate = nil
	}
	if err := t.Validate(); err != nil {
		return core.Transaction{}, nil, err
	}

	warning := s.checkBudget(ctx, sess.CompanyID, t.CategoryID, t.Amount, "")

	if err := s.transactions.CreateTransaction(ctx, t); err != nil {
		return core.Transaction{}, nil, fmt.Errorf("create transaction: %w", err)
	}
	if err := s.activity.Record(ctx, sess, core.ActionCreate, core.EntityTransaction,
		fmt.Sprintf("Created transaction %q", t.Name)); err != nil {
		return core.Transaction{}, nil, err
	}

	s.logger.InfoContext(ctx, "Transaction created",
		applog.FieldEntityID, t.ID,
		applog.FieldAmountCents, t.Amount.Cents,
		applog.FieldCategoryID, t.CategoryID,
		applog.FieldCompanyID, t.CompanyID)
	return t, warning, nil
}

// UpdateTransaction replaces the caller-controlled fields of an
// existing transaction. Amount or category changes re-run the budget
// advisory.
func (s *FinanceService) UpdateTransaction(ctx context.Context, sess core.Session, id string, in TransactionInput) (core.Transaction, *core.BudgetWarning, error) {
	if err := sess.Check(core.PermEdit); err != nil {
		return core.Transaction{}, nil, err
	}

	existing, err := s.transactions.GetTransaction(ctx, id)
	if err != nil {
		return core.Transaction{}, nil, err
	}
	if err := scoped(sess, existing.CompanyID); err != nil {
		return core.Transaction{}, nil, err
	}

	updated := existing
	updated.Name = in.Name
	updated.Amount = in.Amount
	updated.DueDate = in.DueDate
	updated.CategoryID = in.CategoryID
	updated.AccountID = in.AccountID
	updated.Status = in.Status
	updated.PaymentDate = in.PaymentDate
	if updated.Status == core.StatusPaid && updated.PaymentDate == nil {
		now := s.now()
		updated.PaymentDate = &now
	}
	if updated.Status == core.StatusPending {
		updated.PaymentDate = nil
	}
	if err := updated.Validate(); err != nil {
		return core.Transaction{}, nil, err
	}

	var warning *core.BudgetWarning
	if updated.Amount != existing.Amount || updated.CategoryID != existing.CategoryID {
		warning = s.checkBudget(ctx, existing.CompanyID, updated.CategoryID, updated.Amount, existing.ID)
	}

	if err := s.transactions.UpdateTransaction(ctx, updated); err != nil {
		return core.Transaction{}, nil, fmt.Errorf("update transaction: %w", err)
	}
	if err := s.activity.Record(ctx, sess, core.ActionUpdate, core.EntityTransaction,
		fmt.Sprintf("Updated transaction %q", updated.Name)); err != nil {
		return core.Transaction{}, nil, err
	}
	return updated, warning, nil
}

func (s *FinanceService) DeleteTransaction(ctx context.Context, sess core.Session, id string) error {
	if err := sess.Check(core.PermEdit); err != nil {
		return err
	}

	existing, err := s.transactions.GetTransaction(ctx, id)
	if err != nil {
		return err
	}
	if err := scoped(sess, existing.CompanyID); err != nil {
		return err
	}

	if err := s.transactions.DeleteTransaction(ctx, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return s.activity.Record(ctx, sess, core.ActionDelete, core.EntityTransaction,
		fmt.Sprintf("Deleted transaction %q", existing.Name))
}

// ToggleTransactionStatus flips paid <-> pending. Paying sets the
// payment date; reverting clears it, so toggling twice restores the
// pending state exactly.
func (s *FinanceService) ToggleTransactionStatus(ctx context.Context, sess core.Session, id string) (core.Transaction, error) {
	if err := sess.Check(core.PermEdit); err != nil {
		return core.Transaction{}, err
	}

	t, err := s.transactions.GetTransaction(ctx, id)
	if err != nil {
		return core.Transaction{}, err
	}
	if err := scoped(sess, t.CompanyID); err != nil {
		return core.Transaction{}, err
	}

	if t.Status == core.StatusPaid {
		t.Status = core.StatusPending
		t.PaymentDate = nil
	} else {
		t.Status = core.StatusPaid
		now := s.now()
		t.PaymentDate = &now
	}

	if err := s.transactions.UpdateTransaction(ctx, t); err != nil {
		return core.Transaction{}, fmt.Errorf("toggle transaction status: %w", err)
	}
	if err := s.activity.Record(ctx, sess, core.ActionUpdate, core.EntityTransaction,
		fmt.Sprintf("Marked transaction %q as %s", t.Name, t.Status)); err != nil {
		return core.Transaction{}, err
	}
	return t, nil
}

// ListTransactions returns the session company's transactions for the
// browsing month (calendar-month equality on the due date). A master
// session without a company sees an empty list.
func (s *FinanceService) ListTransactions(ctx context.Context, sess core.Session) ([]core.Transaction, error) {
	if err := sess.Check(core.PermView); err != nil {
		return nil, err
	}
	if sess.CompanyID == "" {
		return []core.Transaction{}, nil
	}

	all, err := s.transactions.ListTransactionsByCompany(ctx, sess.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	out := make([]core.Transaction, 0, len(all))
	for _, t := range all {
		if core.SameMonth(t.DueDate, sess.CurrentDate) {
			out = append(out, t)
		}
	}
	return out, nil
}

// AllTransactions is the unfiltered read path for global aggregation.
// Master only.
func (s *FinanceService) AllTransactions(ctx context.Context, sess core.Session) ([]core.Transaction, error) {
	if !sess.IsMaster() {
		return nil, core.ErrPermissionDenied
	}
	return s.transactions.ListTransactions(ctx)
}

func (s *FinanceService) CreateIncome(ctx context.Context, sess core.Session, in IncomeInput) (core.Income, error) {
	if err := sess.Check(core.PermEdit); err != nil {
		return core.Income{}, err
	}
	if err := requireCompany(sess); err != nil {
		return core.Income{}, err
	}

	i := core.Income{
		ID:          uuid.NewString(),
		Source:      in.Source,
		Description: in.Description,
		Amount:      in.Amount,
		Date:        in.Date,
		CompanyID:   sess.CompanyID,
	}
	if err := i.Validate(); err != nil {
		return core.Income{}, err
	}

	if err := s.incomes.CreateIncome(ctx, i); err != nil {
		return core.Income{}, fmt.Errorf("create income: %w", err)
	}
	if err := s.activity.Record(ctx, sess, core.ActionCreate, core.EntityIncome,
		fmt.Sprintf("Created income %q", string(i.Source))); err != nil {
		return core.Income{}, err
	}
	return i, nil
}

func (s *FinanceService) UpdateIncome(ctx context.Context, sess core.Session, id string, in IncomeInput) (core.Income, error) {
	if err := sess.Check(core.PermEdit); err != nil {
		return core.Income{}, err
	}

	existing, err := s.incomes.GetIncome(ctx, id)
	if err != nil {
		return core.Income{}, err
	}
	if err := scoped(sess, existing.CompanyID); err != nil {
		return core.Income{}, err
	}

	updated := existing
	updated.Source = in.Source
	updated.Description = in.Description
	updated.Amount = in.Amount
	updated.Date = in.Date
	if err := updated.Validate(); err != nil {
		return core.Income{}, err
	}

	if err := s.incomes.UpdateIncome(ctx, updated); err != nil {
		return core.Income{}, fmt.Errorf("update income: %w", err)
	}
	if err := s.activity.Record(ctx, sess, core.ActionUpdate, core.EntityIncome,
		fmt.Sprintf("Updated income %q", string(updated.Source))); err != nil {
		return core.Income{}, err
	}
	return updated, nil
}

func (s *FinanceService) DeleteIncome(ctx context.Context, sess core.Session, id string) error {
	if err := sess.Check(core.PermEdit); err != nil {
		return err
	}

	existing, err := s.incomes.GetIncome(ctx, id)
	if err != nil {
		return err
	}
	if err := scoped(sess, existing.CompanyID); err != nil {
		return err
	}

	if err := s.incomes.DeleteIncome(ctx, id); err != nil {
		return fmt.Errorf("delete income: %w", err)
	}
	return s.activity.Record(ctx, sess, core.ActionDelete, core.EntityIncome,
		fmt.Sprintf("Deleted income %q", string(existing.Source)))
}

// ListIncomes filters by company, then by calendar month on the income
// date.
func (s *FinanceService) ListIncomes(ctx context.Context, sess core.Session) ([]core.Income, error) {
	if err := sess.Check(core.PermView); err != nil {
		return nil, err
	}
	if sess.CompanyID == "" {
		return []core.Income{}, nil
	}

	all, err := s.incomes.ListIncomesByCompany(ctx, sess.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("list incomes: %w", err)
	}
	out := make([]core.Income, 0, len(all))
	for _, i := range all {
		if core.SameMonth(i.Date, sess.CurrentDate) {
			out = append(out, i)
		}
	}
	return out, nil
}

// AllIncomes is the unfiltered read path for global aggregation.
// Master only.
func (s *FinanceService) AllIncomes(ctx context.Context, sess core.Session) ([]core.Income, error) {
	if !sess.IsMaster() {
		return nil, core.ErrPermissionDenied
	}
	return s.incomes.ListIncomes(ctx)
}

func (s *FinanceService) CreateCategory(ctx context.Context, sess core.Session, in CategoryInput) (core.Category, error) {
	if err := sess.Check(core.PermEdit); err != nil {
		return core.Category{}, err
	}
	if err := requireCompany(sess); err != nil {
		return core.Category{}, err
	}

	c := core.Category{
		ID:        uuid.NewString(),
		Name:      in.Name,
		Budget:    in.Budget,
		Color:     in.Color,
		CompanyID: sess.CompanyID,
	}
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}

	if err := s.categories.CreateCategory(ctx, c); err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}
	if err := s.activity.Record(ctx, sess, core.ActionCreate, core.EntityCategory,
		fmt.Sprintf("Created category %q", c.Name)); err != nil {
		return core.Category{}, err
	}
	return c, nil
}

func (s *FinanceService) UpdateCategory(ctx context.Context, sess core.Session, id string, in CategoryInput) (core.Category, error) {
	if err := sess.Check(core.PermEdit); err != nil {
		return core.Category{}, err
	}

	existing, err := s.categories.GetCategory(ctx, id)
	if err != nil {
		return core.Category{}, err
	}
	if err := scoped(sess, existing.CompanyID); err != nil {
		return core.Category{}, err
	}

	updated := existing
	updated.Name = in.Name
	updated.Budget = in.Budget
	updated.Color = in.Color
	if err := updated.Validate(); err != nil {
		return core.Category{}, err
	}

	if err := s.categories.UpdateCategory(ctx, updated); err != nil {
		return core.Category{}, fmt.Errorf("update category: %w", err)
	}
	if err := s.activity.Record(ctx, sess, core.ActionUpdate, core.EntityCategory,
		fmt.Sprintf("Updated category %q", updated.Name)); err != nil {
		return core.Category{}, err
	}
	return updated, nil
}

func (s *FinanceService) DeleteCategory(ctx context.Context, sess core.Session, id string) error {
	if err := sess.Check(core.PermEdit); err != nil {
		return err
	}

	existing, err := s.categories.GetCategory(ctx, id)
	if err != nil {
		return err
	}
	if err := scoped(sess, existing.CompanyID); err != nil {
		return err
	}

	if err := s.categories.DeleteCategory(ctx, id); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return s.activity.Record(ctx, sess, core.ActionDelete, core.EntityCategory,
		fmt.Sprintf("Deleted category %q", existing.Name))
}

func (s *FinanceService) ListCategories(ctx context.Context, sess core.Session) ([]core.Category, error) {
	if err := sess.Check(core.PermView); err != nil {
		return nil, err
	}
	if sess.CompanyID == "" {
		return []core.Category{}, nil
	}
	return s.categories.ListCategoriesByCompany(ctx, sess.CompanyID)
}

func (s *FinanceService) CreateAccount(ctx context.Context, sess core.Session, name string) (core.Account, error) {
	if err := sess.Check(core.PermEdit); err != nil {
		return core.Account{}, err
	}
	if err := requireCompany(sess); err != nil {
		return core.Account{}, err
	}

	a := core.Account{
		ID:        uuid.NewString(),
		Name:      name,
		CompanyID: sess.CompanyID,
	}
	if err := a.Validate(); err != nil {
		return core.Account{}, err
	}

	if err := s.accounts.CreateAccount(ctx, a); err != nil {
		return core.Account{}, fmt.Errorf("create account: %w", err)
	}
	if err := s.activity.Record(ctx, sess, core.ActionCreate, core.EntityAccount,
		fmt.Sprintf("Created account %q", a.Name)); err != nil {
		return core.Account{}, err
	}
	return a, nil
}

func (s *FinanceService) UpdateAccount(ctx context.Context, sess core.Session, id, name string) (core.Account, error) {
	if err := sess.Check(core.PermEdit); err != nil {
		return core.Account{}, err
	}

	existing, err := s.accounts.GetAccount(ctx, id)
	if err != nil {
		return core.Account{}, err
	}
	if err := scoped(sess, existing.CompanyID); err != nil {
		return core.Account{}, err
	}

	existing.Name = name
	if err := existing.Validate(); err != nil {
		return core.Account{}, err
	}

	if err := s.accounts.UpdateAccount(ctx, existing); err != nil {
		return core.Account{}, fmt.Errorf("update account: %w", err)
	}
	if err := s.activity.Record(ctx, sess, core.ActionUpdate, core.EntityAccount,
		fmt.Sprintf("Updated account %q", existing.Name)); err != nil {
		return core.Account{}, err
	}
	return existing, nil
}

func (s *FinanceService) DeleteAccount(ctx context.Context, sess core.Session, id string) error {
	if err := sess.Check(core.PermEdit); err != nil {
		return err
	}

	existing, err := s.accounts.GetAccount(ctx, id)
	if err != nil {
		return err
	}
	if err := scoped(sess, existing.CompanyID); err != nil {
		return err
	}

	if err := s.accounts.DeleteAccount(ctx, id); err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	return s.activity.Record(ctx, sess, core.ActionDelete, core.EntityAccount,
		fmt.Sprintf("Deleted account %q", existing.Name))
}

func (s *FinanceService) ListAccounts(ctx context.Context, sess core.Session) ([]core.Account, error) {
	if err := sess.Check(core.PermView); err != nil {
		return nil, err
	}
	if sess.CompanyID == "" {
		return []core.Account{}, nil
	}
	return s.accounts.ListAccountsByCompany(ctx, sess.CompanyID)
}

// MonthSummary aggregates the browsing month for the dashboard:
// totals, balance, and per-category spend against budgets.
func (s *FinanceService) MonthSummary(ctx context.Context, sess core.Session) (core.MonthSummary, error) {
	transactions, err := s.ListTransactions(ctx, sess)
	if err != nil {
		return core.MonthSummary{}, err
	}
	incomes, err := s.ListIncomes(ctx, sess)
	if err != nil {
		return core.MonthSummary{}, err
	}
	categories, err := s.ListCategories(ctx, sess)
	if err != nil {
		return core.MonthSummary{}, err
	}

	summary := core.MonthSummary{
		Year:  sess.CurrentDate.Year(),
		Month: int(sess.CurrentDate.Month()),
	}

	spentByCategory := make(map[string]int64)
	for _, t := range transactions {
		summary.TotalExpense.Cents += t.Amount.Cents
		spentByCategory[t.CategoryID] += t.Amount.Cents
	}
	for _, i := range incomes {
		summary.TotalIncome.Cents += i.Amount.Cents
	}
	summary.Balance.Cents = summary.TotalIncome.Cents - summary.TotalExpense.Cents

	for _, c := range categories {
		summary.ByCategory = append(summary.ByCategory, core.CategorySpend{
			CategoryID: c.ID,
			Name:       c.Name,
			Color:      c.Color,
			Budget:     c.Budget,
			Spent:      core.Money{Cents: spentByCategory[c.ID]},
		})
	}
	return summary, nil
}

// checkBudget projects the category's spend for the current real-world
// calendar month (due-date attribution) plus the incoming amount, and
// warns when the projection exceeds the category budget. Advisory
// only: errors and missing categories simply produce no warning.
func (s *FinanceService) checkBudget(ctx context.Context, companyID, categoryID string, amount core.Money, excludeID string) *core.BudgetWarning {
	category, err := s.categories.GetCategory(ctx, categoryID)
	if err != nil || category.CompanyID != companyID || category.Budget.Cents <= 0 {
		return nil
	}

	all, err := s.transactions.ListTransactionsByCompany(ctx, companyID)
	if err != nil {
		s.logger.WarnContext(ctx, "Budget check skipped", applog.FieldError, err.Error())
		return nil
	}

	now := s.now()
	var spent int64
	for _, t := range all {
		if t.ID == excludeID || t.CategoryID != categoryID {
			continue
		}
		if core.SameMonth(t.DueDate, now) {
			spent += t.Amount.Cents
		}
	}

	projected := spent + amount.Cents
	if projected <= category.Budget.Cents {
		return nil
	}
	return &core.BudgetWarning{
		CategoryID:   category.ID,
		CategoryName: category.Name,
		Budget:       category.Budget,
		Projected:    core.Money{Cents: projected},
	}
}
