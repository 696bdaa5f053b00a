package services

import (
	"context"
	"testing"
	"time"

	"caixa/internal/core"
	"caixa/internal/memory"
)

func testFixture(t *testing.T) (*memory.Store, *FinanceService, *ActivityService) {
	t.Helper()
	store := memory.New()
	ctx := context.Background()

	if err := store.CreateCompany(ctx, core.Company{ID: "1", Name: "Empresa Demo"}); err != nil {
		t.Fatal(err)
	}
	if err := store.CreateCompany(ctx, core.Company{ID: "2", Name: "Outra Empresa"}); err != nil {
		t.Fatal(err)
	}
	if err := store.CreateCategory(ctx, core.Category{ID: "c-1", Name: "Alimentação", Budget: core.Money{Cents: 150000}, Color: "hsl(var(--chart-1))", CompanyID: "1"}); err != nil {
		t.Fatal(err)
	}
	if err := store.CreateAccount(ctx, core.Account{ID: "a-1", Name: "Nubank", CompanyID: "1"}); err != nil {
		t.Fatal(err)
	}

	activity := NewActivityService(store, nil)
	finance := NewFinanceService(store, activity, nil)
	return store, finance, activity
}

func editorSession() core.Session {
	return core.Session{
		Token:       "tok-editor",
		UserID:      "u-editor",
		UserName:    "Editor Demo",
		Role:        core.RoleEditor,
		CompanyID:   "1",
		CurrentDate: time.Now(),
	}
}

func viewerSession() core.Session {
	s := editorSession()
	s.Token = "tok-viewer"
	s.UserID = "u-viewer"
	s.UserName = "Viewer Demo"
	s.Role = core.RoleViewer
	return s
}

func adminSession() core.Session {
	s := editorSession()
	s.Token = "tok-admin"
	s.UserID = "u-admin"
	s.UserName = "Admin Demo"
	s.Role = core.RoleAdmin
	return s
}

func masterSession() core.Session {
	return core.Session{
		Token:       "tok-master",
		UserID:      "u-master",
		UserName:    "Sistema Global",
		Role:        core.RoleMaster,
		CompanyID:   "",
		CurrentDate: time.Now(),
	}
}

func pendingInput(name string, cents int64) TransactionInput {
	return TransactionInput{
		Name:       name,
		Amount:     core.Money{Cents: cents},
		DueDate:    time.Now(),
		CategoryID: "c-1",
		AccountID:  "a-1",
		Status:     core.StatusPending,
	}
}

func TestCreateTransactionStampsCompany(t *testing.T) {
	_, finance, _ := testFixture(t)
	ctx := context.Background()
	sess := editorSession()

	in := pendingInput("Supermercado", 8505)
	in.CategoryID = "c-1"

	created, warning, err := finance.CreateTransaction(ctx, sess, in)
	if err != nil {
		t.Fatalf("CreateTransaction failed: %v", err)
	}
	if created.CompanyID != "1" {
		t.Errorf("company should be stamped from the session, got %q", created.CompanyID)
	}
	if warning != nil {
		t.Errorf("no warning expected under budget, got %+v", warning)
	}

	list, err := finance.ListTransactions(ctx, sess)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].ID != created.ID {
		t.Errorf("expected the created transaction in the month list, got %v", list)
	}
}

func TestViewerCreateDeniedWithoutTrace(t *testing.T) {
	_, finance, activity := testFixture(t)
	ctx := context.Background()

	_, _, err := finance.CreateTransaction(ctx, viewerSession(), pendingInput("Supermercado", 8505))
	if err != core.ErrPermissionDenied {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}

	list, err := finance.ListTransactions(ctx, viewerSession())
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 0 {
		t.Errorf("denied create must not change the collection, got %d transactions", len(list))
	}

	entries, err := activity.List(ctx, adminSession(), ActivityFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("denied operations must not be audited, got %d entries", len(entries))
	}
}

func TestMasterWithoutCompanyCannotWrite(t *testing.T) {
	_, finance, _ := testFixture(t)
	ctx := context.Background()

	_, _, err := finance.CreateTransaction(ctx, masterSession(), pendingInput("Supermercado", 8505))
	if err != core.ErrNoCompany {
		t.Errorf("expected ErrNoCompany, got %v", err)
	}
}

func TestMasterWithoutCompanySeesEmptyLists(t *testing.T) {
	_, finance, _ := testFixture(t)
	ctx := context.Background()

	if _, _, err := finance.CreateTransaction(ctx, editorSession(), pendingInput("Supermercado", 8505)); err != nil {
		t.Fatal(err)
	}

	list, err := finance.ListTransactions(ctx, masterSession())
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 0 {
		t.Errorf("unscoped master should see an empty list, got %d", len(list))
	}
}

func TestTenantIsolation(t *testing.T) {
	store, finance, _ := testFixture(t)
	ctx := context.Background()

	other := core.Transaction{
		ID: "t-other", Name: "Alheio", Amount: core.Money{Cents: 1000},
		Date: time.Now(), DueDate: time.Now(),
		CategoryID: "c-9", AccountID: "a-9",
		Status: core.StatusPending, CompanyID: "2",
	}
	if err := store.CreateTransaction(ctx, other); err != nil {
		t.Fatal(err)
	}

	// Cross-tenant reads look identical to a missing row.
	_, _, err := finance.UpdateTransaction(ctx, editorSession(), "t-other", pendingInput("Hijack", 1000))
	if err != core.ErrNotFound {
		t.Errorf("cross-tenant update should be ErrNotFound, got %v", err)
	}
	if err := finance.DeleteTransaction(ctx, editorSession(), "t-other"); err != core.ErrNotFound {
		t.Errorf("cross-tenant delete should be ErrNotFound, got %v", err)
	}

	list, err := finance.ListTransactions(ctx, editorSession())
	if err != nil {
		t.Fatal(err)
	}
	for _, tr := range list {
		if tr.CompanyID != "1" {
			t.Errorf("list leaked a foreign transaction: %+v", tr)
		}
	}
}

func TestToggleTransactionRoundTrip(t *testing.T) {
	_, finance, _ := testFixture(t)
	ctx := context.Background()
	sess := editorSession()

	created, _, err := finance.CreateTransaction(ctx, sess, pendingInput("Aluguel", 180000))
	if err != nil {
		t.Fatal(err)
	}

	paid, err := finance.ToggleTransactionStatus(ctx, sess, created.ID)
	if err != nil {
		t.Fatal(err)
	}
	if paid.Status != core.StatusPaid || paid.PaymentDate == nil {
		t.Errorf("toggle should pay and set the payment date, got %+v", paid)
	}

	pending, err := finance.ToggleTransactionStatus(ctx, sess, created.ID)
	if err != nil {
		t.Fatal(err)
	}
	if pending.Status != core.StatusPending || pending.PaymentDate != nil {
		t.Errorf("second toggle should restore pending with no payment date, got %+v", pending)
	}
}

func TestBudgetWarning(t *testing.T) {
	_, finance, _ := testFixture(t)
	ctx := context.Background()
	sess := editorSession()

	// Category c-1 has a budget of R$1500,00. Spend R$1400,00 first.
	if _, _, err := finance.CreateTransaction(ctx, sess, pendingInput("Mercado", 140000)); err != nil {
		t.Fatal(err)
	}

	// The next R$200,00 projects R$1600,00 and must warn without
	// blocking the write.
	created, warning, err := finance.CreateTransaction(ctx, sess, pendingInput("Feira", 20000))
	if err != nil {
		t.Fatalf("warning must not block the write: %v", err)
	}
	if warning == nil {
		t.Fatal("expected a budget warning")
	}
	if warning.CategoryName != "Alimentação" {
		t.Errorf("expected category Alimentação, got %q", warning.CategoryName)
	}
	if warning.Projected.Cents != 160000 {
		t.Errorf("expected projected 160000 cents, got %d", warning.Projected.Cents)
	}
	if warning.Budget.Cents != 150000 {
		t.Errorf("expected budget 150000 cents, got %d", warning.Budget.Cents)
	}

	list, err := finance.ListTransactions(ctx, sess)
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, tr := range list {
		if tr.ID == created.ID {
			found = true
		}
	}
	if !found {
		t.Error("transaction should be stored despite the warning")
	}
}

func TestBudgetWarningExcludesUpdatedTransaction(t *testing.T) {
	_, finance, _ := testFixture(t)
	ctx := context.Background()
	sess := editorSession()

	created, _, err := finance.CreateTransaction(ctx, sess, pendingInput("Mercado", 140000))
	if err != nil {
		t.Fatal(err)
	}

	// Raising the same transaction to R$1450,00 projects only its own
	// new amount, not old plus new.
	_, warning, err := finance.UpdateTransaction(ctx, sess, created.ID, pendingInput("Mercado", 145000))
	if err != nil {
		t.Fatal(err)
	}
	if warning != nil {
		t.Errorf("update within budget should not warn, got %+v", warning)
	}
}

func TestListTransactionsFiltersByMonth(t *testing.T) {
	_, finance, _ := testFixture(t)
	ctx := context.Background()
	sess := editorSession()

	now := time.Now()
	lastMonth := time.Date(now.Year(), now.Month(), 1, 12, 0, 0, 0, time.UTC).AddDate(0, 0, -15)

	in := pendingInput("Conta antiga", 1000)
	in.DueDate = lastMonth
	if _, _, err := finance.CreateTransaction(ctx, sess, in); err != nil {
		t.Fatal(err)
	}
	if _, _, err := finance.CreateTransaction(ctx, sess, pendingInput("Conta atual", 2000)); err != nil {
		t.Fatal(err)
	}

	list, err := finance.ListTransactions(ctx, sess)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].Name != "Conta atual" {
		t.Errorf("expected only the current month's transaction, got %v", list)
	}

	// Browsing last month flips the visible set.
	sess.CurrentDate = lastMonth
	list, err = finance.ListTransactions(ctx, sess)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].Name != "Conta antiga" {
		t.Errorf("expected only last month's transaction, got %v", list)
	}
}

func TestIncomeLifecycle(t *testing.T) {
	_, finance, _ := testFixture(t)
	ctx := context.Background()
	sess := editorSession()

	created, err := finance.CreateIncome(ctx, sess, IncomeInput{
		Source:      core.SourceSalary,
		Description: "Salário Mensal",
		Amount:      core.Money{Cents: 500000},
		Date:        time.Now(),
	})
	if err != nil {
		t.Fatal(err)
	}
	if created.CompanyID != "1" {
		t.Errorf("income company should be stamped from the session, got %q", created.CompanyID)
	}

	_, err = finance.CreateIncome(ctx, sess, IncomeInput{
		Source: "Freelance",
		Amount: core.Money{Cents: 1000},
		Date:   time.Now(),
	})
	if err != core.ErrInvalidSource {
		t.Errorf("expected ErrInvalidSource for unknown source, got %v", err)
	}

	updated, err := finance.UpdateIncome(ctx, sess, created.ID, IncomeInput{
		Source:      core.SourceBonus,
		Description: "Bônus anual",
		Amount:      core.Money{Cents: 100000},
		Date:        time.Now(),
	})
	if err != nil {
		t.Fatal(err)
	}
	if updated.Source != core.SourceBonus {
		t.Errorf("expected updated source, got %q", updated.Source)
	}

	if err := finance.DeleteIncome(ctx, sess, created.ID); err != nil {
		t.Fatal(err)
	}
	list, err := finance.ListIncomes(ctx, sess)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 0 {
		t.Errorf("expected empty income list after delete, got %d", len(list))
	}
}

func TestMonthSummary(t *testing.T) {
	_, finance, _ := testFixture(t)
	ctx := context.Background()
	sess := editorSession()

	if _, _, err := finance.CreateTransaction(ctx, sess, pendingInput("Mercado", 85050)); err != nil {
		t.Fatal(err)
	}
	if _, err := finance.CreateIncome(ctx, sess, IncomeInput{
		Source: core.SourceSalary,
		Amount: core.Money{Cents: 500000},
		Date:   time.Now(),
	}); err != nil {
		t.Fatal(err)
	}

	summary, err := finance.MonthSummary(ctx, sess)
	if err != nil {
		t.Fatal(err)
	}
	if summary.TotalExpense.Cents != 85050 {
		t.Errorf("expected total expense 85050, got %d", summary.TotalExpense.Cents)
	}
	if summary.TotalIncome.Cents != 500000 {
		t.Errorf("expected total income 500000, got %d", summary.TotalIncome.Cents)
	}
	if summary.Balance.Cents != 414950 {
		t.Errorf("expected balance 414950, got %d", summary.Balance.Cents)
	}
	if len(summary.ByCategory) != 1 || summary.ByCategory[0].Spent.Cents != 85050 {
		t.Errorf("expected per-category spend 85050, got %+v", summary.ByCategory)
	}
}

func TestAccountAndCategoryCRUDRequireEdit(t *testing.T) {
	_, finance, _ := testFixture(t)
	ctx := context.Background()

	if _, err := finance.CreateAccount(ctx, viewerSession(), "Itaú"); err != core.ErrPermissionDenied {
		t.Errorf("viewer account create should be denied, got %v", err)
	}
	if _, err := finance.CreateCategory(ctx, viewerSession(), CategoryInput{Name: "Lazer", Budget: core.Money{Cents: 1000}, Color: "#fff"}); err != core.ErrPermissionDenied {
		t.Errorf("viewer category create should be denied, got %v", err)
	}

	a, err := finance.CreateAccount(ctx, editorSession(), "Itaú")
	if err != nil {
		t.Fatal(err)
	}
	if a.CompanyID != "1" {
		t.Errorf("account company should be stamped from the session, got %q", a.CompanyID)
	}
}

func TestCreatePendingClearsPaymentDate(t *testing.T) {
	_, finance, _ := testFixture(t)
	ctx := context.Background()

	paid := time.Now()
	in := pendingInput("Internet", 9990)
	in.PaymentDate = &paid

	created, _, err := finance.CreateTransaction(ctx, editorSession(), in)
	if err != nil {
		t.Fatalf("CreateTransaction failed: %v", err)
	}
	if created.Status != core.StatusPending {
		t.Errorf("expected pending status, got %q", created.Status)
	}
	if created.PaymentDate != nil {
		t.Errorf("pending transaction should have no payment date, got %v", created.PaymentDate)
	}
}

func TestUnfilteredReadsAreMasterOnly(t *testing.T) {
	_, finance, _ := testFixture(t)
	ctx := context.Background()

	if _, _, err := finance.CreateTransaction(ctx, editorSession(), pendingInput("Supermercado", 8505)); err != nil {
		t.Fatal(err)
	}
	other := editorSession()
	other.Token = "tok-editor-2"
	other.UserID = "u-editor-2"
	other.UserName = "Editor Dois"
	other.CompanyID = "2"
	in := pendingInput("Aluguel", 180000)
	in.CategoryID = "c-2"
	in.AccountID = "a-2"
	if _, _, err := finance.CreateTransaction(ctx, other, in); err != nil {
		t.Fatal(err)
	}
	if _, err := finance.CreateIncome(ctx, editorSession(), IncomeInput{
		Source: core.SourceSalary, Amount: core.Money{Cents: 500000}, Date: time.Now(),
	}); err != nil {
		t.Fatal(err)
	}

	if _, err := finance.AllTransactions(ctx, editorSession()); err != core.ErrPermissionDenied {
		t.Errorf("editor unfiltered transaction read should be denied, got %v", err)
	}
	if _, err := finance.AllIncomes(ctx, adminSession()); err != core.ErrPermissionDenied {
		t.Errorf("admin unfiltered income read should be denied, got %v", err)
	}

	all, err := finance.AllTransactions(ctx, masterSession())
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Fatalf("master should see both companies' transactions, got %d", len(all))
	}
	companies := map[string]bool{}
	for _, tr := range all {
		companies[tr.CompanyID] = true
	}
	if !companies["1"] || !companies["2"] {
		t.Errorf("expected transactions from companies 1 and 2, got %v", companies)
	}

	incomes, err := finance.AllIncomes(ctx, masterSession())
	if err != nil {
		t.Fatal(err)
	}
	if len(incomes) != 1 || incomes[0].Amount.Cents != 500000 {
		t.Errorf("unexpected unfiltered incomes %+v", incomes)
	}
}
