package http

import (
	"time"

	"caixa/internal/core"
)

// JSON views of the domain entities. Amounts are exposed both as raw
// cents and as a formatted BRL string.

type userView struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	CompanyID string `json:"companyId"`
	Status    string `json:"status"`
}

func viewUser(u core.User) userView {
	return userView{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      string(u.Role),
		CompanyID: u.CompanyID,
		Status:    string(u.Status),
	}
}

type sessionView struct {
	Token       string   `json:"token"`
	CurrentDate string   `json:"currentDate"`
	User        userView `json:"user"`
}

func viewSession(sess core.Session, u core.User) sessionView {
	return sessionView{
		Token:       sess.Token,
		CurrentDate: sess.CurrentDate.Format(time.RFC3339),
		User:        viewUser(u),
	}
}

type companyView struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func viewCompany(c core.Company) companyView {
	return companyView{ID: c.ID, Name: c.Name}
}

type transactionView struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	AmountCents int64   `json:"amountCents"`
	Amount      string  `json:"amount"`
	Date        string  `json:"date"`
	DueDate     string  `json:"dueDate"`
	CategoryID  string  `json:"categoryId"`
	AccountID   string  `json:"accountId"`
	Status      string  `json:"status"`
	PaymentDate *string `json:"paymentDate"`
	CompanyID   string  `json:"companyId"`
}

func viewTransaction(t core.Transaction) transactionView {
	v := transactionView{
		ID:          t.ID,
		Name:        t.Name,
		AmountCents: t.Amount.Cents,
		Amount:      t.Amount.Format(),
		Date:        t.Date.Format(time.RFC3339),
		DueDate:     t.DueDate.Format(time.RFC3339),
		CategoryID:  t.CategoryID,
		AccountID:   t.AccountID,
		Status:      string(t.Status),
		CompanyID:   t.CompanyID,
	}
	if t.PaymentDate != nil {
		s := t.PaymentDate.Format(time.RFC3339)
		v.PaymentDate = &s
	}
	return v
}

func viewTransactions(ts []core.Transaction) []transactionView {
	out := make([]transactionView, len(ts))
	for i, t := range ts {
		out[i] = viewTransaction(t)
	}
	return out
}

type budgetWarningView struct {
	CategoryID     string `json:"categoryId"`
	CategoryName   string `json:"categoryName"`
	BudgetCents    int64  `json:"budgetCents"`
	ProjectedCents int64  `json:"projectedCents"`
	Message        string `json:"message"`
}

func viewBudgetWarning(w *core.BudgetWarning) *budgetWarningView {
	if w == nil {
		return nil
	}
	return &budgetWarningView{
		CategoryID:     w.CategoryID,
		CategoryName:   w.CategoryName,
		BudgetCents:    w.Budget.Cents,
		ProjectedCents: w.Projected.Cents,
		Message:        "Orçamento de " + w.CategoryName + " excedido: " + w.Projected.Format() + " de " + w.Budget.Format(),
	}
}

type incomeView struct {
	ID          string `json:"id"`
	Source      string `json:"source"`
	Description string `json:"description"`
	AmountCents int64  `json:"amountCents"`
	Amount      string `json:"amount"`
	Date        string `json:"date"`
	CompanyID   string `json:"companyId"`
}

func viewIncome(i core.Income) incomeView {
	return incomeView{
		ID:          i.ID,
		Source:      string(i.Source),
		Description: i.Description,
		AmountCents: i.Amount.Cents,
		Amount:      i.Amount.Format(),
		Date:        i.Date.Format(time.RFC3339),
		CompanyID:   i.CompanyID,
	}
}

func viewIncomes(is []core.Income) []incomeView {
	out := make([]incomeView, len(is))
	for i, in := range is {
		out[i] = viewIncome(in)
	}
	return out
}

type categoryView struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	BudgetCents int64  `json:"budgetCents"`
	Budget      string `json:"budget"`
	Color       string `json:"color"`
	CompanyID   string `json:"companyId"`
}

func viewCategory(c core.Category) categoryView {
	return categoryView{
		ID:          c.ID,
		Name:        c.Name,
		BudgetCents: c.Budget.Cents,
		Budget:      c.Budget.Format(),
		Color:       c.Color,
		CompanyID:   c.CompanyID,
	}
}

type accountView struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CompanyID string `json:"companyId"`
}

func viewAccount(a core.Account) accountView {
	return accountView{ID: a.ID, Name: a.Name, CompanyID: a.CompanyID}
}

type invitationView struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	CompanyID string `json:"companyId"`
	Status    string `json:"status"`
	Date      string `json:"date"`
}

func viewInvitation(i core.Invitation) invitationView {
	return invitationView{
		ID:        i.ID,
		Email:     i.Email,
		Role:      string(i.Role),
		CompanyID: i.CompanyID,
		Status:    string(i.Status),
		Date:      i.Date.Format(time.RFC3339),
	}
}

type integrationView struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Provider  string  `json:"provider"`
	Status    string  `json:"status"`
	LastSync  *string `json:"lastSync"`
	CompanyID string  `json:"companyId"`
}

func viewIntegration(i core.Integration) integrationView {
	v := integrationView{
		ID:        i.ID,
		Name:      i.Name,
		Provider:  i.Provider,
		Status:    string(i.Status),
		CompanyID: i.CompanyID,
	}
	if i.LastSync != nil {
		s := i.LastSync.Format(time.RFC3339)
		v.LastSync = &s
	}
	return v
}

type activityView struct {
	ID        string `json:"id"`
	UserID    string `json:"userId"`
	UserName  string `json:"userName"`
	Action    string `json:"action"`
	Entity    string `json:"entity"`
	Details   string `json:"details"`
	Timestamp string `json:"timestamp"`
	CompanyID string `json:"companyId"`
}

func viewActivity(e core.ActivityLog) activityView {
	return activityView{
		ID:        e.ID,
		UserID:    e.UserID,
		UserName:  e.UserName,
		Action:    string(e.Action),
		Entity:    e.Entity,
		Details:   e.Details,
		Timestamp: e.Timestamp.Format(time.RFC3339),
		CompanyID: e.CompanyID,
	}
}

type categorySpendView struct {
	CategoryID  string `json:"categoryId"`
	Name        string `json:"name"`
	Color       string `json:"color"`
	BudgetCents int64  `json:"budgetCents"`
	SpentCents  int64  `json:"spentCents"`
	OverBudget  bool   `json:"overBudget"`
}

type summaryView struct {
	Year              int                 `json:"year"`
	Month             int                 `json:"month"`
	TotalExpenseCents int64               `json:"totalExpenseCents"`
	TotalIncomeCents  int64               `json:"totalIncomeCents"`
	BalanceCents      int64               `json:"balanceCents"`
	TotalExpense      string              `json:"totalExpense"`
	TotalIncome       string              `json:"totalIncome"`
	Balance           string              `json:"balance"`
	ByCategory        []categorySpendView `json:"byCategory"`
}

func viewSummary(m core.MonthSummary) summaryView {
	v := summaryView{
		Year:              m.Year,
		Month:             m.Month,
		TotalExpenseCents: m.TotalExpense.Cents,
		TotalIncomeCents:  m.TotalIncome.Cents,
		BalanceCents:      m.Balance.Cents,
		TotalExpense:      m.TotalExpense.Format(),
		TotalIncome:       m.TotalIncome.Format(),
		Balance:           m.Balance.Format(),
	}
	for _, c := range m.ByCategory {
		v.ByCategory = append(v.ByCategory, categorySpendView{
			CategoryID:  c.CategoryID,
			Name:        c.Name,
			Color:       c.Color,
			BudgetCents: c.Budget.Cents,
			SpentCents:  c.Spent.Cents,
			OverBudget:  c.OverBudget(),
		})
	}
	return v
}

type masterCompanyView struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	TotalExpenseCents int64  `json:"totalExpenseCents"`
	TotalIncomeCents  int64  `json:"totalIncomeCents"`
	BalanceCents      int64  `json:"balanceCents"`
	TotalExpense      string `json:"totalExpense"`
	TotalIncome       string `json:"totalIncome"`
	Balance           string `json:"balance"`
	Transactions      int    `json:"transactions"`
	Incomes           int    `json:"incomes"`
}

type masterOverviewView struct {
	Companies         []masterCompanyView `json:"companies"`
	TotalExpenseCents int64               `json:"totalExpenseCents"`
	TotalIncomeCents  int64               `json:"totalIncomeCents"`
	BalanceCents      int64               `json:"balanceCents"`
}

// viewMasterOverview rolls unfiltered transactions and incomes up into
// per-company totals plus a grand total.
func viewMasterOverview(companies []core.Company, ts []core.Transaction, is []core.Income) masterOverviewView {
	out := masterOverviewView{Companies: make([]masterCompanyView, len(companies))}
	index := make(map[string]int, len(companies))
	for i, c := range companies {
		out.Companies[i] = masterCompanyView{ID: c.ID, Name: c.Name}
		index[c.ID] = i
	}

	for _, t := range ts {
		out.TotalExpenseCents += t.Amount.Cents
		if i, ok := index[t.CompanyID]; ok {
			out.Companies[i].TotalExpenseCents += t.Amount.Cents
			out.Companies[i].Transactions++
		}
	}
	for _, in := range is {
		out.TotalIncomeCents += in.Amount.Cents
		if i, ok := index[in.CompanyID]; ok {
			out.Companies[i].TotalIncomeCents += in.Amount.Cents
			out.Companies[i].Incomes++
		}
	}
	out.BalanceCents = out.TotalIncomeCents - out.TotalExpenseCents

	for i := range out.Companies {
		c := &out.Companies[i]
		c.BalanceCents = c.TotalIncomeCents - c.TotalExpenseCents
		c.TotalExpense = core.Money{Cents: c.TotalExpenseCents}.Format()
		c.TotalIncome = core.Money{Cents: c.TotalIncomeCents}.Format()
		c.Balance = core.Money{Cents: c.BalanceCents}.Format()
	}
	return out
}

type widgetView struct {
	ID      string `json:"id"`
	Visible bool   `json:"visible"`
	Order   int    `json:"order"`
}

func viewWidgets(ws []core.DashboardWidget) []widgetView {
	out := make([]widgetView, len(ws))
	for i, w := range ws {
		out[i] = widgetView{ID: w.ID, Visible: w.Visible, Order: w.Order}
	}
	return out
}
