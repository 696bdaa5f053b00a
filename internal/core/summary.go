package core

// CategorySpend pairs a category with its month-to-date spend against
// the budget ceiling.
type CategorySpend struct {
	CategoryID string
	Name       string
	Color      string
	Budget     Money
	Spent      Money
}

// OverBudget reports whether the spend exceeds the ceiling. A zero
// budget never warns.
func (c CategorySpend) OverBudget() bool {
	return c.Budget.Cents > 0 && c.Spent.Cents > c.Budget.Cents
}

// MonthSummary aggregates a company's month for the dashboard.
type MonthSummary struct {
	Year         int
	Month        int
	TotalExpense Money
	TotalIncome  Money
	Balance      Money
	ByCategory   []CategorySpend
}
