package core

import (
	"strings"
	"time"
)

const (
	StatusPaid    TransactionStatus = "paid"
	StatusPending TransactionStatus = "pending"
)

const (
	UserActive  UserStatus = "active"
	UserLocked  UserStatus = "locked"
	UserPending UserStatus = "pending"
)

const (
	InvitePending  InvitationStatus = "pending"
	InviteAccepted InvitationStatus = "accepted"
)

const (
	IntegrationConnected IntegrationStatus = "connected"
	IntegrationSyncing   IntegrationStatus = "syncing"
)

// Income sources form a closed enumeration.
const (
	SourceSalary    IncomeSource = "Salário"
	SourceBonus     IncomeSource = "Bônus"
	SourceExtras    IncomeSource = "Extras"
	SourceCarryover IncomeSource = "Mês Anterior"
)

// Integration providers supported by the sync pipeline.
const (
	ProviderBank   = "bank"
	ProviderStripe = "stripe"
	ProviderPayPal = "paypal"
)

type (
	TransactionStatus string
	UserStatus        string
	InvitationStatus  string
	IntegrationStatus string
	IncomeSource      string

	// Company is the tenant boundary. Every scoped record carries
	// exactly one company id.
	Company struct {
		ID   string
		Name string
	}

	User struct {
		ID           string
		Name         string
		Email        string
		PasswordHash string
		Role         Role
		CompanyID    string // empty for master
		Status       UserStatus
	}

	// Category holds a monthly budget ceiling used for advisory
	// alerts only.
	Category struct {
		ID        string
		Name      string
		Budget    Money
		Color     string
		CompanyID string
	}

	Account struct {
		ID        string
		Name      string
		CompanyID string
	}

	// Transaction is an expense. DueDate drives month filtering and
	// budget attribution, not Date.
	Transaction struct {
		ID          string
		Name        string
		Amount      Money
		Date        time.Time
		DueDate     time.Time
		CategoryID  string
		AccountID   string
		Status      TransactionStatus
		PaymentDate *time.Time
		CompanyID   string
	}

	Income struct {
		ID          string
		Source      IncomeSource
		Description string
		Amount      Money
		Date        time.Time
		CompanyID   string
	}

	Invitation struct {
		ID        string
		Email     string
		Role      Role
		CompanyID string
		Status    InvitationStatus
		Date      time.Time
	}

	Integration struct {
		ID        string
		Name      string
		Provider  string
		Status    IntegrationStatus
		LastSync  *time.Time
		CompanyID string
	}

	// ActivityLog entries are immutable once appended and ordered
	// most-recent-first.
	ActivityLog struct {
		ID        string
		UserID    string
		UserName  string
		Action    Action
		Entity    string
		Details   string
		Timestamp time.Time
		CompanyID string
	}

	// DashboardWidget is a per-session display preference with no
	// durable persistence.
	DashboardWidget struct {
		ID      string
		Visible bool
		Order   int
	}

	// BudgetWarning is advisory only; it never blocks a write.
	BudgetWarning struct {
		CategoryID   string
		CategoryName string
		Budget       Money
		Projected    Money
	}
)

// Audit actions recorded in the activity log.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionInvite Action = "invite"
	ActionSync   Action = "sync"
	ActionExport Action = "export"
)

// Audited entity names.
const (
	EntityTransaction = "transaction"
	EntityIncome      = "income"
	EntityCategory    = "category"
	EntityAccount     = "account"
	EntityUser        = "user"
	EntityInvitation  = "invitation"
	EntityIntegration = "integration"
	EntityActivityLog = "activity_log"
)

// MasterCompanyID is the sentinel company id stamped on activity log
// entries when the acting user has no company.
const MasterCompanyID = "master"

// SameMonth reports calendar-month equality (not a rolling window).
func SameMonth(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}

func (s IncomeSource) Valid() bool {
	switch s {
	case SourceSalary, SourceBonus, SourceExtras, SourceCarryover:
		return true
	default:
		return false
	}
}

func ValidProvider(p string) bool {
	switch p {
	case ProviderBank, ProviderStripe, ProviderPayPal:
		return true
	default:
		return false
	}
}

func (t Transaction) Validate() error {
	if len(strings.TrimSpace(t.Name)) == 0 {
		return ErrEmptyName
	}
	if len(t.Name) > 200 {
		return ErrNameTooLong
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if t.DueDate.IsZero() {
		return ErrMissingDueDate
	}
	if t.CategoryID == "" {
		return ErrMissingCategory
	}
	if t.AccountID == "" {
		return ErrMissingAccount
	}
	switch t.Status {
	case StatusPaid:
		if t.PaymentDate == nil {
			return ErrPaymentDateMissing
		}
	case StatusPending:
		if t.PaymentDate != nil {
			return ErrPaymentDateSet
		}
	default:
		return ErrInvalidStatus
	}
	return nil
}

func (i Income) Validate() error {
	if !i.Source.Valid() {
		return ErrInvalidSource
	}
	if err := i.Amount.Validate(); err != nil {
		return err
	}
	if i.Date.IsZero() {
		return ErrMissingDate
	}
	return nil
}

func (c Category) Validate() error {
	if len(strings.TrimSpace(c.Name)) == 0 {
		return ErrEmptyName
	}
	if c.Budget.Cents < 0 {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(c.Color) == "" {
		return ErrMissingColor
	}
	return nil
}

func (a Account) Validate() error {
	if len(strings.TrimSpace(a.Name)) == 0 {
		return ErrEmptyName
	}
	return nil
}

// Sanitized returns a copy safe to hand to callers: the password hash
// is stripped.
func (u User) Sanitized() User {
	u.PasswordHash = ""
	return u
}
