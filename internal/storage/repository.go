package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"caixa/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteRepository persists the full data model in a single SQLite
// database file. Timestamps are stored as RFC3339 text.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func encodeTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func decodeTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

func encodeTimePtr(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: encodeTime(*t), Valid: true}
}

func decodeTimePtr(s sql.NullString) (*time.Time, error) {
	if !s.Valid {
		return nil, nil
	}
	t, err := decodeTime(s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return core.ErrNotFound
	}
	return err
}

// mustAffect converts a zero-row UPDATE or DELETE into ErrNotFound.
func mustAffect(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) CreateCompany(ctx context.Context, c core.Company) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO companies (id, name) VALUES (?, ?)`, c.ID, c.Name)
	return err
}

func (r *SQLiteRepository) GetCompany(ctx context.Context, id string) (core.Company, error) {
	var c core.Company
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name FROM companies WHERE id = ?`, id).Scan(&c.ID, &c.Name)
	if err != nil {
		return core.Company{}, notFound(err)
	}
	return c, nil
}

func (r *SQLiteRepository) ListCompanies(ctx context.Context) ([]core.Company, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM companies ORDER BY rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]core.Company, 0)
	for rows.Next() {
		var c core.Company
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) CreateUser(ctx context.Context, u core.User) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, name, email, password_hash, role, company_id, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Name, u.Email, u.PasswordHash, string(u.Role), u.CompanyID, string(u.Status))
	return err
}

func scanUser(row interface{ Scan(...any) error }) (core.User, error) {
	var u core.User
	var role, status string
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &role, &u.CompanyID, &status)
	if err != nil {
		return core.User{}, err
	}
	u.Role = core.Role(role)
	u.Status = core.UserStatus(status)
	return u, nil
}

const userColumns = `id, name, email, password_hash, role, company_id, status`

func (r *SQLiteRepository) GetUser(ctx context.Context, id string) (core.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if err != nil {
		return core.User{}, notFound(err)
	}
	return u, nil
}

func (r *SQLiteRepository) GetUserByEmail(ctx context.Context, email string) (core.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email))
	if err != nil {
		return core.User{}, notFound(err)
	}
	return u, nil
}

func (r *SQLiteRepository) UpdateUser(ctx context.Context, u core.User) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET name = ?, email = ?, password_hash = ?, role = ?, company_id = ?, status = ?
		 WHERE id = ?`,
		u.Name, u.Email, u.PasswordHash, string(u.Role), u.CompanyID, string(u.Status), u.ID)
	if err != nil {
		return err
	}
	return mustAffect(res)
}

func (r *SQLiteRepository) listUsers(ctx context.Context, query string, args ...any) ([]core.User, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]core.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) ListUsers(ctx context.Context) ([]core.User, error) {
	return r.listUsers(ctx, `SELECT `+userColumns+` FROM users ORDER BY rowid`)
}

func (r *SQLiteRepository) ListUsersByCompany(ctx context.Context, companyID string) ([]core.User, error) {
	return r.listUsers(ctx,
		`SELECT `+userColumns+` FROM users WHERE company_id = ? ORDER BY rowid`, companyID)
}

const transactionColumns = `id, name, amount_cents, date, due_date, category_id, account_id, status, payment_date, company_id`

func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (`+transactionColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Name, t.Amount.Cents, encodeTime(t.Date), encodeTime(t.DueDate),
		t.CategoryID, t.AccountID, string(t.Status), encodeTimePtr(t.PaymentDate), t.CompanyID)
	return err
}

func scanTransaction(row interface{ Scan(...any) error }) (core.Transaction, error) {
	var (
		t             core.Transaction
		date, dueDate string
		status        string
		paymentDate   sql.NullString
	)
	err := row.Scan(&t.ID, &t.Name, &t.Amount.Cents, &date, &dueDate,
		&t.CategoryID, &t.AccountID, &status, &paymentDate, &t.CompanyID)
	if err != nil {
		return core.Transaction{}, err
	}
	if t.Date, err = decodeTime(date); err != nil {
		return core.Transaction{}, err
	}
	if t.DueDate, err = decodeTime(dueDate); err != nil {
		return core.Transaction{}, err
	}
	if t.PaymentDate, err = decodeTimePtr(paymentDate); err != nil {
		return core.Transaction{}, err
	}
	t.Status = core.TransactionStatus(status)
	return t, nil
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	t, err := scanTransaction(r.db.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = ?`, id))
	if err != nil {
		return core.Transaction{}, notFound(err)
	}
	return t, nil
}

func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions
		 SET name = ?, amount_cents = ?, date = ?, due_date = ?, category_id = ?,
		     account_id = ?, status = ?, payment_date = ?
		 WHERE id = ?`,
		t.Name, t.Amount.Cents, encodeTime(t.Date), encodeTime(t.DueDate),
		t.CategoryID, t.AccountID, string(t.Status), encodeTimePtr(t.PaymentDate), t.ID)
	if err != nil {
		return err
	}
	return mustAffect(res)
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return mustAffect(res)
}

func (r *SQLiteRepository) listTransactions(ctx context.Context, query string, args ...any) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]core.Transaction, 0)
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) ListTransactionsByCompany(ctx context.Context, companyID string) ([]core.Transaction, error) {
	return r.listTransactions(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE company_id = ? ORDER BY rowid`, companyID)
}

func (r *SQLiteRepository) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	return r.listTransactions(ctx,
		`SELECT `+transactionColumns+` FROM transactions ORDER BY rowid`)
}

const incomeColumns = `id, source, description, amount_cents, date, company_id`

func (r *SQLiteRepository) CreateIncome(ctx context.Context, i core.Income) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO incomes (`+incomeColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		i.ID, string(i.Source), i.Description, i.Amount.Cents, encodeTime(i.Date), i.CompanyID)
	return err
}

func scanIncome(row interface{ Scan(...any) error }) (core.Income, error) {
	var (
		i            core.Income
		source, date string
	)
	err := row.Scan(&i.ID, &source, &i.Description, &i.Amount.Cents, &date, &i.CompanyID)
	if err != nil {
		return core.Income{}, err
	}
	if i.Date, err = decodeTime(date); err != nil {
		return core.Income{}, err
	}
	i.Source = core.IncomeSource(source)
	return i, nil
}

func (r *SQLiteRepository) GetIncome(ctx context.Context, id string) (core.Income, error) {
	i, err := scanIncome(r.db.QueryRowContext(ctx,
		`SELECT `+incomeColumns+` FROM incomes WHERE id = ?`, id))
	if err != nil {
		return core.Income{}, notFound(err)
	}
	return i, nil
}

func (r *SQLiteRepository) UpdateIncome(ctx context.Context, i core.Income) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE incomes SET source = ?, description = ?, amount_cents = ?, date = ? WHERE id = ?`,
		string(i.Source), i.Description, i.Amount.Cents, encodeTime(i.Date), i.ID)
	if err != nil {
		return err
	}
	return mustAffect(res)
}

func (r *SQLiteRepository) DeleteIncome(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM incomes WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return mustAffect(res)
}

func (r *SQLiteRepository) listIncomes(ctx context.Context, query string, args ...any) ([]core.Income, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]core.Income, 0)
	for rows.Next() {
		i, err := scanIncome(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, i)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) ListIncomesByCompany(ctx context.Context, companyID string) ([]core.Income, error) {
	return r.listIncomes(ctx,
		`SELECT `+incomeColumns+` FROM incomes WHERE company_id = ? ORDER BY rowid`, companyID)
}

func (r *SQLiteRepository) ListIncomes(ctx context.Context) ([]core.Income, error) {
	return r.listIncomes(ctx, `SELECT `+incomeColumns+` FROM incomes ORDER BY rowid`)
}

func (r *SQLiteRepository) CreateCategory(ctx context.Context, c core.Category) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO categories (id, name, budget_cents, color, company_id) VALUES (?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Budget.Cents, c.Color, c.CompanyID)
	return err
}

func (r *SQLiteRepository) GetCategory(ctx context.Context, id string) (core.Category, error) {
	var c core.Category
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, budget_cents, color, company_id FROM categories WHERE id = ?`, id).
		Scan(&c.ID, &c.Name, &c.Budget.Cents, &c.Color, &c.CompanyID)
	if err != nil {
		return core.Category{}, notFound(err)
	}
	return c, nil
}

func (r *SQLiteRepository) UpdateCategory(ctx context.Context, c core.Category) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE categories SET name = ?, budget_cents = ?, color = ? WHERE id = ?`,
		c.Name, c.Budget.Cents, c.Color, c.ID)
	if err != nil {
		return err
	}
	return mustAffect(res)
}

func (r *SQLiteRepository) DeleteCategory(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return mustAffect(res)
}

func (r *SQLiteRepository) ListCategoriesByCompany(ctx context.Context, companyID string) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, budget_cents, color, company_id FROM categories WHERE company_id = ? ORDER BY rowid`,
		companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]core.Category, 0)
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Budget.Cents, &c.Color, &c.CompanyID); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) CreateAccount(ctx context.Context, a core.Account) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO accounts (id, name, company_id) VALUES (?, ?, ?)`,
		a.ID, a.Name, a.CompanyID)
	return err
}

func (r *SQLiteRepository) GetAccount(ctx context.Context, id string) (core.Account, error) {
	var a core.Account
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, company_id FROM accounts WHERE id = ?`, id).
		Scan(&a.ID, &a.Name, &a.CompanyID)
	if err != nil {
		return core.Account{}, notFound(err)
	}
	return a, nil
}

func (r *SQLiteRepository) UpdateAccount(ctx context.Context, a core.Account) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE accounts SET name = ? WHERE id = ?`, a.Name, a.ID)
	if err != nil {
		return err
	}
	return mustAffect(res)
}

func (r *SQLiteRepository) DeleteAccount(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return mustAffect(res)
}

func (r *SQLiteRepository) ListAccountsByCompany(ctx context.Context, companyID string) ([]core.Account, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, company_id FROM accounts WHERE company_id = ? ORDER BY rowid`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]core.Account, 0)
	for rows.Next() {
		var a core.Account
		if err := rows.Scan(&a.ID, &a.Name, &a.CompanyID); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) CreateInvitation(ctx context.Context, i core.Invitation) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO invitations (id, email, role, company_id, status, date) VALUES (?, ?, ?, ?, ?, ?)`,
		i.ID, i.Email, string(i.Role), i.CompanyID, string(i.Status), encodeTime(i.Date))
	return err
}

func scanInvitation(row interface{ Scan(...any) error }) (core.Invitation, error) {
	var (
		i                  core.Invitation
		role, status, date string
	)
	err := row.Scan(&i.ID, &i.Email, &role, &i.CompanyID, &status, &date)
	if err != nil {
		return core.Invitation{}, err
	}
	if i.Date, err = decodeTime(date); err != nil {
		return core.Invitation{}, err
	}
	i.Role = core.Role(role)
	i.Status = core.InvitationStatus(status)
	return i, nil
}

func (r *SQLiteRepository) GetInvitation(ctx context.Context, id string) (core.Invitation, error) {
	i, err := scanInvitation(r.db.QueryRowContext(ctx,
		`SELECT id, email, role, company_id, status, date FROM invitations WHERE id = ?`, id))
	if err != nil {
		return core.Invitation{}, notFound(err)
	}
	return i, nil
}

func (r *SQLiteRepository) UpdateInvitation(ctx context.Context, i core.Invitation) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE invitations SET email = ?, role = ?, status = ?, date = ? WHERE id = ?`,
		i.Email, string(i.Role), string(i.Status), encodeTime(i.Date), i.ID)
	if err != nil {
		return err
	}
	return mustAffect(res)
}

func (r *SQLiteRepository) DeleteInvitation(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM invitations WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return mustAffect(res)
}

func (r *SQLiteRepository) ListInvitationsByCompany(ctx context.Context, companyID string) ([]core.Invitation, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, email, role, company_id, status, date FROM invitations WHERE company_id = ? ORDER BY rowid`,
		companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]core.Invitation, 0)
	for rows.Next() {
		i, err := scanInvitation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, i)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) CreateIntegration(ctx context.Context, i core.Integration) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO integrations (id, name, provider, status, last_sync, company_id) VALUES (?, ?, ?, ?, ?, ?)`,
		i.ID, i.Name, i.Provider, string(i.Status), encodeTimePtr(i.LastSync), i.CompanyID)
	return err
}

func scanIntegration(row interface{ Scan(...any) error }) (core.Integration, error) {
	var (
		i        core.Integration
		status   string
		lastSync sql.NullString
	)
	err := row.Scan(&i.ID, &i.Name, &i.Provider, &status, &lastSync, &i.CompanyID)
	if err != nil {
		return core.Integration{}, err
	}
	if i.LastSync, err = decodeTimePtr(lastSync); err != nil {
		return core.Integration{}, err
	}
	i.Status = core.IntegrationStatus(status)
	return i, nil
}

func (r *SQLiteRepository) GetIntegration(ctx context.Context, id string) (core.Integration, error) {
	i, err := scanIntegration(r.db.QueryRowContext(ctx,
		`SELECT id, name, provider, status, last_sync, company_id FROM integrations WHERE id = ?`, id))
	if err != nil {
		return core.Integration{}, notFound(err)
	}
	return i, nil
}

func (r *SQLiteRepository) UpdateIntegration(ctx context.Context, i core.Integration) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE integrations SET name = ?, provider = ?, status = ?, last_sync = ? WHERE id = ?`,
		i.Name, i.Provider, string(i.Status), encodeTimePtr(i.LastSync), i.ID)
	if err != nil {
		return err
	}
	return mustAffect(res)
}

func (r *SQLiteRepository) DeleteIntegration(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM integrations WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return mustAffect(res)
}

func (r *SQLiteRepository) listIntegrations(ctx context.Context, query string, args ...any) ([]core.Integration, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]core.Integration, 0)
	for rows.Next() {
		i, err := scanIntegration(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, i)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) ListIntegrationsByCompany(ctx context.Context, companyID string) ([]core.Integration, error) {
	return r.listIntegrations(ctx,
		`SELECT id, name, provider, status, last_sync, company_id FROM integrations WHERE company_id = ? ORDER BY rowid`,
		companyID)
}

func (r *SQLiteRepository) ListIntegrationsByStatus(ctx context.Context, status core.IntegrationStatus) ([]core.Integration, error) {
	return r.listIntegrations(ctx,
		`SELECT id, name, provider, status, last_sync, company_id FROM integrations WHERE status = ? ORDER BY rowid`,
		string(status))
}

func (r *SQLiteRepository) AppendActivity(ctx context.Context, entry core.ActivityLog) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO activity_logs (id, user_id, user_name, action, entity, details, timestamp, company_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.UserID, entry.UserName, string(entry.Action), entry.Entity,
		entry.Details, encodeTime(entry.Timestamp), entry.CompanyID)
	return err
}

func (r *SQLiteRepository) listActivities(ctx context.Context, query string, args ...any) ([]core.ActivityLog, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]core.ActivityLog, 0)
	for rows.Next() {
		var (
			entry             core.ActivityLog
			action, timestamp string
		)
		err := rows.Scan(&entry.ID, &entry.UserID, &entry.UserName, &action,
			&entry.Entity, &entry.Details, &timestamp, &entry.CompanyID)
		if err != nil {
			return nil, err
		}
		if entry.Timestamp, err = decodeTime(timestamp); err != nil {
			return nil, err
		}
		entry.Action = core.Action(action)
		out = append(out, entry)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) ListActivities(ctx context.Context) ([]core.ActivityLog, error) {
	return r.listActivities(ctx,
		`SELECT id, user_id, user_name, action, entity, details, timestamp, company_id
		 FROM activity_logs ORDER BY seq DESC`)
}

func (r *SQLiteRepository) ListActivitiesByCompany(ctx context.Context, companyID string) ([]core.ActivityLog, error) {
	return r.listActivities(ctx,
		`SELECT id, user_id, user_name, action, entity, details, timestamp, company_id
		 FROM activity_logs WHERE company_id = ? ORDER BY seq DESC`, companyID)
}
