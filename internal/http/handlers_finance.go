package http

import (
	"encoding/json"
	"net/http"

	"caixa/internal/core"
	"caixa/internal/services"
)

type transactionRequest struct {
	Name        string      `json:"name"`
	Amount      json.Number `json:"amount"`
	DueDate     string      `json:"dueDate"`
	CategoryID  string      `json:"categoryId"`
	AccountID   string      `json:"accountId"`
	Status      string      `json:"status"`
	PaymentDate string      `json:"paymentDate,omitempty"`
}

func (req transactionRequest) toInput() (services.TransactionInput, error) {
	amount, err := parseMoney(req.Amount)
	if err != nil {
		return services.TransactionInput{}, err
	}
	dueDate, err := parseDate(req.DueDate)
	if err != nil {
		return services.TransactionInput{}, core.ErrMissingDueDate
	}
	paymentDate, err := parseDatePtr(req.PaymentDate)
	if err != nil {
		return services.TransactionInput{}, err
	}
	return services.TransactionInput{
		Name:        sanitizeInput(req.Name),
		Amount:      amount,
		DueDate:     dueDate,
		CategoryID:  req.CategoryID,
		AccountID:   req.AccountID,
		Status:      core.TransactionStatus(req.Status),
		PaymentDate: paymentDate,
	}, nil
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request, sess core.Session) {
	transactions, err := s.finance.ListTransactions(r.Context(), sess)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewTransactions(transactions))
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request, sess core.Session) {
	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	in, err := req.toInput()
	if err != nil {
		writeServiceError(w, err)
		return
	}

	t, warning, err := s.finance.CreateTransaction(r.Context(), sess, in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	s.invalidateSummary(sess)
	writeJSON(w, http.StatusCreated, struct {
		Transaction transactionView    `json:"transaction"`
		Warning     *budgetWarningView `json:"budgetWarning"`
	}{viewTransaction(t), viewBudgetWarning(warning)})
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request, sess core.Session) {
	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	in, err := req.toInput()
	if err != nil {
		writeServiceError(w, err)
		return
	}

	t, warning, err := s.finance.UpdateTransaction(r.Context(), sess, r.PathValue("id"), in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	s.invalidateSummary(sess)
	writeJSON(w, http.StatusOK, struct {
		Transaction transactionView    `json:"transaction"`
		Warning     *budgetWarningView `json:"budgetWarning"`
	}{viewTransaction(t), viewBudgetWarning(warning)})
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request, sess core.Session) {
	if err := s.finance.DeleteTransaction(r.Context(), sess, r.PathValue("id")); err != nil {
		writeServiceError(w, err)
		return
	}
	s.invalidateSummary(sess)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleToggleTransaction(w http.ResponseWriter, r *http.Request, sess core.Session) {
	t, err := s.finance.ToggleTransactionStatus(r.Context(), sess, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	s.invalidateSummary(sess)
	writeJSON(w, http.StatusOK, viewTransaction(t))
}

type incomeRequest struct {
	Source      string      `json:"source"`
	Description string      `json:"description"`
	Amount      json.Number `json:"amount"`
	Date        string      `json:"date"`
}

func (req incomeRequest) toInput() (services.IncomeInput, error) {
	amount, err := parseMoney(req.Amount)
	if err != nil {
		return services.IncomeInput{}, err
	}
	date, err := parseDate(req.Date)
	if err != nil {
		return services.IncomeInput{}, core.ErrMissingDate
	}
	return services.IncomeInput{
		Source:      core.IncomeSource(req.Source),
		Description: sanitizeInput(req.Description),
		Amount:      amount,
		Date:        date,
	}, nil
}

func (s *Server) handleListIncomes(w http.ResponseWriter, r *http.Request, sess core.Session) {
	incomes, err := s.finance.ListIncomes(r.Context(), sess)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewIncomes(incomes))
}

func (s *Server) handleCreateIncome(w http.ResponseWriter, r *http.Request, sess core.Session) {
	var req incomeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	in, err := req.toInput()
	if err != nil {
		writeServiceError(w, err)
		return
	}

	income, err := s.finance.CreateIncome(r.Context(), sess, in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	s.invalidateSummary(sess)
	writeJSON(w, http.StatusCreated, viewIncome(income))
}

func (s *Server) handleUpdateIncome(w http.ResponseWriter, r *http.Request, sess core.Session) {
	var req incomeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	in, err := req.toInput()
	if err != nil {
		writeServiceError(w, err)
		return
	}

	income, err := s.finance.UpdateIncome(r.Context(), sess, r.PathValue("id"), in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	s.invalidateSummary(sess)
	writeJSON(w, http.StatusOK, viewIncome(income))
}

func (s *Server) handleDeleteIncome(w http.ResponseWriter, r *http.Request, sess core.Session) {
	if err := s.finance.DeleteIncome(r.Context(), sess, r.PathValue("id")); err != nil {
		writeServiceError(w, err)
		return
	}
	s.invalidateSummary(sess)
	w.WriteHeader(http.StatusNoContent)
}

type categoryRequest struct {
	Name   string      `json:"name"`
	Budget json.Number `json:"budget"`
	Color  string      `json:"color"`
}

func (req categoryRequest) toInput() (services.CategoryInput, error) {
	budget, err := parseBudget(req.Budget)
	if err != nil {
		return services.CategoryInput{}, err
	}
	return services.CategoryInput{
		Name:   sanitizeInput(req.Name),
		Budget: budget,
		Color:  sanitizeInput(req.Color),
	}, nil
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request, sess core.Session) {
	categories, err := s.finance.ListCategories(r.Context(), sess)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	out := make([]categoryView, len(categories))
	for i, c := range categories {
		out[i] = viewCategory(c)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request, sess core.Session) {
	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	in, err := req.toInput()
	if err != nil {
		writeServiceError(w, err)
		return
	}

	c, err := s.finance.CreateCategory(r.Context(), sess, in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	s.invalidateSummary(sess)
	writeJSON(w, http.StatusCreated, viewCategory(c))
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request, sess core.Session) {
	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	in, err := req.toInput()
	if err != nil {
		writeServiceError(w, err)
		return
	}

	c, err := s.finance.UpdateCategory(r.Context(), sess, r.PathValue("id"), in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	s.invalidateSummary(sess)
	writeJSON(w, http.StatusOK, viewCategory(c))
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request, sess core.Session) {
	if err := s.finance.DeleteCategory(r.Context(), sess, r.PathValue("id")); err != nil {
		writeServiceError(w, err)
		return
	}
	s.invalidateSummary(sess)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request, sess core.Session) {
	accounts, err := s.finance.ListAccounts(r.Context(), sess)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	out := make([]accountView, len(accounts))
	for i, a := range accounts {
		out[i] = viewAccount(a)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request, sess core.Session) {
	var req struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	a, err := s.finance.CreateAccount(r.Context(), sess, sanitizeInput(req.Name))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, viewAccount(a))
}

func (s *Server) handleUpdateAccount(w http.ResponseWriter, r *http.Request, sess core.Session) {
	var req struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	a, err := s.finance.UpdateAccount(r.Context(), sess, r.PathValue("id"), sanitizeInput(req.Name))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewAccount(a))
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request, sess core.Session) {
	if err := s.finance.DeleteAccount(r.Context(), sess, r.PathValue("id")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
