package http

import (
	"net/http"

	"caixa/internal/core"
)

// handleMasterOverview aggregates raw totals across every company. The
// unfiltered finance reads are master-gated, so anyone else gets a 403.
func (s *Server) handleMasterOverview(w http.ResponseWriter, r *http.Request, sess core.Session) {
	transactions, err := s.finance.AllTransactions(r.Context(), sess)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	incomes, err := s.finance.AllIncomes(r.Context(), sess)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	companies, err := s.identity.ListCompanies(r.Context(), sess)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, viewMasterOverview(companies, transactions, incomes))
}
