package http

import (
	"fmt"
	"net/http"
	"time"

	"caixa/internal/core"
)

// summaryKey is company-scoped so a write by one session refreshes the
// summary every session of that company sees.
func (s *Server) summaryKey(sess core.Session) string {
	return fmt.Sprintf("%s:%d-%02d", sess.LogCompanyID(), sess.CurrentDate.Year(), int(sess.CurrentDate.Month()))
}

func (s *Server) invalidateSummary(sess core.Session) {
	s.summaryCache.Delete(s.summaryKey(sess))
}

// handleDashboard serves the browsing month's aggregation, memoized
// per company and month. Mutating handlers invalidate the entry.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request, sess core.Session) {
	key := s.summaryKey(sess)
	if summary, ok := s.summaryCache.Get(key); ok {
		writeJSON(w, http.StatusOK, viewSummary(summary))
		return
	}

	summary, err := s.finance.MonthSummary(r.Context(), sess)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	s.summaryCache.Set(key, summary)
	writeJSON(w, http.StatusOK, viewSummary(summary))
}

func (s *Server) handleListWidgets(w http.ResponseWriter, _ *http.Request, sess core.Session) {
	widgets, err := s.dashboard.Widgets(sess)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewWidgets(widgets))
}

func (s *Server) handleToggleWidget(w http.ResponseWriter, r *http.Request, sess core.Session) {
	widgets, err := s.dashboard.ToggleWidget(sess, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewWidgets(widgets))
}

func (s *Server) handleReorderWidgets(w http.ResponseWriter, r *http.Request, sess core.Session) {
	var req struct {
		Order []string `json:"order"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	widgets, err := s.dashboard.ReorderWidgets(sess, req.Order)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewWidgets(widgets))
}

// handleSetCurrentDate moves the session's browsing month, which
// changes what the month-filtered lists return.
func (s *Server) handleSetCurrentDate(w http.ResponseWriter, r *http.Request, sess core.Session) {
	var req struct {
		Date string `json:"date"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date")
		return
	}

	if !s.sessions.SetCurrentDate(sess.Token, date) {
		writeError(w, http.StatusUnauthorized, "invalid or expired session")
		return
	}
	writeJSON(w, http.StatusOK, struct {
		CurrentDate string `json:"currentDate"`
	}{date.Format(time.RFC3339)})
}
