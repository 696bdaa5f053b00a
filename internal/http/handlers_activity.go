package http

import (
	"net/http"

	"caixa/internal/core"
	"caixa/internal/services"
)

func (s *Server) handleListActivity(w http.ResponseWriter, r *http.Request, sess core.Session) {
	q := r.URL.Query()
	filter := services.ActivityFilter{
		Action: core.Action(q.Get("action")),
		Entity: q.Get("entity"),
		Search: q.Get("search"),
	}

	entries, err := s.activity.List(r.Context(), sess, filter)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	out := make([]activityView, len(entries))
	for i, e := range entries {
		out[i] = viewActivity(e)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleExportActivity(w http.ResponseWriter, r *http.Request, sess core.Session) {
	filename, data, err := s.activity.ExportCSV(r.Context(), sess)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
