package http

import (
	"net/http"

	"caixa/internal/core"
)

func (s *Server) handleListIntegrations(w http.ResponseWriter, r *http.Request, sess core.Session) {
	integrations, err := s.integrations.List(r.Context(), sess)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	out := make([]integrationView, len(integrations))
	for i, in := range integrations {
		out[i] = viewIntegration(in)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleConnectIntegration(w http.ResponseWriter, r *http.Request, sess core.Session) {
	var req struct {
		Provider string `json:"provider"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	integration, err := s.integrations.Connect(r.Context(), sess, req.Provider)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, viewIntegration(integration))
}

func (s *Server) handleDisconnectIntegration(w http.ResponseWriter, r *http.Request, sess core.Session) {
	if err := s.integrations.Disconnect(r.Context(), sess, r.PathValue("id")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleSyncIntegration kicks off an async sync. The 202 response
// carries the integration in its syncing state; the import lands later.
func (s *Server) handleSyncIntegration(w http.ResponseWriter, r *http.Request, sess core.Session) {
	integration, err := s.integrations.Sync(r.Context(), sess, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	s.invalidateSummary(sess)
	writeJSON(w, http.StatusAccepted, viewIntegration(integration))
}
