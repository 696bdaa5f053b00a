package http

import (
	"net/http"

	"caixa/internal/core"
)

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request, sess core.Session) {
	users, err := s.identity.ListUsers(r.Context(), sess)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	out := make([]userView, len(users))
	for i, u := range users {
		out[i] = viewUser(u)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleUpdateUserStatus(w http.ResponseWriter, r *http.Request, sess core.Session) {
	var req struct {
		Status string `json:"status"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	u, err := s.identity.UpdateUserStatus(r.Context(), sess, r.PathValue("id"), core.UserStatus(req.Status))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewUser(u))
}

func (s *Server) handleResetUserPassword(w http.ResponseWriter, r *http.Request, sess core.Session) {
	tempPassword, err := s.identity.ResetUserPassword(r.Context(), sess, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		TemporaryPassword string `json:"temporaryPassword"`
	}{tempPassword})
}

func (s *Server) handleSendResetLink(w http.ResponseWriter, r *http.Request, sess core.Session) {
	var req struct {
		Email string `json:"email"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.identity.SendPasswordResetLink(r.Context(), sess, sanitizeInput(req.Email)); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handleListCompanies(w http.ResponseWriter, r *http.Request, sess core.Session) {
	companies, err := s.identity.ListCompanies(r.Context(), sess)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	out := make([]companyView, len(companies))
	for i, c := range companies {
		out[i] = viewCompany(c)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleListInvitations(w http.ResponseWriter, r *http.Request, sess core.Session) {
	invitations, err := s.identity.ListInvitations(r.Context(), sess)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	out := make([]invitationView, len(invitations))
	for i, inv := range invitations {
		out[i] = viewInvitation(inv)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleSendInvitation(w http.ResponseWriter, r *http.Request, sess core.Session) {
	var req struct {
		Email string `json:"email"`
		Role  string `json:"role"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	inv, err := s.identity.SendInvitation(r.Context(), sess, sanitizeInput(req.Email), core.Role(req.Role))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, viewInvitation(inv))
}

func (s *Server) handleDeleteInvitation(w http.ResponseWriter, r *http.Request, sess core.Session) {
	if err := s.identity.DeleteInvitation(r.Context(), sess, r.PathValue("id")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
