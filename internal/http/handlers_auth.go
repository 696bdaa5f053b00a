package http

import (
	"net/http"

	"caixa/internal/core"
	applog "caixa/internal/log"
	"caixa/internal/services"
)

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, sess, err := s.identity.Login(r.Context(), sanitizeInput(req.Email), req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewSession(sess, user))
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string `json:"name"`
		Email       string `json:"email"`
		Password    string `json:"password"`
		CompanyName string `json:"companyName"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, sess, err := s.identity.Register(r.Context(), services.RegisterInput{
		Name:        sanitizeInput(req.Name),
		Email:       sanitizeInput(req.Email),
		Password:    req.Password,
		CompanyName: sanitizeInput(req.CompanyName),
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, viewSession(sess, user))
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request, sess core.Session) {
	s.identity.Logout(sess.Token)
	s.dashboard.Forget(sess.Token)
	s.logger.InfoContext(r.Context(), "User logged out", applog.FieldUserID, sess.UserID)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAcceptInvitation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, sess, err := s.identity.AcceptInvitation(r.Context(), r.PathValue("id"), sanitizeInput(req.Name), req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, viewSession(sess, user))
}
