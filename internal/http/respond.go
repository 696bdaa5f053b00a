package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"caixa/internal/core"
)

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// validationErrs are the domain errors reported as 422.
var validationErrs = []error{
	core.ErrInvalidAmount,
	core.ErrEmptyName,
	core.ErrNameTooLong,
	core.ErrMissingDueDate,
	core.ErrMissingDate,
	core.ErrMissingCategory,
	core.ErrMissingAccount,
	core.ErrMissingColor,
	core.ErrInvalidStatus,
	core.ErrInvalidSource,
	core.ErrInvalidRole,
	core.ErrInvalidProvider,
	core.ErrPaymentDateMissing,
	core.ErrPaymentDateSet,
	core.ErrNoCompany,
}

// writeServiceError maps domain errors onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, core.ErrPermissionDenied):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, core.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, core.ErrEmailExists):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, core.ErrUserLocked):
		writeError(w, http.StatusLocked, err.Error())
	default:
		for _, v := range validationErrs {
			if errors.Is(err, v) {
				writeError(w, http.StatusUnprocessableEntity, err.Error())
				return
			}
		}
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
