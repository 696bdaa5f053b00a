package core

import "errors"

// Command errors. Gated operations return ErrPermissionDenied instead
// of silently dropping the write, so callers can tell "denied" from
// "no-op".
var (
	ErrPermissionDenied   = errors.New("permission denied")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailExists        = errors.New("email already registered")
	ErrUserLocked         = errors.New("user is locked")
	ErrNotFound           = errors.New("not found")
	ErrNoCompany          = errors.New("no company in session")
)

// Validation errors.
var (
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrEmptyName          = errors.New("empty name")
	ErrNameTooLong        = errors.New("name too long (max 200 characters)")
	ErrMissingDueDate     = errors.New("missing due date")
	ErrMissingDate        = errors.New("missing date")
	ErrMissingCategory    = errors.New("missing category")
	ErrMissingAccount     = errors.New("missing account")
	ErrMissingColor       = errors.New("missing color")
	ErrInvalidStatus      = errors.New("invalid status")
	ErrInvalidSource      = errors.New("invalid income source")
	ErrInvalidRole        = errors.New("invalid role")
	ErrInvalidProvider    = errors.New("invalid provider")
	ErrPaymentDateMissing = errors.New("paid transaction requires payment date")
	ErrPaymentDateSet     = errors.New("pending transaction cannot have payment date")
)
