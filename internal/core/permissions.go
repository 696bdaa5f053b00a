package core

import "time"

// Role determines the permission level of a user inside (or, for
// master, across) companies.
type Role string

const (
	RoleMaster Role = "master"
	RoleAdmin  Role = "admin"
	RoleEditor Role = "editor"
	RoleViewer Role = "viewer"
)

// PermissionAction is the level a caller needs for an operation.
type PermissionAction string

const (
	PermView  PermissionAction = "view"
	PermEdit  PermissionAction = "edit"
	PermAdmin PermissionAction = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleMaster, RoleAdmin, RoleEditor, RoleViewer:
		return true
	default:
		return false
	}
}

// Allows implements the permission matrix:
//
//	role    view  edit  admin
//	master  yes   yes   yes
//	admin   yes   yes   yes
//	editor  yes   yes   no
//	viewer  yes   no    no
//
// An invalid role (including the zero value, "no session") denies
// everything.
func (r Role) Allows(action PermissionAction) bool {
	switch r {
	case RoleMaster, RoleAdmin:
		return action == PermView || action == PermEdit || action == PermAdmin
	case RoleEditor:
		return action == PermView || action == PermEdit
	case RoleViewer:
		return action == PermView
	default:
		return false
	}
}

// Session is the explicit session value passed into every query and
// command, replacing the original's ambient state.
type Session struct {
	Token     string
	UserID    string
	UserName  string
	Role      Role
	CompanyID string // empty for an unscoped master session

	// CurrentDate is the month the session is browsing. List reads
	// filter on calendar-month equality against it.
	CurrentDate time.Time
}

// Check returns ErrPermissionDenied unless the session's role allows
// the action.
func (s Session) Check(action PermissionAction) error {
	if !s.Role.Allows(action) {
		return ErrPermissionDenied
	}
	return nil
}

// LogCompanyID is the company stamped on audit entries: the actor's
// company, or the master sentinel when there is none.
func (s Session) LogCompanyID() string {
	if s.CompanyID == "" {
		return MasterCompanyID
	}
	return s.CompanyID
}

func (s Session) IsMaster() bool {
	return s.Role == RoleMaster
}
