package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"caixa/internal/auth"
	"caixa/internal/core"
	applog "caixa/internal/log"
)

// IdentityService handles authentication, users, companies, and
// invitations. Login checks the locked flag: a locked user cannot
// authenticate.
type IdentityService struct {
	users       UserRepository
	companies   CompanyRepository
	invitations InvitationRepository
	activity    *ActivityService
	sessions    *auth.SessionManager
	logger      *applog.Logger

	// resetLinkDelay simulates email dispatch latency.
	resetLinkDelay time.Duration

	// Lifecycle for in-flight simulated dispatch tasks.
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func NewIdentityService(repo Repository, activity *ActivityService, sessions *auth.SessionManager, resetLinkDelay time.Duration, logger *applog.Logger) *IdentityService {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &IdentityService{
		users:          repo,
		companies:      repo,
		invitations:    repo,
		activity:       activity,
		sessions:       sessions,
		logger:         logger.WithComponent(applog.ComponentIdentity),
		resetLinkDelay: resetLinkDelay,
		stopCh:         make(chan struct{}),
	}
}

// Close cancels pending dispatch tasks and waits for them to finish.
func (s *IdentityService) Close() {
	s.stopOnce.Do(func() { close(s.stopCh) })
	s.wg.Wait()
}

// Login authenticates by email and password and issues a session.
// Credential mismatch and unknown email are indistinguishable to the
// caller.
func (s *IdentityService) Login(ctx context.Context, email, password string) (core.User, core.Session, error) {
	u, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return core.User{}, core.Session{}, core.ErrInvalidCredentials
		}
		return core.User{}, core.Session{}, fmt.Errorf("lookup user: %w", err)
	}
	if err := auth.VerifyPassword(u.PasswordHash, password); err != nil {
		return core.User{}, core.Session{}, core.ErrInvalidCredentials
	}
	if u.Status == core.UserLocked {
		return core.User{}, core.Session{}, core.ErrUserLocked
	}

	sess := s.sessions.Issue(u)
	s.logger.InfoContext(ctx, "User logged in",
		applog.FieldUserID, u.ID,
		applog.FieldRole, string(u.Role),
		applog.FieldCompanyID, sess.LogCompanyID())
	return u.Sanitized(), sess, nil
}

// RegisterInput carries the self-service registration fields.
type RegisterInput struct {
	Name        string
	Email       string
	Password    string
	CompanyName string
}

// Register creates a new company plus its first admin user and
// immediately establishes a session. Email uniqueness is a
// case-sensitive exact match.
func (s *IdentityService) Register(ctx context.Context, in RegisterInput) (core.User, core.Session, error) {
	if _, err := s.users.GetUserByEmail(ctx, in.Email); err == nil {
		return core.User{}, core.Session{}, core.ErrEmailExists
	} else if !errors.Is(err, core.ErrNotFound) {
		return core.User{}, core.Session{}, fmt.Errorf("lookup user: %w", err)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return core.User{}, core.Session{}, fmt.Errorf("hash password: %w", err)
	}

	company := core.Company{ID: uuid.NewString(), Name: in.CompanyName}
	if err := s.companies.CreateCompany(ctx, company); err != nil {
		return core.User{}, core.Session{}, fmt.Errorf("create company: %w", err)
	}

	u := core.User{
		ID:           uuid.NewString(),
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         core.RoleAdmin,
		CompanyID:    company.ID,
		Status:       core.UserActive,
	}
	if err := s.users.CreateUser(ctx, u); err != nil {
		return core.User{}, core.Session{}, fmt.Errorf("create user: %w", err)
	}

	sess := s.sessions.Issue(u)
	if err := s.activity.Record(ctx, sess, core.ActionCreate, core.EntityUser,
		fmt.Sprintf("Registered company %q", company.Name)); err != nil {
		return core.User{}, core.Session{}, err
	}

	s.logger.InfoContext(ctx, "Company registered",
		applog.FieldUserID, u.ID,
		applog.FieldCompanyID, company.ID)
	return u.Sanitized(), sess, nil
}

// Logout revokes the session token. Unknown tokens are a no-op.
func (s *IdentityService) Logout(token string) {
	s.sessions.Revoke(token)
}

// ListUsers requires admin. Master sees every user, everyone else only
// their own company's, password hashes stripped either way.
func (s *IdentityService) ListUsers(ctx context.Context, sess core.Session) ([]core.User, error) {
	if err := sess.Check(core.PermAdmin); err != nil {
		return nil, err
	}

	var (
		users []core.User
		err   error
	)
	if sess.IsMaster() {
		users, err = s.users.ListUsers(ctx)
	} else {
		users, err = s.users.ListUsersByCompany(ctx, sess.CompanyID)
	}
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	for i := range users {
		users[i] = users[i].Sanitized()
	}
	return users, nil
}

// ListCompanies returns every company to master and only the session's
// own company to anyone else.
func (s *IdentityService) ListCompanies(ctx context.Context, sess core.Session) ([]core.Company, error) {
	if err := sess.Check(core.PermView); err != nil {
		return nil, err
	}
	if sess.IsMaster() {
		return s.companies.ListCompanies(ctx)
	}
	if sess.CompanyID == "" {
		return []core.Company{}, nil
	}
	c, err := s.companies.GetCompany(ctx, sess.CompanyID)
	if err != nil {
		return nil, err
	}
	return []core.Company{c}, nil
}

// SendInvitation creates a pending invitation to join the session's
// company at the given role. Admin only, company context required.
func (s *IdentityService) SendInvitation(ctx context.Context, sess core.Session, email string, role core.Role) (core.Invitation, error) {
	if err := sess.Check(core.PermAdmin); err != nil {
		return core.Invitation{}, err
	}
	if err := requireCompany(sess); err != nil {
		return core.Invitation{}, err
	}
	if !role.Valid() || role == core.RoleMaster {
		return core.Invitation{}, core.ErrInvalidRole
	}

	inv := core.Invitation{
		ID:        uuid.NewString(),
		Email:     email,
		Role:      role,
		CompanyID: sess.CompanyID,
		Status:    core.InvitePending,
		Date:      time.Now(),
	}
	if err := s.invitations.CreateInvitation(ctx, inv); err != nil {
		return core.Invitation{}, fmt.Errorf("create invitation: %w", err)
	}
	if err := s.activity.Record(ctx, sess, core.ActionInvite, core.EntityInvitation,
		fmt.Sprintf("Invited %s as %s", email, role)); err != nil {
		return core.Invitation{}, err
	}
	return inv, nil
}

func (s *IdentityService) DeleteInvitation(ctx context.Context, sess core.Session, id string) error {
	if err := sess.Check(core.PermAdmin); err != nil {
		return err
	}

	inv, err := s.invitations.GetInvitation(ctx, id)
	if err != nil {
		return err
	}
	if err := scoped(sess, inv.CompanyID); err != nil {
		return err
	}

	if err := s.invitations.DeleteInvitation(ctx, id); err != nil {
		return fmt.Errorf("delete invitation: %w", err)
	}
	return s.activity.Record(ctx, sess, core.ActionDelete, core.EntityInvitation,
		fmt.Sprintf("Revoked invitation for %s", inv.Email))
}

func (s *IdentityService) ListInvitations(ctx context.Context, sess core.Session) ([]core.Invitation, error) {
	if err := sess.Check(core.PermAdmin); err != nil {
		return nil, err
	}
	if sess.CompanyID == "" {
		return []core.Invitation{}, nil
	}
	return s.invitations.ListInvitationsByCompany(ctx, sess.CompanyID)
}

// AcceptInvitation completes a pending invitation: the invitee picks a
// name and password, gets an active user at the invited role, and is
// logged in. No prior session is required.
func (s *IdentityService) AcceptInvitation(ctx context.Context, id, name, password string) (core.User, core.Session, error) {
	inv, err := s.invitations.GetInvitation(ctx, id)
	if err != nil {
		return core.User{}, core.Session{}, err
	}
	if inv.Status != core.InvitePending {
		return core.User{}, core.Session{}, core.ErrNotFound
	}
	if _, err := s.users.GetUserByEmail(ctx, inv.Email); err == nil {
		return core.User{}, core.Session{}, core.ErrEmailExists
	} else if !errors.Is(err, core.ErrNotFound) {
		return core.User{}, core.Session{}, fmt.Errorf("lookup user: %w", err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return core.User{}, core.Session{}, fmt.Errorf("hash password: %w", err)
	}

	u := core.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        inv.Email,
		PasswordHash: hash,
		Role:         inv.Role,
		CompanyID:    inv.CompanyID,
		Status:       core.UserActive,
	}
	if err := s.users.CreateUser(ctx, u); err != nil {
		return core.User{}, core.Session{}, fmt.Errorf("create user: %w", err)
	}

	inv.Status = core.InviteAccepted
	if err := s.invitations.UpdateInvitation(ctx, inv); err != nil {
		return core.User{}, core.Session{}, fmt.Errorf("update invitation: %w", err)
	}

	sess := s.sessions.Issue(u)
	if err := s.activity.Record(ctx, sess, core.ActionCreate, core.EntityUser,
		fmt.Sprintf("Accepted invitation as %s", u.Role)); err != nil {
		return core.User{}, core.Session{}, err
	}
	return u.Sanitized(), sess, nil
}

// UpdateUserStatus activates or locks a user. Admin only; non-master
// admins can only touch users of their own company.
func (s *IdentityService) UpdateUserStatus(ctx context.Context, sess core.Session, userID string, status core.UserStatus) (core.User, error) {
	if err := sess.Check(core.PermAdmin); err != nil {
		return core.User{}, err
	}
	if status != core.UserActive && status != core.UserLocked {
		return core.User{}, core.ErrInvalidStatus
	}

	u, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return core.User{}, err
	}
	if err := scoped(sess, u.CompanyID); err != nil {
		return core.User{}, err
	}

	u.Status = status
	if err := s.users.UpdateUser(ctx, u); err != nil {
		return core.User{}, fmt.Errorf("update user: %w", err)
	}
	if err := s.activity.Record(ctx, sess, core.ActionUpdate, core.EntityUser,
		fmt.Sprintf("Set user %q to %s", u.Name, status)); err != nil {
		return core.User{}, err
	}
	return u.Sanitized(), nil
}

// ResetUserPassword generates a temporary credential, writes its hash
// back onto the user record, and returns the plaintext exactly once so
// it is actually enforceable at the next login.
func (s *IdentityService) ResetUserPassword(ctx context.Context, sess core.Session, userID string) (string, error) {
	if err := sess.Check(core.PermAdmin); err != nil {
		return "", err
	}

	u, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return "", err
	}
	if err := scoped(sess, u.CompanyID); err != nil {
		return "", err
	}

	tempPassword, err := auth.GenerateTempPassword(12)
	if err != nil {
		return "", fmt.Errorf("generate password: %w", err)
	}
	hash, err := auth.HashPassword(tempPassword)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	u.PasswordHash = hash
	if err := s.users.UpdateUser(ctx, u); err != nil {
		return "", fmt.Errorf("update user: %w", err)
	}
	if err := s.activity.Record(ctx, sess, core.ActionUpdate, core.EntityUser,
		fmt.Sprintf("Reset password for %q", u.Name)); err != nil {
		return "", err
	}
	return tempPassword, nil
}

// SendPasswordResetLink simulates asynchronous email dispatch. The
// task is bound to the service lifetime and re-checks that the user
// still exists before completing, so a user deleted in the meantime is
// never acted on.
func (s *IdentityService) SendPasswordResetLink(ctx context.Context, sess core.Session, email string) error {
	if err := sess.Check(core.PermAdmin); err != nil {
		return err
	}
	u, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return err
	}
	if err := scoped(sess, u.CompanyID); err != nil {
		return err
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		timer := time.NewTimer(s.resetLinkDelay)
		defer timer.Stop()
		select {
		case <-s.stopCh:
			return
		case <-timer.C:
		}

		bg := context.Background()
		if _, err := s.users.GetUserByEmail(bg, email); err != nil {
			s.logger.Warn("Reset link dropped, user no longer exists",
				applog.FieldUserEmail, email)
			return
		}
		s.logger.Info("Password reset link dispatched",
			applog.FieldUserEmail, email)
	}()

	return nil
}
