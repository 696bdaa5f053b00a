package services

import (
	"context"
	"testing"
	"time"

	"caixa/internal/auth"
	"caixa/internal/core"
	"caixa/internal/memory"
)

func identityFixture(t *testing.T) (*memory.Store, *IdentityService, *ActivityService, *auth.SessionManager) {
	t.Helper()
	store := memory.New()
	ctx := context.Background()

	if err := store.CreateCompany(ctx, core.Company{ID: "1", Name: "Empresa Demo"}); err != nil {
		t.Fatal(err)
	}

	hash, err := auth.HashPassword("password")
	if err != nil {
		t.Fatal(err)
	}
	users := []core.User{
		{ID: "u-admin", Name: "Admin Demo", Email: "admin@demo.com", PasswordHash: hash, Role: core.RoleAdmin, CompanyID: "1", Status: core.UserActive},
		{ID: "u-editor", Name: "Editor Demo", Email: "user@demo.com", PasswordHash: hash, Role: core.RoleEditor, CompanyID: "1", Status: core.UserActive},
		{ID: "u-locked", Name: "Locked Demo", Email: "locked@demo.com", PasswordHash: hash, Role: core.RoleEditor, CompanyID: "1", Status: core.UserLocked},
	}
	for _, u := range users {
		if err := store.CreateUser(ctx, u); err != nil {
			t.Fatal(err)
		}
	}

	sessions := auth.NewSessionManager(time.Hour)
	activity := NewActivityService(store, nil)
	identity := NewIdentityService(store, activity, sessions, 0, nil)
	t.Cleanup(identity.Close)
	return store, identity, activity, sessions
}

func TestLogin(t *testing.T) {
	_, identity, _, _ := identityFixture(t)
	ctx := context.Background()

	u, sess, err := identity.Login(ctx, "admin@demo.com", "password")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if u.PasswordHash != "" {
		t.Error("login result should not expose the password hash")
	}
	if sess.Token == "" || sess.Role != core.RoleAdmin || sess.CompanyID != "1" {
		t.Errorf("unexpected session: %+v", sess)
	}
}

func TestLoginFailures(t *testing.T) {
	_, identity, _, _ := identityFixture(t)
	ctx := context.Background()

	if _, _, err := identity.Login(ctx, "admin@demo.com", "wrong"); err != core.ErrInvalidCredentials {
		t.Errorf("wrong password should be ErrInvalidCredentials, got %v", err)
	}
	// Unknown email is indistinguishable from a bad password.
	if _, _, err := identity.Login(ctx, "nobody@demo.com", "password"); err != core.ErrInvalidCredentials {
		t.Errorf("unknown email should be ErrInvalidCredentials, got %v", err)
	}
	if _, _, err := identity.Login(ctx, "locked@demo.com", "password"); err != core.ErrUserLocked {
		t.Errorf("locked user should be ErrUserLocked, got %v", err)
	}
}

func TestRegister(t *testing.T) {
	_, identity, _, _ := identityFixture(t)
	ctx := context.Background()

	u, sess, err := identity.Register(ctx, RegisterInput{
		Name:        "Nova Fundadora",
		Email:       "nova@empresa.com",
		Password:    "s3nh4forte",
		CompanyName: "Empresa Nova",
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if u.Role != core.RoleAdmin {
		t.Errorf("the founding user should be admin, got %q", u.Role)
	}
	if u.CompanyID == "" || sess.CompanyID != u.CompanyID {
		t.Errorf("registration should create a company and scope the session to it, got %+v", sess)
	}

	// The new credentials work immediately.
	if _, _, err := identity.Login(ctx, "nova@empresa.com", "s3nh4forte"); err != nil {
		t.Errorf("login after register failed: %v", err)
	}

	// Duplicate email is rejected.
	_, _, err = identity.Register(ctx, RegisterInput{
		Name: "Duplicada", Email: "admin@demo.com", Password: "x", CompanyName: "Y",
	})
	if err != core.ErrEmailExists {
		t.Errorf("expected ErrEmailExists, got %v", err)
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	_, identity, _, sessions := identityFixture(t)
	ctx := context.Background()

	_, sess, err := identity.Login(ctx, "admin@demo.com", "password")
	if err != nil {
		t.Fatal(err)
	}
	identity.Logout(sess.Token)
	if _, ok := sessions.Get(sess.Token); ok {
		t.Error("token should not resolve after logout")
	}
}

func TestListUsersRequiresAdmin(t *testing.T) {
	_, identity, _, _ := identityFixture(t)
	ctx := context.Background()

	if _, err := identity.ListUsers(ctx, editorSession()); err != core.ErrPermissionDenied {
		t.Errorf("editor should not list users, got %v", err)
	}

	users, err := identity.ListUsers(ctx, adminSession())
	if err != nil {
		t.Fatal(err)
	}
	if len(users) != 3 {
		t.Errorf("expected 3 company users, got %d", len(users))
	}
	for _, u := range users {
		if u.PasswordHash != "" {
			t.Error("listed users must have the password hash stripped")
		}
	}
}

func TestUpdateUserStatus(t *testing.T) {
	_, identity, _, _ := identityFixture(t)
	ctx := context.Background()

	u, err := identity.UpdateUserStatus(ctx, adminSession(), "u-editor", core.UserLocked)
	if err != nil {
		t.Fatal(err)
	}
	if u.Status != core.UserLocked {
		t.Errorf("expected locked, got %q", u.Status)
	}

	// The lock takes effect at the next login attempt.
	if _, _, err := identity.Login(ctx, "user@demo.com", "password"); err != core.ErrUserLocked {
		t.Errorf("expected ErrUserLocked after lock, got %v", err)
	}

	if _, err := identity.UpdateUserStatus(ctx, adminSession(), "u-editor", "pending"); err != core.ErrInvalidStatus {
		t.Errorf("only active and locked are settable, got %v", err)
	}
	if _, err := identity.UpdateUserStatus(ctx, editorSession(), "u-editor", core.UserActive); err != core.ErrPermissionDenied {
		t.Errorf("editor cannot change statuses, got %v", err)
	}
}

func TestResetUserPassword(t *testing.T) {
	_, identity, _, _ := identityFixture(t)
	ctx := context.Background()

	temp, err := identity.ResetUserPassword(ctx, adminSession(), "u-editor")
	if err != nil {
		t.Fatal(err)
	}
	if temp == "" {
		t.Fatal("expected a temporary password")
	}

	// The old password stops working, the temporary one works.
	if _, _, err := identity.Login(ctx, "user@demo.com", "password"); err != core.ErrInvalidCredentials {
		t.Errorf("old password should be rejected, got %v", err)
	}
	if _, _, err := identity.Login(ctx, "user@demo.com", temp); err != nil {
		t.Errorf("temporary password rejected: %v", err)
	}
}

func TestInvitationFlow(t *testing.T) {
	_, identity, _, _ := identityFixture(t)
	ctx := context.Background()
	admin := adminSession()

	inv, err := identity.SendInvitation(ctx, admin, "convidada@demo.com", core.RoleEditor)
	if err != nil {
		t.Fatal(err)
	}
	if inv.Status != core.InvitePending || inv.CompanyID != "1" {
		t.Errorf("unexpected invitation: %+v", inv)
	}

	u, sess, err := identity.AcceptInvitation(ctx, inv.ID, "Convidada", "senha123")
	if err != nil {
		t.Fatalf("AcceptInvitation failed: %v", err)
	}
	if u.Role != core.RoleEditor || u.CompanyID != "1" || u.Status != core.UserActive {
		t.Errorf("accepted user should be active at the invited role, got %+v", u)
	}
	if sess.Token == "" {
		t.Error("acceptance should log the invitee in")
	}

	// Accepting twice fails: the invitation is no longer pending.
	if _, _, err := identity.AcceptInvitation(ctx, inv.ID, "Outra", "senha123"); err != core.ErrNotFound {
		t.Errorf("second acceptance should be ErrNotFound, got %v", err)
	}
}

func TestInvitationValidation(t *testing.T) {
	_, identity, _, _ := identityFixture(t)
	ctx := context.Background()

	if _, err := identity.SendInvitation(ctx, editorSession(), "x@demo.com", core.RoleViewer); err != core.ErrPermissionDenied {
		t.Errorf("editor cannot invite, got %v", err)
	}
	if _, err := identity.SendInvitation(ctx, adminSession(), "x@demo.com", core.RoleMaster); err != core.ErrInvalidRole {
		t.Errorf("master invitations are not allowed, got %v", err)
	}
	if _, err := identity.SendInvitation(ctx, masterSession(), "x@demo.com", core.RoleViewer); err != core.ErrNoCompany {
		t.Errorf("inviting without a company should be ErrNoCompany, got %v", err)
	}
}

func TestDeleteInvitation(t *testing.T) {
	_, identity, _, _ := identityFixture(t)
	ctx := context.Background()
	admin := adminSession()

	inv, err := identity.SendInvitation(ctx, admin, "alguem@demo.com", core.RoleViewer)
	if err != nil {
		t.Fatal(err)
	}
	if err := identity.DeleteInvitation(ctx, admin, inv.ID); err != nil {
		t.Fatal(err)
	}
	list, err := identity.ListInvitations(ctx, admin)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 0 {
		t.Errorf("expected no invitations after revoke, got %d", len(list))
	}
}

func TestListCompanies(t *testing.T) {
	store, identity, _, _ := identityFixture(t)
	ctx := context.Background()

	if err := store.CreateCompany(ctx, core.Company{ID: "2", Name: "Outra Empresa"}); err != nil {
		t.Fatal(err)
	}

	all, err := identity.ListCompanies(ctx, masterSession())
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Errorf("master should see every company, got %d", len(all))
	}

	own, err := identity.ListCompanies(ctx, adminSession())
	if err != nil {
		t.Fatal(err)
	}
	if len(own) != 1 || own[0].ID != "1" {
		t.Errorf("admin should only see their own company, got %v", own)
	}
}
