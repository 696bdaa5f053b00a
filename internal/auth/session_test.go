package auth

import (
	"testing"
	"time"

	"caixa/internal/core"
)

func demoUser() core.User {
	return core.User{
		ID:        "u-1",
		Name:      "Admin Demo",
		Role:      core.RoleAdmin,
		CompanyID: "1",
	}
}

func TestSessionIssueAndGet(t *testing.T) {
	m := NewSessionManager(time.Hour)
	sess := m.Issue(demoUser())

	if sess.Token == "" {
		t.Fatal("issued session should have a token")
	}
	if sess.Role != core.RoleAdmin || sess.CompanyID != "1" {
		t.Errorf("session should carry the user's role and company, got %+v", sess)
	}

	got, ok := m.Get(sess.Token)
	if !ok {
		t.Fatal("issued token should resolve")
	}
	if got.UserID != "u-1" {
		t.Errorf("expected user u-1, got %q", got.UserID)
	}

	if _, ok := m.Get("bogus"); ok {
		t.Error("unknown token should not resolve")
	}
}

func TestSessionExpiry(t *testing.T) {
	m := NewSessionManager(time.Hour)
	current := time.Now()
	m.now = func() time.Time { return current }

	sess := m.Issue(demoUser())

	current = current.Add(2 * time.Hour)
	if _, ok := m.Get(sess.Token); ok {
		t.Error("expired token should not resolve")
	}
	// Expired entries are evicted on lookup.
	if m.Count() != 0 {
		t.Errorf("expected 0 sessions after eviction, got %d", m.Count())
	}
}

func TestSetCurrentDate(t *testing.T) {
	m := NewSessionManager(time.Hour)
	sess := m.Issue(demoUser())

	date := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	if !m.SetCurrentDate(sess.Token, date) {
		t.Fatal("SetCurrentDate should succeed for a live token")
	}
	got, _ := m.Get(sess.Token)
	if !got.CurrentDate.Equal(date) {
		t.Errorf("expected browsing date %v, got %v", date, got.CurrentDate)
	}

	if m.SetCurrentDate("bogus", date) {
		t.Error("SetCurrentDate should fail for an unknown token")
	}
}

func TestRevoke(t *testing.T) {
	m := NewSessionManager(time.Hour)
	sess := m.Issue(demoUser())

	m.Revoke(sess.Token)
	if _, ok := m.Get(sess.Token); ok {
		t.Error("revoked token should not resolve")
	}

	// Revoking twice is a no-op.
	m.Revoke(sess.Token)
}
