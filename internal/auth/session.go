package auth

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"caixa/internal/core"
)

// DefaultSessionTTL is how long an issued session stays valid without
// renewal.
const DefaultSessionTTL = 24 * time.Hour

// SessionManager owns the token -> session map. Sessions are process
// local; there is no cross-instance store.
type SessionManager struct {
	mu       sync.Mutex
	sessions map[string]*sessionEntry
	ttl      time.Duration
	now      func() time.Time
}

type sessionEntry struct {
	session   core.Session
	expiresAt time.Time
}

func NewSessionManager(ttl time.Duration) *SessionManager {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionManager{
		sessions: make(map[string]*sessionEntry),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Issue creates a session for the user and returns it with a fresh
// token. The browsing date starts at the current month.
func (m *SessionManager) Issue(u core.User) core.Session {
	s := core.Session{
		Token:       uuid.NewString(),
		UserID:      u.ID,
		UserName:    u.Name,
		Role:        u.Role,
		CompanyID:   u.CompanyID,
		CurrentDate: m.now(),
	}

	m.mu.Lock()
	m.sessions[s.Token] = &sessionEntry{session: s, expiresAt: m.now().Add(m.ttl)}
	m.mu.Unlock()

	return s
}

// Get resolves a token to its session. Expired tokens are evicted on
// lookup.
func (m *SessionManager) Get(token string) (core.Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.sessions[token]
	if !ok {
		return core.Session{}, false
	}
	if m.now().After(entry.expiresAt) {
		delete(m.sessions, token)
		return core.Session{}, false
	}
	return entry.session, true
}

// SetCurrentDate moves the session's browsing month.
func (m *SessionManager) SetCurrentDate(token string, date time.Time) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.sessions[token]
	if !ok {
		return false
	}
	entry.session.CurrentDate = date
	return true
}

// Revoke drops the session. Revoking an unknown token is a no-op.
func (m *SessionManager) Revoke(token string) {
	m.mu.Lock()
	delete(m.sessions, token)
	m.mu.Unlock()
}

// Count returns the number of live sessions (expired entries included
// until their next lookup).
func (m *SessionManager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
